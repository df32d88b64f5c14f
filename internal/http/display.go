package http

import (
	"bytes"
	"html/template"

	"calorie/internal/core"
	"calorie/internal/view"
)

var _ view.Display = (*htmxDisplay)(nil)

// Element ids shared by the page and the out-of-band fragments.
const (
	idLimit     = "calorie-limit"
	idTotal     = "total-calories"
	idConsumed  = "calories-consumed"
	idBurned    = "calories-burned"
	idRemaining = "calories-remaining"
	idProgress  = "calorie-progress"
)

type figureView struct {
	ID    string
	Value int64
	OOB   bool
}

type remainingView struct {
	Value int64
	Over  bool
	OOB   bool
}

type progressView struct {
	Width string
	OOB   bool
}

type entryView struct {
	Kind     core.EntryKind
	ID       string
	Name     string
	Calories int64
}

func mealView(m core.Meal) entryView {
	return entryView{Kind: core.KindMeal, ID: m.ID, Name: m.Name, Calories: m.Calories}
}

func workoutView(w core.Workout) entryView {
	return entryView{Kind: core.KindWorkout, ID: w.ID, Name: w.Name, Calories: w.Calories}
}

// htmxDisplay renders display commands as htmx out-of-band fragments. The
// first template error stops further output and is reported by Bytes.
type htmxDisplay struct {
	tmpl *template.Template
	buf  bytes.Buffer
	err  error
}

func newHTMXDisplay(tmpl *template.Template) *htmxDisplay {
	return &htmxDisplay{tmpl: tmpl}
}

func (d *htmxDisplay) exec(name string, data any) {
	if d.err != nil {
		return
	}
	d.err = d.tmpl.ExecuteTemplate(&d.buf, name, data)
}

func (d *htmxDisplay) SetLimit(limit int64) {
	d.exec("figure", figureView{ID: idLimit, Value: limit, OOB: true})
}

func (d *htmxDisplay) SetTotal(total int64) {
	d.exec("figure", figureView{ID: idTotal, Value: total, OOB: true})
}

func (d *htmxDisplay) SetConsumed(consumed int64) {
	d.exec("figure", figureView{ID: idConsumed, Value: consumed, OOB: true})
}

func (d *htmxDisplay) SetBurned(burned int64) {
	d.exec("figure", figureView{ID: idBurned, Value: burned, OOB: true})
}

func (d *htmxDisplay) SetRemaining(remaining int64, over bool) {
	d.exec("remaining", remainingView{Value: remaining, Over: over, OOB: true})
}

func (d *htmxDisplay) SetProgress(percent float64) {
	d.exec("progress", progressView{Width: formatPercent(percent), OOB: true})
}

func (d *htmxDisplay) AppendMeal(meal core.Meal) {
	d.exec("append-entry", mealView(meal))
}

func (d *htmxDisplay) AppendWorkout(workout core.Workout) {
	d.exec("append-entry", workoutView(workout))
}

func (d *htmxDisplay) RemoveItem(kind core.EntryKind, id string) {
	d.exec("remove-entry", entryView{Kind: kind, ID: id})
}

func (d *htmxDisplay) ClearItems() {
	d.exec("clear-entries", nil)
}

// Bytes returns the rendered fragments.
func (d *htmxDisplay) Bytes() ([]byte, error) {
	return d.buf.Bytes(), d.err
}

// pageView is the full page, filled from a view.Recorder.
type pageView struct {
	Limit     figureView
	Total     figureView
	Consumed  figureView
	Burned    figureView
	Remaining remainingView
	Progress  progressView
	Meals     []entryView
	Workouts  []entryView
}

func newPageView(r *view.Recorder) pageView {
	p := pageView{
		Limit:     figureView{ID: idLimit, Value: r.Limit},
		Total:     figureView{ID: idTotal, Value: r.Total},
		Consumed:  figureView{ID: idConsumed, Value: r.Consumed},
		Burned:    figureView{ID: idBurned, Value: r.Burned},
		Remaining: remainingView{Value: r.Remaining, Over: r.Over},
		Progress:  progressView{Width: formatPercent(r.Progress)},
	}
	for _, m := range r.Meals {
		p.Meals = append(p.Meals, mealView(m))
	}
	for _, w := range r.Workouts {
		p.Workouts = append(p.Workouts, workoutView(w))
	}
	return p
}
