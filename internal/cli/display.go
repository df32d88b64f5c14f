package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"calorie/internal/core"
	"calorie/internal/view"
)

var _ view.Display = (*Terminal)(nil)

const progressWidth = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mealStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7DC6F"))
	workoutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A90E2"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	underStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	overStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)
)

// Terminal is a Display for the command line. Entry commands print one line
// each as they arrive; figures are collected and drawn by Flush.
type Terminal struct {
	out io.Writer

	limit, total, consumed, burned, remaining int
	over                                      bool
	progress                                  float64
	hasFigures                                bool
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) SetLimit(limit int64)       { t.limit = int(limit); t.hasFigures = true }
func (t *Terminal) SetTotal(total int64)       { t.total = int(total); t.hasFigures = true }
func (t *Terminal) SetConsumed(consumed int64) { t.consumed = int(consumed); t.hasFigures = true }
func (t *Terminal) SetBurned(burned int64)     { t.burned = int(burned); t.hasFigures = true }

func (t *Terminal) SetRemaining(remaining int64, over bool) {
	t.remaining, t.over = int(remaining), over
	t.hasFigures = true
}

func (t *Terminal) SetProgress(percent float64) {
	t.progress = percent
	t.hasFigures = true
}

func (t *Terminal) AppendMeal(meal core.Meal) {
	fmt.Fprintln(t.out, entryLine(mealStyle, "meal", meal.ID, meal.Name, meal.Calories))
}

func (t *Terminal) AppendWorkout(workout core.Workout) {
	fmt.Fprintln(t.out, entryLine(workoutStyle, "workout", workout.ID, workout.Name, workout.Calories))
}

func (t *Terminal) RemoveItem(kind core.EntryKind, id string) {
	fmt.Fprintln(t.out, mutedStyle.Render(fmt.Sprintf("removed %s %s", kind, id)))
}

func (t *Terminal) ClearItems() {
	fmt.Fprintln(t.out, mutedStyle.Render("cleared all meals and workouts"))
}

// Flush draws the collected figures, if any command set one.
func (t *Terminal) Flush() {
	if !t.hasFigures {
		return
	}
	fmt.Fprintln(t.out, t.board())
	t.hasFigures = false
}

func (t *Terminal) board() string {
	remaining := underStyle
	if t.over {
		remaining = overStyle
	}
	rows := []string{
		titleStyle.Render("Calorie Tracker"),
		fmt.Sprintf("Limit      %6d", t.limit),
		fmt.Sprintf("Gain/Loss  %6d", t.total),
		fmt.Sprintf("Consumed   %6d", t.consumed),
		fmt.Sprintf("Burned     %6d", t.burned),
		"Remaining  " + remaining.Render(fmt.Sprintf("%6d", t.remaining)),
		progressBar(t.progress, progressWidth, remaining),
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func entryLine(style lipgloss.Style, kind, id, name string, calories int64) string {
	return fmt.Sprintf("%s %s %s",
		style.Render(fmt.Sprintf("%-7s", kind)),
		fmt.Sprintf("%-24s %5d kcal", name, calories),
		mutedStyle.Render(id))
}

func progressBar(percent float64, width int, style lipgloss.Style) string {
	filled := int(percent * float64(width) / 100)
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return style.Render(bar) + fmt.Sprintf(" %3.0f%%", percent)
}

// JournalLine formats one journal entry for listing.
func JournalLine(e core.JournalEntry) string {
	what := e.Event
	if e.Kind != "" {
		what = fmt.Sprintf("%s %s (%d kcal)", e.Event, e.Name, e.Calories)
	}
	return fmt.Sprintf("%s  %-40s %s",
		mutedStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04:05")),
		what,
		fmt.Sprintf("total %d/%d", e.Total, e.Limit))
}
