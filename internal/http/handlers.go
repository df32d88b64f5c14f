package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"calorie/internal/core"
	"calorie/internal/log"
	"calorie/internal/session"
	"calorie/internal/view"
)

const (
	sessionCookie = "calorie_session"
	sessionHeader = "X-Session-ID"
	sessionMaxAge = 30 * 24 * time.Hour
)

// pageSession returns the session id from the cookie, issuing a new one
// when the cookie is missing or malformed.
func pageSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && session.ValidID(c.Value) {
		return c.Value
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady checks templates and the storage backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"templates":       "ok",
		"storage":         "ok",
		"active_sessions": s.tracker.ActiveSessions(),
	}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
			checks["storage"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
	}
	if sr, ok := s.pinger.(SchemaReporter); ok {
		version, dirty, err := sr.SchemaVersion(ctx)
		switch {
		case err != nil:
			checks["schema"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		case dirty:
			checks["schema"] = fmt.Sprintf("failed: dirty at version %d", version)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		default:
			checks["schema_version"] = version
		}
	}

	traced := s.traceMiddleware.GetMetrics()
	limited := s.rateLimiter.GetMetrics()
	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
		"metrics": map[string]any{
			"requests":            traced.TotalRequests,
			"server_errors":       traced.ServerErrors,
			"avg_response_ms":     traced.AverageResponseTime.Milliseconds(),
			"rate_limited":        limited.TotalHits,
			"rate_limit_clients":  limited.ClientCount,
			"suspicious_requests": s.securityDetector.GetMetrics().SuspiciousRequests,
		},
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := pageSession(w, r)

	rec := &view.Recorder{}
	if err := s.tracker.Show(ctx, id, rec); err != nil {
		s.renderError(w, r, log.OpRender, err)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", newPageView(rec)); err != nil {
		s.renderError(w, r, log.OpRender, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meals, err := s.tracker.FilterMeals(ctx, pageSession(w, r), sanitizeInput(r.URL.Query().Get("filter")))
	if err != nil {
		s.renderError(w, r, log.OpList, err)
		return
	}
	list := entryListView{Kind: core.KindMeal}
	for _, m := range meals {
		list.Entries = append(list.Entries, mealView(m))
	}
	s.renderFragment(w, r, "entry-list", list)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workouts, err := s.tracker.FilterWorkouts(ctx, pageSession(w, r), sanitizeInput(r.URL.Query().Get("filter")))
	if err != nil {
		s.renderError(w, r, log.OpList, err)
		return
	}
	list := entryListView{Kind: core.KindWorkout}
	for _, wo := range workouts {
		list.Entries = append(list.Entries, workoutView(wo))
	}
	s.renderFragment(w, r, "entry-list", list)
}

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseEntry(w, r)
	if !ok {
		return
	}
	id := pageSession(w, r)
	s.mutate(w, r, log.OpAddMeal, "Meal added", func(ctx context.Context, d view.Display) error {
		_, err := s.tracker.AddMeal(ctx, id, in.Name, in.Calories, d)
		return err
	})
}

func (s *Server) handleAddWorkout(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseEntry(w, r)
	if !ok {
		return
	}
	id := pageSession(w, r)
	s.mutate(w, r, log.OpAddWorkout, "Workout added", func(ctx context.Context, d view.Display) error {
		_, err := s.tracker.AddWorkout(ctx, id, in.Name, in.Calories, d)
		return err
	})
}

func (s *Server) handleRemoveMeal(w http.ResponseWriter, r *http.Request) {
	id := pageSession(w, r)
	entryID := mux.Vars(r)["id"]
	s.mutate(w, r, log.OpRemoveMeal, "", func(ctx context.Context, d view.Display) error {
		return s.tracker.RemoveMeal(ctx, id, entryID, d)
	})
}

func (s *Server) handleRemoveWorkout(w http.ResponseWriter, r *http.Request) {
	id := pageSession(w, r)
	entryID := mux.Vars(r)["id"]
	s.mutate(w, r, log.OpRemoveWorkout, "", func(ctx context.Context, d view.Display) error {
		return s.tracker.RemoveWorkout(ctx, id, entryID, d)
	})
}

func (s *Server) handleSetLimit(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return
	}
	limit, err := ParseLimitInput(parser)
	if err != nil {
		s.renderError(w, r, log.OpSetLimit, err)
		return
	}
	id := pageSession(w, r)
	s.mutate(w, r, log.OpSetLimit, "Limit updated", func(ctx context.Context, d view.Display) error {
		return s.tracker.SetLimit(ctx, id, limit, d)
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := pageSession(w, r)
	s.mutate(w, r, log.OpReset, "Day reset", func(ctx context.Context, d view.Display) error {
		return s.tracker.Reset(ctx, id, d)
	})
}

func (s *Server) parseEntry(w http.ResponseWriter, r *http.Request) (EntryInput, bool) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return EntryInput{}, false
	}
	in, err := ParseEntryInput(parser)
	if err != nil {
		s.renderError(w, r, log.OpParse, err)
		return EntryInput{}, false
	}
	return in, true
}

// mutate runs op against an htmx display and answers with the resulting
// out-of-band fragments. An empty notice skips the success notification.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op, notice string, fn func(context.Context, view.Display) error) {
	d := newHTMXDisplay(s.templates)
	if err := fn(r.Context(), d); err != nil {
		s.renderError(w, r, op, err)
		return
	}
	body, err := d.Bytes()
	if err != nil {
		s.renderError(w, r, log.OpRender, err)
		return
	}

	resp := NewHTMXResponse().TriggerTrackerChanged(op).BodyHTML(body)
	if notice != "" {
		resp.TriggerFormReset().TriggerSuccessNotification(notice)
	}
	resp.Write(w)
}

func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.renderError(w, r, log.OpRender, err)
		return
	}
	NewHTMXResponse().BodyHTML(buf.Bytes()).Write(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := errorStatus(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeInternal)
	} else {
		logger.DebugContext(r.Context(), "Rejected input",
			log.FieldOperation, op,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeValidation)
	}
	switch status {
	case http.StatusUnprocessableEntity:
		UnprocessableEntityError(msg).Write(w)
	case http.StatusInternalServerError:
		InternalServerError(msg).Write(w)
	default:
		ErrorResponse(status, msg).Write(w)
	}
}
