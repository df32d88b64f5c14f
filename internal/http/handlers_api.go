package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"calorie/internal/log"
	"calorie/internal/session"
)

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// apiSession picks the session from the X-Session-ID header, then the page
// cookie, and otherwise starts a new one. The id is echoed in the response.
func apiSession(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(sessionHeader)
	if !session.ValidID(id) {
		id = ""
		if c, err := r.Cookie(sessionCookie); err == nil && session.ValidID(c.Value) {
			id = c.Value
		}
	}
	if id == "" {
		id = session.NewID()
	}
	w.Header().Set(sessionHeader, id)
	return id
}

func (s *Server) handleAPITracker(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.Snapshot(r.Context(), apiSession(w, r))
	if err != nil {
		s.apiError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAPIAddMeal(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseAPIEntry(w, r)
	if !ok {
		return
	}
	id := apiSession(w, r)
	meal, err := s.tracker.AddMeal(r.Context(), id, in.Name, in.Calories, nil)
	if err != nil {
		s.apiError(w, r, log.OpAddMeal, err)
		return
	}
	s.writeAPIState(w, r, id, http.StatusCreated, map[string]any{"meal": meal})
}

func (s *Server) handleAPIAddWorkout(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseAPIEntry(w, r)
	if !ok {
		return
	}
	id := apiSession(w, r)
	workout, err := s.tracker.AddWorkout(r.Context(), id, in.Name, in.Calories, nil)
	if err != nil {
		s.apiError(w, r, log.OpAddWorkout, err)
		return
	}
	s.writeAPIState(w, r, id, http.StatusCreated, map[string]any{"workout": workout})
}

func (s *Server) handleAPIRemoveMeal(w http.ResponseWriter, r *http.Request) {
	id := apiSession(w, r)
	if err := s.tracker.RemoveMeal(r.Context(), id, mux.Vars(r)["id"], nil); err != nil {
		s.apiError(w, r, log.OpRemoveMeal, err)
		return
	}
	s.writeAPIState(w, r, id, http.StatusOK, nil)
}

func (s *Server) handleAPIRemoveWorkout(w http.ResponseWriter, r *http.Request) {
	id := apiSession(w, r)
	if err := s.tracker.RemoveWorkout(r.Context(), id, mux.Vars(r)["id"], nil); err != nil {
		s.apiError(w, r, log.OpRemoveWorkout, err)
		return
	}
	s.writeAPIState(w, r, id, http.StatusOK, nil)
}

func (s *Server) handleAPISetLimit(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	limit, err := ParseLimitInput(parser)
	if err != nil {
		s.apiError(w, r, log.OpSetLimit, err)
		return
	}
	id := apiSession(w, r)
	if err := s.tracker.SetLimit(r.Context(), id, limit, nil); err != nil {
		s.apiError(w, r, log.OpSetLimit, err)
		return
	}
	s.writeAPIState(w, r, id, http.StatusOK, nil)
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	id := apiSession(w, r)
	if err := s.tracker.Reset(r.Context(), id, nil); err != nil {
		s.apiError(w, r, log.OpReset, err)
		return
	}
	s.writeAPIState(w, r, id, http.StatusOK, nil)
}

func (s *Server) parseAPIEntry(w http.ResponseWriter, r *http.Request) (EntryInput, bool) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return EntryInput{}, false
	}
	in, err := ParseEntryInput(parser)
	if err != nil {
		s.apiError(w, r, log.OpParse, err)
		return EntryInput{}, false
	}
	return in, true
}

// writeAPIState answers with the session summary plus any extra fields.
func (s *Server) writeAPIState(w http.ResponseWriter, r *http.Request, id string, status int, extra map[string]any) {
	snap, err := s.tracker.Snapshot(r.Context(), id)
	if err != nil {
		s.apiError(w, r, log.OpList, err)
		return
	}
	body := map[string]any{"summary": snap.Summary}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "API request failed",
			log.FieldComponent, log.ComponentAPI,
			log.FieldOperation, op,
			log.FieldError, err.Error())
	}
	writeJSONError(w, status, msg)
}
