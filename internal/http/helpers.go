package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"calorie/internal/core"
	"calorie/internal/session"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formatPercent renders a progress value for a CSS width.
func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 0, 64)
}

// errorStatus maps an operation error to an HTTP status and a message that
// is safe to show.
func errorStatus(err error) (int, string) {
	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusUnprocessableEntity, inputErr.Message
	case errors.Is(err, core.ErrEmptyName):
		return http.StatusUnprocessableEntity, msgMissingDetails
	case errors.Is(err, core.ErrNameTooLong),
		errors.Is(err, core.ErrNegativeCalories),
		errors.Is(err, core.ErrInvalidCalories),
		errors.Is(err, core.ErrTooManyCalories),
		errors.Is(err, core.ErrTotalOverflow):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, session.ErrInvalidID):
		return http.StatusBadRequest, "Invalid session"
	default:
		return http.StatusInternalServerError, "Something went wrong, please try again"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
