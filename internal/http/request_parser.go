// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"calorie/internal/core"
)

const (
	msgMissingDetails  = "Please fill in all details"
	msgMissingLimit    = "Please add a limit!"
	msgInvalidCalories = "Calories must be a non-negative number"
	msgInvalidLimit    = "The limit must be a whole number"

	// maxBodyBytes caps request bodies; entries are tiny.
	maxBodyBytes = 64 << 10
)

// InputError is a validation problem whose message is shown to the user.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// EntryInput is a parsed meal or workout submission.
type EntryInput struct {
	Name     string
	Calories int64
}

// ParseEntryInput reads the name and calories fields.
func ParseEntryInput(p *RequestBodyParser) (EntryInput, error) {
	name := p.Get("name")
	raw := p.Get("calories")
	if name == "" || raw == "" {
		return EntryInput{}, &InputError{Message: msgMissingDetails}
	}
	kcal, err := core.ParseCalories(raw)
	if err != nil {
		return EntryInput{}, &InputError{Message: msgInvalidCalories}
	}
	return EntryInput{Name: name, Calories: kcal}, nil
}

// ParseLimitInput reads the limit field. Any whole number is accepted.
func ParseLimitInput(p *RequestBodyParser) (int64, error) {
	raw := p.Get("limit")
	if raw == "" {
		return 0, &InputError{Message: msgMissingLimit}
	}
	limit, err := core.ParseLimit(raw)
	if err != nil {
		return 0, &InputError{Message: msgInvalidLimit}
	}
	return limit, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
