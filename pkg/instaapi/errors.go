package instaapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransport    = errors.New("transport failure")
)

// Error is a request the server rejected: the transport succeeded and the body
// carried the {message, error} envelope.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d", e.StatusCode)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// FieldErrors returns the first message reported for every field.
func (e *Error) FieldErrors() map[string]string {
	fields := make(map[string]string, len(e.Fields))
	for field, messages := range e.Fields {
		if len(messages) > 0 {
			fields[field] = messages[0]
		}
	}
	return fields
}

// Message returns the human-readable server message carried by err, or fallback
// when there is none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// FieldErrors extracts per-field validation messages from err, nil when it has none.
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return nil
	}
	return apiErr.FieldErrors()
}

type errorPayload struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func (p *errorPayload) toError(status int) *Error {
	apiErr := &Error{
		StatusCode: status,
		Message:    p.Message,
	}

	if len(p.Error) == 0 {
		return apiErr
	}

	fields := map[string][]string{}
	if err := json.Unmarshal(p.Error, &fields); err == nil {
		apiErr.Fields = fields
		return apiErr
	}

	// Some endpoints report a bare string instead of the field map.
	var text string
	if err := json.Unmarshal(p.Error, &text); err == nil && apiErr.Message == "" {
		apiErr.Message = text
	}

	return apiErr
}

// SortedFields lists field names in a stable order for rendering.
func SortedFields(fields map[string]string) []string {
	keys := lo.Keys(fields)
	slices.Sort(keys)
	return keys
}
