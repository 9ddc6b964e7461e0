package remote

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable wraps network-level failures (connect, timeout).
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized maps 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError is one field-level problem inside a ValidationError.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationError is a 422 response carrying field-level detail.
type ValidationError struct {
	Detail []FieldError `json:"detail"`
}

func (e *ValidationError) Error() string {
	if len(e.Detail) == 0 {
		return "validation error"
	}
	parts := make([]string, 0, len(e.Detail))
	for _, d := range e.Detail {
		parts = append(parts, fmt.Sprintf("%v: %s", d.Loc, d.Msg))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// UnexpectedStatusError is any non-2xx response not explicitly handled.
type UnexpectedStatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s %s", e.Status, e.Method, e.Path)
}
