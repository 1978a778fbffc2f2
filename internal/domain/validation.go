package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	ValidationProblemType  = "https://tools.ietf.org/html/rfc9110#section-15.5.1"
	ValidationProblemTitle = "One or more validation errors occurred."

	// PayloadKey collects messages that concern the whole payload.
	PayloadKey = "$"
)

// ValidationError is rendered as a problem-details body with status 400.
type ValidationError struct {
	Type    string              `json:"type"`
	Title   string              `json:"title"`
	Status  int                 `json:"status"`
	Errors  map[string][]string `json:"errors"`
	TraceID string              `json:"traceId,omitempty"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{
		Type:   ValidationProblemType,
		Title:  ValidationProblemTitle,
		Status: 400,
		Errors: map[string][]string{},
	}
}

// PayloadError reports a single whole-payload message.
func PayloadError(format string, args ...any) *ValidationError {
	v := NewValidationError()
	v.Add(PayloadKey, fmt.Sprintf(format, args...))
	return v
}

func (v *ValidationError) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Errors {
		v.Errors[field] = append(v.Errors[field], msgs...)
	}
}

func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Errors) == 0
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v.Errors[field], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}
