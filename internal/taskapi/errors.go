package taskapi

import (
	"errors"
	"fmt"
	"strings"
)

// AppError is returned when the server answers 2xx but reports a failure
// in the payload ({"success": false, ...}).
type AppError struct {
	Op      string
	Message string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Op + " failed"
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// FormError is returned when the server re-renders a form with field errors.
type FormError struct {
	Fields map[string][]string // field name -> messages; "" for form-wide errors
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		label := field
		if label == "" {
			label = "form"
		}
		parts = append(parts, label+": "+strings.Join(msgs, " "))
	}
	if len(parts) == 0 {
		return "the server rejected the form"
	}
	return "the server rejected the form: " + strings.Join(parts, "; ")
}

// IsAppError reports whether err is an application-level failure.
func IsAppError(err error) bool {
	var ae *AppError
	var fe *FormError
	return errors.As(err, &ae) || errors.As(err, &fe)
}
