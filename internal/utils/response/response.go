// Package response turns service results into the short messages the
// console prints.
//
// Every menu action ends the same way: a success line or an error line.
// Rather than formatting errors by hand in every action, we centralise
// it here, in particular go-playground/validator errors, whose default
// text ("Key: 'UserProfile.Name' Error:Field validation for 'Name'
// failed on the 'required' tag") is not something to show a student.
package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is what an action reports back to the user.
//
//	{ Status: "error", Message: "field Name is required" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status  string
	Message string
}

// Status string constants. Use these instead of raw string literals so
// a typo is caught by the compiler.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// OK wraps a success message.
func OK(format string, args ...any) Response {
	return Response{Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether r should be shown as an error.
func (r Response) IsError() bool { return r.Status == StatusError }

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status:  StatusError,
		Message: err.Error(),
	}
}

// FromError picks ValidationError when err carries validator errors and
// GeneralError otherwise.
func FromError(err error) Response {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ValidationError(verrs)
	}
	return GeneralError(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response.
//
// Example output:
//
//	field Name is required, field Password must not contain ":"
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "excludes", "excludesall":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must not contain %q", e.Field(), e.Param()))
		case "singleline":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a single line", e.Field()))
		case "min":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param()))
		case "max":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param()))
		// Catch-all for any other validation tag
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status:  StatusError,
		Message: strings.Join(errMessages, ", "),
	}
}
