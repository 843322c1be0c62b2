package core

import (
	"context"
	"errors"
	"fmt"

	"fieldops.service/internal/ports/backend"
	"github.com/rs/zerolog/log"
)

// ValidationError is a locally detected problem with user input. It never
// reaches the backend.
type ValidationError struct {
	Field   string
	Message string
	// Err is the sentinel the failure matches, if any.
	Err error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// rejected returns a new ValidationError for field that matches sentinel
// under errors.Is.
func rejected(field string, sentinel error) *ValidationError {
	return &ValidationError{Field: field, Message: sentinel.Error(), Err: sentinel}
}

// OperationError is a failed remote call. Err carries the detail for logs;
// users only ever see UserMessage.
type OperationError struct {
	Action string
	Err    error
}

func (e *OperationError) Error() string { return "failed to " + e.Action + ": " + e.Err.Error() }

func (e *OperationError) Unwrap() error { return e.Err }

func (e *OperationError) UserMessage() string {
	return "Failed to " + e.Action + ". Please try again."
}

// fail logs a failed remote call with its action and wraps it.
func fail(ctx context.Context, action string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	log.Ctx(ctx).Error().Err(err).Str("action", action).Msg("Operation failed")
	return &OperationError{Action: action, Err: err}
}

// UserMessage renders any error returned by this package as a notice fit for
// an end user.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var oe *OperationError
	if errors.As(err, &oe) {
		if errors.Is(oe.Err, backend.ErrUnauthorized) && oe.Action == "sign in" {
			return "Invalid email or password."
		}
		return oe.UserMessage()
	}
	if err == nil {
		return ""
	}
	return "Something went wrong. Please try again."
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, backend.ErrNotFound) }
