package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// CollaboratorErrorMessage describes an unreachable external collaborator.
	CollaboratorErrorMessage = "external service unavailable"
	// JudgmentErrorMessage describes a structured model response that does
	// not conform to the expected shape.
	JudgmentErrorMessage = "model returned a malformed judgment"
)

// ErrMalformedJudgment marks a structured-judgment response that failed to
// parse into its expected shape. It is a contract violation, never retried.
var ErrMalformedJudgment = errors.New("malformed judgment")

// Error wraps an underlying error with an HTTP status and safe message.
type Error struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the provided information.
func New(err error, status int, message string) *Error {
	return &Error{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return false
}

// WrapCollaborator wraps a failure of the named external collaborator
// (model, retrieval index, web search provider) as a gateway error.
func WrapCollaborator(name string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(fmt.Errorf("%s: %w", name, err), http.StatusBadGateway, CollaboratorErrorMessage)
}

// WrapJudgment marks a structured response that could not be parsed into
// the expected shape.
func WrapJudgment(err error) *Error {
	if err == nil {
		return nil
	}
	return New(fmt.Errorf("%w: %v", ErrMalformedJudgment, err), http.StatusInternalServerError, JudgmentErrorMessage)
}

// StatusOf extracts the HTTP status carried by err, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the safe user-facing message carried by err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return SystemErrorMessage
}
