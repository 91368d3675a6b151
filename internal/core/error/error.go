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
	// RedisNotFoundMessage describes a missing key.
	RedisNotFoundMessage = "record not found"
	// InvalidRequestMessage describes a request rejected before any state mutation.
	InvalidRequestMessage = "invalid request"
	// ExtractionErrorMessage is surfaced when the field extractor fails; retryable.
	ExtractionErrorMessage = "could not process message, please retry"
	// GenerationErrorMessage is surfaced when the blueprint generator is unreachable.
	GenerationErrorMessage = "blueprint generation failed"
)

// Sentinels for the workflow failure taxonomy. Wrappers chain them so
// callers can classify with errors.Is without reading status codes.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrExtraction     = errors.New("extraction failure")
	ErrGeneration     = errors.New("generation failure")
)

// Error wraps an underlying cause with an HTTP status and safe message.
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

// NewInvalidRequest flags a request rejected before any state mutation.
func NewInvalidRequest(detail string) *Error {
	return New(fmt.Errorf("%w: %s", ErrInvalidRequest, detail), http.StatusBadRequest, InvalidRequestMessage)
}

// WrapExtraction marks a failed field-extractor call. The session is
// left at its last persisted snapshot, so the caller may simply retry.
func WrapExtraction(err error) *Error {
	if err == nil {
		return nil
	}
	return New(fmt.Errorf("%w: %v", ErrExtraction, err), http.StatusBadGateway, ExtractionErrorMessage)
}

// WrapGeneration marks an unreachable or erroring blueprint generator.
// Distinct from a rejection verdict, which is a normal loop outcome.
func WrapGeneration(err error) *Error {
	if err == nil {
		return nil
	}
	return New(fmt.Errorf("%w: %v", ErrGeneration, err), http.StatusBadGateway, GenerationErrorMessage)
}

// StatusOf extracts the HTTP status from an error chain, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the safe user-facing message from an error chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return SystemErrorMessage
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
