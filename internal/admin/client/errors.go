package client

import (
	"errors"
	"fmt"
)

// Category is the failure taxonomy callers act on. Only two outcomes matter
// upstream: the session is no longer valid, or the request simply failed.
type Category string

const (
	// CategoryUnauthorized means the backend answered 401 or 403; the session must be re-established.
	CategoryUnauthorized Category = "unauthorized"

	// CategoryTransport means no response was received at all.
	CategoryTransport Category = "transport"

	// CategoryRequestFailed covers every other non-2xx status and undecodable payloads.
	CategoryRequestFailed Category = "request_failed"
)

// ErrSessionExpired matches (via errors.Is) any Error in CategoryUnauthorized.
var ErrSessionExpired = errors.New("session expired or unauthorized")

// ErrMissingCredential is returned when an identity credential exchange is attempted without one.
var ErrMissingCredential = errors.New("identity credential is required")

// Error wraps a failed backend call with its classification.
type Error struct {
	Category   Category
	Endpoint   string
	Status     int // 0 when no response was received
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("admin api %s [%s]: %s: %v", e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("admin api %s [%s]: %s", e.Endpoint, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is lets errors.Is(err, ErrSessionExpired) identify authorization failures.
func (e *Error) Is(target error) bool {
	return target == ErrSessionExpired && e.Category == CategoryUnauthorized
}

func newError(category Category, endpoint string, status int, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Endpoint:   endpoint,
		Status:     status,
		Message:    message,
		Underlying: underlying,
	}
}

// IsUnauthorized reports whether err means the stored session is no longer accepted.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// GetCategory extracts the category from an error, defaulting to CategoryRequestFailed.
func GetCategory(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryRequestFailed
}
