// Package apperr defines the sentinel errors shared by the stores, services
// and HTTP handlers. Callers should match them with errors.Is; services wrap
// them with fmt.Errorf("%w: ...") to attach a user-facing message.
package apperr

import (
	"errors"
	"strings"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized covers bad credentials and missing, invalid, expired or
	// revoked tokens alike.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is a valid identity without the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned by stores when the referenced id is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict is a duplicate value in a unique field.
	ErrConflict = errors.New("already exists")

	// ErrInUse blocks deleting a record other records still reference.
	ErrInUse = errors.New("in use")
)

// Validation wraps ErrValidation with msg.
func Validation(msg string) error {
	return &wrapped{sentinel: ErrValidation, msg: msg}
}

// Wrap attaches a user-facing message to one of the sentinels above.
func Wrap(sentinel error, msg string) error {
	return &wrapped{sentinel: sentinel, msg: msg}
}

// Message returns the user-facing part of err: the attached message if there
// is one, otherwise the error text.
func Message(err error) string {
	var w *wrapped
	if errors.As(err, &w) {
		return w.msg
	}
	return err.Error()
}

type wrapped struct {
	sentinel error
	msg      string
}

func (w *wrapped) Error() string {
	return strings.TrimSpace(w.sentinel.Error() + ": " + w.msg)
}

func (w *wrapped) Unwrap() error { return w.sentinel }
