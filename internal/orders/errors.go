package orders

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures so the HTTP layer can map them
// to statuses without string matching.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindForbidden         ErrorKind = "forbidden"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindNotFound          ErrorKind = "not_found"
	KindStorage           ErrorKind = "storage"
)

// Error is the typed failure returned by every workflow operation.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errValidation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func errForbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func errConflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func errInvalidTransition(format string, args ...any) error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func errStorage(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// KindOf extracts the error kind, or KindStorage for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}
