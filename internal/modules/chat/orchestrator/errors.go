package orchestrator

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation           ErrorKind = "validation"
	KindRetrievalUnavailable ErrorKind = "retrieval_unavailable"
	KindGeneration           ErrorKind = "generation_failure"
	KindStore                ErrorKind = "store_failure"
)

var ErrTurnAlreadyCompleted = errors.New("turn already completed")

// Error is a turn failure the caller must surface. Message is safe to show
// for validation errors; other kinds are shown as a generic apology.
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

func (e *Error) Unwrap() error { return e.Err }

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the error's kind, or "" for errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
