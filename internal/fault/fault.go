// Package fault defines the error kinds surfaced by the planning and
// execution pipeline.
package fault

import (
	"errors"
	"fmt"
)

// Kind names a category of pipeline failure.
type Kind string

const (
	KindMalformedPlan        Kind = "MalformedPlan"
	KindPermissionDenied     Kind = "PermissionDenied"
	KindUnknownOperation     Kind = "UnknownOperation"
	KindInvalidReference     Kind = "InvalidReference"
	KindInsufficientOperands Kind = "InsufficientOperands"
	KindOperationFailed      Kind = "OperationFailed"
	KindPlanningTimeout      Kind = "PlanningTimeout"
	KindPlanningFailed       Kind = "PlanningFailed"
	KindStepTimeout          Kind = "StepTimeout"
	KindCancelled            Kind = "Cancelled"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrMalformedPlan        = &Error{Kind: KindMalformedPlan}
	ErrPermissionDenied     = &Error{Kind: KindPermissionDenied}
	ErrUnknownOperation     = &Error{Kind: KindUnknownOperation}
	ErrInvalidReference     = &Error{Kind: KindInvalidReference}
	ErrInsufficientOperands = &Error{Kind: KindInsufficientOperands}
	ErrOperationFailed      = &Error{Kind: KindOperationFailed}
	ErrPlanningTimeout      = &Error{Kind: KindPlanningTimeout}
	ErrPlanningFailed       = &Error{Kind: KindPlanningFailed}
	ErrStepTimeout          = &Error{Kind: KindStepTimeout}
	ErrCancelled            = &Error{Kind: KindCancelled}
)

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Newf builds an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrapf is like Newf but keeps err as the cause.
func Wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
