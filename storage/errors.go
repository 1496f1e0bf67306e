package storage

import (
	"errors"

	"github.com/chazu/wsc/diag"
)

// Error kinds. Match with errors.Is.
var (
	ErrPoolExhausted        = errors.New("variable pool exhausted")
	ErrOverflowExhausted    = errors.New("extended collection exhausted")
	ErrIDCollision          = errors.New("variable id collision")
	ErrIDOutOfRange         = errors.New("variable id out of range")
	ErrDuplicateReservation = errors.New("duplicate reservation")
	ErrDuplicateBinding     = errors.New("duplicate binding")
	ErrUnboundSymbol        = errors.New("unbound symbol")
	ErrNotSettable          = errors.New("binding is not settable")
	ErrUnpairedFrame        = errors.New("unpaired stack frame")
	ErrMissingValue         = errors.New("constant reference has no value")
)

// internalKinds are contract violations by the lowering layer, not problems
// in the user's source.
var internalKinds = []error{ErrDuplicateBinding, ErrUnboundSymbol, ErrNotSettable, ErrUnpairedFrame, ErrMissingValue}

// Error is an allocation or binding failure, located at the declaration
// that caused it when known.
type Error struct {
	Kind error
	Msg  string
	Span diag.Span
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Location implements diag.Located.
func (e *Error) Location() diag.Span { return e.Span }

// Internal implements diag.Internal.
func (e *Error) Internal() bool {
	for _, k := range internalKinds {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func newError(kind error, span diag.Span, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Span: span}
}

// at attaches span to err if it is an *Error without a location.
func at(err error, span diag.Span) error {
	var e *Error
	if errors.As(err, &e) && e.Span.IsZero() {
		e.Span = span
	}
	return err
}
