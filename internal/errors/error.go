package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// mailbox or transport unreachable, or credentials rejected
	ErrConnection = errors.New("connection error")
	// malformed structured response from the inference endpoint
	ErrParse = errors.New("parse error")
	// identifier with no registered implementation
	ErrLookup = errors.New("lookup error")
	// missing or invalid argument
	ErrValidation = errors.New("validation error")
	// message rejected during delivery
	ErrTransport = errors.New("transport error")
)

// Error tags a cause with one of the kinds above and the operation that failed.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func E(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Connection(op string, err error) error {
	return E(ErrConnection, op, err)
}

func Parse(op string, err error) error {
	return E(ErrParse, op, err)
}

func Lookup(op string, err error) error {
	return E(ErrLookup, op, err)
}

func Validation(op string, format string, args ...interface{}) error {
	return E(ErrValidation, op, errors.Errorf(format, args...))
}

func Transport(op string, err error) error {
	return E(ErrTransport, op, err)
}

// KindOf returns the kind attached to err, or nil if it carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrLookup, ErrParse, ErrConnection, ErrTransport} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
