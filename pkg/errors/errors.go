package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies the failures this layer can report.
type Kind int

const (
	// KindPrecondition is logical misuse of the API: reinitializing an
	// attached message, touching a header collection in the wrong mode,
	// resuming a hook firing twice. These are logged no-ops, never fatal.
	KindPrecondition Kind = iota

	// KindParse is malformed input: an unparseable URL, an invalid header
	// field name, an unrecognized token. The affected field degrades to its
	// unset default.
	KindParse

	// KindEngine is a failure reported by the engine collaborator: buffer or
	// location allocation failing, a released handle being dereferenced.
	KindEngine
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindParse:
		return "parse"
	case KindEngine:
		return "engine"
	default:
		return "unknown"
	}
}

// Error is a structured error carrying the failure kind and the operation
// that observed it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proxybind: %s: %s (%s): %v", e.Op, e.Message, e.Kind, e.Err)
	}
	return fmt.Sprintf("proxybind: %s: %s (%s)", e.Op, e.Message, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with no underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an Error around an underlying cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

func is(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsPrecondition reports whether err is a precondition violation.
func IsPrecondition(err error) bool { return is(err, KindPrecondition) }

// IsParse reports whether err is a parse failure.
func IsParse(err error) bool { return is(err, KindParse) }

// IsEngine reports whether err is an engine failure.
func IsEngine(err error) bool { return is(err, KindEngine) }
