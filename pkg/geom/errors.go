package geom

import (
	"errors"
	"fmt"
)

// ErrorKind classifies kernel failures.
type ErrorKind int

const (
	KindInvalidTopology ErrorKind = iota // unpaired or non-manifold edges
	KindIndexOutOfBounds                 // malformed index into a point list
	KindBoolean                          // CSG classification or dispatch failure
	KindInvalidGeometry                  // builder parameter validation
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidTopology:
		return "invalid topology"
	case KindIndexOutOfBounds:
		return "index out of bounds"
	case KindBoolean:
		return "boolean error"
	case KindInvalidGeometry:
		return "invalid geometry"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the error type returned by every kernel operation.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Detail
}

// Is matches any *Error of the same kind, so errors.Is(err,
// ErrInvalidGeometry) works for every geometry failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Detail == "" || t.Detail == e.Detail)
}

// Sentinels for errors.Is. They carry no detail and match every error of
// their kind.
var (
	ErrInvalidTopology  = &Error{Kind: KindInvalidTopology}
	ErrIndexOutOfBounds = &Error{Kind: KindIndexOutOfBounds}
	ErrBoolean          = &Error{Kind: KindBoolean}
	ErrInvalidGeometry  = &Error{Kind: KindInvalidGeometry}
)

// ErrRecursionLimit is returned (wrapped in a boolean error) when BSP
// construction or clipping exceeds the configured depth.
var ErrRecursionLimit = errors.New("recursion limit exceeded")

// Topologyf returns an invalid-topology error.
func Topologyf(format string, args ...any) error {
	return &Error{Kind: KindInvalidTopology, Detail: fmt.Sprintf(format, args...)}
}

// Indexf returns an index-out-of-bounds error.
func Indexf(format string, args ...any) error {
	return &Error{Kind: KindIndexOutOfBounds, Detail: fmt.Sprintf(format, args...)}
}

// Booleanf returns a boolean-operation error.
func Booleanf(format string, args ...any) error {
	return &Error{Kind: KindBoolean, Detail: fmt.Sprintf(format, args...)}
}

// Geometryf returns an invalid-geometry error.
func Geometryf(format string, args ...any) error {
	return &Error{Kind: KindInvalidGeometry, Detail: fmt.Sprintf(format, args...)}
}

// recursionError is a boolean error that also matches ErrRecursionLimit.
type recursionError struct {
	err *Error
}

func (e recursionError) Error() string   { return e.err.Error() }
func (e recursionError) Unwrap() []error { return []error{e.err, ErrRecursionLimit} }

// RecursionLimit returns a boolean error for a depth overflow in op.
func RecursionLimit(op string, depth int) error {
	return recursionError{err: &Error{
		Kind:   KindBoolean,
		Detail: fmt.Sprintf("recursion limit: %s exceeded depth %d", op, depth),
	}}
}
