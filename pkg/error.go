package pkg

// Sentinel errors for the cnd module and its subpackages.
// These errors can be tested using errors.Is for reliable error checking.

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error represents a chain of errors.
type Error []error

// ErrReadInput is returned when reading source input fails.
//
// This error should be wrapped with the underlying I/O error
// to preserve the error chain.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrParse is returned when parsing input fails.
//
// This error should be wrapped with the underlying parse error
// to preserve the error chain and detailed parse error information.
var ErrParse = MakeErrorf("parse error")

// ErrJSONMarshal is returned when JSON marshaling fails.
//
// This error should be wrapped with the underlying marshaling error
// to preserve the error chain.
var ErrJSONMarshal = MakeErrorf("JSON marshal error")

// ErrYAMLMarshal is returned when YAML marshaling fails.
//
// This error should be wrapped with the underlying marshaling error
// to preserve the error chain.
var ErrYAMLMarshal = MakeErrorf("YAML marshal error")

// ErrInvalidFormat is returned when an invalid output format is specified.
//
// This error should be wrapped with additional context that specifies the
// invalid format along with a list of valid formats.
var ErrInvalidFormat = MakeErrorf("invalid format")

// ErrWatch is returned when the file watcher cannot be created or a path
// cannot be added to it.
var ErrWatch = MakeErrorf("watch error")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", from innermost to outermost.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
func (e Error) Wrap(err ...error) Error {
	return append(e, err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(e, fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether the receiver's chain contains the innermost error of a
// sentinel Error target. Error is a slice type and therefore not comparable,
// so without this method errors.Is could never match a wrapped sentinel.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 {
		return false
	}

	for _, err := range e {
		if errors.Is(err, t[0]) {
			return true
		}
	}

	return false
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
