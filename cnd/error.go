package cnd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined error classes. Every error produced by this package wraps
// exactly one of these, so callers can dispatch with errors.Is:
//
//	ErrLex      — illegal character or unterminated string in the input
//	ErrGrammar  — token sequence violates the grammar
//	ErrResolve  — name uses an undeclared or malformed prefix
//	ErrValue    — literal cannot be converted to its required type
//	ErrSemantic — structurally valid input violates a semantic rule
var (
	ErrLex      = errClass("lexical error")
	ErrGrammar  = errClass("grammar error")
	ErrResolve  = errClass("name resolution error")
	ErrValue    = errClass("value error")
	ErrSemantic = errClass("semantic error")
)

// Position is a 1-based line and column in the source text.
type Position struct {
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// String formats the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Error represents a compilation error with optional structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
type Error struct {
	class string
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	pos   Position    // Zero when the position is unknown
	attrs []slog.Attr // Attributes for structured logging
}

// errClass creates a sentinel error representing a class of errors.
func errClass(class string) *Error {
	return &Error{class: class}
}

// newError creates an Error of the given class with a message.
func newError(class *Error, msg string) *Error {
	return &Error{class: class.class, msg: msg}
}

// newErrorf creates an Error of the given class with a formatted message.
func newErrorf(class *Error, format string, args ...any) *Error {
	return &Error{class: class.class, msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<class>: <msg>: <err>" // all fields set
	//   2. "<class>: <msg>"        // wrapped error is nil
	//   3. "<class>"               // message is empty
	//
	// A known position is appended as " (line:column)".
	part := make([]string, 0, 3)

	if e.class != "" {
		part = append(part, e.class)
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	msg := strings.Join(part, ": ")

	if e.pos != (Position{}) {
		msg += " (" + e.pos.String() + ")"
	}

	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel of the same class. It makes
// errors.Is(err, ErrGrammar) match every grammar error regardless of its
// message or position.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == "" && t.class == e.class
}

// Position returns the source position of the error. The zero Position
// means the position is unknown.
func (e *Error) Position() Position { return e.pos }

// Message returns the error message without class or position decoration.
func (e *Error) Message() string { return e.msg }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.class != "" {
		attrs = append(attrs, slog.String("class", e.class))
	}

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != (Position{}) {
		attrs = append(attrs, slog.String("position", e.pos.String()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		class: e.class,
		msg:   e.msg,
		err:   err,
		pos:   e.pos,
		attrs: e.attrs, // Share attrs
	}
}

// WithPosition creates a new Error carrying the given source position.
func (e *Error) WithPosition(pos Position) *Error {
	return &Error{
		class: e.class,
		msg:   e.msg,
		err:   e.err,
		pos:   pos,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		class: e.class,
		msg:   e.msg,
		err:   e.err,
		pos:   e.pos,
		attrs: newAttrs,
	}
}

// SourceError decorates an Error with the source text it occurred in, so it
// can render the offending line with a caret marker.
type SourceError struct {
	Err      *Error
	Source   string // The original source input
	SystemID string // Display name of the source, e.g. a file path
	Snippet  string // Populated by Error with the rendered source excerpt
}

// NewSourceError attaches source context to a compilation error.
func NewSourceError(err *Error, source, systemID string) *SourceError {
	return &SourceError{
		Err:      err,
		Source:   source,
		SystemID: systemID,
	}
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Err == nil {
		return "parse error"
	}

	// If we have the source, format with context
	if e.Source != "" {
		msg, snippet := e.formatWithContext()
		e.Snippet = snippet

		return msg + snippet
	}

	return e.Err.Error()
}

// Unwrap exposes the underlying Error for errors.Is/As.
func (e *SourceError) Unwrap() error { return e.Err }

// formatWithContext formats the error with source code context.
func (e *SourceError) formatWithContext() (string, string) {
	pos := e.Err.Position()
	lines := strings.Split(e.Source, "\n")

	var buf, src strings.Builder

	// Write error location and description
	if e.SystemID != "" {
		buf.WriteString(e.SystemID)
		buf.WriteString(": ")
	}

	buf.WriteString(e.Err.Error())
	buf.WriteString("\n")

	// Show the offending line if within bounds
	if pos.Line > 0 && pos.Line <= len(lines) {
		lineIdx := pos.Line - 1
		line := lines[lineIdx]

		// Print the line with line number
		src.WriteString("  ")
		src.WriteString(strconv.Itoa(pos.Line))
		src.WriteString(" | ")
		src.WriteString(line)
		src.WriteRune('\n')

		// Print marker pointing to the column
		// Calculate the width needed for line number display
		lineNumWidth := len(strconv.Itoa(pos.Line))
		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		padding := strings.Repeat(" ", lineNumWidth+5)

		// Add spaces to reach the error column
		if pos.Column > 0 {
			padding += strings.Repeat(" ", pos.Column-1)
		}

		src.WriteString(padding + "^\n")
	}

	return buf.String(), src.String()
}
