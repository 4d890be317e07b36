// Package errors defines the tagged error type used across this module.
package errors

import (
	"bytes"
	"fmt"
)

// Op describes the operation being performed, usually the name of the
// method invoked (engine.Set, server.serve, and so on).
type Op string

// Kind classifies an error so callers can switch on it without
// string-matching messages.
type Kind uint8

// Kinds of errors.
const (
	Other                 Kind = iota // Unclassified error; not printed.
	Io                                // An operating-system I/O failure.
	Serde                             // A record failed to parse or encode.
	KeyNotFound                       // remove of an absent key.
	UnexpectedCommandType             // Index pointed at a non-Set record.
	Utf8                              // Decoding bytes as UTF-8 failed.
	StringError                       // Generic message carrier.
)

var kindNames = map[Kind]string{
	Other:                 "other",
	Io:                    "io",
	Serde:                 "serde",
	KeyNotFound:           "key_not_found",
	UnexpectedCommandType: "unexpected_command_type",
	Utf8:                  "utf8",
	StringError:           "string_error",
}

// Name returns a stable, wire-safe identifier for k, letting one
// process send a Kind to another without sharing this type.
func (k Kind) Name() string { return kindNames[k] }

// ParseKind is the inverse of Kind.Name; an unrecognized name yields
// Other rather than an error, since a Kind recovered from across a
// connection is advisory, not load-bearing.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return Other
}

func (k Kind) String() string {
	switch k {
	case Io:
		return "I/O error"
	case Serde:
		return "serialization error"
	case KeyNotFound:
		return "key not found"
	case UnexpectedCommandType:
		return "unexpected command type"
	case Utf8:
		return "invalid UTF-8"
	case StringError:
		return "error"
	}
	return "unknown error kind"
}

// Error is the type that implements the error interface. Any field may
// be left at its zero value.
type Error struct {
	Op   Op
	Kind Kind
	Err  error
}

var _ error = (*Error)(nil)

// Separator joins a wrapped error onto its own line, as upspin's
// errors package does, so long chains stay readable.
var Separator = ":\n\t"

// E builds an error from its arguments. The type of each argument
// determines its meaning:
//
//	errors.Op     the operation being performed
//	errors.Kind   the class of error
//	error         the underlying error that triggered this one
//
// If Kind is unset (or Other) and the wrapped error is itself an
// *Error, the Kind is pulled up from it so callers don't need to
// repeat it at every layer.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E called with no arguments")
	}
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case Kind:
			e.Kind = arg
		case *Error:
			cp := *arg
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			panic(fmt.Sprintf("errors.E: bad argument of type %T: %v", arg, arg))
		}
	}
	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}
	if e.Kind == Other {
		e.Kind = prev.Kind
		prev.Kind = Other
	}
	return e
}

func (e *Error) Error() string {
	b := new(bytes.Buffer)
	if e.Op != "" {
		b.WriteString(string(e.Op))
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		if _, ok := e.Err.(*Error); ok {
			pad(b, Separator)
			b.WriteString(e.Err.Error())
		} else {
			pad(b, ": ")
			b.WriteString(e.Err.Error())
		}
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func pad(b *bytes.Buffer, str string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(str)
}

// KindOf returns the Kind of err if it is, or wraps, an *Error, and
// Other otherwise.
func KindOf(err error) Kind {
	e, ok := err.(*Error)
	if !ok {
		return Other
	}
	if e.Kind != Other {
		return e.Kind
	}
	if e.Err != nil {
		return KindOf(e.Err)
	}
	return Other
}

// Is reports whether err is, or wraps, an *Error of the given kind.
func Is(kind Kind, err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		return Is(kind, e.Err)
	}
	return false
}

// Str returns an error that formats as the given text. It is intended
// to be used as the error-typed argument to E.
func Str(text string) error {
	return &errorString{text}
}

type errorString struct {
	s string
}

func (e *errorString) Error() string { return e.s }

// Errorf is equivalent to fmt.Errorf, but returns a plain error value
// suitable for wrapping with E; it lets callers depend on only this
// package for all error handling.
func Errorf(format string, args ...interface{}) error {
	return &errorString{fmt.Sprintf(format, args...)}
}

// KeyNotFoundf is a convenience for the one error kind spelled out by
// name everywhere in this module's contract.
func KeyNotFoundf(op Op, format string, args ...interface{}) error {
	return E(op, KeyNotFound, Errorf(format, args...))
}
