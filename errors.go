// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcodec

import (
	"errors"
	"fmt"
)

// Kind classifies the errors reported by the codec.
type Kind byte

// Constants defining the valid Kind values.
const (
	Unknown       Kind = iota // not a codec error
	Syntax                    // grammar or lexical violation
	Encoding                  // malformed UTF-8 or UTF-16 input
	NumericRange              // number literal is out of range or unparseable
	TypeMismatch              // root value has the wrong type
	DepthExceeded             // nesting limit exceeded
	WriterState               // writer operation not valid in the current state
	WriterRange               // attempt to write NaN or infinity
	IO                        // failure reading a source or writing a sink
)

var kindStr = [...]string{
	Unknown:       "unknown",
	Syntax:        "syntax",
	Encoding:      "encoding",
	NumericRange:  "numeric range",
	TypeMismatch:  "type mismatch",
	DepthExceeded: "depth exceeded",
	WriterState:   "writer state",
	WriterRange:   "writer range",
	IO:            "I/O",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return kindStr[Unknown]
	}
	return kindStr[k]
}

// Error is the concrete type of errors reported by the scanner, the stream
// parser, and the packages built on them.
//
// Errors from the writer do not have a line and column; their Offset reports
// the number of bytes emitted before the failing operation.
type Error struct {
	Kind     Kind
	Message  string
	Offset   int     // 0-based
	Location LineCol // 1-based, or zero if unknown

	err error
}

// Errorf constructs an *Error of the given kind at pos. If msg contains a %w
// verb, the corresponding argument is retained as the cause of the error.
func Errorf(kind Kind, pos Pos, msg string, args ...any) *Error {
	err := fmt.Errorf(msg, args...)
	return &Error{
		Kind:     kind,
		Message:  err.Error(),
		Offset:   pos.Offset,
		Location: pos.LineCol,
		err:      errors.Unwrap(err),
	}
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Location.Line == 0 {
		return fmt.Sprintf("%v error (offset %d): %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%v error at %s (offset %d): %s", e.Kind, e.Location, e.Offset, e.Message)
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.err }

// KindOf reports the Kind of the first *Error in the chain of err, or Unknown
// if err does not contain an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
