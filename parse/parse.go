// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package parse constructs trees of JSON values from source text.
//
// A Context describes how to parse, and what type of value is expected at the
// root of the input. Contexts are immutable, and may be shared among
// goroutines; the With methods return modified copies:
//
//	ctx := parse.Object().WithLazyNumbers()
//	obj, err := ctx.FromString(`{"id": 12345678901234567890}`)
//
// Each parse produces a fresh tree owned by the caller. The input must
// consist of exactly one JSON value, optionally surrounded by whitespace.
package parse

import (
	"errors"
	"io"

	"github.com/creachadair/jcodec"
	"github.com/creachadair/jcodec/ast"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// A Context is a parser configuration whose root value has type T.
// The zero value is not ready for use; use Any, Object, or Array.
type Context[T ast.Value] struct {
	root     string // label for the expected root type
	lazy     bool
	strict   bool
	maxDepth int
	logger   log.Logger
}

func newContext[T ast.Value](root string) Context[T] {
	return Context[T]{
		root:     root,
		maxDepth: jcodec.DefaultMaxDepth,
		logger:   log.NewNopLogger(),
	}
}

// Any returns a context that accepts a value of any type at the root.
func Any() Context[ast.Value] { return newContext[ast.Value]("value") }

// Object returns a context that requires an object at the root. Any other
// root value fails with an error of kind TypeMismatch.
func Object() Context[ast.Object] { return newContext[ast.Object]("object") }

// Array returns a context that requires an array at the root. Any other root
// value fails with an error of kind TypeMismatch.
func Array() Context[ast.Array] { return newContext[ast.Array]("array") }

// WithLazyNumbers returns a copy of c that represents numbers as
// *ast.LazyNumber values, which are not converted until first use.
func (c Context[T]) WithLazyNumbers() Context[T] { c.lazy = true; return c }

// WithStrictDuplicateKeys returns a copy of c that reports an error of kind
// Syntax for an object that contains the same key more than once. By default,
// the last value for a key wins, and the member stays at the position of the
// first occurrence of the key.
func (c Context[T]) WithStrictDuplicateKeys() Context[T] { c.strict = true; return c }

// WithMaxDepth returns a copy of c that limits the nesting depth of arrays and
// objects to n. If n <= 0, the default limit is used.
func (c Context[T]) WithMaxDepth(n int) Context[T] {
	if n <= 0 {
		n = jcodec.DefaultMaxDepth
	}
	c.maxDepth = n
	return c
}

// WithLogger returns a copy of c that logs parse failures to logger at debug
// level. A nil logger discards log output.
func (c Context[T]) WithLogger(logger log.Logger) Context[T] {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	c.logger = logger
	return c
}

// From parses a single value from src. The caller retains ownership of any
// reader underlying src, and is responsible for closing it.
func (c Context[T]) From(src jcodec.Source) (T, error) {
	var zero T
	h := newHandler(c.lazy, c.strict)
	st := jcodec.NewStream(src)
	st.SetMaxDepth(c.maxDepth)
	if err := st.ParseSingle(h); err != nil {
		c.logFailure(err)
		return zero, err
	}

	v, ok := h.root.(T)
	if !ok {
		err := jcodec.Errorf(jcodec.TypeMismatch, h.rootPos,
			"expected %s at root, got %s", c.root, typeLabel(h.root))
		c.logFailure(err)
		return zero, err
	}
	return v, nil
}

// FromString parses a single value from the UTF-8 text of s.
func (c Context[T]) FromString(s string) (T, error) { return c.From(jcodec.FromString(s)) }

// FromBytes parses a single value from the UTF-8 text of data.
func (c Context[T]) FromBytes(data []byte) (T, error) { return c.From(jcodec.FromBytes(data)) }

// FromReader parses a single value from the UTF-8 text of r.
func (c Context[T]) FromReader(r io.Reader) (T, error) {
	return c.From(jcodec.FromReader(r))
}

// FromRuneReader parses a single value from the characters of r.
func (c Context[T]) FromRuneReader(r io.RuneReader) (T, error) {
	return c.From(jcodec.FromRuneReader(r))
}

// FromUTF16 parses a single value from the UTF-16 code units of data.
func (c Context[T]) FromUTF16(data []uint16) (T, error) { return c.From(jcodec.FromUTF16(data)) }

func (c Context[T]) logFailure(err error) {
	var e *jcodec.Error
	if !errors.As(err, &e) {
		level.Debug(c.logger).Log("msg", "parse failed", "err", err)
		return
	}
	level.Debug(c.logger).Log(
		"msg", "parse failed",
		"kind", e.Kind,
		"line", e.Location.Line,
		"column", e.Location.Column,
		"offset", e.Offset,
		"err", e.Message,
	)
}

func typeLabel(v ast.Value) string {
	switch v.(type) {
	case ast.Object:
		return "object"
	case ast.Array:
		return "array"
	case ast.String:
		return "string"
	case ast.Number, *ast.LazyNumber:
		return "number"
	case ast.Bool:
		return "boolean"
	case ast.NullValue:
		return "null"
	default:
		return "unknown"
	}
}
