// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/creachadair/jcodec"
	"github.com/valyala/fastjson/fastfloat"
)

// A Number is a numeric value. Each Number has an integer view and a
// floating-point view; IsInt reports which of them is canonical.
type Number struct {
	i     int64
	f     float64
	isInt bool
}

// Int constructs an integer Number.
func Int(z int64) Number { return Number{i: z, f: float64(z), isInt: true} }

// Float constructs a floating-point Number. The value should be finite: a
// Number holding NaN or an infinity is rejected by the writer, and its JSON
// method panics.
func Float(f float64) Number { return Number{i: truncate(f), f: f} }

// IsInt reports whether n was constructed from an integer.
func (n Number) IsInt() bool { return n.isInt }

// Int64 returns the integer view of n. A floating-point value is truncated
// toward zero, and saturates at the bounds of int64.
func (n Number) Int64() int64 { return n.i }

// Float64 returns the floating-point view of n. An integer value may lose
// precision.
func (n Number) Float64() float64 { return n.f }

// JSON satisfies the Value interface. It panics if n is not finite.
func (n Number) JSON() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	buf, err := jcodec.AppendFloat(nil, n.f, 64)
	if err != nil {
		panic(err)
	}
	return string(buf)
}

func (Number) isValue() {}

func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// ParseNumber parses a JSON number literal. See ParseNumberAt.
func ParseNumber(text string) (Number, error) { return ParseNumberAt(text, jcodec.Pos{}) }

// ParseNumberAt parses a JSON number literal whose text begins at pos.
//
// A literal with no fraction or exponent is parsed as an integer; if it does
// not fit in an int64, it is parsed as floating-point instead. Other literals
// are parsed as floating-point with correct rounding. A result that is not
// finite is reported as an error of kind NumericRange.
func ParseNumberAt(text string, pos jcodec.Pos) (Number, error) {
	if isIntText(text) {
		z, err := fastfloat.ParseInt64(text)
		if err == nil {
			return Int(z), nil
		} else if !errors.Is(err, strconv.ErrRange) {
			return Number{}, jcodec.Errorf(jcodec.NumericRange, pos, "invalid number %q: %w", text, err)
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Number{}, jcodec.Errorf(jcodec.NumericRange, pos, "invalid number %q: %w", text, err)
	} else if math.IsInf(f, 0) || math.IsNaN(f) {
		return Number{}, jcodec.Errorf(jcodec.NumericRange, pos, "number %q out of range", text)
	}
	return Float(f), nil
}

// isIntText reports whether text has no fraction or exponent.
func isIntText(text string) bool { return !strings.ContainsAny(text, ".eE") }

// A LazyNumber is a numeric value whose text has not yet been converted.
// Conversion happens on the first call to a numeric accessor, and the result
// is retained for subsequent calls.
type LazyNumber struct {
	text string
	pos  jcodec.Pos

	once sync.Once
	num  Number
	err  error
}

// NewLazyNumber constructs a LazyNumber for the number literal text, whose
// source text began at pos. The text is not checked until it is resolved.
func NewLazyNumber(text string, pos jcodec.Pos) *LazyNumber {
	return &LazyNumber{text: text, pos: pos}
}

// Text returns the literal text of n.
func (n *LazyNumber) Text() string { return n.text }

// Pos returns the position of n in its source text.
func (n *LazyNumber) Pos() jcodec.Pos { return n.pos }

// JSON satisfies the Value interface. It returns the literal text of n.
func (n *LazyNumber) JSON() string { return n.text }

func (*LazyNumber) isValue() {}

// Number resolves n as for ParseNumberAt.
func (n *LazyNumber) Number() (Number, error) {
	n.once.Do(func() { n.num, n.err = ParseNumberAt(n.text, n.pos) })
	return n.num, n.err
}

// Int64 returns the integer view of n. Unlike Number, it reports an error of
// kind NumericRange if the text of n is an integer too large for an int64.
func (n *LazyNumber) Int64() (int64, error) {
	v, err := n.Number()
	if err != nil {
		return 0, err
	} else if !v.IsInt() && isIntText(n.text) {
		return 0, jcodec.Errorf(jcodec.NumericRange, n.pos, "integer %q out of range for int64", n.text)
	}
	return v.Int64(), nil
}

// Float64 returns the floating-point view of n.
func (n *LazyNumber) Float64() (float64, error) {
	v, err := n.Number()
	return v.Float64(), err
}
