// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jcodec

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/creachadair/jcodec/internal/escape"
	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added. Characters outside the Basic Multilingual
// Plane are escaped as UTF-16 surrogate pairs.
func Quote(src string) string { return string(escape.Quote(nil, mem.S(src))) }

// AppendQuote appends the JSON encoding of src to dst and returns the
// extended slice.
func AppendQuote(dst []byte, src string) []byte { return escape.Quote(dst, mem.S(src)) }

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
//
// Unquote reports an error for an invalid or incomplete escape sequence, and
// for an escaped surrogate that is not part of a valid pair.
func Unquote(src string) (string, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return "", errors.New("missing quotations")
	}
	dec, err := escape.Unquote(mem.S(src[1 : len(src)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

// AppendFloat appends the JSON encoding of f to dst, treating f as a value of
// the given bitSize (32 or 64). The shortest representation that round-trips
// is used, in fixed notation for magnitudes in [1e-6, 1e21) and exponent
// notation otherwise. Integral values are written with a trailing ".0" so
// that they read back as floating-point.
//
// AppendFloat reports an error of kind WriterRange if f is NaN or infinite.
func AppendFloat(dst []byte, f float64, bitSize int) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dst, Errorf(WriterRange, Pos{}, "cannot encode %v", f)
	}
	abs := math.Abs(f)
	if bitSize == 32 {
		abs = float64(float32(abs))
	}
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.AppendFloat(dst, f, 'e', -1, bitSize), nil
	}
	n := len(dst)
	dst = strconv.AppendFloat(dst, f, 'f', -1, bitSize)
	if bytes.IndexByte(dst[n:], '.') < 0 {
		dst = append(dst, '.', '0')
	}
	return dst, nil
}
