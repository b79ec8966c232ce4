// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote appends the JSON encoding of src to dst, including the enclosing
// double quotation marks, and returns the extended slice.
//
// Control characters, quotation marks, and backslashes are escaped, as are
// characters outside the Basic Multilingual Plane, which are written as the
// escapes of a UTF-16 surrogate pair. All other characters, including "/", are
// copied as UTF-8. Invalid UTF-8 is replaced by U+FFFD.
func Quote(dst []byte, src mem.RO) []byte {
	dst = append(dst, '"')
	for src.Len() != 0 {
		if b := src.At(0); b < utf8.RuneSelf {
			if b < ' ' {
				if c := controlEsc[b]; c != 0 {
					dst = append(dst, '\\', c)
				} else {
					dst = append(dst, '\\', 'u', '0', '0', hexDigit[b>>4], hexDigit[b&15])
				}
			} else if b == '\\' || b == '"' {
				dst = append(dst, '\\', b)
			} else {
				dst = append(dst, b)
			}
			src = src.SliceFrom(1)
			continue
		}

		r, n := mem.DecodeRune(src)
		if r > 0xffff {
			hi, lo := utf16.EncodeRune(r)
			dst = appendUnit(appendUnit(dst, hi), lo)
		} else {
			dst = utf8.AppendRune(dst, r) // r == utf8.RuneError if src is invalid
		}
		src = src.SliceFrom(n)
	}
	return append(dst, '"')
}

// appendUnit appends the \u escape of the UTF-16 code unit u to dst.
func appendUnit(dst []byte, u rune) []byte {
	return append(dst, '\\', 'u',
		hexDigit[u>>12&15], hexDigit[u>>8&15], hexDigit[u>>4&15], hexDigit[u&15])
}
