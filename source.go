// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcodec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// A Source is a stream of characters with one character of lookahead and
// position tracking. A Source does not own the reader it consumes; the caller
// is responsible for closing it, whether or not parsing succeeds.
type Source interface {
	// Peek returns the current character without consuming it.  At the end
	// of the input Peek returns -1 and io.EOF. Any other error is an *Error
	// of kind Encoding or IO.
	Peek() (rune, error)

	// Advance consumes the current character. It has no effect at the end of
	// the input or after an error.
	Advance()

	// Pos reports the position of the current character.
	Pos() Pos
}

const bom = '\uFEFF'

// FromString returns a Source that reads UTF-8 encoded JSON from s.
func FromString(s string) Source { return newByteSource(mem.NewReader(mem.S(s))) }

// FromBytes returns a Source that reads UTF-8 encoded JSON from data.
// The caller must not modify data while the source is in use.
func FromBytes(data []byte) Source { return newByteSource(mem.NewReader(mem.B(data))) }

// FromReader returns a Source that reads a stream of UTF-8 encoded JSON from
// r. Reads are buffered unless r is already a *bufio.Reader.
func FromReader(r io.Reader) Source {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return newByteSource(br)
}

// FromRuneReader returns a Source that reads pre-decoded characters from r.
// Offsets reported by the source count characters.
func FromRuneReader(r io.RuneReader) Source {
	return &charSource{r: r, look: look{pos: startPos}}
}

// FromUTF16 returns a Source that reads UTF-16 code units from data.
// Offsets reported by the source count code units; columns count code points.
func FromUTF16(data []uint16) Source {
	return &charSource{r: &utf16Reader{buf: data}, units: true, look: look{pos: startPos}}
}

// look holds the lookahead state shared by the source implementations.
type look struct {
	pos    Pos
	cur    rune
	size   int
	err    error
	loaded bool
}

func (k *look) advance() {
	if k.err != nil {
		return
	}
	k.pos.advance(k.cur, k.size)
	k.loaded = false
}

func (k *look) set(ch rune, size int, err error) {
	k.cur, k.size, k.err, k.loaded = ch, size, err, true
}

// byteSource decodes UTF-8 from a reader of bytes.
type byteSource struct {
	r io.RuneReader
	look
}

func newByteSource(r io.RuneReader) *byteSource {
	return &byteSource{r: r, look: look{pos: startPos}}
}

func (s *byteSource) Peek() (rune, error) {
	if !s.loaded {
		s.load()

		// A byte-order mark is consumed without advancing the column.
		if s.pos.Offset == 0 && s.err == nil && s.cur == bom {
			s.pos.Offset += s.size
			s.load()
		}
	}
	return s.cur, s.err
}

// Pos reports the current position. At the start of input this loads the
// first character, so that a leading byte-order mark is not counted.
func (s *byteSource) Pos() Pos {
	if !s.loaded && s.pos.Offset == 0 {
		s.Peek()
	}
	return s.pos
}

func (s *byteSource) Advance() {
	if !s.loaded {
		s.Peek()
	}
	s.advance()
}

func (s *byteSource) load() {
	ch, nb, err := s.r.ReadRune()
	switch {
	case err == io.EOF:
		s.set(-1, 0, io.EOF)
	case err != nil:
		s.set(-1, 0, Errorf(IO, s.pos, "read failed: %w", err))
	case ch == utf8.RuneError && nb == 1:
		// The decoder reports invalid, overlong, and surrogate encodings as a
		// single-byte error rune.
		s.set(-1, 0, Errorf(Encoding, s.pos, "invalid UTF-8 encoding"))
	default:
		s.set(ch, nb, nil)
	}
}

// charSource reads pre-decoded characters.
type charSource struct {
	r     io.RuneReader
	units bool // offsets count the sizes reported by r, rather than runes
	look
}

func (s *charSource) Peek() (rune, error) {
	if !s.loaded {
		s.load()
		if s.pos.Offset == 0 && s.err == nil && s.cur == bom {
			s.pos.Offset += s.size
			s.load()
		}
	}
	return s.cur, s.err
}

func (s *charSource) Pos() Pos {
	if !s.loaded && s.pos.Offset == 0 {
		s.Peek()
	}
	return s.pos
}

func (s *charSource) Advance() {
	if !s.loaded {
		s.Peek()
	}
	s.advance()
}

func (s *charSource) load() {
	ch, n, err := s.r.ReadRune()
	if !s.units {
		n = 1
	}
	switch {
	case err == io.EOF:
		s.set(-1, 0, io.EOF)
	case errors.Is(err, errUnpaired):
		s.set(-1, 0, Errorf(Encoding, s.pos, "%v", err))
	case err != nil:
		s.set(-1, 0, Errorf(IO, s.pos, "read failed: %w", err))
	default:
		s.set(ch, n, nil)
	}
}

var errUnpaired = errors.New("unpaired surrogate")

// utf16Reader implements io.RuneReader over UTF-16 code units. The size
// reported for each rune is the number of code units it occupies.
type utf16Reader struct {
	buf []uint16
	pos int
}

func (u *utf16Reader) ReadRune() (rune, int, error) {
	if u.pos >= len(u.buf) {
		return 0, 0, io.EOF
	}
	c := rune(u.buf[u.pos])
	if !utf16.IsSurrogate(c) {
		u.pos++
		return c, 1, nil
	}
	if u.pos+1 < len(u.buf) {
		if r := utf16.DecodeRune(c, rune(u.buf[u.pos+1])); r != utf8.RuneError {
			u.pos += 2
			return r, 2, nil
		}
	}
	return 0, 0, fmt.Errorf("%w U+%04X", errUnpaired, c)
}
