// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jcodec

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/creachadair/jcodec/internal/escape"
	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// A Scanner reads lexical tokens from a Source.  Each call to Next advances
// the scanner to the next token, or reports an error.
//
// The scanner enforces the strict JSON grammar for tokens: numbers may not
// have a leading plus sign, redundant leading zeroes, or an empty fraction or
// exponent; strings may not contain unescaped control characters, unknown
// escapes, or unpaired surrogate escapes.
type Scanner struct {
	src  Source
	buf  bytes.Buffer // current token
	tbuf [][]byte     // allocation pool
	tok  Token
	err  error

	first, last Pos // start and end positions of the current token
}

// NewScanner constructs a new lexical scanner that consumes input from src.
func NewScanner(src Source) *Scanner { return &Scanner{src: src} }

// Next advances s to the next token of the input, and reports whether a token
// is available. At the end of input or in case of error, Next returns false
// and Err reports the error, if any. Err is nil at the end of input.
func (s *Scanner) Next() bool {
	s.buf.Reset()
	s.err = nil
	s.tok = Invalid

	ch, err := s.skipSpace()
	if err == io.EOF {
		s.last = s.first
		return false
	} else if err != nil {
		s.err = err
		return false
	}

	if t, ok := selfDelim(ch); ok {
		s.take(ch)
		s.tok = t
		s.last = s.src.Pos()
		return true
	}
	switch {
	case isNumStart(ch):
		err = s.scanNumber(ch)
	case ch == '"':
		err = s.scanString()
	case isNameRune(ch):
		err = s.scanName()
	default:
		err = s.failf("unexpected %q", ch)
	}
	s.last = s.src.Pos()
	s.err = err
	return err == nil
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next, or nil if Next stopped at the
// end of the input. A non-nil error has concrete type *Error.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token.  The return value is
// only valid until the next call of Next. The caller must copy the contents of
// the returned slice if it is needed beyond that.
func (s *Scanner) Text() []byte { return s.buf.Bytes() }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return s.copyOf(s.buf.Bytes()) }

// Unquote returns the decoded value of the current String token.
// It reports an error if the current token is not a String.
func (s *Scanner) Unquote() (string, error) {
	if s.tok != String {
		return "", Errorf(Syntax, s.first, "expected string, got %v", s.tok)
	}
	text := s.buf.Bytes()
	dec, err := escape.Unquote(mem.B(text[1 : len(text)-1]))
	if err != nil {
		return "", Errorf(Syntax, s.first, "%v", err)
	}
	return string(dec), nil
}

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.first.Offset, End: s.last.Offset} }

// Location returns the complete location of the current token. After Next
// reports the end of input, Location reports the position of the end.
func (s *Scanner) Location() Location {
	return Location{Span: s.Span(), First: s.first.LineCol, Last: s.last.LineCol}
}

// skipSpace discards whitespace and returns the first character of the next
// token, recording its position.
func (s *Scanner) skipSpace() (rune, error) {
	for {
		s.first = s.src.Pos()
		ch, err := s.src.Peek()
		if err != nil {
			return ch, err
		} else if !isSpace(ch) {
			return ch, nil
		}
		s.src.Advance()
	}
}

// take appends ch to the token buffer and consumes it from the source.
func (s *Scanner) take(ch rune) {
	s.buf.WriteRune(ch)
	s.src.Advance()
}

// peek returns the next character of the source without consuming it.
// At the end of the input peek returns -1 without error.
func (s *Scanner) peek() (rune, error) {
	ch, err := s.src.Peek()
	if err == io.EOF {
		return -1, nil
	}
	return ch, err
}

func (s *Scanner) scanString() error {
	s.take('"')
	for {
		ch, err := s.peek()
		if err != nil {
			return err
		}
		switch {
		case ch < 0:
			return s.failf("unterminated string")
		case ch == '"':
			s.take(ch)
			s.tok = String
			return nil
		case ch < ' ':
			return s.failf("unescaped control %q in string", ch)
		case ch == '\\':
			s.take(ch)
			if err := s.scanEscape(); err != nil {
				return err
			}
		default:
			s.take(ch)
		}
	}
}

// scanEscape consumes the remainder of an escape sequence following "\".
func (s *Scanner) scanEscape() error {
	ch, err := s.peek()
	if err != nil {
		return err
	}
	switch ch {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		s.take(ch)
		return nil
	case 'u':
		s.take(ch)
	case -1:
		return s.failf("unterminated string")
	default:
		return s.failf("invalid %q after escape", ch)
	}

	hi, err := s.readHex4()
	if err != nil {
		return err
	} else if !utf16.IsSurrogate(hi) {
		return nil
	} else if hi >= 0xdc00 {
		return s.failf("unpaired low surrogate \\u%04x", hi)
	}

	// A high surrogate must be followed immediately by an escaped low one.
	for _, want := range `\u` {
		if ch, err := s.peek(); err != nil {
			return err
		} else if ch != want {
			return s.failf("unpaired high surrogate \\u%04x", hi)
		}
		s.take(want)
	}
	lo, err := s.readHex4()
	if err != nil {
		return err
	} else if lo < 0xdc00 || lo > 0xdfff {
		return s.failf("invalid low surrogate \\u%04x", lo)
	}
	return nil
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (s *Scanner) readHex4() (rune, error) {
	var v rune
	for range 4 {
		ch, err := s.peek()
		if err != nil {
			return 0, err
		} else if !isHexDigit(ch) {
			return 0, s.failf("invalid Unicode escape: expected hex digit, got %s", runeLabel(ch))
		}
		s.take(ch)
		v <<= 4
		switch {
		case ch <= '9':
			v += ch - '0'
		case ch <= 'F':
			v += ch - 'A' + 10
		default:
			v += ch - 'a' + 10
		}
	}
	return v, nil
}

func (s *Scanner) scanNumber(ch rune) error {
	s.tok = Integer
	if ch == '-' {
		// If there is a leading sign, we need at least one digit.
		s.take(ch)
		next, err := s.peek()
		if err != nil {
			return err
		} else if !isDigit(next) {
			return s.failf("expected digit after minus sign, got %s", runeLabel(next))
		}
		ch = next
	}

	// Integer part. A leading zero must be the only digit: 0.12 is OK, 01.2
	// is not.
	var err error
	if ch == '0' {
		s.take(ch)
		if ch, err = s.peek(); err != nil {
			return err
		} else if isDigit(ch) {
			return s.failf("extra leading zeroes")
		}
	} else if _, ch, err = s.digits(); err != nil {
		return err
	}

	// If a decimal point follows, consume a fractional part.
	if ch == '.' {
		s.take(ch)
		s.tok = Number
		var nd int
		if nd, ch, err = s.digits(); err != nil {
			return err
		} else if nd == 0 {
			return s.failf("no digits after decimal point")
		}
	}

	// If an exponent follows, consume it.
	if ch == 'e' || ch == 'E' {
		s.take(ch)
		s.tok = Number
		if ch, err = s.peek(); err != nil {
			return err
		} else if ch == '+' || ch == '-' {
			s.take(ch)
		}
		if nd, _, err := s.digits(); err != nil {
			return err
		} else if nd == 0 {
			return s.failf("missing exponent digits")
		}
	}
	return nil
}

// digits consumes decimal digits from the input, and returns the number of
// digits consumed and the first non-digit character (or -1 at EOF).
func (s *Scanner) digits() (int, rune, error) {
	var nd int
	for {
		ch, err := s.peek()
		if err != nil {
			return nd, ch, err
		} else if !isDigit(ch) {
			return nd, ch, nil
		}
		s.take(ch)
		nd++
	}
}

// scanName consumes a constant name (true, false, null).
func (s *Scanner) scanName() error {
	for {
		ch, err := s.peek()
		if err != nil {
			return err
		} else if !isNameRune(ch) {
			break
		}
		s.take(ch)
	}
	switch got := mem.B(s.buf.Bytes()); {
	case got.EqualString("true"):
		s.tok = True
	case got.EqualString("false"):
		s.tok = False
	case got.EqualString("null"):
		s.tok = Null
	default:
		return s.failf("unknown constant %q", got.StringCopy())
	}
	return nil
}

// failf reports a syntax error at the start of the current token.
func (s *Scanner) failf(msg string, args ...any) error {
	return Errorf(Syntax, s.first, msg, args...)
}

func runeLabel(ch rune) string {
	if ch < 0 {
		return "end of input"
	}
	return fmt.Sprintf("%q", ch)
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch rune) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch rune) bool    { return '0' <= ch && ch <= '9' }
func isNameRune(ch rune) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Token, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}

// copyOf returns a copy of text, packing small tokens into shared blocks to
// reduce the number of allocations for a large input.
func (s *Scanner) copyOf(text []byte) []byte {
	const minBlockSlop = 4
	const bufBlockBytes = 16384

	if len(text) >= bufBlockBytes/16 {
		return bytes.Clone(text)
	}
	n := len(s.tbuf) - 1
	if n < 0 || cap(s.tbuf[n])-len(s.tbuf[n]) < len(text)+minBlockSlop {
		// The current block is full; its tokens keep it alive until released.
		s.tbuf = append(s.tbuf[:0], make([]byte, 0, bufBlockBytes))
		n = 0
	}
	p := len(s.tbuf[n])
	s.tbuf[n] = append(s.tbuf[n], text...)
	return s.tbuf[n][p : p+len(text) : p+len(text)]
}
