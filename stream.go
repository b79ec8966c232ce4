// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jcodec

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
)

// An Anchor represents a location in source text. The methods of an Anchor
// will report the location, token type, and contents of the anchor.
type Anchor interface {
	Token() Token             // Returns the token type of the anchor
	Text() []byte             // Returns a view of the raw (undecoded) text of the anchor
	Copy() []byte             // Returns a copy of the raw text of the anchor
	Unquote() (string, error) // Returns the decoded value of a string anchor
	Location() Location       // Returns the full location of the anchor
}

// A Handler handles events from parsing an input stream.  If a method reports
// an error, parsing stops and that error is returned to the caller.
// The parser ensures objects and arrays are correctly balanced.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// location after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose key is at loc.  The text of the key is
	// still quoted; use the Unquote method of the anchor to decode it.
	BeginMember(loc Anchor) error

	// End the current object member giving the location and type of the token
	// that terminated the member (either Comma or RBrace).
	EndMember(loc Anchor) error

	// Report a data value at the given location. The type of the value can be
	// recovered from the token. String tokens are quoted.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// DefaultMaxDepth is the default limit on the nesting depth of arrays and
// objects accepted by a Stream.
const DefaultMaxDepth = 256

// Stream is a stream parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input.
type Stream struct {
	s        *Scanner
	depth    int
	maxDepth int
}

// NewStream constructs a new Stream that consumes input from src.
func NewStream(src Source) *Stream { return NewStreamWithScanner(NewScanner(src)) }

// NewStreamWithScanner constructs a new Stream that consumes input from s.
func NewStreamWithScanner(s *Scanner) *Stream {
	return &Stream{s: s, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth sets the maximum nesting depth of arrays and objects. Input
// nested more deeply than this fails with an error of kind DepthExceeded.
// If n <= 0, the limit is set to DefaultMaxDepth.
func (s *Stream) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	s.maxDepth = n
}

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *Error:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// Parse parses the input stream and delivers events to h until either an error
// occurs or the input is exhausted. The input may contain any number of
// values. In case of a syntax error, the returned error has type [*Error].
func (s *Stream) Parse(h Handler) (err error) {
	defer s.recoverParseError(&err)
	s.depth = 0

	for {
		if err := s.nextToken(); err == io.EOF {
			h.EndOfInput(s.s)
			return nil
		} else if err != nil {
			s.fail(err)
		}
		s.parseElement(h)
	}
}

// ParseOne parses a single value from the input stream and delivers events to
// h until the value is complete or an error occurs. If no further value is
// available from the input, ParseOne returns io.EOF. In case of a syntax
// error, the returned error has type [*Error].
func (s *Stream) ParseOne(h Handler) (err error) {
	defer s.recoverParseError(&err)
	s.depth = 0

	if err := s.nextToken(); err == io.EOF {
		h.EndOfInput(s.s)
		return err
	} else if err != nil {
		s.fail(err)
	}
	s.parseElement(h)
	return nil
}

// ParseSingle parses an input consisting of exactly one value, surrounded by
// optional whitespace, and delivers events to h. It reports a syntax error if
// the input is empty or if anything other than whitespace follows the value.
func (s *Stream) ParseSingle(h Handler) (err error) {
	defer s.recoverParseError(&err)
	s.depth = 0

	s.advance()
	s.parseElement(h)
	if err := s.nextToken(); err == nil {
		s.syntaxError("unexpected %v after value", s.s.Token())
	} else if err != io.EOF {
		s.fail(err)
	}
	h.EndOfInput(s.s)
	return nil
}

// parseElement consumes a single value of any type.
// Precondition: token != Invalid.
func (s *Stream) parseElement(h Handler) {
	switch tok := s.s.Token(); tok {
	case LBrace:
		s.push()
		s.checkError(h.BeginObject(s.s))
		s.parseMembers(h)
		s.require(RBrace)
		s.checkError(h.EndObject(s.s))
		s.depth--
	case LSquare:
		s.push()
		s.checkError(h.BeginArray(s.s))
		s.parseElements(h)
		s.require(RSquare)
		s.checkError(h.EndArray(s.s))
		s.depth--
	case Integer, Number, String, True, False, Null:
		s.checkError(h.Value(s.s))
	case RBrace, RSquare, Comma, Colon:
		s.syntaxError("unexpected %v", tok)
	default:
		s.syntaxError("unknown token %v", tok)
	}
}

// parseMembers consumes zero of more key:value object members.
// Precondition: token == LBrace.
// Postcondition: token == RBrace.
func (s *Stream) parseMembers(h Handler) {
	tok := s.advance(RBrace, String)
	if tok == RBrace {
		return // end of object
	}
	for {
		// Parse a single member: "key": value
		s.checkError(h.BeginMember(s.s))
		s.advance(Colon)
		s.advance()
		s.parseElement(h)

		// Check whether we have more members (",") or are done ("}").
		tok := s.advance(RBrace, Comma)
		s.checkError(h.EndMember(s.s))
		if tok == RBrace {
			return // end of object
		}
		s.advance(String) // advance to next key
	}
}

// parseElements consumes zero or more comma-separated array values.
// Precondition: token == LSquare.
// Postcondition: token == RSquare.
func (s *Stream) parseElements(h Handler) {
	if tok := s.advance(); tok == RSquare {
		return // end of array
	}
	s.parseElement(h)
	for {
		if tok := s.advance(RSquare, Comma); tok == RSquare {
			return // end of array
		}
		s.advance()
		s.parseElement(h)
	}
}

// push records entry into a nested array or object, and fails if the
// nesting limit is exceeded.
func (s *Stream) push() {
	s.depth++
	if s.depth > s.maxDepth {
		panic(Errorf(DepthExceeded, s.s.Location().Start(),
			"nesting depth exceeds limit of %d", s.maxDepth))
	}
}

func (s *Stream) nextToken() error {
	if s.s.Next() {
		return nil
	}
	return cmp.Or(s.s.Err(), io.EOF)
}

// advance reads the next token, which must be one of tokens if any are given.
// The end of input is a syntax error.
func (s *Stream) advance(tokens ...Token) Token {
	if err := s.nextToken(); err == io.EOF {
		if len(tokens) == 0 {
			s.syntaxError("unexpected end of input")
		}
		s.syntaxError("%v", tokLabel(tokens, "end of input"))
	} else if err != nil {
		s.fail(err)
	}
	tok := s.s.Token()
	if len(tokens) != 0 && !tokOneOf(tok, tokens) {
		s.syntaxError("%v", tokLabel(tokens, tok))
	}
	return tok
}

func (s *Stream) require(token Token) {
	if tok := s.s.Token(); tok != token {
		s.syntaxError("expected %v, got %v", token, tok)
	}
}

// syntaxError panics with a syntax error at the current token.
func (s *Stream) syntaxError(msg string, args ...any) {
	panic(Errorf(Syntax, s.s.Location().Start(), msg, args...))
}

// fail panics with err, which was reported by the scanner.
func (s *Stream) fail(err error) {
	if e, ok := err.(*Error); ok {
		panic(e)
	}
	s.syntaxError("%w", err)
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprint(got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, len(tokens)-1)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// tokOneOf reports whether cur is an element of tokens.
func tokOneOf(cur Token, tokens []Token) bool {
	return slices.Contains(tokens, cur)
}
