// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jcodec implements a strict JSON scanner and stream parser.
//
// The jcodec package is the core of a small JSON codec: it reads characters
// from a Source, breaks them into tokens, and reports the structure of the
// input to a Handler. The parse package builds trees of ast values from
// these events, and the writer package emits JSON text.
//
// # Sources
//
// A Source provides one character of lookahead over the input, and tracks
// the line, column, and offset of each position. Sources are available for
// in-memory strings and byte slices (FromString, FromBytes), byte streams
// (FromReader), streams of decoded characters (FromRuneReader), and UTF-16
// code units (FromUTF16). Byte sources require valid UTF-8; malformed input
// is reported as an error of kind Encoding.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON.  Construct a scanner
// from a Source and call its Next method to iterate over the stream. Next
// advances to the next input token and reports true, or reports false at the
// end of input or on error:
//
//	s := jcodec.NewScanner(jcodec.FromReader(input))
//	for s.Next() {
//	   log.Printf("Next token: %v", s.Token())
//	}
//	if err := s.Err(); err != nil {
//	   log.Fatalf("Scanning failed: %v", err)
//	}
//
// # Streaming
//
// The Stream type implements an event-driven stream parser for JSON.  The
// parser works by calling methods on a Handler value to report the structure
// of the input. In case of error, parsing is terminated and an error of
// concrete type *jcodec.Error is returned.
//
// Construct a Stream from a Source, and call its Parse method. Parse returns
// nil if the input was fully processed without error. If a Handler method
// reports an error, parsing stops and that error is returned.
//
//	s := jcodec.NewStream(jcodec.FromString(input))
//	if err := s.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// To parse a single value from the front of the input, call ParseOne. This
// method returns io.EOF if no further values are available. To parse an input
// that must consist of exactly one value, call ParseSingle.
//
// # Handlers
//
// The Handler interface accepts parser events from a Stream. The methods of
// a handler correspond to the syntax of JSON values:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginObject, EndObject    | { ... }
//	array      | BeginArray, EndArray      | [ ... ]
//	member     | BeginMember, EndMember    | "key": value
//	value      | Value                     | true, false, null, number, string
//	--         | EndOfInput                | end of input
//
// Each method is passed an Anchor value that can be used to retrieve location
// and type information. The Anchor passed to a handler method is only valid
// for the duration of that method call; the handler must copy any data it
// needs to retain beyond the lifetime of the call.
//
// # Errors
//
// Errors reported by this package and the packages built on it have concrete
// type *Error, and carry a Kind that classifies the failure. Use KindOf to
// recover the kind of a possibly-wrapped error.
package jcodec
