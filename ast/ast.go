// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines an in-memory tree of JSON values.
//
// A tree is made of Null, Bool, String, Number, *LazyNumber, Array and Object
// values. The parse package constructs trees from JSON source text, and the
// writer package renders them back to text.
package ast

import (
	"strconv"

	"github.com/creachadair/jcodec"
)

// A Value is an arbitrary JSON value. The concrete type of a Value is one of
// NullValue, Bool, String, Number, *LazyNumber, Array, or Object.
type Value interface {
	// JSON returns the compact JSON encoding of the value.
	JSON() string

	isValue()
}

// NullValue is the type of the JSON null constant.
type NullValue struct{}

// Null is the JSON null constant.
var Null NullValue

// JSON satisfies the Value interface.
func (NullValue) JSON() string { return "null" }

func (NullValue) isValue() {}

// A Bool is a Boolean constant, true or false.
type Bool bool

// JSON satisfies the Value interface.
func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

func (Bool) isValue() {}

// A String is a string value. It holds the decoded text, without quotes or
// escapes.
type String string

// JSON satisfies the Value interface.
func (s String) JSON() string { return jcodec.Quote(string(s)) }

func (String) isValue() {}

// An Array is a sequence of values.
type Array []Value

// JSON satisfies the Value interface.
func (a Array) JSON() string { return string(a.appendJSON(nil)) }

func (Array) isValue() {}

func (a Array) appendJSON(buf []byte) []byte {
	buf = append(buf, '[')
	for i, v := range a {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendValue(buf, v)
	}
	return append(buf, ']')
}

// An Object is a collection of key-value members, in order of insertion.
type Object []*Member

// JSON satisfies the Value interface.
func (o Object) JSON() string { return string(o.appendJSON(nil)) }

func (Object) isValue() {}

func (o Object) appendJSON(buf []byte) []byte {
	buf = append(buf, '{')
	for i, m := range o {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = jcodec.AppendQuote(buf, m.Key)
		buf = append(buf, ':')
		buf = appendValue(buf, m.Value)
	}
	return append(buf, '}')
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// Field constructs an object member with the given key and value. The value
// is converted as for ToValue.
func Field(key string, value any) *Member {
	return &Member{Key: key, Value: ToValue(value)}
}

// JSON returns the encoding of m as it appears in an object.
func (m *Member) JSON() string {
	buf := jcodec.AppendQuote(nil, m.Key)
	buf = append(buf, ':')
	return string(appendValue(buf, m.Value))
}

func appendValue(buf []byte, v Value) []byte {
	switch t := v.(type) {
	case Array:
		return t.appendJSON(buf)
	case Object:
		return t.appendJSON(buf)
	case String:
		return jcodec.AppendQuote(buf, string(t))
	case nil:
		return append(buf, "null"...)
	default:
		return append(buf, v.JSON()...)
	}
}
