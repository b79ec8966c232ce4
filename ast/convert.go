// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"
	"maps"
	"slices"
)

// ToValue converts a Go value to a Value. It handles nil, bool, string, the
// built-in integer and floating-point types, slices of any and of Value, and
// maps from string to any (members are sorted by key). A value that is
// already a Value is returned unchanged. ToValue panics for any other type.
func ToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case []Value:
		return Array(t)
	case []any:
		arr := make(Array, len(t))
		for i, elt := range t {
			arr[i] = ToValue(elt)
		}
		return arr
	case []*Member:
		return Object(t)
	case map[string]any:
		keys := slices.Sorted(maps.Keys(t))
		obj := make(Object, len(keys))
		for i, key := range keys {
			obj[i] = Field(key, t[key])
		}
		return obj
	default:
		panic(fmt.Sprintf("unsupported value type %T", v))
	}
}

// fromUint returns an integer Number if z fits in an int64, else a float.
func fromUint(z uint64) Number {
	if z > 1<<63-1 {
		return Float(float64(z))
	}
	return Int(int64(z))
}

// Clone returns a deep copy of v. Lazy numbers are shared, not copied.
func Clone(v Value) Value {
	switch t := v.(type) {
	case Array:
		out := slices.Clone(t)
		for i, elt := range out {
			out[i] = Clone(elt)
		}
		return out
	case Object:
		out := make(Object, len(t))
		for i, m := range t {
			out[i] = &Member{Key: m.Key, Value: Clone(m.Value)}
		}
		return out
	default:
		return v
	}
}
