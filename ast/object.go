// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"slices"
)

// Len reports the number of members in o.
func (o Object) Len() int { return len(o) }

// Find returns the first member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	if i := o.index(key); i >= 0 {
		return o[i]
	}
	return nil
}

func (o Object) index(key string) int {
	return slices.IndexFunc(o, func(m *Member) bool { return m.Key == key })
}

// Get returns the value of the first member of o with the given key, or nil
// if there is no such member.
func (o Object) Get(key string) Value {
	if m := o.Find(key); m != nil {
		return m.Value
	}
	return nil
}

// Has reports whether o has a member with the given key.
func (o Object) Has(key string) bool { return o.index(key) >= 0 }

// Keys returns the keys of o in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Set replaces the value of the first member of o with the given key, or
// appends a new member if there is none. The value is converted as for
// ToValue. Set returns the modified object.
func (o Object) Set(key string, value any) Object {
	if m := o.Find(key); m != nil {
		m.Value = ToValue(value)
		return o
	}
	return append(o, Field(key, value))
}

// Delete removes all members of o with the given key, and returns the
// modified object.
func (o Object) Delete(key string) Object {
	return slices.DeleteFunc(o, func(m *Member) bool { return m.Key == key })
}

// IsNull reports whether o has a member with the given key whose value is
// null.
func (o Object) IsNull(key string) bool {
	_, ok := o.Get(key).(NullValue)
	return ok
}

// GetString returns the string value of key, or dflt if key is not present
// or its value is not a string.
func (o Object) GetString(key, dflt string) string { return asString(o.Get(key), dflt) }

// GetInt returns the integer view of the numeric value of key, or dflt if key
// is not present or its value is not a number.
func (o Object) GetInt(key string, dflt int64) int64 { return asInt(o.Get(key), dflt) }

// GetFloat returns the floating-point view of the numeric value of key, or
// dflt if key is not present or its value is not a number.
func (o Object) GetFloat(key string, dflt float64) float64 { return asFloat(o.Get(key), dflt) }

// GetBool returns the Boolean value of key, or dflt if key is not present or
// its value is not a Bool.
func (o Object) GetBool(key string, dflt bool) bool { return asBool(o.Get(key), dflt) }

// GetArray returns the array value of key, or nil.
func (o Object) GetArray(key string) Array { a, _ := o.Get(key).(Array); return a }

// GetObject returns the object value of key, or nil.
func (o Object) GetObject(key string) Object { v, _ := o.Get(key).(Object); return v }

// Len reports the number of elements in a.
func (a Array) Len() int { return len(a) }

// Get returns the element at index i of a, or nil if i is out of range.
func (a Array) Get(i int) Value {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// IsNull reports whether the element at index i is null.
func (a Array) IsNull(i int) bool {
	_, ok := a.Get(i).(NullValue)
	return ok
}

// GetString returns the string value at index i, or dflt.
func (a Array) GetString(i int, dflt string) string { return asString(a.Get(i), dflt) }

// GetInt returns the integer view of the numeric value at index i, or dflt.
func (a Array) GetInt(i int, dflt int64) int64 { return asInt(a.Get(i), dflt) }

// GetFloat returns the floating-point view of the numeric value at index i,
// or dflt.
func (a Array) GetFloat(i int, dflt float64) float64 { return asFloat(a.Get(i), dflt) }

// GetBool returns the Boolean value at index i, or dflt.
func (a Array) GetBool(i int, dflt bool) bool { return asBool(a.Get(i), dflt) }

// GetArray returns the array value at index i, or nil.
func (a Array) GetArray(i int) Array { v, _ := a.Get(i).(Array); return v }

// GetObject returns the object value at index i, or nil.
func (a Array) GetObject(i int) Object { v, _ := a.Get(i).(Object); return v }

func asString(v Value, dflt string) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	return dflt
}

func asBool(v Value, dflt bool) bool {
	if b, ok := v.(Bool); ok {
		return bool(b)
	}
	return dflt
}

func asInt(v Value, dflt int64) int64 {
	switch t := v.(type) {
	case Number:
		return t.Int64()
	case *LazyNumber:
		if z, err := t.Int64(); err == nil {
			return z
		}
	}
	return dflt
}

func asFloat(v Value, dflt float64) float64 {
	switch t := v.(type) {
	case Number:
		return t.Float64()
	case *LazyNumber:
		if f, err := t.Float64(); err == nil {
			return f
		}
	}
	return dflt
}
