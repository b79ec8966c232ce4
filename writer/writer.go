// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package writer implements a builder that emits compact JSON text.
//
// A Writer enforces the JSON grammar as values are added: each method checks
// that the operation is valid in the current context, and the first invalid
// operation poisons the writer. Methods return the Writer, so that calls may
// be chained, and Close reports the result:
//
//	text, err := writer.String().
//	   Object().
//	      KeyValue("name", "x").
//	      KeyArray("tags").Value("a").Value("b").End().
//	   End().
//	   Close()
//
// Once a writer is poisoned, later calls have no effect, and no output from
// the failing operation or any later one reaches the sink.
package writer

import (
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/creachadair/jcodec"
	"github.com/creachadair/jcodec/ast"
	"github.com/creachadair/mds/stack"
)

// flushSize is the size of buffered output at which a Writer with a sink
// flushes to it.
const flushSize = 4096

type state byte

const (
	root          state = iota // top level, before the value
	inArray                    // inside an array
	inObjectKey                // inside an object, expecting a key
	inObjectValue              // inside an object, after a key
)

type frame struct {
	state state
	first bool // no element has been written yet
}

// A Writer constructs JSON text. Strings are escaped as by jcodec.Quote.
// A Writer is not safe for concurrent use by multiple goroutines.
type Writer struct {
	stk    *stack.Stack[*frame]
	buf    []byte
	out    func([]byte) error // nil for an in-memory writer
	sent   int                // bytes already flushed to out
	done   bool               // the root value is complete
	closed bool
	err    error
}

func newWriter(out func([]byte) error) *Writer {
	w := &Writer{stk: stack.New[*frame](), out: out}
	w.stk.Push(&frame{state: root, first: true})
	return w
}

// String returns a Writer that accumulates its output in memory. Close
// returns the complete text.
func String() *Writer { return newWriter(nil) }

// On returns a Writer that writes UTF-8 encoded output to w. Output is
// buffered, and is not complete until Close returns. Close returns an empty
// string.
func On(w io.Writer) *Writer {
	return newWriter(func(data []byte) error { _, err := w.Write(data); return err })
}

// OnStrings returns a Writer that appends its output to w. Output is
// buffered, and is not complete until Close returns. Close returns an empty
// string.
func OnStrings(w io.StringWriter) *Writer {
	return newWriter(func(data []byte) error { _, err := w.WriteString(string(data)); return err })
}

// Encode returns the compact JSON encoding of v.
func Encode(v ast.Value) (string, error) { return String().Value(v).Close() }

// Err reports the error that poisoned w, or nil.
func (w *Writer) Err() error { return w.err }

// Value writes v at the top level, or as the next element of an array.
//
// The concrete type of v must be nil, bool, string, a built-in integer or
// floating-point type, an ast.Value, []any, or map[string]any. Maps are
// written with their keys in sorted order. Other types poison the writer with
// an error of kind WriterState; floating-point values that are NaN or
// infinite poison it with an error of kind WriterRange.
func (w *Writer) Value(v any) *Writer { return w.do(func() error { return w.value(v) }) }

// KeyValue writes a member with the given key and value inside an object.
// The value is handled as for Value.
func (w *Writer) KeyValue(key string, v any) *Writer {
	return w.do(func() error {
		if err := w.key(key, "value"); err != nil {
			return err
		}
		return w.value(v)
	})
}

// Array begins an array at the top level, or as the next element of an
// array. Call End to finish the array.
func (w *Writer) Array() *Writer { return w.do(func() error { return w.open(inArray) }) }

// Object begins an object at the top level, or as the next element of an
// array. Call End to finish the object.
func (w *Writer) Object() *Writer { return w.do(func() error { return w.open(inObjectKey) }) }

// KeyArray begins an array as the value of an object member with the given
// key. Call End to finish the array.
func (w *Writer) KeyArray(key string) *Writer {
	return w.do(func() error {
		if err := w.key(key, "array"); err != nil {
			return err
		}
		return w.open(inArray)
	})
}

// KeyObject begins an object as the value of an object member with the
// given key. Call End to finish the object.
func (w *Writer) KeyObject(key string) *Writer {
	return w.do(func() error {
		if err := w.key(key, "object"); err != nil {
			return err
		}
		return w.open(inObjectKey)
	})
}

// End finishes the innermost open array or object.
func (w *Writer) End() *Writer { return w.do(w.end) }

// Close completes the output of w, and reports the first error that occurred
// while writing. It is an error of kind WriterState if no value was written,
// or if an array or object is still open. For a writer constructed by String,
// Close returns the complete text.
//
// After Close, any further operations on w report an error.
func (w *Writer) Close() (string, error) {
	if w.err != nil {
		return "", w.err
	} else if w.closed {
		return "", w.poison(w.failf("writer is closed"))
	} else if w.stk.Len() > 1 {
		f := w.stk.Top()
		return "", w.poison(w.failf("unclosed %s", f.state.container()))
	} else if !w.done {
		return "", w.poison(w.failf("no value written"))
	}
	w.closed = true
	if w.out == nil {
		return string(w.buf), nil
	}
	if err := w.flush(); err != nil {
		return "", w.poison(err)
	}
	return "", nil
}

// do runs op unless w is poisoned or closed. If op fails, any output it
// produced is discarded and w is poisoned.
func (w *Writer) do(op func() error) *Writer {
	if w.err != nil {
		return w
	} else if w.closed {
		w.poison(w.failf("writer is closed"))
		return w
	}
	mark := len(w.buf)
	if err := op(); err != nil {
		w.buf = w.buf[:mark]
		if e, ok := err.(*jcodec.Error); ok {
			cp := *e
			cp.Offset = w.sent + mark
			cp.Location = jcodec.LineCol{}
			err = &cp
		}
		w.poison(err)
		return w
	}
	if w.out != nil && len(w.buf) >= flushSize {
		if err := w.flush(); err != nil {
			w.poison(err)
		}
	}
	return w
}

func (w *Writer) poison(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := w.out(w.buf); err != nil {
		return jcodec.Errorf(jcodec.IO, jcodec.Pos{Offset: w.sent}, "write failed: %w", err)
	}
	w.sent += len(w.buf)
	w.buf = w.buf[:0]
	return nil
}

func (w *Writer) failf(msg string, args ...any) error {
	return jcodec.Errorf(jcodec.WriterState, jcodec.Pos{Offset: w.sent + len(w.buf)}, msg, args...)
}

func (w *Writer) top() *frame { f := w.stk.Top(); return f }

// begin prepares to write a value in the current context.
func (w *Writer) begin(what string) error {
	switch f := w.top(); f.state {
	case root:
		if w.done {
			return w.failf("%s after complete top-level value", what)
		}
	case inArray:
		if !f.first {
			w.buf = append(w.buf, ',')
		}
	case inObjectKey:
		return w.failf("%s without key in object", what)
	}
	return nil
}

// complete records that a value was written in the current context.
func (w *Writer) complete() {
	switch f := w.top(); f.state {
	case root:
		w.done = true
	case inArray:
		f.first = false
	case inObjectValue:
		f.state = inObjectKey
		f.first = false
	}
}

// key writes an object key, which will be followed by a value of the given
// kind.
func (w *Writer) key(key, what string) error {
	f := w.top()
	if f.state != inObjectKey {
		return w.failf("keyed %s not allowed in %s", what, f.state.context())
	}
	if !f.first {
		w.buf = append(w.buf, ',')
	}
	w.buf = jcodec.AppendQuote(w.buf, key)
	w.buf = append(w.buf, ':')
	f.state = inObjectValue
	return nil
}

// open begins an array or object in the current context.
func (w *Writer) open(s state) error {
	if err := w.begin(s.container()); err != nil {
		return err
	}
	w.buf = append(w.buf, s.open())
	w.stk.Push(&frame{state: s, first: true})
	return nil
}

// end finishes the innermost array or object.
func (w *Writer) end() error {
	f := w.top()
	switch f.state {
	case inArray, inObjectKey:
		w.buf = append(w.buf, f.state.close())
	case inObjectValue:
		return w.failf("object member is missing its value")
	default:
		return w.failf("end without open array or object")
	}
	w.stk.Pop()
	w.complete()
	return nil
}

// value writes a single value in the current context.
func (w *Writer) value(v any) error {
	switch t := v.(type) {
	case ast.Array:
		return w.writeArray(len(t), func(i int) any { return t[i] })
	case []ast.Value:
		return w.writeArray(len(t), func(i int) any { return t[i] })
	case []any:
		return w.writeArray(len(t), func(i int) any { return t[i] })
	case ast.Object:
		if err := w.open(inObjectKey); err != nil {
			return err
		}
		for _, m := range t {
			if err := w.key(m.Key, "value"); err != nil {
				return err
			} else if err := w.value(m.Value); err != nil {
				return err
			}
		}
		return w.end()
	case map[string]any:
		if err := w.open(inObjectKey); err != nil {
			return err
		}
		for _, key := range slices.Sorted(maps.Keys(t)) {
			if err := w.key(key, "value"); err != nil {
				return err
			} else if err := w.value(t[key]); err != nil {
				return err
			}
		}
		return w.end()
	}

	if err := w.begin("value"); err != nil {
		return err
	}
	if err := w.scalar(v); err != nil {
		return err
	}
	w.complete()
	return nil
}

func (w *Writer) writeArray(n int, elt func(int) any) error {
	if err := w.open(inArray); err != nil {
		return err
	}
	for i := range n {
		if err := w.value(elt(i)); err != nil {
			return err
		}
	}
	return w.end()
}

// scalar appends the encoding of a non-composite value.
func (w *Writer) scalar(v any) error {
	var err error
	switch t := v.(type) {
	case nil, ast.NullValue:
		w.buf = append(w.buf, "null"...)
	case bool:
		w.buf = strconv.AppendBool(w.buf, t)
	case ast.Bool:
		w.buf = strconv.AppendBool(w.buf, bool(t))
	case string:
		w.buf = jcodec.AppendQuote(w.buf, t)
	case ast.String:
		w.buf = jcodec.AppendQuote(w.buf, string(t))
	case int:
		w.buf = strconv.AppendInt(w.buf, int64(t), 10)
	case int8:
		w.buf = strconv.AppendInt(w.buf, int64(t), 10)
	case int16:
		w.buf = strconv.AppendInt(w.buf, int64(t), 10)
	case int32:
		w.buf = strconv.AppendInt(w.buf, int64(t), 10)
	case int64:
		w.buf = strconv.AppendInt(w.buf, t, 10)
	case uint:
		w.buf = strconv.AppendUint(w.buf, uint64(t), 10)
	case uint8:
		w.buf = strconv.AppendUint(w.buf, uint64(t), 10)
	case uint16:
		w.buf = strconv.AppendUint(w.buf, uint64(t), 10)
	case uint32:
		w.buf = strconv.AppendUint(w.buf, uint64(t), 10)
	case uint64:
		w.buf = strconv.AppendUint(w.buf, t, 10)
	case float32:
		w.buf, err = jcodec.AppendFloat(w.buf, float64(t), 32)
	case float64:
		w.buf, err = jcodec.AppendFloat(w.buf, t, 64)
	case ast.Number:
		if t.IsInt() {
			w.buf = strconv.AppendInt(w.buf, t.Int64(), 10)
		} else {
			w.buf, err = jcodec.AppendFloat(w.buf, t.Float64(), 64)
		}
	case *ast.LazyNumber:
		// The literal is written verbatim, once it is known to be valid.
		if _, err := t.Number(); err != nil {
			return err
		}
		w.buf = append(w.buf, t.Text()...)
	default:
		return w.failf("unsupported value type %T", v)
	}
	return err
}

func (s state) container() string {
	if s == inArray {
		return "array"
	}
	return "object"
}

func (s state) context() string {
	switch s {
	case root:
		return "top level"
	case inArray:
		return "array"
	default:
		return "object"
	}
}

func (s state) open() byte {
	if s == inArray {
		return '['
	}
	return '{'
}

func (s state) close() byte {
	if s == inArray {
		return ']'
	}
	return '}'
}
