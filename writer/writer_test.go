// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package writer_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/buger/jsonparser"
	"github.com/creachadair/jcodec"
	"github.com/creachadair/jcodec/ast"
	"github.com/creachadair/jcodec/parse"
	"github.com/creachadair/jcodec/writer"
	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
)

func TestWriter(t *testing.T) {
	tests := []struct {
		name string
		w    *writer.Writer
		want string
	}{
		{"Flat", writer.String().Array().Value(true).Value(false).Value(true).End(),
			`[true,false,true]`},
		{"Nested", writer.String().
			Object().
			KeyObject("a").KeyValue("b", false).KeyValue("c", true).End().
			End(),
			`{"a":{"b":false,"c":true}}`},
		{"Mixed", writer.String().
			Object().
			KeyValue("name", "x").
			KeyArray("tags").Value("a").Array().End().Object().End().End().
			KeyObject("empty").End().
			KeyValue("n", nil).
			End(),
			`{"name":"x","tags":["a",[],{}],"empty":{},"n":null}`},
		{"Order", writer.String().Object().KeyValue("z", 1).KeyValue("a", 2).KeyValue("m", 3).End(),
			`{"z":1,"a":2,"m":3}`},
		{"DuplicateKeys", writer.String().Object().KeyValue("a", 1).KeyValue("a", 2).End(),
			`{"a":1,"a":2}`},
		{"EmptyArray", writer.String().Array().End(), `[]`},

		{"Float", writer.String().Value(1.0), `1.0`},
		{"Null", writer.String().Value(nil), `null`},
		{"Int", writer.String().Value(1), `1`},
		{"String", writer.String().Value("abc"), `"abc"`},
		{"Int8", writer.String().Value(int8(-128)), `-128`},
		{"Uint64", writer.String().Value(uint64(math.MaxUint64)), `18446744073709551615`},
		{"Float32", writer.String().Value(float32(0.1)), `0.1`},
		{"Float32Small", writer.String().Value(float32(1e-7)), `1e-07`},
		{"FloatLarge", writer.String().Value(1e21), `1e+21`},
		{"FloatInt", writer.String().Value(-3e20), `-300000000000000000000.0`},
		{"NegZero", writer.String().Value(math.Copysign(0, -1)), `-0.0`},

		{"Escapes", writer.String().Value("a\"b\\c\x00\x1f\n\té😀 "),
			`"a\"b\\c\u0000\u001f\n\té\ud83d\ude00 "`},
		{"InvalidUTF8", writer.String().Value("a\xffb"), "\"a�b\""},
		{"KeyEscapes", writer.String().Object().KeyValue("k\"\n", 1).End(), `{"k\"\n":1}`},

		{"Slice", writer.String().Value([]any{1, "two", nil, []any{}}), `[1,"two",null,[]]`},
		{"Map", writer.String().Value(map[string]any{"b": []any{true}, "a": map[string]any{}}),
			`{"a":{},"b":[true]}`},
		{"ValueSlice", writer.String().Value([]ast.Value{ast.Int(1), ast.Null}), `[1,null]`},
		{"AST", writer.String().Value(ast.Object{
			ast.Field("s", ast.String("x")),
			ast.Field("n", ast.Float(2.5)),
			ast.Field("i", ast.Int(-7)),
			ast.Field("b", ast.Bool(true)),
			ast.Field("a", ast.Array{ast.Null, ast.Object{}}),
		}), `{"s":"x","n":2.5,"i":-7,"b":true,"a":[null,{}]}`},
		{"ASTInArray", writer.String().Array().Value(ast.Array{ast.Int(1)}).Value(ast.Object{}).End(),
			`[[1],{}]`},
		{"ASTMember", writer.String().Object().KeyValue("x", ast.Array{ast.String("y")}).End(),
			`{"x":["y"]}`},
		{"LazyNumber", writer.String().Value(ast.NewLazyNumber("1.50e3", jcodec.Pos{})), `1.50e3`},
		{"LazyInt", writer.String().Value(ast.NewLazyNumber("12345678901234567890", jcodec.Pos{})),
			`12345678901234567890`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.w.Close()
			if err != nil {
				t.Fatalf("Close: unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Output:\n got: %s\nwant: %s", got, tc.want)
			}
			if !jsoniter.ConfigCompatibleWithStandardLibrary.Valid([]byte("[" + got + "]")) {
				t.Errorf("Output is not valid JSON: %s", got)
			}
		})
	}
}

func TestWriterErrors(t *testing.T) {
	tests := []struct {
		name string
		w    *writer.Writer
		kind jcodec.Kind
		want string
	}{
		{"KeyInArray", writer.String().Array().KeyValue("k", 1), jcodec.WriterState,
			`writer state error (offset 1): keyed value not allowed in array`},
		{"KeyAtRoot", writer.String().KeyValue("k", 1), jcodec.WriterState,
			`writer state error (offset 0): keyed value not allowed in top level`},
		{"KeyArrayInArray", writer.String().Array().Value(1).KeyArray("k"), jcodec.WriterState,
			`writer state error (offset 2): keyed array not allowed in array`},
		{"ValueInObject", writer.String().Object().KeyValue("a", 1).Value(2), jcodec.WriterState,
			`writer state error (offset 6): value without key in object`},
		{"ArrayInObject", writer.String().Object().Array(), jcodec.WriterState,
			`writer state error (offset 1): array without key in object`},
		{"SecondValue", writer.String().Value(1).Value(2), jcodec.WriterState,
			`writer state error (offset 1): value after complete top-level value`},
		{"SecondObject", writer.String().Array().End().Object(), jcodec.WriterState,
			`writer state error (offset 2): object after complete top-level value`},
		{"EndAtRoot", writer.String().End(), jcodec.WriterState,
			`writer state error (offset 0): end without open array or object`},
		{"ExtraEnd", writer.String().Array().End().End(), jcodec.WriterState,
			`writer state error (offset 2): end without open array or object`},
		{"Empty", writer.String(), jcodec.WriterState,
			`writer state error (offset 0): no value written`},
		{"UnclosedArray", writer.String().Array().Value(1), jcodec.WriterState,
			`writer state error (offset 2): unclosed array`},
		{"UnclosedObject", writer.String().Array().Object(), jcodec.WriterState,
			`writer state error (offset 2): unclosed object`},
		{"Unsupported", writer.String().Array().Value(struct{}{}), jcodec.WriterState,
			`writer state error (offset 1): unsupported value type struct {}`},
		{"UnsupportedNested", writer.String().Value([]any{1, []int{2}}), jcodec.WriterState,
			`writer state error (offset 0): unsupported value type []int`},
		{"NaN", writer.String().Array().Value(1).Value(math.NaN()), jcodec.WriterRange,
			`writer range error (offset 2): cannot encode NaN`},
		{"Inf", writer.String().Object().KeyValue("x", math.Inf(-1)), jcodec.WriterRange,
			`writer range error (offset 1): cannot encode -Inf`},
		{"Float32Inf", writer.String().Value(float32(math.Inf(1))), jcodec.WriterRange,
			`writer range error (offset 0): cannot encode +Inf`},
		{"NumberInf", writer.String().Value(ast.Float(math.Inf(1))), jcodec.WriterRange,
			`writer range error (offset 0): cannot encode +Inf`},
		{"BadLazy", writer.String().Array().Value(ast.NewLazyNumber("1e999", jcodec.Pos{})), jcodec.NumericRange,
			`numeric range error (offset 1): number "1e999" out of range`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.w.Close()
			if err == nil {
				t.Fatalf("Close: got %q, want error", got)
			}
			if k := jcodec.KindOf(err); k != tc.kind {
				t.Errorf("Kind: got %v, want %v", k, tc.kind)
			}
			if err.Error() != tc.want {
				t.Errorf("Error:\n got: %v\nwant: %s", err, tc.want)
			}
			if tc.w.Err() != err {
				t.Errorf("Err: got %v, want %v", tc.w.Err(), err)
			}
		})
	}
}

func TestPoison(t *testing.T) {
	w := writer.String().Array().Value(1)
	w.KeyValue("k", 1)
	first := w.Err()
	if first == nil {
		t.Fatal("KeyValue in array: got nil error")
	}

	// Later operations, legal or not, have no effect.
	w.Value(2).End().Object().End()
	if _, err := w.Close(); err != first {
		t.Errorf("Close: got %v, want %v", err, first)
	}

	// A lazy number is validated once; its error is not modified by the writer.
	n := ast.NewLazyNumber("-1e400", jcodec.Pos{Offset: 3, LineCol: jcodec.LineCol{Line: 2, Column: 4}})
	_, err := writer.String().Array().Value(1).Value(n).Close()
	if jcodec.KindOf(err) != jcodec.NumericRange {
		t.Fatalf("Close: got %v, want numeric range error", err)
	}
	var e *jcodec.Error
	if _, nerr := n.Number(); !errors.As(nerr, &e) || e.Offset != 3 || e.Location.Line != 2 {
		t.Errorf("Lazy number error: got %v, want offset 3 at 2:4", nerr)
	}

	// The writer's copy reports only the output offset.
	if !errors.As(err, &e) || e.Offset != 2 || e.Location != (jcodec.LineCol{}) {
		t.Errorf("Close: got %v, want offset 2 with no location", err)
	}
	if want := `numeric range error (offset 2): number "-1e400" out of range`; err.Error() != want {
		t.Errorf("Close:\n got: %v\nwant: %s", err, want)
	}
}

func TestClose(t *testing.T) {
	w := writer.String().Value(true)
	if got, err := w.Close(); err != nil || got != "true" {
		t.Fatalf("Close: got %q, %v; want true, nil", got, err)
	}
	if _, err := w.Close(); jcodec.KindOf(err) != jcodec.WriterState {
		t.Errorf("Second close: got %v, want writer state error", err)
	}

	w = writer.String().Value(false)
	w.Close()
	w.Value(1)
	if err := w.Err(); err == nil || !strings.Contains(err.Error(), "writer is closed") {
		t.Errorf("Value after close: got %v, want closed error", err)
	}
}

func TestSinks(t *testing.T) {
	t.Run("Writer", func(t *testing.T) {
		var buf bytes.Buffer
		got, err := writer.On(&buf).Object().KeyValue("a", []any{1, 2}).End().Close()
		if err != nil || got != "" {
			t.Fatalf("Close: got %q, %v; want empty, nil", got, err)
		}
		if got, want := buf.String(), `{"a":[1,2]}`; got != want {
			t.Errorf("Output: got %s, want %s", got, want)
		}
	})

	t.Run("StringWriter", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("prefix ")
		if _, err := writer.OnStrings(&sb).Array().Value("x").End().Close(); err != nil {
			t.Fatalf("Close: unexpected error: %v", err)
		}
		if got, want := sb.String(), `prefix ["x"]`; got != want {
			t.Errorf("Output: got %s, want %s", got, want)
		}
	})

	t.Run("WriteError", func(t *testing.T) {
		errFull := errors.New("disk full")
		w := writer.On(failWriter{errFull}).Value("data")
		_, err := w.Close()
		if jcodec.KindOf(err) != jcodec.IO || !errors.Is(err, errFull) {
			t.Errorf("Close: got %v, want I/O error wrapping %v", err, errFull)
		}
	})

	t.Run("Flush", func(t *testing.T) {
		var buf bytes.Buffer
		w := writer.On(&buf).Array()
		for range 1000 {
			w.Value("abcdefgh")
		}
		if buf.Len() == 0 {
			t.Error("No output flushed before Close")
		}
		prefix := buf.String()

		w.Value(math.Inf(1)).End()
		_, err := w.Close()
		var e *jcodec.Error
		if !errors.As(err, &e) || e.Kind != jcodec.WriterRange {
			t.Fatalf("Close: got %v, want writer range error", err)
		}

		// Nothing reaches the sink after the failure.
		if got := buf.String(); got != prefix {
			t.Errorf("Output changed after failure: %d bytes, want %d", len(got), len(prefix))
		}
		if want := 1 + 1000*len(`"abcdefgh"`) + 999; e.Offset != want {
			t.Errorf("Error offset: got %d, want %d", e.Offset, want)
		}
	})
}

type failWriter struct{ err error }

func (f failWriter) Write([]byte) (int, error) { return 0, f.err }

func TestEncode(t *testing.T) {
	v, err := parse.Any().WithLazyNumbers().FromString(`{
  "id": 12345678901234567890,
  "vals": [1.0, 2.50, -0, 1e2],
  "s": "tab\there",
  "o": {"k": [null, false]}
}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, err := writer.Encode(v)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	const want = `{"id":12345678901234567890,"vals":[1.0,2.50,-0,1e2],"s":"tab\there","o":{"k":[null,false]}}`
	if got != want {
		t.Errorf("Encode:\n got: %s\nwant: %s", got, want)
	}

	// Compare the structure decoded by an independent parser.
	var gotAny, wantAny any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(got, &gotAny); err != nil {
		t.Fatalf("Unmarshal output: %v", err)
	}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(want, &wantAny); err != nil {
		t.Fatalf("Unmarshal expected: %v", err)
	}
	if diff := cmp.Diff(wantAny, gotAny); diff != "" {
		t.Errorf("Decoded output (-want, +got):\n%s", diff)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	inputs := []string{
		"", "plain", "\"", "\\", "/", "\x7f", "  ", "é", "😀", "\U0010FFFF",
		"mixed \"quotes\" and \\slashes\\ and \ttabs\n",
	}
	var all []rune
	for r := rune(0); r < 0x20; r++ {
		all = append(all, r)
	}
	inputs = append(inputs, string(all))

	for _, s := range inputs {
		text, err := writer.Encode(ast.String(s))
		if err != nil {
			t.Fatalf("Encode %q: %v", s, err)
		}
		if strings.ContainsFunc(text, func(r rune) bool { return r < 0x20 }) {
			t.Errorf("Encode %q: output has unescaped controls: %q", s, text)
		}
		if strings.ContainsFunc(text, func(r rune) bool { return r > 0xffff }) {
			t.Errorf("Encode %q: output has unescaped non-BMP characters: %q", s, text)
		}

		// Check with an independent unescaper.
		dec, err := jsonparser.ParseString([]byte(text[1 : len(text)-1]))
		if err != nil {
			t.Errorf("ParseString %q: %v", text, err)
		} else if dec != s {
			t.Errorf("ParseString %q: got %q, want %q", text, dec, s)
		}

		// Check with the parser.
		v, err := parse.Any().FromString(text)
		if err != nil {
			t.Errorf("Parse %q: %v", text, err)
		} else if got := v.(ast.String); string(got) != s {
			t.Errorf("Parse %q: got %q, want %q", text, got, s)
		}
	}
}

// Every sequence of legal writer operations produces text the parser
// accepts.
func TestWriterGrammar(t *testing.T) {
	build := func(w *writer.Writer, depth int) {
		var fill func(w *writer.Writer, depth int, keyed bool)
		fill = func(w *writer.Writer, depth int, keyed bool) {
			key := func(s string) string { return s + string(rune('a'+depth)) }
			if depth == 0 {
				if keyed {
					w.KeyValue(key("v"), depth)
				} else {
					w.Value("leaf")
				}
				return
			}
			if keyed {
				w.KeyArray(key("arr"))
			} else {
				w.Array()
			}
			fill(w, depth-1, false)
			w.Value(float64(depth) / 4)
			w.Object()
			fill(w, depth-1, true)
			w.KeyValue(key("x"), nil)
			w.End()
			w.End()
		}
		fill(w, depth, false)
	}
	for depth := range 6 {
		w := writer.String()
		build(w, depth)
		text, err := w.Close()
		if err != nil {
			t.Fatalf("Depth %d: Close: %v", depth, err)
		}
		if _, err := parse.Any().WithStrictDuplicateKeys().FromString(text); err != nil {
			t.Errorf("Depth %d: Parse %s: %v", depth, text, err)
		}
		if !jsoniter.ConfigCompatibleWithStandardLibrary.Valid([]byte("[" + text + "]")) {
			t.Errorf("Depth %d: invalid JSON: %s", depth, text)
		}
	}
}
