// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package parse

import (
	"fmt"
	"slices"

	"github.com/creachadair/jcodec"
	"github.com/creachadair/jcodec/ast"
)

// indexThreshold is the number of members at which an object under
// construction switches from a linear scan to a map for finding duplicate
// keys.
const indexThreshold = 8

// A handler implements the jcodec.Handler interface to construct trees of
// JSON values.
type handler struct {
	lazy   bool // represent numbers as *ast.LazyNumber
	strict bool // report duplicate object keys

	stk     []*frame
	root    ast.Value
	rootPos jcodec.Pos
}

// A frame is an array or object under construction.
type frame struct {
	isObj bool
	arr   ast.Array
	obj   ast.Object
	key   string         // key of the pending member (objects only)
	index map[string]int // key to member offset, for large objects
}

func newHandler(lazy, strict bool) *handler { return &handler{lazy: lazy, strict: strict} }

// find returns the offset of the member of f with the given key, or -1.
func (f *frame) find(key string) int {
	if f.index != nil {
		if i, ok := f.index[key]; ok {
			return i
		}
		return -1
	}
	return slices.IndexFunc(f.obj, func(m *ast.Member) bool { return m.Key == key })
}

// addMember adds a member to f. If a member with the same key already exists,
// its value is replaced.
func (f *frame) addMember(key string, v ast.Value) {
	if i := f.find(key); i >= 0 {
		f.obj[i].Value = v
		return
	}
	f.obj = append(f.obj, &ast.Member{Key: key, Value: v})
	if f.index != nil {
		f.index[key] = len(f.obj) - 1
	} else if len(f.obj) >= indexThreshold {
		f.index = make(map[string]int, 2*len(f.obj))
		for i, m := range f.obj {
			f.index[m.Key] = i
		}
	}
}

func (h *handler) top() *frame { return h.stk[len(h.stk)-1] }

func (h *handler) pop() *frame {
	last := h.top()
	h.stk = h.stk[:len(h.stk)-1]
	return last
}

func (h *handler) push(f *frame, loc jcodec.Anchor) {
	h.markRoot(loc)
	h.stk = append(h.stk, f)
}

// markRoot records the position of loc if it begins the root value.
func (h *handler) markRoot(loc jcodec.Anchor) {
	if len(h.stk) == 0 {
		h.rootPos = loc.Location().Start()
	}
}

// reduceValue adds a completed value to the enclosing array or object, or
// records it as the root.
func (h *handler) reduceValue(v ast.Value) {
	if len(h.stk) == 0 {
		h.root = v
		return
	}
	if f := h.top(); f.isObj {
		f.addMember(f.key, v)
	} else {
		f.arr = append(f.arr, v)
	}
}

func (h *handler) BeginObject(loc jcodec.Anchor) error {
	h.push(&frame{isObj: true, obj: ast.Object{}}, loc)
	return nil
}

func (h *handler) EndObject(loc jcodec.Anchor) error {
	h.reduceValue(h.pop().obj)
	return nil
}

func (h *handler) BeginArray(loc jcodec.Anchor) error {
	h.push(&frame{arr: ast.Array{}}, loc)
	return nil
}

func (h *handler) EndArray(loc jcodec.Anchor) error {
	h.reduceValue(h.pop().arr)
	return nil
}

func (h *handler) BeginMember(loc jcodec.Anchor) error {
	key, err := loc.Unquote()
	if err != nil {
		return err
	}
	f := h.top()
	if h.strict && f.find(key) >= 0 {
		return jcodec.Errorf(jcodec.Syntax, loc.Location().Start(), "duplicate key %q", key)
	}
	f.key = key
	return nil
}

func (h *handler) EndMember(loc jcodec.Anchor) error { return nil }

func (h *handler) Value(loc jcodec.Anchor) error {
	h.markRoot(loc)
	switch tok := loc.Token(); tok {
	case jcodec.String:
		s, err := loc.Unquote()
		if err != nil {
			return err
		}
		h.reduceValue(ast.String(s))
	case jcodec.Integer, jcodec.Number:
		pos := loc.Location().Start()
		if h.lazy {
			h.reduceValue(ast.NewLazyNumber(string(loc.Text()), pos))
			return nil
		}
		n, err := ast.ParseNumberAt(string(loc.Text()), pos)
		if err != nil {
			return err
		}
		h.reduceValue(n)
	case jcodec.True, jcodec.False:
		h.reduceValue(ast.Bool(tok == jcodec.True))
	case jcodec.Null:
		h.reduceValue(ast.Null)
	default:
		return fmt.Errorf("unknown value %v", tok)
	}
	return nil
}

func (h *handler) EndOfInput(loc jcodec.Anchor) {}
