// Package testutil defines support code for unit tests.
package testutil

import (
	"math"

	"github.com/creachadair/jcodec/ast"
	"github.com/google/go-cmp/cmp"
)

// CompareNumbers is a cmp.Option that compares ast.Number values. Integers
// must match exactly; floating-point values match within a small relative
// tolerance.
var CompareNumbers = cmp.Comparer(func(a, b ast.Number) bool {
	if a.IsInt() != b.IsInt() {
		return false
	} else if a.IsInt() {
		return a.Int64() == b.Int64()
	}
	x, y := a.Float64(), b.Float64()
	if x == y {
		return true
	}
	return math.Abs(x-y) <= 1e-12*math.Max(math.Abs(x), math.Abs(y))
})

// Resolve returns a copy of v in which each *ast.LazyNumber is replaced by
// its resolved ast.Number. A lazy number that does not resolve is replaced
// by null.
func Resolve(v ast.Value) ast.Value {
	switch t := v.(type) {
	case *ast.LazyNumber:
		n, err := t.Number()
		if err != nil {
			return ast.Null
		}
		return n
	case ast.Array:
		out := make(ast.Array, len(t))
		for i, elt := range t {
			out[i] = Resolve(elt)
		}
		return out
	case ast.Object:
		out := make(ast.Object, len(t))
		for i, m := range t {
			out[i] = &ast.Member{Key: m.Key, Value: Resolve(m.Value)}
		}
		return out
	default:
		return v
	}
}
