package jcodec

import "fmt"

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // column in code points, 1-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// A Pos describes a single position in source text. The Offset counts the
// units of the source: bytes for UTF-8 sources, code units for char sources.
type Pos struct {
	Offset int // 0-based
	LineCol
}

// startPos is the position of the first character of an input.
var startPos = Pos{LineCol: LineCol{Line: 1, Column: 1}}

// advance updates p to account for the consumption of ch, which occupied n
// units of the source.
func (p *Pos) advance(ch rune, n int) {
	p.Offset += n
	if ch == '\n' {
		p.Line++
		p.Column = 1
	} else {
		p.Column++
	}
}

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Span
	First, Last LineCol
}

// Start returns the position of the first character of loc.
func (loc Location) Start() Pos { return Pos{Offset: loc.Pos, LineCol: loc.First} }

func (loc Location) String() string {
	if loc.First.Line == loc.Last.Line {
		return fmt.Sprintf("%d:%d-%d", loc.First.Line, loc.First.Column, loc.Last.Column)
	}
	return fmt.Sprintf("%s-%s", loc.First, loc.Last)
}
