package tmspan

import "sort"

// Position is a 0-based line/character pair. Character is counted in UTF-8
// bytes, matching spec's external Diagnostic shape.
type Position struct {
	Line      int
	Character int
}

// Range is a pair of Positions describing a half-open source range.
type Range struct {
	Start Position
	End   Position
}

// Map converts byte offsets into Positions. It is built once per source
// string and is read-only afterward.
type Map struct {
	sourceLen  int
	lineStarts []int
}

// NewMap scans source for line starts. Lines are delimited by '\n'; a
// preceding '\r' (from "\r\n") is left as part of the previous line's
// content, matching how the block parser strips it when splitting lines.
func NewMap(source []byte) *Map {
	lineStarts := make([]int, 1, 64)
	lineStarts[0] = 0
	for i, b := range source {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &Map{sourceLen: len(source), lineStarts: lineStarts}
}

// LineCount returns the number of lines in the source.
func (m *Map) LineCount() int {
	return len(m.lineStarts)
}

// Position returns the 0-based line/character for a byte offset.
func (m *Map) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > m.sourceLen {
		offset = m.sourceLen
	}
	line := sort.Search(len(m.lineStarts), func(i int) bool {
		return m.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	lineStart := m.lineStarts[line]
	return Position{Line: line, Character: offset - lineStart}
}

// Range converts a Span to a Range.
func (m *Map) Range(span Span) Range {
	return Range{Start: m.Position(span.Start), End: m.Position(span.End)}
}
