package tmspan

// LineInfo describes one physical line of source: its content span
// (excluding the line-ending bytes) and where the next line starts.
type LineInfo struct {
	// Start is the byte offset of the first content byte of the line.
	Start int
	// ContentEnd is the byte offset just past the last content byte,
	// i.e. before any trailing \r or \n.
	ContentEnd int
	// LineEnd is the byte offset of the first byte of the next line (or
	// len(source) for the last line).
	LineEnd int
}

// Content returns the line's text, excluding its line-ending bytes.
func (l LineInfo) Content(source []byte) []byte {
	return source[l.Start:l.ContentEnd]
}

// Span returns the full span of the line including its ending bytes.
func (l LineInfo) Span() Span {
	return Span{Start: l.Start, End: l.LineEnd}
}

// SplitLines splits source into LineInfo records, normalizing \r\n, \r,
// and \n as line endings while preserving original byte offsets (the
// source map is built over the same unmodified byte slice, so spans never
// need adjusting). The final line is included even if it has no trailing
// terminator; if source ends with a line terminator, an empty trailing
// line is appended after it ("a\r\nb\r\n" yields "a", "b" and "").
func SplitLines(source []byte) []LineInfo {
	var lines []LineInfo
	start := 0
	i := 0
	for i < len(source) {
		b := source[i]
		if b == '\n' {
			contentEnd := i
			if contentEnd > start && source[contentEnd-1] == '\r' {
				contentEnd--
			}
			lines = append(lines, LineInfo{Start: start, ContentEnd: contentEnd, LineEnd: i + 1})
			start = i + 1
			i++
			continue
		}
		if b == '\r' {
			// Lone \r (not part of \r\n) is also a line terminator.
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
				continue
			}
			lines = append(lines, LineInfo{Start: start, ContentEnd: i, LineEnd: i + 1})
			start = i + 1
			i++
			continue
		}
		i++
	}
	if start <= len(source) {
		lines = append(lines, LineInfo{Start: start, ContentEnd: len(source), LineEnd: len(source)})
	}
	return lines
}
