package tmparser

import (
	"strings"

	"github.com/miko-misa/typmark/pkg/tmspan"
)

// line is one physical line as seen by the block parser: text has already
// had any enclosing container prefix (blockquote marker, list indent)
// stripped and tabs expanded to spaces, while start/end still refer to
// byte offsets in the original source so spans stay accurate.
//
// Grounded on original_source/typmark-core/src/parser.rs's Line struct.
type line struct {
	text   string
	start  int
	end    int
	lazy   bool // true if this line only continues a paragraph lazily
}

func (l line) isBlank() bool {
	return strings.TrimSpace(l.text) == ""
}

// buildLines turns raw source bytes into the initial, unstripped line set.
func buildLines(source []byte) []line {
	infos := tmspan.SplitLines(source)
	out := make([]line, len(infos))
	for i, info := range infos {
		out[i] = line{
			text:  string(info.Content(source)),
			start: info.Start,
			end:   info.LineEnd,
		}
	}
	return out
}

// advanceColumn returns the column reached after consuming byte b starting
// at column columns, expanding tabs to the next multiple of 4, or -1 if b
// is not a space or tab (i.e. indentation has ended).
func advanceColumn(columns int, b byte) int {
	switch b {
	case ' ':
		return columns + 1
	case '\t':
		return columns + (4 - columns%4)
	default:
		return -1
	}
}

// indentPrefixLen returns the number of leading bytes of text that amount
// to at least `required` columns of space/tab indentation, or -1 if text
// has fewer than `required` columns of leading whitespace.
func indentPrefixLen(text string, required int) int {
	if required == 0 {
		return 0
	}
	cols := 0
	for i := 0; i < len(text); i++ {
		next := advanceColumn(cols, text[i])
		if next < 0 {
			return -1
		}
		cols = next
		if cols >= required {
			return i + 1
		}
	}
	return -1
}

// stripIndentUpTo returns text with up to maxCols columns of leading
// space/tab indentation removed, or "", false if it has more than maxCols.
func stripIndentUpTo(text string, maxCols int) (string, bool) {
	cols := 0
	idx := 0
	for idx < len(text) {
		next := advanceColumn(cols, text[idx])
		if next < 0 {
			break
		}
		cols = next
		idx++
		if cols > maxCols {
			return "", false
		}
	}
	return text[idx:], true
}

// removeIndentColumns removes up to `columns` columns of leading
// indentation, expanding any tab that straddles the boundary into spaces.
// This is a simplified, space-equivalent model of the original's exact
// byte/column bookkeeping: sufficient for all indentation expressed in
// plain spaces and single tabs, which is the overwhelming common case.
func removeIndentColumns(text string, columns int) string {
	cols := 0
	idx := 0
	for idx < len(text) && cols < columns {
		switch text[idx] {
		case ' ':
			cols++
			idx++
		case '\t':
			next := cols + (4 - cols%4)
			if next > columns {
				goto expand
			}
			cols = next
			idx++
		default:
			goto expand
		}
	}
expand:
	var sb strings.Builder
	if cols < columns && idx < len(text) && text[idx] == '\t' {
		next := cols + (4 - cols%4)
		for c := columns; c < next; c++ {
			sb.WriteByte(' ')
		}
		cols = next
		idx++
	}
	for _, ch := range text[idx:] {
		if ch == '\t' {
			next := cols + (4 - cols%4)
			for c := cols; c < next; c++ {
				sb.WriteByte(' ')
			}
			cols = next
			continue
		}
		sb.WriteRune(ch)
		cols++
	}
	return sb.String()
}
