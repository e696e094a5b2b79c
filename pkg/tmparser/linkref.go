package tmparser

import (
	"strings"

	"github.com/miko-misa/typmark/pkg/tmspan"
)

// normalizeLinkLabel implements CommonMark §4.7's link label normalization:
// strip leading/trailing whitespace, collapse internal whitespace runs to
// a single space, and case-fold for comparison purposes.
func normalizeLinkLabel(raw string) string {
	fields := strings.Fields(raw)
	return strings.ToLower(strings.Join(fields, " "))
}

// LinkDefinition is a parsed link reference definition's destination and
// optional title. Span covers the definition's "[label]" bracket group,
// used only to anchor an unused-definition diagnostic.
type LinkDefinition struct {
	URL   string
	Title *string
	Span  tmspan.Span
}

// parseLinkReferenceDefinitionLine attempts to parse a single-line link
// reference definition "[label]: destination "title"" starting at
// lines[start]. Multi-line labels/titles (a CommonMark corner case) are
// not supported; see DESIGN.md.
//
// Grounded on original_source/typmark-core/src/parser.rs::parse_link_reference_definition_lines.
func parseLinkReferenceDefinitionLine(ln line) (label string, def LinkDefinition, ok bool) {
	text := ln.text
	i, spaces := 0, 0
	for i < len(text) && text[i] == ' ' && spaces < 4 {
		i++
		spaces++
	}
	if spaces > 3 || i >= len(text) || text[i] != '[' {
		return "", LinkDefinition{}, false
	}
	labelEnd := findUnescapedBracketEnd(text, i+1)
	if labelEnd < 0 {
		return "", LinkDefinition{}, false
	}
	rawLabel := text[i+1 : labelEnd]
	label = normalizeLinkLabel(rawLabel)
	if label == "" {
		return "", LinkDefinition{}, false
	}
	pos := labelEnd + 1
	if pos >= len(text) || text[pos] != ':' {
		return "", LinkDefinition{}, false
	}
	pos++
	for pos < len(text) && isSpaceOrTab(text[pos]) {
		pos++
	}
	if pos >= len(text) {
		return "", LinkDefinition{}, false
	}
	url, next, ok := parseLinkDestination(text, pos)
	if !ok {
		return "", LinkDefinition{}, false
	}
	pos = next
	hadSpace := false
	for pos < len(text) && isSpaceOrTab(text[pos]) {
		hadSpace = true
		pos++
	}
	var title *string
	if pos < len(text) && hadSpace && isTitleDelim(text[pos]) {
		t, tnext, tok := parseLinkTitle(text, pos)
		if tok && trailingSpacesOnly(text, tnext) {
			decoded := unescapeAndDecodeEntities(t)
			title = &decoded
		}
	}
	span := tmspan.Span{Start: ln.start + i, End: ln.start + labelEnd + 1}
	return label, LinkDefinition{URL: url, Title: title, Span: span}, true
}

func trailingSpacesOnly(text string, pos int) bool {
	for i := pos; i < len(text); i++ {
		if !isSpaceOrTab(text[i]) {
			return false
		}
	}
	return true
}

func isTitleDelim(b byte) bool {
	return b == '"' || b == '\'' || b == '('
}

// findUnescapedBracketEnd scans for the closing ']' of a bracket group
// starting at idx (just past the opening '['), respecting backslash
// escapes and refusing nested unescaped brackets, returning -1 if none.
func findUnescapedBracketEnd(text string, idx int) int {
	depth := 0
	i := idx
	for i < len(text) {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return i
			}
			depth--
		}
		i++
	}
	return -1
}

// parseLinkDestination parses either a "<...>" pointy-bracket destination
// or a bare destination (balanced parens, no unescaped whitespace/control
// chars), returning the unescaped URL and the index just past it.
func parseLinkDestination(text string, start int) (url string, next int, ok bool) {
	if start < len(text) && text[start] == '<' {
		i := start + 1
		for i < len(text) && text[i] != '>' {
			if text[i] == '\\' && i+1 < len(text) {
				i += 2
				continue
			}
			if text[i] == '<' {
				return "", start, false
			}
			i++
		}
		if i >= len(text) {
			return "", start, false
		}
		return unescapeAndDecodeEntities(text[start+1 : i]), i + 1, true
	}
	i := start
	depth := 0
	for i < len(text) {
		b := text[i]
		if b == '\\' && i+1 < len(text) {
			i += 2
			continue
		}
		if isSpaceOrTab(b) || b < 0x20 {
			break
		}
		if b == '(' {
			depth++
		} else if b == ')' {
			if depth == 0 {
				break
			}
			depth--
		}
		i++
	}
	if i == start {
		return "", start, false
	}
	return unescapeAndDecodeEntities(text[start:i]), i, true
}

// parseLinkTitle parses a "..."/'...'/(...) title on a single line.
func parseLinkTitle(text string, start int) (title string, next int, ok bool) {
	open := text[start]
	closer := open
	if open == '(' {
		closer = ')'
	}
	i := start + 1
	for i < len(text) {
		if text[i] == '\\' && i+1 < len(text) {
			i += 2
			continue
		}
		if text[i] == closer {
			return text[start+1 : i], i + 1, true
		}
		i++
	}
	return "", start, false
}
