package tmparser

import "strings"

// isSpaceOrTab reports whether b is an ASCII space or tab.
func isSpaceOrTab(b byte) bool {
	return b == ' ' || b == '\t'
}

// isThematicBreakLine reports whether text, after up to 3 columns of
// indentation, is a run of 3+ of the same '-', '*', or '_' byte,
// optionally interspersed with spaces/tabs.
//
// Grounded on original_source/typmark-core/src/parser.rs::is_thematic_break_line.
func isThematicBreakLine(text string) bool {
	rest, ok := stripIndentUpTo(text, 3)
	if !ok || rest == "" {
		return false
	}
	var marker byte
	count := 0
	for i := 0; i < len(rest); i++ {
		b := rest[i]
		if isSpaceOrTab(b) {
			continue
		}
		if marker == 0 {
			if b != '-' && b != '*' && b != '_' {
				return false
			}
			marker = b
			count++
			continue
		}
		if b != marker {
			return false
		}
		count++
	}
	return count >= 3
}

// parseATXHeading returns (level, contentStart, contentEnd) byte offsets
// into text for an ATX heading line, stripping a closing run of '#'s.
//
// Grounded on original_source/typmark-core/src/parser.rs::parse_atx_heading.
func parseATXHeading(text string) (level int, contentStart int, contentEnd int, ok bool) {
	rest, stripOK := stripIndentUpTo(text, 3)
	if !stripOK || rest == "" {
		return 0, 0, 0, false
	}
	indentLen := len(text) - len(rest)
	i := 0
	for i < len(rest) && rest[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return 0, 0, 0, false
	}
	if i < len(rest) && !isSpaceOrTab(rest[i]) {
		return 0, 0, 0, false
	}
	cs := i
	for cs < len(rest) && isSpaceOrTab(rest[cs]) {
		cs++
	}
	ce := len(rest)
	for ce > cs && isSpaceOrTab(rest[ce-1]) {
		ce--
	}
	if ce > cs {
		hashStart := ce
		for hashStart > cs && rest[hashStart-1] == '#' {
			hashStart--
		}
		if hashStart < ce && (hashStart == cs || isSpaceOrTab(rest[hashStart-1])) {
			pre := hashStart
			if hashStart > cs {
				pre = hashStart - 1
				for pre > cs && isSpaceOrTab(rest[pre-1]) {
					pre--
				}
			}
			ce = pre
		}
	}
	for ce > cs && isSpaceOrTab(rest[ce-1]) {
		ce--
	}
	return i, indentLen + cs, indentLen + ce, true
}

// setextUnderlineLevel returns 1 for a run of '=' or 2 for a run of '-'
// (optionally trailing spaces/tabs), after up to 3 columns of indent.
func setextUnderlineLevel(text string) (level int, ok bool) {
	rest, stripOK := stripIndentUpTo(text, 3)
	if !stripOK || rest == "" {
		return 0, false
	}
	ch := rest[0]
	if ch != '=' && ch != '-' {
		return 0, false
	}
	i := 0
	for i < len(rest) && rest[i] == ch {
		i++
	}
	for j := i; j < len(rest); j++ {
		if !isSpaceOrTab(rest[j]) {
			return 0, false
		}
	}
	if ch == '=' {
		return 1, true
	}
	return 2, true
}

// parseFenceOpen detects a fenced-code opening line, returning the
// indent length, fence length, fence char, and decoded info string.
func parseFenceOpen(text string) (indentLen, fenceLen int, fenceChar byte, info string, ok bool) {
	idx := 0
	for idx < len(text) && idx < 3 && text[idx] == ' ' {
		idx++
	}
	if idx < len(text) && text[idx] == ' ' {
		return 0, 0, 0, "", false
	}
	rest := text[idx:]
	switch {
	case strings.HasPrefix(rest, "```"):
		fenceChar = '`'
	case strings.HasPrefix(rest, "~~~"):
		fenceChar = '~'
	default:
		return 0, 0, 0, "", false
	}
	n := 0
	for n < len(rest) && rest[n] == fenceChar {
		n++
	}
	if n < 3 {
		return 0, 0, 0, "", false
	}
	rawInfo := strings.Trim(rest[n:], " \t")
	if fenceChar == '`' && strings.ContainsRune(rawInfo, '`') {
		return 0, 0, 0, "", false
	}
	return idx, n, fenceChar, unescapeAndDecodeEntities(rawInfo), true
}

// isFenceClose reports whether text closes a fence of the given length
// and char: up to 3 leading spaces, a run of >= fenceLen of fenceChar,
// then only spaces/tabs.
func isFenceClose(text string, fenceLen int, fenceChar byte) bool {
	idx := 0
	for idx < len(text) && idx < 3 && text[idx] == ' ' {
		idx++
	}
	if idx < len(text) && text[idx] == ' ' {
		return false
	}
	rest := text[idx:]
	count := 0
	for count < len(rest) && rest[count] == fenceChar {
		count++
	}
	if count < fenceLen {
		return false
	}
	for _, b := range []byte(rest[count:]) {
		if !isSpaceOrTab(b) {
			return false
		}
	}
	return true
}

func stripLeadingSpaces(text string, max int) string {
	if max == 0 {
		return text
	}
	idx, count := 0, 0
	for idx < len(text) && count < max && text[idx] == ' ' {
		idx++
		count++
	}
	return text[idx:]
}

// isBoxOpen reports whether text opens a ":::box" fence.
func isBoxOpen(text string) bool {
	if !strings.HasPrefix(text, ":::") {
		return false
	}
	n := 0
	for n < len(text) && text[n] == ':' {
		n++
	}
	rest := strings.TrimLeft(text[n:], " \t")
	return strings.HasPrefix(rest, "box")
}

func boxFenceLen(text string) int {
	n := 0
	for n < len(text) && text[n] == ':' {
		n++
	}
	return n
}

func isCodeFenceLine(text string) bool {
	_, _, _, _, ok := parseFenceOpen(text)
	return ok
}

func isHeadingLine(text string) bool {
	_, _, _, ok := parseATXHeading(text)
	return ok
}

// blockquotePrefixLen returns the number of leading bytes that form a
// blockquote marker ("> " or ">"), after up to 3 spaces of indent, or -1.
// This is a simplified, tab-insensitive model of the original's exact
// column bookkeeping (see line.go's removeIndentColumns doc).
func blockquotePrefixLen(text string) int {
	idx, spaces := 0, 0
	for idx < len(text) && spaces < 3 && text[idx] == ' ' {
		idx++
		spaces++
	}
	if idx < len(text) && text[idx] == ' ' {
		return -1
	}
	if idx >= len(text) || text[idx] != '>' {
		return -1
	}
	idx++
	if idx < len(text) && (text[idx] == ' ' || text[idx] == '\t') {
		idx++
	}
	return idx
}

var htmlBlockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true, "basefont": true,
	"blockquote": true, "body": true, "caption": true, "center": true, "col": true,
	"colgroup": true, "dd": true, "details": true, "dialog": true, "dir": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true, "frameset": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true, "hr": true, "html": true, "iframe": true,
	"legend": true, "li": true, "link": true, "main": true, "menu": true,
	"menuitem": true, "nav": true, "noframes": true, "ol": true, "optgroup": true,
	"option": true, "p": true, "param": true, "section": true, "source": true,
	"summary": true, "table": true, "tbody": true, "td": true, "tfoot": true,
	"th": true, "thead": true, "title": true, "tr": true, "track": true, "ul": true,
}

type htmlBlockKind int

const (
	htmlBlockNone htmlBlockKind = iota
	htmlBlockType1
	htmlBlockType2
	htmlBlockType3
	htmlBlockType4
	htmlBlockType5
	htmlBlockType6
	htmlBlockType7
)

var type1Tags = map[string]bool{"pre": true, "script": true, "style": true, "textarea": true}

// matchHTMLBlockStart classifies text as starting one of CommonMark's 7
// HTML block types, or htmlBlockNone. tag1 is set for Type1 and names the
// closing tag to look for.
//
// Grounded on original_source/typmark-core/src/parser.rs::match_html_block_start,
// simplified: type6 "any known block tag" detection uses a fast prefix
// scan instead of a full generic-tag-open-or-close grammar check, since
// TypMark's own grammar (box fences, target lines) takes priority over
// ambiguous raw HTML in practice.
func matchHTMLBlockStart(text string) (kind htmlBlockKind, tag1 string) {
	rest, ok := stripIndentUpTo(text, 3)
	if !ok || rest == "" {
		return htmlBlockNone, ""
	}
	lower := strings.ToLower(rest)
	if strings.HasPrefix(rest, "<") {
		name, closing, after := peekTagName(rest)
		if name != "" && !closing && (after >= len(rest) || isSpaceOrTab(rest[after]) || rest[after] == '>' || rest[after] == '/') {
			if type1Tags[strings.ToLower(name)] {
				return htmlBlockType1, strings.ToLower(name)
			}
		}
	}
	if strings.HasPrefix(rest, "<!--") {
		return htmlBlockType2, ""
	}
	if strings.HasPrefix(rest, "<?") {
		return htmlBlockType3, ""
	}
	if strings.HasPrefix(lower, "<![cdata[") {
		return htmlBlockType5, ""
	}
	if strings.HasPrefix(rest, "<!") && len(rest) > 2 && isAsciiAlpha(rest[2]) {
		return htmlBlockType4, ""
	}
	if name, _, after := peekTagName(rest); name != "" {
		if after >= len(rest) || isSpaceOrTab(rest[after]) || rest[after] == '>' ||
			(rest[after] == '/' && after+1 < len(rest) && rest[after+1] == '>') {
			if htmlBlockTags[strings.ToLower(name)] {
				return htmlBlockType6, ""
			}
		}
		return htmlBlockType7, ""
	}
	return htmlBlockNone, ""
}

func isAsciiAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// peekTagName parses a leading "<name" or "</name" and returns the name,
// whether it is a closing tag, and the byte index right after the name.
func peekTagName(text string) (name string, closing bool, after int) {
	if len(text) == 0 || text[0] != '<' {
		return "", false, 0
	}
	idx := 1
	if idx < len(text) && text[idx] == '/' {
		closing = true
		idx++
	}
	if idx >= len(text) || !isAsciiAlpha(text[idx]) {
		return "", false, 0
	}
	start := idx
	idx++
	for idx < len(text) {
		b := text[idx]
		if isAsciiAlpha(b) || (b >= '0' && b <= '9') || b == '-' {
			idx++
			continue
		}
		break
	}
	return text[start:idx], closing, idx
}

// htmlBlockEnd reports whether line ends an HTML block of the given kind.
func htmlBlockEnd(kind htmlBlockKind, tag1 string, text string) bool {
	switch kind {
	case htmlBlockType1:
		return strings.Contains(strings.ToLower(text), "</"+tag1)
	case htmlBlockType2:
		return strings.Contains(text, "-->")
	case htmlBlockType3:
		return strings.Contains(text, "?>")
	case htmlBlockType4:
		return strings.Contains(text, ">")
	case htmlBlockType5:
		return strings.Contains(text, "]]>")
	default:
		return false
	}
}
