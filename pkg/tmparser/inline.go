package tmparser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// delim records one emphasis/strikethrough delimiter run produced while
// scanning, pointing at the Text node that (for now) holds its literal
// run. Processed afterward by processEmphasis.
//
// Grounded on original_source/typmark-core/src/parser.rs's Delimiter
// struct and process_emphasis/apply_emphasis.
type delim struct {
	node                         *tmast.Node
	ch                           byte
	length                       int
	canOpen, canClose            bool
	origCanOpen, origCanClose    bool
	active                       bool
}

// bracket records an unmatched '[' or '![' opener while scanning, for
// link/image close matching.
type bracket struct {
	node   *tmast.Node // the (empty, placeholder) node marking the opener's position
	start  int         // buffer offset of '[' or '!'
	image  bool
	active bool
}

// inlineScanner holds the mutable state of one parseInlineBuffer call. A
// flat doubly-linked list (via Node.Prev/Next, unattached to any parent)
// accumulates scanned nodes; emphasis/link processing splice that list
// before it is finally flattened into a parent's children.
type inlineScanner struct {
	p        *Parser
	buffer   string
	offsets  []int
	head     *tmast.Node
	tail     *tmast.Node
	delims   []*delim
	brackets []*bracket
}

func (s *inlineScanner) push(n *tmast.Node) {
	n.Prev = s.tail
	n.Next = nil
	if s.tail != nil {
		s.tail.Next = n
	} else {
		s.head = n
	}
	s.tail = n
}

func (s *inlineScanner) removeNode(n *tmast.Node) {
	if n.Prev != nil {
		n.Prev.Next = n.Next
	} else {
		s.head = n.Next
	}
	if n.Next != nil {
		n.Next.Prev = n.Prev
	} else {
		s.tail = n.Prev
	}
}

// wrapRun replaces the run of nodes from `from` to `to` (inclusive)
// with a single wrapper node whose children are that run.
func (s *inlineScanner) wrapRun(from, to *tmast.Node, wrapper *tmast.Node) {
	before, after := from.Prev, to.Next
	wrapper.Prev = before
	wrapper.Next = after
	if before != nil {
		before.Next = wrapper
	} else {
		s.head = wrapper
	}
	if after != nil {
		after.Prev = wrapper
	} else {
		s.tail = wrapper
	}
	n := from
	for n != nil {
		next := n.Next
		n.Prev, n.Next = nil, nil
		tmast.AppendChild(wrapper, n)
		if n == to {
			break
		}
		n = next
	}
}

func newTextNode(text string, span tmspan.Span) *tmast.Node {
	n := tmast.New(tmast.NodeText)
	n.Span = span
	n.Inline = &tmast.InlineAttrs{Text: text}
	return n
}

// parseInline parses a standalone inline run (a heading title, a box
// title, a table cell) whose buffer maps 1:1 onto source bytes starting
// at startOffset.
func (p *Parser) parseInline(text string, startOffset int) []*tmast.Node {
	if text == "" {
		return nil
	}
	offsets := make([]int, len(text))
	for i := range text {
		offsets[i] = startOffset + i
	}
	return p.parseInlineBuffer(text, offsets)
}

// parseInlineBuffer scans buffer (built from one or more source lines
// joined with '\n', per offsets) into an inline node sequence: backslash
// escapes, code spans, autolinks, inline math, reference tokens, inline
// HTML, links/images, entities, and hard/soft breaks are resolved in a
// single left-to-right pass; emphasis and strikethrough delimiter runs
// are resolved afterward by processEmphasis.
func (p *Parser) parseInlineBuffer(buffer string, offsets []int) []*tmast.Node {
	if buffer == "" {
		return nil
	}
	s := &inlineScanner{p: p, buffer: buffer, offsets: offsets}

	var textStart int
	flush := func(end int) {
		if end > textStart {
			s.push(newTextNode(buffer[textStart:end], tmspan.Span{Start: offsets[textStart], End: offsets[end-1] + 1}))
		}
		textStart = end
	}

	i := 0
	n := len(buffer)
	for i < n {
		b := buffer[i]
		switch {
		case b == '\\' && i+1 < n && buffer[i+1] == '\n':
			flush(i)
			s.push(tmast.New(tmast.NodeHardBreak))
			i += 2
			textStart = i
		case b == '\\' && i+1 < n && isASCIIPunctuation(buffer[i+1]):
			flush(i)
			s.push(newTextNode(string(buffer[i+1]), tmspan.Span{Start: offsets[i], End: offsets[i+1] + 1}))
			i += 2
			textStart = i
		case b == '`':
			if end, ok := s.scanCodeSpan(i); ok {
				flush(i)
				i = end
				textStart = i
				continue
			}
			i++
		case b == '$':
			if end, ok := s.scanInlineMath(i); ok {
				flush(i)
				i = end
				textStart = i
				continue
			}
			i++
		case b == '<':
			if end, ok := s.scanAutolinkOrHTML(i); ok {
				flush(i)
				i = end
				textStart = i
				continue
			}
			i++
		case b == '@':
			if end, ok := s.scanRefToken(i); ok {
				flush(i)
				i = end
				textStart = i
				continue
			}
			i++
		case p.opts.GFMExtensions && (b == 'h' || b == 'w') && isWordBoundary(buffer, i):
			if end, url, ok := scanGFMAutolinkLiteral(buffer, i); ok {
				flush(i)
				node := tmast.New(tmast.NodeAutolink)
				node.Span = tmspan.Span{Start: offsets[i], End: offsets[end-1] + 1}
				node.Inline = &tmast.InlineAttrs{Autolink: &tmast.AutolinkAttrs{URL: url, Kind: tmast.AutolinkGFMLiteral}}
				s.push(node)
				i = end
				textStart = i
				continue
			}
			i++
		case b == '[' || (b == '!' && i+1 < n && buffer[i+1] == '['):
			flush(i)
			start := i
			img := b == '!'
			if img {
				i++
			}
			marker := newTextNode("", tmspan.Span{Start: offsets[i], End: offsets[i] + 1})
			s.push(marker)
			s.brackets = append(s.brackets, &bracket{node: marker, start: start, image: img, active: true})
			i++
			textStart = i
		case b == ']':
			flush(i)
			i = s.closeBracket(i)
			textStart = i
		case b == '*' || b == '_':
			runLen := 1
			for i+runLen < n && buffer[i+runLen] == b {
				runLen++
			}
			flush(i)
			canOpen, canClose := delimiterProperties(buffer, i, runLen, b)
			node := newTextNode(buffer[i:i+runLen], tmspan.Span{Start: offsets[i], End: offsets[i+runLen-1] + 1})
			s.push(node)
			s.delims = append(s.delims, &delim{node: node, ch: b, length: runLen, canOpen: canOpen, canClose: canClose, origCanOpen: canOpen, origCanClose: canClose, active: true})
			i += runLen
			textStart = i
		case p.opts.GFMExtensions && b == '~' && i+1 < n && buffer[i+1] == '~':
			runLen := 2
			for i+runLen < n && buffer[i+runLen] == '~' {
				runLen++
			}
			flush(i)
			canOpen, canClose := delimiterProperties(buffer, i, runLen, '~')
			node := newTextNode(buffer[i:i+runLen], tmspan.Span{Start: offsets[i], End: offsets[i+runLen-1] + 1})
			s.push(node)
			s.delims = append(s.delims, &delim{node: node, ch: '~', length: runLen, canOpen: canOpen, canClose: canClose, origCanOpen: canOpen, origCanClose: canClose, active: true})
			i += runLen
			textStart = i
		case b == '&':
			if decoded, next, ok := decodeEntity(buffer, i); ok {
				flush(i)
				s.push(newTextNode(string(decoded), tmspan.Span{Start: offsets[i], End: offsets[next-1] + 1}))
				i = next
				textStart = i
				continue
			}
			i++
		case b == '\n':
			hard := false
			if end := i; end > textStart {
				trimmed := strings.TrimRight(buffer[textStart:end], " ")
				if len(buffer[textStart:end])-len(trimmed) >= 2 {
					hard = true
					flush2(s, buffer, offsets, textStart, len(trimmed)+textStart)
					textStart = end
				}
			}
			flush(i)
			if hard {
				s.push(tmast.New(tmast.NodeHardBreak))
			} else {
				s.push(tmast.New(tmast.NodeSoftBreak))
			}
			i++
			textStart = i
		default:
			_, size := utf8.DecodeRuneInString(buffer[i:])
			if size == 0 {
				size = 1
			}
			i += size
		}
	}
	flush(n)

	s.processEmphasis()

	var out []*tmast.Node
	for node := s.head; node != nil; {
		next := node.Next
		node.Prev, node.Next = nil, nil
		out = append(out, node)
		node = next
	}
	return out
}

func flush2(s *inlineScanner, buffer string, offsets []int, start, end int) {
	if end > start {
		s.push(newTextNode(buffer[start:end], tmspan.Span{Start: offsets[start], End: offsets[end-1] + 1}))
	}
}

// delimiterProperties computes CommonMark's left/right-flanking rules
// and, for '_'/'~' (intraword-restricted delimiters), the additional
// open/close restriction.
//
// Grounded on original_source/typmark-core/src/parser.rs::delimiter_properties.
func delimiterProperties(buffer string, pos, runLen int, ch byte) (canOpen, canClose bool) {
	var before, after rune
	haveBefore, haveAfter := false, false
	if pos > 0 {
		before, _ = utf8.DecodeLastRuneInString(buffer[:pos])
		haveBefore = true
	}
	if pos+runLen < len(buffer) {
		after, _ = utf8.DecodeRuneInString(buffer[pos+runLen:])
		haveAfter = true
	}
	beforeWS := !haveBefore || unicode.IsSpace(before)
	afterWS := !haveAfter || unicode.IsSpace(after)
	beforePunct := haveBefore && isUnicodePunct(before)
	afterPunct := haveAfter && isUnicodePunct(after)

	leftFlank := !afterWS && (!afterPunct || beforeWS || beforePunct)
	rightFlank := !beforeWS && (!beforePunct || afterWS || afterPunct)

	if ch == '_' || ch == '~' {
		canOpen = leftFlank && (!rightFlank || beforePunct)
		canClose = rightFlank && (!leftFlank || afterPunct)
		return canOpen, canClose
	}
	return leftFlank, rightFlank
}

func isUnicodePunct(r rune) bool {
	return !unicode.IsSpace(r) && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// processEmphasis runs the standard CommonMark delimiter-stack algorithm:
// for each closer (right to left isn't needed; left to right with
// backward search matches cmark's reference implementation), find the
// nearest compatible, unblocked opener and wrap the span between them.
func (s *inlineScanner) processEmphasis() {
	for ci := 0; ci < len(s.delims); ci++ {
		closer := s.delims[ci]
		if !closer.active || !closer.canClose || closer.length <= 0 {
			continue
		}
		for oi := ci - 1; oi >= 0; oi-- {
			opener := s.delims[oi]
			if !opener.active || opener.length <= 0 || opener.ch != closer.ch || !opener.canOpen {
				continue
			}
			if delimiterBlocked(opener, closer) {
				continue
			}
			count := 1
			kind := tmast.NodeEmphasis
			if opener.ch == '~' {
				count = 2
				kind = tmast.NodeStrikethrough
				if opener.length < 2 || closer.length < 2 {
					continue
				}
			} else if opener.length >= 2 && closer.length >= 2 {
				count = 2
				kind = tmast.NodeStrong
			}

			wrapper := tmast.New(kind)
			inner := opener.node.Next
			if inner == closer.node {
				inner = nil
			}
			last := closer.node.Prev
			trimDelimText(opener.node, count)
			trimDelimText(closer.node, count)

			if inner != nil {
				s.wrapRun(inner, last, wrapper)
			} else {
				wrapper.Prev, wrapper.Next = opener.node, closer.node
				opener.node.Next, closer.node.Prev = wrapper, wrapper
			}
			wrapper.Span = tmspan.Span{Start: opener.node.Span.Start, End: closer.node.Span.End}

			opener.length -= count
			closer.length -= count
			if opener.length == 0 {
				s.removeNode(opener.node)
				opener.active = false
			}
			if closer.length == 0 {
				s.removeNode(closer.node)
				closer.active = false
				break
			}
			ci--
			break
		}
	}
}

// trimDelimText shrinks a delimiter run's backing Text node by count
// chars from its end (mutating in place); the node is removed by the
// caller once its length reaches zero.
func trimDelimText(node *tmast.Node, count int) {
	if node.Inline == nil {
		return
	}
	text := node.Inline.Text
	if count >= len(text) {
		node.Inline.Text = ""
		return
	}
	node.Inline.Text = text[:len(text)-count]
	node.Span.End -= count
}

// delimiterBlocked implements CommonMark's "rule of 3": an opener/closer
// pair that can both open and close is blocked from matching if their
// combined length is a multiple of 3 unless both lengths individually are.
func delimiterBlocked(opener, closer *delim) bool {
	if opener.ch != closer.ch {
		return false
	}
	openerBoth := opener.origCanOpen && opener.origCanClose
	closerBoth := closer.origCanOpen && closer.origCanClose
	if !openerBoth && !closerBoth {
		return false
	}
	if (opener.length+closer.length)%3 != 0 {
		return false
	}
	return opener.length%3 != 0 || closer.length%3 != 0
}

// --- code spans, math, autolinks, references, links --------------------

func (s *inlineScanner) scanCodeSpan(start int) (int, bool) {
	buffer := s.buffer
	runLen := 0
	for start+runLen < len(buffer) && buffer[start+runLen] == '`' {
		runLen++
	}
	i := start + runLen
	for i < len(buffer) {
		if buffer[i] == '`' {
			j := i
			n := 0
			for j < len(buffer) && buffer[j] == '`' {
				j++
				n++
			}
			if n == runLen {
				content := buffer[start+runLen : i]
				content = normalizeCodeSpanContent(content)
				node := tmast.New(tmast.NodeCodeSpan)
				node.Span = tmspan.Span{Start: s.offsets[start], End: s.offsets[j-1] + 1}
				node.Inline = &tmast.InlineAttrs{Text: content}
				s.push(node)
				return j, true
			}
			i = j
			continue
		}
		i++
	}
	return start, false
}

func normalizeCodeSpanContent(content string) string {
	content = strings.ReplaceAll(content, "\n", " ")
	if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' && strings.TrimSpace(content) != "" {
		content = content[1 : len(content)-1]
	}
	return content
}

func (s *inlineScanner) scanInlineMath(start int) (int, bool) {
	buffer := s.buffer
	i := start + 1
	for i < len(buffer) {
		if buffer[i] == '\\' && i+1 < len(buffer) {
			i += 2
			continue
		}
		if buffer[i] == '\n' {
			s.p.diags.Add(s.p.srcMap, tmdiag.ECodeMathInlineNL, tmspan.Span{Start: s.offsets[start], End: s.offsets[i] + 1}, "inline math cannot contain a line break")
			return start, false
		}
		if buffer[i] == '$' {
			node := tmast.New(tmast.NodeMathInline)
			node.Span = tmspan.Span{Start: s.offsets[start], End: s.offsets[i] + 1}
			node.Inline = &tmast.InlineAttrs{MathSrc: buffer[start+1 : i]}
			s.push(node)
			return i + 1, true
		}
		i++
	}
	return start, false
}

func (s *inlineScanner) scanAutolinkOrHTML(start int) (int, bool) {
	buffer := s.buffer
	end := strings.IndexByte(buffer[start+1:], '>')
	if end < 0 {
		return start, false
	}
	end += start + 1
	inner := buffer[start+1 : end]
	if isAutolinkScheme(inner) {
		node := tmast.New(tmast.NodeAutolink)
		node.Span = tmspan.Span{Start: s.offsets[start], End: s.offsets[end] + 1}
		node.Inline = &tmast.InlineAttrs{Autolink: &tmast.AutolinkAttrs{URL: inner, Kind: tmast.AutolinkURI}}
		s.push(node)
		return end + 1, true
	}
	if isAutolinkEmail(inner) {
		node := tmast.New(tmast.NodeAutolink)
		node.Span = tmspan.Span{Start: s.offsets[start], End: s.offsets[end] + 1}
		node.Inline = &tmast.InlineAttrs{Autolink: &tmast.AutolinkAttrs{URL: "mailto:" + inner, Kind: tmast.AutolinkEmail}}
		s.push(node)
		return end + 1, true
	}
	if name, _, _ := peekTagName(buffer[start:]); name != "" || strings.HasPrefix(inner, "!--") || strings.HasPrefix(inner, "!") || strings.HasPrefix(inner, "?") {
		node := tmast.New(tmast.NodeHTMLInline)
		node.Span = tmspan.Span{Start: s.offsets[start], End: s.offsets[end] + 1}
		node.Inline = &tmast.InlineAttrs{Text: buffer[start : end+1]}
		s.push(node)
		return end + 1, true
	}
	return start, false
}

// isWordBoundary reports whether pos is not preceded by an alphanumeric
// character, the GFM extended-autolink "start of word" condition.
func isWordBoundary(buffer string, pos int) bool {
	if pos == 0 {
		return true
	}
	prev := buffer[pos-1]
	return !isAsciiAlnum(prev)
}

// scanGFMAutolinkLiteral recognizes a bare "http://", "https://", or
// "www." autolink per the GFM extended autolinks extension: it runs
// until whitespace or '<', then trims trailing punctuation and balances
// trailing ')' against an unmatched opening '(' inside the match.
func scanGFMAutolinkLiteral(buffer string, start int) (end int, url string, ok bool) {
	var scheme string
	switch {
	case strings.HasPrefix(buffer[start:], "https://"):
		scheme = "https://"
	case strings.HasPrefix(buffer[start:], "http://"):
		scheme = "http://"
	case strings.HasPrefix(buffer[start:], "www."):
		scheme = "www."
	default:
		return start, "", false
	}
	i := start + len(scheme)
	domainStart := i
	for i < len(buffer) && (isAsciiAlnum(buffer[i]) || buffer[i] == '.' || buffer[i] == '-') {
		i++
	}
	if i == domainStart || !strings.Contains(buffer[domainStart:i], ".") {
		return start, "", false
	}
	for i < len(buffer) {
		c := buffer[i]
		if c <= ' ' || c == '<' {
			break
		}
		i++
	}
	end = i
	for end > start+len(scheme) {
		c := buffer[end-1]
		if c == '.' || c == ',' || c == ':' || c == '?' || c == '!' || c == '\'' || c == '"' {
			end--
			continue
		}
		break
	}
	open, close := strings.Count(buffer[start:end], "("), strings.Count(buffer[start:end], ")")
	for close > open && end > start && buffer[end-1] == ')' {
		end--
		close--
	}
	if end <= start+len(scheme) {
		return start, "", false
	}
	literal := buffer[start:end]
	if scheme == "www." {
		return end, "http://" + literal, true
	}
	return end, literal, true
}

func isAutolinkScheme(s string) bool {
	idx := strings.IndexByte(s, ':')
	if idx < 2 || idx > 32 {
		return false
	}
	scheme := s[:idx]
	if !isAsciiAlpha(scheme[0]) {
		return false
	}
	for i := 1; i < len(scheme); i++ {
		c := scheme[i]
		if !isAsciiAlpha(c) && !(c >= '0' && c <= '9') && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	rest := s[idx+1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] <= ' ' || rest[i] == '<' || rest[i] == '>' {
			return false
		}
	}
	return true
}

func isAutolinkEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] <= ' ' || s[i] == '<' || s[i] == '>' {
			return false
		}
	}
	return true
}

// scanRefToken scans a strict "@Label" or "@Label[...]" reference token,
// enforcing the preceding-char guard (not alphanumeric, not in +-._) and
// the path/URL guard (the token immediately before '@', scanning back to
// the last whitespace, must not contain '/' or '\').
func (s *inlineScanner) scanRefToken(start int) (int, bool) {
	buffer := s.buffer
	if start > 0 {
		prev := buffer[start-1]
		if isLabelByte(prev) || prev == '.' {
			return start, false
		}
		wsPos := strings.LastIndexAny(buffer[:start], " \t\n")
		tok := buffer[wsPos+1 : start]
		if strings.ContainsAny(tok, "/\\") {
			return start, false
		}
	}
	i := start + 1
	labelStart := i
	for i < len(buffer) && isLabelByte(buffer[i]) {
		i++
	}
	if i == labelStart {
		return start, false
	}
	label := tmast.Label{Name: buffer[labelStart:i], Span: tmspan.Span{Start: s.offsets[labelStart], End: s.offsets[i-1] + 1}}

	hasBracket := false
	var bracketText string
	bracketEnd := i
	if i < len(buffer) && buffer[i] == '[' {
		j := i + 1
		for j < len(buffer) && buffer[j] != ']' {
			if buffer[j] == '\n' {
				s.p.diags.Add(s.p.srcMap, tmdiag.ECodeRefBracketNL, tmspan.Span{Start: s.offsets[start], End: s.offsets[j] + 1}, "reference display bracket cannot contain a line break")
				break
			}
			j++
		}
		if j < len(buffer) && buffer[j] == ']' {
			hasBracket = true
			bracketText = buffer[i+1 : j]
			bracketEnd = j + 1
		}
	}

	node := tmast.New(tmast.NodeRef)
	node.Span = tmspan.Span{Start: s.offsets[start], End: s.offsets[bracketEnd-1] + 1}
	node.Inline = &tmast.InlineAttrs{Ref: &tmast.RefAttrs{Label: label, HasBracket: hasBracket}}
	if hasBracket && bracketText != "" {
		tmast.AppendChildren(node, s.p.parseInline(bracketText, s.offsets[i+1]))
	}
	s.push(node)
	return bracketEnd, true
}

// closeBracket handles a ']' byte: if it matches an active, most-recent
// bracket opener, attempts an inline or reference link/image form; on
// any mismatch the ']' (and the opener's '[') remain literal text.
func (s *inlineScanner) closeBracket(pos int) int {
	buffer := s.buffer
	var br *bracket
	brIdx := -1
	for idx := len(s.brackets) - 1; idx >= 0; idx-- {
		if s.brackets[idx].active {
			br = s.brackets[idx]
			brIdx = idx
			break
		}
	}
	if br == nil {
		s.push(newTextNode("]", tmspan.Span{Start: s.offsets[pos], End: s.offsets[pos] + 1}))
		return pos + 1
	}

	openerSpan := tmspan.Span{Start: s.offsets[br.start], End: s.offsets[br.start] + 1 + boolToInt(br.image)}
	closerSpan := tmspan.Span{Start: s.offsets[pos], End: s.offsets[pos] + 1}

	var urlResult *tmast.LinkAttrs
	var refMeta *tmast.LinkRefMeta
	var refLabel string
	isRef := false
	i := pos + 1
	closerEnd := i

	if i < len(buffer) && buffer[i] == '(' {
		if url, title, end, ok := scanInlineLinkTail(buffer, i); ok {
			urlResult = &tmast.LinkAttrs{URL: url, Title: title}
			closerEnd = end
		}
	}
	if urlResult == nil && i < len(buffer) && buffer[i] == '[' {
		closeIdx := strings.IndexByte(buffer[i+1:], ']')
		if closeIdx >= 0 {
			rawLabel := buffer[i+1 : i+1+closeIdx]
			label := rawLabel
			labelSpan := tmspan.Span{Start: s.offsets[i+1], End: s.offsets[i+1]}
			if closeIdx > 0 {
				labelSpan = tmspan.Span{Start: s.offsets[i+1], End: s.offsets[i+closeIdx] + 1}
			}
			if label == "" {
				label = buffer[br.start+1+boolToInt(br.image):pos]
				labelSpan = tmspan.Span{Start: s.offsets[br.start] + 1 + boolToInt(br.image), End: s.offsets[pos]}
			}
			refLabel = normalizeLinkLabel(label)
			isRef = true
			closerEnd = i + 1 + closeIdx + 1
			refMeta = &tmast.LinkRefMeta{
				OpenerSpan:     openerSpan,
				CloserSpan:     closerSpan,
				LabelOpenSpan:  spanPtr(s.offsets[i]),
				LabelSpan:      &labelSpan,
				LabelCloseSpan: spanPtr(s.offsets[i+1+closeIdx]),
			}
		}
	}
	if urlResult == nil && !isRef {
		label := buffer[br.start+1+boolToInt(br.image):pos]
		refLabel = normalizeLinkLabel(label)
		isRef = true
		closerEnd = pos + 1
		refMeta = &tmast.LinkRefMeta{OpenerSpan: openerSpan, CloserSpan: closerSpan}
	}

	// Deactivate this and any nested brackets opened after it that were
	// never themselves closed (they become literal on flatten below).
	for idx := brIdx; idx < len(s.brackets); idx++ {
		s.brackets[idx].active = false
	}

	var wrapper *tmast.Node
	if isRef {
		kind := tmast.NodeLinkRef
		if br.image {
			kind = tmast.NodeImageRef
		}
		wrapper = tmast.New(kind)
		wrapper.Inline = &tmast.InlineAttrs{LinkRef: &tmast.LinkRefAttrs{Label: refLabel, Meta: *refMeta}}
	} else {
		kind := tmast.NodeLink
		if br.image {
			kind = tmast.NodeImage
		}
		wrapper = tmast.New(kind)
		wrapper.Inline = &tmast.InlineAttrs{Link: urlResult}
	}
	wrapper.Span = tmspan.Span{Start: s.offsets[br.start], End: s.offsets[closerEnd-1] + 1}

	inner := br.node.Next
	if inner == nil {
		s.wrapRun(br.node, br.node, wrapper)
	} else {
		s.removeNode(br.node)
		s.wrapRun(inner, s.tail, wrapper)
	}
	return closerEnd
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func spanPtr(offset int) *tmspan.Span {
	sp := tmspan.Span{Start: offset, End: offset}
	return &sp
}

// scanInlineLinkTail parses "(url "title")" starting at the '(' byte,
// returning the URL, optional title, and the index just past ')'.
func scanInlineLinkTail(buffer string, open int) (url string, title *string, next int, ok bool) {
	i := open + 1
	for i < len(buffer) && isSpaceOrTab(buffer[i]) {
		i++
	}
	if i < len(buffer) && buffer[i] == ')' {
		return "", nil, i + 1, true
	}
	u, dnext, dok := parseLinkDestination(buffer, i)
	if !dok {
		return "", nil, open, false
	}
	i = dnext
	for i < len(buffer) && isSpaceOrTab(buffer[i]) {
		i++
	}
	if i < len(buffer) && isTitleDelim(buffer[i]) {
		t, tnext, tok := parseLinkTitle(buffer, i)
		if tok {
			decoded := unescapeAndDecodeEntities(t)
			title = &decoded
			i = tnext
			for i < len(buffer) && isSpaceOrTab(buffer[i]) {
				i++
			}
		}
	}
	if i >= len(buffer) || buffer[i] != ')' {
		return "", nil, open, false
	}
	return u, title, i + 1, true
}
