package tmparser

import (
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// Parser is TypMark's hand-written block/inline parser. Unlike the
// teacher, which maps goldmark's AST, TypMark's grammar (target lines,
// box fences, strict references, math) has no goldmark extension point,
// so parsing is implemented directly against the algorithms in
// original_source/typmark-core/src/parser.rs.
//
// Parser operates on a flat slice of lines per recursive call (one call
// per container: document, a blockquote's body, a list item's body, a
// box's body), exactly like the original: there is no explicit container
// stack, recursion plays that role.
type Parser struct {
	opts     Options
	diags    *tmdiag.Sink
	srcMap   *tmspan.Map
	linkDefs map[string]LinkDefinition
}

// Parse parses source into a document AST, accumulating diagnostics into
// diags. linkDefs must already be populated by a prepass (see Prepass)
// so that reference-style links/images can resolve during this pass.
func Parse(source []byte, opts Options, diags *tmdiag.Sink, srcMap *tmspan.Map, linkDefs map[string]LinkDefinition) *tmast.Node {
	diags.SetPass(1)
	p := &Parser{opts: opts, diags: diags, srcMap: srcMap, linkDefs: linkDefs}
	doc := tmast.NewDocument()
	doc.Span = tmspan.Span{Start: 0, End: len(source)}
	lines := buildLines(source)

	start := 0
	if len(lines) > 1 {
		if attrs, ok := p.tryParseTargetLine(lines[0]); ok && isDocumentSettingsLine(attrs) && lines[1].isBlank() {
			doc.Attrs = attrs
			start = 2
		}
	}

	blocks := p.parseBlocks(lines[start:], true)
	tmast.AppendChildren(doc, blocks)
	return doc
}

// isDocumentSettingsLine reports whether attrs qualifies as the document
// settings line (spec.md: an attribute list at the very start of the
// document whose items are all key=value, no #label, followed by a blank
// line). AttrList items are always key=value by construction, so the only
// extra condition is the absence of a label.
func isDocumentSettingsLine(attrs *tmast.AttrList) bool {
	return attrs != nil && attrs.Label == nil && len(attrs.Items) > 0
}

// Prepass scans source for link reference definitions only (no
// diagnostics, no inline parsing), used to populate the link-definition
// table before the real parse so forward references resolve. Mirrors the
// original's two-pass parse() driver.
func Prepass(source []byte) map[string]LinkDefinition {
	p := &Parser{diags: tmdiag.NewSink(), linkDefs: map[string]LinkDefinition{}}
	lines := buildLines(source)
	p.parseBlocks(lines, false)
	return p.linkDefs
}

// parseBlocks is the main block-dispatch loop, called recursively for
// each container's line range. parseInlines gates whether leaf content
// is lexed into inline sequences (false during the link-definition
// prepass).
func (p *Parser) parseBlocks(lines []line, parseInlines bool) []*tmast.Node {
	var blocks []*tmast.Node
	var pending *tmast.AttrList
	i := 0
	for i < len(lines) {
		ln := lines[i]
		if ln.isBlank() {
			i++
			continue
		}

		if attrs, consumed := p.tryParseTargetLine(ln); consumed {
			if pending != nil && pending.Span != nil {
				p.diags.Add(p.srcMap, tmdiag.ECodeTargetOrphan, *pending.Span, "target line has no following block")
			}
			pending = attrs
			i++
			continue
		}

		var block *tmast.Node
		var next int
		switch {
		case func() bool { n, m, ok := p.parseCodeBlock(lines, i); return tryBlock(&block, &next, n, m, ok) }():
		case func() bool { n, m, ok := p.parseIndentedCodeBlock(lines, i); return tryBlock(&block, &next, n, m, ok) }():
		case func() bool { n, m, ok := p.parseMathBlock(lines, i); return tryBlock(&block, &next, n, m, ok) }():
		case func() bool { n, m, ok := p.parseBoxBlock(lines, i, parseInlines); return tryBlock(&block, &next, n, m, ok) }():
		case func() bool { n, m, ok := p.parseHTMLBlock(lines, i); return tryBlock(&block, &next, n, m, ok) }():
		case func() bool { n, m, ok := p.parseThematicBreak(lines, i); return tryBlock(&block, &next, n, m, ok) }():
		case func() bool { n, m, ok := p.parseBlockQuote(lines, i, parseInlines); return tryBlock(&block, &next, n, m, ok) }():
		case func() bool { n, m, ok := p.parseList(lines, i, parseInlines); return tryBlock(&block, &next, n, m, ok) }():
		case p.opts.GFMExtensions && func() bool { n, m, ok := p.parseTable(lines, i, parseInlines); return tryBlock(&block, &next, n, m, ok) }():
		case func() bool { n, m, ok := p.parseHeading(lines, i, parseInlines); return tryBlock(&block, &next, n, m, ok) }():
		default:
			b, n := p.parseParagraph(lines, i, parseInlines)
			block, next = b, n
		}

		if block != nil {
			p.finalizeBlock(block, &pending)
			blocks = append(blocks, block)
		}
		i = next
	}
	if pending != nil && pending.Span != nil {
		p.diags.Add(p.srcMap, tmdiag.ECodeTargetOrphan, *pending.Span, "target line has no following block")
	}
	return blocks
}

// tryBlock is a small helper to let parseBlocks express its dispatch
// chain as a switch rather than a long if/else-if ladder, matching the
// original's "if let Some(...) = parse_x() { ...; continue }" chain.
func tryBlock(block **tmast.Node, next *int, b *tmast.Node, n int, ok bool) bool {
	if !ok {
		return false
	}
	*block = b
	*next = n
	return true
}

func (p *Parser) finalizeBlock(block *tmast.Node, pending **tmast.AttrList) {
	if *pending != nil {
		attrs := *pending
		*pending = nil
		if attrs.Label != nil {
			if block.Attrs != nil && block.Attrs.Label != nil {
				p.diags.Add(p.srcMap, tmdiag.ECodeLabelDup, attrs.Label.Span, "duplicate label",
					tmdiag.Related(p.srcMap, block.Attrs.Label.Span, "first label here"))
			} else {
				if block.Attrs == nil {
					block.Attrs = &tmast.AttrList{}
				}
				block.Attrs.Label = attrs.Label
			}
		}
		if attrs.Span != nil {
			if block.Attrs == nil {
				block.Attrs = &tmast.AttrList{}
			}
			block.Attrs.Span = attrs.Span
		}
		if len(attrs.Items) > 0 {
			if block.Attrs == nil {
				block.Attrs = &tmast.AttrList{}
			}
			block.Attrs.Items = append(block.Attrs.Items, attrs.Items...)
		}
	}
	if block.Kind == tmast.NodeBox {
		validateBoxStyles(block.Attrs, p.diags, p.srcMap)
	}
}

func (p *Parser) tryParseTargetLine(ln line) (*tmast.AttrList, bool) {
	content, base, ok := isTargetLineText([]byte(ln.text))
	if !ok {
		return nil, false
	}
	span := tmspan.Span{Start: ln.start, End: ln.end}
	return parseAttrList(content, ln.start+base, span, p.diags, p.srcMap), true
}

// --- leaf blocks -----------------------------------------------------

func (p *Parser) parseHeading(lines []line, i int, parseInlines bool) (*tmast.Node, int, bool) {
	ln := lines[i]
	level, cs, ce, ok := parseATXHeading(ln.text)
	if !ok {
		return nil, 0, false
	}
	node := tmast.New(tmast.NodeHeading)
	node.Span = tmspan.Span{Start: ln.start, End: ln.end}
	node.Block = &tmast.BlockAttrs{HeadingLevel: level}
	if parseInlines {
		tmast.AppendChildren(node, p.parseInline(ln.text[cs:ce], ln.start+cs))
	}
	return node, i + 1, true
}

func (p *Parser) parseThematicBreak(lines []line, i int) (*tmast.Node, int, bool) {
	ln := lines[i]
	if !isThematicBreakLine(ln.text) {
		return nil, 0, false
	}
	node := tmast.New(tmast.NodeThematicBreak)
	node.Span = tmspan.Span{Start: ln.start, End: ln.end}
	return node, i + 1, true
}

// isBlockStart reports whether a line begins some other block type,
// used to decide where an interrupted paragraph ends.
func (p *Parser) isBlockStart(ln line) bool {
	if isCodeFenceLine(ln.text) || strings.TrimSpace(ln.text) == "$$" || isBoxOpen(ln.text) {
		return true
	}
	if kind, _ := matchHTMLBlockStart(ln.text); kind != htmlBlockNone {
		return true
	}
	if blockquotePrefixLen(ln.text) >= 0 || isThematicBreakLine(ln.text) {
		return true
	}
	if _, ok := parseListMarker(ln.text); ok {
		return true
	}
	return isHeadingLine(ln.text) || func() bool {
		_, _, ok := isTargetLineText([]byte(ln.text))
		return ok
	}()
}

func (p *Parser) lineCanContinueParagraph(ln line) bool {
	if ln.isBlank() {
		return false
	}
	if _, ok := setextUnderlineLevel(ln.text); ok {
		return false
	}
	if kind, _ := matchHTMLBlockStart(ln.text); kind != htmlBlockNone && kind != htmlBlockType7 {
		return false
	}
	if marker, ok := parseListMarker(ln.text); ok {
		if !marker.empty && (!marker.ordered || (marker.start != nil && *marker.start == 1)) {
			return false
		}
	} else if p.isBlockStart(ln) {
		return false
	}
	return true
}

func (p *Parser) parseParagraph(lines []line, start int, parseInlines bool) (*tmast.Node, int) {
	i := start
	var content []line
	setextLevel := 0
	setextEnd := start

	for i < len(lines) {
		ln := lines[i]
		if ln.isBlank() {
			break
		}
		if kind, _ := matchHTMLBlockStart(ln.text); kind != htmlBlockNone && kind != htmlBlockType7 {
			break
		} else if marker, ok := parseListMarker(ln.text); ok {
			if !marker.empty && (!marker.ordered || (marker.start != nil && *marker.start == 1)) {
				break
			}
		} else if p.isBlockStart(ln) {
			break
		}
		if len(content) == 0 {
			if label, def, ok := parseLinkReferenceDefinitionLine(ln); ok {
				if _, exists := p.linkDefs[label]; exists {
					p.diags.Add(p.srcMap, tmdiag.WCodeLinkDefDup, tmspan.Span{Start: ln.start, End: ln.end}, "duplicate link reference definition: "+label)
				} else {
					p.linkDefs[label] = def
				}
				i++
				continue
			}
		}
		content = append(content, ln)
		if i+1 < len(lines) && !ln.lazy {
			if level, ok := setextUnderlineLevel(lines[i+1].text); ok {
				setextLevel = level
				setextEnd = i + 1
				break
			}
		}
		i++
	}

	if len(content) == 0 {
		return nil, i
	}

	spanStart, spanEnd := content[0].start, content[len(content)-1].end

	if setextLevel != 0 {
		buffer, offsets := buildHeadingBuffer(content)
		node := tmast.New(tmast.NodeHeading)
		node.Span = tmspan.Span{Start: spanStart, End: lines[setextEnd].end}
		node.Block = &tmast.BlockAttrs{HeadingLevel: setextLevel}
		if parseInlines {
			tmast.AppendChildren(node, p.parseInlineBuffer(buffer, offsets))
		}
		return node, setextEnd + 1
	}

	buffer, offsets := buildInlineBuffer(content)
	node := tmast.New(tmast.NodeParagraph)
	node.Span = tmspan.Span{Start: spanStart, End: spanEnd}
	if parseInlines {
		tmast.AppendChildren(node, p.parseInlineBuffer(buffer, offsets))
	}
	return node, i
}

// buildInlineBuffer flattens a paragraph's lines into one buffer joined
// by '\n', recording the source offset of each buffer byte so inline
// spans can be reported precisely.
func buildInlineBuffer(lines []line) (string, []int) {
	var sb strings.Builder
	var offsets []int
	for idx, ln := range lines {
		if idx > 0 {
			sb.WriteByte('\n')
			offsets = append(offsets, lines[idx-1].end)
		}
		for j := 0; j < len(ln.text); j++ {
			offsets = append(offsets, ln.start+j)
		}
		sb.WriteString(ln.text)
	}
	return sb.String(), offsets
}

func buildHeadingBuffer(lines []line) (string, []int) {
	return buildInlineBuffer(lines)
}

func (p *Parser) parseCodeBlock(lines []line, start int) (*tmast.Node, int, bool) {
	ln := lines[start]
	indentLen, fenceLen, fenceChar, info, ok := parseFenceOpen(ln.text)
	if !ok {
		return nil, 0, false
	}
	lang, infoAttrs := p.parseFenceInfo(ln, info)

	var codeLines []string
	i := start + 1
	for i < len(lines) {
		cand := lines[i]
		if isFenceClose(cand.text, fenceLen, fenceChar) {
			i++
			break
		}
		codeLines = append(codeLines, stripLeadingSpaces(cand.text, indentLen))
		i++
	}
	text := strings.Join(codeLines, "\n")
	totalLines := countLines(text)
	meta := parseCodeMeta(infoAttrs, totalLines, p.diags, p.srcMap)

	node := tmast.New(tmast.NodeCodeBlock)
	end := ln.end
	if i > 0 {
		end = lines[i-1].end
	}
	node.Span = tmspan.Span{Start: ln.start, End: end}
	if infoAttrs != nil && infoAttrs.Label != nil {
		node.Attrs = &tmast.AttrList{Span: infoAttrs.Span, Label: infoAttrs.Label}
	}
	node.Block = &tmast.BlockAttrs{CodeBlock: &tmast.CodeBlockAttrs{
		Kind: tmast.CodeBlockFenced, Lang: lang, InfoAttrs: infoAttrs, Meta: meta, Text: text,
	}}
	return node, i, true
}

func (p *Parser) parseFenceInfo(ln line, info string) (lang string, attrs *tmast.AttrList) {
	braceIdx := strings.IndexByte(info, '{')
	if braceIdx < 0 {
		if info == "" {
			return "", nil
		}
		return info, nil
	}
	langPart := strings.TrimSpace(info[:braceIdx])
	openIdx := strings.IndexByte(ln.text, '{')
	closeIdx := strings.LastIndexByte(ln.text, '}')
	if openIdx < 0 || closeIdx < 0 || closeIdx < openIdx {
		return langPart, nil
	}
	base := ln.start + openIdx
	content := []byte(ln.text[openIdx+1 : closeIdx])
	span := tmspan.Span{Start: base, End: ln.start + closeIdx + 1}
	attrs = parseAttrList(content, base+1, span, p.diags, p.srcMap)
	return langPart, attrs
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

func (p *Parser) parseIndentedCodeBlock(lines []line, start int) (*tmast.Node, int, bool) {
	ln := lines[start]
	if indentPrefixLen(ln.text, 4) < 0 {
		return nil, 0, false
	}
	var codeLines []string
	var pendingBlank int
	i := start
	last := start
	for i < len(lines) {
		cur := lines[i]
		if cur.isBlank() {
			pendingBlank++
			i++
			continue
		}
		if indentPrefixLen(cur.text, 4) < 0 {
			break
		}
		for ; pendingBlank > 0; pendingBlank-- {
			codeLines = append(codeLines, "")
		}
		codeLines = append(codeLines, removeIndentColumns(cur.text, 4))
		last = i
		i++
	}
	node := tmast.New(tmast.NodeCodeBlock)
	node.Span = tmspan.Span{Start: ln.start, End: lines[last].end}
	node.Block = &tmast.BlockAttrs{CodeBlock: &tmast.CodeBlockAttrs{
		Kind: tmast.CodeBlockIndented, Text: strings.Join(codeLines, "\n"),
	}}
	return node, i, true
}

func (p *Parser) parseMathBlock(lines []line, start int) (*tmast.Node, int, bool) {
	ln := lines[start]
	trimmed := strings.TrimSpace(ln.text)
	if !strings.HasPrefix(trimmed, "$$") {
		return nil, 0, false
	}
	if trimmed != "$$" && strings.HasSuffix(trimmed, "$$") && len(trimmed) > 4 {
		src := strings.TrimSuffix(strings.TrimPrefix(trimmed, "$$"), "$$")
		node := tmast.New(tmast.NodeMathBlock)
		node.Span = tmspan.Span{Start: ln.start, End: ln.end}
		node.Block = &tmast.BlockAttrs{RawText: src}
		return node, start + 1, true
	}
	i := start + 1
	var body []string
	for i < len(lines) {
		cand := lines[i]
		if strings.TrimSpace(cand.text) == "$$" {
			i++
			break
		}
		body = append(body, cand.text)
		i++
	}
	node := tmast.New(tmast.NodeMathBlock)
	end := ln.end
	if i > 0 {
		end = lines[i-1].end
	}
	node.Span = tmspan.Span{Start: ln.start, End: end}
	node.Block = &tmast.BlockAttrs{RawText: strings.Join(body, "\n")}
	return node, i, true
}

// parseBoxBlock parses a ":::box [title]" fenced block, tunneling through
// any nested fenced-code or math-block body so their content lines are
// never misread as this box's own closing fence.
func (p *Parser) parseBoxBlock(lines []line, start int, parseInlines bool) (*tmast.Node, int, bool) {
	ln := lines[start]
	if !strings.HasPrefix(ln.text, ":::") {
		return nil, 0, false
	}
	fenceLen := boxFenceLen(ln.text)
	if fenceLen < 3 {
		return nil, 0, false
	}
	rest := strings.TrimLeft(ln.text[fenceLen:], " \t")
	if !strings.HasPrefix(rest, "box") {
		return nil, 0, false
	}
	titleText := strings.TrimLeft(strings.TrimPrefix(rest, "box"), " \t")

	var titleNode *tmast.Node
	hasTitle := titleText != ""
	if hasTitle {
		titleNode = tmast.New(tmast.NodeHeading)
		titleOffset := ln.start + (len(ln.text) - len(titleText))
		if parseInlines {
			tmast.AppendChildren(titleNode, p.parseInline(titleText, titleOffset))
		}
	}

	i := start + 1
	var inner []line
	fenceStack := []int{fenceLen}
	for i < len(lines) {
		cand := lines[i]
		trimmed := strings.TrimSpace(cand.text)
		if _, innerFenceLen, innerFenceChar, _, ok := parseFenceOpen(cand.text); ok {
			inner = append(inner, cand)
			i++
			for i < len(lines) {
				in := lines[i]
				inner = append(inner, in)
				i++
				if isFenceClose(in.text, innerFenceLen, innerFenceChar) {
					break
				}
			}
			continue
		}
		if trimmed == "$$" {
			inner = append(inner, cand)
			i++
			for i < len(lines) {
				in := lines[i]
				inner = append(inner, in)
				i++
				if strings.TrimSpace(in.text) == "$$" {
					break
				}
			}
			continue
		}
		if isBoxOpen(cand.text) {
			fenceStack = append(fenceStack, boxFenceLen(cand.text))
			inner = append(inner, cand)
			i++
			continue
		}
		colons := boxFenceLen(trimmed)
		if colons >= 3 && colons == len(trimmed) && len(fenceStack) > 0 && colons >= fenceStack[len(fenceStack)-1] {
			fenceStack = fenceStack[:len(fenceStack)-1]
			if len(fenceStack) == 0 {
				i++
				break
			}
			inner = append(inner, cand)
			i++
			continue
		}
		inner = append(inner, cand)
		i++
	}

	node := tmast.New(tmast.NodeBox)
	end := ln.end
	if i > 0 {
		end = lines[i-1].end
	}
	node.Span = tmspan.Span{Start: ln.start, End: end}
	node.Block = &tmast.BlockAttrs{Box: &tmast.BoxAttrs{FenceLength: fenceLen, HasTitle: hasTitle}}
	if titleNode != nil {
		tmast.AppendChild(node, titleNode)
	}
	tmast.AppendChildren(node, p.parseBlocks(inner, parseInlines))
	return node, i, true
}

func (p *Parser) parseHTMLBlock(lines []line, start int) (*tmast.Node, int, bool) {
	ln := lines[start]
	kind, tag1 := matchHTMLBlockStart(ln.text)
	if kind == htmlBlockNone {
		return nil, 0, false
	}
	raw := []string{ln.text}
	i := start + 1

	if kind != htmlBlockType6 && kind != htmlBlockType7 && htmlBlockEnd(kind, tag1, ln.text) {
		node := tmast.New(tmast.NodeHTMLBlock)
		node.Span = tmspan.Span{Start: ln.start, End: ln.end}
		node.Block = &tmast.BlockAttrs{RawText: raw[0]}
		return node, i, true
	}

	if kind == htmlBlockType6 || kind == htmlBlockType7 {
		for i < len(lines) {
			nxt := lines[i]
			if nxt.isBlank() {
				break
			}
			raw = append(raw, nxt.text)
			i++
		}
	} else {
		for i < len(lines) {
			nxt := lines[i]
			raw = append(raw, nxt.text)
			if htmlBlockEnd(kind, tag1, nxt.text) {
				i++
				break
			}
			i++
		}
	}

	endIdx := start
	if i > 0 {
		endIdx = i - 1
	}
	node := tmast.New(tmast.NodeHTMLBlock)
	node.Span = tmspan.Span{Start: ln.start, End: lines[endIdx].end}
	node.Block = &tmast.BlockAttrs{RawText: strings.Join(raw, "\n")}
	return node, i, true
}

func (p *Parser) parseBlockQuote(lines []line, start int, parseInlines bool) (*tmast.Node, int, bool) {
	ln := lines[start]
	if blockquotePrefixLen(ln.text) < 0 {
		return nil, 0, false
	}
	i := start
	var quoteLines []line
	canLazy := false
	for i < len(lines) {
		cand := lines[i]
		if n := blockquotePrefixLen(cand.text); n >= 0 {
			stripped := line{text: cand.text[n:], start: cand.start + n, end: cand.end}
			canLazy = p.lineCanContinueParagraph(stripped) || strings.HasPrefix(strings.TrimSpace(stripped.text), ">")
			quoteLines = append(quoteLines, stripped)
			i++
			continue
		}
		if cand.isBlank() {
			break
		}
		if canLazy {
			if !p.lineCanContinueParagraph(cand) {
				if _, ok := setextUnderlineLevel(cand.text); !ok {
					break
				}
			}
			if isThematicBreakLine(cand.text) {
				break
			}
			quoteLines = append(quoteLines, line{text: cand.text, start: cand.start, end: cand.end, lazy: true})
			i++
			continue
		}
		break
	}
	node := tmast.New(tmast.NodeBlockquote)
	end := ln.end
	if i > 0 {
		end = lines[i-1].end
	}
	node.Span = tmspan.Span{Start: ln.start, End: end}
	tmast.AppendChildren(node, p.parseBlocks(quoteLines, parseInlines))
	return node, i, true
}
