package tmparser

import (
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// parseList parses a run of list items sharing the same marker kind
// (bullet character, or ordered delimiter), recursing into parseBlocks
// for each item's body. Tightness is the negation of "any blank line
// separates items, or separates two blocks within one item".
//
// Grounded on original_source/typmark-core/src/parser.rs::parse_list.
func (p *Parser) parseList(lines []line, start int, parseInlines bool) (*tmast.Node, int, bool) {
	marker, ok := parseListMarker(lines[start].text)
	if !ok {
		return nil, 0, false
	}
	i := start
	var items []*tmast.Node
	var itemBlanks []bool
	listHasBlank := false
	listEnd := lines[start].end

	for i < len(lines) {
		cur := lines[i]
		curMarker, ok := parseListMarker(cur.text)
		if !ok || curMarker.ordered != marker.ordered || curMarker.marker != marker.marker {
			break
		}
		markerLen, contentIndent := curMarker.markerLen, curMarker.contentIndent

		var itemLines []line
		firstText := removeListIndent(cur.text, contentIndent)
		seenContent := strings.TrimSpace(firstText) != ""
		initialBlankLines := 0
		if !seenContent {
			initialBlankLines = 1
		}
		itemLines = append(itemLines, line{text: firstText, start: cur.start + markerLen, end: cur.end})
		canLazy := p.lineCanContinueParagraph(itemLines[len(itemLines)-1]) || strings.HasPrefix(strings.TrimSpace(itemLines[len(itemLines)-1].text), ">")

		j := i + 1
		lastLineIdx := i
		var pendingBlank []line
		for j < len(lines) {
			next := lines[j]
			if next.isBlank() {
				if !seenContent {
					if initialBlankLines >= 1 {
						k := j + 1
						for k < len(lines) && lines[k].isBlank() {
							listHasBlank = true
							k++
						}
						if k < len(lines) {
							if nm, ok := parseListMarker(lines[k].text); ok && nm.ordered == marker.ordered && nm.marker == marker.marker {
								listHasBlank = true
								j = k
								break
							}
						}
						break
					}
					initialBlankLines++
				}
				pendingBlank = append(pendingBlank, next)
				canLazy = false
				j++
				continue
			}
			if indentPrefixLen(next.text, contentIndent) >= 0 {
				for range pendingBlank {
					itemLines = append(itemLines, line{})
				}
				pendingBlank = nil
				contentText := removeIndentColumns(next.text, contentIndent)
				itemLines = append(itemLines, line{text: contentText, start: next.start, end: next.end})
				seenContent = true
				canLazy = p.lineCanContinueParagraph(itemLines[len(itemLines)-1]) || strings.HasPrefix(strings.TrimSpace(itemLines[len(itemLines)-1].text), ">")
				lastLineIdx = j
				j++
				continue
			}
			if nm, ok := parseListMarker(next.text); ok {
				if nm.ordered == marker.ordered && nm.marker == marker.marker && len(pendingBlank) > 0 {
					listHasBlank = true
				}
				break
			}
			if len(pendingBlank) == 0 && canLazy {
				if _, isSetext := setextUnderlineLevel(next.text); !isSetext && p.lineCanContinueParagraph(next) {
					itemLines = append(itemLines, next)
					seenContent = true
					lastLineIdx = j
					j++
					continue
				}
			}
			break
		}

		blocks := p.parseBlocks(itemLines, parseInlines)
		itemHasBlank := itemHasBlankBetweenBlocks(itemLines, blocks)
		span := tmspan.Span{Start: cur.start, End: lines[lastLineIdx].end}
		var task *bool
		if parseInlines && p.opts.GFMExtensions {
			task = detectTaskMarker(blocks)
		}
		itemNode := tmast.New(tmast.NodeListItem)
		itemNode.Span = span
		itemNode.Block = &tmast.BlockAttrs{ListItem: &tmast.ListItemAttrs{Task: task}}
		tmast.AppendChildren(itemNode, blocks)
		items = append(items, itemNode)
		itemBlanks = append(itemBlanks, itemHasBlank)
		listEnd = span.End
		i = j
	}

	tight := !listHasBlank
	if tight {
		for _, b := range itemBlanks {
			if b {
				tight = false
				break
			}
		}
	}

	var startPtr *int
	if marker.ordered && marker.start != nil {
		v := int(*marker.start)
		startPtr = &v
	}
	node := tmast.New(tmast.NodeList)
	node.Span = tmspan.Span{Start: lines[start].start, End: listEnd}
	node.Block = &tmast.BlockAttrs{List: &tmast.ListAttrs{Ordered: marker.ordered, Start: startPtr, Tight: tight}}
	tmast.AppendChildren(node, items)
	return node, i, true
}

// removeListIndent removes contentIndent columns from a line that still
// carries its list marker, matching the original's remove_list_indent:
// marker bytes are skipped first (not expanded), then remaining
// indentation is expanded as ordinary tab-stop indentation.
func removeListIndent(text string, contentIndent int) string {
	idx, cols := 0, 0
	for idx < len(text) && text[idx] == ' ' && cols < contentIndent {
		idx++
		cols++
	}
	for idx < len(text) && !isSpaceOrTab(text[idx]) && cols < contentIndent {
		idx++
		cols++
	}
	return removeIndentColumns(text[idx:], contentIndent-cols)
}

// itemHasBlankBetweenBlocks reports whether a blank source line appears
// between two of an item's parsed blocks, which forces the whole list
// loose even if no blank line separates items themselves.
func itemHasBlankBetweenBlocks(lines []line, blocks []*tmast.Node) bool {
	if len(blocks) < 2 {
		return false
	}
	lineStarts := make(map[int]bool, len(lines))
	for _, l := range lines {
		if l.isBlank() {
			lineStarts[l.start] = true
		}
	}
	for i := 1; i < len(blocks); i++ {
		gapStart, gapEnd := blocks[i-1].Span.End, blocks[i].Span.Start
		for _, l := range lines {
			if l.start >= gapStart && l.end <= gapEnd && l.isBlank() {
				return true
			}
		}
	}
	return false
}

// detectTaskMarker strips a leading "[ ]"/"[x]"/"[X]" task marker from an
// item's first block if it is a plain paragraph whose first inline is
// literal text, returning the checked state and mutating the text node
// in place (or the whole first-child is dropped if now empty). The inline
// parser reads "[ ]"/"[x]"/"[X]" as a shortcut link reference, so such a
// leading reference and the text after it are folded back into one text
// node first.
//
// Grounded on original_source/typmark-core/src/parser.rs::detect_task_marker,
// take_task_marker.
func detectTaskMarker(blocks []*tmast.Node) *bool {
	if len(blocks) == 0 || blocks[0].Kind != tmast.NodeParagraph {
		return nil
	}
	first := blocks[0].FirstChild
	if first != nil && first.Kind == tmast.NodeLinkRef && first.FirstChild != nil && first.FirstChild == first.LastChild &&
		first.FirstChild.Kind == tmast.NodeText && first.FirstChild.Inline != nil &&
		len(first.FirstChild.Inline.Text) == 1 && strings.Contains(" xX", first.FirstChild.Inline.Text) {
		text := "[" + first.FirstChild.Inline.Text + "]"
		if next := first.Next; next != nil && next.Kind == tmast.NodeText && next.Inline != nil {
			text += next.Inline.Text
			tmast.RemoveChild(blocks[0], next)
		}
		first.Kind = tmast.NodeText
		first.Inline = &tmast.InlineAttrs{Text: text}
		first.FirstChild, first.LastChild = nil, nil
	}
	if first == nil || first.Kind != tmast.NodeText || first.Inline == nil {
		return nil
	}
	text := first.Inline.Text
	if len(text) < 3 || text[0] != '[' || text[2] != ']' {
		return nil
	}
	var checked bool
	switch text[1] {
	case ' ':
		checked = false
	case 'x', 'X':
		checked = true
	default:
		return nil
	}
	rest := text[3:]
	rest = strings.TrimPrefix(rest, " ")
	first.Inline.Text = rest
	if rest == "" {
		tmast.RemoveChild(blocks[0], first)
	}
	return &checked
}
