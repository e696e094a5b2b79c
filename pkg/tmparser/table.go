package tmparser

import "strings"

// tableCellRaw is one unparsed table cell's trimmed text and its byte
// offset within the line (relative to the line's own start).
type tableCellRaw struct {
	text  string
	start int
}

// tableLineView strips up to 3 leading spaces, returning the byte offset
// removed and the remaining text, or ok=false on 4+ leading spaces.
func tableLineView(text string) (offset int, rest string, ok bool) {
	idx, spaces := 0, 0
	for idx < len(text) && spaces < 3 && text[idx] == ' ' {
		idx++
		spaces++
	}
	if idx < len(text) && text[idx] == ' ' {
		return 0, "", false
	}
	return idx, text[idx:], true
}

// splitTableCells splits a table row's text on unescaped, un-code-span
// '|' bytes, trimming each cell and dropping an empty leading/trailing
// cell produced by outer pipes.
//
// Grounded on original_source/typmark-core/src/parser.rs::split_table_cells.
func splitTableCells(text string, baseOffset int) (cells []tableCellRaw, hadPipe bool) {
	var buf strings.Builder
	cellStart := 0
	i := 0
	for i < len(text) {
		b := text[i]
		if b == '\\' && i+1 < len(text) && text[i+1] == '|' {
			buf.WriteByte('\\')
			buf.WriteByte('|')
			i += 2
			continue
		}
		if b == '`' {
			runLen := 0
			for i+runLen < len(text) && text[i+runLen] == '`' {
				runLen++
			}
			buf.WriteString(text[i : i+runLen])
			i += runLen
			closed := false
			for i < len(text) {
				if text[i] == '`' {
					j := i
					n := 0
					for j < len(text) && text[j] == '`' {
						j++
						n++
					}
					if n == runLen {
						buf.WriteString(text[i:j])
						i = j
						closed = true
						break
					}
					buf.WriteString(text[i:j])
					i = j
					continue
				}
				buf.WriteByte(text[i])
				i++
			}
			_ = closed
			continue
		}
		if b == '|' {
			hadPipe = true
			cells = append(cells, finalizeTableCell(buf.String(), baseOffset+cellStart))
			buf.Reset()
			i++
			cellStart = i
			continue
		}
		buf.WriteByte(b)
		i++
	}
	cells = append(cells, finalizeTableCell(buf.String(), baseOffset+cellStart))

	if hadPipe && len(cells) > 1 {
		if cells[0].text == "" {
			cells = cells[1:]
		}
		if len(cells) > 0 && cells[len(cells)-1].text == "" {
			cells = cells[:len(cells)-1]
		}
	}
	return cells, hadPipe
}

func finalizeTableCell(text string, start int) tableCellRaw {
	leading := 0
	for leading < len(text) && isSpaceOrTab(text[leading]) {
		leading++
	}
	trailing := len(text)
	for trailing > leading && isSpaceOrTab(text[trailing-1]) {
		trailing--
	}
	return tableCellRaw{text: text[leading:trailing], start: start + leading}
}

// tableAlignRaw mirrors tmast.TableAlign without importing tmast here, kept
// as a local int so table.go has no AST dependency; table_block.go converts.
type tableAlignRaw int

const (
	alignNone tableAlignRaw = iota
	alignLeft
	alignCenter
	alignRight
)

// parseTableSeparator parses a GFM delimiter row ("|---|:--:|--:|") into
// one alignment per column, or ok=false if the row isn't a valid
// delimiter row.
func parseTableSeparator(text string, baseOffset int) (aligns []tableAlignRaw, ok bool) {
	cells, hadPipe := splitTableCells(text, baseOffset)
	if !hadPipe {
		return nil, false
	}
	for _, cell := range cells {
		trimmed := strings.TrimSpace(cell.text)
		if trimmed == "" {
			return nil, false
		}
		left := strings.HasPrefix(trimmed, ":")
		right := strings.HasSuffix(trimmed, ":")
		core := strings.Trim(trimmed, ":")
		if len(core) < 1 || strings.ContainsFunc(core, func(r rune) bool { return r != '-' }) {
			return nil, false
		}
		switch {
		case left && right:
			aligns = append(aligns, alignCenter)
		case left:
			aligns = append(aligns, alignLeft)
		case right:
			aligns = append(aligns, alignRight)
		default:
			aligns = append(aligns, alignNone)
		}
	}
	return aligns, true
}
