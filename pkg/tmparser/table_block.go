package tmparser

import (
	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// parseTable parses a GFM pipe table: a header row, a delimiter row, and
// zero or more body rows, stopping at the first blank or non-table line.
//
// Grounded on original_source/typmark-core/src/parser.rs::parse_table.
func (p *Parser) parseTable(lines []line, start int, parseInlines bool) (*tmast.Node, int, bool) {
	if start >= len(lines) {
		return nil, 0, false
	}
	headerLn := lines[start]
	headerOffset, headerText, ok := tableLineView(headerLn.text)
	if !ok {
		return nil, 0, false
	}
	headerCells, headerHadPipe := splitTableCells(headerText, headerOffset)
	if !headerHadPipe {
		return nil, 0, false
	}
	if start+1 >= len(lines) {
		return nil, 0, false
	}
	sepLn := lines[start+1]
	sepOffset, sepText, ok := tableLineView(sepLn.text)
	if !ok {
		return nil, 0, false
	}
	aligns, ok := parseTableSeparator(sepText, sepOffset)
	if !ok || len(aligns) == 0 {
		return nil, 0, false
	}

	headers := parseTableCellsInline(p, headerLn.start, headerCells, len(aligns), parseInlines)

	var rows [][]*tmast.Node
	i := start + 2
	for i < len(lines) {
		rowLn := lines[i]
		if rowLn.isBlank() {
			break
		}
		rowOffset, rowText, ok := tableLineView(rowLn.text)
		if !ok {
			break
		}
		rowCells, rowHadPipe := splitTableCells(rowText, rowOffset)
		if !rowHadPipe {
			break
		}
		rows = append(rows, parseTableCellsInline(p, rowLn.start, rowCells, len(aligns), parseInlines))
		i++
	}

	tmAligns := make([]tmast.TableAlign, len(aligns))
	for idx, a := range aligns {
		switch a {
		case alignLeft:
			tmAligns[idx] = tmast.TableAlignLeft
		case alignCenter:
			tmAligns[idx] = tmast.TableAlignCenter
		case alignRight:
			tmAligns[idx] = tmast.TableAlignRight
		default:
			tmAligns[idx] = tmast.TableAlignNone
		}
	}

	node := tmast.New(tmast.NodeTable)
	node.Span = tmspan.Span{Start: headerLn.start, End: lines[i-1].end}
	node.Block = &tmast.BlockAttrs{Table: &tmast.TableAttrs{Aligns: tmAligns}}
	tmast.AppendChild(node, makeTableRow(headerLn.start, headers, true))
	for idx, row := range rows {
		tmast.AppendChild(node, makeTableRow(lines[start+2+idx].start, row, false))
	}
	return node, i, true
}

func makeTableRow(start int, cells []*tmast.Node, header bool) *tmast.Node {
	row := tmast.New(tmast.NodeTableRow)
	row.Block = &tmast.BlockAttrs{TableRow: &tmast.TableRowAttrs{Header: header}}
	for _, cell := range cells {
		tmast.AppendChild(row, cell)
	}
	return row
}

func parseTableCellsInline(p *Parser, lineStart int, cells []tableCellRaw, expected int, parseInlines bool) []*tmast.Node {
	out := make([]*tmast.Node, 0, expected)
	for idx := 0; idx < expected; idx++ {
		cell := tmast.New(tmast.NodeTableCell)
		if idx < len(cells) {
			c := cells[idx]
			cell.Span = tmspan.Span{Start: lineStart + c.start, End: lineStart + c.start + len(c.text)}
			if parseInlines {
				tmast.AppendChildren(cell, p.parseInline(c.text, lineStart+c.start))
			}
		}
		out = append(out, cell)
	}
	return out
}
