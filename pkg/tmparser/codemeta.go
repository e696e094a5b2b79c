package tmparser

import (
	"strconv"
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// parseCodeMeta extracts hl/diff_add/diff_del from a code fence's info
// attrs, validates them against totalLines, and reports conflicts.
//
// Grounded on original_source/typmark-core/src/parser.rs::parse_code_meta,
// parse_line_ranges, ranges_overlap, clamp_ranges.
func parseCodeMeta(attrs *tmast.AttrList, totalLines int, diags *tmdiag.Sink, m *tmspan.Map) tmast.CodeMeta {
	var meta tmast.CodeMeta
	if attrs == nil {
		return meta
	}

	for _, item := range attrs.Items {
		switch item.Key {
		case "hl":
			ranges, labels, syntaxErr := parseLineRanges(item.Value.Raw, true)
			meta.Hl = append(meta.Hl, ranges...)
			meta.LineLabels = append(meta.LineLabels, labels...)
			if syntaxErr {
				diags.Add(m, tmdiag.ECodeAttrSyntax, item.Value.Span, "malformed hl= line range")
			}
		case "diff_add":
			ranges, _, syntaxErr := parseLineRanges(item.Value.Raw, false)
			meta.DiffAdd = append(meta.DiffAdd, ranges...)
			if syntaxErr {
				diags.Add(m, tmdiag.ECodeAttrSyntax, item.Value.Span, "malformed diff_add= line range")
			}
		case "diff_del":
			ranges, _, syntaxErr := parseLineRanges(item.Value.Raw, false)
			meta.DiffDel = append(meta.DiffDel, ranges...)
			if syntaxErr {
				diags.Add(m, tmdiag.ECodeAttrSyntax, item.Value.Span, "malformed diff_del= line range")
			}
		}
	}

	if anyOverlap(meta.Hl, meta.DiffAdd) || anyOverlap(meta.Hl, meta.DiffDel) || anyOverlap(meta.DiffAdd, meta.DiffDel) {
		diags.Add(m, tmdiag.ECodeCodeConflict, *attrs.Span, "hl/diff_add/diff_del ranges overlap")
	}

	hl, hlDropped := clampRanges(meta.Hl, totalLines)
	add, addDropped := clampRanges(meta.DiffAdd, totalLines)
	del, delDropped := clampRanges(meta.DiffDel, totalLines)
	labels, labelsDropped := clampLabels(meta.LineLabels, totalLines)
	meta.Hl, meta.DiffAdd, meta.DiffDel, meta.LineLabels = hl, add, del, labels

	if hlDropped || addDropped || delDropped || labelsDropped {
		diags.Add(m, tmdiag.WCodeCodeRangeOOB, *attrs.Span, "code line range out of bounds; entry ignored")
	}

	return meta
}

// parseLineRanges parses a comma-separated list of "N", "N-M", or (when
// allowLabels) "N:label" entries. Zero line numbers or end<start ranges
// are syntax errors; out-of-range line numbers (relative to the code
// block's line count) are checked afterward by clampRanges/clampLabels.
func parseLineRanges(value string, allowLabels bool) (ranges []tmast.LineRange, labels []tmast.LineLabel, syntaxErr bool) {
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if allowLabels && strings.Contains(entry, ":") {
			parts := strings.SplitN(entry, ":", 2)
			n, err := strconv.Atoi(parts[0])
			if err != nil || n <= 0 {
				syntaxErr = true
				continue
			}
			label := parts[1]
			if !isValidLabelName(label) {
				syntaxErr = true
				continue
			}
			ranges = append(ranges, tmast.LineRange{Start: uint32(n), End: uint32(n)})
			labels = append(labels, tmast.LineLabel{Line: uint32(n), Label: tmast.Label{Name: label}})
			continue
		}
		if strings.Contains(entry, "-") {
			parts := strings.SplitN(entry, "-", 2)
			start, err1 := strconv.Atoi(parts[0])
			end, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil || start <= 0 || end < start {
				syntaxErr = true
				continue
			}
			ranges = append(ranges, tmast.LineRange{Start: uint32(start), End: uint32(end)})
			continue
		}
		n, err := strconv.Atoi(entry)
		if err != nil || n <= 0 {
			syntaxErr = true
			continue
		}
		ranges = append(ranges, tmast.LineRange{Start: uint32(n), End: uint32(n)})
	}
	return ranges, labels, syntaxErr
}

func isValidLabelName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isLabelByte(s[i]) {
			return false
		}
	}
	return true
}

func anyOverlap(a, b []tmast.LineRange) bool {
	for _, ra := range a {
		for _, rb := range b {
			if rangesOverlap(ra, rb) {
				return true
			}
		}
	}
	return false
}

func rangesOverlap(a, b tmast.LineRange) bool {
	return a.Start <= b.End && b.Start <= a.End
}

func clampRanges(ranges []tmast.LineRange, totalLines int) (out []tmast.LineRange, dropped bool) {
	out = ranges[:0:0]
	for _, r := range ranges {
		if r.Start > uint32(totalLines) {
			dropped = true
			continue
		}
		if r.End > uint32(totalLines) {
			r.End = uint32(totalLines)
			dropped = true
		}
		out = append(out, r)
	}
	return out, dropped
}

func clampLabels(labels []tmast.LineLabel, totalLines int) (out []tmast.LineLabel, dropped bool) {
	out = labels[:0:0]
	for _, l := range labels {
		if l.Line > uint32(totalLines) {
			dropped = true
			continue
		}
		out = append(out, l)
	}
	return out, dropped
}
