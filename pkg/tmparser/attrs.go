package tmparser

import (
	"strconv"
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// isLabelByte reports whether b is valid in a Label ([A-Za-z0-9_-]+).
func isLabelByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z')
}

func isAttrKeyByte(b byte) bool {
	return isLabelByte(b)
}

// parseAttrList parses the content between the braces of an attribute
// list (target line or code-fence info attrs): `item (WS item)*` where
// item is `#Name` or `key=value`. base is the byte offset of the first
// byte of content (relative to the source). Malformed items emit
// E_ATTR_SYNTAX at the item's span and are dropped; the grammar otherwise
// never aborts, matching spec.md §7's error policy. Returns nil if content
// is entirely whitespace (an empty, valid, attrs list).
//
// Grounded on original_source/typmark-core/src/parser.rs::parse_attr_list_text.
func parseAttrList(content []byte, base int, listSpan tmspan.Span, diags *tmdiag.Sink, m *tmspan.Map) *tmast.AttrList {
	out := &tmast.AttrList{Span: &listSpan}

	i := 0
	n := len(content)
	for i < n {
		for i < n && isASCIISpace(content[i]) {
			i++
		}
		if i >= n {
			break
		}
		itemStart := i

		if content[i] == '#' {
			j := i + 1
			for j < n && isLabelByte(content[j]) {
				j++
			}
			name := string(content[i+1 : j])
			itemSpan := tmspan.Span{Start: base + itemStart, End: base + j}
			if name == "" || (j < n && !isASCIISpace(content[j])) {
				diags.Add(m, tmdiag.ECodeAttrSyntax, itemSpan, "malformed #label in attribute list")
				i = skipToSpace(content, j)
				continue
			}
			if out.Label != nil {
				diags.Add(m, tmdiag.ECodeAttrSyntax, itemSpan, "duplicate #label in attribute list",
					tmdiag.Related(m, out.Label.Span, "first label here"))
				i = j
				continue
			}
			out.Label = &tmast.Label{Name: name, Span: itemSpan}
			i = j
			continue
		}

		// key=value, or a bare malformed token.
		j := i
		for j < n && isAttrKeyByte(content[j]) {
			j++
		}
		key := string(content[i:j])
		if key == "" || j >= n || content[j] != '=' {
			end := skipToSpace(content, i)
			itemSpan := tmspan.Span{Start: base + itemStart, End: base + end}
			diags.Add(m, tmdiag.ECodeAttrSyntax, itemSpan, "malformed attribute item, expected #label or key=value")
			i = end
			continue
		}
		valStart := j + 1
		var value tmast.AttrValue
		var end int
		if valStart < n && content[valStart] == '"' {
			k := valStart + 1
			var sb strings.Builder
			closed := false
			for k < n {
				if content[k] == '\\' && k+1 < n && (content[k+1] == '"' || content[k+1] == '\\') {
					sb.WriteByte(content[k+1])
					k += 2
					continue
				}
				if content[k] == '"' {
					closed = true
					k++
					break
				}
				sb.WriteByte(content[k])
				k++
			}
			if !closed {
				itemSpan := tmspan.Span{Start: base + itemStart, End: base + n}
				diags.Add(m, tmdiag.ECodeAttrSyntax, itemSpan, "unterminated quoted attribute value")
				i = n
				continue
			}
			value = tmast.AttrValue{Raw: sb.String(), Quoted: true, Span: tmspan.Span{Start: base + valStart, End: base + k}}
			end = k
		} else {
			end = skipToSpace(content, valStart)
			value = tmast.AttrValue{Raw: string(content[valStart:end]), Quoted: false, Span: tmspan.Span{Start: base + valStart, End: base + end}}
		}
		out.Items = append(out.Items, tmast.AttrItem{Key: key, Value: value})
		i = end
	}

	return out
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func skipToSpace(content []byte, from int) int {
	i := from
	for i < len(content) && !isASCIISpace(content[i]) {
		i++
	}
	return i
}

// isTargetLineText reports whether trimmed line content is exactly a
// brace-delimited attribute list with nothing else on the line.
func isTargetLineText(line []byte) (content []byte, base int, ok bool) {
	trimmed := strings.TrimSpace(string(line))
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return nil, 0, false
	}
	// offset of '{' within the original (untrimmed) line.
	leading := len(line) - len(strings.TrimLeft(string(line), " \t"))
	inner := trimmed[1 : len(trimmed)-1]
	return []byte(inner), leading + 1, true
}

var validBoxBorderStyles = map[string]bool{
	"solid": true, "dashed": true, "dotted": true, "double": true, "none": true,
}

// validateBoxStyles checks bg/title-bg/border-color/border-width/border-style
// values and emits W_BOX_STYLE_INVALID for each invalid one. Invalid items
// are left in place (renderer falls back to defaults); this function never
// removes items, per spec.md §6.
//
// Grounded on original_source/typmark-core/src/parser.rs::validate_box_styles.
func validateBoxStyles(attrs *tmast.AttrList, diags *tmdiag.Sink, m *tmspan.Map) {
	if attrs == nil {
		return
	}
	for _, item := range attrs.Items {
		switch item.Key {
		case "bg", "title-bg", "border-color":
			if !isHexColor(item.Value.Raw) {
				diags.Add(m, tmdiag.WCodeBoxStyleInvalid, item.Value.Span, "invalid color value: "+item.Value.Raw)
			}
		case "border-width":
			if !isBorderWidth(item.Value.Raw) {
				diags.Add(m, tmdiag.WCodeBoxStyleInvalid, item.Value.Span, "invalid border-width value: "+item.Value.Raw)
			}
		case "border-style":
			if !validBoxBorderStyles[item.Value.Raw] {
				diags.Add(m, tmdiag.WCodeBoxStyleInvalid, item.Value.Span, "invalid border-style value: "+item.Value.Raw)
			}
		}
	}
}

func isHexColor(s string) bool {
	if len(s) == 0 || s[0] != '#' {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	for _, c := range hex {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func isBorderWidth(s string) bool {
	s = strings.TrimSuffix(s, "px")
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
