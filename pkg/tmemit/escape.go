package tmemit

import (
	"strconv"
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// escapeText/escapeHTMLCode/escapeAttr escape exactly &, <, >, and " to
// their named entities, matching emit.rs's three (identical) escaping
// functions byte-for-byte. They stay separate, rather than collapsing to
// one name, for the same reason the original keeps them separate: each
// marks a distinct HTML context (text, code contents, attribute value)
// even though the implementation coincides today. goldmark/util's
// EscapeHTML also escapes a single quote, which would diverge from the
// spec-mandated four-character set, so it is not reused here.
func escapeText(s string) string { return escapeAmpLtGtQuot(s) }

func escapeHTMLCode(s string) string { return escapeAmpLtGtQuot(s) }

func escapeAttr(s string) string { return escapeAmpLtGtQuot(s) }

func escapeAmpLtGtQuot(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeURLAttr percent-encodes the bytes CommonMark considers unsafe in a
// bare URL attribute (space, backtick, backslash, quote, control bytes,
// and anything non-ASCII), then HTML-attribute-escapes the result.
//
// Grounded on emit.rs::escape_url_attr.
func escapeURLAttr(s string) string {
	var encoded strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == ' ':
			encoded.WriteString("%20")
		case b == '`':
			encoded.WriteString("%60")
		case b == '\\':
			encoded.WriteString("%5C")
		case b == '"':
			encoded.WriteString("%22")
		case b <= 0x1F || b >= 0x7F:
			encoded.WriteByte('%')
			hex := strconv.FormatUint(uint64(b), 16)
			if len(hex) < 2 {
				hex = "0" + hex
			}
			encoded.WriteString(strings.ToUpper(hex))
		default:
			encoded.WriteByte(b)
		}
	}
	return escapeAttr(encoded.String())
}

// dataAttrs renders every info-string/target-line attribute item as a
// " data-key=\"value\"" pair, in declaration order.
//
// Grounded on emit.rs::data_attrs.
func dataAttrs(items []tmast.AttrItem) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(" data-")
		b.WriteString(escapeAttr(item.Key))
		b.WriteString("=\"")
		b.WriteString(escapeAttr(item.Value.Raw))
		b.WriteString("\"")
	}
	return b.String()
}

// spanAttr renders a data-tm-range="L:C-L:C" attribute from m, or the
// empty string when no source map was requested.
//
// Grounded on emit.rs::span_attr.
func spanAttr(span tmspan.Span, m *tmspan.Map) string {
	if m == nil {
		return ""
	}
	r := m.Range(span)
	return " data-tm-range=\"" + strconv.Itoa(r.Start.Line) + ":" + strconv.Itoa(r.Start.Character) +
		"-" + strconv.Itoa(r.End.Line) + ":" + strconv.Itoa(r.End.Character) + "\""
}

// idAttr renders a block's id="..." attribute from its #Label, if any.
//
// Grounded on emit.rs::id_attr.
func idAttr(label *tmast.Label) string {
	if label == nil {
		return ""
	}
	return " id=\"" + escapeAttr(label.Name) + "\""
}

// composeBlockAttrsWithSpan renders the three attributes every ordinary
// block carries, in a fixed order: id, then data-tm-range, then the
// target line's own data-* items.
//
// Grounded on emit.rs::compose_block_attrs_with_span.
func composeBlockAttrsWithSpan(label *tmast.Label, items []tmast.AttrItem, span tmspan.Span, m *tmspan.Map) string {
	return idAttr(label) + spanAttr(span, m) + dataAttrs(items)
}
