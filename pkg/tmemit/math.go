package tmemit

import (
	"fmt"
	"strconv"
	"strings"
)

// MathSettings carries the Typst-side rendering knobs spec.md's target-line
// attribute mechanism can attach at the document level (math-inline-size,
// math-block-size, math-font). TypMark never interprets these values
// itself; they are forwarded verbatim to the injected MathRenderer.
type MathSettings struct {
	InlineSize string
	BlockSize  string
	Font       string
}

// MathRenderer turns a Typst math source fragment into an SVG string. This
// is the Typst→SVG collaborator spec.md's Non-goals section names
// explicitly as "a pure function (typst_src, mode) -> svg_string |
// render_error" that this module does not implement: a real renderer is
// the caller's responsibility to inject.
type MathRenderer interface {
	Render(src string, display bool, settings MathSettings) (svg string, err error)
}

// noMathRenderer is the MathRenderer used when Options.Math is nil: every
// math node fails to render, which the emitter surfaces as the documented
// "--error" span/div rather than panicking or silently dropping the node.
type noMathRenderer struct{}

func (noMathRenderer) Render(src string, display bool, settings MathSettings) (string, error) {
	return "", fmt.Errorf("no math renderer configured")
}

func mathRendererOrDefault(r MathRenderer) MathRenderer {
	if r == nil {
		return noMathRenderer{}
	}
	return r
}

// renderMathWithPrefix renders math and namespaces every id="..." the SVG
// declares with a per-document counter, so that multiple math nodes on one
// page never collide on duplicate SVG element ids.
//
// Grounded on emit.rs::render_math_with_prefix.
func renderMathWithPrefix(r MathRenderer, src string, display bool, settings MathSettings, counter *int) (string, error) {
	*counter++
	prefix := "tm-m" + strconv.Itoa(*counter)
	svg, err := r.Render(src, display, settings)
	if err != nil {
		return "", err
	}
	return prefixSVGIDs(svg, prefix), nil
}

// prefixSVGIDs rewrites every id="X" to id="prefix-X" and every reference
// to it (href/xlink:href "#X") to match, so ids stay unique when multiple
// rendered math fragments are concatenated into one document.
//
// Grounded on original_source/typmark-core/src/math.rs::prefix_svg_ids
// (reimplemented here as a byte-scanning rewrite since this module has no
// XML parser dependency of its own).
func prefixSVGIDs(svg string, prefix string) string {
	ids := map[string]bool{}
	collectAttrValues(svg, `id="`, ids)

	var out strings.Builder
	i := 0
	for i < len(svg) {
		if rewritten, next, ok := rewriteIDAttr(svg, i, `id="`, prefix, ids); ok {
			out.WriteString(rewritten)
			i = next
			continue
		}
		if rewritten, next, ok := rewriteIDAttr(svg, i, `href="#`, prefix, ids); ok {
			out.WriteString(rewritten)
			i = next
			continue
		}
		if rewritten, next, ok := rewriteIDAttr(svg, i, `xlink:href="#`, prefix, ids); ok {
			out.WriteString(rewritten)
			i = next
			continue
		}
		out.WriteByte(svg[i])
		i++
	}
	return out.String()
}

func collectAttrValues(svg string, needle string, into map[string]bool) {
	i := 0
	for {
		idx := strings.Index(svg[i:], needle)
		if idx < 0 {
			return
		}
		start := i + idx + len(needle)
		end := strings.IndexByte(svg[start:], '"')
		if end < 0 {
			return
		}
		into[svg[start:start+end]] = true
		i = start + end
	}
}

func rewriteIDAttr(svg string, i int, needle string, prefix string, ids map[string]bool) (rewritten string, next int, ok bool) {
	if !strings.HasPrefix(svg[i:], needle) {
		return "", 0, false
	}
	start := i + len(needle)
	end := strings.IndexByte(svg[start:], '"')
	if end < 0 {
		return "", 0, false
	}
	value := svg[start : start+end]
	if !ids[value] {
		return "", 0, false
	}
	return needle + prefix + "-" + value + `"`, start + end + 1, true
}
