package tmemit

import (
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
)

// renderRef renders one strict @Label reference. Per Open Question
// decision 3 (see DESIGN.md), this is the one place display text for a
// bracket-less reference is computed: pkg/tmresolve never precomputes it,
// so every occurrence re-walks its target's title fresh, depth-capped and
// cycle-guarded exactly like the original's resolve-time computation.
//
// Grounded on emit.rs::render_ref.
func renderRef(w *writer, n *tmast.Node, ctx renderContext) string {
	ref := n.Inline.Ref
	sp := spanAttr(n.Span, w.srcMap)

	var display string
	switch {
	case ref.HasBracket:
		display = renderInlinesWithContext(w, n.Children(), ctxReferenceText)
	case ref.Resolved != nil && ref.Resolved.Kind == tmast.ResolvedBlock:
		display = buildReferenceText(w, ref.Label.Name)
	default:
		display = escapeText(ref.Label.Name)
	}

	resolved := ref.Resolved != nil
	switch ctx {
	case ctxNormal, ctxTitle:
		if resolved {
			return "<a class=\"TypMark-ref\"" + sp + " href=\"#" + escapeAttr(ref.Label.Name) + "\">" + display + "</a>"
		}
		return "<span class=\"TypMark-ref ref-unresolved\"" + sp + " data-ref-label=\"" + escapeAttr(ref.Label.Name) + "\">" + display + "</span>"
	default: // ctxReferenceText
		if resolved {
			return "<span class=\"TypMark-delink\"" + sp + ">" + display + "</span>"
		}
		return "<span class=\"TypMark-delink ref-unresolved\"" + sp + " data-ref-label=\"" + escapeAttr(ref.Label.Name) + "\">" + display + "</span>"
	}
}

// buildReferenceText renders label's target title as the reference text,
// depth-capped at 100 and cycle-guarded per label name, falling back to
// the label's own name at the cap or on a cycle.
//
// Grounded on resolver.rs::build_reference_text/build_reference_text_inner.
func buildReferenceText(w *writer, label string) string {
	return buildReferenceTextInner(w, label, map[string]bool{}, 0)
}

func buildReferenceTextInner(w *writer, label string, visited map[string]bool, depth int) string {
	if depth > 100 || visited[label] {
		return escapeText(label)
	}
	info, ok := w.labels[label]
	if !ok || info.Title == nil {
		return escapeText(label)
	}
	visited[label] = true
	text := buildReferenceTextFromInlines(w, info.Title, visited, depth+1)
	delete(visited, label)
	return text
}

// buildReferenceTextFromInlines renders a target's title the same way
// renderInlinesWithContext(w, nodes, ctxReferenceText) renders normal
// reference-text content — an anchor-bearing Link/Autolink and a Ref both
// de-link into a <span class="TypMark-delink">, matching the bracket
// path's own ctxReferenceText rendering (see renderLink/renderAutolink/
// renderRef) — with one deliberate difference: a bracket-less Ref inside
// the title recurses into its own target's title via buildReferenceTextInner
// sharing this call's visited set and depth, instead of going back through
// renderRef (which would start a fresh visited set and lose the cycle
// guard). Image/ImageRef/LinkRef keep rendering exactly as
// renderImage/renderLinkRefLiteral do in ctxReferenceText: no delink
// wrapper for an image's alt content, and a literal "[text]" for an
// unresolved link/image reference (there's no href to de-link).
func buildReferenceTextFromInlines(w *writer, nodes []*tmast.Node, visited map[string]bool, depth int) string {
	var out strings.Builder
	for _, n := range nodes {
		sp := spanAttr(n.Span, w.srcMap)
		switch n.Kind {
		case tmast.NodeText:
			writeWrapped(&out, sp, "span", escapeText(n.Inline.Text))
		case tmast.NodeCodeSpan:
			if sp == "" {
				out.WriteString("<code>")
			} else {
				out.WriteString("<code" + sp + ">")
			}
			out.WriteString(escapeHTMLCode(n.Inline.Text))
			out.WriteString("</code>")
		case tmast.NodeMathInline:
			renderMathInline(&out, w, n, sp)
		case tmast.NodeSoftBreak:
			out.WriteByte('\n')
		case tmast.NodeHardBreak:
			if sp == "" {
				out.WriteString("<br />\n")
			} else {
				out.WriteString("<br" + sp + " />\n")
			}
		case tmast.NodeEmphasis:
			wrapBuiltText(&out, w, "em", sp, n.Children(), visited, depth)
		case tmast.NodeStrong:
			wrapBuiltText(&out, w, "strong", sp, n.Children(), visited, depth)
		case tmast.NodeStrikethrough:
			wrapBuiltText(&out, w, "del", sp, n.Children(), visited, depth)
		case tmast.NodeLink:
			writeDelinked(&out, sp, buildReferenceTextFromInlines(w, n.Children(), visited, depth))
		case tmast.NodeLinkRef:
			out.WriteString(buildReferenceTextLiteralBracket(w, n, visited, depth, sp, false))
		case tmast.NodeAutolink:
			writeDelinked(&out, sp, escapeText(autolinkDisplayText(n.Inline.Autolink, n.Span)))
		case tmast.NodeImage:
			out.WriteString(buildReferenceTextFromInlines(w, n.Children(), visited, depth))
		case tmast.NodeImageRef:
			out.WriteString(buildReferenceTextLiteralBracket(w, n, visited, depth, sp, true))
		case tmast.NodeRef:
			ref := n.Inline.Ref
			var inner string
			if ref.HasBracket {
				inner = buildReferenceTextFromInlines(w, n.Children(), visited, depth)
			} else {
				inner = buildReferenceTextInner(w, ref.Label.Name, visited, depth+1)
			}
			writeDelinked(&out, sp, inner)
		case tmast.NodeHTMLInline:
			if sp == "" {
				out.WriteString(n.Inline.Text)
			} else {
				out.WriteString("<span" + sp + ">" + n.Inline.Text + "</span>")
			}
		}
	}
	return out.String()
}

// buildReferenceTextLiteralBracket mirrors renderLinkRefLiteral for an
// unresolved link/image reference found inside a title: a bare "[text]"
// (or "![text]" for an image) with no de-link wrapper, since there is no
// href on an unresolved reference to de-link.
func buildReferenceTextLiteralBracket(w *writer, n *tmast.Node, visited map[string]bool, depth int, sp string, image bool) string {
	lr := n.Inline.LinkRef
	opener := "["
	if image {
		opener = "!["
	}
	inner := opener + buildReferenceTextFromInlines(w, n.Children(), visited, depth) + "]"
	if lr.Meta.LabelOpenSpan != nil {
		inner += "[" + escapeText(lr.Label) + "]"
	}
	var out strings.Builder
	writeWrapped(&out, sp, "span", inner)
	return out.String()
}

func wrapBuiltText(out *strings.Builder, w *writer, tag, sp string, children []*tmast.Node, visited map[string]bool, depth int) {
	out.WriteString("<" + tag + sp + ">")
	out.WriteString(buildReferenceTextFromInlines(w, children, visited, depth))
	out.WriteString("</" + tag + ">")
}
