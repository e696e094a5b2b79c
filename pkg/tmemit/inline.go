package tmemit

import (
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// renderContext controls how Link/Image/Ref nodes render: a real <a>/<img>
// in Normal or Title context, or a de-linked <span> wrapping their inner
// content when rendering a reference's own display text.
//
// Grounded on emit.rs::RenderContext.
type renderContext uint8

const (
	ctxNormal renderContext = iota
	ctxTitle
	ctxReferenceText
)

// renderInlinesWithContext renders a run of inline nodes to HTML.
//
// Grounded on emit.rs::render_inlines_with_context.
func renderInlinesWithContext(w *writer, nodes []*tmast.Node, ctx renderContext) string {
	var out strings.Builder
	for _, n := range nodes {
		renderInline(&out, w, n, ctx)
	}
	return out.String()
}

func renderInline(out *strings.Builder, w *writer, n *tmast.Node, ctx renderContext) {
	sp := spanAttr(n.Span, w.srcMap)
	switch n.Kind {
	case tmast.NodeText:
		writeWrapped(out, sp, "span", escapeText(n.Inline.Text))
	case tmast.NodeCodeSpan:
		if sp == "" {
			out.WriteString("<code>")
		} else {
			out.WriteString("<code" + sp + ">")
		}
		out.WriteString(escapeHTMLCode(n.Inline.Text))
		out.WriteString("</code>")
	case tmast.NodeMathInline:
		renderMathInline(out, w, n, sp)
	case tmast.NodeSoftBreak:
		out.WriteByte('\n')
	case tmast.NodeHardBreak:
		if sp == "" {
			out.WriteString("<br />\n")
		} else {
			out.WriteString("<br" + sp + " />\n")
		}
	case tmast.NodeRef:
		out.WriteString(renderRef(w, n, ctx))
	case tmast.NodeEmphasis:
		wrapTag(out, w, "em", sp, n.Children(), ctx)
	case tmast.NodeStrong:
		wrapTag(out, w, "strong", sp, n.Children(), ctx)
	case tmast.NodeStrikethrough:
		wrapTag(out, w, "del", sp, n.Children(), ctx)
	case tmast.NodeLink:
		renderLink(out, w, n, ctx, sp)
	case tmast.NodeAutolink:
		renderAutolink(out, w, n, ctx, sp)
	case tmast.NodeLinkRef:
		renderLinkRefLiteral(out, w, n, ctx, sp, false)
	case tmast.NodeImage:
		renderImage(out, w, n, ctx, sp)
	case tmast.NodeImageRef:
		renderLinkRefLiteral(out, w, n, ctx, sp, true)
	case tmast.NodeHTMLInline:
		if sp == "" {
			out.WriteString(n.Inline.Text)
		} else {
			out.WriteString("<span" + sp + ">" + n.Inline.Text + "</span>")
		}
	}
}

func writeWrapped(out *strings.Builder, sp, tag, content string) {
	if sp == "" {
		out.WriteString(content)
		return
	}
	out.WriteString("<" + tag + sp + ">")
	out.WriteString(content)
	out.WriteString("</" + tag + ">")
}

// writeDelinked wraps content in a TypMark-delink span unconditionally: the
// class carries de-linking semantics, not just source-map attribution, so
// (unlike writeWrapped) it must render even when sp is empty.
func writeDelinked(out *strings.Builder, sp, content string) {
	out.WriteString("<span class=\"TypMark-delink\"" + sp + ">")
	out.WriteString(content)
	out.WriteString("</span>")
}

func wrapTag(out *strings.Builder, w *writer, tag, sp string, children []*tmast.Node, ctx renderContext) {
	out.WriteString("<" + tag + sp + ">")
	out.WriteString(renderInlinesWithContext(w, children, ctx))
	out.WriteString("</" + tag + ">")
}

func renderMathInline(out *strings.Builder, w *writer, n *tmast.Node, sp string) {
	svg, err := renderMathWithPrefix(w.opts.Math, n.Inline.MathSrc, false, MathSettings{}, &w.mathCounter)
	if err != nil {
		out.WriteString("<span class=\"TypMark-math-inline--error\"" + sp + ">")
		out.WriteString(escapeText(err.Error()))
		out.WriteString("</span>")
		return
	}
	out.WriteString("<span class=\"TypMark-math-inline\"" + sp + ">")
	out.WriteString("<span class=\"TypMark-math-inline-strut\" aria-hidden=\"true\"></span>")
	out.WriteString(svg)
	out.WriteString("</span>")
}

func renderLink(out *strings.Builder, w *writer, n *tmast.Node, ctx renderContext, sp string) {
	la := n.Inline.Link
	switch ctx {
	case ctxNormal, ctxTitle:
		out.WriteString("<a href=\"" + escapeURLAttr(la.URL) + "\"")
		if la.Title != nil {
			out.WriteString(" title=\"" + escapeAttr(*la.Title) + "\"")
		}
		out.WriteString(sp + ">")
		out.WriteString(renderInlinesWithContext(w, n.Children(), ctx))
		out.WriteString("</a>")
	case ctxReferenceText:
		writeDelinked(out, sp, renderInlinesWithContext(w, n.Children(), ctxReferenceText))
	}
}

func renderAutolink(out *strings.Builder, w *writer, n *tmast.Node, ctx renderContext, sp string) {
	a := n.Inline.Autolink
	display := autolinkDisplayText(a, n.Span)
	switch ctx {
	case ctxNormal, ctxTitle:
		out.WriteString("<a href=\"" + escapeURLAttr(a.URL) + "\"" + sp + ">")
		out.WriteString(escapeText(display))
		out.WriteString("</a>")
	case ctxReferenceText:
		writeDelinked(out, sp, escapeText(display))
	}
}

// autolinkDisplayText recovers the literal text an autolink displays. For
// a bracketed autolink (<scheme:...>/<email>) and an http(s):// literal
// GFM autolink, URL is the exact matched text. For a "www." GFM literal
// and an email autolink, URL carries a scheme/mailto: prefix the source
// text never had; in both cases the true display text is exactly as many
// trailing bytes of URL as the original match was long, since the parser
// only ever prepends a fixed prefix, never rewrites the tail.
//
// Grounded on emit.rs has no equivalent (the original folds autolinks
// into Link at parse time); this package's Go port keeps them as a
// distinct node kind, so display-text recovery lives here instead.
func autolinkDisplayText(a *tmast.AutolinkAttrs, span tmspan.Span) string {
	if a.Kind == tmast.AutolinkURI {
		return a.URL
	}
	matchedLen := span.End - span.Start
	if a.Kind == tmast.AutolinkEmail {
		matchedLen -= 2 // account for the "<" ">" the bracketed form strips from URL's source length
	}
	if matchedLen <= 0 || matchedLen > len(a.URL) {
		return a.URL
	}
	return a.URL[len(a.URL)-matchedLen:]
}

func renderLinkRefLiteral(out *strings.Builder, w *writer, n *tmast.Node, ctx renderContext, sp string, image bool) {
	lr := n.Inline.LinkRef
	opener := "["
	if image {
		opener = "!["
	}
	inner := opener + renderInlinesWithContext(w, n.Children(), ctx) + "]"
	if lr.Meta.LabelOpenSpan != nil {
		inner += "[" + escapeText(lr.Label) + "]"
	}
	writeWrapped(out, sp, "span", inner)
}

func renderImage(out *strings.Builder, w *writer, n *tmast.Node, ctx renderContext, sp string) {
	la := n.Inline.Link
	if ctx == ctxReferenceText {
		out.WriteString(renderInlinesWithContext(w, n.Children(), ctxReferenceText))
		return
	}
	out.WriteString("<img src=\"" + escapeURLAttr(la.URL) + "\" alt=\"" + escapeAttr(renderInlinesText(n.Children())) + "\"")
	if la.Title != nil {
		out.WriteString(" title=\"" + escapeAttr(*la.Title) + "\"")
	}
	out.WriteString(sp + " />")
}

// renderInlinesText projects a run of inlines down to plain text, used
// only for an <img alt="..."> attribute.
//
// Grounded on emit.rs::render_inlines_text.
func renderInlinesText(nodes []*tmast.Node) string {
	var out strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case tmast.NodeText, tmast.NodeCodeSpan:
			out.WriteString(n.Inline.Text)
		case tmast.NodeMathInline:
			out.WriteString(n.Inline.MathSrc)
		case tmast.NodeSoftBreak, tmast.NodeHardBreak:
			out.WriteByte('\n')
		case tmast.NodeRef:
			ref := n.Inline.Ref
			if ref.HasBracket {
				out.WriteString(renderInlinesText(n.Children()))
			} else {
				out.WriteString(ref.Label.Name)
			}
		case tmast.NodeAutolink:
			out.WriteString(autolinkDisplayText(n.Inline.Autolink, n.Span))
		case tmast.NodeEmphasis, tmast.NodeStrong, tmast.NodeStrikethrough, tmast.NodeLink, tmast.NodeLinkRef, tmast.NodeImage, tmast.NodeImageRef:
			out.WriteString(renderInlinesText(n.Children()))
		}
	}
	return out.String()
}
