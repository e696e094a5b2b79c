package tmemit

import (
	"strconv"
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
)

// emitCodeBlock dispatches to one of three renderings: a plain
// <pre><code> (Options.SimpleCodeBlocks, or any indented block regardless
// of that flag), or the full TypMark <figure> line-wrapper for every other
// fenced block, with or without metadata.
//
// Grounded on emit.rs::emit_code_block.
func emitCodeBlock(w *writer, n *tmast.Node) {
	cb := n.Block.CodeBlock
	attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
	attrs += dataAttrs(infoItems(cb))

	lang := cb.Lang
	if lang == "" && cb.Kind == tmast.CodeBlockFenced && w.opts.DetectLang != nil {
		lang = w.opts.DetectLang([]byte(cb.Text))
	}

	if w.opts.SimpleCodeBlocks {
		emitSimpleCodeBlock(w, attrs, lang, cb.Text)
		return
	}
	if cb.Kind == tmast.CodeBlockIndented {
		emitIndentedCodeBlock(w, attrs, cb.Text)
		return
	}
	emitLineWrappedCodeBlock(w, attrs, lang, cb.Meta, cb.Text)
}

func infoItems(cb *tmast.CodeBlockAttrs) []tmast.AttrItem {
	if cb.InfoAttrs == nil {
		return nil
	}
	return cb.InfoAttrs.Items
}

func emitSimpleCodeBlock(w *writer, attrs, lang, text string) {
	escaped := escapeHTMLCode(text)
	langClass := ""
	if lang != "" {
		langClass = " class=\"language-" + escapeAttr(lang) + "\""
	}
	w.out.WriteString("<pre" + attrs + "><code" + langClass + ">")
	w.out.WriteString(escaped)
	if escaped != "" && !strings.HasSuffix(escaped, "\n") {
		w.out.WriteByte('\n')
	}
	w.out.WriteString("</code></pre>\n")
}

func emitIndentedCodeBlock(w *writer, attrs, text string) {
	escaped := escapeHTMLCode(text)
	w.out.WriteString("<pre" + attrs + "><code>")
	w.out.WriteString(escaped)
	if escaped != "" && !strings.HasSuffix(escaped, "\n") {
		w.out.WriteByte('\n')
	}
	w.out.WriteString("</code></pre>\n")
}

func emitLineWrappedCodeBlock(w *writer, attrs, lang string, meta tmast.CodeMeta, text string) {
	langAttr := ""
	codeClass := "language-"
	if lang != "" {
		langAttr = " data-lang=\"" + escapeAttr(lang) + "\""
		codeClass = "language-" + escapeAttr(lang)
	}
	w.line("<figure class=\"TypMark-codeblock\" data-typmark=\"codeblock\"" + attrs + langAttr + ">")
	w.indent++
	w.out.WriteString(strings.Repeat("  ", w.indent))
	w.out.WriteString("<pre class=\"TypMark-pre\"><code class=\"" + codeClass + "\">")

	lines := splitLinesPreserve(text)
	displayLineNo := uint32(1)
	for idx, lineText := range lines {
		lineNo := uint32(idx + 1)
		highlighted := lineInRanges(lineNo, meta.Hl)
		diff := ""
		switch {
		case lineInRanges(lineNo, meta.DiffAdd):
			diff = "add"
		case lineInRanges(lineNo, meta.DiffDel):
			diff = "del"
		}
		var lineLabel *tmast.LineLabel
		for i := range meta.LineLabels {
			if meta.LineLabels[i].Line == lineNo {
				lineLabel = &meta.LineLabels[i]
				break
			}
		}

		class := "line"
		if highlighted {
			class += " highlighted"
		}
		if diff != "" {
			class += " diff " + diff
		}
		lineAttrs := "class=\"" + class + "\""
		if diff != "del" {
			lineAttrs += " data-line=\"" + strconv.Itoa(int(displayLineNo)) + "\""
			displayLineNo++
		}
		if highlighted {
			lineAttrs += " data-highlighted-line"
		}
		if diff != "" {
			lineAttrs += " data-diff=\"" + diff + "\""
		}
		if lineLabel != nil {
			name := escapeAttr(lineLabel.Label.Name)
			lineAttrs += " id=\"" + name + "\" data-line-label=\"" + name + "\""
		}
		w.out.WriteString("<span " + lineAttrs + ">" + escapeHTMLCode(lineText) + "</span>")
	}

	w.out.WriteString("</code></pre>\n")
	w.indent--
	w.line("</figure>")
}

func lineInRanges(line uint32, ranges []tmast.LineRange) bool {
	for _, r := range ranges {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// splitLinesPreserve splits text on '\n', stripping a trailing '\r' from
// each line, preserving a final empty line the way the original's
// line-counting walk does (an empty string yields one empty line, not
// zero).
//
// Grounded on emit.rs::split_lines_preserve.
func splitLinesPreserve(text string) []string {
	if text == "" {
		return []string{""}
	}
	raw := strings.Split(text, "\n")
	for i, line := range raw {
		raw[i] = strings.TrimSuffix(line, "\r")
	}
	return raw
}
