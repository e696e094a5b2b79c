package tmemit

import (
	"strconv"
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmresolve"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// writer accumulates deterministic HTML: two-space indentation, one line
// per call to line, LF newlines throughout.
//
// Grounded on emit.rs::HtmlWriter.
type writer struct {
	out         strings.Builder
	indent      int
	opts        Options
	mathCounter int
	srcMap      *tmspan.Map
	labels      tmresolve.LabelTable
}

func (w *writer) line(s string) {
	w.out.WriteString(strings.Repeat("  ", w.indent))
	w.out.WriteString(s)
	w.out.WriteByte('\n')
}

func (w *writer) finish() string {
	return strings.TrimSuffix(w.out.String(), "\n")
}

// Emit renders doc (already resolved by pkg/tmresolve) to HTML. labels is
// the label table Resolve returned, consulted by bracket-less @Label
// references for their display text. srcMap is optional: a nil srcMap
// omits every data-tm-range attribute.
func Emit(doc *tmast.Node, labels tmresolve.LabelTable, srcMap *tmspan.Map, opts Options) string {
	opts.Math = mathRendererOrDefault(opts.Math)
	w := &writer{opts: opts, srcMap: srcMap, labels: labels}
	for _, block := range doc.Children() {
		emitBlock(w, block)
	}
	return w.finish()
}

func blockItems(n *tmast.Node) []tmast.AttrItem {
	if n.Attrs == nil {
		return nil
	}
	return n.Attrs.Items
}

func emitBlock(w *writer, n *tmast.Node) {
	switch n.Kind {
	case tmast.NodeSection:
		emitSection(w, n, false)
	case tmast.NodeHeading:
		emitHeading(w, n)
	case tmast.NodeParagraph:
		emitParagraph(w, n, "")
	case tmast.NodeBlockquote:
		attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
		w.line("<blockquote" + attrs + ">")
		w.indent++
		for _, child := range n.Children() {
			emitBlock(w, child)
		}
		w.indent--
		w.line("</blockquote>")
	case tmast.NodeList:
		emitList(w, n)
	case tmast.NodeTable:
		attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
		emitTable(w, n, attrs)
	case tmast.NodeBox:
		emitBox(w, n)
	case tmast.NodeMathBlock:
		emitMathBlock(w, n)
	case tmast.NodeThematicBreak:
		attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
		w.line("<hr" + attrs + " />")
	case tmast.NodeCodeBlock:
		emitCodeBlock(w, n)
	case tmast.NodeHTMLBlock:
		attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
		raw := n.Block.RawText
		if attrs == "" {
			w.line(raw)
		} else {
			w.line("<div class=\"TypMark-html\" data-typmark=\"html\"" + attrs + ">")
			w.indent++
			w.line(raw)
			w.indent--
			w.line("</div>")
		}
	}
}

// emitBlockTight mirrors emit_block for the inside of a tight list item:
// a Paragraph renders on the current line with no trailing newline, and a
// Section recurses the same unwrapping into its body. It reports whether
// its own output already ended with a newline, so the caller knows
// whether to insert one before the next sibling.
func emitBlockTight(w *writer, n *tmast.Node) (ended bool) {
	switch n.Kind {
	case tmast.NodeParagraph:
		inline := renderInlinesWithContext(w, n.Children(), ctxNormal)
		w.out.WriteString(strings.Repeat("  ", w.indent))
		w.out.WriteString(inline)
		return false
	case tmast.NodeSection:
		return emitSection(w, n, true)
	default:
		emitBlock(w, n)
		return true
	}
}

// emitSection renders a Section; when tight is true it is being rendered
// inside a tight list item and recurses via emitBlockTight.
func emitSection(w *writer, n *tmast.Node, tight bool) (ended bool) {
	children := n.Children()
	var title *tmast.Node
	var body []*tmast.Node
	if len(children) > 0 {
		title, body = children[0], children[1:]
	}
	level := 1
	if n.Block != nil {
		level = n.Block.HeadingLevel
	}
	var titleInlines []*tmast.Node
	if title != nil {
		titleInlines = title.Children()
	}
	titleHTML := renderInlinesWithContext(w, titleInlines, ctxTitle)
	levelStr := strconv.Itoa(level)

	if w.opts.WrapSections {
		attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
		w.line("<section" + attrs + ">")
		w.indent++
		w.line("<h" + levelStr + ">" + titleHTML + "</h" + levelStr + ">")
		if tight {
			for idx, child := range body {
				e := emitBlockTight(w, child)
				if !e && idx+1 < len(body) {
					w.out.WriteByte('\n')
				}
			}
		} else {
			for _, child := range body {
				emitBlock(w, child)
			}
		}
		w.indent--
		w.line("</section>")
		return true
	}

	attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
	w.line("<h" + levelStr + attrs + ">" + titleHTML + "</h" + levelStr + ">")
	if !tight {
		for _, child := range body {
			emitBlock(w, child)
		}
		return true
	}
	lastEnded := true
	for idx, child := range body {
		e := emitBlockTight(w, child)
		if !e && idx+1 < len(body) {
			w.out.WriteByte('\n')
		}
		lastEnded = e
	}
	return lastEnded
}

func emitHeading(w *writer, n *tmast.Node) {
	level := 1
	if n.Block != nil {
		level = n.Block.HeadingLevel
	}
	levelStr := strconv.Itoa(level)
	attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
	titleHTML := renderInlinesWithContext(w, n.Children(), ctxTitle)
	w.line("<h" + levelStr + attrs + ">" + titleHTML + "</h" + levelStr + ">")
}

func emitParagraph(w *writer, n *tmast.Node, taskPrefix string) {
	attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
	inline := renderInlinesWithContext(w, n.Children(), ctxNormal)
	w.line("<p" + attrs + ">" + taskPrefix + inline + "</p>")
}

func taskInputHTML(checked bool) string {
	if checked {
		return "<input type=\"checkbox\" disabled=\"\" checked=\"\" /> "
	}
	return "<input type=\"checkbox\" disabled=\"\" /> "
}

func emitList(w *writer, n *tmast.Node) {
	la := n.Block.List
	tag := "ul"
	if la.Ordered {
		tag = "ol"
	}
	attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
	startAttr := ""
	if la.Ordered && la.Start != nil && *la.Start != 1 {
		startAttr = " start=\"" + strconv.Itoa(*la.Start) + "\""
	}
	items := n.Children()
	hasTasks := false
	for _, item := range items {
		if item.Block != nil && item.Block.ListItem != nil && item.Block.ListItem.Task != nil {
			hasTasks = true
			break
		}
	}
	listClass := ""
	if hasTasks {
		listClass = " class=\"task-list\""
	}
	w.line("<" + tag + attrs + startAttr + listClass + ">")
	w.indent++
	for _, item := range items {
		emitListItem(w, item, la.Tight)
	}
	w.indent--
	w.line("</" + tag + ">")
}

func emitListItem(w *writer, item *tmast.Node, tight bool) {
	var task *bool
	if item.Block != nil && item.Block.ListItem != nil {
		task = item.Block.ListItem.Task
	}
	var taskPrefix string
	hasTask := task != nil
	if hasTask {
		taskPrefix = taskInputHTML(*task)
	}
	taskClass := ""
	if hasTask {
		taskClass = " class=\"task-list-item\""
	}
	itemSpan := spanAttr(item.Span, w.srcMap)
	blocks := item.Children()

	if len(blocks) == 0 {
		w.line("<li" + taskClass + itemSpan + "></li>")
		return
	}

	if !tight {
		w.line("<li" + taskClass + itemSpan + ">")
		w.indent++
		for idx, child := range blocks {
			if idx == 0 && child.Kind == tmast.NodeParagraph && hasTask {
				emitParagraph(w, child, taskPrefix)
				continue
			}
			emitBlock(w, child)
		}
		w.indent--
		w.line("</li>")
		return
	}

	// Tight list: unwrap the first paragraph onto the <li> line itself.
	if blocks[0].Kind == tmast.NodeParagraph {
		inline := renderInlinesWithContext(w, blocks[0].Children(), ctxNormal)
		w.out.WriteString(strings.Repeat("  ", w.indent))
		w.out.WriteString("<li")
		w.out.WriteString(taskClass)
		w.out.WriteString(itemSpan)
		w.out.WriteByte('>')
		w.out.WriteString(taskPrefix)
		w.out.WriteString(inline)

		if len(blocks) > 1 {
			w.out.WriteByte('\n')
			w.indent++
			lastEnded := true
			rest := blocks[1:]
			for idx, child := range rest {
				e := emitBlockTight(w, child)
				if !e && idx+1 < len(rest) {
					w.out.WriteByte('\n')
				}
				lastEnded = e
			}
			w.indent--
			if lastEnded {
				w.line("</li>")
			} else {
				w.out.WriteString("</li>\n")
			}
		} else {
			w.out.WriteString("</li>\n")
		}
		return
	}

	w.line("<li" + taskClass + ">")
	w.indent++
	if hasTask {
		w.line(taskPrefix)
	}
	lastEnded := true
	for idx, child := range blocks {
		e := emitBlockTight(w, child)
		if !e && idx+1 < len(blocks) {
			w.out.WriteByte('\n')
		}
		lastEnded = e
	}
	w.indent--
	if lastEnded {
		w.line("</li>")
	} else {
		w.out.WriteString("</li>\n")
	}
}

func emitBox(w *writer, n *tmast.Node) {
	var b strings.Builder
	b.WriteString("class=\"TypMark-box\" data-typmark=\"box\"")
	b.WriteString(spanAttr(n.Span, w.srcMap))
	if label := n.Label(); label != nil {
		b.WriteString(" id=\"")
		b.WriteString(escapeAttr(label.Name))
		b.WriteString("\"")
	}
	for _, item := range blockItems(n) {
		b.WriteString(" data-")
		b.WriteString(escapeAttr(item.Key))
		b.WriteString("=\"")
		b.WriteString(escapeAttr(item.Value.Raw))
		b.WriteString("\"")
	}
	w.line("<div " + b.String() + ">")
	w.indent++

	children := n.Children()
	hasTitle := n.Block != nil && n.Block.Box != nil && n.Block.Box.HasTitle && len(children) > 0
	body := children
	if hasTitle {
		title := children[0]
		body = children[1:]
		titleHTML := renderInlinesWithContext(w, title.Children(), ctxTitle)
		w.line("<div class=\"TypMark-box-title\">" + titleHTML + "</div>")
	}
	w.line("<div class=\"TypMark-box-body\">")
	w.indent++
	for _, child := range body {
		emitBlock(w, child)
	}
	w.indent--
	w.line("</div>")
	w.indent--
	w.line("</div>")
}

func emitMathBlock(w *writer, n *tmast.Node) {
	attrs := composeBlockAttrsWithSpan(n.Label(), blockItems(n), n.Span, w.srcMap)
	src := n.Block.RawText
	svg, err := renderMathWithPrefix(w.opts.Math, src, true, MathSettings{}, &w.mathCounter)
	if err != nil {
		w.line("<div class=\"TypMark-math-block--error\"" + attrs + ">" + escapeText(err.Error()) + "</div>")
		return
	}
	w.line("<div class=\"TypMark-math-block\"" + attrs + ">" + svg + "</div>")
}

func emitTable(w *writer, n *tmast.Node, attrs string) {
	ta := n.Block.Table
	rows := n.Children()
	if len(rows) == 0 {
		return
	}
	header := rows[0]
	body := rows[1:]

	w.line("<table" + attrs + ">")
	w.indent++
	w.line("<thead>")
	w.indent++
	w.line("<tr>")
	w.indent++
	for idx, cell := range header.Children() {
		align := tableAlignAttr(ta, idx)
		inline := renderInlinesWithContext(w, cell.Children(), ctxNormal)
		w.line("<th" + align + ">" + inline + "</th>")
	}
	w.indent--
	w.line("</tr>")
	w.indent--
	w.line("</thead>")

	if len(body) > 0 {
		w.line("<tbody>")
		w.indent++
		for _, row := range body {
			w.line("<tr>")
			w.indent++
			for idx, cell := range row.Children() {
				align := tableAlignAttr(ta, idx)
				inline := renderInlinesWithContext(w, cell.Children(), ctxNormal)
				w.line("<td" + align + ">" + inline + "</td>")
			}
			w.indent--
			w.line("</tr>")
		}
		w.indent--
		w.line("</tbody>")
	}
	w.indent--
	w.line("</table>")
}

func tableAlignAttr(ta *tmast.TableAttrs, idx int) string {
	if ta == nil || idx >= len(ta.Aligns) {
		return ""
	}
	switch ta.Aligns[idx] {
	case tmast.TableAlignLeft:
		return " align=\"left\""
	case tmast.TableAlignCenter:
		return " align=\"center\""
	case tmast.TableAlignRight:
		return " align=\"right\""
	default:
		return ""
	}
}
