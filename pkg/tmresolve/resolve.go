// Package tmresolve runs the post-parse semantic pass: it substitutes
// markdown link references against their definitions, builds the section
// tree, collects every labelable block and code-line label into a table,
// flags self-referencing titles, and binds each strict @Label reference to
// a target id.
//
// Grounded on original_source/typmark-core/src/resolver.rs::resolve. Per
// an explicit design decision recorded in DESIGN.md, ResolvedRef never
// carries precomputed display text: that depth-capped, cycle-guarded
// title walk is performed later, per occurrence, by pkg/tmemit.
package tmresolve

import (
	"strings"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmparser"
	"github.com/miko-misa/typmark/pkg/tmsection"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// LabelKind distinguishes what a labeled target actually is, which
// controls whether a bracket-less @Label reference is permitted.
type LabelKind uint8

const (
	// LabelTitle is a Section or titled Box: referencing it without a
	// bracket is allowed, using its title as the reference text.
	LabelTitle LabelKind = iota
	// LabelBlock is any other labeled block (paragraph, list item,
	// code block, table, ...): a bracket is required.
	LabelBlock
	// LabelCodeLine is an "N:label" entry from a code fence's hl=
	// attribute.
	LabelCodeLine
)

// LabelInfo is one entry in a LabelTable.
type LabelInfo struct {
	Span  tmspan.Span
	Kind  LabelKind
	Title []*tmast.Node
}

// LabelTable maps a label name to where it was declared, for pkg/tmemit
// to consult when rendering a resolved Ref's display text.
type LabelTable map[string]*LabelInfo

// Resolve runs the full post-parse pipeline over doc in place and returns
// the label table it built. source is the original document bytes, needed
// to reconstruct literal text when a markdown link reference fails to
// resolve.
func Resolve(doc *tmast.Node, source []byte, linkDefs map[string]tmparser.LinkDefinition, diags *tmdiag.Sink, srcMap *tmspan.Map) LabelTable {
	diags.SetPass(2)
	used := map[string]bool{}
	resolveLinkRefsInBlocks(doc.Children(), linkDefs, used, diags, srcMap, source)
	for label, def := range linkDefs {
		if !used[label] {
			diags.Add(srcMap, tmdiag.WCodeLinkDefUnused, def.Span, "unused link reference definition: "+label)
		}
	}

	sectioned := tmsection.Build(doc.Children())
	replaceChildren(doc, sectioned)

	labels := LabelTable{}
	collectLabels(doc.Children(), labels, diags, srcMap)
	checkSelfReferenceTitles(doc.Children(), diags, srcMap)
	resolveRefsInBlocks(doc.Children(), labels, diags, srcMap)
	return labels
}

func replaceChildren(parent *tmast.Node, children []*tmast.Node) {
	for _, c := range parent.Children() {
		tmast.RemoveChild(parent, c)
	}
	tmast.AppendChildren(parent, children)
}

func hasTitle(block *tmast.Node) bool {
	return block.Block != nil && block.Block.Box != nil && block.Block.Box.HasTitle
}

// sectionBody returns a Section's children after its synthetic title
// heading (its first child).
func sectionBody(block *tmast.Node) []*tmast.Node {
	children := block.Children()
	if len(children) > 0 {
		return children[1:]
	}
	return nil
}

// --- pass 1: markdown link reference resolution ---------------------------

// resolveLinkRefsInBlocks walks every block that can carry inline content
// or nested blocks, converting NodeLinkRef/NodeImageRef nodes into
// NodeLink/NodeImage or a reconstructed literal fallback.
//
// Grounded on original_source/typmark-core/src/resolver.rs::resolve_link_refs_in_blocks.
func resolveLinkRefsInBlocks(blocks []*tmast.Node, linkDefs map[string]tmparser.LinkDefinition, used map[string]bool, diags *tmdiag.Sink, srcMap *tmspan.Map, source []byte) {
	for _, block := range blocks {
		switch block.Kind {
		case tmast.NodeParagraph, tmast.NodeHeading:
			resolveLinkRefsInline(block, linkDefs, used, diags, srcMap, source)
		case tmast.NodeSection:
			if title := block.FirstChild; title != nil {
				resolveLinkRefsInline(title, linkDefs, used, diags, srcMap, source)
			}
			resolveLinkRefsInBlocks(sectionBody(block), linkDefs, used, diags, srcMap, source)
		case tmast.NodeBlockquote:
			resolveLinkRefsInBlocks(block.Children(), linkDefs, used, diags, srcMap, source)
		case tmast.NodeList:
			for item := block.FirstChild; item != nil; item = item.Next {
				resolveLinkRefsInBlocks(item.Children(), linkDefs, used, diags, srcMap, source)
			}
		case tmast.NodeBox:
			children := block.Children()
			if hasTitle(block) && len(children) > 0 {
				resolveLinkRefsInline(children[0], linkDefs, used, diags, srcMap, source)
				resolveLinkRefsInBlocks(children[1:], linkDefs, used, diags, srcMap, source)
			} else {
				resolveLinkRefsInBlocks(children, linkDefs, used, diags, srcMap, source)
			}
		case tmast.NodeTable, tmast.NodeTableRow:
			resolveLinkRefsInBlocks(block.Children(), linkDefs, used, diags, srcMap, source)
		case tmast.NodeTableCell:
			resolveLinkRefsInline(block, linkDefs, used, diags, srcMap, source)
		}
	}
}

// resolveLinkRefsInline walks parent's children in place, converting or
// replacing any NodeLinkRef/NodeImageRef found, and recursing into any
// inline container (Emphasis/Strong/Strikethrough/Link/Image/Ref) that can
// itself hold nested references.
func resolveLinkRefsInline(parent *tmast.Node, linkDefs map[string]tmparser.LinkDefinition, used map[string]bool, diags *tmdiag.Sink, srcMap *tmspan.Map, source []byte) {
	child := parent.FirstChild
	for child != nil {
		next := child.Next
		switch child.Kind {
		case tmast.NodeLinkRef, tmast.NodeImageRef:
			resolveLinkRefsInline(child, linkDefs, used, diags, srcMap, source)
			lr := child.Inline.LinkRef
			if def, found := linkDefs[lr.Label]; found {
				used[lr.Label] = true
				kind := tmast.NodeLink
				if child.Kind == tmast.NodeImageRef {
					kind = tmast.NodeImage
				}
				child.Kind = kind
				child.Inline = &tmast.InlineAttrs{Link: &tmast.LinkAttrs{URL: def.URL, Title: def.Title}}
			} else {
				diags.Add(srcMap, tmdiag.WCodeLinkRefMissing, child.Span, "no link reference definition for: "+lr.Label)
				replacement := buildLinkRefFallback(lr.Meta, child.Children(), child.Kind == tmast.NodeImageRef, source)
				spliceReplace(parent, child, replacement)
			}
		case tmast.NodeRef:
			if child.Inline.Ref.HasBracket {
				resolveLinkRefsInline(child, linkDefs, used, diags, srcMap, source)
			}
		case tmast.NodeEmphasis, tmast.NodeStrong, tmast.NodeStrikethrough, tmast.NodeLink, tmast.NodeImage:
			resolveLinkRefsInline(child, linkDefs, used, diags, srcMap, source)
		}
		child = next
	}
}

// spliceReplace removes old from parent and inserts replacement in its
// place, preserving order.
func spliceReplace(parent, old *tmast.Node, replacement []*tmast.Node) {
	prev := old.Prev
	tmast.RemoveChild(parent, old)
	for _, n := range replacement {
		if prev == nil {
			tmast.PrependChild(parent, n)
		} else {
			tmast.InsertAfter(prev, n)
		}
		prev = n
	}
}

// buildLinkRefFallback reconstructs the literal source form of a failed
// reference: the opening bracket(s), its original (already-resolved)
// children, the closing bracket, and, if a second label bracket was
// present, that bracket's literal text too.
//
// Grounded on original_source/typmark-core/src/resolver.rs::build_link_ref_fallback.
func buildLinkRefFallback(meta tmast.LinkRefMeta, children []*tmast.Node, image bool, source []byte) []*tmast.Node {
	opener := "["
	if image {
		opener = "!["
	}
	out := []*tmast.Node{textNode(opener, meta.OpenerSpan)}
	out = append(out, children...)
	out = append(out, textNode("]", meta.CloserSpan))
	if meta.LabelOpenSpan != nil && meta.LabelCloseSpan != nil {
		out = append(out, textNode("[", *meta.LabelOpenSpan))
		if meta.LabelSpan != nil {
			labelText := unescapeBackslashPunct(string(source[meta.LabelSpan.Start:meta.LabelSpan.End]))
			out = append(out, textNode(labelText, *meta.LabelSpan))
		}
		out = append(out, textNode("]", *meta.LabelCloseSpan))
	}
	return out
}

func textNode(text string, span tmspan.Span) *tmast.Node {
	n := tmast.New(tmast.NodeText)
	n.Span = span
	n.Inline = &tmast.InlineAttrs{Text: text}
	return n
}

// unescapeBackslashPunct undoes a backslash escape in front of an ASCII
// punctuation byte, leaving everything else untouched. Distinct from
// entity decoding: this only concerns reconstructing a label's literal
// text for a failed-reference fallback.
//
// Grounded on original_source/typmark-core/src/label.rs::unescape_backslash_punct.
func unescapeBackslashPunct(text string) string {
	var sb strings.Builder
	i := 0
	for i < len(text) {
		if text[i] == '\\' && i+1 < len(text) && isASCIIPunctByte(text[i+1]) {
			sb.WriteByte(text[i+1])
			i += 2
			continue
		}
		sb.WriteByte(text[i])
		i++
	}
	return sb.String()
}

func isASCIIPunctByte(b byte) bool {
	return (b >= '!' && b <= '/') || (b >= ':' && b <= '@') || (b >= '[' && b <= '`') || (b >= '{' && b <= '~')
}

// --- pass 2 is tmsection.Build, run directly from Resolve ------------------

// --- pass 3: label collection -----------------------------------------------

// collectLabels walks the section-built tree recording every #Label
// target and every hl= code-line label into labels, reporting E_LABEL_DUP
// on a repeat name.
//
// Grounded on original_source/typmark-core/src/resolver.rs::collect_labels.
func collectLabels(blocks []*tmast.Node, labels LabelTable, diags *tmdiag.Sink, srcMap *tmspan.Map) {
	for _, block := range blocks {
		if block.Attrs != nil && block.Attrs.Label != nil {
			kind := LabelBlock
			var title []*tmast.Node
			if (block.Kind == tmast.NodeSection || (block.Kind == tmast.NodeBox && hasTitle(block))) && block.FirstChild != nil {
				kind = LabelTitle
				title = block.FirstChild.Children()
			}
			insertLabel(labels, block.Attrs.Label, kind, title, diags, srcMap)
		}
		if block.Kind == tmast.NodeCodeBlock && block.Block != nil && block.Block.CodeBlock != nil {
			for _, ll := range block.Block.CodeBlock.Meta.LineLabels {
				insertLabel(labels, &ll.Label, LabelCodeLine, nil, diags, srcMap)
			}
		}
		switch block.Kind {
		case tmast.NodeList:
			for item := block.FirstChild; item != nil; item = item.Next {
				collectLabels(item.Children(), labels, diags, srcMap)
			}
		case tmast.NodeBlockquote, tmast.NodeBox, tmast.NodeSection:
			collectLabels(block.Children(), labels, diags, srcMap)
		}
	}
}

func insertLabel(labels LabelTable, label *tmast.Label, kind LabelKind, title []*tmast.Node, diags *tmdiag.Sink, srcMap *tmspan.Map) {
	if existing, ok := labels[label.Name]; ok {
		diags.Add(srcMap, tmdiag.ECodeLabelDup, label.Span, "duplicate label: "+label.Name,
			tmdiag.Related(srcMap, existing.Span, "first defined here"))
		return
	}
	labels[label.Name] = &LabelInfo{Span: label.Span, Kind: kind, Title: title}
}

// --- pass 4: self-reference-in-title detection ------------------------------

// checkSelfReferenceTitles reports E_REF_SELF_TITLE for any Section or
// titled Box whose own title contains a @Label reference back to itself.
//
// Grounded on original_source/typmark-core/src/resolver.rs::check_self_reference_titles.
func checkSelfReferenceTitles(blocks []*tmast.Node, diags *tmdiag.Sink, srcMap *tmspan.Map) {
	for _, block := range blocks {
		titled := block.Kind == tmast.NodeSection || (block.Kind == tmast.NodeBox && hasTitle(block))
		if titled && block.Attrs != nil && block.Attrs.Label != nil && block.FirstChild != nil {
			if span, found := findSelfRef(block.FirstChild.Children(), block.Attrs.Label.Name); found {
				diags.Add(srcMap, tmdiag.ECodeRefSelfTitle, span, "title references its own label: "+block.Attrs.Label.Name)
			}
		}
		switch block.Kind {
		case tmast.NodeList:
			for item := block.FirstChild; item != nil; item = item.Next {
				checkSelfReferenceTitles(item.Children(), diags, srcMap)
			}
		case tmast.NodeBlockquote, tmast.NodeBox, tmast.NodeSection:
			checkSelfReferenceTitles(block.Children(), diags, srcMap)
		}
	}
}

func findSelfRef(inlines []*tmast.Node, label string) (tmspan.Span, bool) {
	for _, n := range inlines {
		switch n.Kind {
		case tmast.NodeRef:
			if n.Inline.Ref.Label.Name == label {
				return n.Span, true
			}
			if n.Inline.Ref.HasBracket {
				if span, found := findSelfRef(n.Children(), label); found {
					return span, true
				}
			}
		case tmast.NodeEmphasis, tmast.NodeStrong, tmast.NodeStrikethrough, tmast.NodeLink, tmast.NodeImage:
			if span, found := findSelfRef(n.Children(), label); found {
				return span, true
			}
		}
	}
	return tmspan.Span{}, false
}

// --- pass 5: reference binding ----------------------------------------------

// resolveRefsInBlocks walks every inline-bearing block, binding each
// @Label reference it finds to a target id.
//
// Grounded on original_source/typmark-core/src/resolver.rs::resolve_refs.
func resolveRefsInBlocks(blocks []*tmast.Node, labels LabelTable, diags *tmdiag.Sink, srcMap *tmspan.Map) {
	for _, block := range blocks {
		switch block.Kind {
		case tmast.NodeParagraph, tmast.NodeHeading:
			resolveRefsInline(block.Children(), labels, diags, srcMap)
		case tmast.NodeSection:
			if block.FirstChild != nil {
				resolveRefsInline(block.FirstChild.Children(), labels, diags, srcMap)
			}
			resolveRefsInBlocks(sectionBody(block), labels, diags, srcMap)
		case tmast.NodeBlockquote:
			resolveRefsInBlocks(block.Children(), labels, diags, srcMap)
		case tmast.NodeList:
			for item := block.FirstChild; item != nil; item = item.Next {
				resolveRefsInBlocks(item.Children(), labels, diags, srcMap)
			}
		case tmast.NodeBox:
			children := block.Children()
			if hasTitle(block) && len(children) > 0 {
				resolveRefsInline(children[0].Children(), labels, diags, srcMap)
				resolveRefsInBlocks(children[1:], labels, diags, srcMap)
			} else {
				resolveRefsInBlocks(children, labels, diags, srcMap)
			}
		case tmast.NodeTable, tmast.NodeTableRow:
			resolveRefsInBlocks(block.Children(), labels, diags, srcMap)
		case tmast.NodeTableCell:
			resolveRefsInline(block.Children(), labels, diags, srcMap)
		}
	}
}

// resolveRefsInline binds every NodeRef found in nodes (recursively) to a
// target id, reporting W_REF_MISSING for an unknown label and E_REF_OMIT
// for a bracket-less reference to a non-title label. It deliberately does
// not compute display text; see the package doc comment.
func resolveRefsInline(nodes []*tmast.Node, labels LabelTable, diags *tmdiag.Sink, srcMap *tmspan.Map) {
	for _, n := range nodes {
		switch n.Kind {
		case tmast.NodeRef:
			ref := n.Inline.Ref
			info, found := labels[ref.Label.Name]
			if !found {
				diags.Add(srcMap, tmdiag.WCodeRefMissing, n.Span, "reference target not found: "+ref.Label.Name)
				continue
			}
			if !ref.HasBracket && info.Kind != LabelTitle {
				diags.Add(srcMap, tmdiag.ECodeRefOmit, n.Span, "reference to a non-title label must supply display text: "+ref.Label.Name)
				continue
			}
			resolvedKind := tmast.ResolvedBlock
			if info.Kind == LabelCodeLine {
				resolvedKind = tmast.ResolvedCodeLine
			}
			ref.Resolved = &tmast.ResolvedRef{Kind: resolvedKind, TargetID: ref.Label.Name}
			if ref.HasBracket {
				resolveRefsInline(n.Children(), labels, diags, srcMap)
			} else if info.Kind == LabelTitle {
				if refDisplayDepthExceeded(ref.Label.Name, labels, map[string]bool{}, 0) {
					diags.Add(srcMap, tmdiag.ECodeRefDepth, n.Span, "reference display text depth exceeded: "+ref.Label.Name)
				}
			}
		case tmast.NodeEmphasis, tmast.NodeStrong, tmast.NodeStrikethrough, tmast.NodeLink, tmast.NodeImage:
			resolveRefsInline(n.Children(), labels, diags, srcMap)
		}
	}
}

// refDisplayDepthExceeded mirrors build_reference_text_inner/
// build_reference_text_from_inlines's recursion shape, but only reports
// whether the walk would hit the depth cap or a cycle: the actual display
// text is built fresh by pkg/tmemit, per the package doc comment, so this
// pass only needs the diagnostic-worthy boolean, not the rendered result.
func refDisplayDepthExceeded(label string, labels LabelTable, visited map[string]bool, depth int) bool {
	if depth > 100 {
		return true
	}
	if visited[label] {
		return true
	}
	info, ok := labels[label]
	if !ok || info.Title == nil {
		return false
	}
	visited[label] = true
	exceeded := inlinesDisplayDepthExceeded(info.Title, labels, visited, depth+1)
	delete(visited, label)
	return exceeded
}

func inlinesDisplayDepthExceeded(nodes []*tmast.Node, labels LabelTable, visited map[string]bool, depth int) bool {
	for _, n := range nodes {
		switch n.Kind {
		case tmast.NodeEmphasis, tmast.NodeStrong, tmast.NodeStrikethrough, tmast.NodeLink, tmast.NodeLinkRef,
			tmast.NodeImage, tmast.NodeImageRef:
			if inlinesDisplayDepthExceeded(n.Children(), labels, visited, depth) {
				return true
			}
		case tmast.NodeRef:
			ref := n.Inline.Ref
			if ref.HasBracket {
				if inlinesDisplayDepthExceeded(n.Children(), labels, visited, depth) {
					return true
				}
			} else if refDisplayDepthExceeded(ref.Label.Name, labels, visited, depth+1) {
				return true
			}
		}
	}
	return false
}
