// Package tmsection turns a flat run of headings and content into a tree
// of NodeSection blocks, one post-parse pass applied to the document and
// recursively to every container that can hold block children.
package tmsection

import (
	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// Build groups a flat block sequence into sections: each NodeHeading
// absorbs every following block up to (not including) the next heading
// of the same or shallower level, recursing the same grouping into list
// items, blockquotes, boxes, and any section children produced along the
// way.
//
// Grounded on original_source/typmark-core/src/section.rs::build_sections.
func Build(blocks []*tmast.Node) []*tmast.Node {
	out := make([]*tmast.Node, 0, len(blocks))
	i := 0
	for i < len(blocks) {
		block := blocks[i]
		if block.Kind != tmast.NodeHeading {
			out = append(out, rewriteBlock(block))
			i++
			continue
		}

		level := block.Block.HeadingLevel
		i++
		var children []*tmast.Node
		for i < len(blocks) {
			if lvl, ok := headingLevel(blocks[i]); ok && lvl <= level {
				break
			}
			children = append(children, blocks[i])
			i++
		}
		children = Build(children)

		end := block.Span.End
		if len(children) > 0 {
			end = children[len(children)-1].Span.End
		}

		section := tmast.New(tmast.NodeSection)
		section.Span = tmspan.Span{Start: block.Span.Start, End: end}
		section.Attrs = block.Attrs
		block.Attrs = nil
		section.Block = &tmast.BlockAttrs{HeadingLevel: level}
		tmast.AppendChild(section, block)
		tmast.AppendChildren(section, children)
		out = append(out, section)
	}
	return out
}

// rewriteBlock recurses Build into every child-bearing block kind that is
// not itself a heading. Boxes carry an optional title as their first
// child (see tmast.BoxAttrs.HasTitle) which must not itself be treated as
// a section heading, so it is excluded from the regrouped run and
// reattached first.
func rewriteBlock(block *tmast.Node) *tmast.Node {
	switch block.Kind {
	case tmast.NodeList:
		for item := block.FirstChild; item != nil; item = item.Next {
			rebuildChildren(item, Build(item.Children()))
		}
	case tmast.NodeBlockquote:
		rebuildChildren(block, Build(block.Children()))
	case tmast.NodeBox:
		children := block.Children()
		if block.Block != nil && block.Block.Box != nil && block.Block.Box.HasTitle && len(children) > 0 {
			title := children[0]
			rebuilt := Build(children[1:])
			rebuildChildren(block, append([]*tmast.Node{title}, rebuilt...))
		} else {
			rebuildChildren(block, Build(children))
		}
	case tmast.NodeSection:
		children := block.Children()
		if len(children) > 0 {
			title := children[0]
			rebuilt := Build(children[1:])
			rebuildChildren(block, append([]*tmast.Node{title}, rebuilt...))
		}
	}
	return block
}

func rebuildChildren(parent *tmast.Node, children []*tmast.Node) {
	for _, c := range parent.Children() {
		tmast.RemoveChild(parent, c)
	}
	tmast.AppendChildren(parent, children)
}

func headingLevel(block *tmast.Node) (int, bool) {
	if block.Kind != tmast.NodeHeading || block.Block == nil {
		return 0, false
	}
	return block.Block.HeadingLevel, true
}
