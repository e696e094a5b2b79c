// Package tmast provides the TypMark document AST: a Node tree with a
// Kind tag and typed attribute side-tables, following the teacher's mdast
// package shape but carrying TypMark's own block/inline variants directly
// (target-line attrs, sections, boxes, math, strict references) instead of
// delegating to a separate parser-specific mapper.
package tmast

import "github.com/miko-misa/typmark/pkg/tmspan"

//go:generate stringer -type=NodeKind -trimprefix=Node

// NodeKind classifies the type of an AST node.
type NodeKind uint16

const (
	NodeDocument NodeKind = iota

	// Block-level kinds.
	NodeParagraph
	NodeHeading
	NodeSection
	NodeList
	NodeListItem
	NodeBlockquote
	NodeCodeBlock
	NodeBox
	NodeMathBlock
	NodeThematicBreak
	NodeHTMLBlock
	NodeTable
	NodeTableRow
	NodeTableCell

	// Inline-level kinds.
	NodeText
	NodeEmphasis
	NodeStrong
	NodeStrikethrough
	NodeCodeSpan
	NodeSoftBreak
	NodeHardBreak
	NodeLink
	NodeImage
	NodeLinkRef
	NodeImageRef
	NodeRef
	NodeMathInline
	NodeHTMLInline
	NodeAutolink
)

// Node represents a single node in the TypMark AST. Nodes form a tree via
// Parent/FirstChild/LastChild/Prev/Next pointers, exactly as in the
// teacher's mdast.Node.
type Node struct {
	Kind NodeKind

	Parent     *Node
	FirstChild *Node
	LastChild  *Node
	Prev       *Node
	Next       *Node

	// Span is the node's byte range in the original source.
	Span tmspan.Span

	// Attrs is the target-line-derived attribute list attached to this
	// block, if any (nil for inline nodes and for blocks with no target
	// line). Corresponds to the Rust original's Block.attrs.
	Attrs *AttrList

	// Block holds payload for block-level nodes.
	Block *BlockAttrs

	// Inline holds payload for inline-level nodes.
	Inline *InlineAttrs
}

// IsBlock reports whether this is a block-level node.
func (n *Node) IsBlock() bool {
	switch n.Kind {
	case NodeDocument, NodeParagraph, NodeHeading, NodeSection, NodeList, NodeListItem,
		NodeBlockquote, NodeCodeBlock, NodeBox, NodeMathBlock, NodeThematicBreak,
		NodeHTMLBlock, NodeTable, NodeTableRow, NodeTableCell:
		return true
	default:
		return false
	}
}

// IsInline reports whether this is an inline-level node.
func (n *Node) IsInline() bool {
	return !n.IsBlock()
}

// HasChildren reports whether this node has any children.
func (n *Node) HasChildren() bool {
	return n.FirstChild != nil
}

// Children returns a slice of all direct children.
func (n *Node) Children() []*Node {
	var children []*Node
	for child := n.FirstChild; child != nil; child = child.Next {
		children = append(children, child)
	}
	return children
}

// Label returns the node's attached label, if any.
func (n *Node) Label() *Label {
	if n.Attrs == nil {
		return nil
	}
	return n.Attrs.Label
}
