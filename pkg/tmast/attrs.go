package tmast

import "github.com/miko-misa/typmark/pkg/tmspan"

// Label is a case-sensitive identifier matching [A-Za-z0-9_-]+, unique
// within a document across all labelable blocks and code-line labels.
type Label struct {
	Name string
	Span tmspan.Span
}

// AttrValue is a single attribute value, either bare (no whitespace) or
// double-quoted.
type AttrValue struct {
	Raw    string
	Span   tmspan.Span
	Quoted bool
}

// AttrItem is one key=value pair within an AttrList.
type AttrItem struct {
	Key   string
	Value AttrValue
}

// AttrList is an ordered collection of key/value pairs plus at most one
// #Label, parsed from a target line or a code-fence info string.
type AttrList struct {
	Span  *tmspan.Span
	Label *Label
	Items []AttrItem
}

// Get returns the raw value of the first item with the given key, if any.
func (a *AttrList) Get(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	for _, item := range a.Items {
		if item.Key == key {
			return item.Value.Raw, true
		}
	}
	return "", false
}

// BlockAttrs holds kind-specific payload for block-level nodes. Exactly
// one of the pointer fields is populated, selected by Node.Kind, mirroring
// the teacher's BlockAttrs/CodeBlockAttrs split (extended here with
// TypMark's own block variants).
type BlockAttrs struct {
	// HeadingLevel is 1-6, used by NodeHeading (and copied onto the
	// synthetic heading child of NodeSection).
	HeadingLevel int

	List      *ListAttrs
	ListItem  *ListItemAttrs
	CodeBlock *CodeBlockAttrs
	Box       *BoxAttrs
	Table     *TableAttrs
	TableRow  *TableRowAttrs

	// RawText holds the literal source text for kinds whose content is
	// not further parsed into inlines: MathBlock (Typst source) and
	// HTMLBlock (raw HTML).
	RawText string
}

// ListAttrs holds List-specific attributes.
type ListAttrs struct {
	Ordered bool
	Start   *int
	Tight   bool
}

// ListItemAttrs holds ListItem-specific attributes.
type ListItemAttrs struct {
	// Task is nil for a non-task item, or points to the checked state.
	Task *bool
}

// CodeBlockKind distinguishes fenced from indented code blocks.
type CodeBlockKind uint8

const (
	CodeBlockFenced CodeBlockKind = iota
	CodeBlockIndented
)

// CodeBlockAttrs holds CodeBlock-specific attributes.
type CodeBlockAttrs struct {
	Kind      CodeBlockKind
	Lang      string
	InfoAttrs *AttrList
	Meta      CodeMeta
	Text      string
}

// LineRange is an inclusive 1-based line range.
type LineRange struct {
	Start uint32
	End   uint32
}

// Contains reports whether the 1-based line number lies in the range.
func (r LineRange) Contains(line uint32) bool {
	return line >= r.Start && line <= r.End
}

// LineLabel associates a single 1-based line number with a label, from an
// "N:label" entry in an hl= attribute.
type LineLabel struct {
	Line  uint32
	Label Label
}

// CodeMeta is code-block line-level metadata. Invariants (enforced by the
// parser, which emits E_CODE_CONFLICT/W_CODE_RANGE_OOB and then repairs
// the data before it reaches here): Hl does not overlap DiffAdd/DiffDel;
// DiffAdd does not overlap DiffDel; all line numbers are in range.
type CodeMeta struct {
	Hl         []LineRange
	DiffAdd    []LineRange
	DiffDel    []LineRange
	LineLabels []LineLabel
}

// BoxAttrs holds Box-specific attributes. The box's title, if any, is
// represented by a synthetic NodeHeading-shaped first child (built by the
// box parser in pkg/tmparser/block.go) rather than a duplicate field,
// exactly as a Section's title is its first child.
type BoxAttrs struct {
	FenceLength int
	HasTitle    bool
}

// TableAlign is a column alignment.
type TableAlign uint8

const (
	TableAlignNone TableAlign = iota
	TableAlignLeft
	TableAlignCenter
	TableAlignRight
)

// TableAttrs holds Table-specific attributes.
type TableAttrs struct {
	Aligns []TableAlign
}

// TableRowAttrs holds TableRow-specific attributes.
type TableRowAttrs struct {
	Header bool
}

// InlineAttrs holds kind-specific payload for inline-level nodes.
type InlineAttrs struct {
	// Text holds literal text content for NodeText, NodeCodeSpan, and
	// NodeHTMLInline (raw markup).
	Text string

	Link     *LinkAttrs
	LinkRef  *LinkRefAttrs
	Ref      *RefAttrs
	Autolink *AutolinkAttrs

	// MathSrc holds the Typst source for NodeMathInline.
	MathSrc string
}

// LinkAttrs holds Link/Image-specific attributes. Children (for Link:
// link text; for Image: alt text) live as the node's ordinary children.
type LinkAttrs struct {
	URL   string
	Title *string
}

// LinkRefMeta records the exact spans of a reference-style link/image's
// bracket groups, needed to reproduce its original source form as literal
// text when it fails to resolve.
type LinkRefMeta struct {
	OpenerSpan     tmspan.Span
	CloserSpan     tmspan.Span
	LabelOpenSpan  *tmspan.Span
	LabelSpan      *tmspan.Span
	LabelCloseSpan *tmspan.Span
}

// LinkRefAttrs holds LinkRef/ImageRef-specific attributes.
type LinkRefAttrs struct {
	Label string
	Meta  LinkRefMeta
}

// ResolvedKind distinguishes what a Ref is bound to.
type ResolvedKind uint8

const (
	ResolvedBlock ResolvedKind = iota
	ResolvedCodeLine
)

// ResolvedRef is the outcome of resolving a Ref's label against the label
// table. It deliberately carries only a stable target identifier, never a
// precomputed display-text inline sequence: display text is generated at
// emission time (see pkg/tmemit), not during resolution.
type ResolvedRef struct {
	Kind     ResolvedKind
	TargetID string
}

// RefAttrs holds Ref-specific attributes. When HasBracket is true, the
// node's children are the parsed bracket inline sequence (possibly empty,
// for "@Label[]").
type RefAttrs struct {
	Label      Label
	HasBracket bool
	Resolved   *ResolvedRef
}

// AutolinkKind distinguishes autolink forms.
type AutolinkKind uint8

const (
	AutolinkURI AutolinkKind = iota
	AutolinkEmail
	AutolinkGFMLiteral
)

// AutolinkAttrs holds Autolink-specific attributes.
type AutolinkAttrs struct {
	URL  string
	Kind AutolinkKind
}
