// Package tmemit renders a resolved TypMark document tree to deterministic
// HTML: two-space indentation, LF newlines, and a fixed attribute order.
//
// Grounded on original_source/typmark-core/src/emit.rs.
package tmemit

// Options controls HTML emission. The zero value matches spec.md's
// documented defaults except for WrapSections, which the caller must set
// explicitly (see DefaultOptions).
type Options struct {
	// WrapSections, if true, wraps each Section in a <section> element
	// around its heading and body. If false, only the heading tag is
	// emitted, CommonMark-compatible.
	WrapSections bool

	// SimpleCodeBlocks, if true, renders every fenced code block as a
	// plain <pre><code>, ignoring hl=/diff=/label metadata. Indented
	// code blocks always render this way regardless of this flag.
	SimpleCodeBlocks bool

	// Math is consulted for every MathBlock/MathInline node. A nil Math
	// makes every math node render as a render-error span, since Typst
	// rendering is an external collaborator this package never
	// implements itself (see DESIGN.md).
	Math MathRenderer

	// DetectLang is consulted for a fenced code block with no declared
	// language, to fill in a best-effort data-lang/language-* class. A
	// nil DetectLang leaves such blocks language-less.
	DetectLang func(content []byte) string
}

// DefaultOptions returns the spec-documented defaults: sections wrapped,
// full line-wrapped code blocks, no math renderer, no language detection.
func DefaultOptions() Options {
	return Options{WrapSections: true}
}
