// Package typmark is TypMark's public entry point: it wires the pure
// parse/resolve/emit pipeline into the single `Parse` function described by
// spec.md §6.
//
// The pipeline runs as a fixed single-pass compiler with no pluggable-rule
// registry, exposed as a pure source-in/HTML-out function with no
// filesystem access.
package typmark

import (
	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmemit"
	"github.com/miko-misa/typmark/pkg/tmparser"
	"github.com/miko-misa/typmark/pkg/tmresolve"
	"github.com/miko-misa/typmark/pkg/tmspan"

	"github.com/miko-misa/typmark/pkg/langdetect"
)

// Theme is the renderer-wrapper hint carried through ParseOptions. It has
// no effect on the HTML this package emits; spec.md §6 scopes it to the
// surrounding renderer (CSS/JS asset selection), which is an external
// collaborator this package does not implement.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseOptions is the closed option set from spec.md §6. The zero value is
// valid but has section wrapping and GFM extensions off and an empty theme;
// DefaultParseOptions returns the documented defaults (sanitize/simple code
// blocks/source_map off, section-wrapping on, auto theme).
type ParseOptions struct {
	// Sanitize runs the emitted HTML through Sanitizer before returning it.
	// Default false, matching spec.md's documented default.
	Sanitize bool
	// SimpleCodeBlocks emits bare <pre><code> for fenced code blocks
	// instead of the line-wrapped <figure> form.
	SimpleCodeBlocks bool
	// WrapSections controls whether sections wrap their body in a
	// <section>, or leave headings and body as siblings. Default true.
	WrapSections bool
	// SourceMap, when true, adds a data-tm-range attribute to every block
	// element carrying its 0-based line/UTF-8-byte-column span.
	SourceMap bool
	// Theme is carried through to Result but never consulted by this
	// package; see Theme's doc comment.
	Theme Theme

	// Math, when non-nil, is invoked for every math span encountered.
	// A nil Math renders every math span as a render-error placeholder,
	// matching tmemit's safe default.
	Math tmemit.MathRenderer
	// Sanitizer overrides the sanitizer invoked when Sanitize is true.
	// A nil Sanitizer with Sanitize set leaves the HTML unchanged, since
	// spec.md treats sanitization as an external collaborator this
	// package does not implement an allowlist for (see DESIGN.md).
	Sanitizer tmemit.Sanitizer

	// GFMExtensions gates tables/task-lists/strikethrough/GFM autolink
	// literals behind one flag, per DESIGN.md's resolution of spec.md §9's
	// open question. Default true: zero-value ParseOptions would disable
	// GFM, so DefaultParseOptions sets this explicitly.
	GFMExtensions bool
}

// DefaultParseOptions returns spec.md §6's documented defaults.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		WrapSections:  true,
		Theme:         ThemeAuto,
		GFMExtensions: true,
	}
}

// Result is the outcome of a Parse call.
type Result struct {
	HTML        string
	Diagnostics []tmdiag.Diagnostic
}

// Parse runs the full pipeline: parse, build sections and resolve
// references, then emit HTML. It is a pure function: no I/O, no shared
// state across calls.
//
// Grounded on spec.md §6's Parse(source, ParseOptions) -> (html,
// diagnostics) signature and SPEC_FULL.md §6.
func Parse(source []byte, opts ParseOptions) Result {
	srcMap := tmspan.NewMap(source)
	diags := tmdiag.NewSink()

	parserOpts := tmparser.Options{GFMExtensions: opts.GFMExtensions}
	linkDefs := tmparser.Prepass(source)
	doc := tmparser.Parse(source, parserOpts, diags, srcMap, linkDefs)

	labels := tmresolve.Resolve(doc, source, linkDefs, diags, srcMap)

	emitOpts := tmemit.Options{
		WrapSections:     opts.WrapSections,
		SimpleCodeBlocks: opts.SimpleCodeBlocks,
		Math:             opts.Math,
		DetectLang:       langdetect.Detect,
	}
	var emitSrcMap *tmspan.Map
	if opts.SourceMap {
		emitSrcMap = srcMap
	}
	html := tmemit.Emit(doc, labels, emitSrcMap, emitOpts)

	if opts.Sanitize {
		html = sanitizeHTML(opts.Sanitizer, html)
	}

	return Result{HTML: html, Diagnostics: diags.Diagnostics()}
}

func sanitizeHTML(s tmemit.Sanitizer, html string) string {
	if s == nil {
		return html
	}
	return s.Sanitize(html)
}

// DocumentSettings returns the document-settings attribute line parsed
// onto the root node, or nil if the source had none. Exposed so callers
// that need the raw settings (e.g. a CLI choosing an output mode) don't
// have to re-walk the tree themselves.
func DocumentSettings(doc *tmast.Node) *tmast.AttrList {
	return doc.Attrs
}
