package tmemit

import (
	"testing"

	"github.com/miko-misa/typmark/pkg/tmast"
	"github.com/miko-misa/typmark/pkg/tmresolve"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

func TestEscapeText(t *testing.T) {
	t.Parallel()

	got := escapeText(`<a & b "c">`)
	want := `&lt;a &amp; b &quot;c&quot;&gt;`
	if got != want {
		t.Errorf("escapeText() = %q, want %q", got, want)
	}
}

func TestEscapeText_LeavesApostropheAlone(t *testing.T) {
	t.Parallel()

	// Unlike goldmark/util.EscapeHTML, this package's narrower 4-char
	// escape set must not touch apostrophes.
	got := escapeText(`it's`)
	if got != `it's` {
		t.Errorf("escapeText() = %q, want apostrophe untouched", got)
	}
}

func TestEscapeURLAttr_EncodesSpacesAndControlBytes(t *testing.T) {
	t.Parallel()

	got := escapeURLAttr("a b\tc")
	if got == "a b\tc" {
		t.Errorf("escapeURLAttr() did not percent-encode whitespace: %q", got)
	}
}

func TestAutolinkDisplayText_URI(t *testing.T) {
	t.Parallel()

	a := &tmast.AutolinkAttrs{URL: "https://example.com", Kind: tmast.AutolinkURI}
	got := autolinkDisplayText(a, tmspan.Span{Start: 0, End: 21})
	if got != "https://example.com" {
		t.Errorf("autolinkDisplayText() = %q, want the URL verbatim", got)
	}
}

func TestAutolinkDisplayText_Email(t *testing.T) {
	t.Parallel()

	// source text was "<a@b.com>": span covers the bracketed form,
	// 2 bytes longer than the bare "a@b.com" URL content.
	a := &tmast.AutolinkAttrs{URL: "mailto:a@b.com", Kind: tmast.AutolinkEmail}
	got := autolinkDisplayText(a, tmspan.Span{Start: 0, End: 9})
	if got != "a@b.com" {
		t.Errorf("autolinkDisplayText() = %q, want %q", got, "a@b.com")
	}
}

func TestAutolinkDisplayText_GFMLiteralWWW(t *testing.T) {
	t.Parallel()

	// source text was "www.example.com" (4 bytes shorter than the
	// "http://"-prefixed URL the parser stores).
	a := &tmast.AutolinkAttrs{URL: "http://www.example.com", Kind: tmast.AutolinkGFMLiteral}
	got := autolinkDisplayText(a, tmspan.Span{Start: 0, End: len("www.example.com")})
	if got != "www.example.com" {
		t.Errorf("autolinkDisplayText() = %q, want %q", got, "www.example.com")
	}
}

func TestAutolinkDisplayText_GFMLiteralHTTPVerbatim(t *testing.T) {
	t.Parallel()

	a := &tmast.AutolinkAttrs{URL: "http://example.com", Kind: tmast.AutolinkGFMLiteral}
	got := autolinkDisplayText(a, tmspan.Span{Start: 0, End: len("http://example.com")})
	if got != "http://example.com" {
		t.Errorf("autolinkDisplayText() = %q, want the URL verbatim", got)
	}
}

func TestSplitLinesPreserve(t *testing.T) {
	t.Parallel()

	got := splitLinesPreserve("a\r\nb\nc")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitLinesPreserve() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitLinesPreserve()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitLinesPreserve_Empty(t *testing.T) {
	t.Parallel()

	got := splitLinesPreserve("")
	if len(got) != 1 || got[0] != "" {
		t.Errorf("splitLinesPreserve(\"\") = %#v, want one empty line", got)
	}
}

func TestBuildReferenceText_CycleFallsBackToLabelName(t *testing.T) {
	t.Parallel()

	// A title whose only content is a bracket-less @Label pointing right
	// back at itself must not recurse forever.
	ref := tmast.New(tmast.NodeRef)
	ref.Inline = &tmast.InlineAttrs{Ref: &tmast.RefAttrs{Label: tmast.Label{Name: "self"}}}

	labels := tmresolve.LabelTable{
		"self": {Kind: tmresolve.LabelTitle, Title: []*tmast.Node{ref}},
	}
	w := &writer{labels: labels}

	got := buildReferenceText(w, "self")
	if got != `<span class="TypMark-delink">self</span>` {
		t.Errorf("buildReferenceText() = %q, want the label name, de-linked, as a fallback", got)
	}
}
