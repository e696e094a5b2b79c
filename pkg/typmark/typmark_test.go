package typmark_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmemit"
	"github.com/miko-misa/typmark/pkg/typmark"
)

func TestParse_BasicParagraphAndHeading(t *testing.T) {
	t.Parallel()

	result := typmark.Parse([]byte("# Title\n\nHello *world*.\n"), typmark.DefaultParseOptions())

	if !strings.Contains(result.HTML, "<h1") {
		t.Errorf("HTML missing <h1>: %s", result.HTML)
	}
	if !strings.Contains(result.HTML, "<em>world</em>") {
		t.Errorf("HTML missing emphasis: %s", result.HTML)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %+v", result.Diagnostics)
	}
}

func TestParse_ReferenceResolvesToSectionTitle(t *testing.T) {
	t.Parallel()

	src := "{#intro}\n# Intro\n\nSee @intro for details.\n"
	result := typmark.Parse([]byte(src), typmark.DefaultParseOptions())

	if !strings.Contains(result.HTML, `class="TypMark-ref"`) {
		t.Errorf("expected a resolved reference anchor, got: %s", result.HTML)
	}
	if !strings.Contains(result.HTML, `href="#intro"`) {
		t.Errorf("expected href to target the label, got: %s", result.HTML)
	}
	if !strings.Contains(result.HTML, ">Intro<") {
		t.Errorf("expected reference display text to be the title, got: %s", result.HTML)
	}
}

func TestParse_UnresolvedReferenceIsFlaggedAndStillEmitted(t *testing.T) {
	t.Parallel()

	result := typmark.Parse([]byte("See @nowhere for details.\n"), typmark.DefaultParseOptions())

	if !strings.Contains(result.HTML, "ref-unresolved") {
		t.Errorf("expected an unresolved-ref span, got: %s", result.HTML)
	}

	var found bool
	for _, d := range result.Diagnostics {
		if d.Code == tmdiag.WCodeRefMissing {
			found = true
		}
	}
	if !found {
		t.Errorf("expected W_REF_MISSING, got: %+v", result.Diagnostics)
	}
}

func TestParse_BracketlessReferenceToNonTitleLabelIsOmittedAndUnresolved(t *testing.T) {
	t.Parallel()

	src := "{#p}\nA plain paragraph.\n\nSee @p for details.\n"
	result := typmark.Parse([]byte(src), typmark.DefaultParseOptions())

	var found bool
	for _, d := range result.Diagnostics {
		if d.Code == tmdiag.ECodeRefOmit {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E_REF_OMIT, got: %+v", result.Diagnostics)
	}

	if !strings.Contains(result.HTML, "ref-unresolved") {
		t.Errorf("expected the omitted reference to render as an unresolved span, got: %s", result.HTML)
	}
	if strings.Contains(result.HTML, `class="TypMark-ref"`) {
		t.Errorf("expected no resolved reference anchor for a bracket-less non-title reference, got: %s", result.HTML)
	}
}

func TestParse_BracketlessReferenceDisplayTextDelinksEmbeddedLink(t *testing.T) {
	t.Parallel()

	src := "{#intro}\n# Intro with [a link](https://example.com)\n\nSee @intro for details.\n"
	result := typmark.Parse([]byte(src), typmark.DefaultParseOptions())

	if !strings.Contains(result.HTML, `<span class="TypMark-delink">a link</span>`) {
		t.Errorf("expected the reference display text to de-link the embedded link, got: %s", result.HTML)
	}
	if strings.Count(result.HTML, `<a href="https://example.com">a link</a>`) != 1 {
		t.Errorf("expected only the heading title to keep the live link, the reference display text de-linking it, got: %s", result.HTML)
	}
}

func TestParse_DuplicateLabelIsAnError(t *testing.T) {
	t.Parallel()

	src := "{#dup}\n# One\n\n{#dup}\n# Two\n"
	result := typmark.Parse([]byte(src), typmark.DefaultParseOptions())

	var found bool
	for _, d := range result.Diagnostics {
		if d.Code == tmdiag.ECodeLabelDup {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E_LABEL_DUP, got: %+v", result.Diagnostics)
	}
}

func TestParse_BoxBlockRendersContainerAndStyleAttrs(t *testing.T) {
	t.Parallel()

	src := "{bg=\"#eee\"}\n:::box\nNote body.\n:::\n"
	result := typmark.Parse([]byte(src), typmark.DefaultParseOptions())

	if !strings.Contains(result.HTML, `class="TypMark-box"`) {
		t.Errorf("expected a box container, got: %s", result.HTML)
	}
	if !strings.Contains(result.HTML, `data-bg="#eee"`) {
		t.Errorf("expected the bg style forwarded as a data attribute, got: %s", result.HTML)
	}
}

func TestParse_GFMTableAndStrikethrough(t *testing.T) {
	t.Parallel()

	src := "| a | b |\n| - | - |\n| 1 | 2 |\n\n~~gone~~\n"
	result := typmark.Parse([]byte(src), typmark.DefaultParseOptions())

	if !strings.Contains(result.HTML, "<table") {
		t.Errorf("expected a table, got: %s", result.HTML)
	}
	if !strings.Contains(result.HTML, "<del>gone</del>") {
		t.Errorf("expected strikethrough, got: %s", result.HTML)
	}
}

func TestParse_GFMExtensionsDisabledSkipsTablesAndStrikethrough(t *testing.T) {
	t.Parallel()

	opts := typmark.DefaultParseOptions()
	opts.GFMExtensions = false
	src := "| a | b |\n| - | - |\n| 1 | 2 |\n\n~~gone~~\n"
	result := typmark.Parse([]byte(src), opts)

	if strings.Contains(result.HTML, "<table") {
		t.Errorf("expected no table with GFM disabled, got: %s", result.HTML)
	}
}

type stubMathRenderer struct{}

func (stubMathRenderer) Render(src string, display bool, settings tmemit.MathSettings) (string, error) {
	return fmt.Sprintf("<svg data-src=%q data-display=%v></svg>", src, display), nil
}

func TestParse_MathInlineAndBlockUseInjectedRenderer(t *testing.T) {
	t.Parallel()

	opts := typmark.DefaultParseOptions()
	opts.Math = stubMathRenderer{}
	src := "Inline $x^2$ math.\n\n$$\ny = x^2\n$$\n"
	result := typmark.Parse([]byte(src), opts)

	if !strings.Contains(result.HTML, `data-display=false`) {
		t.Errorf("expected inline math rendered non-display, got: %s", result.HTML)
	}
	if !strings.Contains(result.HTML, `data-display=true`) {
		t.Errorf("expected block math rendered display, got: %s", result.HTML)
	}
}

func TestParse_MathWithoutRendererProducesErrorPlaceholder(t *testing.T) {
	t.Parallel()

	result := typmark.Parse([]byte("Inline $x$ math.\n"), typmark.DefaultParseOptions())

	if !strings.Contains(result.HTML, "TypMark-math-inline--error") {
		t.Errorf("expected a math render-error placeholder, got: %s", result.HTML)
	}
}

func TestParse_SourceMapAddsRangeAttribute(t *testing.T) {
	t.Parallel()

	opts := typmark.DefaultParseOptions()
	opts.SourceMap = true
	result := typmark.Parse([]byte("Hello.\n"), opts)

	if !strings.Contains(result.HTML, "data-tm-range=") {
		t.Errorf("expected data-tm-range with SourceMap enabled, got: %s", result.HTML)
	}
}

func TestParse_SourceMapOffOmitsRangeAttribute(t *testing.T) {
	t.Parallel()

	result := typmark.Parse([]byte("Hello.\n"), typmark.DefaultParseOptions())

	if strings.Contains(result.HTML, "data-tm-range=") {
		t.Errorf("expected no data-tm-range by default, got: %s", result.HTML)
	}
}

func TestParse_DocumentSettingsLineAttachesToDocumentNotNextBlock(t *testing.T) {
	t.Parallel()

	src := "{font=\"Inter\" code-font=\"Fira Code\"}\n\n# Title\n"
	result := typmark.Parse([]byte(src), typmark.DefaultParseOptions())

	if !strings.Contains(result.HTML, "<h1") {
		t.Errorf("expected the heading to render as a normal block, got: %s", result.HTML)
	}
	if strings.Contains(result.HTML, "font=") {
		t.Errorf("document settings must not leak into block output: %s", result.HTML)
	}
}

type passthroughSanitizerStub struct{ calls int }

func (s *passthroughSanitizerStub) Sanitize(html string) string {
	s.calls++
	return strings.ReplaceAll(html, "<script", "<removed")
}

func TestParse_SanitizeInvokesInjectedSanitizer(t *testing.T) {
	t.Parallel()

	opts := typmark.DefaultParseOptions()
	opts.Sanitize = true
	sanitizer := &passthroughSanitizerStub{}
	opts.Sanitizer = sanitizer
	result := typmark.Parse([]byte("<script>alert(1)</script>\n"), opts)

	if sanitizer.calls != 1 {
		t.Errorf("expected the sanitizer to run exactly once, got %d calls", sanitizer.calls)
	}
	if strings.Contains(result.HTML, "<script") {
		t.Errorf("expected the sanitizer's rewrite to survive, got: %s", result.HTML)
	}
}

func TestParse_SanitizeWithoutSanitizerLeavesHTMLUnchanged(t *testing.T) {
	t.Parallel()

	opts := typmark.DefaultParseOptions()
	opts.Sanitize = true
	withSanitize := typmark.Parse([]byte("Hello *world*.\n"), opts)

	opts.Sanitize = false
	withoutSanitize := typmark.Parse([]byte("Hello *world*.\n"), opts)

	if withSanitize.HTML != withoutSanitize.HTML {
		t.Errorf("a nil Sanitizer must leave HTML unchanged: %q vs %q", withSanitize.HTML, withoutSanitize.HTML)
	}
}
