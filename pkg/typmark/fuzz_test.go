package typmark_test

import (
	"testing"

	"github.com/miko-misa/typmark/pkg/typmark"
)

func FuzzParse(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("# Heading\n\nPlain paragraph.\n"))
	f.Add([]byte("{#dup}\n# First\n\n{#dup}\n# Second\n"))
	f.Add([]byte("See @missing for details.\n"))
	f.Add([]byte("$x^2$ and\n\n$$\nx = y\n$$\n"))
	f.Add([]byte(":::note\nbody\n:::\n"))
	f.Add([]byte("```go hl=1:foo\nfmt.Println()\n```\n"))
	f.Add([]byte("[link](# \"title\n"))
	f.Add([]byte("\x00\x01\xff\xfe"))
	f.Add([]byte("> quote\n>> nested\n"))
	f.Add([]byte("- [ ] task\n- [x] done\n"))
	f.Add(make([]byte, 512))

	f.Fuzz(func(t *testing.T, source []byte) {
		// Parse must never panic, and must terminate, for any input bytes.
		result := typmark.Parse(source, typmark.DefaultParseOptions())

		for _, diag := range result.Diagnostics {
			if diag.Range.Start.Line < 0 || diag.Range.Start.Character < 0 {
				t.Errorf("diagnostic %s has negative start position: %+v", diag.Code, diag.Range.Start)
			}
			if diag.Message == "" {
				t.Errorf("diagnostic %s has empty message", diag.Code)
			}
		}

		// Parsing twice with the same input and options must be deterministic.
		again := typmark.Parse(source, typmark.DefaultParseOptions())
		if again.HTML != result.HTML {
			t.Errorf("Parse is not deterministic for input %q", source)
		}
	})
}

func FuzzParseGFMDisabled(f *testing.F) {
	f.Add([]byte("| a | b |\n| - | - |\n| 1 | 2 |\n"))
	f.Add([]byte("~~strike~~\n"))
	f.Add([]byte("- [ ] item\n"))

	f.Fuzz(func(t *testing.T, source []byte) {
		opts := typmark.DefaultParseOptions()
		opts.GFMExtensions = false
		// Parse must never panic regardless of which extensions are toggled off.
		_ = typmark.Parse(source, opts)
	})
}
