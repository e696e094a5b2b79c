package tmparser_test

import (
	"testing"

	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmparser"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

func FuzzParse(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("# Heading\n"))
	f.Add([]byte("{#id key=\"val\"}\nParagraph.\n"))
	f.Add([]byte("```lang hl=1,2:foo\ncode\n```\n"))
	f.Add([]byte(":::note\nbody\n:::\n"))
	f.Add([]byte("[ref][def]\n\n[def]: /url \"title\"\n"))
	f.Add([]byte("- a\n  - b\n- c\n"))
	f.Add([]byte("| a | b |\n|---|---|\n"))
	f.Add([]byte("\r\n\r\n\x00"))
	f.Add(make([]byte, 256))

	f.Fuzz(func(t *testing.T, source []byte) {
		diags := tmdiag.NewSink()
		srcMap := tmspan.NewMap(source)
		linkDefs := tmparser.Prepass(source)

		// Parse must never panic for any byte sequence, malformed or not.
		doc := tmparser.Parse(source, tmparser.Options{}, diags, srcMap, linkDefs)
		if doc == nil {
			t.Fatal("Parse returned nil document")
		}
	})
}
