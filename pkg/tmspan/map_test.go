package tmspan_test

import (
	"testing"

	"github.com/miko-misa/typmark/pkg/tmspan"
)

func TestMap_Position(t *testing.T) {
	t.Parallel()

	source := []byte("a\nb\n")
	m := tmspan.NewMap(source)

	if got := m.LineCount(); got != 3 {
		t.Errorf("LineCount() = %d, want 3", got)
	}

	cases := []struct {
		offset int
		want   tmspan.Position
	}{
		{0, tmspan.Position{Line: 0, Character: 0}},
		{2, tmspan.Position{Line: 1, Character: 0}},
		{4, tmspan.Position{Line: 2, Character: 0}},
	}
	for _, c := range cases {
		if got := m.Position(c.offset); got != c.want {
			t.Errorf("Position(%d) = %+v, want %+v", c.offset, got, c.want)
		}
	}
}

func TestMap_Range(t *testing.T) {
	t.Parallel()

	m := tmspan.NewMap([]byte("a\nb\n"))
	r := m.Range(tmspan.Span{Start: 0, End: 3})
	if r.Start.Line != 0 || r.End.Line != 1 {
		t.Errorf("Range() = %+v, want start line 0, end line 1", r)
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		source string
		want   []string
	}{
		{"lf", "a\nb\nc", []string{"a", "b", "c"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b", ""}},
		{"cr", "a\rb\r", []string{"a", "b", ""}},
		{"empty", "", []string{""}},
		{"no_trailing_newline", "a\nb", []string{"a", "b"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			src := []byte(c.source)
			lines := tmspan.SplitLines(src)
			if len(lines) != len(c.want) {
				t.Fatalf("got %d lines, want %d", len(lines), len(c.want))
			}
			for i, li := range lines {
				if got := string(li.Content(src)); got != c.want[i] {
					t.Errorf("line %d = %q, want %q", i, got, c.want[i])
				}
			}
		})
	}
}
