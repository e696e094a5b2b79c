package tmemit

// Sanitizer post-filters emitted HTML against a safe allow-list. spec.md's
// Non-goals section treats HTML sanitization the same way it treats math
// rendering: "a pure post-filter over an allow-list", supplied by the
// caller rather than built into the compiler core. This package never
// constructs its own allow-list; pkg/typmark runs the caller's
// ParseOptions.Sanitizer only when ParseOptions.Sanitize is set.
type Sanitizer interface {
	Sanitize(html string) string
}

// passthroughSanitizer returns its input unchanged. It is the default when
// no Sanitizer is injected, matching the documented behavior of emitting
// raw HTML when sanitization isn't requested.
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(html string) string { return html }

func sanitizerOrDefault(s Sanitizer) Sanitizer {
	if s == nil {
		return passthroughSanitizer{}
	}
	return s
}
