package tmparser

// Options controls optional grammar extensions. It intentionally mirrors
// the closed ParseOptions set from spec.md §6 that matters to parsing
// (sanitize/theme/source_map are emitter- or renderer-facing and live on
// typmark.ParseOptions instead).
type Options struct {
	// GFMExtensions gates tables, task lists, strikethrough, and GFM
	// autolink literals behind a single flag, per DESIGN.md's resolution
	// of spec.md §9's open question. Default true.
	GFMExtensions bool
}

// DefaultOptions returns the default parser options.
func DefaultOptions() Options {
	return Options{GFMExtensions: true}
}
