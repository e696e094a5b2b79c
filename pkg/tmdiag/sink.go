package tmdiag

import (
	"sort"

	"github.com/miko-misa/typmark/pkg/tmspan"
)

// Sink accumulates diagnostics across a parse/resolve/emit pipeline run.
// It is the single mutable object threaded through the otherwise pure
// stages, matching spec.md §5's "diagnostics accumulate in source order"
// model, with no rule-registry or fix-edit machinery since this is a
// fixed compiler pass, not a pluggable linter.
type Sink struct {
	diags  []Diagnostic
	passID int
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// SetPass sets the current pass identifier, used only to break ties
// between diagnostics that share a primary span start (spec.md §5:
// "stably sorted by (primary-span-start, pass-id)").
func (s *Sink) SetPass(id int) {
	s.passID = id
}

// Add appends a diagnostic computed from a byte span and a Map.
func (s *Sink) Add(m *tmspan.Map, code Code, span tmspan.Span, message string, related ...RelatedDiagnostic) {
	s.diags = append(s.diags, Diagnostic{
		Code:         code,
		Severity:     code.Severity(),
		Range:        m.Range(span),
		Message:      message,
		Related:      related,
		passID:       s.passID,
		primaryStart: span.Start,
	})
}

// Related builds a RelatedDiagnostic from a span.
func Related(m *tmspan.Map, span tmspan.Span, message string) RelatedDiagnostic {
	return RelatedDiagnostic{Range: m.Range(span), Message: message}
}

// Diagnostics returns all accumulated diagnostics, stably sorted by
// (primary-span-start, pass-id).
func (s *Sink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].primaryStart != out[j].primaryStart {
			return out[i].primaryStart < out[j].primaryStart
		}
		return out[i].passID < out[j].passID
	})
	return out
}

// HasErrors reports whether any accumulated diagnostic is error-severity.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
