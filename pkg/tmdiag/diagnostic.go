// Package tmdiag defines TypMark's dual diagnostic model: errors and
// warnings carrying precise source spans, accumulated as data rather than
// raised as control flow.
package tmdiag

import "github.com/miko-misa/typmark/pkg/tmspan"

// Severity distinguishes errors from warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code enumerates every diagnostic code TypMark can produce. The full set
// matches spec.md §6 exactly, including W_LINK_REF_MISSING/W_LINK_DEF_DUP/
// W_LINK_DEF_UNUSED, which the original Rust implementation never defines
// as named constants (see DESIGN.md).
type Code string

const (
	ECodeAttrSyntax     Code = "E_ATTR_SYNTAX"
	ECodeTargetOrphan   Code = "E_TARGET_ORPHAN"
	ECodeLabelDup       Code = "E_LABEL_DUP"
	ECodeRefOmit        Code = "E_REF_OMIT"
	ECodeRefBracketNL   Code = "E_REF_BRACKET_NL"
	ECodeRefSelfTitle   Code = "E_REF_SELF_TITLE"
	ECodeRefDepth       Code = "E_REF_DEPTH"
	ECodeMathInlineNL   Code = "E_MATH_INLINE_NL"
	ECodeCodeConflict   Code = "E_CODE_CONFLICT"
	WCodeRefMissing     Code = "W_REF_MISSING"
	WCodeCodeRangeOOB   Code = "W_CODE_RANGE_OOB"
	WCodeBoxStyleInvalid Code = "W_BOX_STYLE_INVALID"
	WCodeLinkRefMissing Code = "W_LINK_REF_MISSING"
	WCodeLinkDefDup     Code = "W_LINK_DEF_DUP"
	WCodeLinkDefUnused  Code = "W_LINK_DEF_UNUSED"
)

// Severity returns the fixed severity for a code.
func (c Code) Severity() Severity {
	switch c {
	case ECodeAttrSyntax, ECodeTargetOrphan, ECodeLabelDup, ECodeRefOmit,
		ECodeRefBracketNL, ECodeRefSelfTitle, ECodeRefDepth, ECodeMathInlineNL,
		ECodeCodeConflict:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// RelatedDiagnostic is a secondary span attached to a Diagnostic, e.g. the
// first occurrence of a duplicated label.
type RelatedDiagnostic struct {
	Range   tmspan.Range
	Message string
}

// Diagnostic is a single error or warning, carrying a precise source span.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Range    tmspan.Range
	Message  string
	Related  []RelatedDiagnostic

	// passID orders diagnostics emitted in the same pass; see Builder.
	passID int
	// primaryStart is cached for sorting.
	primaryStart int
}
