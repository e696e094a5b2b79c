package pretty

import (
	"fmt"
	"strings"

	"github.com/miko-misa/typmark/pkg/tmdiag"
)

// FormatDiagnostic formats a single diagnostic for terminal output.
//
// A diagnostic code like E_REF_DEPTH is already both stable and
// human-readable, so it renders directly rather than through a
// rule-ID/rule-name pair. Related spans carry secondary locations instead
// of a free-text suggestion string.
func (s *Styles) FormatDiagnostic(filePath string, diag *tmdiag.Diagnostic, showContext bool, sourceLine string) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(filePath),
		diag.Range.Start.Line+1,
		diag.Range.Start.Character+1,
	)

	severity := s.FormatSeverity(diag.Severity)
	codeDisplay := s.RuleID.Render("(" + string(diag.Code) + ")")

	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		severity,
		s.Message.Render(diag.Message),
		codeDisplay,
	))

	if showContext && sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine, diag.Range.Start.Character+1))
	}

	for _, rel := range diag.Related {
		relLocation := fmt.Sprintf("%s:%d:%d", filePath, rel.Range.Start.Line+1, rel.Range.Start.Character+1)
		builder.WriteString("    " + s.Dim.Render(relLocation+": "+rel.Message) + "\n")
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev tmdiag.Severity) string {
	switch sev {
	case tmdiag.SeverityError:
		return s.Error.Render("error")
	case tmdiag.SeverityWarning:
		return s.Warning.Render("warning")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
