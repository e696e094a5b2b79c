package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/miko-misa/typmark/internal/ui/pretty"
	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmrun"
	"github.com/miko-misa/typmark/pkg/tmspan"
	"github.com/miko-misa/typmark/pkg/typmark"
)

func TestFormatTable_EmptyResult(t *testing.T) {
	styles := pretty.NewStyles(false)
	formatter := pretty.NewTableFormatter(styles, false, 0)

	assert.Equal(t, "", formatter.FormatTable(nil))
	assert.Equal(t, "", formatter.FormatTable(&tmrun.Result{}))
}

func TestFormatTable_RendersRowsGroupedByFile(t *testing.T) {
	styles := pretty.NewStyles(false)
	formatter := pretty.NewTableFormatter(styles, false, 0)

	result := &tmrun.Result{
		Files: []tmrun.FileOutcome{
			{
				Path: "docs/a.tmd",
				Result: &typmark.Result{
					Diagnostics: []tmdiag.Diagnostic{
						{
							Code:     tmdiag.ECodeLabelDup,
							Message:  "duplicate label: intro",
							Severity: tmdiag.SeverityError,
							Range:    tmspan.Range{Start: tmspan.Position{Line: 2, Character: 0}},
						},
					},
				},
			},
		},
	}

	out := formatter.FormatTable(result)

	assert.Contains(t, out, "docs/a.tmd")
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "duplicate label: intro")
	assert.Contains(t, out, "E_LABEL_DUP")
	assert.Contains(t, out, "Legend")
}

func TestFormatFileTable_NoDiagnostics(t *testing.T) {
	styles := pretty.NewStyles(false)
	formatter := pretty.NewTableFormatter(styles, false, 0)

	out := formatter.FormatFileTable(tmrun.FileOutcome{Result: &typmark.Result{}})
	assert.Equal(t, "", out)
}

func TestFormatFileTable_RendersSummary(t *testing.T) {
	styles := pretty.NewStyles(false)
	formatter := pretty.NewTableFormatter(styles, false, 0)

	outcome := tmrun.FileOutcome{
		Path: "docs/b.tmd",
		Result: &typmark.Result{
			Diagnostics: []tmdiag.Diagnostic{
				{Code: tmdiag.WCodeRefMissing, Message: "reference target not found: foo", Severity: tmdiag.SeverityWarning},
			},
		},
	}

	out := formatter.FormatFileTable(outcome)

	assert.Contains(t, out, "reference target not found: foo")
	assert.Contains(t, out, "1 warnings")
}

func TestFormatTableSummary_CountsBySeverity(t *testing.T) {
	styles := pretty.NewStyles(false)
	formatter := pretty.NewTableFormatter(styles, false, 0)

	stats := tmrun.Stats{
		FilesProcessed:        4,
		DiagnosticsBySeverity: map[string]int{"error": 1, "warning": 2},
	}

	out := formatter.FormatTableSummary(stats, "120ms")

	assert.Contains(t, out, "4 files checked")
	assert.Contains(t, out, "1 errors")
	assert.Contains(t, out, "2 warnings")
	assert.Contains(t, out, "120ms")
}
