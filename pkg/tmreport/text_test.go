package tmreport_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmreport"
	"github.com/miko-misa/typmark/pkg/tmrun"
	"github.com/miko-misa/typmark/pkg/tmspan"
	"github.com/miko-misa/typmark/pkg/typmark"
)

func TestTextReporter_Report_NoFiles(t *testing.T) {
	var buf bytes.Buffer
	r := tmreport.NewTextReporter(tmreport.Options{Writer: &buf, Color: "never", ShowSummary: true})

	n, err := r.Report(context.Background(), &tmrun.Result{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, buf.String(), "No files to render")
}

func TestTextReporter_Report_IncludesSourceContextLine(t *testing.T) {
	source := []byte("line one\nline two\nline three\n")

	result := &tmrun.Result{
		Stats: tmrun.Stats{DiagnosticsBySeverity: map[string]int{}},
		Files: []tmrun.FileOutcome{
			{
				Path:   "doc.tmd",
				Source: source,
				Result: &typmark.Result{
					Diagnostics: []tmdiag.Diagnostic{
						{
							Code:     tmdiag.WCodeRefMissing,
							Severity: tmdiag.SeverityWarning,
							Range: tmspan.Range{
								Start: tmspan.Position{Line: 1, Character: 0},
								End:   tmspan.Position{Line: 1, Character: 4},
							},
							Message: "reference to unknown label",
						},
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	r := tmreport.NewTextReporter(tmreport.Options{Writer: &buf, Color: "never", ShowContext: true, ShowSummary: false})

	n, err := r.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "line two")
	assert.Contains(t, buf.String(), "W_REF_MISSING")
}

func TestTextReporter_Report_ReportsFileErrors(t *testing.T) {
	var buf bytes.Buffer
	r := tmreport.NewTextReporter(tmreport.Options{Writer: &buf, Color: "never"})

	result := &tmrun.Result{
		Files: []tmrun.FileOutcome{
			{Path: "missing.tmd", Error: assert.AnError},
		},
	}

	_, err := r.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "missing.tmd")
	assert.Contains(t, buf.String(), "error:")
}
