package tmreport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmreport"
	"github.com/miko-misa/typmark/pkg/tmrun"
	"github.com/miko-misa/typmark/pkg/tmspan"
	"github.com/miko-misa/typmark/pkg/typmark"
)

func TestJSONReporter_Report_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	r := tmreport.NewJSONReporter(tmreport.Options{Writer: &buf, Format: tmreport.FormatJSON})

	n, err := r.Report(context.Background(), &tmrun.Result{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var out tmreport.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 0, out.Summary.FilesChecked)
	assert.Empty(t, out.Files)
}

func TestJSONReporter_Report_MatchesDiagnosticShape(t *testing.T) {
	result := &tmrun.Result{
		Files: []tmrun.FileOutcome{
			{
				Path: "doc.tmd",
				Result: &typmark.Result{
					HTML: "<p>hi</p>",
					Diagnostics: []tmdiag.Diagnostic{
						{
							Code:     tmdiag.ECodeLabelDup,
							Severity: tmdiag.SeverityError,
							Range: tmspan.Range{
								Start: tmspan.Position{Line: 2, Character: 4},
								End:   tmspan.Position{Line: 2, Character: 10},
							},
							Message: "duplicate label \"foo\"",
							Related: []tmdiag.RelatedDiagnostic{
								{
									Range:   tmspan.Range{Start: tmspan.Position{Line: 0, Character: 0}},
									Message: "first defined here",
								},
							},
						},
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	r := tmreport.NewJSONReporter(tmreport.Options{Writer: &buf, Format: tmreport.FormatJSON})

	n, err := r.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var out tmreport.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Files, 1)
	diag := out.Files[0].Diagnostics[0]
	assert.Equal(t, "E_LABEL_DUP", diag.Code)
	assert.Equal(t, "error", diag.Severity)
	assert.Equal(t, 2, diag.Range.Start.Line)
	assert.Equal(t, 4, diag.Range.Start.Character)
	require.Len(t, diag.Related, 1)
	assert.Equal(t, "first defined here", diag.Related[0].Message)

	assert.Equal(t, 1, out.Summary.TotalIssues)
	assert.Equal(t, 1, out.Summary.FilesWithIssues)
	assert.Equal(t, 1, out.Summary.BySeverity["error"])
}

func TestJSONReporter_Report_RecordsFileErrors(t *testing.T) {
	result := &tmrun.Result{
		Files: []tmrun.FileOutcome{
			{Path: "broken.tmd", Error: assert.AnError},
		},
	}

	var buf bytes.Buffer
	r := tmreport.NewJSONReporter(tmreport.Options{Writer: &buf})

	_, err := r.Report(context.Background(), result)
	require.NoError(t, err)

	var out tmreport.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Files, 1)
	assert.NotEmpty(t, out.Files[0].Error)
	assert.Equal(t, 1, out.Summary.FilesErrored)
}
