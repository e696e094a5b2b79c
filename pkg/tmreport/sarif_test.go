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

func TestSARIFReporter_Report_BuildsOneRulePerCode(t *testing.T) {
	result := &tmrun.Result{
		Files: []tmrun.FileOutcome{
			{
				Path: "a.tmd",
				Result: &typmark.Result{
					Diagnostics: []tmdiag.Diagnostic{
						{Code: tmdiag.WCodeRefMissing, Severity: tmdiag.SeverityWarning, Message: "missing ref"},
						{Code: tmdiag.WCodeRefMissing, Severity: tmdiag.SeverityWarning, Message: "missing ref again"},
						{Code: tmdiag.ECodeRefDepth, Severity: tmdiag.SeverityError, Message: "recursion too deep"},
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	r := tmreport.NewSARIFReporter(tmreport.Options{Writer: &buf})

	n, err := r.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var out tmreport.SARIFOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Runs, 1)
	assert.Len(t, out.Runs[0].Tool.Driver.Rules, 2)
	require.Len(t, out.Runs[0].Results, 3)
	assert.Equal(t, "error", out.Runs[0].Results[2].Level)
}

func TestSARIFReporter_Report_ConvertsZeroBasedToOneBasedRegions(t *testing.T) {
	result := &tmrun.Result{
		Files: []tmrun.FileOutcome{
			{
				Path: "a.tmd",
				Result: &typmark.Result{
					Diagnostics: []tmdiag.Diagnostic{
						{
							Code:     tmdiag.ECodeAttrSyntax,
							Severity: tmdiag.SeverityError,
							Range: tmspan.Range{
								Start: tmspan.Position{Line: 0, Character: 0},
								End:   tmspan.Position{Line: 0, Character: 3},
							},
						},
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	r := tmreport.NewSARIFReporter(tmreport.Options{Writer: &buf})
	_, err := r.Report(context.Background(), result)
	require.NoError(t, err)

	var out tmreport.SARIFOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	region := out.Runs[0].Results[0].Locations[0].PhysicalLocation.Region
	assert.Equal(t, 1, region.StartLine)
	assert.Equal(t, 1, region.StartColumn)
}
