package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/miko-misa/typmark/internal/ui/pretty"
	"github.com/miko-misa/typmark/pkg/tmrun"
)

func TestFormatSummary_Basic(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := tmrun.Stats{
		FilesProcessed:        10,
		FilesWithIssues:       3,
		DiagnosticsTotal:      15,
		DiagnosticsBySeverity: map[string]int{"error": 5, "warning": 10},
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Summary")
	assert.Contains(t, result, "Files checked:")
	assert.Contains(t, result, "10")
	assert.Contains(t, result, "Files with issues:")
	assert.Contains(t, result, "3")
	assert.Contains(t, result, "Total diagnostics:")
	assert.Contains(t, result, "15")
	assert.Contains(t, result, "Errors:")
	assert.Contains(t, result, "5")
	assert.Contains(t, result, "Warnings:")
}

func TestFormatSummary_NoIssues(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := tmrun.Stats{
		FilesProcessed:        5,
		FilesWithIssues:       0,
		DiagnosticsTotal:      0,
		DiagnosticsBySeverity: map[string]int{},
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Render succeeded")
	assert.NotContains(t, result, "Files with issues:")
}

func TestFormatSummary_WithErrors(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := tmrun.Stats{
		FilesProcessed:        10,
		FilesWithIssues:       2,
		DiagnosticsTotal:      5,
		DiagnosticsBySeverity: map[string]int{"error": 2, "warning": 3},
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Render failed with errors")
}

func TestFormatSummary_WarningsOnly(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := tmrun.Stats{
		FilesProcessed:        10,
		FilesWithIssues:       2,
		DiagnosticsTotal:      5,
		DiagnosticsBySeverity: map[string]int{"warning": 5},
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Render completed with warnings")
}

func TestFormatSummary_WithErroredFiles(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := tmrun.Stats{
		FilesProcessed:        8,
		FilesErrored:          2,
		FilesWithIssues:       0,
		DiagnosticsTotal:      0,
		DiagnosticsBySeverity: map[string]int{},
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Files errored:")
	assert.Contains(t, result, "2")
}

func TestFormatSummaryOneLine_NoIssues(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := tmrun.Stats{
		FilesProcessed:        5,
		FilesWithIssues:       0,
		DiagnosticsTotal:      0,
		DiagnosticsBySeverity: map[string]int{},
	}

	result := styles.FormatSummaryOneLine(stats)

	assert.Contains(t, result, "No issues found")
	assert.Contains(t, result, "5 files checked")
}

func TestFormatSummaryOneLine_WithIssues(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := tmrun.Stats{
		FilesProcessed:        10,
		FilesWithIssues:       3,
		DiagnosticsTotal:      12,
		DiagnosticsBySeverity: map[string]int{"error": 4, "warning": 8},
	}

	result := styles.FormatSummaryOneLine(stats)

	assert.Contains(t, result, "12 issues")
	assert.Contains(t, result, "4 errors")
	assert.Contains(t, result, "8 warnings")
	assert.Contains(t, result, "in 3 files")
}

func TestFormatSummaryOneLine_SingleIssue(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := tmrun.Stats{
		FilesProcessed:        1,
		FilesWithIssues:       1,
		DiagnosticsTotal:      1,
		DiagnosticsBySeverity: map[string]int{"warning": 1},
	}

	result := styles.FormatSummaryOneLine(stats)

	assert.Contains(t, result, "1 issue")
	assert.Contains(t, result, "in 1 file")
}
