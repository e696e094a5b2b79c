package tmreport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmrun"
	"github.com/miko-misa/typmark/pkg/tmspan"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path        string           `json:"path"`
	HTML        string           `json:"html,omitempty"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
	Error       string           `json:"error,omitempty"`
}

// JSONPosition matches spec.md §6's 0-based {line, character} pair
// (character counted in UTF-8 bytes).
type JSONPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// JSONRange is the {start, end} pair spec.md §6 names.
type JSONRange struct {
	Start JSONPosition `json:"start"`
	End   JSONPosition `json:"end"`
}

// JSONRelated mirrors tmdiag.RelatedDiagnostic.
type JSONRelated struct {
	Range   JSONRange `json:"range"`
	Message string    `json:"message,omitempty"`
}

// JSONDiagnostic matches spec.md §6's Diagnostic shape exactly:
// { code, severity, range, message, related? }.
type JSONDiagnostic struct {
	Code     string        `json:"code"`
	Severity string        `json:"severity"`
	Range    JSONRange     `json:"range"`
	Message  string        `json:"message"`
	Related  []JSONRelated `json:"related,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked    int            `json:"filesChecked"`
	FilesWithIssues int            `json:"filesWithIssues"`
	FilesErrored    int            `json:"filesErrored"`
	TotalIssues     int            `json:"totalIssues"`
	BySeverity      map[string]int `json:"bySeverity"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *tmrun.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalIssues, nil
}

func (r *JSONReporter) buildOutput(result *tmrun.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		Files:   make([]JSONFileResult, 0),
		Summary: JSONSummary{
			BySeverity: make(map[string]int),
		},
	}

	if result == nil {
		return output
	}

	output.Files = make([]JSONFileResult, 0, len(result.Files))

	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:        file.Path,
			Diagnostics: make([]JSONDiagnostic, 0),
		}

		if file.Error != nil {
			fileResult.Error = file.Error.Error()
			output.Summary.FilesErrored++
		}

		if file.Result != nil {
			fileResult.HTML = file.Result.HTML

			for _, diag := range file.Result.Diagnostics {
				fileResult.Diagnostics = append(fileResult.Diagnostics, diagnosticToJSON(diag))
				output.Summary.TotalIssues++
				output.Summary.BySeverity[string(diag.Severity)]++
			}
		}

		if len(fileResult.Diagnostics) > 0 {
			output.Summary.FilesWithIssues++
		}

		output.Files = append(output.Files, fileResult)
		output.Summary.FilesChecked++
	}

	return output
}

func diagnosticToJSON(diag tmdiag.Diagnostic) JSONDiagnostic {
	out := JSONDiagnostic{
		Code:     string(diag.Code),
		Severity: string(diag.Severity),
		Range:    rangeToJSON(diag.Range),
		Message:  diag.Message,
	}
	for _, rel := range diag.Related {
		out.Related = append(out.Related, JSONRelated{
			Range:   rangeToJSON(rel.Range),
			Message: rel.Message,
		})
	}
	return out
}

func rangeToJSON(rng tmspan.Range) JSONRange {
	return JSONRange{
		Start: JSONPosition{Line: rng.Start.Line, Character: rng.Start.Character},
		End:   JSONPosition{Line: rng.End.Line, Character: rng.End.Character},
	}
}
