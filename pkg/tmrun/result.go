package tmrun

import "github.com/miko-misa/typmark/pkg/typmark"

// FileOutcome wraps a typmark.Result with resolved path metadata.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Source is the raw file content, kept so reporters can recover
	// source-context lines for a diagnostic without re-reading the file.
	Source []byte

	// Result contains the parse/render result for this file.
	// Nil if the file could not even be read.
	Result *typmark.Result

	// Error is set if the file could not be processed (e.g. read failure).
	Error error
}

// Stats captures aggregate information about a run.
//
// No fixable/fixed/modified-files counters: TypMark has no auto-fix or
// in-place rewrite concept, only parse and emit, so there is nothing for
// those counters to track.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files successfully parsed and emitted.
	FilesProcessed int

	// FilesErrored is the number of files that could not be read at all.
	FilesErrored int

	// DiagnosticsTotal is the total number of diagnostics across all files.
	DiagnosticsTotal int

	// DiagnosticsBySeverity maps severity levels ("error"/"warning") to counts.
	DiagnosticsBySeverity map[string]int

	// FilesWithIssues is the number of files with at least one diagnostic.
	FilesWithIssues int
}

// Result is the overall run result.
type Result struct {
	// Files contains the outcome for each processed file, ordered
	// deterministically (by path).
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Errors contains any non-file-specific errors encountered.
	Errors []error
}

// HasFailures reports whether any diagnostics with error severity occurred.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsBySeverity["error"] > 0
}

// HasIssues reports whether any diagnostics were found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

// newStats creates a new Stats with initialized maps.
func newStats() Stats {
	return Stats{
		DiagnosticsBySeverity: make(map[string]int),
	}
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	if outcome.Result == nil {
		return
	}

	r.Stats.FilesProcessed++

	diagCount := len(outcome.Result.Diagnostics)
	r.Stats.DiagnosticsTotal += diagCount
	if diagCount > 0 {
		r.Stats.FilesWithIssues++
	}

	for _, diag := range outcome.Result.Diagnostics {
		severity := string(diag.Severity)
		if severity == "" {
			severity = "warning"
		}
		r.Stats.DiagnosticsBySeverity[severity]++
	}
}
