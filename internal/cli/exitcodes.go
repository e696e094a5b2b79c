package cli

import "github.com/miko-misa/typmark/pkg/tmrun"

// Exit codes for typmark.
const (
	// ExitSuccess indicates successful execution with no diagnostics.
	ExitSuccess = 0

	// ExitDiagnosticErrors indicates the run completed but produced errors.
	ExitDiagnosticErrors = 1

	// ExitDiagnosticWarnings indicates the run produced warnings (strict mode only).
	ExitDiagnosticWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *tmrun.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	errors := result.Stats.DiagnosticsBySeverity["error"]
	warnings := result.Stats.DiagnosticsBySeverity["warning"]

	if errors > 0 {
		return ExitDiagnosticErrors
	}

	if strict && warnings > 0 {
		return ExitDiagnosticWarnings
	}

	return ExitSuccess
}
