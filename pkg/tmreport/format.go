package tmreport

import "fmt"

// Format represents an output format for a run's diagnostics.
//
// Restricted to three formats: text, JSON, SARIF. Table rendering lives
// in internal/ui/pretty (invoked directly by the CLI, not through a
// Reporter), and TypMark has no in-place fix/diff concept for a diff
// reporter to describe.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat parses a format string, returning an error for unknown formats.
func ParseFormat(formatStr string) (Format, error) {
	switch formatStr {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("unknown format %q; valid formats: text, json, sarif", formatStr)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatSARIF:
		return true
	default:
		return false
	}
}
