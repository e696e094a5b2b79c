package tmconfig

import "fmt"

// ValidationError describes a single configuration problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult collects errors and warnings from Validate.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationWarning describes a non-fatal configuration concern.
type ValidationWarning struct {
	Field   string
	Message string
}

// Valid reports whether the configuration has no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks a Config for well-formedness, returning any errors and
// warnings found. There is no rule registry to check field values against.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	switch cfg.Format {
	case FormatText, FormatTable, FormatJSON, FormatSARIF, "":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown output format %q", cfg.Format),
		})
	}

	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever, "":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "color",
			Message: fmt.Sprintf("unknown color mode %q", cfg.Color),
		})
	}

	if cfg.Jobs < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "jobs",
			Message: "must be >= 0 (0 means auto)",
		})
	}

	return result
}
