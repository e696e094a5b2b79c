package tmconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/miko-misa/typmark/pkg/typmark"
)

// envVarPrefix is the prefix for all typmark environment variables.
const envVarPrefix = "TYPMARK_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FORMAT":             {field: "format", typ: envTypeString},
	"COLOR":              {field: "color", typ: envTypeString},
	"JOBS":               {field: "jobs", typ: envTypeInt},
	"IGNORE":             {field: "ignore", typ: envTypeSlice},
	"SANITIZE":           {field: "parse.sanitize", typ: envTypeBool},
	"SIMPLE_CODE_BLOCKS": {field: "parse.simple_code_blocks", typ: envTypeBool},
	"WRAP_SECTIONS":      {field: "parse.wrap_sections", typ: envTypeBool},
	"SOURCE_MAP":         {field: "parse.source_map", typ: envTypeBool},
	"THEME":              {field: "parse.theme", typ: envTypeString},
	"GFM_EXTENSIONS":     {field: "parse.gfm_extensions", typ: envTypeBool},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with TYPMARK_ (e.g., TYPMARK_FORMAT).
func LoadFromEnv(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *Config, field, value string) error {
	switch field {
	case "format":
		cfg.Format = OutputFormat(value)
	case "color":
		cfg.Color = ColorMode(value)
	case "parse.theme":
		cfg.Parse.Theme = parseTheme(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *Config, field string, value bool) error {
	switch field {
	case "parse.sanitize":
		cfg.Parse.Sanitize = value
	case "parse.simple_code_blocks":
		cfg.Parse.SimpleCodeBlocks = value
	case "parse.wrap_sections":
		cfg.Parse.WrapSections = value
	case "parse.source_map":
		cfg.Parse.SourceMap = value
	case "parse.gfm_extensions":
		cfg.Parse.GFMExtensions = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setSliceField sets a slice field on the config by field path.
func setSliceField(cfg *Config, field string, value []string) error {
	switch field {
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with descriptions.
func ListEnvVars() map[string]string {
	return map[string]string{
		"TYPMARK_FORMAT":             "Diagnostic output format: text, table, json, or sarif",
		"TYPMARK_COLOR":              "Color mode: auto, always, or never",
		"TYPMARK_JOBS":               "Number of parallel workers for batch runs (0 = auto)",
		"TYPMARK_IGNORE":             "Comma-separated list of ignore glob patterns",
		"TYPMARK_SANITIZE":           "Run emitted HTML through the injected sanitizer: true or false",
		"TYPMARK_SIMPLE_CODE_BLOCKS": "Emit bare <pre><code> instead of the line-wrapped figure form: true or false",
		"TYPMARK_WRAP_SECTIONS":      "Wrap headings and their content in <section>: true or false",
		"TYPMARK_SOURCE_MAP":         "Attach data-tm-range attributes to emitted elements: true or false",
		"TYPMARK_THEME":              "Rendering theme: auto, light, or dark",
		"TYPMARK_GFM_EXTENSIONS":     "Enable tables, task lists, strikethrough, and autolinks: true or false",
	}
}

// parseTheme maps a raw string to a typmark.Theme, defaulting to ThemeAuto
// for unrecognized values rather than erroring: an env var is a CLI-adjacent
// affordance, not a validated config file.
func parseTheme(value string) typmark.Theme {
	switch typmark.Theme(value) {
	case typmark.ThemeLight:
		return typmark.ThemeLight
	case typmark.ThemeDark:
		return typmark.ThemeDark
	default:
		return typmark.ThemeAuto
	}
}
