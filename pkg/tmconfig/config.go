// Package tmconfig defines core configuration types for the typmark CLI.
// These types are pure data structures with no dependency on any particular
// config-file loader.
package tmconfig

import "github.com/miko-misa/typmark/pkg/typmark"

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatSARIF OutputFormat = "sarif"
)

// ColorMode controls whether ANSI styling is applied to terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseSettings holds the subset of typmark.ParseOptions that is plain data
// and therefore persistable to a config file. typmark.ParseOptions.Math and
// .Sanitizer are caller-supplied interfaces (a Typst renderer, an HTML
// sanitizer) with no YAML representation; they are wired in code by the CLI
// after loading a Config, never read from disk.
type ParseSettings struct {
	Sanitize         bool          `mapstructure:"sanitize" yaml:"sanitize"`
	SimpleCodeBlocks bool          `mapstructure:"simple_code_blocks" yaml:"simple_code_blocks"`
	WrapSections     bool          `mapstructure:"wrap_sections" yaml:"wrap_sections"`
	SourceMap        bool          `mapstructure:"source_map" yaml:"source_map"`
	Theme            typmark.Theme `mapstructure:"theme" yaml:"theme"`
	GFMExtensions    bool          `mapstructure:"gfm_extensions" yaml:"gfm_extensions"`
}

// ToParseOptions converts the persisted settings into a typmark.ParseOptions.
// Callers attach Math/Sanitizer afterward if they need them.
func (p ParseSettings) ToParseOptions() typmark.ParseOptions {
	return typmark.ParseOptions{
		Sanitize:         p.Sanitize,
		SimpleCodeBlocks: p.SimpleCodeBlocks,
		WrapSections:     p.WrapSections,
		SourceMap:        p.SourceMap,
		Theme:            p.Theme,
		GFMExtensions:    p.GFMExtensions,
	}
}

// parseSettingsFromOptions captures the persistable fields of opts.
func parseSettingsFromOptions(opts typmark.ParseOptions) ParseSettings {
	return ParseSettings{
		Sanitize:         opts.Sanitize,
		SimpleCodeBlocks: opts.SimpleCodeBlocks,
		WrapSections:     opts.WrapSections,
		SourceMap:        opts.SourceMap,
		Theme:            opts.Theme,
		GFMExtensions:    opts.GFMExtensions,
	}
}

// Config is the root configuration structure for typmark.
//
// Dropped relative to the teacher's config.Config: the per-rule
// `Rules map[string]RuleConfig`, `EnableRules`/`DisableRules`/`FixRules`,
// `Backups`/`Fix`/`DryRun`, and `RuleFormat`. TypMark has a fixed resolver
// pass, not a pluggable rule registry, so there is no per-rule config to
// hold, and no auto-fix/backup machinery since there is nothing to
// rewrite in place.
type Config struct {
	// Parse is the default set of parse/render options applied to every file.
	Parse ParseSettings `mapstructure:"parse" yaml:"parse"`

	// Ignore contains glob patterns for files to skip during batch runs.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`

	// Format specifies the diagnostic output format.
	Format OutputFormat `mapstructure:"format" yaml:"format"`

	// Color controls ANSI styling of terminal output.
	Color ColorMode `mapstructure:"color" yaml:"color"`

	// CLI-level options (not persisted to config files).

	// Jobs specifies the number of parallel workers for batch runs.
	Jobs int `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Parse:  parseSettingsFromOptions(typmark.DefaultParseOptions()),
		Ignore: nil,
		Format: FormatText,
		Color:  ColorAuto,
		Jobs:   0, // 0 means use runtime.NumCPU()
	}
}
