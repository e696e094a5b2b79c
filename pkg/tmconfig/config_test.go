package tmconfig_test

import (
	"testing"

	"github.com/miko-misa/typmark/pkg/tmconfig"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := tmconfig.NewConfig()

	if cfg.Format != tmconfig.FormatText {
		t.Errorf("Format = %q, want %q", cfg.Format, tmconfig.FormatText)
	}
	if cfg.Color != tmconfig.ColorAuto {
		t.Errorf("Color = %q, want %q", cfg.Color, tmconfig.ColorAuto)
	}
	if !cfg.Parse.WrapSections {
		t.Error("Parse.WrapSections = false, want true (matches typmark.DefaultParseOptions)")
	}
	if !cfg.Parse.GFMExtensions {
		t.Error("Parse.GFMExtensions = false, want true (matches typmark.DefaultParseOptions)")
	}
}

func TestParseSettings_RoundTripsThroughToParseOptions(t *testing.T) {
	settings := tmconfig.ParseSettings{
		Sanitize:      true,
		SourceMap:     true,
		GFMExtensions: false,
	}

	opts := settings.ToParseOptions()

	if !opts.Sanitize || !opts.SourceMap {
		t.Error("ToParseOptions() did not carry over Sanitize/SourceMap")
	}
	if opts.GFMExtensions {
		t.Error("ToParseOptions() GFMExtensions = true, want false")
	}
}
