package tmconfig_test

import (
	"testing"

	"github.com/miko-misa/typmark/pkg/tmconfig"
)

func TestLoadFromEnv_AppliesOverrides(t *testing.T) {
	t.Setenv("TYPMARK_FORMAT", "json")
	t.Setenv("TYPMARK_JOBS", "4")
	t.Setenv("TYPMARK_IGNORE", "a.tmd, b.tmd")
	t.Setenv("TYPMARK_SANITIZE", "true")

	cfg := tmconfig.NewConfig()
	if err := tmconfig.LoadFromEnv(cfg); err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Format != tmconfig.FormatJSON {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Jobs != 4 {
		t.Errorf("Jobs = %d, want 4", cfg.Jobs)
	}
	if len(cfg.Ignore) != 2 || cfg.Ignore[0] != "a.tmd" || cfg.Ignore[1] != "b.tmd" {
		t.Errorf("Ignore = %v, want [a.tmd b.tmd]", cfg.Ignore)
	}
	if !cfg.Parse.Sanitize {
		t.Error("Parse.Sanitize = false, want true")
	}
}

func TestLoadFromEnv_InvalidBoolReturnsError(t *testing.T) {
	t.Setenv("TYPMARK_SANITIZE", "not-a-bool")

	cfg := tmconfig.NewConfig()
	if err := tmconfig.LoadFromEnv(cfg); err == nil {
		t.Error("LoadFromEnv() error = nil, want error for invalid boolean")
	}
}

func TestGetEnvVarName_FindsMapping(t *testing.T) {
	name := tmconfig.GetEnvVarName("jobs")
	if name != "TYPMARK_JOBS" {
		t.Errorf("GetEnvVarName(\"jobs\") = %q, want TYPMARK_JOBS", name)
	}
}
