package tmrun_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/miko-misa/typmark/pkg/tmrun"
	"github.com/miko-misa/typmark/pkg/typmark"
)

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := tmrun.New()

	result, err := r.Run(context.Background(), tmrun.Options{
		Paths:      []string{"."},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.FilesDiscovered != 0 {
		t.Errorf("FilesDiscovered = %d, want 0", result.Stats.FilesDiscovered)
	}
}

func TestRunner_Run_DiscoversAndParsesTmdFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "clean.tmd", "# Hello\n\nWorld.\n")
	writeFile(t, dir, "broken.tmd", "{#dup}\n# One\n\n{#dup}\n# Two\n")
	writeFile(t, dir, "ignored.txt", "not typmark")

	r := tmrun.New()
	result, err := r.Run(context.Background(), tmrun.Options{
		Paths:      []string{"."},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.FilesDiscovered != 2 {
		t.Fatalf("FilesDiscovered = %d, want 2 (the .txt file must be excluded)", result.Stats.FilesDiscovered)
	}
	if result.Stats.FilesProcessed != 2 {
		t.Errorf("FilesProcessed = %d, want 2", result.Stats.FilesProcessed)
	}
	if result.Stats.FilesWithIssues != 1 {
		t.Errorf("FilesWithIssues = %d, want 1 (only broken.tmd has a duplicate label)", result.Stats.FilesWithIssues)
	}
	if !result.HasFailures() {
		t.Error("HasFailures() = false, want true: broken.tmd has an error-severity diagnostic")
	}
}

func TestRunner_Run_ErroredFileDoesNotPanic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "ok.tmd", "# Hello\n")

	r := tmrun.New()
	result, err := r.Run(context.Background(), tmrun.Options{
		Paths:      []string{filepath.Join(dir, "ok.tmd")},
		WorkingDir: dir,
		Parse:      typmark.DefaultParseOptions(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.FilesErrored != 0 {
		t.Errorf("FilesErrored = %d, want 0", result.Stats.FilesErrored)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
