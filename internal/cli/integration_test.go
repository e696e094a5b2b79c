package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miko-misa/typmark/internal/cli"
)

func TestIntegration_RenderEmitsHTMLToStdout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.tmd")
	require.NoError(t, os.WriteFile(path, []byte("# Hello\n\nWorld.\n"), 0o644))

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"render", "--color", "never", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Hello")
}

func TestIntegration_RenderReportsLabelDuplicateDiagnostic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.tmd")
	content := "{#dup}\n# First\n\n{#dup}\n# Second\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"render", "--color", "never", "--no-context", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "E_LABEL_DUP")
}

func TestIntegration_RenderJSONFormatProducesValidDiagnosticEnvelope(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.tmd")
	require.NoError(t, os.WriteFile(path, []byte("See @missing for details.\n"), 0o644))

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"render", "--format", "json", path})

	_ = cmd.Execute()
	assert.Contains(t, stderr.String(), `"code"`)
	assert.Contains(t, stderr.String(), "W_REF_MISSING")
}

func TestIntegration_BatchRendersDirectoryTree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tmd"), []byte("# A\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tmd"), []byte("# B\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not markdown"), 0o644))

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"batch", "--color", "never", dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "No issues found")
}

// TestIntegration_BatchHonorsProjectConfigFile runs batch from inside a
// directory containing a .typmarkrc.yml, relying on config auto-discovery
// to pick up format: json without an explicit --format flag.
func TestIntegration_BatchHonorsProjectConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.tmd"), []byte("See @missing.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typmarkrc.yml"), []byte("format: json\n"), 0o644))

	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"batch"})

	_ = cmd.Execute()
	assert.Contains(t, stdout.String(), `"version"`)
}

func TestIntegration_InitCreatesConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outPath := filepath.Join(dir, ".typmarkrc.yml")

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)
	cmd.SetArgs([]string{"init", "--output", outPath})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "format:")
}

func TestIntegration_InitRefusesToOverwriteWithoutForce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outPath := filepath.Join(dir, ".typmarkrc.yml")
	require.NoError(t, os.WriteFile(outPath, []byte("format: text\n"), 0o644))

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)
	cmd.SetArgs([]string{"init", "--output", outPath})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	require.Error(t, cmd.Execute())

	cmd2 := cli.NewRootCommand(info)
	cmd2.SetArgs([]string{"init", "--output", outPath, "--force"})
	cmd2.SetOut(&stdout)
	cmd2.SetErr(&stderr)
	require.NoError(t, cmd2.Execute())
}
