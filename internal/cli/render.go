package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/miko-misa/typmark/internal/logging"
	"github.com/miko-misa/typmark/pkg/fsutil"
	"github.com/miko-misa/typmark/pkg/tmreport"
	"github.com/miko-misa/typmark/pkg/tmrun"
	"github.com/miko-misa/typmark/pkg/typmark"
)

// ErrDiagnosticsFound is returned when a render produced error diagnostics.
var ErrDiagnosticsFound = errors.New("diagnostics found")

type renderFlags struct {
	format           string
	out              string
	sanitize         bool
	simpleCodeBlocks bool
	noWrapSections   bool
	sourceMap        bool
	theme            string
	noGFM            bool
	strict           bool
	noContext        bool
}

func newRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [path]",
		Short: "Render a single TypMark document to HTML",
		Long: `Render a single TypMark document to HTML.

Reads from the given path, or from stdin if no path is given, and writes
the rendered HTML to stdout (or --out). Diagnostics are written to stderr,
as text by default or as JSON or SARIF with --format json or --format sarif.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, flags)
		},
	}

	addRenderFlags(cmd, flags)

	return cmd
}

func addRenderFlags(cmd *cobra.Command, flags *renderFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "diagnostic format: text, json, sarif")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write HTML to this file instead of stdout")
	cmd.Flags().BoolVar(&flags.sanitize, "sanitize", false, "sanitize emitted HTML")
	cmd.Flags().BoolVar(&flags.simpleCodeBlocks, "simple-code-blocks", false,
		"emit bare <pre><code> instead of the line-wrapped figure form")
	cmd.Flags().BoolVar(&flags.noWrapSections, "no-wrap-sections", false, "don't wrap sections in <section>")
	cmd.Flags().BoolVar(&flags.sourceMap, "source-map", false, "attach data-tm-range attributes to block elements")
	cmd.Flags().StringVar(&flags.theme, "theme", "auto", "renderer theme hint: auto, light, dark")
	cmd.Flags().BoolVar(&flags.noGFM, "no-gfm", false, "disable GFM tables/task-lists/strikethrough/autolinks")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in text diagnostics")
}

func runRender(cmd *cobra.Command, args []string, flags *renderFlags) error {
	logger := logging.Default()

	source, path, err := readRenderSource(cmd, args)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	parseOpts := typmark.ParseOptions{
		Sanitize:         flags.sanitize,
		SimpleCodeBlocks: flags.simpleCodeBlocks,
		WrapSections:     !flags.noWrapSections,
		SourceMap:        flags.sourceMap,
		Theme:            typmark.Theme(flags.theme),
		GFMExtensions:    !flags.noGFM,
	}

	result := typmark.Parse(source, parseOpts)

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	format, err := tmreport.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	runResult := &tmrun.Result{
		Files: []tmrun.FileOutcome{{Path: path, Source: source, Result: &result}},
	}
	for _, diag := range result.Diagnostics {
		runResult.Stats.DiagnosticsTotal++
		if runResult.Stats.DiagnosticsBySeverity == nil {
			runResult.Stats.DiagnosticsBySeverity = map[string]int{}
		}
		runResult.Stats.DiagnosticsBySeverity[string(diag.Severity)]++
	}
	runResult.Stats.FilesProcessed = 1
	if len(result.Diagnostics) > 0 {
		runResult.Stats.FilesWithIssues = 1
	}

	rep, err := tmreport.New(tmreport.Options{
		Writer:      cmd.ErrOrStderr(),
		Format:      format,
		Color:       colorMode,
		ShowContext: !flags.noContext,
		ShowSummary: format == tmreport.FormatText,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(cmd.Context(), runResult); err != nil {
		logger.Error("report failed", "error", err)
		return fmt.Errorf("report results: %w", err)
	}

	if err := writeRenderOutput(cmd, flags.out, result.HTML); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Debug("render complete", logging.FieldPath, path, logging.FieldDiagnosticsTotal, len(result.Diagnostics))

	if ExitCodeFromResult(runResult, flags.strict) != ExitSuccess {
		return ErrDiagnosticsFound
	}

	return nil
}

func readRenderSource(cmd *cobra.Command, args []string) (source []byte, path string, err error) {
	if len(args) == 0 {
		source, err = io.ReadAll(cmd.InOrStdin())
		return source, "<stdin>", err
	}

	path = args[0]
	source, err = os.ReadFile(path)
	return source, path, err
}

func writeRenderOutput(cmd *cobra.Command, out string, html string) error {
	if out == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), html)
		return err
	}
	return fsutil.WriteAtomic(cmd.Context(), out, []byte(html), fsutil.DefaultFileMode)
}
