package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/miko-misa/typmark/internal/logging"
	"github.com/miko-misa/typmark/internal/ui/pretty"
	"github.com/miko-misa/typmark/pkg/tmconfig"
	"github.com/miko-misa/typmark/pkg/tmreport"
	"github.com/miko-misa/typmark/pkg/tmrun"
)

// ErrBatchDiagnosticsFound is returned when a batch run found diagnostics
// severe enough to fail the run (mirrors ErrDiagnosticsFound for render,
// kept distinct so callers can tell which command failed).
var ErrBatchDiagnosticsFound = errors.New("diagnostics found")

type batchFlags struct {
	format    string
	ignore    []string
	jobs      int
	strict    bool
	noContext bool
	compact   bool
}

func newBatchCommand() *cobra.Command {
	var cfg tmconfig.Config
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "batch [paths...]",
		Short: "Render a directory tree of TypMark documents",
		Long: `Render all .tmd files under the given paths (default: current directory)
and report diagnostics for each.

Examples:
  typmark batch                  # render current directory
  typmark batch docs/            # render docs directory
  typmark batch --format json    # output diagnostics as JSON for CI
  typmark batch --strict         # treat warnings as errors for exit code`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, &cfg, flags)
		},
	}

	addBatchFlags(cmd, &cfg, flags)

	return cmd
}

func addBatchFlags(cmd *cobra.Command, cfg *tmconfig.Config, flags *batchFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, sarif")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output for json/sarif formats")

	cmd.Flags().BoolVar(&cfg.Parse.Sanitize, "sanitize", false, "sanitize emitted HTML")
	cmd.Flags().BoolVar(&cfg.Parse.SimpleCodeBlocks, "simple-code-blocks", false,
		"emit bare <pre><code> instead of the line-wrapped figure form")
	cmd.Flags().BoolVar(&cfg.Parse.SourceMap, "source-map", false, "attach data-tm-range attributes to block elements")
}

func runBatch(cmd *cobra.Command, args []string, cfg *tmconfig.Config, flags *batchFlags) error {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	if cmd.Flags().Changed("format") {
		cfg.Format = tmconfig.OutputFormat(flags.format)
	}
	if cmd.Flags().Changed("ignore") {
		cfg.Ignore = flags.ignore
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = flags.jobs
	}
	if cmd.Flags().Changed("source-map") {
		cfg.Parse.SourceMap = true
	}

	loadResult, err := tmconfig.Load(ctx, tmconfig.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	})
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}

	finalCfg := loadResult.Config

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	runOpts := tmrun.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   tmrun.DefaultExtensions(),
		ExcludeGlobs: finalCfg.Ignore,
		Jobs:         finalCfg.Jobs,
		Parse:        finalCfg.Parse.ToParseOptions(),
	}

	logger.Debug("starting batch run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	runner := tmrun.New()
	result, err := runner.Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("batch run failed"), err)
	}

	logger.Debug("batch run complete",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesWithIssues, result.Stats.FilesWithIssues,
		logging.FieldDiagnosticsTotal, result.Stats.DiagnosticsTotal,
	)

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	if finalCfg.Format == tmconfig.FormatTable {
		colorEnabled := pretty.IsColorEnabled(colorMode, cmd.OutOrStdout())
		styles := pretty.NewStyles(colorEnabled)
		tableFormatter := pretty.NewTableFormatter(styles, colorEnabled, 0)
		fmt.Fprint(cmd.OutOrStdout(), tableFormatter.FormatTable(result))
		fmt.Fprint(cmd.OutOrStdout(), tableFormatter.FormatTableSummary(result.Stats, ""))

		if ExitCodeFromResult(result, flags.strict) != ExitSuccess {
			return ErrBatchDiagnosticsFound
		}
		return nil
	}

	format, err := tmreport.ParseFormat(string(finalCfg.Format))
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := tmreport.New(tmreport.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       colorMode,
		ShowContext: !flags.noContext,
		ShowSummary: true,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", "error", err)
		return fmt.Errorf("report results: %w", err)
	}

	if ExitCodeFromResult(result, flags.strict) != ExitSuccess {
		return ErrBatchDiagnosticsFound
	}

	return nil
}
