package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/miko-misa/typmark/internal/logging"
	"github.com/miko-misa/typmark/pkg/fsutil"
	"github.com/miko-misa/typmark/pkg/tmconfig"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

const configTemplateHeader = `# typmark configuration file.
# See https://github.com/miko-misa/typmark for the full option reference.`

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new typmark configuration file",
		Long: `Create a new .typmarkrc.yml configuration file in the current directory
with the documented defaults. The file can be customized to change the
default ParseOptions, output format, ignore globs, and color mode.

Examples:
  typmark init                        Create .typmarkrc.yml
  typmark init --output custom.yml    Write to a custom file path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default: .typmarkrc.yml)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.Default()

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".typmarkrc.yml"
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	content, err := tmconfig.NewConfig().ToYAMLWithHeader(configTemplateHeader)
	if err != nil {
		return fmt.Errorf("generate config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := fsutil.WriteAtomic(ctx, absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	logger.Info("customize your configuration by editing the file")

	return nil
}
