package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdejongh/tabsnap/pkg/catalog"
	"github.com/sdejongh/tabsnap/pkg/logging"
	"github.com/sdejongh/tabsnap/pkg/models"
	"github.com/sdejongh/tabsnap/pkg/output"
	"github.com/sdejongh/tabsnap/pkg/snapshot"
)

// BuildFlags holds build command flags
type BuildFlags struct {
	Dir        string
	Out        string
	Format     string
	Exclude    []string
	Output     string
	Messages   string
	ReadLimit  string
	NoProgress bool
}

var buildFlags BuildFlags

// NewBuildCommand creates the build command
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a reference file for a directory",
		Long: `Scan a directory tree for CSV and XLSX files, infer the header row of
each file and write a timestamped reference file. Files that cannot be read
are kept in the reference with an error marker.`,
		RunE: runBuild,
	}

	// Required flags
	cmd.Flags().StringVarP(&buildFlags.Dir, "dir", "d", "", "directory to scan (required)")
	cmd.MarkFlagRequired("dir")

	// Optional flags
	cmd.Flags().StringVarP(&buildFlags.Out, "out", "O", ".", "directory the reference file is written to")
	cmd.Flags().StringVarP(&buildFlags.Format, "format", "f", "", "reference file format: csv, json (default from config)")
	cmd.Flags().StringSliceVar(&buildFlags.Exclude, "exclude", []string{}, "glob patterns to exclude (added to config)")
	cmd.Flags().StringVarP(&buildFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&buildFlags.Messages, "messages", "", "write per-file access messages to file")
	cmd.Flags().StringVar(&buildFlags.ReadLimit, "read-limit", "", "throttle file reads, e.g. 512K or 10M bytes per second")
	cmd.Flags().BoolVar(&buildFlags.NoProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateBuildFlags(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applyBuildFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	operation, err := createBuildOperation(cfg)
	if err != nil {
		return fmt.Errorf("failed to create build operation: %w", err)
	}

	cat, err := catalog.NewLocal(operation.RootPath, operation.ExcludePatterns)
	if err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}
	defer cat.Close()

	registry, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("failed to configure readers: %w", err)
	}

	formatter := createFormatter(cfg, cmd.OutOrStdout())

	logger, err := createLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger = logger.WithFields(logging.Fields{"operation_id": operation.ID})
	if cfg.Build.ReadLimit != "" {
		logger.Info(ctx, "Read throttling enabled", logging.Fields{"read_limit": cfg.Build.ReadLimit})
	}

	builder := snapshot.NewBuilder(cat, registry, formatter, logger, operation)

	snap, report, err := builder.Build(ctx)
	if err != nil {
		if report != nil && report.Status == models.StatusCancelled {
			formatter.Complete(report)
			exitFunc(report.Status.ExitCode())
			return nil
		}
		return fmt.Errorf("build failed: %w", err)
	}

	path := output.ReferencePath(operation.OutputDir, snap.CreatedAt, operation.Format)
	if err := snapshot.WriteFile(path, snap); err != nil {
		formatter.Error(err)
		return err
	}
	report.OutputPath = path
	logger.Info(ctx, "Reference written", logging.Fields{"path": path, "files": len(snap.Files)})

	if buildFlags.Messages != "" {
		if err := writeMessages(buildFlags.Messages, report); err != nil {
			return err
		}
	}

	if err := formatter.Complete(report); err != nil {
		return err
	}

	if report.Status != models.StatusSuccess {
		exitFunc(report.Status.ExitCode())
	}
	return nil
}

// writeMessages writes one access message per line
func writeMessages(path string, report *models.BuildReport) error {
	lines := report.Messages()
	data := strings.Join(lines, "\n")
	if len(lines) > 0 {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write messages: %w", err)
	}
	return nil
}
