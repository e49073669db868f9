package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/tabsnap/pkg/compare"
	"github.com/sdejongh/tabsnap/pkg/logging"
	"github.com/sdejongh/tabsnap/pkg/output"
	"github.com/sdejongh/tabsnap/pkg/snapshot"
)

// CompareFlags holds compare command flags
type CompareFlags struct {
	Expected    string
	Actual      string
	Out         string
	Identity    []string
	HeaderMatch string
	Output      string
	FailOnDiff  bool
}

var compareFlags CompareFlags

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two reference files",
		Long: `Compare an expected reference file with an actual one and report files
that are new or missing, matched on each identity column, and headers that
are new or missing in files present in both. The result is written to a
timestamped comparison file.`,
		RunE: runCompare,
	}

	// Required flags
	cmd.Flags().StringVarP(&compareFlags.Expected, "expected", "e", "", "expected (older) reference file (required)")
	cmd.Flags().StringVarP(&compareFlags.Actual, "actual", "a", "", "actual (newer) reference file (required)")
	cmd.MarkFlagRequired("expected")
	cmd.MarkFlagRequired("actual")

	// Optional flags
	cmd.Flags().StringVarP(&compareFlags.Out, "out", "O", ".", "directory the comparison file is written to")
	cmd.Flags().StringSliceVar(&compareFlags.Identity, "identity", []string{}, "identity columns: FilePath, Directory, FileName (default from config)")
	cmd.Flags().StringVar(&compareFlags.HeaderMatch, "header-match", "", "header equality: exact, trim, fold (default from config)")
	cmd.Flags().StringVarP(&compareFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().BoolVar(&compareFlags.FailOnDiff, "fail-on-diff", false, "exit with status 1 when differences are found")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateCompareFlags(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applyCompareFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	operation, err := createCompareOperation(cfg)
	if err != nil {
		return fmt.Errorf("failed to create compare operation: %w", err)
	}

	logger, err := createLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger = logger.WithFields(logging.Fields{"operation_id": operation.ID})

	expected, err := snapshot.LoadFile(operation.ExpectedPath)
	if err != nil {
		return err
	}
	actual, err := snapshot.LoadFile(operation.ActualPath)
	if err != nil {
		return err
	}

	logger.Info(ctx, "Comparing references", logging.Fields{
		"expected":       operation.ExpectedPath,
		"expected_files": len(expected.Files),
		"actual":         operation.ActualPath,
		"actual_files":   len(actual.Files),
	})

	result, err := compare.Compare(expected, actual, compareOptions(operation))
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	path := output.ComparisonPath(operation.OutputDir, time.Now())
	if err := output.WriteComparisonFile(path, result); err != nil {
		return err
	}
	logger.Info(ctx, "Comparison written", logging.Fields{"path": path, "rows": len(result.Entries)})

	var out io.Writer = cmd.OutOrStdout()
	if cfg.Output.Quiet {
		out = io.Discard
	}
	summary := output.NewComparisonSummary(operation, path, result)
	if err := output.WriteComparisonSummary(out, cfg.Output.Format, summary); err != nil {
		return err
	}

	if compareFlags.FailOnDiff && !result.Empty() {
		exitFunc(1)
	}
	return nil
}
