package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/tabsnap/internal/platform"
	"github.com/sdejongh/tabsnap/pkg/compare"
	"github.com/sdejongh/tabsnap/pkg/config"
	"github.com/sdejongh/tabsnap/pkg/logging"
	"github.com/sdejongh/tabsnap/pkg/models"
	"github.com/sdejongh/tabsnap/pkg/output"
)

// exitFunc terminates the process with a report status; replaced in tests
var exitFunc = os.Exit

// validateBuildFlags validates the build command flags
func validateBuildFlags() error {
	if err := platform.RequireDir(buildFlags.Dir); err != nil {
		return fmt.Errorf("directory to scan: %w", err)
	}
	if err := platform.EnsureDir(buildFlags.Out); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	validFormats := map[string]bool{"": true, "csv": true, "json": true}
	if !validFormats[buildFlags.Format] {
		return fmt.Errorf("invalid snapshot format: %s (valid: csv, json)", buildFlags.Format)
	}

	return nil
}

// validateCompareFlags validates the compare command flags
func validateCompareFlags() error {
	if err := platform.RequireFile(compareFlags.Expected); err != nil {
		return fmt.Errorf("expected reference: %w", err)
	}
	if err := platform.RequireFile(compareFlags.Actual); err != nil {
		return fmt.Errorf("actual reference: %w", err)
	}
	if err := platform.EnsureDir(compareFlags.Out); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	for _, col := range compareFlags.Identity {
		if _, err := models.ParseIdentityColumn(col); err != nil {
			return err
		}
	}

	validMatches := map[string]bool{"": true, "exact": true, "trim": true, "fold": true}
	if !validMatches[compareFlags.HeaderMatch] {
		return fmt.Errorf("invalid header match: %s (valid: exact, trim, fold)", compareFlags.HeaderMatch)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	return config.Load(globalFlags.ConfigFile)
}

// applyGlobalFlags overrides config values shared by every command
func applyGlobalFlags(cfg *config.Config) {
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	if globalFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
}

// applyBuildFlags overrides config values with build flags
func applyBuildFlags(cfg *config.Config) {
	applyGlobalFlags(cfg)

	if buildFlags.Format != "" {
		cfg.Build.Format = models.SnapshotFormat(buildFlags.Format)
	}
	if len(buildFlags.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, buildFlags.Exclude...)
	}
	if buildFlags.Output != "" {
		cfg.Output.Format = buildFlags.Output
	}
	if buildFlags.ReadLimit != "" {
		cfg.Build.ReadLimit = buildFlags.ReadLimit
	}
	if buildFlags.NoProgress {
		cfg.Output.Progress = false
	}
}

// applyCompareFlags overrides config values with compare flags
func applyCompareFlags(cfg *config.Config) {
	applyGlobalFlags(cfg)

	if len(compareFlags.Identity) > 0 {
		cols := make([]models.IdentityColumn, len(compareFlags.Identity))
		for i, c := range compareFlags.Identity {
			cols[i] = models.IdentityColumn(c)
		}
		cfg.Compare.IdentityColumns = cols
	}
	if compareFlags.HeaderMatch != "" {
		cfg.Compare.HeaderMatch = models.HeaderMatch(compareFlags.HeaderMatch)
	}
	if compareFlags.Output != "" {
		cfg.Output.Format = compareFlags.Output
	}
}

// createBuildOperation creates a build operation from configuration
func createBuildOperation(cfg *config.Config) (*models.BuildOperation, error) {
	operation := &models.BuildOperation{
		ID:              uuid.New().String(),
		RootPath:        platform.NormalizePath(buildFlags.Dir),
		OutputDir:       platform.NormalizePath(buildFlags.Out),
		Format:          cfg.Build.Format,
		ExcludePatterns: cfg.Exclude,
		CreatedAt:       time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// createCompareOperation creates a compare operation from configuration
func createCompareOperation(cfg *config.Config) (*models.CompareOperation, error) {
	operation := &models.CompareOperation{
		ID:              uuid.New().String(),
		ExpectedPath:    compareFlags.Expected,
		ActualPath:      compareFlags.Actual,
		OutputDir:       platform.NormalizePath(compareFlags.Out),
		IdentityColumns: cfg.Compare.IdentityColumns,
		HeaderMatch:     cfg.Compare.HeaderMatch,
		CreatedAt:       time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// compareOptions converts an operation into differ options
func compareOptions(op *models.CompareOperation) compare.Options {
	return compare.Options{
		IdentityColumns: op.IdentityColumns,
		HeaderMatch:     op.HeaderMatch,
	}
}

// createFormatter selects the build output for the configuration
func createFormatter(cfg *config.Config, w io.Writer) output.Formatter {
	if cfg.Output.Quiet {
		w = io.Discard
	}

	switch cfg.Output.Format {
	case "json":
		return output.NewJSONFormatter(w)
	default:
		if cfg.Output.Progress && !globalFlags.Verbose && output.IsTerminal(w) {
			return output.NewProgressFormatter(w)
		}
		return output.NewHumanFormatter(w, globalFlags.Verbose)
	}
}

// createLogger creates a logger based on configuration.
// Logs go to the configured file, to stderr when logging is enabled
// without a file, and nowhere otherwise.
func createLogger(cfg config.LoggingConfig, stderr io.Writer) (logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NewNullLogger(), nil
	}

	format := logging.ParseFormat(cfg.Format)
	level := logging.ParseLevel(cfg.Level)

	if cfg.File == "" {
		// hide Close so the logger never closes stderr
		return logging.NewStreamLogger(struct{ io.Writer }{stderr}, format, level), nil
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     format,
		Level:      level,
		MaxSize:    int64(cfg.MaxSizeMB) * 1024 * 1024,
		MaxBackups: cfg.MaxBackups,
	})
}
