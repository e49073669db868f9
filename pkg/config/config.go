package config

import (
	"fmt"

	"github.com/sdejongh/tabsnap/pkg/models"
	"github.com/sdejongh/tabsnap/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Build   BuildConfig   `yaml:"build"`
	Compare CompareConfig `yaml:"compare"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Exclude []string      `yaml:"exclude"`
}

// BuildConfig holds snapshot build settings
type BuildConfig struct {
	Format    models.SnapshotFormat `yaml:"format"`     // "csv" or "json"
	ReadLimit string                `yaml:"read_limit"` // e.g. "10M" bytes per second (empty = unlimited)
	Overrides []OverrideConfig      `yaml:"overrides"`
}

// OverrideConfig describes an alternate reader for matching files
type OverrideConfig struct {
	Name      string `yaml:"name"`
	Pattern   string `yaml:"pattern"`   // Glob on the base name, or substring of the path
	When      string `yaml:"when"`      // "always" or "on-failure"
	Reader    string `yaml:"reader"`    // "delimited" or "spreadsheet"
	Delimiter string `yaml:"delimiter"` // Single character, "tab" or "comma"
	Encoding  string `yaml:"encoding"`
	SkipRows  int    `yaml:"skip_rows"`
}

// CompareConfig holds comparison settings
type CompareConfig struct {
	IdentityColumns []models.IdentityColumn `yaml:"identity_columns"`
	HeaderMatch     models.HeaderMatch      `yaml:"header_match"` // "exact", "trim" or "fold"
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar on terminals
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"`      // "json" or "text"
	Level      string `yaml:"level"`       // "debug", "info", "warn", "error"
	File       string `yaml:"file"`        // Log file path (empty = stderr)
	MaxSizeMB  int    `yaml:"max_size_mb"` // Rotate the log file past this size (0 = never)
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Format: models.FormatCSV,
			Overrides: []OverrideConfig{
				{
					Name:      "linkedin-export",
					Pattern:   "BRAND-WBC-QA LinkedIn",
					When:      "on-failure",
					Reader:    "delimited",
					Delimiter: "tab",
					Encoding:  "utf-16",
					SkipRows:  5,
				},
			},
		},
		Compare: CompareConfig{
			IdentityColumns: append([]models.IdentityColumn(nil), models.DefaultIdentityColumns...),
			HeaderMatch:     models.HeaderMatchExact,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Format:     "text",
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Exclude: []string{
			"~$*",
			".git/",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Build.Format != models.FormatCSV && c.Build.Format != models.FormatJSON {
		return &models.ValidationError{
			Field:   "build.format",
			Message: "must be 'csv' or 'json'",
		}
	}

	if _, err := ratelimit.ParseRate(c.Build.ReadLimit); err != nil {
		return &models.ValidationError{
			Field:   "build.read_limit",
			Message: err.Error(),
		}
	}

	for i, o := range c.Build.Overrides {
		if _, err := o.reader(); err != nil {
			return &models.ValidationError{
				Field:   fieldName("build.overrides", i, o.Name),
				Message: err.Error(),
			}
		}
		if o.Pattern == "" {
			return &models.ValidationError{
				Field:   fieldName("build.overrides", i, o.Name),
				Message: "pattern is required",
			}
		}
		switch o.When {
		case "", "always", "on-failure":
		default:
			return &models.ValidationError{
				Field:   fieldName("build.overrides", i, o.Name),
				Message: "when must be 'always' or 'on-failure'",
			}
		}
	}

	for _, col := range c.Compare.IdentityColumns {
		if _, err := models.ParseIdentityColumn(string(col)); err != nil {
			return &models.ValidationError{
				Field:   "compare.identity_columns",
				Message: fmt.Sprintf("unknown column %q (valid: FilePath, Directory, FileName)", col),
			}
		}
	}

	switch c.Compare.HeaderMatch {
	case models.HeaderMatchExact, models.HeaderMatchTrim, models.HeaderMatchFold:
	default:
		return &models.ValidationError{
			Field:   "compare.header_match",
			Message: "must be 'exact', 'trim' or 'fold'",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size_mb",
			Message: "rotation settings must not be negative",
		}
	}

	return nil
}
