package models

import (
	"time"
)

// SnapshotFormat selects the persisted snapshot encoding
type SnapshotFormat string

const (
	// FormatCSV is the delimited reference file with pipe-joined headers
	FormatCSV SnapshotFormat = "csv"
	// FormatJSON stores headers as a list
	FormatJSON SnapshotFormat = "json"
)

// HeaderMatch defines how header values are considered equal
type HeaderMatch string

const (
	// HeaderMatchExact compares values byte for byte
	HeaderMatchExact HeaderMatch = "exact"
	// HeaderMatchTrim ignores leading and trailing whitespace
	HeaderMatchTrim HeaderMatch = "trim"
	// HeaderMatchFold ignores surrounding whitespace and case
	HeaderMatchFold HeaderMatch = "fold"
)

// BuildOperation describes a snapshot build
type BuildOperation struct {
	ID              string
	RootPath        string
	OutputDir       string
	Format          SnapshotFormat
	ExcludePatterns []string
	CreatedAt       time.Time
}

// Validate checks if the build configuration is valid
func (op *BuildOperation) Validate() error {
	if op.RootPath == "" {
		return &ValidationError{Field: "RootPath", Message: "directory to scan is required"}
	}
	if op.OutputDir == "" {
		return &ValidationError{Field: "OutputDir", Message: "output directory is required"}
	}
	if op.Format != FormatCSV && op.Format != FormatJSON {
		return &ValidationError{Field: "Format", Message: "must be 'csv' or 'json'"}
	}
	return nil
}

// CompareOperation describes a snapshot comparison
type CompareOperation struct {
	ID              string
	ExpectedPath    string
	ActualPath      string
	OutputDir       string
	IdentityColumns []IdentityColumn
	HeaderMatch     HeaderMatch
	CreatedAt       time.Time
}

// Validate checks if the compare configuration is valid
func (op *CompareOperation) Validate() error {
	if op.ExpectedPath == "" {
		return &ValidationError{Field: "ExpectedPath", Message: "expected snapshot is required"}
	}
	if op.ActualPath == "" {
		return &ValidationError{Field: "ActualPath", Message: "actual snapshot is required"}
	}
	if op.OutputDir == "" {
		return &ValidationError{Field: "OutputDir", Message: "output directory is required"}
	}
	for _, col := range op.IdentityColumns {
		if _, err := ParseIdentityColumn(string(col)); err != nil {
			return err
		}
	}
	switch op.HeaderMatch {
	case HeaderMatchExact, HeaderMatchTrim, HeaderMatchFold:
	default:
		return &ValidationError{Field: "HeaderMatch", Message: "must be 'exact', 'trim' or 'fold'"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
