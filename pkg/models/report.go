package models

import (
	"time"
)

// BuildReport describes the outcome of a snapshot build
type BuildReport struct {
	// Operation details
	OperationID string
	RootPath    string
	OutputPath  string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats BuildStatistics

	// Diagnostics holds one access message per tabular file, in build order
	Diagnostics []Diagnostic

	// Skipped lists paths below the root that could not be listed
	Skipped []SkippedPath

	// Overall status
	Status Status
}

// BuildStatistics holds build counters
type BuildStatistics struct {
	FilesScanned     int // Regular files found by the catalog
	FilesTabular     int // Files with a supported extension
	FilesSucceeded   int
	FilesFailed      int
	FilesUnsupported int // Files skipped for their extension
	PathsSkipped     int // Unreadable directories or entries left out of the walk
}

// SkippedPath is an entry the catalog could not read
type SkippedPath struct {
	Path  string
	Error string `json:",omitempty"`
}

// Diagnostic is the access result for a single tabular file
type Diagnostic struct {
	Path    string
	Type    FileType
	Success bool
	Error   string `json:",omitempty"`
}

// String renders the diagnostic as an access message line.
// The CSV label is padded so both types align.
func (d Diagnostic) String() string {
	label := "XLSX Access "
	if d.Type == TypeCSV {
		label = "CSV Access  "
	}
	outcome := "SUCCESS"
	if !d.Success {
		outcome = "FAILURE"
	}
	return label + outcome + " | " + d.Path
}

// Messages returns every diagnostic as a message line
func (r *BuildReport) Messages() []string {
	lines := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		lines[i] = d.String()
	}
	return lines
}

// Finalize derives status and timing once the build loop is done
func (r *BuildReport) Finalize(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)

	switch {
	case r.Stats.FilesFailed == 0:
		r.Status = StatusSuccess
	case r.Stats.FilesSucceeded == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}

// Status represents the overall result
type Status string

const (
	// StatusSuccess indicates every tabular file was read
	StatusSuccess Status = "success"
	// StatusPartial indicates some files failed
	StatusPartial Status = "partial"
	// StatusFailed indicates every tabular file failed
	StatusFailed Status = "failed"
	// StatusCancelled indicates the build was cancelled
	StatusCancelled Status = "cancelled"
)

// ExitCode returns the appropriate exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
