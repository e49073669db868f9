package output

import (
	"github.com/sdejongh/tabsnap/pkg/models"
)

// Progress update types
const (
	UpdateFileStart    = "file_start"
	UpdateFileComplete = "file_complete"
	UpdateFileError    = "file_error"
)

// ProgressUpdate represents a progress notification during a snapshot build
type ProgressUpdate struct {
	Type        string
	FilePath    string
	FileType    models.FileType
	ColumnCount int
	CurrentFile int
	TotalFiles  int
	Error       error
}

// Formatter defines the interface for build output.
// Implementations include human-readable, JSON and progress bar formatters.
type Formatter interface {
	// Start is called once the tabular files are known
	Start(totalFiles int) error

	// Progress reports progress during the build
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays summary
	Complete(report *models.BuildReport) error

	// Error reports a batch-level error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
