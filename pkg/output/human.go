package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	totalFiles int
	verbose    bool
}

// NewHumanFormatter creates a new human-readable formatter.
// Per-file lines are printed only when verbose is set.
func NewHumanFormatter(writer io.Writer, verbose bool) *HumanFormatter {
	if writer == nil {
		writer = io.Discard
	}
	return &HumanFormatter{writer: writer, verbose: verbose}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(totalFiles int) error {
	f.totalFiles = totalFiles
	fmt.Fprintf(f.writer, "Building reference: %d tabular files\n", totalFiles)
	return nil
}

// Progress reports progress during the build
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if !f.verbose {
		return nil
	}

	switch update.Type {
	case UpdateFileComplete:
		fmt.Fprintf(f.writer, "[%d/%d] ✓ %s (%d columns)\n",
			update.CurrentFile, f.totalFiles, update.FilePath, update.ColumnCount)

	case UpdateFileError:
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %v\n",
			update.CurrentFile, f.totalFiles, update.FilePath, update.Error)
	}

	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.BuildReport) error {
	writeBuildSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	fmt.Fprintf(f.writer, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func writeBuildSummary(w io.Writer, report *models.BuildReport) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Reference file build task complete in %s\n", formatDuration(report.Duration))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Files scanned:      %d\n", report.Stats.FilesScanned)
	fmt.Fprintf(w, "  Tabular files:      %d\n", report.Stats.FilesTabular)
	fmt.Fprintf(w, "  Read successfully:  %d\n", report.Stats.FilesSucceeded)
	fmt.Fprintf(w, "  Failed:             %d\n", report.Stats.FilesFailed)
	fmt.Fprintf(w, "  Other files:        %d\n", report.Stats.FilesUnsupported)
	if report.Stats.PathsSkipped > 0 {
		fmt.Fprintf(w, "  Unreadable paths:   %d\n", report.Stats.PathsSkipped)
	}
	if report.OutputPath != "" {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Reference: %s\n", report.OutputPath)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if report.Stats.FilesFailed > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, d := range report.Diagnostics {
			if !d.Success {
				fmt.Fprintf(w, "  %s: %s\n", d.Path, d.Error)
			}
		}
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped:\n")
		for _, s := range report.Skipped {
			fmt.Fprintf(w, "  %s: %s\n", s.Path, s.Error)
		}
	}
}

// formatDuration formats a duration as "12 min 45 sec", "1 hr(s) 2 min 3 sec" or
// "3 day(s) 13 hr(s) 56 min 34 sec"
func formatDuration(d time.Duration) string {
	total := int64(d.Round(time.Second) / time.Second)
	days := total / 86400
	hrs := total % 86400 / 3600
	mins := total % 3600 / 60
	secs := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d day(s) %d hr(s) %d min %d sec", days, hrs, mins, secs)
	case hrs > 0:
		return fmt.Sprintf("%d hr(s) %d min %d sec", hrs, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%d min %d sec", mins, secs)
	default:
		return fmt.Sprintf("%d sec", secs)
	}
}
