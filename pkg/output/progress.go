package output

import (
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// ProgressFormatter shows a progress bar while files are read
type ProgressFormatter struct {
	writer io.Writer
	bar    *pb.ProgressBar
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter(writer io.Writer) *ProgressFormatter {
	if writer == nil {
		writer = os.Stdout
	}
	return &ProgressFormatter{writer: writer}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Start initializes the progress bar
func (f *ProgressFormatter) Start(totalFiles int) error {
	f.bar = pb.New(totalFiles).SetWriter(f.writer)
	f.bar.Set("prefix", "Reading")
	f.bar.Start()
	return nil
}

// Progress advances the bar when a file is done
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case UpdateFileStart:
		f.bar.Set("suffix", shorten(update.FilePath, 40))
	case UpdateFileComplete, UpdateFileError:
		f.bar.Increment()
	}
	return nil
}

// Complete stops the bar and displays summary
func (f *ProgressFormatter) Complete(report *models.BuildReport) error {
	if f.bar != nil {
		f.bar.Set("suffix", "")
		f.bar.Finish()
	}
	writeBuildSummary(f.writer, report)
	return nil
}

// Error reports an error below the bar
func (f *ProgressFormatter) Error(err error) error {
	fmt.Fprintf(f.writer, "\nError: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

// shorten keeps the tail of a path so the file name stays visible
func shorten(path string, max int) string {
	runes := []rune(path)
	if len(runes) <= max {
		return path
	}
	return "..." + string(runes[len(runes)-max+3:])
}
