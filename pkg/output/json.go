package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// JSONFormatter writes a single JSON document once the build completes
type JSONFormatter struct {
	writer io.Writer
	errors []string
}

// JSONBuildData represents the build report in JSON
type JSONBuildData struct {
	OperationID string               `json:"operation_id"`
	Root        string               `json:"root"`
	Output      string               `json:"output,omitempty"`
	Status      string               `json:"status"`
	StartedAt   time.Time            `json:"started_at"`
	Duration    string               `json:"duration"`
	DurationMs  int64                `json:"duration_ms"`
	Stats       JSONStatsData        `json:"stats"`
	Files       []JSONDiagnosticData `json:"files"`
	Skipped     []JSONSkippedData    `json:"skipped,omitempty"`
	Errors      []string             `json:"errors,omitempty"`
}

// JSONSkippedData represents a path left out of the walk
type JSONSkippedData struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// JSONStatsData represents build counters in JSON
type JSONStatsData struct {
	Scanned     int `json:"scanned"`
	Tabular     int `json:"tabular"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Unsupported int `json:"unsupported"`
	Skipped     int `json:"skipped"`
}

// JSONDiagnosticData represents one per-file access result
type JSONDiagnosticData struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(writer io.Writer) *JSONFormatter {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONFormatter{writer: writer}
}

// Start does nothing; everything is written on Complete
func (f *JSONFormatter) Start(totalFiles int) error {
	return nil
}

// Progress does nothing; per-file results are part of the report
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report
func (f *JSONFormatter) Complete(report *models.BuildReport) error {
	data := JSONBuildData{
		OperationID: report.OperationID,
		Root:        report.RootPath,
		Output:      report.OutputPath,
		Status:      string(report.Status),
		StartedAt:   report.StartTime,
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			Scanned:     report.Stats.FilesScanned,
			Tabular:     report.Stats.FilesTabular,
			Succeeded:   report.Stats.FilesSucceeded,
			Failed:      report.Stats.FilesFailed,
			Unsupported: report.Stats.FilesUnsupported,
			Skipped:     report.Stats.PathsSkipped,
		},
		Files:  make([]JSONDiagnosticData, 0, len(report.Diagnostics)),
		Errors: f.errors,
	}

	for _, d := range report.Diagnostics {
		data.Files = append(data.Files, JSONDiagnosticData{
			Path:    d.Path,
			Type:    string(d.Type),
			Success: d.Success,
			Message: d.String(),
			Error:   d.Error,
		})
	}

	for _, s := range report.Skipped {
		data.Skipped = append(data.Skipped, JSONSkippedData{Path: s.Path, Error: s.Error})
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error records a batch-level error for the final document
func (f *JSONFormatter) Error(err error) error {
	f.errors = append(f.errors, err.Error())
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
