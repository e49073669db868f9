package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// ComparisonHeader is the header row of a comparison file.
// The leading empty column holds the row index.
var ComparisonHeader = []string{"", "Value", "Match Type", "Check Source", "File Path"}

// WriteComparison writes a comparison result as CSV, one indexed row per entry
func WriteComparison(w io.Writer, result *models.ComparisonResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ComparisonHeader); err != nil {
		return fmt.Errorf("failed to write comparison header: %w", err)
	}

	for i, e := range result.Entries {
		row := []string{strconv.Itoa(i), e.Value, string(e.MatchType), e.CheckSource, e.FilePath}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write comparison row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteComparisonFile writes a comparison result to path
func WriteComparisonFile(path string, result *models.ComparisonResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create comparison file: %w", err)
	}

	if err := WriteComparison(file, result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ComparisonSummary describes a finished comparison
type ComparisonSummary struct {
	OperationID string                   `json:"operation_id"`
	Expected    string                   `json:"expected"`
	Actual      string                   `json:"actual"`
	Output      string                   `json:"output,omitempty"`
	New         int                      `json:"new"`
	Missing     int                      `json:"missing"`
	Entries     []models.ComparisonEntry `json:"entries"`
}

// NewComparisonSummary builds a summary for op and result
func NewComparisonSummary(op *models.CompareOperation, outputPath string, result *models.ComparisonResult) *ComparisonSummary {
	entries := result.Entries
	if entries == nil {
		entries = []models.ComparisonEntry{}
	}
	return &ComparisonSummary{
		OperationID: op.ID,
		Expected:    op.ExpectedPath,
		Actual:      op.ActualPath,
		Output:      outputPath,
		New:         result.Count(models.MatchNew),
		Missing:     result.Count(models.MatchMissing),
		Entries:     entries,
	}
}

// WriteComparisonSummary prints a summary in the given format ("human" or "json")
func WriteComparisonSummary(w io.Writer, format string, summary *ComparisonSummary) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	case "human", "":
		writeHumanComparison(w, summary)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writeHumanComparison(w io.Writer, s *ComparisonSummary) {
	fmt.Fprintf(w, "Compared %s against %s\n", s.Actual, s.Expected)

	if len(s.Entries) == 0 {
		fmt.Fprintf(w, "\nNo differences found.\n")
	} else {
		groups := (&models.ComparisonResult{Entries: s.Entries}).BySource()
		sources := make([]string, 0, len(groups))
		for source := range groups {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		for _, source := range sources {
			fmt.Fprintf(w, "\n%s (%d):\n", source, len(groups[source]))
			for _, e := range groups[source] {
				symbol := "+"
				if e.MatchType == models.MatchMissing {
					symbol = "-"
				}
				if e.FilePath != "" {
					fmt.Fprintf(w, "  %s %s  [%s]\n", symbol, e.Value, e.FilePath)
				} else {
					fmt.Fprintf(w, "  %s %s\n", symbol, e.Value)
				}
			}
		}
	}

	fmt.Fprintf(w, "\nSummary: %d new, %d missing\n", s.New, s.Missing)
	if s.Output != "" {
		fmt.Fprintf(w, "Comparison: %s\n", s.Output)
	}
}
