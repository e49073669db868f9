// Package tabular reads delimited and spreadsheet files into rows of cells
// and infers which row holds the column headers.
//
// The header is taken to be the first of the widest rows. Exports often carry
// banner or title rows above the real header; those are narrower and are
// skipped. A data row as wide as the header that comes before it would be
// picked instead, which is an accepted limitation of the heuristic.
package tabular

// WidthMode selects how the width of a row is measured
type WidthMode int

const (
	// WidthDelimited counts every field, empty ones included
	WidthDelimited WidthMode = iota
	// WidthGrid counts only non-empty cells
	WidthGrid
)

// String returns the mode name
func (m WidthMode) String() string {
	if m == WidthGrid {
		return "grid"
	}
	return "delimited"
}

// Table holds the raw rows of a file and how their width is measured
type Table struct {
	Rows [][]string
	Mode WidthMode
}

// Width returns the width of a row under the table's mode
func (t Table) Width(row []string) int {
	if t.Mode == WidthDelimited {
		return len(row)
	}
	n := 0
	for _, cell := range row {
		if cell != "" {
			n++
		}
	}
	return n
}

// MaxWidth returns the width of the widest row
func (t Table) MaxWidth() int {
	max := 0
	for _, row := range t.Rows {
		if w := t.Width(row); w > max {
			max = w
		}
	}
	return max
}

// DetectHeader returns the first row whose width equals the table's maximum
// width, along with that width. Grid header rows are returned without their
// trailing blank cells; blanks inside the row are kept as empty strings.
func DetectHeader(t Table) ([]string, int, error) {
	maxWidth := t.MaxWidth()
	if maxWidth == 0 {
		return nil, 0, &EmptyFileError{}
	}

	for _, row := range t.Rows {
		if t.Width(row) != maxWidth {
			continue
		}
		header := row
		if t.Mode == WidthGrid {
			header = trimTrailingBlanks(row)
		}
		return append([]string(nil), header...), maxWidth, nil
	}

	// unreachable: some row has width maxWidth
	return nil, 0, &EmptyFileError{}
}

func trimTrailingBlanks(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}
