package tabular

import (
	"bytes"
	"context"
	"errors"

	"github.com/sdejongh/tabsnap/pkg/ratelimit"
	"github.com/xuri/excelize/v2"
)

// SpreadsheetReader reads the first worksheet of an .xlsx workbook.
// Cell values come back as their formatted text; empty cells are "".
type SpreadsheetReader struct {
	// Limiter throttles file reads (unlimited when nil)
	Limiter *ratelimit.Limiter
}

// NewSpreadsheetReader returns the default reader for .xlsx files
func NewSpreadsheetReader() *SpreadsheetReader {
	return &SpreadsheetReader{}
}

// Name returns the reader name
func (r *SpreadsheetReader) Name() string {
	return "spreadsheet"
}

// SetLimiter throttles subsequent reads with l
func (r *SpreadsheetReader) SetLimiter(l *ratelimit.Limiter) {
	r.Limiter = l
}

// Read loads every row of the first sheet
func (r *SpreadsheetReader) Read(ctx context.Context, path string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	data, err := readFile(ctx, path, r.Limiter)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Table{}, ctxErr
		}
		return Table{}, &UnreadableFileError{Path: path, Err: err}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, &UnreadableFileError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, &UnreadableFileError{Path: path, Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, &UnreadableFileError{Path: path, Err: err}
	}

	return Table{Rows: rows, Mode: WidthGrid}, nil
}
