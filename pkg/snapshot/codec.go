package snapshot

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// jsonVersion is the layout version written in JSON snapshots
const jsonVersion = 1

// FormatError reports a malformed snapshot
type FormatError struct {
	Line    int // 1-based; 0 when the error is not tied to a line
	Column  string
	Message string
}

func (e *FormatError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("snapshot line %d, column %q: %s", e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("snapshot line %d: %s", e.Line, e.Message)
	case e.Column != "":
		return fmt.Sprintf("snapshot column %q: %s", e.Column, e.Message)
	default:
		return "snapshot: " + e.Message
	}
}

// FormatForPath picks the snapshot format from a file extension
func FormatForPath(path string) models.SnapshotFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return models.FormatJSON
	}
	return models.FormatCSV
}

// Write encodes a snapshot
func Write(w io.Writer, snap *models.Snapshot, format models.SnapshotFormat) error {
	switch format {
	case models.FormatCSV, "":
		return writeCSV(w, snap)
	case models.FormatJSON:
		return writeJSON(w, snap)
	default:
		return fmt.Errorf("unknown snapshot format: %s", format)
	}
}

// Load decodes a snapshot and checks that every path appears once
func Load(r io.Reader, format models.SnapshotFormat) (*models.Snapshot, error) {
	var (
		snap *models.Snapshot
		err  error
	)
	switch format {
	case models.FormatCSV, "":
		snap, err = loadCSV(r)
	case models.FormatJSON:
		snap, err = loadJSON(r)
	default:
		return nil, fmt.Errorf("unknown snapshot format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	if err := snap.Validate(); err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return nil, &FormatError{Column: ve.Field, Message: ve.Message}
		}
		return nil, err
	}
	return snap, nil
}

// WriteFile writes a snapshot to path in the format implied by its extension
func WriteFile(path string, snap *models.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	if err := Write(file, snap, FormatForPath(path)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return file.Close()
}

// LoadFile reads a snapshot from path in the format implied by its extension
func LoadFile(path string) (*models.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	snap, err := Load(file, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", path, err)
	}
	return snap, nil
}

func writeCSV(w io.Writer, snap *models.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.SnapshotColumns); err != nil {
		return err
	}

	for _, f := range snap.Files {
		count := strconv.Itoa(f.ColumnCount)
		headers := strings.Join(f.Headers, models.HeaderSeparator)
		if f.Failed {
			count = models.ErrorMarker
			headers = models.ErrorMarker
		}
		row := []string{f.Path, f.Directory, f.Name, f.Extension, count, headers}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func loadCSV(r io.Reader) (*models.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &FormatError{Message: "empty snapshot"}
	}
	if err != nil {
		return nil, &FormatError{Line: 1, Message: err.Error()}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, required := range []string{models.ColumnFilePath, models.ColumnDirectory, models.ColumnFileName, models.ColumnHeadersList} {
		if _, ok := index[required]; !ok {
			return nil, &FormatError{Line: 1, Column: required, Message: "missing column"}
		}
	}

	field := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	snap := &models.Snapshot{Files: []models.TabularFile{}}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Line: line, Message: err.Error()}
		}

		f := models.TabularFile{
			FileRecord: models.FileRecord{
				Path:      field(row, models.ColumnFilePath),
				Directory: field(row, models.ColumnDirectory),
				Name:      field(row, models.ColumnFileName),
				Extension: field(row, models.ColumnFileType),
			},
		}
		if _, ok := index[models.ColumnFileType]; !ok {
			f.Extension = filepath.Ext(f.Path)
		}

		count := field(row, models.ColumnMaxColumns)
		headers := field(row, models.ColumnHeadersList)

		switch {
		case count == models.ErrorMarker, count == "" && headers == models.ErrorMarker:
			f.Failed = true
		default:
			n, err := parseCount(count)
			if err != nil {
				return nil, &FormatError{Line: line, Column: models.ColumnMaxColumns, Message: err.Error()}
			}
			f.ColumnCount = n
			f.Headers = strings.Split(headers, models.HeaderSeparator)
		}

		snap.Files = append(snap.Files, f)
	}

	return snap, nil
}

// parseCount accepts integers and integral floats such as "3.0"
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d", n)
		}
		return n, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int(v), nil
}

type jsonSnapshot struct {
	Version int `json:"version"`
	*models.Snapshot
}

func writeJSON(w io.Writer, snap *models.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonSnapshot{Version: jsonVersion, Snapshot: snap})
}

func loadJSON(r io.Reader) (*models.Snapshot, error) {
	doc := jsonSnapshot{Snapshot: &models.Snapshot{}}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &FormatError{Message: err.Error()}
	}
	if doc.Version != jsonVersion {
		return nil, &FormatError{Column: "version", Message: fmt.Sprintf("unsupported version %d", doc.Version)}
	}
	if doc.Files == nil {
		doc.Files = []models.TabularFile{}
	}
	for i := range doc.Files {
		if doc.Files[i].Failed {
			doc.Files[i].ColumnCount = 0
			doc.Files[i].Headers = nil
		}
	}
	return doc.Snapshot, nil
}
