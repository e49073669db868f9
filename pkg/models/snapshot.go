package models

import (
	"fmt"
	"time"
)

// ErrorMarker replaces the shape fields of a file that could not be processed
const ErrorMarker = "Some error occurred"

// HeaderSeparator joins header values in the delimited snapshot format.
// Header values containing it do not survive a round trip.
const HeaderSeparator = "|"

// Snapshot columns, in persisted order
const (
	ColumnFilePath    = "FilePath"
	ColumnDirectory   = "Directory"
	ColumnFileName    = "FileName"
	ColumnFileType    = "FileType"
	ColumnMaxColumns  = "Max Column Count"
	ColumnHeadersList = "Headers List"
)

// SnapshotColumns lists the persisted snapshot columns in order
var SnapshotColumns = []string{
	ColumnFilePath,
	ColumnDirectory,
	ColumnFileName,
	ColumnFileType,
	ColumnMaxColumns,
	ColumnHeadersList,
}

// Snapshot is a point-in-time catalog of tabular files and their headers
type Snapshot struct {
	// Root is the scanned directory (empty for loaded snapshots)
	Root string `json:"root,omitempty"`

	// CreatedAt is when the build finished (zero for loaded CSV snapshots)
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Files holds one entry per distinct path, in catalog order
	Files []TabularFile `json:"files"`
}

// Lookup indexes the snapshot by path
func (s *Snapshot) Lookup() map[string]*TabularFile {
	index := make(map[string]*TabularFile, len(s.Files))
	for i := range s.Files {
		index[s.Files[i].Path] = &s.Files[i]
	}
	return index
}

// Validate checks the one-row-per-path invariant
func (s *Snapshot) Validate() error {
	seen := make(map[string]bool, len(s.Files))
	for _, f := range s.Files {
		if f.Path == "" {
			return &ValidationError{Field: ColumnFilePath, Message: "empty path"}
		}
		if seen[f.Path] {
			return &ValidationError{Field: ColumnFilePath, Message: fmt.Sprintf("duplicate path %q", f.Path)}
		}
		seen[f.Path] = true
	}
	return nil
}

// IdentityColumn is a snapshot field used to match files across snapshots
type IdentityColumn string

const (
	IdentityFilePath  IdentityColumn = ColumnFilePath
	IdentityDirectory IdentityColumn = ColumnDirectory
	IdentityFileName  IdentityColumn = ColumnFileName
)

// DefaultIdentityColumns is the identity set used when none is configured
var DefaultIdentityColumns = []IdentityColumn{IdentityFilePath, IdentityDirectory, IdentityFileName}

// ParseIdentityColumn validates a column name
func ParseIdentityColumn(s string) (IdentityColumn, error) {
	switch IdentityColumn(s) {
	case IdentityFilePath, IdentityDirectory, IdentityFileName:
		return IdentityColumn(s), nil
	}
	return "", &ValidationError{
		Field:   "identity",
		Message: fmt.Sprintf("unknown identity column %q (valid: FilePath, Directory, FileName)", s),
	}
}

// Value returns the identity value of a file for this column
func (c IdentityColumn) Value(f *TabularFile) string {
	switch c {
	case IdentityDirectory:
		return f.Directory
	case IdentityFileName:
		return f.Name
	default:
		return f.Path
	}
}
