package models

import (
	"path/filepath"
	"strings"
)

// FileRecord describes a regular file found while walking a directory tree
type FileRecord struct {
	// Path is the full path as produced by the walk (root joined with the relative path)
	Path string `json:"path"`

	// Directory is the parent directory of Path
	Directory string `json:"directory"`

	// Name is the base name without its extension
	Name string `json:"name"`

	// Extension includes the leading dot, with the case found on disk
	Extension string `json:"extension"`
}

// NewFileRecord splits a path into its catalog fields
func NewFileRecord(path string) FileRecord {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return FileRecord{
		Path:      path,
		Directory: filepath.Dir(path),
		Name:      strings.TrimSuffix(base, ext),
		Extension: ext,
	}
}

// FileType identifies a supported tabular format
type FileType string

const (
	// TypeCSV is delimited text
	TypeCSV FileType = "CSV"
	// TypeXLSX is an Office Open XML spreadsheet
	TypeXLSX FileType = "XLSX"
	// TypeUnknown is anything else
	TypeUnknown FileType = ""
)

// TypeForExtension maps an extension to a file type. Matching is exact:
// ".CSV" is not a tabular extension.
func TypeForExtension(ext string) FileType {
	switch ext {
	case ".csv":
		return TypeCSV
	case ".xlsx":
		return TypeXLSX
	default:
		return TypeUnknown
	}
}

// TabularFile is a cataloged file with its inferred shape.
// When Failed is set, ColumnCount and Headers carry no information and the
// persisted row holds ErrorMarker in their place.
type TabularFile struct {
	FileRecord

	// ColumnCount is the widest row found in the file
	ColumnCount int `json:"column_count"`

	// Headers are the header row cells in file order, duplicates and blanks kept
	Headers []string `json:"headers"`

	// Failed marks a file that could not be read or had no header
	Failed bool `json:"failed,omitempty"`
}

// Type returns the tabular type derived from the extension
func (f *TabularFile) Type() FileType {
	return TypeForExtension(f.Extension)
}

// HeaderValues returns the headers used for comparison.
// A failed entry compares as the single value ErrorMarker.
func (f *TabularFile) HeaderValues() []string {
	if f.Failed {
		return []string{ErrorMarker}
	}
	return f.Headers
}
