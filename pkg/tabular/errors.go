package tabular

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, matched with errors.Is against the typed errors below
var (
	ErrEmptyFile         = errors.New("no rows to take a header from")
	ErrUnreadable        = errors.New("file could not be read")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrOverrideExhausted = errors.New("no format override could read the file")
)

// EmptyFileError is returned when a file has no non-empty row
type EmptyFileError struct {
	Path string
}

func (e *EmptyFileError) Error() string {
	if e.Path == "" {
		return ErrEmptyFile.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, ErrEmptyFile)
}

func (e *EmptyFileError) Is(target error) bool {
	return target == ErrEmptyFile
}

// UnreadableFileError wraps an I/O or decoding failure with the file path
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error {
	return e.Err
}

func (e *UnreadableFileError) Is(target error) bool {
	return target == ErrUnreadable
}

// UnsupportedFormatError is returned for extensions no reader is registered for
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported extension %q", e.Path, e.Extension)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// FormatOverrideExhaustedError is returned when a file matched one or more
// format overrides and neither they nor the default reader could read it
type FormatOverrideExhaustedError struct {
	Path  string
	Tried []string
	Err   error
}

func (e *FormatOverrideExhaustedError) Error() string {
	return fmt.Sprintf("%s: overrides [%s] failed: %v", e.Path, strings.Join(e.Tried, ", "), e.Err)
}

func (e *FormatOverrideExhaustedError) Unwrap() error {
	return e.Err
}

func (e *FormatOverrideExhaustedError) Is(target error) bool {
	return target == ErrOverrideExhausted
}
