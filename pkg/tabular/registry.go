package tabular

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sdejongh/tabsnap/pkg/ratelimit"
)

// When controls at which point a format override is tried
type When string

const (
	// WhenAlways tries the override before the default reader
	WhenAlways When = "always"
	// WhenOnFailure tries the override only after the default reader failed
	WhenOnFailure When = "on-failure"
)

// Override is an alternate reader for files whose name matches Pattern.
// A pattern with glob metacharacters is matched against the base name;
// any other pattern is a substring of the full path.
type Override struct {
	Name    string
	Pattern string
	When    When
	Reader  Reader
}

// Matches reports whether the override applies to path
func (o Override) Matches(path string) bool {
	if strings.ContainsAny(o.Pattern, "*?[") {
		matched, _ := filepath.Match(o.Pattern, filepath.Base(path))
		return matched
	}
	return strings.Contains(path, o.Pattern)
}

// Registry maps extensions to readers and holds the format overrides
type Registry struct {
	readers   map[string]Reader
	overrides []Override
}

// NewRegistry returns a registry with the default .csv and .xlsx readers
func NewRegistry() *Registry {
	r := &Registry{readers: make(map[string]Reader)}
	r.Register(".csv", NewCSVReader())
	r.Register(".xlsx", NewSpreadsheetReader())
	return r
}

// Register sets the reader for an extension (with leading dot, matched exactly)
func (r *Registry) Register(ext string, reader Reader) {
	r.readers[ext] = reader
}

// Supports reports whether a reader is registered for the extension
func (r *Registry) Supports(ext string) bool {
	_, ok := r.readers[ext]
	return ok
}

// Extensions returns the registered extensions, sorted
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// AddOverride appends a format override; overrides are tried in the order added
func (r *Registry) AddOverride(o Override) error {
	if o.Pattern == "" {
		return fmt.Errorf("override %q: pattern is required", o.Name)
	}
	if o.Reader == nil {
		return fmt.Errorf("override %q: reader is required", o.Name)
	}
	switch o.When {
	case WhenAlways, WhenOnFailure:
	case "":
		o.When = WhenOnFailure
	default:
		return fmt.Errorf("override %q: unknown trigger %q", o.Name, o.When)
	}
	if v, ok := o.Reader.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("override %q: %w", o.Name, err)
		}
	}
	if o.Name == "" {
		o.Name = o.Pattern
	}
	r.overrides = append(r.overrides, o)
	return nil
}

// SetLimiter shares l between every registered reader and override that
// supports throttling. A nil limiter removes throttling.
func (r *Registry) SetLimiter(l *ratelimit.Limiter) {
	for _, reader := range r.readers {
		if t, ok := reader.(Throttled); ok {
			t.SetLimiter(l)
		}
	}
	for _, o := range r.overrides {
		if t, ok := o.Reader.(Throttled); ok {
			t.SetLimiter(l)
		}
	}
}

// Overrides returns the registered overrides
func (r *Registry) Overrides() []Override {
	return append([]Override(nil), r.overrides...)
}

// Read loads the rows of path. Matching "always" overrides are tried first,
// then the reader for the extension, then matching "on-failure" overrides.
func (r *Registry) Read(ctx context.Context, path string) (Table, error) {
	ext := filepath.Ext(path)
	reader, ok := r.readers[ext]
	if !ok {
		return Table{}, &UnsupportedFormatError{Path: path, Extension: ext}
	}

	var tried []string
	var lastErr error

	attempt := func(o Override) (Table, bool) {
		table, err := o.Reader.Read(ctx, path)
		if err != nil {
			tried = append(tried, o.Name)
			lastErr = err
			return Table{}, false
		}
		return table, true
	}

	for _, o := range r.matching(path, WhenAlways) {
		if table, ok := attempt(o); ok {
			return table, nil
		}
	}

	table, err := reader.Read(ctx, path)
	if err == nil {
		return table, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Table{}, ctxErr
	}
	defaultErr := err

	for _, o := range r.matching(path, WhenOnFailure) {
		if table, ok := attempt(o); ok {
			return table, nil
		}
	}

	if len(tried) > 0 {
		return Table{}, &FormatOverrideExhaustedError{Path: path, Tried: tried, Err: errors.Join(defaultErr, lastErr)}
	}
	return Table{}, defaultErr
}

// Inspect reads path and detects its header row and column count
func (r *Registry) Inspect(ctx context.Context, path string) ([]string, int, error) {
	table, err := r.Read(ctx, path)
	if err != nil {
		return nil, 0, err
	}

	header, width, err := DetectHeader(table)
	if err != nil {
		if errors.Is(err, ErrEmptyFile) {
			return nil, 0, &EmptyFileError{Path: path}
		}
		return nil, 0, err
	}
	return header, width, nil
}

func (r *Registry) matching(path string, when When) []Override {
	var out []Override
	for _, o := range r.overrides {
		if o.When == when && o.Matches(path) {
			out = append(out, o)
		}
	}
	return out
}
