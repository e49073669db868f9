package tabular

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// stubReader returns a fixed table or error and counts calls
type stubReader struct {
	name  string
	table Table
	err   error
	calls int
}

func (s *stubReader) Read(ctx context.Context, path string) (Table, error) {
	s.calls++
	return s.table, s.err
}

func (s *stubReader) Name() string { return s.name }

func TestOverride_Matches(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		expected bool
	}{
		{"Substring", "BRAND-WBC-QA LinkedIn", "/x/BRAND-WBC-QA LinkedIn 2023.csv", true},
		{"SubstringInDirectory", "linkedin-exports", "/data/linkedin-exports/a.csv", true},
		{"SubstringMiss", "LinkedIn", "/x/linkedin.csv", false},
		{"Glob", "*LinkedIn*.csv", "/x/BRAND LinkedIn.csv", true},
		{"GlobBaseOnly", "LinkedIn*", "/LinkedIn/a.csv", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Override{Pattern: tt.pattern}
			if got := o.Matches(tt.path); got != tt.expected {
				t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestRegistry_Defaults(t *testing.T) {
	r := NewRegistry()
	if !reflect.DeepEqual(r.Extensions(), []string{".csv", ".xlsx"}) {
		t.Errorf("Extensions() = %v, want [.csv .xlsx]", r.Extensions())
	}
	if r.Supports(".CSV") || r.Supports(".Xlsx") {
		t.Error("Supports should match extensions exactly")
	}
	if r.Supports(".xls") {
		t.Error("Supports(.xls) should be false")
	}
}

func TestRegistry_Unsupported(t *testing.T) {
	_, err := NewRegistry().Read(context.Background(), "/x/notes.txt")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Read() error = %v, want *UnsupportedFormatError", err)
	}
	if unsupported.Extension != ".txt" {
		t.Errorf("Extension = %s, want .txt", unsupported.Extension)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Error("error should match ErrUnsupportedFormat")
	}
}

func TestRegistry_AddOverride(t *testing.T) {
	tests := []struct {
		name    string
		o       Override
		wantErr bool
	}{
		{"Valid", Override{Name: "x", Pattern: "x", When: WhenAlways, Reader: &stubReader{}}, false},
		{"DefaultWhen", Override{Pattern: "x", Reader: &stubReader{}}, false},
		{"NoPattern", Override{Reader: &stubReader{}}, true},
		{"NoReader", Override{Pattern: "x"}, true},
		{"BadWhen", Override{Pattern: "x", When: "sometimes", Reader: &stubReader{}}, true},
		{"BadEncoding", Override{Pattern: "x", Reader: &DelimitedReader{Encoding: "nope"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().AddOverride(tt.o)
			if (err != nil) != tt.wantErr {
				t.Errorf("AddOverride() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	r := NewRegistry()
	if err := r.AddOverride(Override{Pattern: "quirk", Reader: &stubReader{}}); err != nil {
		t.Fatalf("AddOverride() error = %v", err)
	}
	got := r.Overrides()[0]
	if got.When != WhenOnFailure || got.Name != "quirk" {
		t.Errorf("override defaults = %s/%s, want on-failure/quirk", got.When, got.Name)
	}
}

func TestRegistry_ReadOrder(t *testing.T) {
	ctx := context.Background()
	good := Table{Rows: [][]string{{"a", "b"}}}
	broken := errors.New("broken")

	t.Run("DefaultSucceedsSkipsOnFailure", func(t *testing.T) {
		def := &stubReader{name: "default", table: good}
		fallback := &stubReader{name: "fallback", table: good}
		r := NewRegistry()
		r.Register(".csv", def)
		_ = r.AddOverride(Override{Name: "fb", Pattern: "quirk", When: WhenOnFailure, Reader: fallback})

		if _, err := r.Read(ctx, "/x/quirk.csv"); err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if fallback.calls != 0 {
			t.Errorf("on-failure override called %d times, want 0", fallback.calls)
		}
	})

	t.Run("OnFailureRescues", func(t *testing.T) {
		def := &stubReader{name: "default", err: broken}
		fallback := &stubReader{name: "fallback", table: good}
		r := NewRegistry()
		r.Register(".csv", def)
		_ = r.AddOverride(Override{Name: "fb", Pattern: "quirk", When: WhenOnFailure, Reader: fallback})

		table, err := r.Read(ctx, "/x/quirk.csv")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !reflect.DeepEqual(table, good) {
			t.Errorf("Read() = %v, want the override table", table)
		}
	})

	t.Run("AlwaysFirst", func(t *testing.T) {
		def := &stubReader{name: "default", table: Table{Rows: [][]string{{"wrong"}}}}
		always := &stubReader{name: "always", table: good}
		r := NewRegistry()
		r.Register(".csv", def)
		_ = r.AddOverride(Override{Name: "al", Pattern: "quirk", When: WhenAlways, Reader: always})

		table, err := r.Read(ctx, "/x/quirk.csv")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !reflect.DeepEqual(table, good) || def.calls != 0 {
			t.Errorf("always override not preferred: table=%v defaultCalls=%d", table, def.calls)
		}
	})

	t.Run("AlwaysFailsFallsBackToDefault", func(t *testing.T) {
		def := &stubReader{name: "default", table: good}
		always := &stubReader{name: "always", err: broken}
		r := NewRegistry()
		r.Register(".csv", def)
		_ = r.AddOverride(Override{Name: "al", Pattern: "quirk", When: WhenAlways, Reader: always})

		if _, err := r.Read(ctx, "/x/quirk.csv"); err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		def := &stubReader{name: "default", err: &UnreadableFileError{Path: "p", Err: broken}}
		fallback := &stubReader{name: "fallback", err: broken}
		r := NewRegistry()
		r.Register(".csv", def)
		_ = r.AddOverride(Override{Name: "fb", Pattern: "quirk", When: WhenOnFailure, Reader: fallback})

		_, err := r.Read(ctx, "/x/quirk.csv")
		var exhausted *FormatOverrideExhaustedError
		if !errors.As(err, &exhausted) {
			t.Fatalf("Read() error = %v, want *FormatOverrideExhaustedError", err)
		}
		if !reflect.DeepEqual(exhausted.Tried, []string{"fb"}) {
			t.Errorf("Tried = %v, want [fb]", exhausted.Tried)
		}
		if !errors.Is(err, ErrOverrideExhausted) || !errors.Is(err, broken) {
			t.Error("error should match ErrOverrideExhausted and the underlying cause")
		}
	})

	t.Run("NoMatchingOverride", func(t *testing.T) {
		def := &stubReader{name: "default", err: &UnreadableFileError{Path: "p", Err: broken}}
		r := NewRegistry()
		r.Register(".csv", def)
		_ = r.AddOverride(Override{Name: "fb", Pattern: "quirk", Reader: &stubReader{table: good}})

		_, err := r.Read(ctx, "/x/plain.csv")
		if !errors.Is(err, ErrUnreadable) || errors.Is(err, ErrOverrideExhausted) {
			t.Errorf("Read() error = %v, want plain ErrUnreadable", err)
		}
	})
}

func TestRegistry_Inspect(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("HeaderAfterBanner", func(t *testing.T) {
		path := writeFile(t, dir, "a.csv", []byte("Report\nid,name\n1,ann\n"))
		header, width, err := NewRegistry().Inspect(ctx, path)
		if err != nil {
			t.Fatalf("Inspect() error = %v", err)
		}
		if width != 2 || !reflect.DeepEqual(header, []string{"id", "name"}) {
			t.Errorf("Inspect() = %q/%d, want [id name]/2", header, width)
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := writeFile(t, dir, "empty.csv", nil)
		_, _, err := NewRegistry().Inspect(ctx, path)
		var empty *EmptyFileError
		if !errors.As(err, &empty) {
			t.Fatalf("Inspect() error = %v, want *EmptyFileError", err)
		}
		if empty.Path != path {
			t.Errorf("Path = %s, want %s", empty.Path, path)
		}
	})

	t.Run("UTF16Override", func(t *testing.T) {
		text := "a\nb\nc\nd\ne\nid\tname\n1\tann\n"
		path := writeFile(t, dir, "BRAND-WBC-QA LinkedIn followers.csv", utf16Bytes(t, text))

		r := NewRegistry()
		err := r.AddOverride(Override{
			Name:    "linkedin",
			Pattern: "BRAND-WBC-QA LinkedIn",
			When:    WhenOnFailure,
			Reader:  &DelimitedReader{Comma: '\t', Encoding: "utf-16", SkipRows: 5},
		})
		if err != nil {
			t.Fatalf("AddOverride() error = %v", err)
		}

		header, width, err := r.Inspect(ctx, path)
		if err != nil {
			t.Fatalf("Inspect() error = %v", err)
		}
		if width != 2 || !reflect.DeepEqual(header, []string{"id", "name"}) {
			t.Errorf("Inspect() = %q/%d, want [id name]/2", header, width)
		}

		// without the override the UTF-16 bytes are not valid UTF-8
		if _, _, err := NewRegistry().Inspect(ctx, path); !errors.Is(err, ErrUnreadable) {
			t.Errorf("Inspect() without override error = %v, want ErrUnreadable", err)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, _, err := NewRegistry().Inspect(ctx, filepath.Join(dir, "a.json"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Inspect() error = %v, want ErrUnsupportedFormat", err)
		}
	})
}
