package models

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// ============== FileRecord Tests ==============

func TestNewFileRecord(t *testing.T) {
	path := filepath.Join("data", "exports", "sales.2024.csv")
	rec := NewFileRecord(path)

	if rec.Path != path {
		t.Errorf("Path = %s, want %s", rec.Path, path)
	}
	if rec.Directory != filepath.Join("data", "exports") {
		t.Errorf("Directory = %s, want data/exports", rec.Directory)
	}
	if rec.Name != "sales.2024" {
		t.Errorf("Name = %s, want sales.2024", rec.Name)
	}
	if rec.Extension != ".csv" {
		t.Errorf("Extension = %s, want .csv", rec.Extension)
	}
}

func TestNewFileRecord_NoExtension(t *testing.T) {
	rec := NewFileRecord(filepath.Join("data", "README"))
	if rec.Name != "README" {
		t.Errorf("Name = %s, want README", rec.Name)
	}
	if rec.Extension != "" {
		t.Errorf("Extension = %q, want empty", rec.Extension)
	}
}

func TestTypeForExtension(t *testing.T) {
	tests := []struct {
		ext      string
		expected FileType
	}{
		{".csv", TypeCSV},
		{".CSV", TypeUnknown},
		{".xlsx", TypeXLSX},
		{".Xlsx", TypeUnknown},
		{".xls", TypeUnknown},
		{".txt", TypeUnknown},
		{"", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := TypeForExtension(tt.ext); got != tt.expected {
				t.Errorf("TypeForExtension(%q) = %q, want %q", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestTabularFile_HeaderValues(t *testing.T) {
	t.Run("Readable", func(t *testing.T) {
		f := TabularFile{Headers: []string{"id", "name"}}
		got := f.HeaderValues()
		if len(got) != 2 || got[0] != "id" || got[1] != "name" {
			t.Errorf("HeaderValues() = %v, want [id name]", got)
		}
	})

	t.Run("Failed", func(t *testing.T) {
		f := TabularFile{Failed: true, Headers: []string{"ignored"}}
		got := f.HeaderValues()
		if len(got) != 1 || got[0] != ErrorMarker {
			t.Errorf("HeaderValues() = %v, want [%s]", got, ErrorMarker)
		}
	})
}

// ============== Snapshot Tests ==============

func TestSnapshot_Validate(t *testing.T) {
	t.Run("Unique", func(t *testing.T) {
		s := &Snapshot{Files: []TabularFile{
			{FileRecord: NewFileRecord("a.csv")},
			{FileRecord: NewFileRecord("b.csv")},
		}}
		if err := s.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		s := &Snapshot{Files: []TabularFile{
			{FileRecord: NewFileRecord("a.csv")},
			{FileRecord: NewFileRecord("a.csv")},
		}}
		err := s.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("Validate() error = %v, want *ValidationError", err)
		}
		if ve.Field != ColumnFilePath {
			t.Errorf("Field = %s, want %s", ve.Field, ColumnFilePath)
		}
	})

	t.Run("EmptyPath", func(t *testing.T) {
		s := &Snapshot{Files: []TabularFile{{}}}
		if err := s.Validate(); err == nil {
			t.Error("Validate() should fail for empty path")
		}
	})
}

func TestSnapshot_Lookup(t *testing.T) {
	s := &Snapshot{Files: []TabularFile{
		{FileRecord: NewFileRecord("a.csv"), ColumnCount: 2},
		{FileRecord: NewFileRecord("b.csv"), ColumnCount: 3},
	}}

	index := s.Lookup()
	if len(index) != 2 {
		t.Fatalf("len(Lookup()) = %d, want 2", len(index))
	}
	if index["b.csv"].ColumnCount != 3 {
		t.Errorf("b.csv ColumnCount = %d, want 3", index["b.csv"].ColumnCount)
	}
}

func TestIdentityColumn(t *testing.T) {
	f := &TabularFile{FileRecord: NewFileRecord(filepath.Join("root", "sub", "a.csv"))}

	tests := []struct {
		col      IdentityColumn
		expected string
	}{
		{IdentityFilePath, filepath.Join("root", "sub", "a.csv")},
		{IdentityDirectory, filepath.Join("root", "sub")},
		{IdentityFileName, "a"},
	}

	for _, tt := range tests {
		t.Run(string(tt.col), func(t *testing.T) {
			if got := tt.col.Value(f); got != tt.expected {
				t.Errorf("Value() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestParseIdentityColumn(t *testing.T) {
	for _, col := range DefaultIdentityColumns {
		if _, err := ParseIdentityColumn(string(col)); err != nil {
			t.Errorf("ParseIdentityColumn(%s) error = %v", col, err)
		}
	}

	if _, err := ParseIdentityColumn("filepath"); err == nil {
		t.Error("ParseIdentityColumn should be case sensitive")
	}
}

// ============== Comparison Tests ==============

func TestMatchType_Reported(t *testing.T) {
	tests := []struct {
		in       MatchType
		expected MatchType
	}{
		{MatchAdded, MatchNew},
		{MatchRemoved, MatchMissing},
		{MatchBoth, MatchBoth},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			if got := tt.in.Reported(); got != tt.expected {
				t.Errorf("Reported() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestIdentityCheckSource(t *testing.T) {
	got := IdentityCheckSource(IdentityDirectory)
	want := "Matched on Directory - Compared Directory Name"
	if got != want {
		t.Errorf("IdentityCheckSource() = %q, want %q", got, want)
	}
}

func TestComparisonResult_Counts(t *testing.T) {
	r := &ComparisonResult{Entries: []ComparisonEntry{
		{Value: "a", MatchType: MatchNew, CheckSource: HeadersCheckSource},
		{Value: "b", MatchType: MatchMissing, CheckSource: HeadersCheckSource},
		{Value: "c", MatchType: MatchNew, CheckSource: IdentityCheckSource(IdentityFilePath)},
	}}

	if r.Count(MatchNew) != 2 {
		t.Errorf("Count(New) = %d, want 2", r.Count(MatchNew))
	}
	if r.Count(MatchMissing) != 1 {
		t.Errorf("Count(Missing) = %d, want 1", r.Count(MatchMissing))
	}
	if got := len(r.BySource()[HeadersCheckSource]); got != 2 {
		t.Errorf("BySource()[headers] has %d rows, want 2", got)
	}
	if r.Empty() {
		t.Error("Empty() should be false")
	}
}

// ============== Report Tests ==============

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name     string
		diag     Diagnostic
		expected string
	}{
		{"CSVSuccess", Diagnostic{Path: "/d/a.csv", Type: TypeCSV, Success: true}, "CSV Access  SUCCESS | /d/a.csv"},
		{"CSVFailure", Diagnostic{Path: "/d/a.csv", Type: TypeCSV}, "CSV Access  FAILURE | /d/a.csv"},
		{"XLSXSuccess", Diagnostic{Path: "/d/b.xlsx", Type: TypeXLSX, Success: true}, "XLSX Access SUCCESS | /d/b.xlsx"},
		{"XLSXFailure", Diagnostic{Path: "/d/b.xlsx", Type: TypeXLSX}, "XLSX Access FAILURE | /d/b.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.diag.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBuildReport_Finalize(t *testing.T) {
	tests := []struct {
		name      string
		succeeded int
		failed    int
		expected  Status
	}{
		{"AllGood", 3, 0, StatusSuccess},
		{"NoFiles", 0, 0, StatusSuccess},
		{"Some", 2, 1, StatusPartial},
		{"All", 0, 2, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			r := &BuildReport{StartTime: start}
			r.Stats.FilesSucceeded = tt.succeeded
			r.Stats.FilesFailed = tt.failed
			r.Finalize(start.Add(time.Second))

			if r.Status != tt.expected {
				t.Errorf("Status = %s, want %s", r.Status, tt.expected)
			}
			if r.Duration != time.Second {
				t.Errorf("Duration = %v, want 1s", r.Duration)
			}
		})
	}
}

func TestStatus_ExitCode(t *testing.T) {
	tests := []struct {
		status   Status
		expected int
	}{
		{StatusSuccess, 0},
		{StatusPartial, 1},
		{StatusFailed, 2},
		{StatusCancelled, 3},
		{Status("bogus"), 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

// ============== Operation Tests ==============

func TestBuildOperation_Validate(t *testing.T) {
	valid := BuildOperation{RootPath: "/data", OutputDir: "/out", Format: FormatCSV}

	tests := []struct {
		name    string
		mutate  func(op *BuildOperation)
		wantErr bool
	}{
		{"Valid", func(op *BuildOperation) {}, false},
		{"JSON", func(op *BuildOperation) { op.Format = FormatJSON }, false},
		{"NoRoot", func(op *BuildOperation) { op.RootPath = "" }, true},
		{"NoOutput", func(op *BuildOperation) { op.OutputDir = "" }, true},
		{"BadFormat", func(op *BuildOperation) { op.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := valid
			tt.mutate(&op)
			err := op.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompareOperation_Validate(t *testing.T) {
	valid := CompareOperation{
		ExpectedPath:    "pre.csv",
		ActualPath:      "post.csv",
		OutputDir:       "/out",
		IdentityColumns: DefaultIdentityColumns,
		HeaderMatch:     HeaderMatchExact,
	}

	tests := []struct {
		name    string
		mutate  func(op *CompareOperation)
		wantErr bool
	}{
		{"Valid", func(op *CompareOperation) {}, false},
		{"NoIdentity", func(op *CompareOperation) { op.IdentityColumns = nil }, false},
		{"NoExpected", func(op *CompareOperation) { op.ExpectedPath = "" }, true},
		{"NoActual", func(op *CompareOperation) { op.ActualPath = "" }, true},
		{"NoOutput", func(op *CompareOperation) { op.OutputDir = "" }, true},
		{"BadIdentity", func(op *CompareOperation) { op.IdentityColumns = []IdentityColumn{"Size"} }, true},
		{"BadMatch", func(op *CompareOperation) { op.HeaderMatch = "fuzzy" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := valid
			tt.mutate(&op)
			err := op.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "format", Message: "bad"}
	if err.Error() != "format: bad" {
		t.Errorf("Error() = %q, want %q", err.Error(), "format: bad")
	}
}
