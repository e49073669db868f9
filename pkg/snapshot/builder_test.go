package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/tabsnap/pkg/catalog"
	"github.com/sdejongh/tabsnap/pkg/models"
	"github.com/sdejongh/tabsnap/pkg/output"
	"github.com/sdejongh/tabsnap/pkg/tabular"
)

func writeFiles(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

func newBuilder(t *testing.T, root string, formatter output.Formatter) *Builder {
	t.Helper()
	cat, err := catalog.NewLocal(root, nil)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	op := &models.BuildOperation{ID: "test-op", RootPath: root, OutputDir: root, Format: models.FormatCSV}
	return NewBuilder(cat, tabular.NewRegistry(), formatter, nil, op)
}

func TestBuilder_Build(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{
		"a.csv":         []byte("title\nid,name,price\n1,x,2\n"),
		"notes.txt":     []byte("not tabular"),
		"sub/empty.csv": {},
		"sub/bad.csv":   {0xff, 0xfe, 0xfd, '\n'},
	})

	snap, report, err := newBuilder(t, root, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(snap.Files) != 3 {
		t.Fatalf("len(Files) = %d, want 3", len(snap.Files))
	}
	if snap.Root != root {
		t.Errorf("Root = %s, want %s", snap.Root, root)
	}

	index := snap.Lookup()
	a := index[filepath.Join(root, "a.csv")]
	if a == nil || a.Failed {
		t.Fatalf("a.csv entry = %+v", a)
	}
	if a.ColumnCount != 3 || strings.Join(a.Headers, "|") != "id|name|price" {
		t.Errorf("a.csv = %d %v, want 3 [id name price]", a.ColumnCount, a.Headers)
	}

	for _, name := range []string{"sub/empty.csv", "sub/bad.csv"} {
		f := index[filepath.Join(root, filepath.FromSlash(name))]
		if f == nil || !f.Failed {
			t.Errorf("%s should be a failed entry, got %+v", name, f)
		}
	}

	if report.Stats.FilesScanned != 4 || report.Stats.FilesTabular != 3 || report.Stats.FilesUnsupported != 1 {
		t.Errorf("Stats = %+v", report.Stats)
	}
	if report.Stats.FilesSucceeded != 1 || report.Stats.FilesFailed != 2 {
		t.Errorf("Stats = %+v", report.Stats)
	}
	if report.Status != models.StatusPartial {
		t.Errorf("Status = %s, want partial", report.Status)
	}
	if report.OperationID != "test-op" {
		t.Errorf("OperationID = %s", report.OperationID)
	}

	messages := report.Messages()
	if len(messages) != 3 {
		t.Fatalf("len(Messages()) = %d, want 3", len(messages))
	}
	want := "CSV Access  SUCCESS | " + filepath.Join(root, "a.csv")
	if messages[0] != want {
		t.Errorf("Messages()[0] = %q, want %q", messages[0], want)
	}
	for _, m := range messages[1:] {
		if !strings.HasPrefix(m, "CSV Access  FAILURE | ") {
			t.Errorf("message %q should report a failure", m)
		}
	}
}

func TestBuilder_ExtensionCase(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{
		"lower.csv": []byte("id\n"),
		"UPPER.CSV": []byte("id\n"),
	})

	snap, report, err := newBuilder(t, root, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(snap.Files) != 1 || snap.Files[0].Path != filepath.Join(root, "lower.csv") {
		t.Errorf("Files = %+v, want only lower.csv", snap.Files)
	}
	if report.Stats.FilesUnsupported != 1 {
		t.Errorf("FilesUnsupported = %d, want 1", report.Stats.FilesUnsupported)
	}
}

func TestBuilder_Spreadsheet(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{"broken.xlsx": []byte("not a zip")})

	_, report, err := newBuilder(t, root, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if report.Status != models.StatusFailed {
		t.Errorf("Status = %s, want failed", report.Status)
	}
	if got := report.Messages()[0]; !strings.HasPrefix(got, "XLSX Access FAILURE | ") {
		t.Errorf("message = %q", got)
	}
}

func TestBuilder_EmptyTree(t *testing.T) {
	snap, report, err := newBuilder(t, t.TempDir(), nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(snap.Files) != 0 {
		t.Errorf("len(Files) = %d, want 0", len(snap.Files))
	}
	if report.Status != models.StatusSuccess {
		t.Errorf("Status = %s, want success", report.Status)
	}
}

type recordingFormatter struct {
	started int
	updates []output.ProgressUpdate
	errs    []error
}

func (f *recordingFormatter) Start(total int) error { f.started = total; return nil }
func (f *recordingFormatter) Progress(u output.ProgressUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}
func (f *recordingFormatter) Complete(*models.BuildReport) error { return nil }
func (f *recordingFormatter) Error(err error) error               { f.errs = append(f.errs, err); return nil }
func (f *recordingFormatter) Name() string                       { return "recording" }

func TestBuilder_Progress(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{
		"a.csv": []byte("x,y\n"),
		"b.csv": {},
	})

	rec := &recordingFormatter{}
	if _, _, err := newBuilder(t, root, rec).Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if rec.started != 2 {
		t.Errorf("Start(%d), want 2", rec.started)
	}
	var types []string
	for _, u := range rec.updates {
		types = append(types, u.Type)
	}
	want := []string{output.UpdateFileStart, output.UpdateFileComplete, output.UpdateFileStart, output.UpdateFileError}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("updates = %v, want %v", types, want)
	}
	if rec.updates[1].ColumnCount != 2 {
		t.Errorf("ColumnCount = %d, want 2", rec.updates[1].ColumnCount)
	}
	if rec.updates[3].Error == nil {
		t.Error("file_error update should carry the error")
	}
}

type fakeCatalog struct {
	root    string
	records []models.FileRecord
	skipped []models.SkippedPath
	err     error
}

func (c *fakeCatalog) List(ctx context.Context) ([]models.FileRecord, error) {
	return c.records, c.err
}
func (c *fakeCatalog) Skipped() []models.SkippedPath { return c.skipped }
func (c *fakeCatalog) Root() string                   { return c.root }
func (c *fakeCatalog) Close() error { return nil }

type cancellingInspector struct {
	cancel context.CancelFunc
	calls  int
}

func (i *cancellingInspector) Supports(ext string) bool { return true }
func (i *cancellingInspector) Inspect(ctx context.Context, path string) ([]string, int, error) {
	i.calls++
	i.cancel()
	return []string{"a"}, 1, nil
}

func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := &fakeCatalog{root: "/r", records: []models.FileRecord{
		models.NewFileRecord("/r/a.csv"),
		models.NewFileRecord("/r/b.csv"),
	}}
	inspector := &cancellingInspector{cancel: cancel}
	b := NewBuilder(cat, inspector, nil, nil, &models.BuildOperation{ID: "x"})

	snap, report, err := b.Build(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Build() error = %v, want context.Canceled", err)
	}
	if snap != nil {
		t.Error("no snapshot should be returned on cancellation")
	}
	if report.Status != models.StatusCancelled {
		t.Errorf("Status = %s, want cancelled", report.Status)
	}
	if inspector.calls != 1 {
		t.Errorf("Inspect called %d times, want 1", inspector.calls)
	}
}

func TestBuilder_SkippedPaths(t *testing.T) {
	cat := &fakeCatalog{
		root:    "/r",
		records: []models.FileRecord{models.NewFileRecord("/r/a.csv")},
		skipped: []models.SkippedPath{{Path: "/r/locked", Error: "permission denied"}},
	}
	inspector := &cancellingInspector{cancel: func() {}}
	b := NewBuilder(cat, inspector, nil, nil, &models.BuildOperation{ID: "x"})

	snap, report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(snap.Files) != 1 || snap.Files[0].Path != "/r/a.csv" {
		t.Errorf("Files = %+v, want the readable a.csv", snap.Files)
	}
	if report.Stats.PathsSkipped != 1 || report.Skipped[0].Path != "/r/locked" {
		t.Errorf("Skipped = %+v, want /r/locked", report.Skipped)
	}
	if report.Status != models.StatusSuccess {
		t.Errorf("Status = %s, want success", report.Status)
	}
}

func TestBuilder_ListError(t *testing.T) {
	listErr := errors.New("permission denied")
	rec := &recordingFormatter{}
	b := NewBuilder(&fakeCatalog{root: "/r", err: listErr}, tabular.NewRegistry(), rec, nil, &models.BuildOperation{ID: "x"})

	_, report, err := b.Build(context.Background())
	if !errors.Is(err, listErr) {
		t.Fatalf("Build() error = %v, want %v", err, listErr)
	}
	if report.Status != models.StatusFailed {
		t.Errorf("Status = %s, want failed", report.Status)
	}
	if len(rec.errs) != 1 {
		t.Errorf("formatter received %d errors, want 1", len(rec.errs))
	}
}

func TestBuilder_Timestamps(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{"a.csv": []byte("x\n")})

	b := newBuilder(t, root, nil)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	b.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * time.Minute)
	}

	snap, report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !report.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", report.StartTime, start)
	}
	if !snap.CreatedAt.Equal(report.EndTime) {
		t.Errorf("CreatedAt = %v, want EndTime %v", snap.CreatedAt, report.EndTime)
	}
	if report.Duration != time.Minute {
		t.Errorf("Duration = %v, want 1m", report.Duration)
	}
}
