// Package snapshot builds snapshots of the tabular files under a directory
// and persists them as reference files.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/sdejongh/tabsnap/pkg/catalog"
	"github.com/sdejongh/tabsnap/pkg/logging"
	"github.com/sdejongh/tabsnap/pkg/models"
	"github.com/sdejongh/tabsnap/pkg/output"
	"github.com/sdejongh/tabsnap/pkg/tabular"
)

// Inspector reads a file and returns its header row and width
type Inspector interface {
	Supports(ext string) bool
	Inspect(ctx context.Context, path string) ([]string, int, error)
}

// Builder orchestrates a snapshot build
type Builder struct {
	catalog   catalog.Backend
	inspector Inspector
	formatter output.Formatter
	logger    logging.Logger
	operation *models.BuildOperation
	now       func() time.Time
}

// NewBuilder creates a new snapshot builder.
// A nil formatter or logger discards output.
func NewBuilder(
	cat catalog.Backend,
	inspector Inspector,
	formatter output.Formatter,
	logger logging.Logger,
	operation *models.BuildOperation,
) *Builder {
	if formatter == nil {
		formatter = output.NewHumanFormatter(nil, false)
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Builder{
		catalog:   cat,
		inspector: inspector,
		formatter: formatter,
		logger:    logger,
		operation: operation,
		now:       time.Now,
	}
}

// Build walks the catalog and inspects every supported file.
// A file that cannot be read is kept as a failed entry; only listing errors
// and cancellation stop the build. On cancellation the partial report is
// returned with StatusCancelled along with ctx.Err().
func (b *Builder) Build(ctx context.Context) (*models.Snapshot, *models.BuildReport, error) {
	report := &models.BuildReport{
		OperationID: b.operation.ID,
		RootPath:    b.catalog.Root(),
		StartTime:   b.now(),
	}

	b.logger.Info(ctx, "Build started", logging.Fields{
		"operation_id": b.operation.ID,
		"root":         b.catalog.Root(),
	})

	records, err := b.catalog.List(ctx)
	if err != nil {
		report.Finalize(b.now())
		if ctx.Err() != nil {
			report.Status = models.StatusCancelled
			return nil, report, ctx.Err()
		}
		report.Status = models.StatusFailed
		b.formatter.Error(err)
		b.logger.Error(ctx, "Failed to list files", err, nil)
		return nil, report, err
	}
	report.Stats.FilesScanned = len(records)

	for _, s := range b.catalog.Skipped() {
		report.Skipped = append(report.Skipped, s)
		b.logger.Warn(ctx, "Skipping unreadable path", logging.Fields{"path": s.Path, "error": s.Error})
	}
	report.Stats.PathsSkipped = len(report.Skipped)

	tabularFiles := make([]models.FileRecord, 0, len(records))
	for _, rec := range records {
		if !b.inspector.Supports(rec.Extension) {
			report.Stats.FilesUnsupported++
			b.logger.Debug(ctx, "Skipping file", logging.Fields{
				"reason": (&tabular.UnsupportedFormatError{Path: rec.Path, Extension: rec.Extension}).Error(),
			})
			continue
		}
		tabularFiles = append(tabularFiles, rec)
	}
	report.Stats.FilesTabular = len(tabularFiles)

	b.formatter.Start(len(tabularFiles))

	snap := &models.Snapshot{
		Root:  b.catalog.Root(),
		Files: make([]models.TabularFile, 0, len(tabularFiles)),
	}

	for i, rec := range tabularFiles {
		if err := ctx.Err(); err != nil {
			report.Finalize(b.now())
			report.Status = models.StatusCancelled
			b.logger.Warn(ctx, "Build cancelled", logging.Fields{"processed": i})
			return nil, report, err
		}

		fileType := models.TypeForExtension(rec.Extension)
		b.formatter.Progress(output.ProgressUpdate{
			Type:        output.UpdateFileStart,
			FilePath:    rec.Path,
			FileType:    fileType,
			CurrentFile: i + 1,
			TotalFiles:  len(tabularFiles),
		})

		entry, diag := b.inspect(ctx, rec, fileType)
		snap.Files = append(snap.Files, entry)
		report.Diagnostics = append(report.Diagnostics, diag)

		update := output.ProgressUpdate{
			FilePath:    rec.Path,
			FileType:    fileType,
			ColumnCount: entry.ColumnCount,
			CurrentFile: i + 1,
			TotalFiles:  len(tabularFiles),
		}
		if diag.Success {
			report.Stats.FilesSucceeded++
			update.Type = output.UpdateFileComplete
		} else {
			report.Stats.FilesFailed++
			update.Type = output.UpdateFileError
			update.Error = errors.New(diag.Error)
		}
		b.formatter.Progress(update)
	}

	snap.CreatedAt = b.now()
	report.Finalize(snap.CreatedAt)

	b.logger.Info(ctx, "Build completed", logging.Fields{
		"status":    string(report.Status),
		"succeeded": report.Stats.FilesSucceeded,
		"failed":    report.Stats.FilesFailed,
		"duration":  report.Duration.String(),
	})

	return snap, report, nil
}

func (b *Builder) inspect(ctx context.Context, rec models.FileRecord, fileType models.FileType) (models.TabularFile, models.Diagnostic) {
	entry := models.TabularFile{FileRecord: rec}
	diag := models.Diagnostic{Path: rec.Path, Type: fileType}

	headers, width, err := b.inspector.Inspect(ctx, rec.Path)
	if err != nil {
		entry.Failed = true
		diag.Error = err.Error()
		b.logger.Warn(ctx, diag.String(), logging.Fields{"error": err.Error()})
		return entry, diag
	}

	entry.Headers = headers
	entry.ColumnCount = width
	diag.Success = true
	b.logger.Debug(ctx, diag.String(), logging.Fields{"columns": width})
	return entry, diag
}
