package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// Local walks a directory on the local filesystem
type Local struct {
	rootPath string
	exclude  []string
	skipped  []models.SkippedPath
}

// NewLocal creates a local catalog rooted at rootPath.
// Paths in the listing keep the root as given, so snapshots of the same
// directory taken with the same argument line up.
func NewLocal(rootPath string, exclude []string) (*Local, error) {
	cleaned := filepath.Clean(rootPath)

	info, err := os.Stat(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", cleaned)
	}

	return &Local{rootPath: cleaned, exclude: exclude}, nil
}

// Root returns the directory being listed
func (l *Local) Root() string {
	return l.rootPath
}

// List returns all regular files in the directory recursively, in lexical walk order.
// Entries below the root that cannot be read are left out and reported by
// Skipped; only an unreadable root fails the listing.
func (l *Local) List(ctx context.Context) ([]models.FileRecord, error) {
	var files []models.FileRecord
	l.skipped = nil

	err := filepath.WalkDir(l.rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == l.rootPath {
				return err
			}
			l.skipped = append(l.skipped, models.SkippedPath{Path: p, Error: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == l.rootPath {
			return nil
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if shouldExclude(relPath+"/", l.exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isRegular(p, d) || shouldExclude(relPath, l.exclude) {
			return nil
		}

		files = append(files, models.NewFileRecord(p))
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Skipped returns the entries the last List call could not read
func (l *Local) Skipped() []models.SkippedPath {
	return append([]models.SkippedPath(nil), l.skipped...)
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

// isRegular accepts regular files and symlinks that resolve to one
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
