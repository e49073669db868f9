// Package catalog lists the regular files under a directory tree.
package catalog

import (
	"context"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// Backend defines the interface for file discovery
type Backend interface {
	// List returns one record per regular file under the root, recursively
	List(ctx context.Context) ([]models.FileRecord, error)

	// Skipped returns the entries the last List call could not read
	Skipped() []models.SkippedPath

	// Root returns the directory being listed
	Root() string

	// Close releases any resources held by the backend
	Close() error
}
