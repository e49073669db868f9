package tabular

import (
	"context"
	"io"
	"os"

	"github.com/sdejongh/tabsnap/pkg/ratelimit"
)

// Reader loads the raw rows of a tabular file
type Reader interface {
	// Read returns every row of the file at path
	Read(ctx context.Context, path string) (Table, error)

	// Name returns a short description used in logs and errors
	Name() string
}

// Throttled is implemented by readers whose file reads can share a limiter
type Throttled interface {
	SetLimiter(l *ratelimit.Limiter)
}

// readFile returns the contents of path, read through limiter when it is set
func readFile(ctx context.Context, path string, limiter *ratelimit.Limiter) ([]byte, error) {
	if limiter == nil {
		return os.ReadFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(ratelimit.NewReader(ctx, f, limiter))
}
