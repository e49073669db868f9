package output

import (
	"path/filepath"
	"time"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// TimestampLayout is the minute-resolution stamp used in output file names
const TimestampLayout = "2006-01-02 03-04PM"

// ReferencePath returns the snapshot file name for a build finished at t
func ReferencePath(dir string, t time.Time, format models.SnapshotFormat) string {
	return filepath.Join(dir, "ReferenceFile "+t.Format(TimestampLayout)+"."+string(format))
}

// ComparisonPath returns the comparison file name for a comparison finished at t
func ComparisonPath(dir string, t time.Time) string {
	return filepath.Join(dir, "ComparisonFile "+t.Format(TimestampLayout)+".csv")
}
