package compare

import (
	"fmt"
	"sort"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// Options configures a comparison
type Options struct {
	// IdentityColumns are matched in order; empty means header comparison only
	IdentityColumns []models.IdentityColumn

	// HeaderMatch decides header equality; empty means exact
	HeaderMatch models.HeaderMatch
}

// DefaultOptions matches on every identity column with exact header equality
func DefaultOptions() Options {
	cols := make([]models.IdentityColumn, len(models.DefaultIdentityColumns))
	copy(cols, models.DefaultIdentityColumns)
	return Options{IdentityColumns: cols, HeaderMatch: models.HeaderMatchExact}
}

// Comparators returns the comparison stages for opts, identity checks first
func (o Options) Comparators() []Comparator {
	stages := make([]Comparator, 0, len(o.IdentityColumns)+1)
	for _, col := range o.IdentityColumns {
		stages = append(stages, NewIdentityComparator(col))
	}
	return append(stages, NewHeaderComparator(o.HeaderMatch))
}

func (o Options) validate() error {
	for _, col := range o.IdentityColumns {
		if _, err := models.ParseIdentityColumn(string(col)); err != nil {
			return err
		}
	}
	switch o.HeaderMatch {
	case "", models.HeaderMatchExact, models.HeaderMatchTrim, models.HeaderMatchFold:
		return nil
	default:
		return &models.ValidationError{Field: "HeaderMatch", Message: fmt.Sprintf("unknown header match %q", o.HeaderMatch)}
	}
}

// Diff runs every stage and returns all rows, unchanged ones included,
// with their internal match labels in stage order
func Diff(ref, cand *models.Snapshot, opts Options) (*models.ComparisonResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("reference snapshot: %w", err)
	}
	if err := cand.Validate(); err != nil {
		return nil, fmt.Errorf("candidate snapshot: %w", err)
	}

	result := &models.ComparisonResult{Entries: []models.ComparisonEntry{}}
	for _, stage := range opts.Comparators() {
		result.Entries = append(result.Entries, stage.Compare(ref, cand)...)
	}
	return result, nil
}

// Compare reports what changed from ref to cand. Unchanged rows are dropped,
// labels become New or Missing, and rows are ordered by check source then
// match type, keeping stage order within a group.
func Compare(ref, cand *models.Snapshot, opts Options) (*models.ComparisonResult, error) {
	diff, err := Diff(ref, cand, opts)
	if err != nil {
		return nil, err
	}

	result := &models.ComparisonResult{Entries: make([]models.ComparisonEntry, 0, len(diff.Entries))}
	for _, e := range diff.Entries {
		if e.MatchType == models.MatchBoth {
			continue
		}
		e.MatchType = e.MatchType.Reported()
		result.Entries = append(result.Entries, e)
	}

	sort.SliceStable(result.Entries, func(i, j int) bool {
		a, b := result.Entries[i], result.Entries[j]
		if a.CheckSource != b.CheckSource {
			return a.CheckSource < b.CheckSource
		}
		return a.MatchType < b.MatchType
	})
	return result, nil
}
