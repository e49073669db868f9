// Package compare diffs two snapshots.
//
// Files are matched on one or more identity columns, and the header rows of
// files present in both snapshots are compared value by value.
package compare

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// Comparator produces comparison rows for a pair of snapshots.
// Rows carry internal match labels; see Compare for the reported form.
type Comparator interface {
	// Compare diffs the reference snapshot against the candidate
	Compare(ref, cand *models.Snapshot) []models.ComparisonEntry

	// Name returns the check source written on every row
	Name() string
}

// IdentityComparator matches files on a single identity column, like an
// outer join on that column. Duplicated values produce one row per
// matching pair, and one row per unmatched snapshot row.
type IdentityComparator struct {
	Column models.IdentityColumn
}

// NewIdentityComparator creates a comparator for col
func NewIdentityComparator(col models.IdentityColumn) *IdentityComparator {
	return &IdentityComparator{Column: col}
}

// Name returns the check source
func (c *IdentityComparator) Name() string {
	return models.IdentityCheckSource(c.Column)
}

// Compare emits matched rows in reference order, then reference-only rows,
// then candidate-only rows in candidate order
func (c *IdentityComparator) Compare(ref, cand *models.Snapshot) []models.ComparisonEntry {
	source := c.Name()

	candCount := make(map[string]int, len(cand.Files))
	for i := range cand.Files {
		candCount[c.Column.Value(&cand.Files[i])]++
	}
	refSeen := make(map[string]bool, len(ref.Files))

	var both, removed, added []models.ComparisonEntry
	for i := range ref.Files {
		v := c.Column.Value(&ref.Files[i])
		refSeen[v] = true
		n := candCount[v]
		if n == 0 {
			removed = append(removed, models.ComparisonEntry{Value: v, MatchType: models.MatchRemoved, CheckSource: source})
			continue
		}
		for j := 0; j < n; j++ {
			both = append(both, models.ComparisonEntry{Value: v, MatchType: models.MatchBoth, CheckSource: source})
		}
	}

	for i := range cand.Files {
		v := c.Column.Value(&cand.Files[i])
		if !refSeen[v] {
			added = append(added, models.ComparisonEntry{Value: v, MatchType: models.MatchAdded, CheckSource: source})
		}
	}

	entries := make([]models.ComparisonEntry, 0, len(both)+len(removed)+len(added))
	entries = append(entries, both...)
	entries = append(entries, removed...)
	return append(entries, added...)
}

// HeaderComparator compares the header rows of files present in both
// snapshots, matched by path
type HeaderComparator struct {
	Match models.HeaderMatch
}

// NewHeaderComparator creates a header comparator using match to decide equality
func NewHeaderComparator(match models.HeaderMatch) *HeaderComparator {
	return &HeaderComparator{Match: match}
}

// Name returns the check source
func (c *HeaderComparator) Name() string {
	return models.HeadersCheckSource
}

// Compare visits common files in path order. For each file it emits one
// row per candidate header, then one row per reference header absent from
// the candidate. Repeated headers are not collapsed.
func (c *HeaderComparator) Compare(ref, cand *models.Snapshot) []models.ComparisonEntry {
	source := c.Name()
	refIndex := ref.Lookup()
	candIndex := cand.Lookup()

	common := make([]string, 0, len(refIndex))
	for path := range refIndex {
		if _, ok := candIndex[path]; ok {
			common = append(common, path)
		}
	}
	sort.Strings(common)

	var entries []models.ComparisonEntry
	for _, path := range common {
		r, k := refIndex[path], candIndex[path]

		refHeaders := r.HeaderValues()
		candHeaders := k.HeaderValues()

		refKeys := c.keys(refHeaders)
		candKeys := c.keys(candHeaders)

		for _, h := range candHeaders {
			match := models.MatchAdded
			if refKeys[c.key(h)] {
				match = models.MatchBoth
			}
			entries = append(entries, models.ComparisonEntry{Value: h, MatchType: match, CheckSource: source, FilePath: r.Path})
		}
		for _, h := range refHeaders {
			if !candKeys[c.key(h)] {
				entries = append(entries, models.ComparisonEntry{Value: h, MatchType: models.MatchRemoved, CheckSource: source, FilePath: r.Path})
			}
		}
	}
	return entries
}

func (c *HeaderComparator) keys(headers []string) map[string]bool {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[c.key(h)] = true
	}
	return set
}

// key normalizes a header value for the configured match mode
func (c *HeaderComparator) key(h string) string {
	switch c.Match {
	case models.HeaderMatchTrim:
		return strings.TrimSpace(h)
	case models.HeaderMatchFold:
		return cases.Fold().String(strings.TrimSpace(h))
	default:
		return h
	}
}
