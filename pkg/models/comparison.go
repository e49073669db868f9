package models

// MatchType classifies a comparison row
type MatchType string

const (
	// MatchBoth is an unchanged value; never present in a filtered result
	MatchBoth MatchType = "In both references"
	// MatchAdded is the internal label for a value only in the candidate
	MatchAdded MatchType = "Added in new ref file"
	// MatchRemoved is the internal label for a value only in the reference
	MatchRemoved MatchType = "Missing in new reference"

	// MatchNew is the reported label for MatchAdded
	MatchNew MatchType = "New"
	// MatchMissing is the reported label for MatchRemoved
	MatchMissing MatchType = "Missing"
)

// Reported maps an internal label to the one written in results
func (m MatchType) Reported() MatchType {
	switch m {
	case MatchAdded:
		return MatchNew
	case MatchRemoved:
		return MatchMissing
	default:
		return m
	}
}

// HeadersCheckSource tags rows produced by the header comparison
const HeadersCheckSource = "Matched on FilePath - Compared Headers"

// IdentityCheckSource tags rows produced by matching on an identity column
func IdentityCheckSource(col IdentityColumn) string {
	return "Matched on " + string(col) + " - Compared " + string(col) + " Name"
}

// ComparisonEntry is one row of a comparison
type ComparisonEntry struct {
	// Value is an identity value or a single header, depending on CheckSource
	Value string `json:"value"`

	MatchType   MatchType `json:"match_type"`
	CheckSource string    `json:"check_source"`

	// FilePath is the file a header row belongs to; empty for identity rows
	FilePath string `json:"file_path,omitempty"`
}

// ComparisonResult is an ordered list of comparison rows
type ComparisonResult struct {
	Entries []ComparisonEntry `json:"entries"`
}

// Count returns the number of rows with the given match type
func (r *ComparisonResult) Count(m MatchType) int {
	n := 0
	for _, e := range r.Entries {
		if e.MatchType == m {
			n++
		}
	}
	return n
}

// BySource groups rows by check source, keeping row order
func (r *ComparisonResult) BySource() map[string][]ComparisonEntry {
	groups := make(map[string][]ComparisonEntry)
	for _, e := range r.Entries {
		groups[e.CheckSource] = append(groups[e.CheckSource], e)
	}
	return groups
}

// Empty reports whether no differences were found
func (r *ComparisonResult) Empty() bool {
	return len(r.Entries) == 0
}
