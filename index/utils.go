package index

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/songsight/distance"
)

// Canonicalize validates entries and returns a copy sorted by identifier.
//
// It fails with ErrEmptyInput, *ErrDimensionMismatch (against the first
// entry), ErrInvalidVector or ErrDuplicateID. Vectors are cloned so that the
// index never aliases caller memory.
func Canonicalize(entries []Entry) ([]Entry, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(entries[0].Vector)
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if len(e.Vector) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(e.Vector)}
		}
		if !distance.Finite(e.Vector) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVector, e.ID)
		}
		out[i] = Entry{ID: e.ID, Vector: slices.Clone(e.Vector)}
	}

	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.ID, b.ID) })
	for i := 1; i < len(out); i++ {
		if out[i].ID == out[i-1].ID {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, out[i].ID)
		}
	}
	return out, nil
}

// ValidateQuery checks the query length and k against an index.
func ValidateQuery(q []float32, k, dim int) error {
	if k <= 0 {
		return ErrInvalidK
	}
	if len(q) != dim {
		return &ErrDimensionMismatch{Expected: dim, Actual: len(q)}
	}
	return nil
}

// Less reports whether a ranks strictly before b: smaller distance first,
// then smaller identifier.
func Less(a, b SearchResult) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.ID < b.ID
}

// IDs extracts the identifiers of results, preserving order.
func IDs(results []SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}
