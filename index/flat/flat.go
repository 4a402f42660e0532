// Package flat provides an implementation of a flat index for exact vector search.
package flat

import (
	"github.com/hupe1980/songsight/distance"
	"github.com/hupe1980/songsight/index"
	"github.com/hupe1980/songsight/internal/queue"
)

// Compile-time check to ensure Flat satisfies the index contract.
var _ index.Index = (*Flat)(nil)

// Flat scans every entry for each query.
// It is immutable after New and safe for concurrent queries.
type Flat struct {
	entries   []index.Entry // sorted by ID
	dimension int
}

// New creates a flat index over entries.
func New(entries []index.Entry) (*Flat, error) {
	canon, err := index.Canonicalize(entries)
	if err != nil {
		return nil, err
	}
	return &Flat{
		entries:   canon,
		dimension: len(canon[0].Vector),
	}, nil
}

func (*Flat) Name() string { return "Flat" }

// Dimension returns the vector dimensionality.
func (f *Flat) Dimension() int { return f.dimension }

// Len returns the number of entries.
func (f *Flat) Len() int { return len(f.entries) }

// Entries returns the indexed entries in identifier order.
// The returned vectors must not be modified.
func (f *Flat) Entries() []index.Entry {
	out := make([]index.Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// KNN performs an exhaustive k-nearest-neighbor search.
func (f *Flat) KNN(q []float32, k int) ([]index.SearchResult, error) {
	if err := index.ValidateQuery(q, k, f.dimension); err != nil {
		return nil, err
	}

	pq := queue.NewBounded(k)
	for _, e := range f.entries {
		pq.Push(queue.Item{ID: e.ID, Distance: distance.L2(q, e.Vector)})
	}

	items := pq.Drain()
	results := make([]index.SearchResult, len(items))
	for i, it := range items {
		results[i] = index.SearchResult{ID: it.ID, Distance: it.Distance}
	}
	return results, nil
}
