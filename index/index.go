package index

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when an index is built from zero entries.
	ErrEmptyInput = errors.New("index: no entries")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("index: k must be positive")

	// ErrDuplicateID is returned when two entries share an identifier.
	ErrDuplicateID = errors.New("index: duplicate identifier")

	// ErrInvalidVector is returned for vectors with NaN or infinite components.
	ErrInvalidVector = errors.New("index: vector has non-finite component")
)

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Entry is one (identifier, vector) pair fed to an index build.
type Entry struct {
	ID     string
	Vector []float32
}

// SearchResult represents a search result.
type SearchResult struct {
	// ID is the identifier of the matched entry.
	ID string

	// Distance is the Euclidean distance between the query and the entry.
	Distance float32
}

// Index is an immutable, exact nearest-neighbor index.
// Implementations are safe for concurrent queries.
type Index interface {
	// KNN returns the min(k, Len()) nearest entries to q ordered by
	// ascending distance, ties by identifier.
	KNN(q []float32, k int) ([]SearchResult, error)

	// Dimension returns the vector dimensionality.
	Dimension() int

	// Len returns the number of indexed entries.
	Len() int

	// Entries returns every indexed entry in identifier order.
	Entries() []Entry
}
