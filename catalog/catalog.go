package catalog

import (
	"context"
	"errors"

	"github.com/hupe1980/songsight/feature"
)

// ErrNotFound is returned when a track identifier is absent.
var ErrNotFound = errors.New("catalog: track not found")

// Track is one catalog row.
type Track struct {
	ID     string
	Name   string
	Artist string

	// Values are the raw display values used for filtering and ranking.
	Values Values

	// Attributes are the pre-scaled inputs of the feature vector.
	Attributes feature.Attributes
}

// Store is the read-only catalog the engine consumes.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the track with the given identifier or ErrNotFound.
	Get(ctx context.Context, id string) (Track, error)

	// All enumerates the whole catalog. It is used at index build time.
	All(ctx context.Context) ([]Track, error)
}
