package songsight

import (
	"errors"
	"fmt"

	"github.com/hupe1980/songsight/catalog"
	"github.com/hupe1980/songsight/feature"
	"github.com/hupe1980/songsight/index"
	"github.com/hupe1980/songsight/internal/resource"
	"github.com/hupe1980/songsight/persistence"
	"github.com/hupe1980/songsight/selection"
)

var (
	// ErrSchemaMismatch is returned when a feature vector cannot be built
	// from a track's attributes, or a snapshot was built with another schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrEmptyInput is returned when an index would be built from zero tracks.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnknownFeature is returned for an unrecognized feature or genre name.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrNotFound is returned when the seed track is absent from the catalog,
	// or when no snapshot has been saved yet.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for non-positive counts, NaN bounds
	// and malformed catalog rows.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotReady is returned by queries issued before the first successful
	// rebuild or snapshot load.
	ErrNotReady = errors.New("engine not ready")

	// ErrRebuildInProgress is returned when another rebuild holds the gate.
	ErrRebuildInProgress = errors.New("rebuild in progress")

	// ErrNoSnapshotStore is returned by snapshot operations when no store is
	// configured.
	ErrNoSnapshotStore = errors.New("no snapshot store configured")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, persistence.ErrNoSnapshot) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Dimension and argument normalization.
	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, feature.ErrSchemaMismatch) {
		return fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	if errors.Is(err, index.ErrEmptyInput) {
		return fmt.Errorf("%w: %w", ErrEmptyInput, err)
	}
	if errors.Is(err, catalog.ErrUnknownFeature) {
		return fmt.Errorf("%w: %w", ErrUnknownFeature, err)
	}
	if errors.Is(err, index.ErrInvalidK) ||
		errors.Is(err, index.ErrDuplicateID) ||
		errors.Is(err, index.ErrInvalidVector) ||
		errors.Is(err, selection.ErrInvalidArgument) ||
		errors.Is(err, selection.ErrInvalidValue) ||
		errors.Is(err, selection.ErrDuplicateID) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if errors.Is(err, resource.ErrBusy) {
		return fmt.Errorf("%w: %w", ErrRebuildInProgress, err)
	}

	return err
}
