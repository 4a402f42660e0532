package songsight

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/songsight/persistence"
)

// SaveSnapshot persists the index entries of the current state to the
// configured snapshot store and returns the committed manifest.
func (e *Engine) SaveSnapshot(ctx context.Context) (*persistence.Manifest, error) {
	if e.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}
	st, err := e.load()
	if err != nil {
		return nil, err
	}

	entries := st.index.Entries()
	mf, err := e.snapshots.Save(ctx, &persistence.Snapshot{
		Schema:  st.schema,
		Entries: entries,
	})
	err = translateError(err)

	var path string
	if mf != nil {
		path = mf.Path
	}
	e.opts.logger.LogSnapshot(ctx, "save", path, len(entries), err)
	if err != nil {
		return nil, err
	}

	// The new snapshot is committed; a failed prune is logged and retried on
	// the next save.
	if keep := e.opts.snapshotRetention; keep > 0 {
		_, _ = e.PruneSnapshots(ctx, keep)
	}
	return mf, nil
}

// PruneSnapshots deletes all but the newest keep snapshots from the
// snapshot store and returns how many were deleted. The active snapshot is
// never deleted.
func (e *Engine) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	if e.snapshots == nil {
		return 0, ErrNoSnapshotStore
	}
	if keep < 1 {
		return 0, fmt.Errorf("%w: keep must be positive, got %d", ErrInvalidArgument, keep)
	}

	deleted, err := e.snapshots.Prune(ctx, keep)
	err = translateError(err)
	e.opts.logger.LogPrune(ctx, keep, deleted, err)
	if err != nil {
		return deleted, err
	}
	return deleted, nil
}

// LoadSnapshot publishes the index stored in the active snapshot instead of
// rebuilding it from track attributes. The snapshot must have been built
// with the engine's schema. Selection columns are always rebuilt from the
// catalog.
func (e *Engine) LoadSnapshot(ctx context.Context) (*persistence.Manifest, error) {
	start := time.Now()
	mf, count, err := e.loadSnapshot(ctx)
	err = translateError(err)

	var path string
	if mf != nil {
		path = mf.Path
	}
	e.opts.metricsCollector.RecordRebuild(count, time.Since(start), err)
	e.opts.logger.LogSnapshot(ctx, "load", path, count, err)
	if err != nil {
		return nil, err
	}
	return mf, nil
}

func (e *Engine) loadSnapshot(ctx context.Context) (*persistence.Manifest, int, error) {
	if e.snapshots == nil {
		return nil, 0, ErrNoSnapshotStore
	}

	release, err := e.gate.Acquire(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer release()

	snap, mf, err := e.snapshots.Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	if snap.Schema.Fingerprint() != e.opts.schema.Fingerprint() {
		return mf, 0, fmt.Errorf("%w: snapshot schema %s, engine schema %s",
			ErrSchemaMismatch, snap.Schema, e.opts.schema)
	}

	tracks, err := e.store.All(ctx)
	if err != nil {
		return mf, 0, err
	}
	st, err := e.buildState(snap.Entries, tracks)
	if err != nil {
		return mf, 0, err
	}
	e.current.Store(st)
	return mf, len(snap.Entries), nil
}
