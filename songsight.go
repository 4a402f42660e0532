package songsight

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/songsight/catalog"
	"github.com/hupe1980/songsight/feature"
	"github.com/hupe1980/songsight/index"
	"github.com/hupe1980/songsight/index/flat"
	"github.com/hupe1980/songsight/index/kdtree"
	"github.com/hupe1980/songsight/internal/resource"
	"github.com/hupe1980/songsight/persistence"
	"github.com/hupe1980/songsight/selection"
)

// Neighbor is one similarity result.
type Neighbor struct {
	// ID is the identifier of the similar track.
	ID string

	// Distance is the Euclidean distance to the seed's feature vector.
	Distance float32
}

// state is an immutable built view of the catalog. Queries load it once
// and never observe a partially built replacement.
type state struct {
	index   index.Index
	columns *selection.Columns
	schema  *feature.Schema
	builtAt time.Time
}

// Engine answers similarity, range and sampling queries over a catalog.
// It is safe for concurrent use.
type Engine struct {
	store catalog.Store
	opts  options

	current   atomic.Pointer[state]
	gate      *resource.Controller
	snapshots *persistence.Manager // nil without a snapshot store

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates an engine over store. The engine is not ready until Rebuild
// or LoadSnapshot succeeds.
func New(store catalog.Store, optFns ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil catalog store", ErrInvalidArgument)
	}

	opts := applyOptions(optFns)

	var src rand.Source
	if opts.seed != nil {
		src = rand.NewPCG(*opts.seed, *opts.seed)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	e := &Engine{
		store: store,
		opts:  opts,
		gate:  resource.NewController(resource.Config{MaxConcurrent: 1, MinInterval: opts.rebuildInterval}),
		rng:   rand.New(src),
	}
	if opts.snapshotStore != nil {
		e.snapshots = persistence.NewManager(opts.snapshotStore, func(o *persistence.ManagerOptions) {
			o.Codec = opts.codec
			o.Compression = opts.compression
		})
	}
	return e, nil
}

// Schema returns the feature schema of the engine.
func (e *Engine) Schema() *feature.Schema { return e.opts.schema }

// Ready reports whether a built snapshot is available.
func (e *Engine) Ready() bool { return e.current.Load() != nil }

func (e *Engine) load() (*state, error) {
	st := e.current.Load()
	if st == nil {
		return nil, ErrNotReady
	}
	return st, nil
}

// Rebuild enumerates the catalog, builds a new index and selection columns,
// and publishes them atomically. Queries in flight keep the previous state.
//
// Only one rebuild runs at a time; a concurrent call fails with
// ErrRebuildInProgress.
func (e *Engine) Rebuild(ctx context.Context) error {
	start := time.Now()
	count, err := e.rebuild(ctx)
	err = translateError(err)
	e.opts.metricsCollector.RecordRebuild(count, time.Since(start), err)
	e.opts.logger.LogRebuild(ctx, count, time.Since(start), err)
	return err
}

func (e *Engine) rebuild(ctx context.Context) (int, error) {
	release, err := e.gate.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	tracks, err := e.store.All(ctx)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(tracks) == 0 {
		return 0, index.ErrEmptyInput
	}

	entries := make([]index.Entry, len(tracks))
	for i, t := range tracks {
		vec, err := e.opts.schema.Build(t.Attributes)
		if err != nil {
			return 0, fmt.Errorf("track %q: %w", t.ID, err)
		}
		entries[i] = index.Entry{ID: t.ID, Vector: vec}
	}

	st, err := e.buildState(entries, tracks)
	if err != nil {
		return 0, err
	}
	e.current.Store(st)
	return len(entries), nil
}

func (e *Engine) buildState(entries []index.Entry, tracks []catalog.Track) (*state, error) {
	idx, err := e.buildIndex(entries)
	if err != nil {
		return nil, err
	}
	cols, err := selection.NewColumns(tracks, e.opts.schema)
	if err != nil {
		return nil, err
	}
	return &state{
		index:   idx,
		columns: cols,
		schema:  e.opts.schema,
		builtAt: time.Now(),
	}, nil
}

func (e *Engine) buildIndex(entries []index.Entry) (index.Index, error) {
	switch e.opts.indexKind {
	case IndexFlat:
		return flat.New(entries)
	case IndexKDTree:
		return kdtree.Build(entries, func(o *kdtree.Options) {
			o.LeafSize = e.opts.leafSize
			o.ParallelThreshold = e.opts.parallelThreshold
		})
	default:
		return nil, fmt.Errorf("%w: index kind %s", ErrInvalidArgument, e.opts.indexKind)
	}
}

// SimilarTo returns the num tracks nearest to the seed track, ordered by
// ascending distance with ties broken by identifier. The seed itself is
// never part of the result. Fewer than num neighbors are returned when the
// index holds fewer other tracks.
func (e *Engine) SimilarTo(ctx context.Context, seedID string, num int) ([]Neighbor, error) {
	start := time.Now()
	res, err := e.similarTo(ctx, seedID, num)
	err = translateError(err)
	e.opts.metricsCollector.RecordSimilar(len(res), time.Since(start), err)
	e.opts.logger.LogSimilar(ctx, seedID, num, len(res), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) similarTo(ctx context.Context, seedID string, num int) ([]Neighbor, error) {
	if num < 1 {
		return nil, fmt.Errorf("%w: num must be positive, got %d", ErrInvalidArgument, num)
	}
	st, err := e.load()
	if err != nil {
		return nil, err
	}

	seed, err := e.store.Get(ctx, seedID)
	if err != nil {
		return nil, err
	}
	q, err := st.schema.Build(seed.Attributes)
	if err != nil {
		return nil, fmt.Errorf("track %q: %w", seedID, err)
	}

	// The index never holds more than Len() results. One extra makes room
	// for the seed, which is usually its own nearest neighbor.
	num = min(num, st.index.Len())
	results, err := st.index.KNN(q, num+1)
	if err != nil {
		return nil, err
	}

	out := make([]Neighbor, 0, min(num, len(results)))
	for _, r := range results {
		if r.ID == seedID {
			continue
		}
		if len(out) == num {
			break
		}
		out = append(out, Neighbor{ID: r.ID, Distance: r.Distance})
	}
	return out, nil
}

// SimilarIDs is like SimilarTo but returns only identifiers.
func (e *Engine) SimilarIDs(ctx context.Context, seedID string, num int) ([]string, error) {
	res, err := e.SimilarTo(ctx, seedID, num)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(res))
	for i, r := range res {
		ids[i] = r.ID
	}
	return ids, nil
}

// FilterRange returns the identifiers of tracks whose feature value lies in
// [lower, upper], ordered by (value, identifier) and capped at limit.
//
// A nil bound leaves that side open, but at least one bound is required;
// without bounds, or with lower > upper, the result is empty. A limit of 0
// applies the configured default limit. Genres, when given, restrict the
// matches to tracks flagged with any of them.
func (e *Engine) FilterRange(ctx context.Context, featureName string, lower, upper *float64, limit int, genres ...string) ([]string, error) {
	start := time.Now()
	ids, err := e.filterRange(featureName, lower, upper, limit, genres)
	err = translateError(err)
	e.opts.metricsCollector.RecordRange(len(ids), time.Since(start), err)
	e.opts.logger.LogRange(ctx, featureName, len(ids), err)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (e *Engine) filterRange(featureName string, lower, upper *float64, limit int, genres []string) ([]string, error) {
	f, err := catalog.ParseFeature(featureName)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = e.opts.rangeLimit
	}
	st, err := e.load()
	if err != nil {
		return nil, err
	}

	var filterOpts []selection.FilterOption
	if len(genres) > 0 {
		filterOpts = append(filterOpts, selection.InGenres(genres...))
	}
	return selection.FilterRange(st.columns, f, lower, upper, limit, filterOpts...)
}

// SampleTopRandom ranks tracks by a feature (descending unless ascending is
// set, ties by identifier), keeps the first topN and returns a random
// contiguous run of sampleM of them in rank order.
func (e *Engine) SampleTopRandom(ctx context.Context, featureName string, topN, sampleM int, ascending bool) ([]string, error) {
	start := time.Now()
	ids, err := e.sampleTopRandom(featureName, topN, sampleM, ascending)
	err = translateError(err)
	e.opts.metricsCollector.RecordSample(len(ids), time.Since(start), err)
	e.opts.logger.LogSample(ctx, featureName, len(ids), err)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SampleDefault samples DefaultSampleSize tracks from the DefaultSampleTop
// most popular ones.
func (e *Engine) SampleDefault(ctx context.Context) ([]string, error) {
	return e.SampleTopRandom(ctx, DefaultSampleFeature, DefaultSampleTop, DefaultSampleSize, false)
}

func (e *Engine) sampleTopRandom(featureName string, topN, sampleM int, ascending bool) ([]string, error) {
	f, err := catalog.ParseFeature(featureName)
	if err != nil {
		return nil, err
	}
	st, err := e.load()
	if err != nil {
		return nil, err
	}
	col, err := st.columns.Column(f)
	if err != nil {
		return nil, err
	}

	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return selection.SampleTopRandom(col, topN, sampleM, ascending, e.rng)
}

// Stats describes the currently published state.
type Stats struct {
	Ready         bool
	Index         string
	Tracks        int
	Dimension     int
	SchemaVersion string
	BuiltAt       time.Time

	// Tree is set for k-d tree indexes.
	Tree *kdtree.Stats

	RebuildsAdmitted int64
	RebuildsRejected int64
}

// Stats returns statistics about the engine.
func (e *Engine) Stats() Stats {
	s := Stats{
		Index:            e.opts.indexKind.String(),
		SchemaVersion:    e.opts.schema.Version(),
		RebuildsAdmitted: e.gate.Admitted(),
		RebuildsRejected: e.gate.Rejected(),
	}
	st := e.current.Load()
	if st == nil {
		return s
	}
	s.Ready = true
	s.Tracks = st.index.Len()
	s.Dimension = st.index.Dimension()
	s.BuiltAt = st.builtAt
	if tree, ok := st.index.(*kdtree.Tree); ok {
		ts := tree.Stats()
		s.Tree = &ts
	}
	return s
}
