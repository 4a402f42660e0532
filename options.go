package songsight

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/songsight/blobstore"
	"github.com/hupe1980/songsight/codec"
	"github.com/hupe1980/songsight/feature"
	"github.com/hupe1980/songsight/index/kdtree"
	"github.com/hupe1980/songsight/persistence"
)

// IndexKind selects the nearest-neighbor index built by Rebuild.
type IndexKind int

const (
	// IndexKDTree builds an exact k-d tree (default).
	IndexKDTree IndexKind = iota
	// IndexFlat scans every entry. Useful as a reference and for tiny catalogs.
	IndexFlat
)

func (k IndexKind) String() string {
	switch k {
	case IndexKDTree:
		return "kdtree"
	case IndexFlat:
		return "flat"
	default:
		return fmt.Sprintf("IndexKind(%d)", int(k))
	}
}

const (
	// DefaultRangeLimit caps FilterRange results when the caller passes 0.
	DefaultRangeLimit = 200

	// DefaultSampleFeature, DefaultSampleSize and DefaultSampleTop are the
	// parameters of SampleDefault: ten random picks from the 100 most popular.
	DefaultSampleFeature = "popularity"
	DefaultSampleSize    = 10
	DefaultSampleTop     = 100
)

type options struct {
	schema            *feature.Schema
	indexKind         IndexKind
	leafSize          int
	parallelThreshold int
	metricsCollector  MetricsCollector
	logger            *Logger
	seed              *uint64
	rangeLimit        int
	rebuildInterval   time.Duration
	snapshotStore     blobstore.Store
	compression       persistence.Compression
	snapshotRetention int
	codec             codec.Codec
}

// Option configures an Engine.
type Option func(*options)

// WithSchema sets the feature schema. Defaults to feature.DefaultSchema().
func WithSchema(schema *feature.Schema) Option {
	return func(o *options) {
		if schema != nil {
			o.schema = schema
		}
	}
}

// WithIndexKind selects the index implementation.
func WithIndexKind(kind IndexKind) Option {
	return func(o *options) {
		o.indexKind = kind
	}
}

// WithLeafSize sets the maximum number of points per k-d tree leaf.
func WithLeafSize(size int) Option {
	return func(o *options) {
		o.leafSize = size
	}
}

// WithParallelThreshold sets the subset size above which k-d tree halves
// are built concurrently. Zero or negative disables parallel builds.
func WithParallelThreshold(n int) Option {
	return func(o *options) {
		o.parallelThreshold = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &songsight.BasicMetricsCollector{}
//	eng, _ := songsight.New(store, songsight.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.SimilarCount, stats.SimilarAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := songsight.NewJSONLogger(slog.LevelInfo)
//	eng, _ := songsight.New(store, songsight.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithRandSeed makes SampleTopRandom deterministic: two engines with the
// same seed over the same snapshot return the same sequence of samples.
func WithRandSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithDefaultRangeLimit sets the limit FilterRange applies when the caller
// passes 0. Non-positive values are ignored.
func WithDefaultRangeLimit(limit int) Option {
	return func(o *options) {
		if limit > 0 {
			o.rangeLimit = limit
		}
	}
}

// WithRebuildInterval sets the minimum spacing between rebuilds. A rebuild
// requested earlier waits for its slot (or for its context to end).
func WithRebuildInterval(d time.Duration) Option {
	return func(o *options) {
		o.rebuildInterval = d
	}
}

// WithSnapshotStore enables SaveSnapshot and LoadSnapshot on the given
// blob store.
//
// Example with a local directory:
//
//	eng, _ := songsight.New(store,
//	    songsight.WithSnapshotStore(blobstore.NewLocalStore("./snapshots")),
//	    songsight.WithCompression(persistence.CompressionZSTD),
//	)
func WithSnapshotStore(store blobstore.Store) Option {
	return func(o *options) {
		o.snapshotStore = store
	}
}

// WithSnapshotRetention makes SaveSnapshot prune all but the newest keep
// snapshots after each successful save. Zero, the default, keeps every
// snapshot; negative values are ignored.
func WithSnapshotRetention(keep int) Option {
	return func(o *options) {
		if keep >= 0 {
			o.snapshotRetention = keep
		}
	}
}

// WithCompression sets the snapshot body compression.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec configures the codec used for snapshot manifests and schema
// descriptors.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		indexKind:         IndexKDTree,
		leafSize:          kdtree.DefaultOptions.LeafSize,
		parallelThreshold: kdtree.DefaultOptions.ParallelThreshold,
		metricsCollector:  NoopMetricsCollector{},
		logger:            NoopLogger(),
		rangeLimit:        DefaultRangeLimit,
		compression:       persistence.CompressionNone,
		codec:             codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.schema == nil {
		o.schema = feature.DefaultSchema()
	}
	return o
}
