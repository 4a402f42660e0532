package songsight

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/songsight/catalog"
	"github.com/hupe1980/songsight/feature"
)

var testSchema = feature.MustSchema("test-v1", []string{"x", "y"}, []string{"rock", "jazz"})

func track(id string, x, y float32, popularity, energy float64, genres ...string) catalog.Track {
	attrs, err := testSchema.NewAttributes(map[string]float32{"x": x, "y": y}, genres...)
	if err != nil {
		panic(err)
	}
	var v catalog.Values
	v.Set(catalog.Popularity, popularity)
	v.Set(catalog.Energy, energy)
	return catalog.Track{ID: id, Name: "Song " + id, Artist: "Artist " + id, Values: v, Attributes: attrs}
}

// scenarioStore holds four untagged tracks: A(0,0) B(1,0) C(5,5) D(1,1).
func scenarioStore() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		track("A", 0, 0, 10, 0.1),
		track("B", 1, 0, 30, 0.5),
		track("C", 5, 5, 30, 0.9),
		track("D", 1, 1, 40, 0.5),
	)
}

// taggedStore holds the scenario tracks with genres, which shift distances.
func taggedStore() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		track("A", 0, 0, 10, 0.1, "rock"),
		track("B", 1, 0, 30, 0.5, "jazz"),
		track("C", 5, 5, 30, 0.9, "rock"),
		track("D", 1, 1, 40, 0.5),
	)
}

func newEngine(t *testing.T, store catalog.Store, opts ...Option) *Engine {
	t.Helper()
	eng, err := New(store, append([]Option{WithSchema(testSchema), WithRandSeed(42)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func readyEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng := newEngine(t, scenarioStore(), opts...)
	require.NoError(t, eng.Rebuild(context.Background()))
	return eng
}

func ptr(v float64) *float64 { return &v }

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	eng, err := New(scenarioStore())
	require.NoError(t, err)
	assert.True(t, eng.Schema().Equal(feature.DefaultSchema()))
	assert.False(t, eng.Ready())
}

func TestNotReady(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, scenarioStore())

	_, err := eng.SimilarTo(ctx, "A", 2)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = eng.FilterRange(ctx, "popularity", ptr(0), nil, 10)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = eng.SampleTopRandom(ctx, "popularity", 2, 1, false)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = eng.SaveSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshotStore)

	assert.False(t, eng.Stats().Ready)
}

func TestSimilarTo(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []IndexKind{IndexKDTree, IndexFlat} {
		t.Run(kind.String(), func(t *testing.T) {
			eng := readyEngine(t, WithIndexKind(kind), WithLeafSize(1))

			got, err := eng.SimilarTo(ctx, "A", 2)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "B", got[0].ID)
			assert.InDelta(t, 1.0, got[0].Distance, 1e-6)
			assert.Equal(t, "D", got[1].ID)
			assert.InDelta(t, 1.41421356, got[1].Distance, 1e-6)

			// num beyond the catalog returns every other track.
			ids, err := eng.SimilarIDs(ctx, "A", 10)
			require.NoError(t, err)
			assert.Equal(t, []string{"B", "D", "C"}, ids)

			ids, err = eng.SimilarIDs(ctx, "C", 1)
			require.NoError(t, err)
			assert.Equal(t, []string{"D"}, ids)
		})
	}
}

func TestSimilarToErrors(t *testing.T) {
	ctx := context.Background()
	eng := readyEngine(t)

	_, err := eng.SimilarTo(ctx, "A", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = eng.SimilarTo(ctx, "missing", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSimilarToHugeNum(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []IndexKind{IndexKDTree, IndexFlat} {
		t.Run(kind.String(), func(t *testing.T) {
			eng := readyEngine(t, WithIndexKind(kind))

			for _, num := range []int{math.MaxInt, 1 << 45, 1 << 30} {
				ids, err := eng.SimilarIDs(ctx, "A", num)
				require.NoError(t, err, "num %d", num)
				assert.Equal(t, []string{"B", "D", "C"}, ids, "num %d", num)
			}
		})
	}
}

func TestSimilarToExcludesSeedByID(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	store.Put(track("E", 0, 0, 50, 0.2))
	eng := newEngine(t, store)
	require.NoError(t, eng.Rebuild(ctx))

	// E coincides with A and must still be returned.
	got, err := eng.SimilarTo(ctx, "A", 1)
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{ID: "E", Distance: 0}}, got)

	got, err = eng.SimilarTo(ctx, "E", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, []string{got[0].ID, got[1].ID})
}

func TestSimilarToSingleTrack(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, catalog.NewMemoryStore(track("A", 0, 0, 10, 0.1)))
	require.NoError(t, eng.Rebuild(ctx))

	got, err := eng.SimilarTo(ctx, "A", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRebuildErrors(t *testing.T) {
	ctx := context.Background()

	eng := newEngine(t, catalog.NewMemoryStore())
	assert.ErrorIs(t, eng.Rebuild(ctx), ErrEmptyInput)

	bad := track("X", 0, 0, 1, 1)
	delete(bad.Attributes.Continuous, "y")
	eng = newEngine(t, catalog.NewMemoryStore(bad))
	err := eng.Rebuild(ctx)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.False(t, eng.Ready())

	eng = newEngine(t, scenarioStore(), WithIndexKind(IndexKind(7)))
	assert.ErrorIs(t, eng.Rebuild(ctx), ErrInvalidArgument)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	eng = newEngine(t, scenarioStore())
	assert.ErrorIs(t, eng.Rebuild(cctx), context.Canceled)
}

func TestRebuildPublishesNewState(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	eng := newEngine(t, store)
	require.NoError(t, eng.Rebuild(ctx))

	ids, err := eng.SimilarIDs(ctx, "A", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, ids)

	store.Put(track("F", 0.1, 0, 5, 0.3))

	// Not visible until the next rebuild.
	ids, err = eng.SimilarIDs(ctx, "A", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, ids)

	require.NoError(t, eng.Rebuild(ctx))
	ids, err = eng.SimilarIDs(ctx, "A", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"F"}, ids)
}

func TestRebuildIsOrderIndependent(t *testing.T) {
	ctx := context.Background()

	a := newEngine(t, scenarioStore())
	require.NoError(t, a.Rebuild(ctx))

	reversed := &reversingStore{MemoryStore: scenarioStore()}
	b := newEngine(t, reversed)
	require.NoError(t, b.Rebuild(ctx))

	for _, seed := range []string{"A", "B", "C", "D"} {
		want, err := a.SimilarTo(ctx, seed, 3)
		require.NoError(t, err)
		got, err := b.SimilarTo(ctx, seed, 3)
		require.NoError(t, err)
		assert.Equal(t, want, got, seed)
	}
}

// reversingStore enumerates tracks in descending identifier order.
type reversingStore struct {
	*catalog.MemoryStore
}

func (s *reversingStore) All(ctx context.Context) ([]catalog.Track, error) {
	tracks, err := s.MemoryStore.All(ctx)
	for i, j := 0, len(tracks)-1; i < j; i, j = i+1, j-1 {
		tracks[i], tracks[j] = tracks[j], tracks[i]
	}
	return tracks, err
}

// blockingStore parks All until released.
type blockingStore struct {
	*catalog.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) All(ctx context.Context) ([]catalog.Track, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.MemoryStore.All(ctx)
}

func TestConcurrentRebuildRejected(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{
		MemoryStore: scenarioStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	eng := newEngine(t, store)

	done := make(chan error, 1)
	go func() { done <- eng.Rebuild(ctx) }()
	<-store.entered

	assert.ErrorIs(t, eng.Rebuild(ctx), ErrRebuildInProgress)

	close(store.release)
	require.NoError(t, <-done)
	assert.True(t, eng.Ready())

	stats := eng.Stats()
	assert.Equal(t, int64(1), stats.RebuildsAdmitted)
	assert.Equal(t, int64(1), stats.RebuildsRejected)
}

func TestConcurrentQueries(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	eng := newEngine(t, store)
	require.NoError(t, eng.Rebuild(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ids, err := eng.SimilarIDs(ctx, "C", 1)
				assert.NoError(t, err)
				assert.Equal(t, []string{"D"}, ids)

				_, err = eng.SampleTopRandom(ctx, "popularity", 4, 2, false)
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, eng.Rebuild(ctx))
	}
	wg.Wait()
}

func TestFilterRange(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, taggedStore())
	require.NoError(t, eng.Rebuild(ctx))

	tests := []struct {
		name         string
		feature      string
		lower, upper *float64
		limit        int
		genres       []string
		want         []string
	}{
		{"closed range", "popularity", ptr(30), ptr(40), 10, nil, []string{"B", "C", "D"}},
		{"lower only", "popularity", ptr(31), nil, 10, nil, []string{"D"}},
		{"upper only", "energy", nil, ptr(0.5), 10, nil, []string{"A", "B", "D"}},
		{"limit", "popularity", ptr(0), nil, 2, nil, []string{"A", "B"}},
		{"genre", "popularity", ptr(0), nil, 10, []string{"rock"}, []string{"A", "C"}},
		{"genre union", "popularity", ptr(20), nil, 10, []string{"rock", "jazz"}, []string{"B", "C"}},
		{"no bounds", "popularity", nil, nil, 10, nil, []string{}},
		{"lower above upper", "popularity", ptr(40), ptr(10), 10, nil, []string{}},
		{"no match", "popularity", ptr(1000), nil, 10, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.FilterRange(ctx, tt.feature, tt.lower, tt.upper, tt.limit, tt.genres...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterRangeErrors(t *testing.T) {
	ctx := context.Background()
	eng := readyEngine(t)

	_, err := eng.FilterRange(ctx, "bogus", ptr(0), nil, 10)
	assert.ErrorIs(t, err, ErrUnknownFeature)

	_, err = eng.FilterRange(ctx, "popularity", ptr(0), nil, 10, "polka")
	assert.ErrorIs(t, err, ErrUnknownFeature)

	_, err = eng.FilterRange(ctx, "popularity", ptr(0), nil, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFilterRangeDefaultLimit(t *testing.T) {
	ctx := context.Background()
	eng := readyEngine(t, WithDefaultRangeLimit(1))

	got, err := eng.FilterRange(ctx, "popularity", ptr(0), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got)

	for _, limit := range []int{0, -5} {
		eng := readyEngine(t, WithDefaultRangeLimit(limit))
		got, err := eng.FilterRange(ctx, "popularity", ptr(0), nil, 0)
		require.NoError(t, err, "limit %d", limit)
		assert.Len(t, got, 4, "limit %d", limit)
	}
}

func TestSampleTopRandom(t *testing.T) {
	ctx := context.Background()
	eng := readyEngine(t)

	// Descending popularity: D(40) B(30) C(30) A(10), ties by identifier.
	got, err := eng.SampleTopRandom(ctx, "popularity", 3, 5, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C"}, got)

	got, err = eng.SampleTopRandom(ctx, "popularity", 2, 2, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)

	windows := [][]string{{"D", "B"}, {"B", "C"}, {"C", "A"}}
	for i := 0; i < 50; i++ {
		got, err := eng.SampleTopRandom(ctx, "popularity", 4, 2, false)
		require.NoError(t, err)
		assert.Contains(t, windows, got)
	}

	_, err = eng.SampleTopRandom(ctx, "popularity", 0, 1, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = eng.SampleTopRandom(ctx, "popularity", 3, 0, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = eng.SampleTopRandom(ctx, "nope", 3, 1, false)
	assert.ErrorIs(t, err, ErrUnknownFeature)
}

func TestSampleSeedDeterminism(t *testing.T) {
	ctx := context.Background()
	a := readyEngine(t, WithRandSeed(7))
	b := readyEngine(t, WithRandSeed(7))

	for i := 0; i < 20; i++ {
		x, err := a.SampleTopRandom(ctx, "popularity", 4, 1, false)
		require.NoError(t, err)
		y, err := b.SampleTopRandom(ctx, "popularity", 4, 1, false)
		require.NoError(t, err)
		assert.Equal(t, x, y)
	}
}

func TestSampleDefault(t *testing.T) {
	ctx := context.Background()
	eng := readyEngine(t)

	// Fewer tracks than DefaultSampleSize: the whole ranking comes back.
	got, err := eng.SampleDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C", "A"}, got)
}

func TestStats(t *testing.T) {
	eng := readyEngine(t, WithLeafSize(2))

	s := eng.Stats()
	assert.True(t, s.Ready)
	assert.Equal(t, "kdtree", s.Index)
	assert.Equal(t, 4, s.Tracks)
	assert.Equal(t, 4, s.Dimension)
	assert.Equal(t, "test-v1", s.SchemaVersion)
	assert.False(t, s.BuiltAt.IsZero())
	require.NotNil(t, s.Tree)
	assert.Equal(t, 2, s.Tree.LeafSize)

	flatEng := readyEngine(t, WithIndexKind(IndexFlat))
	assert.Nil(t, flatEng.Stats().Tree)
	assert.Equal(t, "flat", flatEng.Stats().Index)
}

func TestMetricsAndLogging(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eng := readyEngine(t, WithMetricsCollector(metrics), WithLogger(logger))

	_, err := eng.SimilarTo(ctx, "A", 2)
	require.NoError(t, err)
	_, err = eng.SimilarTo(ctx, "missing", 2)
	require.Error(t, err)
	_, err = eng.FilterRange(ctx, "popularity", ptr(30), nil, 10)
	require.NoError(t, err)
	_, err = eng.SampleTopRandom(ctx, "popularity", 2, 1, false)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RebuildCount)
	assert.Equal(t, int64(4), stats.IndexedTracks)
	assert.Equal(t, int64(2), stats.SimilarCount)
	assert.Equal(t, int64(1), stats.SimilarErrors)
	assert.Equal(t, int64(2), stats.SimilarResults)
	assert.Equal(t, int64(1), stats.RangeCount)
	assert.Equal(t, int64(3), stats.RangeResults)
	assert.Equal(t, int64(1), stats.SampleCount)

	out := buf.String()
	assert.Contains(t, out, "rebuild completed")
	assert.Contains(t, out, "similar completed")
	assert.Contains(t, out, "similar failed")
	assert.Contains(t, out, "range filter completed")
	assert.Contains(t, out, "sample completed")
}

func TestRebuildInterval(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, scenarioStore(), WithRebuildInterval(time.Hour))
	require.NoError(t, eng.Rebuild(ctx))

	// The second rebuild waits for the limiter and gives up with its context.
	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, eng.Rebuild(cctx))
	assert.True(t, eng.Ready())
}
