package kdtree

import (
	"math"
	"testing"

	"github.com/hupe1980/songsight/index"
	"github.com/hupe1980/songsight/index/flat"
	"github.com/hupe1980/songsight/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenario() []index.Entry {
	return []index.Entry{
		{ID: "A", Vector: []float32{0, 0}},
		{ID: "B", Vector: []float32{1, 0}},
		{ID: "C", Vector: []float32{5, 5}},
		{ID: "D", Vector: []float32{1, 1}},
	}
}

func TestKNNScenario(t *testing.T) {
	tree, err := Build(scenario())
	require.NoError(t, err)

	res, err := tree.KNN([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []string{"A", "B", "D"}, index.IDs(res))
	assert.Equal(t, float32(0), res[0].Distance)
	assert.Equal(t, float32(1), res[1].Distance)
	assert.InDelta(t, 1.41421356, res[2].Distance, 1e-6)

	res, err = tree.KNN([]float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D", "C"}, index.IDs(res))
}

func TestKNNMatchesFlat(t *testing.T) {
	tests := []struct {
		name     string
		entries  []index.Entry
		leafSize int
	}{
		{"Uniform", testutil.NewRNG(1).RandomEntries(2000, 6), 16},
		{"UniformLeaf1", testutil.NewRNG(2).RandomEntries(500, 3), 1},
		{"Grid", testutil.NewRNG(3).GridEntries(1500, 2, 5), 4},
		{"GridHighDim", testutil.NewRNG(4).GridEntries(800, 8, 2), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Build(tt.entries, func(o *Options) { o.LeafSize = tt.leafSize })
			require.NoError(t, err)
			oracle, err := flat.New(tt.entries)
			require.NoError(t, err)

			rng := testutil.NewRNG(99)
			dim := len(tt.entries[0].Vector)
			for q := 0; q < 50; q++ {
				var query []float32
				if q%2 == 0 {
					query = tt.entries[rng.IntN(len(tt.entries))].Vector
				} else {
					query = make([]float32, dim)
					rng.FillUniform(query)
				}
				for _, k := range []int{1, 5, 33} {
					got, err := tree.KNN(query, k)
					require.NoError(t, err)
					want, err := oracle.KNN(query, k)
					require.NoError(t, err)
					require.Equal(t, want, got, "query %d k=%d", q, k)
					require.Equal(t, testutil.BruteForceKNN(tt.entries, query, k), got)
				}
			}
		})
	}
}

func TestKNNOrdering(t *testing.T) {
	entries := testutil.NewRNG(5).GridEntries(600, 2, 3)
	tree, err := Build(entries)
	require.NoError(t, err)

	res, err := tree.KNN([]float32{1, 1}, 100)
	require.NoError(t, err)
	require.Len(t, res, 100)

	for i := 1; i < len(res); i++ {
		assert.True(t, index.Less(res[i-1], res[i]), "results %d and %d out of order", i-1, i)
	}
}

func TestKNNSelfFirst(t *testing.T) {
	entries := testutil.NewRNG(6).RandomEntries(300, 4)
	tree, err := Build(entries)
	require.NoError(t, err)

	for _, e := range entries[:20] {
		res, err := tree.KNN(e.Vector, 1)
		require.NoError(t, err)
		assert.Equal(t, e.ID, res[0].ID)
		assert.Equal(t, float32(0), res[0].Distance)
	}
}

func TestBuildOrderIndependent(t *testing.T) {
	rng := testutil.NewRNG(7)
	entries := rng.GridEntries(1000, 3, 4)

	a, err := Build(entries)
	require.NoError(t, err)
	b, err := Build(rng.Shuffled(entries))
	require.NoError(t, err)

	assert.Equal(t, a.Stats(), b.Stats())
	assert.Equal(t, a.Entries(), b.Entries())

	for q := 0; q < 20; q++ {
		query := entries[q*7].Vector
		ra, err := a.KNN(query, 25)
		require.NoError(t, err)
		rb, err := b.KNN(query, 25)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestParallelBuild(t *testing.T) {
	entries := testutil.NewRNG(8).RandomEntries(5000, 5)

	serial, err := Build(entries, func(o *Options) { o.ParallelThreshold = 0 })
	require.NoError(t, err)
	parallel, err := Build(entries, func(o *Options) { o.ParallelThreshold = 64 })
	require.NoError(t, err)

	assert.Equal(t, serial.Stats(), parallel.Stats())

	query := make([]float32, 5)
	testutil.NewRNG(9).FillUniform(query)
	rs, err := serial.KNN(query, 40)
	require.NoError(t, err)
	rp, err := parallel.KNN(query, 40)
	require.NoError(t, err)
	assert.Equal(t, rs, rp)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []index.Entry
		target  error
	}{
		{"Empty", nil, index.ErrEmptyInput},
		{"DuplicateID", []index.Entry{
			{ID: "x", Vector: []float32{1}},
			{ID: "x", Vector: []float32{2}},
		}, index.ErrDuplicateID},
		{"NaN", []index.Entry{{ID: "x", Vector: []float32{float32(math.NaN())}}}, index.ErrInvalidVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.entries)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := Build([]index.Entry{
			{ID: "a", Vector: []float32{1, 2}},
			{ID: "b", Vector: []float32{1, 2, 3}},
		})
		var dimErr *index.ErrDimensionMismatch
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, 2, dimErr.Expected)
		assert.Equal(t, 3, dimErr.Actual)
	})
}

func TestKNNErrors(t *testing.T) {
	tree, err := Build(scenario())
	require.NoError(t, err)

	_, err = tree.KNN([]float32{0, 0}, 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)

	_, err = tree.KNN([]float32{0, 0, 0}, 1)
	var dimErr *index.ErrDimensionMismatch
	assert.ErrorAs(t, err, &dimErr)
}

func TestVectorAndEntries(t *testing.T) {
	tree, err := Build(scenario())
	require.NoError(t, err)

	v, ok := tree.Vector("D")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 1}, v)
	v[0] = 42
	v2, _ := tree.Vector("D")
	assert.Equal(t, float32(1), v2[0])

	_, ok = tree.Vector("Z")
	assert.False(t, ok)

	entries := tree.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "A", entries[0].ID)
	assert.Equal(t, "D", entries[3].ID)
	assert.Equal(t, 2, tree.Dimension())
	assert.Equal(t, 4, tree.Len())
	assert.Equal(t, "KDTree", tree.Name())
}

func TestStats(t *testing.T) {
	entries := testutil.NewRNG(10).RandomEntries(1000, 3)
	tree, err := Build(entries)
	require.NoError(t, err)

	s := tree.Stats()
	assert.Equal(t, 1000, s.Entries)
	assert.Equal(t, 3, s.Dimension)
	assert.Equal(t, 16, s.LeafSize)
	assert.LessOrEqual(t, s.MaxLeaf, 16)
	assert.Equal(t, s.Leaves*2-1, s.Nodes)
	assert.Greater(t, s.Depth, 0)
	assert.Contains(t, s.String(), "entries=1000")

	t.Run("Coincident", func(t *testing.T) {
		same := testutil.NewRNG(0).GridEntries(100, 2, 1)
		tree, err := Build(same, func(o *Options) { o.LeafSize = 4 })
		require.NoError(t, err)
		s := tree.Stats()
		assert.Equal(t, 1, s.Nodes)
		assert.Equal(t, 100, s.MaxLeaf)

		res, err := tree.KNN([]float32{0, 0}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"t00000", "t00001", "t00002"}, index.IDs(res))
	})
}
