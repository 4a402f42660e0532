package testutil

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/songsight/catalog"
	"github.com/hupe1980/songsight/distance"
	"github.com/hupe1980/songsight/feature"
	"github.com/hupe1980/songsight/index"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: newRand(seed),
		seed: seed,
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = newRand(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a non-negative pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// ID returns the synthetic identifier of the i-th generated entry.
// Identifiers sort in generation order.
func ID(i int) string {
	return fmt.Sprintf("t%05d", i)
}

// RandomEntries generates num entries with uniform vectors.
func (r *RNG) RandomEntries(num, dimensions int) []index.Entry {
	vectors := r.UniformVectors(num, dimensions)

	entries := make([]index.Entry, num)
	for i, v := range vectors {
		entries[i] = index.Entry{ID: ID(i), Vector: v}
	}
	return entries
}

// GridEntries generates num entries whose components are integers in
// [0, levels). The coarse lattice produces many coincident points and
// distance ties, which exercises identifier tie-breaking.
func (r *RNG) GridEntries(num, dimensions, levels int) []index.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]index.Entry, num)
	for i := range num {
		v := make([]float32, dimensions)
		for j := range v {
			v[j] = float32(r.rand.IntN(levels))
		}
		entries[i] = index.Entry{ID: ID(i), Vector: v}
	}
	return entries
}

// Shuffled returns a shuffled copy of entries.
func (r *RNG) Shuffled(entries []index.Entry) []index.Entry {
	out := slices.Clone(entries)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// RandomTracks generates num catalog tracks for schema.
//
// Continuous attributes are uniform in [0, 1). Each track carries one or
// two genres from the vocabulary. Display values are rounded to two
// decimals (popularity to an integer in [0, 100]) so columns contain ties.
func (r *RNG) RandomTracks(schema *feature.Schema, num int) []catalog.Track {
	continuous := schema.Continuous()
	vocabulary := schema.Vocabulary()

	r.mu.Lock()
	defer r.mu.Unlock()

	tracks := make([]catalog.Track, num)
	for i := range num {
		cont := make(map[string]float32, len(continuous))
		for _, name := range continuous {
			cont[name] = r.rand.Float32()
		}

		var genres []string
		if len(vocabulary) > 0 {
			genres = append(genres, vocabulary[r.rand.IntN(len(vocabulary))])
			if r.rand.IntN(2) == 0 {
				genres = append(genres, vocabulary[r.rand.IntN(len(vocabulary))])
			}
		}

		var values catalog.Values
		for _, f := range catalog.Features() {
			values.Set(f, math.Round(r.rand.Float64()*100)/100)
		}
		values.Set(catalog.Popularity, float64(r.rand.IntN(101)))

		// Genres are drawn from the vocabulary, so this cannot fail.
		attrs, _ := schema.NewAttributes(cont, genres...)

		tracks[i] = catalog.Track{
			ID:         ID(i),
			Name:       fmt.Sprintf("Track %d", i),
			Artist:     fmt.Sprintf("Artist %d", i%17),
			Values:     values,
			Attributes: attrs,
		}
	}
	return tracks
}

// BruteForceKNN performs an exhaustive search for ground truth. Results
// are ordered by ascending Euclidean distance, ties by identifier.
func BruteForceKNN(entries []index.Entry, query []float32, k int) []index.SearchResult {
	results := make([]index.SearchResult, len(entries))
	for i, e := range entries {
		results[i] = index.SearchResult{ID: e.ID, Distance: distance.L2(query, e.Vector)}
	}

	slices.SortFunc(results, func(a, b index.SearchResult) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}
