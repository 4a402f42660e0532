// Package testutil provides testing utilities for songsight.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source, synthetic index entries and
// catalogs, and an exhaustive k-NN oracle.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	entries := rng.RandomEntries(1000, 8)   // ids t00000..t00999, values in [0, 1)
//	grid := rng.GridEntries(1000, 2, 4)     // small integer lattice, many ties
//	tracks := rng.RandomTracks(feature.DefaultSchema(), 200)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceKNN(entries, query, k)
package testutil
