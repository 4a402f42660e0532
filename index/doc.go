// Package index defines the exact k-nearest-neighbor index contract shared
// by the similarity indexes.
//
// Two implementations satisfy Index:
//
//   - kdtree: balanced k-d tree, O(log n) expected query time
//   - flat: exhaustive scan, used as the reference and for tiny catalogs
//
// Both are exact and return identical results for identical inputs:
// ascending Euclidean distance, equal distances ordered by identifier
// (byte-wise lexicographic).
//
// # Subpackages
//
//   - kdtree: spatial partitioning index
//   - flat: brute-force index
package index
