// Package selection implements feature-based browsing over a catalog
// snapshot: an inclusive range filter on one feature and rank-biased random
// sampling ("top N, then a contiguous run of M at a random offset").
//
// Both operate on Columns, an immutable per-feature view of the catalog in
// which every column is sorted by (value, identifier). Identifiers are
// additionally numbered by ordinal so that genre membership can be kept in
// roaring bitmaps.
package selection
