// Package kdtree implements an immutable, batch-built k-d tree with exact
// k-nearest-neighbor search under Euclidean distance.
//
// # Split policy
//
// Each internal node splits its subset on the dimension with the greatest
// spread (max - min), choosing the lowest dimension index when spreads tie.
// The subset is ordered by (component on that axis, identifier) and cut at
// the median: the left child receives the lower floor(n/2) points, the right
// child the rest. Subsets of at most LeafSize points, or whose points are
// all identical, become leaves. Every node keeps the bounding box of its
// points.
//
// Because the entries are canonically ordered by identifier before the
// build and the split key includes the identifier, the tree shape does not
// depend on the order in which entries were supplied.
//
// # Search
//
// KNN descends into the child whose bounding box is nearer to the query
// first. A subtree is skipped only when the distance from the query to its
// bounding box is strictly greater than the current k-th best distance, so a
// point tied with the k-th best is still considered and the identifier
// tie-break is honored exactly.
//
// Build costs O(n log^2 n). Queries cost O(log n) expected and degrade to
// O(n) on degenerate distributions (e.g. many near-identical vectors in high
// dimension).
package kdtree
