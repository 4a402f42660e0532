// Package distance provides the Euclidean distance kernels used by the
// similarity indexes.
//
// The kernels accumulate in a fixed left-to-right order so that identical
// inputs produce bit-identical distances on every platform. Tie-breaking
// between equidistant tracks depends on that.
//
// # Usage
//
//	d2 := distance.SquaredL2(a, b)  // compare / rank with this
//	d := distance.L2(a, b)          // report this
//	lb := distance.SquaredL2Box(q, lo, hi)
package distance
