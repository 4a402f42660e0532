package distance

import (
	"math"
)

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var d float32
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float32) float32 {
	return Sqrt(SquaredL2(a, b))
}

// SquaredL2Box returns the squared distance from q to the closest point of
// the axis-aligned box [lo, hi]. It is zero when q lies inside the box.
//
// Terms are summed in the same order as SquaredL2, so for every point p in
// the box SquaredL2Box(q, lo, hi) <= SquaredL2(q, p) holds exactly, not just
// up to rounding.
func SquaredL2Box(q, lo, hi []float32) float32 {
	var d float32
	for i := range q {
		var diff float32
		switch {
		case q[i] < lo[i]:
			diff = q[i] - lo[i]
		case q[i] > hi[i]:
			diff = q[i] - hi[i]
		default:
			continue
		}
		d += diff * diff
	}
	return d
}

// Sqrt returns the float32 square root of x.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Finite reports whether every component of v is neither NaN nor infinite.
func Finite(v []float32) bool {
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}
