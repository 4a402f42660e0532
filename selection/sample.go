package selection

import (
	"fmt"
	"math/rand/v2"
)

// SampleTopRandom ranks col, keeps the first min(topN, Len()) rows as the
// window and returns a contiguous run of sampleM of them starting at an
// offset drawn uniformly from [0, window-sampleM]. If sampleM covers the
// window, the whole window is returned.
//
// Ascending ranks by (value, identifier). Descending ranks by value from
// high to low; equal values still order by ascending identifier. The run is
// returned in rank order.
//
// A nil rng draws from the package-level source of math/rand/v2.
func SampleTopRandom(col *Column, topN, sampleM int, ascending bool, rng *rand.Rand) ([]string, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top must be positive, got %d", ErrInvalidArgument, topN)
	}
	if sampleM <= 0 {
		return nil, fmt.Errorf("%w: num must be positive, got %d", ErrInvalidArgument, sampleM)
	}

	var window []row
	if ascending {
		window = col.rows[:min(topN, len(col.rows))]
	} else {
		window = col.descending(topN)
	}

	if sampleM < len(window) {
		n := len(window) - sampleM + 1
		var offset int
		if rng != nil {
			offset = rng.IntN(n)
		} else {
			offset = rand.IntN(n)
		}
		window = window[offset : offset+sampleM]
	}

	out := make([]string, len(window))
	for i, r := range window {
		out[i] = col.ids[r.ord]
	}
	return out, nil
}

// descending returns the first n rows ordered by value descending, with
// equal values in ascending identifier order.
func (c *Column) descending(n int) []row {
	out := make([]row, 0, min(n, len(c.rows)))
	end := len(c.rows)
	for end > 0 && len(out) < n {
		start := end - 1
		for start > 0 && c.rows[start-1].value == c.rows[end-1].value {
			start--
		}
		for _, r := range c.rows[start:end] {
			if len(out) == n {
				break
			}
			out = append(out, r)
		}
		end = start
	}
	return out
}
