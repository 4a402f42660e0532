package selection

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/songsight/catalog"
)

type filterOptions struct {
	genres []string
}

// FilterOption configures FilterRange.
type FilterOption func(o *filterOptions)

// InGenres restricts matches to tracks flagged with any of labels.
// Labels outside the vocabulary fail with catalog.ErrUnknownFeature.
func InGenres(labels ...string) FilterOption {
	return func(o *filterOptions) {
		o.genres = append(o.genres, labels...)
	}
}

// FilterRange returns up to limit identifiers whose value of f lies in
// [lower, upper], in ascending (value, identifier) order. A nil bound is
// open.
//
// With neither bound the result is empty: an unbounded scan is never run.
// lower > upper also yields an empty result. Both are successes, as is an
// empty match set; the returned slice is never nil on success.
func FilterRange(cols *Columns, f catalog.Feature, lower, upper *float64, limit int, optFns ...FilterOption) ([]string, error) {
	col, err := cols.Column(f)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	if (lower != nil && math.IsNaN(*lower)) || (upper != nil && math.IsNaN(*upper)) {
		return nil, fmt.Errorf("%w: NaN bound", ErrInvalidArgument)
	}

	opts := filterOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var allowed *roaring.Bitmap
	if len(opts.genres) > 0 {
		if allowed, err = cols.genreUnion(opts.genres); err != nil {
			return nil, err
		}
	}

	if lower == nil && upper == nil {
		return []string{}, nil
	}
	if lower != nil && upper != nil && *lower > *upper {
		return []string{}, nil
	}

	lo, hi := 0, col.Len()
	if lower != nil {
		lo = col.lowerBound(*lower)
	}
	if upper != nil {
		hi = col.upperBound(*upper)
	}

	out := make([]string, 0, min(limit, hi-lo))
	for _, r := range col.rows[lo:hi] {
		if len(out) == limit {
			break
		}
		if allowed != nil && !allowed.Contains(r.ord) {
			continue
		}
		out = append(out, col.ids[r.ord])
	}
	return out, nil
}
