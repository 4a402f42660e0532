package selection

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/songsight/catalog"
	"github.com/hupe1980/songsight/feature"
)

var (
	// ErrInvalidArgument is returned for non-positive counts or NaN bounds.
	ErrInvalidArgument = errors.New("selection: invalid argument")

	// ErrInvalidValue is returned when a track carries a non-finite value.
	ErrInvalidValue = errors.New("selection: invalid value")

	// ErrDuplicateID is returned when two tracks share an identifier.
	ErrDuplicateID = errors.New("selection: duplicate id")
)

type row struct {
	value float64
	ord   uint32
}

// Column is one feature of every track, sorted by (value, identifier).
type Column struct {
	feature catalog.Feature
	rows    []row
	ids     []string // shared ordinal -> identifier table
}

// Feature returns the feature held by the column.
func (c *Column) Feature() catalog.Feature { return c.feature }

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.rows) }

// At returns the i-th row in ascending (value, identifier) order.
func (c *Column) At(i int) (id string, value float64) {
	r := c.rows[i]
	return c.ids[r.ord], r.value
}

// lowerBound returns the first row whose value is >= v.
func (c *Column) lowerBound(v float64) int {
	i, _ := slices.BinarySearchFunc(c.rows, v, func(r row, target float64) int {
		return cmp.Compare(r.value, target)
	})
	return i
}

// upperBound returns the first row whose value is > v.
func (c *Column) upperBound(v float64) int {
	lo, hi := 0, len(c.rows)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if c.rows[mid].value <= v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Columns is an immutable selection view of a catalog snapshot.
type Columns struct {
	ids     []string
	columns []*Column
	genres  map[string]*roaring.Bitmap
}

// NewColumns builds one sorted column per catalog feature and, when schema
// is non-nil, a bitmap per vocabulary label.
func NewColumns(tracks []catalog.Track, schema *feature.Schema) (*Columns, error) {
	sorted := slices.Clone(tracks)
	slices.SortFunc(sorted, func(a, b catalog.Track) int { return strings.Compare(a.ID, b.ID) })

	ids := make([]string, len(sorted))
	for i, t := range sorted {
		if i > 0 && t.ID == sorted[i-1].ID {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, t.ID)
		}
		ids[i] = t.ID
	}

	features := catalog.Features()
	c := &Columns{
		ids:     ids,
		columns: make([]*Column, len(features)),
		genres:  make(map[string]*roaring.Bitmap),
	}

	for _, f := range features {
		rows := make([]row, len(sorted))
		for i, t := range sorted {
			v := t.Values.Get(f)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s of %q", ErrInvalidValue, f, t.ID)
			}
			rows[i] = row{value: v, ord: uint32(i)}
		}
		// Ordinals follow identifier order, so (value, ord) is (value, id).
		slices.SortFunc(rows, func(a, b row) int {
			if r := cmp.Compare(a.value, b.value); r != 0 {
				return r
			}
			return cmp.Compare(a.ord, b.ord)
		})
		c.columns[f] = &Column{feature: f, rows: rows, ids: ids}
	}

	if schema != nil {
		for _, label := range schema.Vocabulary() {
			c.genres[label] = roaring.New()
		}
		for i, t := range sorted {
			for _, label := range schema.Genres(t.Attributes) {
				c.genres[label].Add(uint32(i))
			}
		}
		for _, bm := range c.genres {
			bm.RunOptimize()
		}
	}

	return c, nil
}

// Len returns the number of tracks.
func (c *Columns) Len() int { return len(c.ids) }

// Column returns the column of f.
func (c *Columns) Column(f catalog.Feature) (*Column, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownFeature, f)
	}
	return c.columns[f], nil
}

// GenreCount returns the number of tracks flagged with label.
func (c *Columns) GenreCount(label string) (uint64, error) {
	bm, ok := c.genres[label]
	if !ok {
		return 0, fmt.Errorf("%w: genre %q", catalog.ErrUnknownFeature, label)
	}
	return bm.GetCardinality(), nil
}

// genreUnion returns the tracks flagged with any of labels.
func (c *Columns) genreUnion(labels []string) (*roaring.Bitmap, error) {
	bms := make([]*roaring.Bitmap, 0, len(labels))
	for _, label := range labels {
		bm, ok := c.genres[label]
		if !ok {
			return nil, fmt.Errorf("%w: genre %q", catalog.ErrUnknownFeature, label)
		}
		bms = append(bms, bm)
	}
	return roaring.FastOr(bms...), nil
}
