package kdtree

import (
	"slices"
	"strings"

	"github.com/hupe1980/songsight/index"
	"golang.org/x/sync/errgroup"
)

// Compile-time check to ensure Tree satisfies the index contract.
var _ index.Index = (*Tree)(nil)

// Options contains configuration options for the k-d tree.
type Options struct {
	// LeafSize is the maximum number of points stored in a leaf.
	LeafSize int

	// ParallelThreshold is the subset size above which the two halves of a
	// split are built concurrently. Zero or negative disables parallel builds.
	ParallelThreshold int
}

// DefaultOptions contains the default configuration options for the k-d tree.
var DefaultOptions = Options{
	LeafSize:          16,
	ParallelThreshold: 8192,
}

type node struct {
	lo, hi []float32 // bounding box of all points below this node

	axis        int
	left, right *node

	points []index.Entry // leaf only
}

func (n *node) leaf() bool { return n.left == nil }

// Tree is an immutable k-d tree. It is safe for concurrent queries.
type Tree struct {
	root      *node
	byID      []index.Entry
	dimension int
	opts      Options
}

// Build constructs a tree over entries.
//
// It fails with index.ErrEmptyInput for zero entries, *index.ErrDimensionMismatch
// when vector lengths differ, index.ErrDuplicateID and index.ErrInvalidVector.
func Build(entries []index.Entry, optFns ...func(o *Options)) (*Tree, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.LeafSize < 1 {
		opts.LeafSize = 1
	}

	canon, err := index.Canonicalize(entries)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		byID:      canon,
		dimension: len(canon[0].Vector),
		opts:      opts,
	}

	// The build permutes its own copy; byID keeps identifier order.
	points := slices.Clone(canon)

	b := &builder{opts: opts, dim: t.dimension}
	t.root = b.build(points)
	_ = b.g.Wait()

	return t, nil
}

type builder struct {
	g    errgroup.Group
	opts Options
	dim  int
}

func (b *builder) build(points []index.Entry) *node {
	n := &node{}
	n.lo, n.hi = bounds(points, b.dim)

	if len(points) <= b.opts.LeafSize {
		n.points = points
		return n
	}

	axis, spread := widest(n.lo, n.hi)
	if spread == 0 {
		// All points coincide; no split separates them.
		n.points = points
		return n
	}
	n.axis = axis

	slices.SortFunc(points, func(a, c index.Entry) int {
		av, cv := a.Vector[axis], c.Vector[axis]
		switch {
		case av < cv:
			return -1
		case av > cv:
			return 1
		}
		return strings.Compare(a.ID, c.ID)
	})

	mid := len(points) / 2
	left, right := points[:mid], points[mid:]

	// Children write into disjoint sub-slices, so the halves can be built
	// independently. Results are published by the final Wait in Build.
	if b.opts.ParallelThreshold > 0 && len(points) >= b.opts.ParallelThreshold {
		b.g.Go(func() error {
			n.left = b.build(left)
			return nil
		})
	} else {
		n.left = b.build(left)
	}
	n.right = b.build(right)

	return n
}

func bounds(points []index.Entry, dim int) (lo, hi []float32) {
	lo = slices.Clone(points[0].Vector)
	hi = slices.Clone(points[0].Vector)
	for _, p := range points[1:] {
		for d := 0; d < dim; d++ {
			v := p.Vector[d]
			if v < lo[d] {
				lo[d] = v
			}
			if v > hi[d] {
				hi[d] = v
			}
		}
	}
	return lo, hi
}

// widest returns the dimension with the greatest spread, lowest index on ties.
func widest(lo, hi []float32) (int, float32) {
	axis, best := 0, hi[0]-lo[0]
	for d := 1; d < len(lo); d++ {
		if s := hi[d] - lo[d]; s > best {
			axis, best = d, s
		}
	}
	return axis, best
}

func (*Tree) Name() string { return "KDTree" }

// Dimension returns the vector dimensionality.
func (t *Tree) Dimension() int { return t.dimension }

// Len returns the number of indexed entries.
func (t *Tree) Len() int { return len(t.byID) }

// Entries returns the indexed entries in identifier order.
// The returned vectors must not be modified.
func (t *Tree) Entries() []index.Entry {
	out := make([]index.Entry, len(t.byID))
	copy(out, t.byID)
	return out
}

// Vector returns the stored vector for id.
func (t *Tree) Vector(id string) ([]float32, bool) {
	i, ok := slices.BinarySearchFunc(t.byID, id, func(e index.Entry, target string) int {
		return strings.Compare(e.ID, target)
	})
	if !ok {
		return nil, false
	}
	return slices.Clone(t.byID[i].Vector), true
}
