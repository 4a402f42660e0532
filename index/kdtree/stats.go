package kdtree

import "fmt"

// Stats describes the shape of a tree.
type Stats struct {
	Entries   int
	Dimension int
	Nodes     int
	Leaves    int
	Depth     int
	MaxLeaf   int
	LeafSize  int
}

// String renders the statistics on one line.
func (s Stats) String() string {
	return fmt.Sprintf("entries=%d dimension=%d nodes=%d leaves=%d depth=%d max_leaf=%d leaf_size=%d",
		s.Entries, s.Dimension, s.Nodes, s.Leaves, s.Depth, s.MaxLeaf, s.LeafSize)
}

// Stats returns statistics about the tree.
func (t *Tree) Stats() Stats {
	s := Stats{
		Entries:   len(t.byID),
		Dimension: t.dimension,
		LeafSize:  t.opts.LeafSize,
	}
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		s.Nodes++
		if depth > s.Depth {
			s.Depth = depth
		}
		if n.leaf() {
			s.Leaves++
			if len(n.points) > s.MaxLeaf {
				s.MaxLeaf = len(n.points)
			}
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(t.root, 0)
	return s
}
