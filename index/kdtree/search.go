package kdtree

import (
	"github.com/hupe1980/songsight/distance"
	"github.com/hupe1980/songsight/index"
	"github.com/hupe1980/songsight/internal/queue"
)

// KNN returns the min(k, Len()) entries nearest to q, ordered by ascending
// Euclidean distance with ties broken by ascending identifier.
//
// The query is normally the vector of an indexed track, which then appears
// as its own nearest neighbor at distance 0; excluding it is up to the
// caller.
func (t *Tree) KNN(q []float32, k int) ([]index.SearchResult, error) {
	if err := index.ValidateQuery(q, k, t.dimension); err != nil {
		return nil, err
	}

	pq := queue.NewBounded(k)
	t.search(t.root, q, pq)

	items := pq.Drain()
	results := make([]index.SearchResult, len(items))
	for i, it := range items {
		results[i] = index.SearchResult{ID: it.ID, Distance: it.Distance}
	}
	return results, nil
}

func (t *Tree) search(n *node, q []float32, pq *queue.Bounded) {
	if n.leaf() {
		for _, p := range n.points {
			pq.Push(queue.Item{ID: p.ID, Distance: distance.L2(q, p.Vector)})
		}
		return
	}

	near, far := n.left, n.right
	dNear := boxDistance(q, near)
	dFar := boxDistance(q, far)
	if dFar < dNear {
		near, far = far, near
		dNear, dFar = dFar, dNear
	}

	if visit(pq, dNear) {
		t.search(near, q, pq)
	}
	if visit(pq, dFar) {
		t.search(far, q, pq)
	}
}

// visit reports whether a subtree whose nearest possible point lies at
// bound can still contribute. Equality must not prune: a tied point with a
// smaller identifier would displace the current worst.
func visit(pq *queue.Bounded, bound float32) bool {
	if !pq.Full() {
		return true
	}
	worst, _ := pq.Worst()
	return bound <= worst.Distance
}

func boxDistance(q []float32, n *node) float32 {
	return distance.Sqrt(distance.SquaredL2Box(q, n.lo, n.hi))
}
