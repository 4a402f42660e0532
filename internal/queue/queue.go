// Package queue implements the bounded result heap used by exact k-NN search.
package queue

// Item is a candidate result. Ordering is by Distance, then by ID.
type Item struct {
	ID       string
	Distance float32
}

// Less reports whether a ranks strictly before b.
func Less(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.ID < b.ID
}

// Bounded is a max-heap holding the best k items seen so far.
// The top is the worst retained item, so it is the one evicted first.
// Value-based storage, no container/heap interface overhead.
type Bounded struct {
	k     int
	items []Item
}

// NewBounded creates a heap that retains at most k items.
func NewBounded(k int) *Bounded {
	c := k
	if c > 1024 {
		c = 1024
	}
	return &Bounded{
		k:     k,
		items: make([]Item, 0, c),
	}
}

// Len returns the number of retained items.
func (q *Bounded) Len() int { return len(q.items) }

// Full reports whether k items are retained.
func (q *Bounded) Full() bool { return len(q.items) >= q.k }

// Worst returns the top (worst retained) item.
func (q *Bounded) Worst() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Push offers an item. It is kept if the heap is not full or if it ranks
// before the current worst, which is then evicted. Reports whether the
// item was kept.
func (q *Bounded) Push(item Item) bool {
	if len(q.items) < q.k {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if q.k == 0 || !Less(item, q.items[0]) {
		return false
	}
	q.items[0] = item
	q.siftDown(0)
	return true
}

// Drain empties the heap and returns its items best-first.
func (q *Bounded) Drain() []Item {
	out := make([]Item, len(q.items))
	for i := len(q.items) - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

func (q *Bounded) pop() Item {
	n := len(q.items)
	root := q.items[0]
	q.items[0] = q.items[n-1]
	q.items[n-1] = Item{}
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return root
}

// above reports whether i belongs above j in the max-heap.
func (q *Bounded) above(i, j int) bool {
	return Less(q.items[j], q.items[i])
}

func (q *Bounded) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.above(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Bounded) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && q.above(r, l) {
			best = r
		}
		if !q.above(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
