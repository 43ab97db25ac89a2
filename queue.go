package hwt

import "github.com/TomTonic/hwt/internal/chf"

// maxDistance is the largest representable Hamming distance for a
// 128-bit feature.
const maxDistance = 128

// nodeEntry is a pending map-node expansion: node identifies the slab
// entry, tp is the node's own identifying weight tuple (the CHF word, at
// level depth-1, that a parent used to find it — unused/zero for the
// root, which has no parent), base is the accumulated SOD at which this
// node was first discovered (constant across re-enqueues of the same
// node), and depth is the node's depth in the trie.
type nodeEntry struct {
	node  uint32
	tp    chf.Word
	base  int
	depth int
}

// leafEntry is a pending leaf-bucket scan.
type leafEntry struct {
	node uint32
}

// NodeQueue is a distance-indexed priority queue of pending interior
// (map) node expansions, used as scratch space by Tree.Nearest. It is
// owned by the caller so that it can be reused across many queries
// without reallocating.
//
// Representation: 129 buckets (one per integer Hamming distance) plus a
// lowest cursor, giving O(1) add and amortized O(1) extract-min across a
// full drain.
type NodeQueue struct {
	buckets [maxDistance + 1][]nodeEntry
	lowest  int
}

// NewNodeQueue returns an empty NodeQueue.
func NewNodeQueue() *NodeQueue { return &NodeQueue{} }

// Clear empties every bucket and resets the cursor, keeping allocations.
func (q *NodeQueue) Clear() {
	for i := range q.buckets {
		q.buckets[i] = q.buckets[i][:0]
	}
	q.lowest = 0
}

func (q *NodeQueue) addOne(distance int, e nodeEntry) {
	if distance < q.lowest {
		panic("hwt: NodeQueue entry violates the monotone-drain invariant")
	}
	q.buckets[distance] = append(q.buckets[distance], e)
}

// Distance reports the current minimum occupied distance without
// popping, and false if the queue is empty.
func (q *NodeQueue) Distance() (int, bool) {
	for q.lowest < maxDistance && len(q.buckets[q.lowest]) == 0 {
		q.lowest++
	}
	if len(q.buckets[q.lowest]) == 0 {
		return 0, false
	}
	return q.lowest, true
}

func (q *NodeQueue) pop() (nodeEntry, bool) {
	d, ok := q.Distance()
	if !ok {
		return nodeEntry{}, false
	}
	b := q.buckets[d]
	e := b[len(b)-1]
	q.buckets[d] = b[:len(b)-1]
	return e, true
}

// LeafQueue is the leaf-bucket counterpart of NodeQueue: it defers
// scanning a leaf bucket's features until the shell distance at which it
// was discovered is actually reached, so an early-terminated search
// never pays for scanning buckets it didn't need.
type LeafQueue struct {
	buckets [maxDistance + 1][]leafEntry
	lowest  int
}

// NewLeafQueue returns an empty LeafQueue.
func NewLeafQueue() *LeafQueue { return &LeafQueue{} }

// Clear empties every bucket and resets the cursor, keeping allocations.
func (q *LeafQueue) Clear() {
	for i := range q.buckets {
		q.buckets[i] = q.buckets[i][:0]
	}
	q.lowest = 0
}

func (q *LeafQueue) addOne(distance int, e leafEntry) {
	if distance < q.lowest {
		panic("hwt: LeafQueue entry violates the monotone-drain invariant")
	}
	q.buckets[distance] = append(q.buckets[distance], e)
}

// Distance reports the current minimum occupied distance without
// popping, and false if the queue is empty.
func (q *LeafQueue) Distance() (int, bool) {
	for q.lowest < maxDistance && len(q.buckets[q.lowest]) == 0 {
		q.lowest++
	}
	if len(q.buckets[q.lowest]) == 0 {
		return 0, false
	}
	return q.lowest, true
}

func (q *LeafQueue) pop() (leafEntry, bool) {
	d, ok := q.Distance()
	if !ok {
		return leafEntry{}, false
	}
	b := q.buckets[d]
	e := b[len(b)-1]
	q.buckets[d] = b[:len(b)-1]
	return e, true
}
