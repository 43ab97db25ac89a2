package hwt

import (
	"iter"

	set3 "github.com/TomTonic/Set3"
	"github.com/TomTonic/hwt/internal/chf"
	"github.com/TomTonic/hwt/internal/chfmap"
	"github.com/TomTonic/hwt/internal/kernel"
)

const (
	// defaultTau is the leaf-bucket promotion threshold. Values from
	// ~2^10 to 2^16 are all reasonable; it only affects performance.
	defaultTau = 1 << 10
)

// maxKernelLevel is the highest level (0..6) at which the closed-form
// kernel enumerators apply: they compute a level L+1 tuple from a level
// L one, and level 7 is terminal.
const maxKernelLevel = 6

type leafBucket struct {
	features []Feature
}

type mapNode struct {
	table *chfmap.Map[uint32]
}

// node is the tagged union of the trie's two node kinds. A node sits at
// some depth 0..8; depth-8 nodes are always leaves since there is no
// CHF level left to key a table by, and isMap distinguishes the other
// depths.
type node struct {
	isMap bool
	leaf  leafBucket
	mp    mapNode
}

// Tree is a Hamming Weight Tree: an in-memory index over 128-bit
// features supporting insert, contains, radius search, and k-nearest
// search. The zero value is not usable; construct with New.
//
// Tree exclusively owns its node slab; it performs no internal mutation
// outside Insert, so Contains/SearchRadius/Nearest are safe to call
// concurrently with each other (but never concurrently with Insert).
type Tree struct {
	nodes    []node
	count    int
	tau      int
	tableTau [maxKernelLevel + 1]int
}

// Option configures a Tree at construction time.
type Option func(*Tree)

// WithTau overrides the leaf-bucket promotion threshold.
func WithTau(tau int) Option {
	return func(t *Tree) { t.tau = tau }
}

// WithTableThreshold overrides table_τ_L, the brute-force-vs-kernel
// switch used by Nearest at the given level (0..6): a map node is
// brute-forced when its key count is below this threshold, and walked
// via the closed-form kernel enumerators otherwise.
func WithTableThreshold(level, threshold int) Option {
	return func(t *Tree) { t.tableTau[level] = threshold }
}

// New returns an empty Tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		tau:   defaultTau,
		nodes: make([]node, 1, 64),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Len returns the number of features inserted (duplicates counted).
func (t *Tree) Len() int { return t.count }

// IsEmpty reports whether no feature has been inserted.
func (t *Tree) IsEmpty() bool { return t.count == 0 }

// Insert adds f to the index. Duplicates are permitted and not
// deduplicated.
func (t *Tree) Insert(f Feature) {
	idx := f.indices()
	cur := uint32(0)
	for depth := 0; ; depth++ {
		if t.nodes[cur].isMap {
			key := idx[depth]
			child, ok := t.nodes[cur].mp.table.Get(key)
			if !ok {
				t.nodes = append(t.nodes, node{leaf: leafBucket{features: []Feature{f}}})
				child = uint32(len(t.nodes) - 1)
				t.nodes[cur].mp.table.Put(key, child)
				t.count++
				return
			}
			cur = child
			continue
		}
		t.nodes[cur].leaf.features = append(t.nodes[cur].leaf.features, f)
		t.count++
		if len(t.nodes[cur].leaf.features) > t.tau && depth < 8 {
			t.promote(cur, depth)
		}
		return
	}
}

// promote replaces the leaf bucket at slab index leafIdx (sitting at the
// given depth) with a map node, re-binning its features by their
// depth-indexed CHF key. This is the only structural change insert ever
// performs.
func (t *Tree) promote(leafIdx uint32, depth int) {
	old := t.nodes[leafIdx].leaf.features
	table := chfmap.New[uint32]()
	for _, f := range old {
		key := f.indices()[depth]
		child, ok := table.Get(key)
		if !ok {
			t.nodes = append(t.nodes, node{leaf: leafBucket{features: []Feature{f}}})
			table.Put(key, uint32(len(t.nodes)-1))
			continue
		}
		t.nodes[child].leaf.features = append(t.nodes[child].leaf.features, f)
	}
	t.nodes[leafIdx] = node{isMap: true, mp: mapNode{table: table}}
}

// Contains reports whether f was inserted before.
func (t *Tree) Contains(f Feature) bool {
	idx := f.indices()
	cur := uint32(0)
	for depth := 0; ; depth++ {
		nd := t.nodes[cur]
		if nd.isMap {
			child, ok := nd.mp.table.Get(idx[depth])
			if !ok {
				return false
			}
			cur = child
			continue
		}
		for _, g := range nd.leaf.features {
			if g == f {
				return true
			}
		}
		return false
	}
}

// SearchRadius returns a lazy sequence of every stored feature within
// Hamming distance radius of query. Duplicates inserted more than once
// are yielded once per insertion — the index performs no deduplication.
func (t *Tree) SearchRadius(radius int, query Feature) iter.Seq[Feature] {
	return func(yield func(Feature) bool) {
		qIdx := query.indices()
		t.searchRadius(0, 0, query, qIdx, radius, yield)
	}
}

func (t *Tree) searchRadius(cur uint32, depth int, query Feature, qIdx [8]chf.Word, radius int, yield func(Feature) bool) bool {
	nd := &t.nodes[cur]
	if !nd.isMap {
		for _, f := range nd.leaf.features {
			if f.Distance(query) <= radius {
				if !yield(f) {
					return false
				}
			}
		}
		return true
	}
	cont := true
	nd.mp.table.Range(func(key chf.Word, child uint32) bool {
		if chf.HWD(depth, key, qIdx[depth]) <= radius {
			cont = t.searchRadius(child, depth+1, query, qIdx, radius, yield)
		}
		return cont
	})
	return cont
}

// SearchRadiusSet is a convenience wrapper around SearchRadius that
// collects the result into a *set3.Set3[Feature]. Unlike SearchRadius
// itself, this deduplicates: a feature inserted twice within radius
// appears once in the returned set.
func (t *Tree) SearchRadiusSet(radius int, query Feature) *set3.Set3[Feature] {
	s := set3.Empty[Feature]()
	for f := range t.SearchRadius(radius, query) {
		s.Add(f)
	}
	return s
}

// Nearest fills dest with the len(dest) features nearest to query, in
// nondecreasing distance order, and returns the number written (less
// than len(dest) when fewer features are stored, or when the maxWeight
// cap ends the search before len(dest) were found). maxWeight caps the
// search radius; maxError permits stopping once k features within
// min_achievable_distance+maxError have been collected. nq, lq, and fh
// are caller-owned scratch, reset internally for this query.
func (t *Tree) Nearest(query Feature, maxWeight, maxError int, nq *NodeQueue, lq *LeafQueue, fh *FeatureHeap, dest []Feature) int {
	fh.Reset(query, len(dest))
	nq.Clear()
	lq.Clear()
	qIdx := query.indices()

	root := &t.nodes[0]
	if !root.isMap {
		for _, f := range root.leaf.features {
			fh.Add(f)
		}
		return fh.FillSlice(dest)
	}
	nq.addOne(0, nodeEntry{node: 0, depth: 0, base: 0})

	for distance := 0; distance <= maxWeight; distance++ {
		sd := distance + maxError
		if sd > maxDistance {
			sd = maxDistance
		}
		fh.AdvanceSearchDistance(sd)
		if fh.Done() {
			return fh.FillSlice(dest)
		}
		for {
			d, ok := lq.Distance()
			if !ok || d != distance {
				break
			}
			e, _ := lq.pop()
			for _, f := range t.nodes[e.node].leaf.features {
				fh.Add(f)
			}
			if fh.Done() {
				return fh.FillSlice(dest)
			}
		}
		for {
			d, ok := nq.Distance()
			if !ok || d != distance {
				break
			}
			e, _ := nq.pop()
			t.processMapNode(e, distance, qIdx, maxWeight, nq, lq)
		}
	}
	return fh.FillSlice(dest)
}

// processMapNode expands one map node popped from the node queue at the
// given shell distance, discovering children and routing them to the
// node/leaf queues (or, for the root, there is no incoming weight tuple
// to drive the kernel against, so it is always brute-forced).
func (t *Tree) processMapNode(entry nodeEntry, distance int, qIdx [8]chf.Word, maxWeight int, nq *NodeQueue, lq *LeafQueue) {
	mp := t.nodes[entry.node].mp
	childDepth := entry.depth + 1
	level := entry.depth - 1

	bruteForce := entry.depth == 0 || level > maxKernelLevel || mp.table.Len() < t.tableTau[level]
	if bruteForce {
		mp.table.Range(func(key chf.Word, child uint32) bool {
			total := entry.base + chf.HWD(entry.depth, key, qIdx[entry.depth])
			if total <= maxWeight {
				t.enqueueChild(child, key, total, childDepth, nq, lq)
			}
			return true
		})
		return
	}

	target := distance - entry.base
	if target >= 0 {
		hits := kernel.Exact(
			chf.Fields(level, qIdx[level]),
			chf.Fields(level, entry.tp),
			chf.Fields(level+1, qIdx[level+1]),
			int(chf.FieldWidth(level+1)),
			target,
		)
		for _, hit := range hits {
			key := chf.Pack(level+1, hit.Fields)
			if child, ok := mp.table.Get(key); ok {
				t.enqueueChild(child, key, distance, childDepth, nq, lq)
			}
		}
	}
	if distance < maxDistance {
		nq.addOne(distance+1, entry)
	}
}

func (t *Tree) enqueueChild(child uint32, key chf.Word, dist, depth int, nq *NodeQueue, lq *LeafQueue) {
	if t.nodes[child].isMap {
		nq.addOne(dist, nodeEntry{node: child, tp: key, base: dist, depth: depth})
	} else {
		lq.addOne(dist, leafEntry{node: child})
	}
}
