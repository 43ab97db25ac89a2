package hwt

// FeatureHeap is the bounded k-best container used by Tree.Nearest. It is
// owned by the caller and reset per query so it can be reused across many
// queries without reallocating.
//
// Representation: 129 buckets indexed by Hamming distance to the
// recorded query, a size, an in_search ratchet, a search_distance
// watermark, and a worst index tracking the highest occupied bucket —
// the same distance-bucketed layout as NodeQueue/LeafQueue, chosen for
// the same O(1)-extract-min reason, here applied to "smallest k seen".
type FeatureHeap struct {
	query          Feature
	capacity       int
	size           int
	inSearch       int
	searchDistance int
	worst          int
	buckets        [maxDistance + 1][]Feature
}

// NewFeatureHeap returns an empty FeatureHeap.
func NewFeatureHeap() *FeatureHeap { return &FeatureHeap{} }

// Reset prepares the heap for a new query: capacity k, all buckets
// empty, search_distance rewound.
func (h *FeatureHeap) Reset(query Feature, k int) {
	for i := range h.buckets {
		h.buckets[i] = h.buckets[i][:0]
	}
	h.query = query
	h.capacity = k
	h.size = 0
	h.inSearch = 0
	h.searchDistance = -1
	h.worst = 0
}

// Add offers a feature to the heap. If fewer than capacity are held, it
// is kept unconditionally; otherwise it replaces the current worst only
// if strictly closer.
func (h *FeatureHeap) Add(f Feature) {
	d := h.query.Distance(f)
	accepted := false
	switch {
	case h.size < h.capacity:
		h.buckets[d] = append(h.buckets[d], f)
		h.size++
		if d > h.worst {
			h.worst = d
		}
		accepted = true
	case d < h.worst:
		h.buckets[d] = append(h.buckets[d], f)
		wb := h.buckets[h.worst]
		h.buckets[h.worst] = wb[:len(wb)-1]
		for h.worst > 0 && len(h.buckets[h.worst]) == 0 {
			h.worst--
		}
		accepted = true
	}
	if accepted && d <= h.searchDistance {
		h.inSearch++
	}
}

// AdvanceSearchDistance moves the search_distance watermark forward. It
// panics if called with a smaller value than the current watermark — the
// caller must drive distance monotonically, matching the shell-by-shell
// expansion that makes `Done` a sound stopping condition.
func (h *FeatureHeap) AdvanceSearchDistance(distance int) {
	if distance < h.searchDistance {
		panic("hwt: FeatureHeap.AdvanceSearchDistance called non-monotonically")
	}
	h.searchDistance = distance
}

// Filled reports whether capacity features are currently held. This is
// weaker than Done: a full heap may still be improved by a closer
// feature from an unsearched shell.
func (h *FeatureHeap) Filled() bool { return h.size >= h.capacity }

// Done reports whether the k held features are provably the closest:
// at least k acceptances have occurred at distance <= search_distance.
func (h *FeatureHeap) Done() bool { return h.inSearch >= h.capacity }

// FillSlice copies up to min(len(buf), size) held features into buf in
// nondecreasing distance order, and returns the number written. Order
// within a bucket is unspecified.
func (h *FeatureHeap) FillSlice(buf []Feature) int {
	n := 0
	for d := 0; d <= maxDistance && n < len(buf); d++ {
		for _, f := range h.buckets[d] {
			if n >= len(buf) {
				break
			}
			buf[n] = f
			n++
		}
	}
	return n
}
