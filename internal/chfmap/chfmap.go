// Package chfmap is a compact open-addressed hash table keyed by a 128-bit
// CHF weight-tuple (chf.Word), used as one of the two valid map-node
// representations for the trie (the other being a small sorted/unsorted
// association list, left to the caller for low-arity nodes).
//
// Entries are never removed — the index has no deletion operation — so the
// table needs no tombstones, only empty slots and linear probing.
package chfmap

import (
	"github.com/TomTonic/hwt/internal/chf"
	"github.com/dolthub/maphash"
)

const (
	initialBuckets = 8
	maxLoadFactorN = 3 // load factor 3/4
	maxLoadFactorD = 4
)

// slot is one bucket of the table: 16 bytes of key plus one value of the
// caller's child-reference type. For V = uint32 (a slab index) this
// packs to 20 bytes before alignment; occupancy is tracked separately in
// a presence bitmap rather than a per-slot bool, trading one word per
// 64 slots for a more compact, GC-scan-friendly slot shape.
type slot[V any] struct {
	key chf.Word
	val V
}

// Map is a hash table from chf.Word to V, open-addressed with linear
// probing. The zero value is not usable; construct with New.
type Map[V any] struct {
	hasher   maphash.Hasher[chf.Word]
	buckets  []slot[V]
	occupied presence
	count    int
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{
		hasher:   maphash.NewHasher[chf.Word](),
		buckets:  make([]slot[V], initialBuckets),
		occupied: newPresence(initialBuckets),
	}
}

// Len reports the number of distinct keys stored.
func (m *Map[V]) Len() int { return m.count }

// Get looks up key, returning its value and whether it was present.
func (m *Map[V]) Get(key chf.Word) (V, bool) {
	i := m.index(key)
	for {
		if !m.occupied.get(i) {
			var zero V
			return zero, false
		}
		if m.buckets[i].key.Equal(key) {
			return m.buckets[i].val, true
		}
		i = (i + 1) & (len(m.buckets) - 1)
	}
}

// Put installs key->val, overwriting any existing value for key, and
// reports whether key was newly inserted (false if it already existed).
func (m *Map[V]) Put(key chf.Word, val V) bool {
	if (m.count+1)*maxLoadFactorD > len(m.buckets)*maxLoadFactorN {
		m.grow()
	}
	i := m.index(key)
	for {
		if !m.occupied.get(i) {
			m.buckets[i] = slot[V]{key: key, val: val}
			m.occupied.set(i)
			m.count++
			return true
		}
		if m.buckets[i].key.Equal(key) {
			m.buckets[i].val = val
			return false
		}
		i = (i + 1) & (len(m.buckets) - 1)
	}
}

// Range calls f for every stored (key, val) pair, in unspecified order,
// stopping early if f returns false.
func (m *Map[V]) Range(f func(key chf.Word, val V) bool) {
	for i, s := range m.buckets {
		if m.occupied.get(i) {
			if !f(s.key, s.val) {
				return
			}
		}
	}
}

func (m *Map[V]) index(key chf.Word) int {
	h := m.hasher.Hash(key)
	return int(h) & (len(m.buckets) - 1)
}

func (m *Map[V]) grow() {
	old := m.buckets
	oldOccupied := m.occupied
	newCap := len(old) * 2
	m.buckets = make([]slot[V], newCap)
	m.occupied = newPresence(newCap)
	m.count = 0
	for i, s := range old {
		if oldOccupied.get(i) {
			m.Put(s.key, s.val)
		}
	}
}
