// Package claimmap implements a fixed-capacity, open-addressed concurrent map
// with a built-in "first writer wins" detection primitive.
//
// The map supports concurrent, individually linearizable InsertAndClaim and
// Remove; Keys does not linearize with concurrent updates. Capacity must be
// specified at construction and is never grown: no rehashing is ever
// performed. Capacity is consumed per insertion call, not per distinct key —
// inserting the same key twice occupies two slots — and removing a key
// tombstones its slot without reclaiming it. Callers must size the map for
// the total number of InsertAndClaim calls they will make.
//
// There are no blocking locks: contention is limited to compare-and-swap on a
// handful of per-slot atomic flags, plus a brief publication wait when a
// scanner catches a slot between reservation and its key/value write.
//
// # Usage
//
//	m := claimmap.New[string, int](1000)
//	won, err := m.InsertAndClaim("ridge", 7)
//	if err != nil {
//	    return err // table full: the map was undersized
//	}
//	if !won {
//	    other, _ := m.GetOtherValue("ridge", 7)
//	    // some concurrent call claimed "ridge" first; other holds its value
//	}
package claimmap

import (
	"runtime"
	"sync/atomic"

	hullerrors "github.com/tamirms/hull3d/errors"
)

// baseSlots is the fixed slot count added on top of the scaled capacity hint,
// so that even a zero hint yields a usable table.
const baseSlots = 100

// slot is a single table entry. The three protocol flags are independent
// atomics; key and value are written exactly once, by the goroutine that won
// the taken CAS, and published by the release store of ready.
type slot[K comparable, V comparable] struct {
	taken     atomic.Bool // slot reserved; never unset
	claimed   atomic.Bool // first-writer flag for this slot's key
	tombstone atomic.Bool // logically removed; monotonic false->true
	ready     atomic.Bool // key/value fully written; gates all key reads

	key   K
	value V
}

// waitReady spins until the reserving goroutine has published key/value.
// The writer stores ready immediately after winning the taken CAS with no
// blocking in between, so the wait is bounded by a few instructions on the
// writer's side.
func (s *slot[K, V]) waitReady() {
	for !s.ready.Load() {
		runtime.Gosched()
	}
}

// Map is a fixed-capacity concurrent claim map from K to V. Both type
// parameters must be comparable: keys for probe matching, values so that
// GetOtherValue can distinguish "my entry" from "the other entry".
//
// The zero value is not usable; construct with New.
type Map[K comparable, V comparable] struct {
	slots []slot[K, V]
	m     uint64
	hash  func(K) uint64
}

// New allocates a map with 100 + 1.5*capacityHint slots. The hint must cover
// the total number of InsertAndClaim calls, including repeated keys and
// removed keys: slots are never reclaimed or reused.
func New[K comparable, V comparable](capacityHint int, opts ...Option[K]) *Map[K, V] {
	if capacityHint < 0 {
		capacityHint = 0
	}
	cfg := defaultConfig[K]()
	for _, opt := range opts {
		opt(cfg)
	}
	m := uint64(baseSlots + capacityHint*3/2)
	return &Map[K, V]{
		slots: make([]slot[K, V], m),
		m:     m,
		hash:  cfg.hasher,
	}
}

func (h *Map[K, V]) startIndex(k K) uint64 { return h.hash(k) % h.m }

func (h *Map[K, V]) nextIndex(i uint64) uint64 {
	if i+1 == h.m {
		return 0
	}
	return i + 1
}

// InsertAndClaim reserves a fresh slot for (k, v) and reports whether this
// call is the unique first claimer of k among all calls probing from k's hash
// origin. Exactly one call per key ever returns won=true, across any degree
// of concurrency and any number of repeated insertions.
//
// Every call that returns a nil error consumes one slot of capacity,
// regardless of the claim outcome. If the probe wraps the table without
// finding a free slot, InsertAndClaim returns ErrTableFull; the map contents
// are still valid but the caller's sizing assumption has been violated.
func (h *Map[K, V]) InsertAndClaim(k K, v V) (bool, error) {
	start := h.startIndex(k)

	// Reserve the first free slot on the probe chain.
	i := start
	for !h.slots[i].taken.CompareAndSwap(false, true) {
		i = h.nextIndex(i)
		if i == start {
			return false, hullerrors.ErrTableFull
		}
	}
	s := &h.slots[i]
	s.key = k
	s.value = v
	s.ready.Store(true)

	// Rescan the chain from the origin. The first slot holding k decides the
	// race: whoever flips its claimed flag is the one winner for this key.
	// The chain up to our own slot was fully reserved when we probed it, so
	// the scan cannot stop short of slot i.
	for j := start; h.slots[j].taken.Load(); j = h.nextIndex(j) {
		c := &h.slots[j]
		c.waitReady()
		if c.key == k {
			return c.claimed.CompareAndSwap(false, true), nil
		}
	}
	// Unreachable: the scan always encounters slot i.
	return false, nil
}

// Remove tombstones the first taken, non-tombstoned slot holding k in probe
// order and reports whether such a slot was found. Tombstoning is monotonic
// and does not free the slot's capacity.
//
// If several slots hold k, which one is tombstoned is probe order, not
// necessarily the slot that won the claim.
func (h *Map[K, V]) Remove(k K) bool {
	start := h.startIndex(k)
	for i := start; ; {
		s := &h.slots[i]
		if !s.taken.Load() {
			return false
		}
		s.waitReady()
		if !s.tombstone.Load() && s.key == k {
			s.tombstone.Store(true)
			return true
		}
		i = h.nextIndex(i)
		if i == start {
			return false
		}
	}
}

// GetOtherValue scans k's probe chain for the first slot holding k whose
// value differs from v, and returns that value. Tombstoned slots are still
// inspected. The scan stops at the first unreserved slot; ok is false if no
// such entry exists by then.
func (h *Map[K, V]) GetOtherValue(k K, v V) (other V, ok bool) {
	start := h.startIndex(k)
	for i := start; h.slots[i].taken.Load(); {
		s := &h.slots[i]
		s.waitReady()
		if s.key == k && s.value != v {
			return s.value, true
		}
		i = h.nextIndex(i)
		if i == start {
			break
		}
	}
	var zero V
	return zero, false
}

// Keys returns the keys of all live slots (taken, published, not tombstoned)
// in table order. The view is a point-in-time scan that does not linearize
// with concurrent writers: a racing insert or remove may or may not appear.
func (h *Map[K, V]) Keys() []K {
	keys := make([]K, 0, len(h.slots)/4)
	for i := range h.slots {
		s := &h.slots[i]
		if s.taken.Load() && s.ready.Load() && !s.tombstone.Load() {
			keys = append(keys, s.key)
		}
	}
	return keys
}

// Len counts live slots under the same non-linearized scan rules as Keys.
func (h *Map[K, V]) Len() int {
	n := 0
	for i := range h.slots {
		s := &h.slots[i]
		if s.taken.Load() && s.ready.Load() && !s.tombstone.Load() {
			n++
		}
	}
	return n
}
