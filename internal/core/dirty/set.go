package dirty

import (
	"cmp"
	"iter"
	"slices"
)

// Record is a snapshot of one tracked entry handed to the flusher.
type Record[K comparable, V any] struct {
	Key   K
	Value V
	State State
}

type entry[V any] struct {
	value V
	state State
}

// Set is a keyed sub-collection whose entries carry a State.
// Not safe for concurrent use; a set belongs to the one goroutine that owns its entity.
type Set[K comparable, V any] struct {
	compare func(a, b K) int
	entries map[K]*entry[V]
}

// NewSet creates a set over an ordered key type.
func NewSet[K cmp.Ordered, V any]() *Set[K, V] {
	return NewSetFunc[K, V](cmp.Compare[K])
}

// NewSetFunc creates a set whose iteration order is given by compare.
func NewSetFunc[K comparable, V any](compare func(a, b K) int) *Set[K, V] {
	return &Set[K, V]{
		compare: compare,
		entries: make(map[K]*entry[V]),
	}
}

// Load inserts a record read from storage in state Unchanged.
func (s *Set[K, V]) Load(key K, value V) {
	s.entries[key] = &entry[V]{value: value, state: Unchanged}
}

// Add inserts a record created at runtime. A key still queued for removal is
// revived as an update instead of an insert.
func (s *Set[K, V]) Add(key K, value V) {
	if e, ok := s.entries[key]; ok {
		e.value = value
		if e.state.Gone() {
			e.state = e.state.Revive()
		} else {
			e.state = e.state.Touch()
		}
		return
	}
	s.entries[key] = &entry[V]{value: value, state: New}
}

// Get returns a live record's value.
func (s *Set[K, V]) Get(key K) (V, bool) {
	e, ok := s.entries[key]
	if !ok || e.state.Gone() {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether key is live.
func (s *Set[K, V]) Has(key K) bool {
	_, ok := s.Get(key)
	return ok
}

// Update applies fn to a live record and marks it changed.
func (s *Set[K, V]) Update(key K, fn func(*V)) bool {
	e, ok := s.entries[key]
	if !ok || e.state.Gone() {
		return false
	}
	fn(&e.value)
	e.state = e.state.Touch()
	return true
}

// Remove queues a live record for a single delete.
func (s *Set[K, V]) Remove(key K) bool { return s.drop(key, false) }

// Delete queues a live record for a delete that cascades to dependent rows.
func (s *Set[K, V]) Delete(key K) bool { return s.drop(key, true) }

func (s *Set[K, V]) drop(key K, cascade bool) bool {
	e, ok := s.entries[key]
	if !ok || e.state.Gone() {
		return false
	}
	next, elide := e.state.Drop(cascade)
	if elide {
		delete(s.entries, key)
		return true
	}
	e.state = next
	return true
}

// Forget evicts a record without emitting any statement. Used when a parent's
// cascade already covers the row.
func (s *Set[K, V]) Forget(key K) {
	delete(s.entries, key)
}

// State returns the tracked state of key, including records queued for removal.
func (s *Set[K, V]) State(key K) (State, bool) {
	e, ok := s.entries[key]
	if !ok {
		return Unchanged, false
	}
	return e.state, true
}

// Len returns the number of live records.
func (s *Set[K, V]) Len() int {
	n := 0
	for _, e := range s.entries {
		if !e.state.Gone() {
			n++
		}
	}
	return n
}

// Keys returns live keys in order.
func (s *Set[K, V]) Keys() []K {
	keys := make([]K, 0, len(s.entries))
	for k, e := range s.entries {
		if !e.state.Gone() {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, s.compare)
	return keys
}

// All iterates live records in key order.
func (s *Set[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range s.Keys() {
			e, ok := s.entries[k]
			if !ok || e.state.Gone() {
				continue
			}
			if !yield(k, e.value) {
				return
			}
		}
	}
}

// Pending returns every record that needs a statement, in key order.
func (s *Set[K, V]) Pending() []Record[K, V] {
	var out []Record[K, V]
	for k, e := range s.entries {
		if e.state.Pending() {
			out = append(out, Record[K, V]{Key: k, Value: e.value, State: e.state})
		}
	}
	slices.SortFunc(out, func(a, b Record[K, V]) int { return s.compare(a.Key, b.Key) })
	return out
}

// PendingCount returns the number of records awaiting a statement.
func (s *Set[K, V]) PendingCount() int {
	n := 0
	for _, e := range s.entries {
		if e.state.Pending() {
			n++
		}
	}
	return n
}

// Ack marks flushed records Unchanged and evicts removals. A record whose
// state moved since the snapshot was taken is left pending.
func (s *Set[K, V]) Ack(records []Record[K, V]) {
	for _, r := range records {
		e, ok := s.entries[r.Key]
		if !ok || e.state != r.State {
			continue
		}
		next, evict := e.state.Flushed()
		if evict {
			delete(s.entries, r.Key)
			continue
		}
		e.state = next
	}
}
