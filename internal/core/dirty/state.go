// Package dirty tracks the persistence lifecycle of individual records.
//
// Every persisted record carries a State. Gameplay code only ever moves a
// record forward (Touch, Drop); the flusher reads pending states and acknowledges
// them once the storage batch holding their statements has committed.
package dirty

// State is the lifecycle marker of one persisted record.
type State uint8

const (
	// Unchanged records match storage and produce no statement.
	Unchanged State = iota
	// New records have never been written and produce an insert.
	New
	// Changed records exist in storage and produce an update.
	Changed
	// Removed records produce a single delete.
	Removed
	// Deleted records produce a delete plus the cascade for dependent rows.
	Deleted
)

func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case New:
		return "new"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Pending reports whether the record needs a statement on the next flush.
func (s State) Pending() bool { return s != Unchanged }

// Gone reports whether the record is queued for removal and hidden from the live view.
func (s State) Gone() bool { return s == Removed || s == Deleted }

// Touch returns the state after a mutating setter.
func (s State) Touch() State {
	if s == Unchanged {
		return Changed
	}
	return s
}

// Drop returns the state after the record is removed. elide is true when the
// record never reached storage and can be forgotten without a statement.
func (s State) Drop(cascade bool) (next State, elide bool) {
	switch s {
	case New:
		return s, true
	case Deleted:
		return Deleted, false
	}
	if cascade {
		return Deleted, false
	}
	return Removed, false
}

// Revive returns the state of a record re-added under a key that is still
// queued for removal: the row exists in storage, so it becomes an update.
func (s State) Revive() State {
	if s.Gone() {
		return Changed
	}
	return New
}

// Flushed returns the state after the record's statement committed. evict is
// true for removals, which leave the collection entirely.
func (s State) Flushed() (next State, evict bool) {
	if s.Gone() {
		return Unchanged, true
	}
	return Unchanged, false
}
