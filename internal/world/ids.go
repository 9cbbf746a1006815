package world

import (
	"sync/atomic"
	"time"
)

// IDKind selects one id sequence.
type IDKind uint8

const (
	IDItem IDKind = iota
	IDMail
	IDEquipmentSet
	IDTraitConfig
	IDCharacter
	idKinds
)

// IDAllocator hands out unique ids per kind. Seeded from the highest stored
// id at startup; safe for concurrent use.
type IDAllocator struct {
	next [idKinds]atomic.Int64
}

// NewIDAllocator creates an allocator whose sequences start after the given
// high-water marks. Missing kinds start at 1.
func NewIDAllocator(seeds map[IDKind]int64) *IDAllocator {
	a := &IDAllocator{}
	for k, v := range seeds {
		if k < idKinds {
			a.next[k].Store(v)
		}
	}
	return a
}

// Next returns the next id of kind.
func (a *IDAllocator) Next(kind IDKind) int64 {
	return a.next[kind].Add(1)
}

// NextItemGUID is a typed shortcut for item guids.
func (a *IDAllocator) NextItemGUID() GUID { return GUID(a.Next(IDItem)) }

// Clock resolves current world time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Used by tests and replays.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
