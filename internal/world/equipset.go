package world

import (
	"errors"
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// MaxEquipmentSetIndex bounds EquipmentSet.SetID.
const MaxEquipmentSetIndex = 20

// ErrSetIndex is returned for a set id outside [0, MaxEquipmentSetIndex).
var ErrSetIndex = errors.New("equipment set index out of range")

// EquipmentSetKind separates gear sets from transmog outfits.
type EquipmentSetKind uint8

const (
	GearSet EquipmentSetKind = iota
	TransmogSet
)

// EquipmentSet is a saved gear or appearance set.
type EquipmentSet struct {
	GUID        int64 // storage key, allocated once
	SetID       uint8
	Kind        EquipmentSetKind
	Name        string
	Icon        string
	IgnoreMask  uint32
	Pieces      [SlotMax]GUID   // item guid per equipment slot
	Appearances [SlotMax]uint32 // appearance id per equipment slot
}

// EquipmentSets holds a player's saved sets keyed by storage guid.
type EquipmentSets struct {
	set *dirty.Set[int64, EquipmentSet]
}

func newEquipmentSets() *EquipmentSets {
	return &EquipmentSets{set: dirty.NewSet[int64, EquipmentSet]()}
}

func (e *EquipmentSets) Load(s EquipmentSet)                   { e.set.Load(s.GUID, s) }
func (e *EquipmentSets) Get(guid int64) (EquipmentSet, bool)   { return e.set.Get(guid) }
func (e *EquipmentSets) Len() int                              { return e.set.Len() }
func (e *EquipmentSets) All() iter.Seq2[int64, EquipmentSet]   { return e.set.All() }
func (e *EquipmentSets) Delete(guid int64) bool                { return e.set.Remove(guid) }
func (e *EquipmentSets) Records() Tracked[int64, EquipmentSet] { return e.set }

// BySetID finds a set by its client-visible index.
func (e *EquipmentSets) BySetID(kind EquipmentSetKind, id uint8) (EquipmentSet, bool) {
	for _, s := range e.set.All() {
		if s.Kind == kind && s.SetID == id {
			return s, true
		}
	}
	return EquipmentSet{}, false
}

// Save creates or overwrites a set.
func (e *EquipmentSets) Save(s EquipmentSet) error {
	if s.SetID >= MaxEquipmentSetIndex {
		return ErrSetIndex
	}
	e.set.Add(s.GUID, s)
	return nil
}

// ClearPiece drops an item from every set that references it.
func (e *EquipmentSets) ClearPiece(item GUID) {
	for guid, s := range e.set.All() {
		for slot, piece := range s.Pieces {
			if piece == item {
				e.set.Update(guid, func(v *EquipmentSet) { v.Pieces[slot] = 0 })
			}
		}
	}
}

// Reset empties every piece and appearance of a set, keeping the set itself.
func (e *EquipmentSets) Reset(guid int64) bool {
	return e.set.Update(guid, func(v *EquipmentSet) {
		v.Pieces = [SlotMax]GUID{}
		v.Appearances = [SlotMax]uint32{}
	})
}
