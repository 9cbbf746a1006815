package world

import (
	"errors"
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// MaxVoidStorageSlots bounds VoidItem slot indices.
const MaxVoidStorageSlots = 160

var (
	ErrVoidSlot     = errors.New("void storage slot out of range")
	ErrVoidOccupied = errors.New("void storage slot occupied")
)

// VoidItem is one item deposited in void storage.
type VoidItem struct {
	ItemID     int64 // storage id, stable across moves
	Template   uint32
	Creator    GUID
	RandomSeed uint32
	Slot       uint8
}

// VoidStorage holds deposited items keyed by slot.
type VoidStorage struct {
	set *dirty.Set[uint8, VoidItem]
}

func newVoidStorage() *VoidStorage { return &VoidStorage{set: dirty.NewSet[uint8, VoidItem]()} }

func (v *VoidStorage) Load(it VoidItem)                  { v.set.Load(it.Slot, it) }
func (v *VoidStorage) At(slot uint8) (VoidItem, bool)    { return v.set.Get(slot) }
func (v *VoidStorage) Len() int                          { return v.set.Len() }
func (v *VoidStorage) All() iter.Seq2[uint8, VoidItem]   { return v.set.All() }
func (v *VoidStorage) Withdraw(slot uint8) bool          { return v.set.Remove(slot) }
func (v *VoidStorage) Records() Tracked[uint8, VoidItem] { return v.set }

// Deposit stores an item in a free slot.
func (v *VoidStorage) Deposit(it VoidItem) error {
	if it.Slot >= MaxVoidStorageSlots {
		return ErrVoidSlot
	}
	if v.set.Has(it.Slot) {
		return ErrVoidOccupied
	}
	v.set.Add(it.Slot, it)
	return nil
}

// FreeSlot returns the lowest unused slot.
func (v *VoidStorage) FreeSlot() (uint8, bool) {
	for slot := uint8(0); slot < MaxVoidStorageSlots; slot++ {
		if !v.set.Has(slot) {
			return slot, true
		}
	}
	return 0, false
}
