package world

import (
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// Pet slot layout: -1 = not slotted, [0, ActivePetSlots) = call slots,
// [ActivePetSlots, ActivePetSlots+StablePetSlots) = stable.
const (
	PetNoSlot      int16 = -1
	ActivePetSlots int16 = 5
	StablePetSlots int16 = 200
	MaxPetSlot           = ActivePetSlots + StablePetSlots
)

// PetReactState is the stored AI behavior mode of a pet.
type PetReactState uint8

const (
	PetPassive PetReactState = iota
	PetDefensive
	PetAggressive
	PetAssist
)

// Pet is one persisted hunter or warlock pet.
type Pet struct {
	Number  uint32
	Entry   uint32 // creature template
	Slot    int16
	Name    string
	Level   uint8
	XP      uint32
	Health  uint32
	Power   uint32
	React   PetReactState
	Renamed bool
	SpecID  uint32
	SavedAt int64
}

// Active reports whether the pet sits in a call slot.
func (p Pet) Active() bool { return p.Slot >= 0 && p.Slot < ActivePetSlots }

// Pets holds a player's pets keyed by pet number.
type Pets struct {
	set *dirty.Set[uint32, Pet]
}

func newPets() *Pets { return &Pets{set: dirty.NewSet[uint32, Pet]()} }

func (p *Pets) Load(pet Pet)                  { p.set.Load(pet.Number, pet) }
func (p *Pets) Get(n uint32) (Pet, bool)      { return p.set.Get(n) }
func (p *Pets) Len() int                      { return p.set.Len() }
func (p *Pets) All() iter.Seq2[uint32, Pet]   { return p.set.All() }
func (p *Pets) Abandon(n uint32) bool         { return p.set.Remove(n) }
func (p *Pets) Records() Tracked[uint32, Pet] { return p.set }

// InSlot returns the pet occupying slot.
func (p *Pets) InSlot(slot int16) (Pet, bool) {
	if slot < 0 {
		return Pet{}, false
	}
	for _, pet := range p.set.All() {
		if pet.Slot == slot {
			return pet, true
		}
	}
	return Pet{}, false
}

// FreeStableSlot returns the lowest unoccupied stable slot, or PetNoSlot.
func (p *Pets) FreeStableSlot() int16 {
	used := make(map[int16]bool)
	for _, pet := range p.set.All() {
		used[pet.Slot] = true
	}
	for slot := ActivePetSlots; slot < MaxPetSlot; slot++ {
		if !used[slot] {
			return slot
		}
	}
	return PetNoSlot
}

// Tame adds a new pet to the given slot, which must be free.
func (p *Pets) Tame(pet Pet) bool {
	if pet.Slot >= MaxPetSlot || pet.Slot < PetNoSlot {
		return false
	}
	if _, taken := p.InSlot(pet.Slot); taken {
		return false
	}
	p.set.Add(pet.Number, pet)
	return true
}

// SetSlot moves a pet. A pet already in the target slot swaps into the
// mover's old slot.
func (p *Pets) SetSlot(n uint32, slot int16) bool {
	pet, ok := p.set.Get(n)
	if !ok || slot >= MaxPetSlot || slot < PetNoSlot || pet.Slot == slot {
		return false
	}
	if other, taken := p.InSlot(slot); taken {
		old := pet.Slot
		p.set.Update(other.Number, func(v *Pet) { v.Slot = old })
	}
	return p.set.Update(n, func(v *Pet) { v.Slot = slot })
}

// Rename sets a pet's name.
func (p *Pets) Rename(n uint32, name string) bool {
	return p.set.Update(n, func(v *Pet) {
		v.Name = name
		v.Renamed = true
	})
}

// SetVitals records current health and power.
func (p *Pets) SetVitals(n uint32, health, power uint32) bool {
	pet, ok := p.set.Get(n)
	if !ok || (pet.Health == health && pet.Power == power) {
		return false
	}
	return p.set.Update(n, func(v *Pet) { v.Health, v.Power = health, power })
}
