package world

import (
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// Skill is one persisted skill line.
type Skill struct {
	ID    uint32
	Value uint16
	Max   uint16
}

// Skills holds a player's skill lines.
type Skills struct {
	set *dirty.Set[uint32, Skill]
}

func newSkills() *Skills { return &Skills{set: dirty.NewSet[uint32, Skill]()} }

func (s *Skills) Load(sk Skill)                   { s.set.Load(sk.ID, sk) }
func (s *Skills) Get(id uint32) (Skill, bool)     { return s.set.Get(id) }
func (s *Skills) Has(id uint32) bool              { return s.set.Has(id) }
func (s *Skills) Len() int                        { return s.set.Len() }
func (s *Skills) Remove(id uint32) bool           { return s.set.Remove(id) }
func (s *Skills) Records() Tracked[uint32, Skill] { return s.set }

// Learn adds a skill line or raises its range.
func (s *Skills) Learn(sk Skill) {
	if sk.Value > sk.Max {
		sk.Value = sk.Max
	}
	if cur, ok := s.set.Get(sk.ID); ok && cur == sk {
		return
	}
	s.set.Add(sk.ID, sk)
}

// SetValue changes the current value, clamped to the line's max.
func (s *Skills) SetValue(id uint32, v uint16) bool {
	return s.set.Update(id, func(sk *Skill) { sk.Value = min(v, sk.Max) })
}

// SetRange rewrites value and max together. Returns false when unchanged.
func (s *Skills) SetRange(id uint32, value, maxValue uint16) bool {
	cur, ok := s.set.Get(id)
	if !ok {
		return false
	}
	value = min(value, maxValue)
	if cur.Value == value && cur.Max == maxValue {
		return false
	}
	return s.set.Update(id, func(sk *Skill) { sk.Value, sk.Max = value, maxValue })
}

// All iterates skill lines in id order.
func (s *Skills) All() iter.Seq2[uint32, Skill] { return s.set.All() }

// Spell is one persisted known spell.
type Spell struct {
	ID       uint32
	Active   bool
	Disabled bool
}

// Spells holds a player's known spells. Dependent spells (granted by a skill
// line or another spell) are tracked separately and never stored.
type Spells struct {
	set       *dirty.Set[uint32, Spell]
	dependent map[uint32]struct{}
}

func newSpells() *Spells {
	return &Spells{
		set:       dirty.NewSet[uint32, Spell](),
		dependent: make(map[uint32]struct{}),
	}
}

func (s *Spells) Load(sp Spell)                   { s.set.Load(sp.ID, sp) }
func (s *Spells) Len() int                        { return s.set.Len() }
func (s *Spells) Records() Tracked[uint32, Spell] { return s.set }

// Knows reports whether the spell is known, stored or dependent.
func (s *Spells) Knows(id uint32) bool {
	if _, ok := s.dependent[id]; ok {
		return true
	}
	return s.set.Has(id)
}

// Learn adds a stored spell. A spell already known as dependent stays derived.
func (s *Spells) Learn(id uint32) {
	if s.set.Has(id) || s.IsDependent(id) {
		return
	}
	s.set.Add(id, Spell{ID: id, Active: true})
}

// LearnDependent adds a spell that is re-derived at every login. A stored row
// for the same spell is removed.
func (s *Spells) LearnDependent(id uint32) {
	s.dependent[id] = struct{}{}
	s.set.Remove(id)
}

// IsDependent reports whether id is a derived spell.
func (s *Spells) IsDependent(id uint32) bool {
	_, ok := s.dependent[id]
	return ok
}

// Unlearn removes a spell, stored or dependent.
func (s *Spells) Unlearn(id uint32) bool {
	_, dep := s.dependent[id]
	delete(s.dependent, id)
	return s.set.Remove(id) || dep
}

// SetDisabled toggles a stored spell.
func (s *Spells) SetDisabled(id uint32, disabled bool) bool {
	sp, ok := s.set.Get(id)
	if !ok || sp.Disabled == disabled {
		return false
	}
	return s.set.Update(id, func(v *Spell) { v.Disabled = disabled })
}

// Stored iterates persisted spells in id order.
func (s *Spells) Stored() iter.Seq2[uint32, Spell] { return s.set.All() }

// DependentCount returns the number of derived spells.
func (s *Spells) DependentCount() int { return len(s.dependent) }
