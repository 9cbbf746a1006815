package world

import (
	"cmp"
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// TraitConfigType distinguishes combat loadouts from profession configs.
type TraitConfigType uint8

const (
	TraitCombat TraitConfigType = iota + 1
	TraitProfession
	TraitGeneric
)

// TraitCombatFlags carries per-config combat options.
type TraitCombatFlags uint32

// TraitActive marks the one combat config in use for its specialization.
const TraitActive TraitCombatFlags = 1 << 0

// TraitConfig is one persisted talent loadout.
type TraitConfig struct {
	ID          int32
	Type        TraitConfigType
	SpecID      uint32
	CombatFlags TraitCombatFlags
	SkillLineID uint32 // profession configs only
	Name        string
}

// Active reports whether this is the active combat config.
func (c TraitConfig) Active() bool { return c.CombatFlags&TraitActive != 0 }

// TraitEntryKey identifies one node selection within a config.
type TraitEntryKey struct {
	ConfigID int32
	NodeID   uint32
	EntryID  uint32
}

func compareTraitEntryKey(a, b TraitEntryKey) int {
	if c := cmp.Compare(a.ConfigID, b.ConfigID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.NodeID, b.NodeID); c != 0 {
		return c
	}
	return cmp.Compare(a.EntryID, b.EntryID)
}

// TraitEntry is the rank purchased in one node entry.
type TraitEntry struct {
	Rank         uint8
	GrantedRanks uint8
}

// Traits holds trait configs and their entries. Deleting a config cascades
// to its entries in storage.
type Traits struct {
	configs *dirty.Set[int32, TraitConfig]
	entries *dirty.Set[TraitEntryKey, TraitEntry]
}

func newTraits() *Traits {
	return &Traits{
		configs: dirty.NewSet[int32, TraitConfig](),
		entries: dirty.NewSetFunc[TraitEntryKey, TraitEntry](compareTraitEntryKey),
	}
}

func (t *Traits) LoadConfig(c TraitConfig)                 { t.configs.Load(c.ID, c) }
func (t *Traits) LoadEntry(k TraitEntryKey, e TraitEntry)  { t.entries.Load(k, e) }
func (t *Traits) Config(id int32) (TraitConfig, bool)      { return t.configs.Get(id) }
func (t *Traits) HasConfig(id int32) bool                  { return t.configs.Has(id) }
func (t *Traits) Configs() iter.Seq2[int32, TraitConfig]   { return t.configs.All() }
func (t *Traits) Entry(k TraitEntryKey) (TraitEntry, bool) { return t.entries.Get(k) }
func (t *Traits) ConfigCount() int                         { return t.configs.Len() }
func (t *Traits) EntryCount() int                          { return t.entries.Len() }

// Entries returns the entries of one config.
func (t *Traits) Entries(configID int32) map[TraitEntryKey]TraitEntry {
	out := make(map[TraitEntryKey]TraitEntry)
	for k, e := range t.entries.All() {
		if k.ConfigID == configID {
			out[k] = e
		}
	}
	return out
}

// ActiveConfig returns the active combat config of a specialization.
func (t *Traits) ActiveConfig(specID uint32) (TraitConfig, bool) {
	for _, c := range t.configs.All() {
		if c.Type == TraitCombat && c.SpecID == specID && c.Active() {
			return c, true
		}
	}
	return TraitConfig{}, false
}

// CreateConfig adds a new loadout. Activating a combat config deactivates any
// other active config of the same specialization.
func (t *Traits) CreateConfig(c TraitConfig) {
	t.configs.Add(c.ID, c)
	if c.Type == TraitCombat && c.Active() {
		t.Activate(c.ID)
	}
}

// Activate makes a combat config the active one for its specialization.
func (t *Traits) Activate(id int32) bool {
	c, ok := t.configs.Get(id)
	if !ok || c.Type != TraitCombat {
		return false
	}
	for otherID, other := range t.configs.All() {
		if otherID != id && other.Type == TraitCombat && other.SpecID == c.SpecID && other.Active() {
			t.configs.Update(otherID, func(v *TraitConfig) { v.CombatFlags &^= TraitActive })
		}
	}
	if !c.Active() {
		t.configs.Update(id, func(v *TraitConfig) { v.CombatFlags |= TraitActive })
	}
	return true
}

// Deactivate clears the active bit of a config.
func (t *Traits) Deactivate(id int32) bool {
	c, ok := t.configs.Get(id)
	if !ok || !c.Active() {
		return false
	}
	return t.configs.Update(id, func(v *TraitConfig) { v.CombatFlags &^= TraitActive })
}

// Reassign moves a config to another specialization, dropping its active bit.
func (t *Traits) Reassign(id int32, specID uint32) bool {
	c, ok := t.configs.Get(id)
	if !ok || c.SpecID == specID {
		return ok
	}
	return t.configs.Update(id, func(v *TraitConfig) {
		v.SpecID = specID
		v.CombatFlags &^= TraitActive
	})
}

// SetEntry purchases or re-ranks a node entry. The config must exist.
func (t *Traits) SetEntry(k TraitEntryKey, e TraitEntry) bool {
	if !t.configs.Has(k.ConfigID) {
		return false
	}
	if cur, ok := t.entries.Get(k); ok && cur == e {
		return true
	}
	t.entries.Add(k, e)
	return true
}

// RemoveEntry drops one node entry.
func (t *Traits) RemoveEntry(k TraitEntryKey) bool { return t.entries.Remove(k) }

// ClearEntries removes every entry of a config.
func (t *Traits) ClearEntries(configID int32) int {
	n := 0
	for k := range t.entries.All() {
		if k.ConfigID == configID && t.entries.Remove(k) {
			n++
		}
	}
	return n
}

// DeleteConfig removes a config; the storage cascade covers its entries.
func (t *Traits) DeleteConfig(id int32) bool {
	if !t.configs.Delete(id) {
		return false
	}
	for k := range t.entries.All() {
		if k.ConfigID == id {
			t.entries.Forget(k)
		}
	}
	return true
}

func (t *Traits) ConfigRecords() Tracked[int32, TraitConfig]       { return t.configs }
func (t *Traits) EntryRecords() Tracked[TraitEntryKey, TraitEntry] { return t.entries }
