package world

import (
	"cmp"
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// MaxAuraEffects bounds the effect indices of one aura.
const MaxAuraEffects = 32

// AuraKey uniquely identifies an applied aura.
type AuraKey struct {
	Caster     GUID
	Item       GUID
	SpellID    uint32
	EffectMask uint32
}

func compareAuraKey(a, b AuraKey) int {
	if c := cmp.Compare(a.SpellID, b.SpellID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Caster, b.Caster); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Item, b.Item); c != 0 {
		return c
	}
	return cmp.Compare(a.EffectMask, b.EffectMask)
}

// Aura is one persisted aura header.
type Aura struct {
	Key         AuraKey
	RecalcMask  uint32
	StackCount  uint8
	MaxDuration int32 // ms
	Remaining   int32 // ms; -1 = permanent
	Charges     uint8
	CastItemID  uint32
}

// Permanent reports whether the aura never times out.
func (a Aura) Permanent() bool { return a.Remaining < 0 }

// AuraEffectKey identifies one effect row of an aura.
type AuraEffectKey struct {
	Aura  AuraKey
	Index uint8
}

func compareAuraEffectKey(a, b AuraEffectKey) int {
	if c := compareAuraKey(a.Aura, b.Aura); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// AuraEffect is one persisted aura effect amount.
type AuraEffect struct {
	Amount     int32
	BaseAmount int32
}

// Auras holds active auras and their effect rows.
type Auras struct {
	auras   *dirty.Set[AuraKey, Aura]
	effects *dirty.Set[AuraEffectKey, AuraEffect]
}

func newAuras() *Auras {
	return &Auras{
		auras:   dirty.NewSetFunc[AuraKey, Aura](compareAuraKey),
		effects: dirty.NewSetFunc[AuraEffectKey, AuraEffect](compareAuraEffectKey),
	}
}

// Load records a stored aura together with its effects.
func (a *Auras) Load(aura Aura, effects map[uint8]AuraEffect) {
	a.auras.Load(aura.Key, aura)
	for idx, eff := range effects {
		a.effects.Load(AuraEffectKey{aura.Key, idx}, eff)
	}
}

// Apply adds a runtime aura. An existing aura under the same key is replaced,
// including effect rows the new application no longer carries.
func (a *Auras) Apply(aura Aura, effects map[uint8]AuraEffect) {
	for ek := range a.effects.All() {
		if _, keep := effects[ek.Index]; ek.Aura == aura.Key && !keep {
			a.effects.Remove(ek)
		}
	}
	a.auras.Add(aura.Key, aura)
	for idx, eff := range effects {
		a.effects.Add(AuraEffectKey{aura.Key, idx}, eff)
	}
}

func (a *Auras) Get(k AuraKey) (Aura, bool) { return a.auras.Get(k) }
func (a *Auras) Has(k AuraKey) bool         { return a.auras.Has(k) }
func (a *Auras) Len() int                   { return a.auras.Len() }

func (a *Auras) All() iter.Seq2[AuraKey, Aura] { return a.auras.All() }

// Effects returns the effect rows of one aura by index.
func (a *Auras) Effects(k AuraKey) map[uint8]AuraEffect {
	out := make(map[uint8]AuraEffect)
	for ek, eff := range a.effects.All() {
		if ek.Aura == k {
			out[ek.Index] = eff
		}
	}
	return out
}

// SetRemaining changes an aura's remaining duration.
func (a *Auras) SetRemaining(k AuraKey, ms int32) bool {
	cur, ok := a.auras.Get(k)
	if !ok || cur.Remaining == ms {
		return false
	}
	return a.auras.Update(k, func(v *Aura) { v.Remaining = ms })
}

// SetCharges changes an aura's proc charges.
func (a *Auras) SetCharges(k AuraKey, n uint8) bool {
	cur, ok := a.auras.Get(k)
	if !ok || cur.Charges == n {
		return false
	}
	return a.auras.Update(k, func(v *Aura) { v.Charges = n })
}

// Remove drops an aura and each of its effect rows.
func (a *Auras) Remove(k AuraKey) bool {
	if !a.auras.Remove(k) {
		return false
	}
	for ek := range a.effects.All() {
		if ek.Aura == k {
			a.effects.Remove(ek)
		}
	}
	return true
}

// RemoveEffect drops a single effect row.
func (a *Auras) RemoveEffect(k AuraEffectKey) bool { return a.effects.Remove(k) }

// LoadEffect records a stored effect row without its header. Used by the
// hydrator before it knows whether the header exists.
func (a *Auras) LoadEffect(k AuraEffectKey, eff AuraEffect) { a.effects.Load(k, eff) }

func (a *Auras) Records() Tracked[AuraKey, Aura]                   { return a.auras }
func (a *Auras) EffectRecords() Tracked[AuraEffectKey, AuraEffect] { return a.effects }
