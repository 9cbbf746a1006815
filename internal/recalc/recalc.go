// Package recalc rederives the runtime-only state of a freshly hydrated
// character: offline aura decay, stat maxima, clamped vitals, death state,
// rest bonus and sobriety.
//
// Steps run in a fixed order; each one reads only what earlier steps wrote.
package recalc

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/config"
	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/scripting"
	"github.com/l1jgo/charsync/internal/world"
)

// restBonusDivisor turns offline seconds into rested XP: a full level's worth
// of XP accrues over 72000 seconds (20 hours) at rate 1.0.
const restBonusDivisor = 72000

// restBonusCap bounds rested XP at one and a half levels.
const restBonusCap = 1.5

// Result reports what one recalculation changed.
type Result struct {
	Elapsed        time.Duration
	AurasExpired   int
	ChargesClamped int
	MaxHealth      uint32
	MaxPower       [world.MaxPowers]uint32
	DeathState     world.DeathState
	Ghost          bool
	RestGained     float64
}

type step struct {
	name string
	fn   func(*pass)
}

// pass carries one character through the steps.
type pass struct {
	r   *Recalculator
	p   *world.Player
	now time.Time
	res Result
}

// Recalculator runs the post-hydration steps.
type Recalculator struct {
	catalog *data.Catalog
	scripts *scripting.Engine
	rest    config.RestConfig
	log     *zap.Logger
	steps   []step
}

func New(catalog *data.Catalog, scripts *scripting.Engine, rest config.RestConfig, log *zap.Logger) *Recalculator {
	r := &Recalculator{catalog: catalog, scripts: scripts, rest: rest, log: log}
	r.steps = []step{
		{"offline", (*pass).offline},
		{"aura_decay", (*pass).decayAuras},
		{"stats", (*pass).stats},
		{"clamp", (*pass).clamp},
		{"death_state", (*pass).deathState},
		{"rest_bonus", (*pass).restBonus},
		{"sobriety", (*pass).sobriety},
	}
	return r
}

// Steps returns the step names in execution order.
func (r *Recalculator) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.name
	}
	return names
}

// Apply recalculates p as of now. The offline interval is consumed: a second
// call at the same instant decays nothing.
func (r *Recalculator) Apply(p *world.Player, now time.Time) Result {
	ps := &pass{r: r, p: p, now: now}
	for _, s := range r.steps {
		s.fn(ps)
	}
	r.log.Debug("derived state recalculated",
		zap.Int64("guid", int64(p.GUID())),
		zap.Duration("offline", ps.res.Elapsed),
		zap.Int("auras_expired", ps.res.AurasExpired),
		zap.Uint32("max_health", ps.res.MaxHealth),
		zap.Stringer("death_state", ps.res.DeathState),
	)
	return ps.res
}

func (ps *pass) offline() {
	logout := ps.p.LogoutTime()
	if logout > 0 {
		if sec := ps.now.Unix() - logout; sec > 0 {
			ps.res.Elapsed = time.Duration(sec) * time.Second
		}
	}
	ps.p.MarkOfflineAccounted(ps.now.Unix())
}

func (ps *pass) decayAuras() {
	elapsedMs := ps.res.Elapsed.Milliseconds()
	spells := ps.r.catalog.Spells
	for k, a := range ps.p.Auras.All() {
		info := spells.Get(k.SpellID)
		if info == nil {
			continue
		}
		if a.Charges > info.ProcCharges {
			ps.p.Auras.SetCharges(k, info.ProcCharges)
			ps.res.ChargesClamped++
		}
		if a.Permanent() || !info.DecaysOffline() {
			continue
		}
		if int64(a.Remaining) <= elapsedMs {
			ps.p.Auras.Remove(k)
			ps.res.AurasExpired++
			continue
		}
		if elapsedMs > 0 {
			ps.p.Auras.SetRemaining(k, a.Remaining-int32(elapsedMs))
		}
	}
}

// stats recomputes max health and power from the class base and every
// stamina source: equipped items, trait entries of the active config and auras.
func (ps *pass) stats() {
	cls := ps.r.catalog.Characters.Class(ps.p.Class())
	if cls == nil {
		return
	}
	level := int(ps.p.Level())
	ps.res.MaxHealth = ps.r.scripts.CalcMaxHealth(scripting.HealthContext{
		Level:          level,
		Class:          int(cls.ClassID),
		BaseHealth:     int(cls.BaseHealth),
		HealthPerLevel: int(cls.HealthPerLevel),
		Stamina:        int(ps.stamina()),
	})
	for _, idx := range cls.Powers {
		if idx < 0 || idx >= world.MaxPowers {
			continue
		}
		ps.res.MaxPower[idx] = ps.r.scripts.CalcMaxPower(scripting.PowerContext{
			Level: level,
			Class: int(cls.ClassID),
			Power: idx,
			Base:  int(cls.BasePower[idx]),
		})
	}
	ps.p.SetDerivedStats(ps.res.MaxHealth, ps.res.MaxPower)
}

func (ps *pass) stamina() int32 {
	var total int32
	for _, it := range ps.p.Inventory.Equipped() {
		if info := ps.r.catalog.Items.Get(it.Template); info != nil {
			total += info.Stamina
		}
	}
	if cfg, ok := ps.p.Traits.ActiveConfig(ps.p.ActiveSpec()); ok {
		if spec := ps.r.catalog.Traits.Spec(cfg.SpecID); spec != nil {
			for k, e := range ps.p.Traits.Entries(cfg.ID) {
				if entry := spec.Entry(k.NodeID, k.EntryID); entry != nil {
					total += entry.Stamina * int32(e.Rank)
				}
			}
		}
	}
	for k, a := range ps.p.Auras.All() {
		if info := ps.r.catalog.Spells.Get(k.SpellID); info != nil && info.Stamina != 0 {
			total += info.Stamina * int32(max(a.StackCount, 1))
		}
	}
	return max(total, 0)
}

func (ps *pass) clamp() {
	cls := ps.r.catalog.Characters.Class(ps.p.Class())
	if cls == nil {
		return
	}
	if ps.p.Health() > ps.res.MaxHealth {
		ps.p.SetHealth(ps.res.MaxHealth)
	}
	for i := range world.MaxPowers {
		if !cls.HasPower(i) {
			ps.p.SetPower(i, 0)
			continue
		}
		if ps.p.Power(i) > ps.res.MaxPower[i] {
			ps.p.SetPower(i, ps.res.MaxPower[i])
		}
	}
}

func (ps *pass) deathState() {
	ghost := ps.p.Flags()&world.FlagGhost != 0
	if !ghost {
		for k := range ps.p.Auras.All() {
			if info := ps.r.catalog.Spells.Get(k.SpellID); info != nil && info.Ghost {
				ghost = true
				break
			}
		}
	}
	state := world.Alive
	if ps.p.Health() == 0 || ghost {
		state = world.Corpse
	}
	ps.p.SetDeathState(state, ghost)
	ps.res.DeathState, ps.res.Ghost = state, ghost
}

// restBonus accrues rested XP for the offline interval at the rate of where
// the character logged out, then records whether it now stands in a rest area.
func (ps *pass) restBonus() {
	xpNext := ps.r.catalog.Characters.XPForNextLevel(ps.p.Level())
	if xpNext > 0 && ps.res.Elapsed > 0 {
		rate := ps.r.rest.WildernessRate
		if ps.p.RestInArea() {
			rate = ps.r.rest.RestAreaRate
		}
		limit := float64(xpNext) * restBonusCap
		gained := ps.res.Elapsed.Seconds() * float64(xpNext) / restBonusDivisor * rate
		next := max(min(ps.p.RestBonus()+gained, limit), ps.p.RestBonus())
		ps.res.RestGained = next - ps.p.RestBonus()
		ps.p.SetRestBonus(next)
	}
	ps.p.SetRestInArea(ps.r.catalog.Maps.IsRestArea(ps.p.Position()))
}

func (ps *pass) sobriety() {
	if ps.p.Drunk() == 0 || ps.res.Elapsed == 0 {
		return
	}
	ps.p.SetDrunk(ps.r.scripts.CalcSobriety(int(ps.p.Drunk()), int(ps.res.Elapsed.Seconds())))
}
