package recalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/config"
	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/scripting"
	"github.com/l1jgo/charsync/internal/world"
)

const (
	spellFrostbolt     = 116
	spellIntellect     = 1459
	spellGhost         = 8326
	spellFortitude     = 21562
	spellBloodsurge    = 46916
	warriorLevel10HP   = 60 + 20*9
	warriorXPNextLevel = 7600
)

var now = time.Unix(1_700_000_000, 0)

func newRecalc(t *testing.T) *Recalculator {
	t.Helper()
	cat, err := data.Builtin()
	require.NoError(t, err)
	scripts, err := scripting.NewEngine("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(scripts.Close)
	return New(cat, scripts, config.RestConfig{RestAreaRate: 1.0, WildernessRate: 0.25}, zap.NewNop())
}

func warrior(offline time.Duration) world.CharacterData {
	return world.CharacterData{
		GUID:       1,
		Race:       1,
		Class:      1,
		Level:      10,
		Health:     warriorLevel10HP,
		Position:   world.Position{MapID: 0, ZoneID: 12},
		LogoutTime: now.Add(-offline).Unix(),
	}
}

func aura(spell uint32, remaining int32) world.Aura {
	return world.Aura{Key: world.AuraKey{Caster: 1, SpellID: spell}, StackCount: 1, MaxDuration: remaining, Remaining: remaining}
}

func TestStepOrder(t *testing.T) {
	r := newRecalc(t)
	assert.Equal(t, []string{"offline", "aura_decay", "stats", "clamp", "death_state", "rest_bonus", "sobriety"}, r.Steps())
}

func TestAuraDecay(t *testing.T) {
	tests := []struct {
		name      string
		spell     uint32
		remaining int32
		offline   time.Duration
		gone      bool
		want      int32
	}{
		{"negative expires exactly at boundary", spellFrostbolt, 9000, 9 * time.Second, true, 0},
		{"negative survives with remainder", spellFrostbolt, 9000, 8 * time.Second, false, 1000},
		{"spent negative expires with no time offline", spellFrostbolt, 0, 0, true, 0},
		{"no time offline keeps the duration", spellFrostbolt, 9000, 0, false, 9000},
		{"regular buff does not tick offline", spellIntellect, 5000, time.Hour, false, 5000},
		{"permanent aura never decays", spellGhost, -1, time.Hour, false, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecalc(t)
			p := world.NewPlayer(warrior(tt.offline))
			a := aura(tt.spell, tt.remaining)
			p.Auras.Load(a, map[uint8]world.AuraEffect{0: {Amount: 10}})

			res := r.Apply(p, now)
			got, ok := p.Auras.Get(a.Key)
			assert.Equal(t, tt.gone, !ok)
			if tt.gone {
				assert.Equal(t, 1, res.AurasExpired)
				assert.Empty(t, p.Auras.Effects(a.Key))
				return
			}
			assert.Equal(t, tt.want, got.Remaining)
		})
	}
}

func TestOfflineIntervalIsConsumedOnce(t *testing.T) {
	r := newRecalc(t)
	p := world.NewPlayer(warrior(4 * time.Second))
	a := aura(spellFrostbolt, 9000)
	p.Auras.Load(a, nil)

	r.Apply(p, now)
	res := r.Apply(p, now)
	assert.Zero(t, res.Elapsed)
	got, ok := p.Auras.Get(a.Key)
	require.True(t, ok)
	assert.Equal(t, int32(5000), got.Remaining)
	assert.Equal(t, now.Unix(), p.LogoutTime())
}

func TestChargesClampedToDefinition(t *testing.T) {
	r := newRecalc(t)
	p := world.NewPlayer(warrior(0))
	a := aura(spellBloodsurge, 10000)
	a.Charges = 3
	p.Auras.Load(a, nil)

	res := r.Apply(p, now)
	got, _ := p.Auras.Get(a.Key)
	assert.Equal(t, uint8(1), got.Charges)
	assert.Equal(t, 1, res.ChargesClamped)
}

func TestHealthAndPowerClamp(t *testing.T) {
	r := newRecalc(t)
	d := warrior(0)
	d.Health = 100000
	d.Power[0] = 500  // mana is not a warrior power
	d.Power[1] = 2000 // rage above its pool
	p := world.NewPlayer(d)
	p.Auras.Load(aura(spellFortitude, 60000), nil)

	res := r.Apply(p, now)
	want := uint32(warriorLevel10HP + 3*10)
	assert.Equal(t, want, res.MaxHealth)
	assert.Equal(t, want, p.Health())
	assert.Equal(t, want, p.MaxHealth())
	assert.Zero(t, p.Power(0))
	assert.Equal(t, uint32(1000), p.Power(1))
	assert.Equal(t, world.Alive, p.DeathState())
}

func TestDeathState(t *testing.T) {
	r := newRecalc(t)

	d := warrior(0)
	d.Health = 0
	dead := world.NewPlayer(d)
	r.Apply(dead, now)
	assert.Equal(t, world.Corpse, dead.DeathState())
	assert.False(t, dead.IsGhost())

	ghost := world.NewPlayer(warrior(0))
	ghost.Auras.Load(aura(spellGhost, -1), nil)
	r.Apply(ghost, now)
	assert.Equal(t, world.Corpse, ghost.DeathState())
	assert.True(t, ghost.IsGhost())

	flagged := warrior(0)
	flagged.Flags = world.FlagGhost
	fp := world.NewPlayer(flagged)
	r.Apply(fp, now)
	assert.True(t, fp.IsGhost())
}

func TestRestBonus(t *testing.T) {
	tests := []struct {
		name    string
		inArea  bool
		offline time.Duration
		want    float64
	}{
		{"rest area accrues a level per 20 hours", true, 20 * time.Hour, warriorXPNextLevel},
		{"wilderness accrues at a quarter", false, 20 * time.Hour, warriorXPNextLevel / 4},
		{"capped at one and a half levels", true, 10 * 24 * time.Hour, warriorXPNextLevel * 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecalc(t)
			d := warrior(tt.offline)
			d.RestInArea = tt.inArea
			p := world.NewPlayer(d)
			r.Apply(p, now)
			assert.InDelta(t, tt.want, p.RestBonus(), 0.001)
		})
	}
}

func TestRestAreaFlagFollowsPosition(t *testing.T) {
	r := newRecalc(t)
	d := warrior(time.Hour)
	d.Position = world.Position{MapID: 0, ZoneID: 1519}
	p := world.NewPlayer(d)
	r.Apply(p, now)
	assert.True(t, p.RestInArea())
}

func TestSobriety(t *testing.T) {
	r := newRecalc(t)
	d := warrior(5 * time.Minute)
	d.Drunk = 50
	p := world.NewPlayer(d)
	r.Apply(p, now)
	assert.Equal(t, uint8(40), p.Drunk())
}
