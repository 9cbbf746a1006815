package hydrate

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/config"
	"github.com/l1jgo/charsync/internal/core/dirty"
	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/persist"
	"github.com/l1jgo/charsync/internal/recalc"
	"github.com/l1jgo/charsync/internal/repair"
	"github.com/l1jgo/charsync/internal/scripting"
	"github.com/l1jgo/charsync/internal/world"
)

const (
	accountID = 1
	charGUID  = 7

	tmplSword    = 25
	tmplCloth    = 2589
	tmplBackpack = 4500
	tmplArcheus  = 2000
)

var now = time.Unix(1_700_000_000, 0)

func newHydrator(t *testing.T) *Hydrator {
	t.Helper()
	cat, err := data.Builtin()
	require.NoError(t, err)
	scripts, err := scripting.NewEngine("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(scripts.Close)

	ids := world.NewIDAllocator(map[world.IDKind]int64{world.IDMail: 500})
	rl := repair.New(repair.Options{
		ConjuredExpiry:     15 * time.Minute,
		MaxMailAttachments: 12,
		MailExpiry:         30 * 24 * time.Hour,
		MailSubject:        "Recovered items",
	}, ids, nil, nil, zap.NewNop())
	rc := recalc.New(cat, scripts, config.RestConfig{RestAreaRate: 1, WildernessRate: 0.25}, zap.NewNop())
	return New(cat, rl, rc, world.FixedClock(now), nil, zap.NewNop())
}

func own[T any](owner int64, vals ...T) []persist.Owned[T] {
	out := make([]persist.Owned[T], len(vals))
	for i, v := range vals {
		out[i] = persist.Owned[T]{Owner: owner, Value: v}
	}
	return out
}

// orcWarrior is a valid level 10 character with its starting skills and spell.
func orcWarrior() *persist.Bundle {
	c := world.CharacterData{
		GUID:       charGUID,
		AccountID:  accountID,
		Name:       "Garrosh",
		Race:       2,
		Class:      1,
		Level:      10,
		Health:     240,
		Power:      [world.MaxPowers]uint32{1: 100},
		Position:   world.Position{MapID: 1, ZoneID: 14, X: -618.5, Y: -4251.6, Z: 38.7},
		ActiveSpec: 71,
		LogoutTime: now.Add(-time.Minute).Unix(),
	}
	return &persist.Bundle{
		Character: &c,
		Account:   &persist.Account{ID: accountID, Name: "player"},
		HomeBind:  own(charGUID, world.HomeBind{MapID: 1, ZoneID: 14, X: -600, Y: -4200, Z: 40}),
		Skills: own(charGUID,
			world.Skill{ID: 26, Value: 1, Max: 1},
			world.Skill{ID: 43, Value: 30, Max: 50},
			world.Skill{ID: 95, Value: 50, Max: 50},
			world.Skill{ID: 109, Value: 1, Max: 1},
		),
		Spells: own(charGUID, world.Spell{ID: 2457, Active: true}),
	}
}

func hydrate(t *testing.T, b *persist.Bundle) *Result {
	t.Helper()
	res, err := newHydrator(t).Hydrate(accountID, b)
	require.NoError(t, err)
	return res
}

func countReports(res *Result, kind repair.Kind, action repair.Action) int {
	n := 0
	for _, r := range res.Reports {
		if r.Kind == kind && r.Action == action {
			n++
		}
	}
	return n
}

func pendingState[K comparable, V any](tr world.Tracked[K, V], key K) dirty.State {
	for _, r := range tr.Pending() {
		if r.Key == key {
			return r.State
		}
	}
	return dirty.Unchanged
}

func TestStageOrder(t *testing.T) {
	stages := newHydrator(t).Stages()
	before := func(a, b string) {
		t.Helper()
		ia, ib := slices.Index(stages, a), slices.Index(stages, b)
		require.NotEqual(t, -1, ia, a)
		require.NotEqual(t, -1, ib, b)
		assert.Less(t, ia, ib, "%s must run before %s", a, b)
	}
	before("authorize", "character")
	before("achievements", "auras")
	before("homebind", "position")
	before("group", "recalc")
	before("skills", "spells")
	before("inventory", "mail")
	before("auras", "recalc")
	before("quest_rewards", "traits")
	before("quest_rewards", "skills_finalize")
	before("spells", "skills_finalize")
	before("return_mail", "recalc")
	assert.Equal(t, "recalc", stages[len(stages)-1])
}

func TestCleanLoadHasNoRepairs(t *testing.T) {
	res := hydrate(t, orcWarrior())
	assert.Empty(t, res.Reports)
	assert.Empty(t, res.Mail)
	assert.Equal(t, world.Alive, res.Player.DeathState())
	assert.True(t, res.Player.Spells.Knows(78), "auto spell of Arms is derived")
	assert.True(t, res.Player.Spells.IsDependent(78))
}

func TestAuthorizationFailures(t *testing.T) {
	t.Run("missing character", func(t *testing.T) {
		b := orcWarrior()
		b.Character = nil
		_, err := newHydrator(t).Hydrate(accountID, b)
		assert.ErrorIs(t, err, ErrCharacterNotFound)
	})
	t.Run("other account", func(t *testing.T) {
		res, err := newHydrator(t).Hydrate(2, orcWarrior())
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrAccountMismatch)
		var le *LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, FatalAuthorization, le.Kind)
	})
	t.Run("banned", func(t *testing.T) {
		b := orcWarrior()
		b.Account.BannedUntil = now.Add(time.Hour).Unix()
		b.Account.BanReason = "botting"
		res, err := newHydrator(t).Hydrate(accountID, b)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrBanned)
		assert.Contains(t, err.Error(), "botting")
	})
	t.Run("permanent ban", func(t *testing.T) {
		b := orcWarrior()
		b.Account.BannedUntil = persist.PermanentBan
		_, err := newHydrator(t).Hydrate(accountID, b)
		assert.ErrorIs(t, err, ErrBanned)
	})
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*world.CharacterData)
		err    error
		flags  world.AtLoginFlags
	}{
		{"race/class", func(c *world.CharacterData) { c.Class = 8 }, ErrInvalidRaceClass, 0},
		{"gender", func(c *world.CharacterData) { c.Gender = 2 }, ErrInvalidAppearance, world.AtLoginCustomize},
		{"skin", func(c *world.CharacterData) { c.Skin = 30 }, ErrInvalidAppearance, world.AtLoginCustomize},
		{"name", func(c *world.CharacterData) { c.Name = "g4rrosh" }, ErrInvalidName, world.AtLoginRename},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := orcWarrior()
			tt.mutate(b.Character)
			res, err := newHydrator(t).Hydrate(accountID, b)
			assert.Nil(t, res)
			require.ErrorIs(t, err, tt.err)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, ValidationFailure, le.Kind)
			assert.Equal(t, tt.flags, le.ForceRename)
		})
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("Garrosh"))
	assert.True(t, ValidName("Élise"))
	assert.False(t, ValidName("garrosh"))
	assert.False(t, ValidName("GARROSH"))
	assert.False(t, ValidName("G"))
	assert.False(t, ValidName("Garr osh"))
	assert.False(t, ValidName("Averyveryverylongname"))
	assert.Equal(t, "Garrosh", NormalizeName("gARROSH"))
}

func TestFortyItemsOneOrphan(t *testing.T) {
	b := orcWarrior()
	var items []world.Item
	guid := world.GUID(1000)
	next := func() world.GUID { guid++; return guid }

	bag1 := world.Item{GUID: next(), Template: tmplBackpack, Count: 1, Slot: world.BagSlotStart}
	bag2 := world.Item{GUID: next(), Template: tmplBackpack, Count: 1, Slot: world.BagSlotStart + 1}
	items = append(items, bag1, bag2)
	for slot := world.BackpackStart; slot < world.BackpackEnd; slot++ {
		items = append(items, world.Item{GUID: next(), Template: tmplCloth, Count: 5, Slot: slot})
	}
	for slot := range uint8(16) {
		items = append(items, world.Item{GUID: next(), Template: tmplCloth, Count: 1, Bag: bag1.GUID, Slot: slot})
	}
	for slot := range uint8(5) {
		items = append(items, world.Item{GUID: next(), Template: tmplCloth, Count: 1, Bag: bag2.GUID, Slot: slot})
	}
	orphan := world.Item{GUID: next(), Template: tmplSword, Count: 1, Bag: 99999, Slot: 3}
	items = append(items, orphan)
	require.Len(t, items, 40)
	b.Items = own(charGUID, items...)

	res := hydrate(t, b)
	p := res.Player

	assert.Equal(t, 39, p.Inventory.PlacedCount())
	require.Len(t, res.Mail, 1)
	attached := p.Inventory.MailItems(res.Mail[0])
	require.Len(t, attached, 1)
	assert.Equal(t, orphan.GUID, attached[0].GUID)

	m, ok := p.Mailbox.Get(res.Mail[0])
	require.True(t, ok)
	assert.Equal(t, world.MailSystem, m.Kind)
	assert.Equal(t, dirty.New, pendingState(p.Mailbox.Records(), res.Mail[0]))

	assert.Equal(t, 1, countReports(res, repair.Orphaned, repair.Mailed))
}

func TestItemPolicies(t *testing.T) {
	b := orcWarrior()
	b.Items = own(charGUID,
		world.Item{GUID: 1, Template: 424242, Count: 1, Slot: world.BackpackStart},
		world.Item{GUID: 2, Template: 5512, Count: 1, Slot: world.BackpackStart + 1},
		world.Item{GUID: 3, Template: 18154, Count: 1, Slot: world.BackpackStart + 2},
		world.Item{GUID: 4, Template: tmplArcheus, Count: 1, Slot: uint8(world.SlotMainHand),
			Flags: world.ItemSoulbound | world.ItemTradeable},
		world.Item{GUID: 5, Template: tmplArcheus, Count: 1, Slot: uint8(world.SlotHead)},
	)
	b.Character.LogoutTime = now.Add(-time.Hour).Unix()

	res := hydrate(t, b)
	inv := res.Player.Inventory

	for _, guid := range []world.GUID{1, 2, 3} {
		_, ok := inv.Get(guid)
		assert.False(t, ok, "item %d removed", guid)
	}
	assert.Equal(t, dirty.Removed, pendingState(inv.Records(), 1))

	weapon, ok := inv.Get(4)
	require.True(t, ok)
	assert.Zero(t, weapon.Flags&world.ItemTradeable)

	require.Len(t, res.Mail, 1)
	helm, ok := inv.Get(5)
	require.True(t, ok, "returned items stay in the graph as attachments")
	assert.False(t, helm.Placed(), "cannot equip a sword on the head")
	assert.Equal(t, res.Mail[0], helm.MailID)
	_, worn := inv.At(0, uint8(world.SlotHead))
	assert.False(t, worn)

	assert.Equal(t, 1, countReports(res, repair.Corrupt, repair.Deleted))
	assert.Equal(t, 2, countReports(res, repair.Expired, repair.Deleted))
	assert.Equal(t, 1, countReports(res, repair.Policy, repair.Cleared))
}

func TestUnreadableColumnsAreRewritten(t *testing.T) {
	b := orcWarrior()
	b.Items = []persist.Owned[world.Item]{{
		Owner:  charGUID,
		Value:  world.Item{GUID: 1, Template: tmplCloth, Count: 1, Slot: world.BackpackStart, Flags: world.ItemSoulbound | world.ItemTradeable},
		Damage: "looters: unexpected end of JSON input",
	}}
	b.EquipmentSets = []persist.Owned[world.EquipmentSet]{{
		Owner:  charGUID,
		Value:  world.EquipmentSet{GUID: 3, SetID: 1, Name: "pvp"},
		Damage: "pieces: unexpected end of JSON input",
	}}

	res := hydrate(t, b)
	it, ok := res.Player.Inventory.Get(1)
	require.True(t, ok, "the item is kept")
	assert.True(t, it.Placed())
	assert.Zero(t, it.Flags&world.ItemTradeable)
	assert.NotZero(t, it.Flags&world.ItemSoulbound)
	assert.Equal(t, dirty.Changed, pendingState(res.Player.Inventory.Records(), 1))

	set, ok := res.Player.EquipmentSets.Get(3)
	require.True(t, ok)
	assert.Equal(t, "pvp", set.Name)
	assert.Equal(t, dirty.Changed, pendingState(res.Player.EquipmentSets.Records(), 3))

	assert.Equal(t, 2, countReports(res, repair.Corrupt, repair.Cleared))
	assert.Zero(t, countReports(res, repair.Policy, repair.Cleared))
}

func TestSingleOwner(t *testing.T) {
	b := orcWarrior()
	b.Items = append(own(charGUID, world.Item{GUID: 1, Template: tmplCloth, Count: 1, Slot: world.BackpackStart}),
		own(8, world.Item{GUID: 2, Template: tmplCloth, Count: 1, Slot: world.BackpackStart + 1})...)
	b.Toys = own(99, persist.ToyRow{ID: tmplCloth})

	res := hydrate(t, b)
	_, ok := res.Player.Inventory.Get(2)
	assert.False(t, ok)
	assert.Equal(t, 0, res.Player.Inventory.Records().PendingCount(), "foreign rows are never deleted")
	assert.Equal(t, 2, countReports(res, repair.Corrupt, repair.Skipped))
}

func TestMailAttachments(t *testing.T) {
	b := orcWarrior()
	b.Mail = own(charGUID, world.Mail{ID: 40, Subject: "hi", ExpireTime: now.Add(time.Hour).Unix()})
	b.Items = own(charGUID,
		world.Item{GUID: 1, Template: tmplCloth, Count: 1, MailID: 40},
		world.Item{GUID: 2, Template: tmplCloth, Count: 1, MailID: 41},
	)
	res := hydrate(t, b)
	inv := res.Player.Inventory
	assert.Len(t, inv.MailItems(40), 1)
	require.Len(t, res.Mail, 1)
	assert.Len(t, inv.MailItems(res.Mail[0]), 1)
	assert.Empty(t, inv.MailItems(41))
}

func TestAuraEffectsPairing(t *testing.T) {
	b := orcWarrior()
	kept := world.AuraKey{Caster: charGUID, SpellID: 21562}
	headless := world.AuraKey{Caster: charGUID, SpellID: 1459}
	bare := world.AuraKey{Caster: charGUID, SpellID: 26013}
	expired := world.AuraKey{Caster: 9, SpellID: 116}
	b.Auras = own(charGUID,
		world.Aura{Key: kept, StackCount: 1, Remaining: 60000},
		world.Aura{Key: bare, StackCount: 1, Remaining: 60000},
		world.Aura{Key: expired, StackCount: 1, Remaining: 9000},
		world.Aura{Key: world.AuraKey{SpellID: 777777}, Remaining: 1000},
	)
	b.AuraEffects = own(charGUID,
		persist.AuraEffectRow{Key: world.AuraEffectKey{Aura: kept, Index: 0}, Effect: world.AuraEffect{Amount: 3}},
		persist.AuraEffectRow{Key: world.AuraEffectKey{Aura: headless, Index: 0}, Effect: world.AuraEffect{Amount: 1}},
		persist.AuraEffectRow{Key: world.AuraEffectKey{Aura: expired, Index: 0}, Effect: world.AuraEffect{Amount: -5}},
		persist.AuraEffectRow{Key: world.AuraEffectKey{Aura: world.AuraKey{SpellID: 777777}}, Effect: world.AuraEffect{}},
	)

	res := hydrate(t, b)
	auras := res.Player.Auras
	assert.True(t, auras.Has(kept))
	assert.Equal(t, map[uint8]world.AuraEffect{0: {Amount: 3}}, auras.Effects(kept))
	assert.False(t, auras.Has(bare))
	assert.False(t, auras.Has(expired), "negative aura decayed while offline")
	assert.Equal(t, 1, res.Derived.AurasExpired)
	assert.Empty(t, auras.Effects(headless))
	assert.Equal(t, 2, countReports(res, repair.Dropped, repair.Deleted))
	assert.Equal(t, 1, countReports(res, repair.Corrupt, repair.Deleted))
	assert.Equal(t, uint32(240+30), res.Player.MaxHealth())
}

func TestQuestLogCompaction(t *testing.T) {
	b := orcWarrior()
	b.QuestStatus = own(charGUID,
		world.QuestStatus{QuestID: 7, Slot: 3, State: world.QuestIncomplete},
		world.QuestStatus{QuestID: 33, Slot: 9, State: world.QuestIncomplete},
		world.QuestStatus{QuestID: 999999, Slot: 0},
	)
	b.QuestObjectives = own(charGUID,
		persist.ObjectiveRow{Key: world.ObjectiveKey{QuestID: 7, Index: 0}, Value: 4},
		persist.ObjectiveRow{Key: world.ObjectiveKey{QuestID: 7, Index: 2}, Value: 1},
		persist.ObjectiveRow{Key: world.ObjectiveKey{QuestID: 54, Index: 0}, Value: 1},
	)
	b.QuestRewarded = own[uint32](charGUID, 54, 888888)

	res := hydrate(t, b)
	q := res.Player.Quests
	st7, _ := q.Status(7)
	st33, _ := q.Status(33)
	assert.Equal(t, uint8(0), st7.Slot)
	assert.Equal(t, uint8(1), st33.Slot)
	_, ok := q.Status(999999)
	assert.False(t, ok)

	v, ok := q.Objective(world.ObjectiveKey{QuestID: 7, Index: 0})
	assert.True(t, ok)
	assert.Equal(t, int32(4), v)
	_, ok = q.Objective(world.ObjectiveKey{QuestID: 7, Index: 2})
	assert.False(t, ok)

	assert.True(t, q.Rewarded(54))
	assert.False(t, q.Rewarded(888888))
}

func TestTraitRegeneration(t *testing.T) {
	b := orcWarrior()
	b.TraitConfigs = own(charGUID,
		world.TraitConfig{ID: 1, Type: world.TraitCombat, SpecID: 71, CombatFlags: world.TraitActive},
		world.TraitConfig{ID: 2, Type: world.TraitCombat, SpecID: 71, CombatFlags: world.TraitActive},
		world.TraitConfig{ID: 3, Type: world.TraitCombat, SpecID: 62},
	)
	b.TraitEntries = own(charGUID,
		persist.TraitEntryRow{Key: world.TraitEntryKey{ConfigID: 1, NodeID: 90002, EntryID: 101}, Entry: world.TraitEntry{Rank: 2}},
		persist.TraitEntryRow{Key: world.TraitEntryKey{ConfigID: 3, NodeID: 90102, EntryID: 201}, Entry: world.TraitEntry{Rank: 1}},
		persist.TraitEntryRow{Key: world.TraitEntryKey{ConfigID: 9, NodeID: 1, EntryID: 1}, Entry: world.TraitEntry{Rank: 1}},
	)

	res := hydrate(t, b)
	tr := res.Player.Traits

	c1, _ := tr.Config(1)
	c2, _ := tr.Config(2)
	assert.True(t, c1.Active())
	assert.False(t, c2.Active(), "one active config per spec")

	c3, ok := tr.Config(3)
	require.True(t, ok)
	assert.Equal(t, uint32(71), c3.SpecID)
	assert.Equal(t, map[world.TraitEntryKey]world.TraitEntry{
		{ConfigID: 3, NodeID: 90001, EntryID: 100}: {Rank: 1, GrantedRanks: 1},
	}, tr.Entries(3))
	assert.Empty(t, tr.Entries(9))

	// stamina 2 per rank from the active Arms config
	assert.Equal(t, uint32(240+2*2*10), res.Player.MaxHealth())
}

func TestRootRepairs(t *testing.T) {
	b := orcWarrior()
	b.HomeBind = nil
	b.Character.Position = world.Position{MapID: 4242}
	b.Character.ActiveSpec = 62
	b.Character.Health = 99999
	b.Currencies = own(charGUID,
		world.Currency{ID: 392, Quantity: 5000},
		world.Currency{ID: 1, Quantity: 1},
	)
	b.Spells = append(b.Spells, own(charGUID, world.Spell{ID: 78, Active: true}, world.Spell{ID: 555555})...)

	res := hydrate(t, b)
	p := res.Player

	hb, ok := p.HomeBind()
	require.True(t, ok)
	assert.Equal(t, uint32(1), hb.MapID)
	assert.Equal(t, hb.MapID, p.Position().MapID)
	assert.Equal(t, uint32(71), p.ActiveSpec())
	assert.Equal(t, uint32(240), p.Health())
	assert.Equal(t, uint32(4000), p.Currencies.Get(392).Quantity)
	assert.Zero(t, p.Currencies.Get(1).Quantity)
	assert.True(t, p.Spells.IsDependent(78))
	assert.False(t, p.Spells.Knows(555555))

	data, st := p.CharacterState()
	assert.Equal(t, dirty.Changed, st)
	assert.Equal(t, now.Unix(), data.LogoutTime)
}

func TestSkillRepairs(t *testing.T) {
	b := orcWarrior()
	b.Skills = own(charGUID,
		world.Skill{ID: 26, Value: 1, Max: 1},
		world.Skill{ID: 43, Value: 300, Max: 300},
		world.Skill{ID: 6, Value: 1, Max: 1},
		world.Skill{ID: 31337, Value: 1, Max: 1},
	)
	res := hydrate(t, b)
	sk := res.Player.Skills

	swords, _ := sk.Get(43)
	assert.Equal(t, world.Skill{ID: 43, Value: 50, Max: 50}, swords)
	assert.False(t, sk.Has(6), "frost is a mage line")
	assert.False(t, sk.Has(31337))
	assert.True(t, sk.Has(95), "missing starting skill learned")
	assert.True(t, sk.Has(109))
}

func TestStartingSkillsFilledInAfterQuestRewards(t *testing.T) {
	b := orcWarrior()
	b.Skills = slices.DeleteFunc(b.Skills, func(r persist.Owned[world.Skill]) bool { return r.Value.ID == 26 })
	b.Spells = append(b.Spells, own(charGUID, world.Spell{ID: 78, Active: true})...)
	b.QuestRewarded = own(charGUID, uint32(999999))

	res := hydrate(t, b)
	p := res.Player
	assert.True(t, p.Skills.Has(26))
	assert.True(t, p.Spells.IsDependent(78), "auto spell of the regenerated line is derived")
	assert.Equal(t, dirty.Removed, pendingState(p.Spells.Records(), 78))

	order := func(collection string, action repair.Action) int {
		return slices.IndexFunc(res.Reports, func(r repair.Report) bool {
			return r.Collection == collection && r.Action == action
		})
	}
	rewarded, regenerated := order("queststatus_rewarded", repair.Deleted), order("skills", repair.Regenerated)
	require.NotEqual(t, -1, rewarded)
	require.NotEqual(t, -1, regenerated)
	assert.Less(t, rewarded, regenerated)
	assert.Equal(t, 1, countReports(res, repair.Dropped, repair.Deleted))
}

func TestPetsAndButtons(t *testing.T) {
	b := orcWarrior()
	b.Pets = own(charGUID,
		world.Pet{Number: 1, Slot: 0},
		world.Pet{Number: 2, Slot: 0},
		world.Pet{Number: 3, Slot: 900},
	)
	b.ActionButtons = own(charGUID,
		persist.ActionButtonRow{Index: 0, Button: world.ActionButton{Action: 2457, Type: world.ActionSpell}},
		persist.ActionButtonRow{Index: 1, Button: world.ActionButton{Action: 133, Type: world.ActionSpell}},
		persist.ActionButtonRow{Index: 2, Button: world.ActionButton{Action: 999999, Type: world.ActionItem}},
		persist.ActionButtonRow{Index: 200, Button: world.ActionButton{Action: 1, Type: world.ActionMacro}},
	)

	res := hydrate(t, b)
	pets := res.Player.Pets
	p1, _ := pets.Get(1)
	p2, _ := pets.Get(2)
	p3, _ := pets.Get(3)
	assert.Equal(t, int16(0), p1.Slot)
	assert.Equal(t, world.PetNoSlot, p2.Slot)
	assert.Equal(t, world.PetNoSlot, p3.Slot)

	buttons := res.Player.ActionButtons
	assert.Equal(t, 1, buttons.Len())
	_, ok := buttons.Get(0)
	assert.True(t, ok)
}
