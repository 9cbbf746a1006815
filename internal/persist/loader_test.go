package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/world"
)

func openTestStores(t *testing.T) Stores {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	chars, err := OpenSQLite(filepath.Join(dir, "characters.db"), zap.NewNop())
	require.NoError(t, err)
	session, err := OpenSQLite(filepath.Join(dir, "session.db"), zap.NewNop())
	require.NoError(t, err)
	stores := Stores{Character: chars, Session: session}
	t.Cleanup(stores.Close)

	require.NoError(t, RunMigrations(ctx, chars, CharacterStore))
	require.NoError(t, RunMigrations(ctx, session, SessionStore))
	return stores
}

func TestLoaderReadsEveryResultSet(t *testing.T) {
	ctx := context.Background()
	stores := openTestStores(t)

	acc, err := NewAccountRepo(stores.Session).Create(ctx, "tester", "secret")
	require.NoError(t, err)

	guid := world.GUID(42)
	c := world.CharacterData{
		GUID: guid, AccountID: acc.ID, Name: "Arthas", Race: 1, Class: 1, Level: 10,
		Money: 1 << 40, Position: world.Position{MapID: 0, ZoneID: 12, X: 1.5, Y: -2, Z: 3},
		Health: 100, RestBonus: 12.5, RestInArea: true, LogoutTime: 1700000000,
	}
	c.Power[1] = 50
	looted := world.Item{GUID: 900, Template: 2000, Count: 1, Slot: world.BackpackStart,
		Flags: world.ItemSoulbound | world.ItemTradeable, Looters: []world.GUID{42, 43}}
	set := world.EquipmentSet{GUID: 5, SetID: 1, Name: "pvp"}
	set.Pieces[world.SlotMainHand] = 900
	aura := world.Aura{Key: world.AuraKey{Caster: 42, SpellID: 1459, EffectMask: 1}, StackCount: 1, Remaining: 5000}

	batch := []Statement{
		Prepare(InsCharacter, CharacterArgs(c)...),
		Prepare(InsItem, ItemArgs(guid, looted)...),
		Prepare(InsItem, ItemArgs(7, world.Item{GUID: 901, Template: 25, Count: 1})...),
		Prepare(InsEquipmentSet, EquipmentSetArgs(guid, set)...),
		Prepare(InsAura, AuraArgs(guid, aura)...),
		Prepare(InsAuraEffect, AuraEffectArgs(guid, world.AuraEffectKey{Aura: aura.Key, Index: 0}, world.AuraEffect{Amount: 3})...),
		Prepare(InsQuestRewarded, QuestRewardedArgs(guid, 7)...),
		Prepare(InsMail, MailArgs(guid, world.Mail{ID: 3, Subject: "hi", Money: 10})...),
	}
	require.NoError(t, stores.Character.Commit(ctx, batch))
	require.NoError(t, stores.Session.Commit(ctx, []Statement{Prepare(InsToy, ToyArgs(acc.ID, 1, world.Toy{Favorite: true})...)}))

	b, err := NewLoader(stores, zap.NewNop()).Load(ctx, acc.ID, guid)
	require.NoError(t, err)
	require.NotNil(t, b.Character)
	require.NotNil(t, b.Account)

	assert.Equal(t, c, *b.Character)
	require.Len(t, b.Items, 1, "items of other owners are not selected")
	assert.Equal(t, looted, b.Items[0].Value)
	assert.Equal(t, int64(guid), b.Items[0].Owner)
	require.Len(t, b.EquipmentSets, 1)
	assert.Equal(t, set, b.EquipmentSets[0].Value)
	require.Len(t, b.AuraEffects, 1)
	assert.Equal(t, aura.Key, b.AuraEffects[0].Value.Key.Aura)
	assert.Equal(t, []Owned[uint32]{{Owner: 42, Value: 7}}, b.QuestRewarded)
	require.Len(t, b.Toys, 1)
	assert.True(t, b.Toys[0].Value.Toy.Favorite)
	assert.Empty(t, b.Pets)
}

func TestLoaderMissingCharacter(t *testing.T) {
	stores := openTestStores(t)
	b, err := NewLoader(stores, zap.NewNop()).Load(context.Background(), 1, 999)
	require.NoError(t, err)
	assert.Nil(t, b.Character)
	assert.Nil(t, b.Account)
}

func TestLoaderKeepsRowsWithUnreadableColumns(t *testing.T) {
	ctx := context.Background()
	stores := openTestStores(t)
	c := world.CharacterData{GUID: 3, AccountID: 1, Name: "Uther", Race: 1, Class: 1, Level: 1}

	item := ItemArgs(3, world.Item{GUID: 60, Template: 25, Count: 1, Flags: world.ItemTradeable, Looters: []world.GUID{3}})
	item[len(item)-1] = "{broken"
	set := EquipmentSetArgs(3, world.EquipmentSet{GUID: 8, SetID: 2, Name: "tank"})
	set[len(set)-2] = "[1,"
	require.NoError(t, stores.Character.Commit(ctx, []Statement{
		Prepare(InsCharacter, CharacterArgs(c)...),
		Prepare(InsItem, item...),
		Prepare(InsEquipmentSet, set...),
	}))

	b, err := NewLoader(stores, zap.NewNop()).Load(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Contains(t, b.Items[0].Damage, "looters")
	assert.Nil(t, b.Items[0].Value.Looters)
	assert.Equal(t, world.ItemTradeable, b.Items[0].Value.Flags)

	require.Len(t, b.EquipmentSets, 1)
	assert.Contains(t, b.EquipmentSets[0].Damage, "pieces")
	assert.NotContains(t, b.EquipmentSets[0].Damage, "appearances")
	assert.Equal(t, [world.SlotMax]world.GUID{}, b.EquipmentSets[0].Value.Pieces)
	assert.Equal(t, "tank", b.EquipmentSets[0].Value.Name)
}

func TestAccountRepo(t *testing.T) {
	ctx := context.Background()
	stores := openTestStores(t)
	repo := NewAccountRepo(stores.Session)

	a, err := repo.Create(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	_, err = repo.Create(ctx, "ALICE", "pw")
	assert.ErrorIs(t, err, ErrAccountExists)

	loaded, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, repo.ValidatePassword(loaded.PasswordHash, "pw"))
	assert.False(t, repo.ValidatePassword(loaded.PasswordHash, "nope"))

	now := time.Unix(1700000000, 0)
	require.NoError(t, repo.Ban(ctx, a.ID, now.Add(time.Hour).Unix(), "botting"))
	loaded, err = repo.LoadByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Banned(now))
	assert.False(t, loaded.Banned(now.Add(2*time.Hour)))
	assert.Error(t, repo.Ban(ctx, 77, PermanentBan, ""))
}

func TestIDSeedsAndCharacterRepo(t *testing.T) {
	ctx := context.Background()
	stores := openTestStores(t)
	c := world.CharacterData{GUID: 12, AccountID: 1, Name: "Jaina", Race: 1, Class: 8, Level: 1}
	require.NoError(t, stores.Character.Commit(ctx, []Statement{
		Prepare(InsCharacter, CharacterArgs(c)...),
		Prepare(InsItem, ItemArgs(12, world.Item{GUID: 77, Template: 25, Count: 1})...),
	}))

	seeds, err := NextIDSeeds(ctx, stores)
	require.NoError(t, err)
	assert.Equal(t, int64(77), seeds[world.IDItem])
	assert.Equal(t, int64(12), seeds[world.IDCharacter])
	assert.Equal(t, int64(0), seeds[world.IDMail])

	repo := NewCharacterRepo(stores.Character)
	guid, err := repo.FindByName(ctx, "jaina")
	require.NoError(t, err)
	assert.Equal(t, world.GUID(12), guid)

	require.NoError(t, repo.ForceAtLogin(ctx, 12, world.AtLoginRename))
	list, err := repo.ListByAccount(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Jaina", list[0].Name)

	b, err := NewLoader(stores, zap.NewNop()).Load(ctx, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, world.AtLoginRename, b.Character.AtLogin)
}
