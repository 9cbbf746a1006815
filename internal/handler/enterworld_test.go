package handler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/config"
	"github.com/l1jgo/charsync/internal/core/event"
	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/flush"
	"github.com/l1jgo/charsync/internal/hydrate"
	"github.com/l1jgo/charsync/internal/messaging"
	"github.com/l1jgo/charsync/internal/persist"
	"github.com/l1jgo/charsync/internal/recalc"
	"github.com/l1jgo/charsync/internal/repair"
	"github.com/l1jgo/charsync/internal/scripting"
	"github.com/l1jgo/charsync/internal/world"
)

type env struct {
	deps   *Deps
	stores persist.Stores
	clock  *testClock
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()
	dir := t.TempDir()

	chars, err := persist.OpenSQLite(filepath.Join(dir, "characters.db"), log)
	require.NoError(t, err)
	session, err := persist.OpenSQLite(filepath.Join(dir, "session.db"), log)
	require.NoError(t, err)
	stores := persist.Stores{Character: chars, Session: session}
	t.Cleanup(stores.Close)
	require.NoError(t, persist.RunMigrations(ctx, chars, persist.CharacterStore))
	require.NoError(t, persist.RunMigrations(ctx, session, persist.SessionStore))

	cat, err := data.Builtin()
	require.NoError(t, err)
	scripts, err := scripting.NewEngine("", log)
	require.NoError(t, err)
	t.Cleanup(scripts.Close)

	seeds, err := persist.NextIDSeeds(ctx, stores)
	require.NoError(t, err)
	ids := world.NewIDAllocator(seeds)
	bus := event.NewBus()
	clock := &testClock{t: time.Unix(1_700_000_000, 0)}

	rl := repair.New(repair.Options{
		ConjuredExpiry:     15 * time.Minute,
		MaxMailAttachments: 12,
		MailExpiry:         30 * 24 * time.Hour,
		MailSubject:        "Recovered items",
	}, ids, messaging.NewQueue(bus), nil, log)
	rc := recalc.New(cat, scripts, config.RestConfig{RestAreaRate: 1, WildernessRate: 0.25}, log)

	return &env{
		stores: stores,
		clock:  clock,
		deps: &Deps{
			Catalog:     cat,
			Loader:      persist.NewLoader(stores, log),
			Hydrator:    hydrate.New(cat, rl, rc, clock, nil, log),
			Flusher:     flush.New(stores, 5*time.Second, nil, log),
			AccountRepo: persist.NewAccountRepo(stores.Session),
			CharRepo:    persist.NewCharacterRepo(stores.Character),
			IDs:         ids,
			World:       world.NewState(),
			Bus:         bus,
			Clock:       clock,
			Log:         log,
		},
	}
}

func (e *env) account(t *testing.T) int64 {
	t.Helper()
	acc, err := e.deps.AccountRepo.Create(context.Background(), "player", "secret")
	require.NoError(t, err)
	return acc.ID
}

func TestCreateLoadMutateReload(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	acc := e.account(t)

	guid, err := CreateCharacter(ctx, e.deps, acc, NewCharacter{Name: "garrosh", Race: 2, Class: 1})
	require.NoError(t, err)

	_, err = CreateCharacter(ctx, e.deps, acc, NewCharacter{Name: "Garrosh", Race: 2, Class: 1})
	assert.ErrorIs(t, err, ErrNameTaken)

	res, err := EnterWorld(ctx, e.deps, acc, guid)
	require.NoError(t, err)
	assert.Empty(t, res.Reports, "a freshly created character loads clean")
	p := res.Player
	assert.Equal(t, "Garrosh", p.Name())
	assert.Same(t, p, e.deps.World.GetByGUID(guid))

	_, err = EnterWorld(ctx, e.deps, acc, guid)
	assert.ErrorIs(t, err, ErrAlreadyOnline)

	_, list, err := ListCharacters(ctx, e.deps, "player")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, guid, list[0].GUID)
	assert.True(t, list[0].Online)

	p.SetMoney(12345)
	require.True(t, p.Skills.SetValue(43, 5))
	require.True(t, p.Collections.AddToy(25))

	r, err := SaveNow(ctx, e.deps, guid)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Results[persist.CharacterStore].Statements)
	assert.Equal(t, 1, r.Results[persist.SessionStore].Statements)

	e.clock.t = e.clock.t.Add(time.Hour)
	require.NoError(t, Logout(ctx, e.deps, guid))
	assert.Nil(t, e.deps.World.GetByGUID(guid))
	assert.ErrorIs(t, Logout(ctx, e.deps, guid), ErrNotOnline)

	e.clock.t = e.clock.t.Add(time.Hour)
	res, err = EnterWorld(ctx, e.deps, acc, guid)
	require.NoError(t, err)
	p = res.Player
	assert.Equal(t, uint64(12345), p.Data().Money)
	sk, ok := p.Skills.Get(43)
	require.True(t, ok)
	assert.Equal(t, uint16(5), sk.Value)
	assert.True(t, p.Collections.HasToy(25))
	assert.Equal(t, time.Hour, res.Derived.Elapsed)
}

func TestOrphanedItemMailedBackAndPersisted(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	acc := e.account(t)
	guid, err := CreateCharacter(ctx, e.deps, acc, NewCharacter{Name: "Thrall", Race: 2, Class: 1})
	require.NoError(t, err)

	orphan := world.Item{GUID: 9001, Template: 25, Count: 1, Bag: 99999, Slot: 3}
	require.NoError(t, e.stores.Character.Commit(ctx, []persist.Statement{
		persist.Prepare(persist.InsItem, persist.ItemArgs(guid, orphan)...),
	}))

	res, err := EnterWorld(ctx, e.deps, acc, guid)
	require.NoError(t, err)
	require.Len(t, res.Mail, 1)

	b, err := e.deps.Loader.Load(ctx, acc, guid)
	require.NoError(t, err)
	require.Len(t, b.Mail, 1)
	assert.Equal(t, res.Mail[0], b.Mail[0].Value.ID)
	require.Len(t, b.Items, 1)
	assert.Equal(t, res.Mail[0], b.Items[0].Value.MailID)

	var queued []event.MailQueued
	event.Subscribe(e.deps.Bus, func(ev event.MailQueued) { queued = append(queued, ev) })
	e.deps.Bus.SwapBuffers()
	e.deps.Bus.DispatchAll()
	require.Len(t, queued, 1)
	assert.Equal(t, []world.GUID{9001}, queued[0].Items)
}

func TestUnreadableLootersDoNotBlockLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	acc := e.account(t)
	guid, err := CreateCharacter(ctx, e.deps, acc, NewCharacter{Name: "Sylvanas", Race: 2, Class: 3})
	require.NoError(t, err)

	args := persist.ItemArgs(guid, world.Item{GUID: 9100, Template: 25, Count: 1, Slot: world.BackpackStart,
		Durability: 20, Flags: world.ItemSoulbound | world.ItemTradeable})
	args[len(args)-1] = "{broken"
	require.NoError(t, e.stores.Character.Commit(ctx, []persist.Statement{persist.Prepare(persist.InsItem, args...)}))

	res, err := EnterWorld(ctx, e.deps, acc, guid)
	require.NoError(t, err)
	it, ok := res.Player.Inventory.Get(9100)
	require.True(t, ok)
	assert.Zero(t, it.Flags&world.ItemTradeable)
	require.NoError(t, Logout(ctx, e.deps, guid))

	b, err := e.deps.Loader.Load(ctx, acc, guid)
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Empty(t, b.Items[0].Damage, "the cleanup flush rewrote the column")

	res, err = EnterWorld(ctx, e.deps, acc, guid)
	require.NoError(t, err)
	assert.Empty(t, res.Reports)
}

func TestRefusedLoads(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	acc := e.account(t)

	_, err := EnterWorld(ctx, e.deps, acc, 404)
	assert.ErrorIs(t, err, hydrate.ErrCharacterNotFound)

	bad := world.CharacterData{
		GUID: 50, AccountID: acc, Name: "x1", Race: 2, Class: 1, Level: 1, Health: 60,
		Position: world.Position{MapID: 1, ZoneID: 14},
	}
	require.NoError(t, e.stores.Character.Commit(ctx, []persist.Statement{
		persist.Prepare(persist.InsCharacter, persist.CharacterArgs(bad)...),
	}))
	_, err = EnterWorld(ctx, e.deps, acc, 50)
	assert.ErrorIs(t, err, hydrate.ErrInvalidName)
	assert.Nil(t, e.deps.World.GetByGUID(50))

	b, err := e.deps.Loader.Load(ctx, acc, 50)
	require.NoError(t, err)
	assert.NotZero(t, b.Character.AtLogin&world.AtLoginRename)

	guid, err := CreateCharacter(ctx, e.deps, acc, NewCharacter{Name: "Rexxar", Race: 2, Class: 1})
	require.NoError(t, err)
	require.NoError(t, e.deps.AccountRepo.Ban(ctx, acc, e.clock.t.Add(time.Hour).Unix(), "botting"))
	_, err = EnterWorld(ctx, e.deps, acc, guid)
	assert.ErrorIs(t, err, hydrate.ErrBanned)

	other, err := e.deps.AccountRepo.Create(ctx, "intruder", "secret")
	require.NoError(t, err)
	_, err = EnterWorld(ctx, e.deps, other.ID, guid)
	assert.ErrorIs(t, err, hydrate.ErrAccountMismatch)
}

func TestReloadWithoutMutationIsStable(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	acc := e.account(t)
	guid, err := CreateCharacter(ctx, e.deps, acc, NewCharacter{Name: "Jaina", Race: 1, Class: 8})
	require.NoError(t, err)

	res, err := EnterWorld(ctx, e.deps, acc, guid)
	require.NoError(t, err)
	p := res.Player
	item := world.Item{GUID: e.deps.IDs.NextItemGUID(), Template: 25, Count: 1, Slot: world.BackpackStart, Durability: 20}
	require.NoError(t, p.Inventory.Add(item, e.deps.Catalog))
	p.Currencies.Modify(392, 150, e.deps.Catalog.Progress.Currency(392).Caps())
	require.NoError(t, Logout(ctx, e.deps, guid))

	first, err := e.deps.Loader.Load(ctx, acc, guid)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	require.Len(t, first.Currencies, 1)

	res, err = EnterWorld(ctx, e.deps, acc, guid)
	require.NoError(t, err)
	assert.Empty(t, res.Reports)
	assert.Zero(t, flush.Pending(res.Player))
	require.NoError(t, Logout(ctx, e.deps, guid))

	second, err := e.deps.Loader.Load(ctx, acc, guid)
	require.NoError(t, err)
	assert.Equal(t, first, second, "load then save without changes rewrites the same rows")
}
