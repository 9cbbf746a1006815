package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/config"
	"github.com/l1jgo/charsync/internal/core/event"
	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/flush"
	"github.com/l1jgo/charsync/internal/handler"
	"github.com/l1jgo/charsync/internal/hydrate"
	"github.com/l1jgo/charsync/internal/messaging"
	"github.com/l1jgo/charsync/internal/metrics"
	"github.com/l1jgo/charsync/internal/persist"
	"github.com/l1jgo/charsync/internal/recalc"
	"github.com/l1jgo/charsync/internal/repair"
	"github.com/l1jgo/charsync/internal/scripting"
	"github.com/l1jgo/charsync/internal/world"
)

// app is the wired load/save stack shared by every command.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	stores  persist.Stores
	scripts *scripting.Engine
	deps    *handler.Deps
	closers []func()
}

// newApp connects both stores, loads the catalog and scripts and wires the
// hydrator and flusher. reg may be nil to disable metrics.
func newApp(ctx context.Context, reg prometheus.Registerer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	a.stores, err = persist.OpenStores(openCtx, cfg, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("database: %w", err)
	}
	a.closers = append(a.closers, a.stores.Close)

	cat, err := data.LoadCatalog(cfg.Catalog.Dir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("catalog: %w", err)
	}
	a.scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("scripting: %w", err)
	}
	a.closers = append(a.closers, a.scripts.Close)

	seeds, err := persist.NextIDSeeds(openCtx, a.stores)
	if err != nil {
		a.Close()
		return nil, err
	}
	ids := world.NewIDAllocator(seeds)
	bus := event.NewBus()
	m := metrics.New(reg)

	if cfg.Nats.Enabled {
		conn, err := messaging.Connect(cfg.Nats, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		messaging.NewMailer(conn, cfg.Nats.SubjectPrefix, log).Attach(bus)
	}

	rl := repair.New(repair.OptionsFromConfig(cfg.Repair), ids, messaging.NewQueue(bus), m, log)
	rc := recalc.New(cat, a.scripts, cfg.Rest, log)
	clock := world.SystemClock{}

	a.deps = &handler.Deps{
		Catalog:     cat,
		Loader:      persist.NewLoader(a.stores, log),
		Hydrator:    hydrate.New(cat, rl, rc, clock, m, log),
		Flusher:     flush.New(a.stores, cfg.Persist.StatementTimeout, m, log),
		AccountRepo: persist.NewAccountRepo(a.stores.Session),
		CharRepo:    persist.NewCharacterRepo(a.stores.Character),
		IDs:         ids,
		World:       world.NewState(),
		Bus:         bus,
		Clock:       clock,
		Metrics:     m,
		Log:         log,
	}
	return a, nil
}

// Close releases everything in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// resolve finds a character by account and character name.
func (a *app) resolve(ctx context.Context, accountName, charName string) (int64, world.GUID, error) {
	acc, err := a.deps.AccountRepo.Load(ctx, accountName)
	if err != nil {
		return 0, 0, err
	}
	if acc == nil {
		return 0, 0, fmt.Errorf("account %q not found", accountName)
	}
	guid, err := a.deps.CharRepo.FindByName(ctx, hydrate.NormalizeName(charName))
	if err != nil {
		return 0, 0, err
	}
	if guid == 0 {
		return 0, 0, fmt.Errorf("character %q not found", charName)
	}
	return acc.ID, guid, nil
}
