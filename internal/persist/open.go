package persist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/config"
)

// Open connects to one store using the configured driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewPGStore(db), nil
	case "sqlite":
		return OpenSQLite(cfg.DSN, log)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// OpenStores connects to the character and session stores and applies
// pending migrations to both.
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (Stores, error) {
	chars, err := Open(ctx, cfg.CharacterDB, log)
	if err != nil {
		return Stores{}, fmt.Errorf("character store: %w", err)
	}
	session, err := Open(ctx, cfg.SessionDB, log)
	if err != nil {
		chars.Close()
		return Stores{}, fmt.Errorf("session store: %w", err)
	}
	stores := Stores{Character: chars, Session: session}

	for _, id := range []StoreID{CharacterStore, SessionStore} {
		if err := RunMigrations(ctx, stores.Get(id), id); err != nil {
			stores.Close()
			return Stores{}, fmt.Errorf("%s store: %w", id, err)
		}
	}
	log.Info("stores ready",
		zap.String("character_driver", driverName(cfg.CharacterDB)),
		zap.String("session_driver", driverName(cfg.SessionDB)),
	)
	return stores, nil
}

func driverName(cfg config.DatabaseConfig) string {
	if cfg.Driver == "" {
		return "postgres"
	}
	return cfg.Driver
}
