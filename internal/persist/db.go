package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/config"
)

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &DB{Pool: pool, log: log}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// PGStore runs registered statements on a pgx pool.
type PGStore struct {
	db *DB
}

func NewPGStore(db *DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Query(ctx context.Context, st Statement, fn func(Row) error) error {
	rows, err := s.db.Pool.Query(ctx, st.SQL(), st.Args...)
	if err != nil {
		return fmt.Errorf("%s: %w", st.Name(), err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return fmt.Errorf("%s: %w", st.Name(), err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s: %w", st.Name(), err)
	}
	return nil
}

func (s *PGStore) Exec(ctx context.Context, st Statement) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, st.SQL(), st.Args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", st.Name(), err)
	}
	return tag.RowsAffected(), nil
}

func (s *PGStore) Commit(ctx context.Context, batch []Statement) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, st := range batch {
		if _, err := tx.Exec(ctx, st.SQL(), st.Args...); err != nil {
			return fmt.Errorf("%s: %w", st.Name(), err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Close() { s.db.Close() }

var _ Store = (*PGStore)(nil)
