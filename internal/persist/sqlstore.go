package persist

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var placeholder = regexp.MustCompile(`\$(\d+)`)

// sqliteSQL rewrites $n placeholders into SQLite's numbered ?n form.
func sqliteSQL(q string) string {
	return placeholder.ReplaceAllString(q, "?$1")
}

// SQLStore runs registered statements through database/sql. Used with the
// pure-Go sqlite driver for local development and tests.
type SQLStore struct {
	db      *sql.DB
	rewrite bool
	log     *zap.Logger
}

// OpenSQLite opens (or creates) a sqlite database. SQLite allows one writer,
// so the pool is pinned to a single connection; this also keeps ":memory:"
// databases alive across statements.
func OpenSQLite(dsn string, log *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return &SQLStore{db: db, rewrite: true, log: log}, nil
}

// NewSQLStore wraps an existing handle. rewrite selects ?n placeholders.
func NewSQLStore(db *sql.DB, rewrite bool, log *zap.Logger) *SQLStore {
	return &SQLStore{db: db, rewrite: rewrite, log: log}
}

// DB exposes the handle for migrations.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) text(st Statement) string {
	if s.rewrite {
		return sqliteSQL(st.SQL())
	}
	return st.SQL()
}

func (s *SQLStore) Query(ctx context.Context, st Statement, fn func(Row) error) error {
	rows, err := s.db.QueryContext(ctx, s.text(st), st.Args...)
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

func (s *SQLStore) Exec(ctx context.Context, st Statement) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.text(st), st.Args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", st.Name(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *SQLStore) Commit(ctx context.Context, batch []Statement) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, st := range batch {
		if _, err := tx.ExecContext(ctx, s.text(st), st.Args...); err != nil {
			return fmt.Errorf("%s: %w", st.Name(), err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Warn("close sqlite store", zap.Error(err))
	}
}

var _ Store = (*SQLStore)(nil)
