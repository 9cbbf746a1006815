package persist

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/character/*.sql migrations/session/*.sql
var migrations embed.FS

// RunMigrations applies all pending migrations of one store. Each store keeps
// its own version table so both sets can share a database.
func RunMigrations(ctx context.Context, s Store, id StoreID) error {
	var (
		db      *sql.DB
		dialect string
	)
	switch st := s.(type) {
	case *PGStore:
		db = stdlib.OpenDBFromPool(st.db.Pool)
		defer db.Close()
		dialect = "postgres"
	case *SQLStore:
		db = st.db
		dialect = "sqlite3"
	default:
		return fmt.Errorf("migrations: unsupported store %T", s)
	}

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	goose.SetTableName("goose_" + id.String() + "_version")
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations/"+id.String()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
