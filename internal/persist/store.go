package persist

import (
	"context"
	"errors"
	"fmt"
)

// StoreID names one of the two databases a character spans.
type StoreID uint8

const (
	// CharacterStore holds everything scoped to a single character.
	CharacterStore StoreID = iota
	// SessionStore holds account-scoped data shared by all characters of an account.
	SessionStore
)

func (s StoreID) String() string {
	switch s {
	case CharacterStore:
		return "character"
	case SessionStore:
		return "session"
	default:
		return "unknown"
	}
}

// ErrNoRows is returned by QueryOne when the statement matched nothing.
var ErrNoRows = errors.New("no rows")

// Statement is a prepared statement id with its bound positional values.
type Statement struct {
	ID   StmtID
	Args []any
}

// Prepare binds args to a registered statement. It panics on an unknown id,
// which is a programming error caught by the registry test.
func Prepare(id StmtID, args ...any) Statement {
	if _, ok := statements[id]; !ok {
		panic(fmt.Sprintf("persist: unknown statement %d", id))
	}
	return Statement{ID: id, Args: args}
}

// Store reports which database the statement targets.
func (s Statement) Store() StoreID { return statements[s.ID].store }

// Name returns the statement's registry name for logs and metrics.
func (s Statement) Name() string { return statements[s.ID].name }

// SQL returns the statement text with $n placeholders.
func (s Statement) SQL() string { return statements[s.ID].sql }

// Row is the scan side shared by pgx and database/sql result rows.
type Row interface {
	Scan(dest ...any) error
}

// Store executes registered statements against one database.
type Store interface {
	// Query runs a select and calls fn once per row.
	Query(ctx context.Context, st Statement, fn func(Row) error) error
	// Exec runs a single statement outside any transaction.
	Exec(ctx context.Context, st Statement) (int64, error)
	// Commit runs statements in order inside one transaction. Nothing is
	// applied if any statement fails.
	Commit(ctx context.Context, batch []Statement) error
	Close()
}

// QueryOne runs a select expected to return at most one row.
func QueryOne(ctx context.Context, s Store, st Statement, dest ...any) error {
	found := false
	err := s.Query(ctx, st, func(r Row) error {
		if found {
			return nil
		}
		found = true
		return r.Scan(dest...)
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNoRows
	}
	return nil
}

// Stores pairs the character and session databases.
type Stores struct {
	Character Store
	Session   Store
}

// Get returns the store for id.
func (s Stores) Get(id StoreID) Store {
	if id == SessionStore {
		return s.Session
	}
	return s.Character
}

// Close closes both stores. A store shared by both ids is closed once.
func (s Stores) Close() {
	if s.Character != nil {
		s.Character.Close()
	}
	if s.Session != nil && s.Session != s.Character {
		s.Session.Close()
	}
}

// Batch collects statements partitioned by target store, preserving the
// order in which they were added.
type Batch struct {
	stmts [2][]Statement
}

// Add appends a statement to its store's batch.
func (b *Batch) Add(st Statement) {
	b.stmts[st.Store()] = append(b.stmts[st.Store()], st)
}

// For returns the statements queued for one store.
func (b *Batch) For(id StoreID) []Statement { return b.stmts[id] }

// Len returns the total number of queued statements.
func (b *Batch) Len() int { return len(b.stmts[0]) + len(b.stmts[1]) }
