package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/l1jgo/charsync/internal/world"
)

// CharacterSummary is one line of an account's character list.
type CharacterSummary struct {
	GUID  world.GUID
	Name  string
	Race  uint8
	Class uint8
	Level uint8
}

// CharacterRepo holds the character-store queries that run outside the
// load/flush cycle. Full characters are written by the flusher.
type CharacterRepo struct {
	store Store
}

func NewCharacterRepo(store Store) *CharacterRepo {
	return &CharacterRepo{store: store}
}

func (r *CharacterRepo) ListByAccount(ctx context.Context, accountID int64) ([]CharacterSummary, error) {
	var out []CharacterSummary
	err := r.store.Query(ctx, Prepare(SelCharacterList, accountID), func(row Row) error {
		var guid, race, class, level int64
		var s CharacterSummary
		if err := row.Scan(&guid, &s.Name, &race, &class, &level); err != nil {
			return err
		}
		s.GUID, s.Race, s.Class, s.Level = world.GUID(guid), uint8(race), uint8(class), uint8(level)
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	return out, nil
}

// FindByName returns the guid of the character with that name, or 0.
func (r *CharacterRepo) FindByName(ctx context.Context, name string) (world.GUID, error) {
	var guid int64
	err := QueryOne(ctx, r.store, Prepare(SelCharacterByName, name), &guid)
	if errors.Is(err, ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find character: %w", err)
	}
	return world.GUID(guid), nil
}

// ForceAtLogin sets at-login flags directly in storage. Used when a load is
// refused and the character will not be flushed.
func (r *CharacterRepo) ForceAtLogin(ctx context.Context, guid world.GUID, flags world.AtLoginFlags) error {
	if _, err := r.store.Exec(ctx, Prepare(UpdCharacterAtLogin, int64(guid), int64(flags))); err != nil {
		return fmt.Errorf("force at-login %d: %w", guid, err)
	}
	return nil
}
