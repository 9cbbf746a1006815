package handler

import (
	"context"
	"fmt"

	"github.com/l1jgo/charsync/internal/persist"
)

// CharacterEntry is one line of the character select list.
type CharacterEntry struct {
	persist.CharacterSummary
	Online bool
}

// ListCharacters returns the characters of the named account, marking
// those currently in-world.
func ListCharacters(ctx context.Context, deps *Deps, accountName string) (*persist.Account, []CharacterEntry, error) {
	account, err := deps.AccountRepo.Load(ctx, accountName)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, fmt.Errorf("account %q not found", accountName)
	}
	chars, err := deps.CharRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	out := make([]CharacterEntry, len(chars))
	for i, c := range chars {
		out[i] = CharacterEntry{CharacterSummary: c, Online: deps.World.GetByGUID(c.GUID) != nil}
	}
	return account, out, nil
}
