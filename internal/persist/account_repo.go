package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PermanentBan in banned_until never expires.
const PermanentBan int64 = -1

type Account struct {
	ID           int64
	Name         string
	PasswordHash string
	BannedUntil  int64 // unix seconds; 0 = not banned, -1 = permanent
	BanReason    string
	CreatedAt    int64
	LastLogin    int64
}

// Banned reports whether the ban is in effect at now.
func (a *Account) Banned(now time.Time) bool {
	return a.BannedUntil == PermanentBan || a.BannedUntil > now.Unix()
}

var ErrAccountExists = errors.New("account name taken")

type AccountRepo struct {
	store Store
}

func NewAccountRepo(store Store) *AccountRepo {
	return &AccountRepo{store: store}
}

func loadAccount(ctx context.Context, s Store, st Statement) (*Account, error) {
	a := &Account{}
	err := QueryOne(ctx, s, st,
		&a.ID, &a.Name, &a.PasswordHash, &a.BannedUntil, &a.BanReason, &a.CreatedAt, &a.LastLogin)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return a, nil
}

func (r *AccountRepo) Load(ctx context.Context, name string) (*Account, error) {
	return loadAccount(ctx, r.store, Prepare(SelAccountByName, name))
}

func (r *AccountRepo) LoadByID(ctx context.Context, id int64) (*Account, error) {
	return loadAccount(ctx, r.store, Prepare(SelAccountByID, id))
}

func (r *AccountRepo) Create(ctx context.Context, name, rawPassword string) (*Account, error) {
	existing, err := r.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	var maxID int64
	if err := QueryOne(ctx, r.store, Prepare(SelMaxAccountID), &maxID); err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	a := &Account{
		ID:           maxID + 1,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if _, err := r.store.Exec(ctx, Prepare(InsAccount,
		a.ID, a.Name, a.PasswordHash, a.BannedUntil, a.BanReason, a.CreatedAt, a.LastLogin,
	)); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepo) ValidatePassword(hash string, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword)) == nil
}

// Ban sets the account's ban expiry. until = 0 lifts the ban.
func (r *AccountRepo) Ban(ctx context.Context, id, until int64, reason string) error {
	n, err := r.store.Exec(ctx, Prepare(UpdAccountBan, id, until, reason))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, ErrNoRows)
	}
	return nil
}

func (r *AccountRepo) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.store.Exec(ctx, Prepare(UpdAccountLogin, id, at.Unix()))
	return err
}
