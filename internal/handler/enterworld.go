package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/core/event"
	"github.com/l1jgo/charsync/internal/hydrate"
	"github.com/l1jgo/charsync/internal/world"
)

// ErrAlreadyOnline is returned when the character is already in-world.
var ErrAlreadyOnline = errors.New("character already online")

// EnterWorld loads, repairs and registers a character for accountID.
//
// A refused load never registers the character. When the refusal carries
// at-login flags they are written straight to storage so the next login
// prompts for a rename or customization. The repair cleanup of an accepted
// load is flushed before the character is registered; a failed cleanup
// flush is logged and retried by the next save.
func EnterWorld(ctx context.Context, deps *Deps, accountID int64, guid world.GUID) (*hydrate.Result, error) {
	if deps.World.GetByGUID(guid) != nil {
		return nil, ErrAlreadyOnline
	}

	bundle, err := deps.Loader.Load(ctx, accountID, guid)
	if err != nil {
		return nil, err
	}

	res, err := deps.Hydrator.Hydrate(accountID, bundle)
	if err != nil {
		var le *hydrate.LoadError
		if errors.As(err, &le) && le.ForceRename != 0 {
			if ferr := deps.CharRepo.ForceAtLogin(ctx, guid, le.ForceRename); ferr != nil {
				deps.Log.Error("at-login flag not stored", zap.Int64("guid", int64(guid)), zap.Error(ferr))
			}
		}
		deps.Log.Warn("enter world refused",
			zap.Int64("account", accountID),
			zap.Int64("guid", int64(guid)),
			zap.Error(err),
		)
		return nil, err
	}

	p := res.Player
	if _, err := deps.Flusher.Flush(ctx, p); err != nil {
		deps.Log.Error("repair cleanup not flushed", zap.String("name", p.Name()), zap.Error(err))
	}
	if err := deps.AccountRepo.TouchLogin(ctx, accountID, deps.Clock.Now()); err != nil {
		deps.Log.Warn("last login not stored", zap.Int64("account", accountID), zap.Error(err))
	}

	deps.World.AddPlayer(p)
	deps.Metrics.SetOnline(deps.World.PlayerCount())
	event.Emit(deps.Bus, event.PlayerLoaded{
		GUID:      p.GUID(),
		AccountID: accountID,
		Repairs:   len(res.Reports),
		Mail:      res.Mail,
	})

	deps.Log.Info(fmt.Sprintf("character entered world  account=%d  name=%s", accountID, p.Name()),
		zap.Int("repairs", len(res.Reports)),
		zap.Duration("offline", res.Derived.Elapsed),
	)
	return res, nil
}
