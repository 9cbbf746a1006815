package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/core/event"
	"github.com/l1jgo/charsync/internal/flush"
	"github.com/l1jgo/charsync/internal/world"
)

// ErrNotOnline is returned for a character that is not in-world.
var ErrNotOnline = errors.New("character not online")

// Logout stamps the logout time, flushes and unregisters the character.
// The character is unregistered even when the final flush fails; the
// error is returned so the caller can report the lost save.
func Logout(ctx context.Context, deps *Deps, guid world.GUID) error {
	p := deps.World.GetByGUID(guid)
	if p == nil {
		return ErrNotOnline
	}
	if p.InTransfer() {
		p.AbortTransfer()
		p.RunPending()
	}
	p.MarkOfflineAccounted(deps.Clock.Now().Unix())

	_, err := deps.Flusher.Flush(ctx, p)
	if err != nil {
		deps.Log.Error("final save failed", zap.String("name", p.Name()), zap.Error(err))
	}

	deps.World.RemovePlayer(guid)
	deps.Metrics.SetOnline(deps.World.PlayerCount())
	event.Emit(deps.Bus, event.PlayerLoggedOut{GUID: guid})
	return err
}

// SaveNow flushes one online character immediately.
func SaveNow(ctx context.Context, deps *Deps, guid world.GUID) (*flush.Report, error) {
	p := deps.World.GetByGUID(guid)
	if p == nil {
		return nil, ErrNotOnline
	}
	return deps.Flusher.Flush(ctx, p)
}
