package handler

import (
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/core/event"
	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/flush"
	"github.com/l1jgo/charsync/internal/hydrate"
	"github.com/l1jgo/charsync/internal/metrics"
	"github.com/l1jgo/charsync/internal/persist"
	"github.com/l1jgo/charsync/internal/world"
)

// Deps holds shared dependencies injected into all handlers.
// Handlers run on the game loop goroutine.
type Deps struct {
	Catalog     *data.Catalog
	Loader      *persist.Loader
	Hydrator    *hydrate.Hydrator
	Flusher     *flush.Flusher
	AccountRepo *persist.AccountRepo
	CharRepo    *persist.CharacterRepo
	IDs         *world.IDAllocator
	World       *world.State
	Bus         *event.Bus
	Clock       world.Clock
	Metrics     *metrics.Collector
	Log         *zap.Logger
}
