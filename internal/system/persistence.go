package system

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/core/event"
	coresys "github.com/l1jgo/charsync/internal/core/system"
	"github.com/l1jgo/charsync/internal/flush"
	"github.com/l1jgo/charsync/internal/world"
)

// PersistenceSystem flushes online players. Phase 5 (Persist).
//
// Every tick it drains operations queued during a transfer; a queued save is
// flushed right away. Every interval ticks it flushes every player with
// pending records.
type PersistenceSystem struct {
	world     *world.State
	flusher   *flush.Flusher
	bus       *event.Bus
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks
}

func NewPersistenceSystem(ws *world.State, f *flush.Flusher, bus *event.Bus, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{
		world:    ws,
		flusher:  f,
		bus:      bus,
		log:      log,
		interval: max(intervalTicks, 1),
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	for p := range s.world.AllPlayers() {
		if p.RunPending() {
			s.save(p)
		}
	}

	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.saveDirty()
}

// SaveAllPlayers flushes every online player. Called for graceful shutdown.
// Returns the number of players whose flush failed.
func (s *PersistenceSystem) SaveAllPlayers() int {
	failed := 0
	for p := range s.world.AllPlayers() {
		if p.InTransfer() {
			// a shutdown does not wait for the transfer to land
			p.AbortTransfer()
			p.RunPending()
		}
		if !s.save(p) {
			failed++
		}
	}
	return failed
}

func (s *PersistenceSystem) saveDirty() {
	count := 0
	for p := range s.world.AllPlayers() {
		if flush.Pending(p) == 0 {
			continue
		}
		if s.save(p) {
			count++
		}
	}
	if count > 0 {
		s.log.Info("auto-save complete", zap.Int("players", count))
	}
}

func (s *PersistenceSystem) save(p *world.Player) bool {
	r, err := s.flusher.Flush(context.Background(), p)
	if errors.Is(err, flush.ErrDeferred) {
		return true
	}
	ev := event.PlayerSaved{GUID: p.GUID(), Err: err}
	if r != nil {
		ev.CycleID = r.CycleID
		ev.Statements = r.Statements()
	}
	event.Emit(s.bus, ev)
	if err != nil {
		s.log.Error("auto-save failed", zap.String("name", p.Name()), zap.Error(err))
		return false
	}
	return true
}
