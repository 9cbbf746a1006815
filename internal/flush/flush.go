// Package flush writes a character's dirty records back to storage.
//
// One flush emits exactly one statement per pending record, partitions them
// into a character-store batch and a session-store batch, and commits each
// batch in its own transaction. The two commits are independent: when one
// fails the other still lands, and only the records of the committed store
// are acknowledged. Unacknowledged records stay pending for the next cycle.
package flush

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/metrics"
	"github.com/l1jgo/charsync/internal/persist"
	"github.com/l1jgo/charsync/internal/world"
)

// ErrDeferred is returned when the character is mid-transfer. The save is
// queued on the player and runs once the transfer completes.
var ErrDeferred = errors.New("flush deferred: character in transfer")

// Result is the outcome of one store's batch.
type Result struct {
	Store      persist.StoreID
	Statements int
	Committed  bool
	Duration   time.Duration
	Err        error
}

// Report describes one flush cycle.
type Report struct {
	CycleID string
	Results [2]Result
}

// Statements returns the number of statements emitted across both stores.
func (r *Report) Statements() int {
	return r.Results[0].Statements + r.Results[1].Statements
}

// Flusher commits dirty state to both stores.
type Flusher struct {
	stores  persist.Stores
	timeout time.Duration
	metrics *metrics.Collector
	log     *zap.Logger
}

// New creates a flusher. timeout bounds each store's commit; zero means no bound.
func New(stores persist.Stores, timeout time.Duration, m *metrics.Collector, log *zap.Logger) *Flusher {
	return &Flusher{stores: stores, timeout: timeout, metrics: m, log: log}
}

// Flush writes every pending record of p. A flush with nothing pending
// touches neither store. The commits run to completion even if ctx is
// cancelled; a flush is never abandoned halfway.
func (f *Flusher) Flush(ctx context.Context, p *world.Player) (*Report, error) {
	if p.InTransfer() {
		p.Defer(world.OpSave)
		f.metrics.Deferred()
		f.log.Debug("flush deferred", zap.Int64("guid", int64(p.GUID())))
		return nil, ErrDeferred
	}

	report := &Report{CycleID: uuid.NewString()}
	report.Results[persist.CharacterStore].Store = persist.CharacterStore
	report.Results[persist.SessionStore].Store = persist.SessionStore

	ws := writers(p)
	var batch persist.Batch
	for _, w := range ws {
		w.emit(&batch, func(table, op string) {
			f.metrics.Statement(w.store().String(), table, op)
		})
	}
	if batch.Len() == 0 {
		return report, nil
	}

	log := f.log.With(zap.String("cycle", report.CycleID), zap.Int64("guid", int64(p.GUID())))
	ctx = context.WithoutCancel(ctx)

	var errs error
	for _, id := range []persist.StoreID{persist.CharacterStore, persist.SessionStore} {
		res := &report.Results[id]
		stmts := batch.For(id)
		res.Statements = len(stmts)
		if len(stmts) == 0 {
			continue
		}
		res.Duration, res.Err = f.commit(ctx, id, stmts)
		f.metrics.Commit(id.String(), res.Duration, res.Err)
		if res.Err != nil {
			log.Error("flush batch failed",
				zap.Stringer("store", id),
				zap.Int("statements", res.Statements),
				zap.Error(res.Err),
			)
			errs = multierr.Append(errs, fmt.Errorf("%s store: %w", id, res.Err))
			continue
		}
		res.Committed = true
		for _, w := range ws {
			if w.store() == id {
				w.ack()
			}
		}
	}

	log.Debug("flush complete",
		zap.Int("character_statements", report.Results[persist.CharacterStore].Statements),
		zap.Int("session_statements", report.Results[persist.SessionStore].Statements),
		zap.Bool("partial", errs != nil && (report.Results[0].Committed || report.Results[1].Committed)),
	)
	return report, errs
}

func (f *Flusher) commit(ctx context.Context, id persist.StoreID, stmts []persist.Statement) (time.Duration, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	start := time.Now()
	err := f.stores.Get(id).Commit(ctx, stmts)
	return time.Since(start), err
}

// Pending returns the number of records p would write on the next flush.
func Pending(p *world.Player) int {
	var batch persist.Batch
	for _, w := range writers(p) {
		w.emit(&batch, func(string, string) {})
	}
	return batch.Len()
}
