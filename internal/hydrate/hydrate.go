// Package hydrate builds a live character graph from the result sets of one
// load.
//
// Loading runs as a named pipeline of stages. The order matters and is fixed:
// home bind before position, skills before spells, inventory before mail,
// auras before death state, quest rewards before talents and before missing
// starting skills are filled in. Invalid records are handed to the repair
// layer; only authorization and root validation abort.
package hydrate

import (
	"errors"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/metrics"
	"github.com/l1jgo/charsync/internal/persist"
	"github.com/l1jgo/charsync/internal/recalc"
	"github.com/l1jgo/charsync/internal/repair"
	"github.com/l1jgo/charsync/internal/world"
)

// Result is a successfully hydrated character.
type Result struct {
	Player  *world.Player
	Reports []repair.Report
	Mail    []int64 // system messages created for returned items
	Derived recalc.Result
}

// Hydrator turns a persist.Bundle into a world.Player.
type Hydrator struct {
	catalog *data.Catalog
	repair  *repair.Layer
	recalc  *recalc.Recalculator
	clock   world.Clock
	metrics *metrics.Collector
	log     *zap.Logger
	stages  []stage
}

type stage struct {
	name string
	fn   func(*load) error
}

func New(catalog *data.Catalog, rl *repair.Layer, rc *recalc.Recalculator, clock world.Clock, m *metrics.Collector, log *zap.Logger) *Hydrator {
	h := &Hydrator{catalog: catalog, repair: rl, recalc: rc, clock: clock, metrics: m, log: log}
	h.stages = []stage{
		{"authorize", (*load).authorize},
		{"validate", (*load).validate},
		{"character", (*load).character},
		{"achievements", (*load).achievements},
		{"homebind", (*load).homeBind},
		{"position", (*load).position},
		{"group", (*load).group},
		{"skills", (*load).skills},
		{"spells", (*load).spells},
		{"currencies", (*load).currencies},
		{"inventory", (*load).inventory},
		{"void_storage", (*load).voidStorage},
		{"mail", (*load).mail},
		{"equipment_sets", (*load).equipmentSets},
		{"auras", (*load).auras},
		{"quests", (*load).quests},
		{"quest_rewards", (*load).questRewards},
		{"skills_finalize", (*load).finalizeSkills},
		{"traits", (*load).traits},
		{"pets", (*load).pets},
		{"action_buttons", (*load).actionButtons},
		{"collections", (*load).collections},
		{"return_mail", (*load).returnMail},
		{"recalc", (*load).derive},
	}
	return h
}

// Stages returns the stage names in execution order.
func (h *Hydrator) Stages() []string {
	names := make([]string, len(h.stages))
	for i, s := range h.stages {
		names[i] = s.name
	}
	return names
}

// load is the state of one hydration run.
type load struct {
	h         *Hydrator
	accountID int64
	b         *persist.Bundle
	now       time.Time
	run       *repair.Run
	p         *world.Player
	guid      world.GUID
	offline   time.Duration
	mailItems []world.Item // attachments held back until mail headers are loaded
	damaged   map[world.GUID]string
	mailIDs   []int64
	derived   recalc.Result
}

// Hydrate builds the character in b for accountID. On a *LoadError nothing
// of the partially built graph is returned.
func (h *Hydrator) Hydrate(accountID int64, b *persist.Bundle) (*Result, error) {
	l := &load{h: h, accountID: accountID, b: b, now: h.clock.Now()}
	if b.Character != nil {
		l.guid = b.Character.GUID
	}
	for _, s := range h.stages {
		if err := s.fn(l); err != nil {
			h.metrics.Load(outcome(err))
			h.log.Info("character load refused",
				zap.Int64("account", accountID),
				zap.Int64("guid", int64(l.guid)),
				zap.String("stage", s.name),
				zap.Error(err),
			)
			return nil, err
		}
	}
	h.metrics.Load("ok")
	h.log.Info("character hydrated",
		zap.Int64("guid", int64(l.guid)),
		zap.Int("items", l.p.Inventory.Len()),
		zap.Int("repairs", len(l.run.Reports())),
		zap.Int("return_mail", len(l.mailIDs)),
	)
	return &Result{Player: l.p, Reports: l.run.Reports(), Mail: l.mailIDs, Derived: l.derived}, nil
}

func outcome(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		if le.Kind == FatalAuthorization {
			return "denied"
		}
		return "invalid"
	}
	return "error"
}

// owned yields the rows that belong to owner. A row of another owner is a
// loader defect; it is reported and kept out of the graph, never deleted.
func owned[T any](l *load, collection string, rows []persist.Owned[T], owner int64) iter.Seq[T] {
	return func(yield func(T) bool) {
		for r := range ownedRows(l, collection, rows, owner) {
			if !yield(r.Value) {
				return
			}
		}
	}
}

// ownedRows is owned for stages that also read the row's decode damage.
func ownedRows[T any](l *load, collection string, rows []persist.Owned[T], owner int64) iter.Seq[persist.Owned[T]] {
	return func(yield func(persist.Owned[T]) bool) {
		for _, r := range rows {
			if r.Owner != owner {
				l.run.Apply(repair.Corrupt, repair.Skipped, collection, r.Owner, "row owned by another entity")
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}
