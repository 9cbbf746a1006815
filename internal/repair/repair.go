// Package repair heals invalid records found while a character is hydrated.
//
// Every defect maps to one deterministic policy: delete the row, return the
// item by mail, clamp the value, or regenerate defaults. Only the policy and
// its report live here; the hydrator decides when a record is invalid.
package repair

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/charsync/internal/config"
	"github.com/l1jgo/charsync/internal/metrics"
	"github.com/l1jgo/charsync/internal/world"
)

// Kind classifies a defect.
type Kind uint8

const (
	// Corrupt rows reference an unknown catalog id. Deleted, logged at error.
	Corrupt Kind = iota + 1
	// Orphaned rows reference a missing parent. Rerouted, logged at warn.
	Orphaned
	// Capacity rows exceed a cap or index bound. Clamped or dropped, logged at warn.
	Capacity
	// Expired rows are no longer valid for time or location. Deleted, logged at warn.
	Expired
	// Dropped rows are silently discarded partial records.
	Dropped
	// Policy covers documented data fixes that are not defects of one row.
	Policy
)

func (k Kind) String() string {
	switch k {
	case Corrupt:
		return "corrupt"
	case Orphaned:
		return "orphaned"
	case Capacity:
		return "capacity"
	case Expired:
		return "expired"
	case Dropped:
		return "dropped"
	case Policy:
		return "policy"
	default:
		return "unknown"
	}
}

func (k Kind) level() zapcore.Level {
	switch k {
	case Corrupt:
		return zapcore.ErrorLevel
	case Dropped:
		return zapcore.DebugLevel
	case Policy:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// Action is what the policy did with the record.
type Action uint8

const (
	Deleted Action = iota + 1
	Mailed
	Clamped
	Relocated
	Regenerated
	Cleared
	// Skipped rows are left in storage untouched and kept out of the graph.
	Skipped
)

func (a Action) String() string {
	switch a {
	case Deleted:
		return "deleted"
	case Mailed:
		return "mailed"
	case Clamped:
		return "clamped"
	case Relocated:
		return "relocated"
	case Regenerated:
		return "regenerated"
	case Cleared:
		return "cleared"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Report records one applied repair.
type Report struct {
	Kind       Kind
	Action     Action
	Collection string
	Key        string
	Reason     string
}

// Options are the tunable repair thresholds.
type Options struct {
	ConjuredExpiry     time.Duration
	MaxMailAttachments int
	MailExpiry         time.Duration
	MailSender         int64
	MailSubject        string
}

func OptionsFromConfig(cfg config.RepairConfig) Options {
	return Options{
		ConjuredExpiry:     cfg.ConjuredExpiry,
		MaxMailAttachments: cfg.MaxMailAttachments,
		MailExpiry:         cfg.MailExpiry,
		MailSender:         cfg.MailSenderID,
		MailSubject:        cfg.MailSubject,
	}
}

// IDGenerator hands out new unique ids.
type IDGenerator interface {
	Next(kind world.IDKind) int64
}

// MailNotice announces a system message created by the repair layer.
type MailNotice struct {
	Receiver world.GUID
	MailID   int64
	Subject  string
	Items    []world.GUID
}

// MailDelivery receives notices of generated mail. Fire and forget.
type MailDelivery interface {
	Enqueue(n MailNotice)
}

// Layer holds the shared repair configuration and collaborators.
type Layer struct {
	opts    Options
	ids     IDGenerator
	mail    MailDelivery
	metrics *metrics.Collector
	log     *zap.Logger
}

// New creates the repair layer. mail and m may be nil.
func New(opts Options, ids IDGenerator, mail MailDelivery, m *metrics.Collector, log *zap.Logger) *Layer {
	if opts.MaxMailAttachments <= 0 {
		opts.MaxMailAttachments = 12
	}
	return &Layer{opts: opts, ids: ids, mail: mail, metrics: m, log: log}
}

// Options returns the layer's thresholds.
func (l *Layer) Options() Options { return l.opts }

// Begin starts the repair run for one character load.
func (l *Layer) Begin(guid world.GUID) *Run {
	return &Run{layer: l, guid: guid, log: l.log.With(zap.Int64("guid", int64(guid)))}
}

// Run accumulates the repairs of one load. Owned by the loading goroutine.
type Run struct {
	layer    *Layer
	guid     world.GUID
	log      *zap.Logger
	reports  []Report
	mailBack []world.GUID
}

// Apply records a repair, logging it at its kind's level.
func (r *Run) Apply(kind Kind, action Action, collection string, key any, reason string) {
	rep := Report{
		Kind:       kind,
		Action:     action,
		Collection: collection,
		Key:        fmt.Sprint(key),
		Reason:     reason,
	}
	r.reports = append(r.reports, rep)
	r.layer.metrics.Repair(kind.String())
	if ce := r.log.Check(kind.level(), "record repaired"); ce != nil {
		ce.Write(
			zap.Stringer("kind", kind),
			zap.Stringer("action", action),
			zap.String("collection", collection),
			zap.String("key", rep.Key),
			zap.String("reason", reason),
		)
	}
}

// Delete records a row dropped for good. The caller queues the delete.
func (r *Run) Delete(kind Kind, collection string, key any, reason string) {
	r.Apply(kind, Deleted, collection, key, reason)
}

// Drop records a partial row discarded without a report at warn level.
func (r *Run) Drop(collection string, key any, reason string) {
	r.Apply(Dropped, Deleted, collection, key, reason)
}

// Clamp records a value forced back into range.
func (r *Run) Clamp(collection string, key any, reason string) {
	r.Apply(Capacity, Clamped, collection, key, reason)
}

// MailBack queues a loaded, unplaced item for return by mail.
func (r *Run) MailBack(guid world.GUID, reason string) {
	r.mailBack = append(r.mailBack, guid)
	r.Apply(Orphaned, Mailed, "items", guid, reason)
}

// Reports returns the repairs applied so far.
func (r *Run) Reports() []Report { return r.reports }

// Count returns the number of repairs of kind.
func (r *Run) Count(kind Kind) int {
	n := 0
	for _, rep := range r.reports {
		if rep.Kind == kind {
			n++
		}
	}
	return n
}

// PendingMail returns the number of items waiting for a return message.
func (r *Run) PendingMail() int { return len(r.mailBack) }
