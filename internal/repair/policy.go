package repair

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/world"
)

// ItemEnv is the state an item is validated against.
type ItemEnv struct {
	Offline  time.Duration // time since the last logout
	Position world.Position
	Alive    bool
}

// CheckItem returns the deletion policy for a stored item, or 0 when the
// item may be kept. Placement problems are handled separately by MailBack.
func (l *Layer) CheckItem(it world.Item, info *data.ItemInfo, env ItemEnv) (Kind, string) {
	switch {
	case info == nil:
		return Corrupt, fmt.Sprintf("unknown item template %d", it.Template)
	case info.LimitMapID != 0 && env.Alive && !limitMatches(info, env.Position):
		return Expired, fmt.Sprintf("limited to map %d zone %d", info.LimitMapID, info.LimitZoneID)
	case info.Conjured() && env.Offline > l.opts.ConjuredExpiry:
		return Expired, fmt.Sprintf("conjured item offline for %s", env.Offline.Round(time.Second))
	}
	return 0, ""
}

func limitMatches(info *data.ItemInfo, pos world.Position) bool {
	if pos.MapID != info.LimitMapID {
		return false
	}
	return info.LimitZoneID == 0 || pos.ZoneID == info.LimitZoneID
}

// ClearTradeable drops the loot-trade window of a soulbound item whose looter
// list is missing. The prior looters cannot be recovered, so the item simply
// stops being tradeable.
func (r *Run) ClearTradeable(p *world.Player, guid world.GUID) {
	if p.Inventory.ClearTradeable(guid) {
		r.Apply(Policy, Cleared, "items", guid, "tradeable without looters")
	}
}

// RegenerateTraits resets a config that no longer fits the character: its
// entries are cleared, it is moved to spec when needed, and the spec's
// granted entries are recreated.
func (r *Run) RegenerateTraits(p *world.Player, cfg world.TraitConfig, spec *data.SpecInfo, reason string) {
	p.Traits.ClearEntries(cfg.ID)
	if spec == nil {
		r.Apply(Orphaned, Cleared, "trait_configs", cfg.ID, reason)
		return
	}
	p.Traits.Reassign(cfg.ID, spec.SpecID)
	for _, g := range spec.Granted {
		p.Traits.SetEntry(world.TraitEntryKey{ConfigID: cfg.ID, NodeID: g.NodeID, EntryID: g.EntryID},
			world.TraitEntry{Rank: g.Rank, GrantedRanks: g.Rank})
	}
	r.Apply(Orphaned, Regenerated, "trait_configs", cfg.ID, reason)
}

// DeliverMail packs every queued item into system messages of at most
// MaxMailAttachments items each and attaches them. It returns the new
// message ids; nothing is created when the queue is empty.
func (r *Run) DeliverMail(p *world.Player, now time.Time) []int64 {
	opts := r.layer.opts
	var ids []int64
	for start := 0; start < len(r.mailBack); start += opts.MaxMailAttachments {
		end := min(start+opts.MaxMailAttachments, len(r.mailBack))
		chunk := r.mailBack[start:end]

		mailID := r.layer.ids.Next(world.IDMail)
		p.Mailbox.Deliver(world.Mail{
			ID:         mailID,
			Kind:       world.MailSystem,
			Sender:     opts.MailSender,
			Subject:    opts.MailSubject,
			Body:       fmt.Sprintf("%d item(s) could not be restored to your bags.", len(chunk)),
			ExpireTime: now.Add(opts.MailExpiry).Unix(),
			DeliverAt:  now.Unix(),
		})
		attached := make([]world.GUID, 0, len(chunk))
		for _, guid := range chunk {
			if p.Inventory.AttachToMail(guid, mailID) {
				attached = append(attached, guid)
			}
		}
		ids = append(ids, mailID)

		if r.layer.mail != nil {
			r.layer.mail.Enqueue(MailNotice{
				Receiver: r.guid,
				MailID:   mailID,
				Subject:  opts.MailSubject,
				Items:    attached,
			})
		}
	}
	if len(ids) > 0 {
		r.log.Info("returned items by mail", zap.Int("items", len(r.mailBack)), zap.Int("messages", len(ids)))
	}
	r.mailBack = nil
	return ids
}
