package flush

import (
	"github.com/l1jgo/charsync/internal/core/dirty"
	"github.com/l1jgo/charsync/internal/persist"
	"github.com/l1jgo/charsync/internal/world"
)

// writer turns the pending records of one collection into statements and
// acknowledges them once their store committed.
type writer interface {
	store() persist.StoreID
	emit(b *persist.Batch, note func(table, op string))
	ack()
}

// tracked writes one dirty.Set-backed collection through its table.
type tracked[K comparable, V any] struct {
	table   persist.Table
	src     world.Tracked[K, V]
	args    func(K, V) []any
	pending []dirty.Record[K, V]
}

func track[K comparable, V any](table persist.Table, src world.Tracked[K, V], args func(K, V) []any) writer {
	return &tracked[K, V]{table: table, src: src, args: args}
}

func (w *tracked[K, V]) store() persist.StoreID { return w.table.Store() }

func (w *tracked[K, V]) emit(b *persist.Batch, note func(table, op string)) {
	w.pending = w.src.Pending()
	for _, r := range w.pending {
		args := w.args(r.Key, r.Value)
		keys := args[:w.table.Keys]
		switch r.State {
		case dirty.New:
			b.Add(persist.Prepare(w.table.Insert, args...))
			note(w.table.Name, "insert")
		case dirty.Changed:
			b.Add(persist.Prepare(w.table.Update, args...))
			note(w.table.Name, "update")
		case dirty.Removed:
			b.Add(persist.Prepare(w.table.Delete, keys...))
			note(w.table.Name, "delete")
		case dirty.Deleted:
			if w.table.Cascade != 0 {
				b.Add(persist.Prepare(w.table.Cascade, keys...))
				note(w.table.Name, "cascade")
			}
			b.Add(persist.Prepare(w.table.Delete, keys...))
			note(w.table.Name, "delete")
		}
	}
}

func (w *tracked[K, V]) ack() {
	w.src.Ack(w.pending)
	w.pending = nil
}

// root writes the character record itself.
type root struct {
	p     *world.Player
	state dirty.State
}

func (w *root) store() persist.StoreID { return persist.CharacterTable.Store() }

func (w *root) emit(b *persist.Batch, note func(table, op string)) {
	data, st := w.p.CharacterState()
	w.state = st
	t := persist.CharacterTable
	switch st {
	case dirty.New:
		b.Add(persist.Prepare(t.Insert, persist.CharacterArgs(data)...))
		note(t.Name, "insert")
	case dirty.Changed:
		b.Add(persist.Prepare(t.Update, persist.CharacterArgs(data)...))
		note(t.Name, "update")
	}
}

func (w *root) ack() { w.p.AckCharacter(w.state) }

// writers lists every collection of p in statement order. Items come before
// mail so that an attachment moved into the bags is rewritten before a mail
// cascade could reach it; trait configs come before their entries.
func writers(p *world.Player) []writer {
	guid := p.GUID()
	account := p.AccountID()
	return []writer{
		&root{p: p},
		track(persist.HomeBindTable, p.HomeBindRecords(), func(_ world.GUID, hb world.HomeBind) []any {
			return persist.HomeBindArgs(guid, hb)
		}),
		track(persist.AchievementTable, p.Achievements.Records(), func(id uint32, date int64) []any {
			return persist.AchievementArgs(guid, id, date)
		}),
		track(persist.SkillTable, p.Skills.Records(), func(_ uint32, sk world.Skill) []any {
			return persist.SkillArgs(guid, sk)
		}),
		track(persist.SpellTable, p.Spells.Records(), func(_ uint32, sp world.Spell) []any {
			return persist.SpellArgs(guid, sp)
		}),
		track(persist.CurrencyTable, p.Currencies.Records(), func(_ uint32, c world.Currency) []any {
			return persist.CurrencyArgs(guid, c)
		}),
		track(persist.ItemTable, p.Inventory.Records(), func(_ world.GUID, it world.Item) []any {
			return persist.ItemArgs(guid, it)
		}),
		track(persist.VoidStorageTable, p.VoidStorage.Records(), func(_ uint8, it world.VoidItem) []any {
			return persist.VoidItemArgs(guid, it)
		}),
		track(persist.MailTable, p.Mailbox.Records(), func(_ int64, m world.Mail) []any {
			return persist.MailArgs(guid, m)
		}),
		track(persist.EquipmentSetTable, p.EquipmentSets.Records(), func(_ int64, s world.EquipmentSet) []any {
			return persist.EquipmentSetArgs(guid, s)
		}),
		track(persist.AuraTable, p.Auras.Records(), func(_ world.AuraKey, a world.Aura) []any {
			return persist.AuraArgs(guid, a)
		}),
		track(persist.AuraEffectTable, p.Auras.EffectRecords(), func(k world.AuraEffectKey, e world.AuraEffect) []any {
			return persist.AuraEffectArgs(guid, k, e)
		}),
		track(persist.QuestStatusTable, p.Quests.StatusRecords(), func(_ uint32, q world.QuestStatus) []any {
			return persist.QuestStatusArgs(guid, q)
		}),
		track(persist.QuestObjectiveTable, p.Quests.ObjectiveRecords(), func(k world.ObjectiveKey, v int32) []any {
			return persist.QuestObjectiveArgs(guid, k, v)
		}),
		track(persist.QuestRewardedTable, p.Quests.RewardedRecords(), func(id uint32, _ struct{}) []any {
			return persist.QuestRewardedArgs(guid, id)
		}),
		track(persist.TraitConfigTable, p.Traits.ConfigRecords(), func(_ int32, c world.TraitConfig) []any {
			return persist.TraitConfigArgs(guid, c)
		}),
		track(persist.TraitEntryTable, p.Traits.EntryRecords(), func(k world.TraitEntryKey, e world.TraitEntry) []any {
			return persist.TraitEntryArgs(guid, k, e)
		}),
		track(persist.PetTable, p.Pets.Records(), func(_ uint32, pet world.Pet) []any {
			return persist.PetArgs(guid, pet)
		}),
		track(persist.ActionButtonTable, p.ActionButtons.Records(), func(i uint8, b world.ActionButton) []any {
			return persist.ActionButtonArgs(guid, i, b)
		}),
		track(persist.ToyTable, p.Collections.ToyRecords(), func(id uint32, t world.Toy) []any {
			return persist.ToyArgs(account, id, t)
		}),
		track(persist.MountTable, p.Collections.MountRecords(), func(id uint32, m world.Mount) []any {
			return persist.MountArgs(account, id, m)
		}),
		track(persist.HeirloomTable, p.Collections.HeirloomRecords(), func(id uint32, h world.Heirloom) []any {
			return persist.HeirloomArgs(account, id, h)
		}),
	}
}
