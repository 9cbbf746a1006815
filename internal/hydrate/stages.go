package hydrate

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/l1jgo/charsync/internal/data"
	"github.com/l1jgo/charsync/internal/repair"
	"github.com/l1jgo/charsync/internal/world"
)

func (l *load) owner() int64 { return int64(l.guid) }

func (l *load) character() error {
	c := *l.b.Character
	l.p = world.NewPlayer(c)
	l.run = l.h.repair.Begin(l.guid)
	if c.LogoutTime > 0 && l.now.Unix() > c.LogoutTime {
		l.offline = time.Duration(l.now.Unix()-c.LogoutTime) * time.Second
	}
	return nil
}

func (l *load) achievements() error {
	progress := l.h.catalog.Progress
	for row := range owned(l, "achievements", l.b.Achievements, l.owner()) {
		l.p.Achievements.Load(row.ID, row.Date)
		if !progress.Achievement(row.ID) {
			l.p.Achievements.Remove(row.ID)
			l.run.Delete(repair.Corrupt, "achievements", row.ID, "unknown achievement")
		}
	}
	return nil
}

// homeBind loads the hearth location, regenerating it from the race/class
// start position when missing or unusable.
func (l *load) homeBind() error {
	found := false
	for hb := range owned(l, "homebind", l.b.HomeBind, l.owner()) {
		l.p.LoadHomeBind(hb)
		found = true
	}
	if hb, ok := l.p.HomeBind(); found && ok && l.h.catalog.Maps.IsValid(world.Position{MapID: hb.MapID, ZoneID: hb.ZoneID, X: hb.X, Y: hb.Y}) {
		return nil
	}
	start := l.h.catalog.Characters.CreateInfo(l.p.Race(), l.p.Class()).Start
	l.p.SetHomeBind(world.HomeBind{MapID: start.MapID, ZoneID: start.ZoneID, X: start.X, Y: start.Y, Z: start.Z})
	reason := "missing home bind"
	if found {
		reason = "home bind on unknown map"
	}
	l.run.Apply(repair.Orphaned, repair.Regenerated, "homebind", l.guid, reason)
	return nil
}

func (l *load) position() error {
	pos := l.p.Position()
	if l.h.catalog.Maps.IsValid(pos) {
		return nil
	}
	hb, _ := l.p.HomeBind()
	l.p.SetPosition(world.Position{MapID: hb.MapID, ZoneID: hb.ZoneID, X: hb.X, Y: hb.Y, Z: hb.Z, O: pos.O})
	l.run.Apply(repair.Orphaned, repair.Relocated, "characters", l.guid,
		fmt.Sprintf("invalid position on map %d zone %d", pos.MapID, pos.ZoneID))
	return nil
}

// group takes the dungeon difficulty from the character's group, if any.
func (l *load) group() error {
	for g := range owned(l, "group_members", l.b.Group, l.owner()) {
		l.p.SetDifficulty(g.Difficulty)
		break
	}
	return nil
}

func (l *load) skills() error {
	cat := l.h.catalog
	race, class := l.p.Race(), l.p.Class()
	for sk := range owned(l, "skills", l.b.Skills, l.owner()) {
		l.p.Skills.Load(sk)
		info := cat.Skills.Get(sk.ID)
		if info == nil || !info.Available(race, class) {
			l.p.Skills.Remove(sk.ID)
			l.run.Delete(repair.Corrupt, "skills", sk.ID, "skill line unknown or unavailable to race/class")
			continue
		}
		value, maxValue := info.Bounds(sk.Value, l.p.Level())
		if value != sk.Value || maxValue != sk.Max {
			l.p.Skills.SetRange(sk.ID, value, maxValue)
			l.run.Clamp("skills", sk.ID, fmt.Sprintf("range %d/%d outside policy %d/%d", sk.Value, sk.Max, value, maxValue))
		}
	}

	for id := range l.p.Skills.All() {
		l.learnAutoSpells(cat.Skills.Get(id))
	}
	return nil
}

// learnAutoSpells derives the spells a skill line grants. A stored row for
// one of them is dropped.
func (l *load) learnAutoSpells(info *data.SkillLineInfo) {
	for _, sp := range info.AutoSpells {
		if l.p.Spells.Knows(sp) && !l.p.Spells.IsDependent(sp) {
			l.run.Drop("spells", sp, "derived spell stored")
		}
		l.p.Spells.LearnDependent(sp)
	}
}

func (l *load) spells() error {
	cat := l.h.catalog
	for sp := range owned(l, "spells", l.b.Spells, l.owner()) {
		l.p.Spells.Load(sp)
		switch {
		case cat.Spells.Get(sp.ID) == nil:
			l.p.Spells.Unlearn(sp.ID)
			l.run.Delete(repair.Corrupt, "spells", sp.ID, "unknown spell")
		case l.p.Spells.IsDependent(sp.ID):
			l.p.Spells.LearnDependent(sp.ID)
			l.run.Drop("spells", sp.ID, "derived spell stored")
		}
	}
	return nil
}

func (l *load) currencies() error {
	progress := l.h.catalog.Progress
	for cur := range owned(l, "currencies", l.b.Currencies, l.owner()) {
		l.p.Currencies.Load(cur)
		info := progress.Currency(cur.ID)
		if info == nil {
			l.p.Currencies.Remove(cur.ID)
			l.run.Delete(repair.Corrupt, "currencies", cur.ID, "unknown currency")
			continue
		}
		if l.p.Currencies.Clamp(cur.ID, info.Caps()) {
			l.run.Clamp("currencies", cur.ID, fmt.Sprintf("quantity %d weekly %d over caps", cur.Quantity, cur.Weekly))
		}
	}
	return nil
}

// inventory places stored items, root container first so that bag contents
// find their bag. Items attached to mail wait for the mail stage.
func (l *load) inventory() error {
	env := repair.ItemEnv{
		Offline:  l.offline,
		Position: l.p.Position(),
		Alive:    l.p.Health() > 0 && l.p.Flags()&world.FlagGhost == 0,
	}
	var roots, nested []world.Item
	for row := range ownedRows(l, "items", l.b.Items, l.owner()) {
		it := row.Value
		if row.Damage != "" {
			if l.damaged == nil {
				l.damaged = make(map[world.GUID]string)
			}
			l.damaged[it.GUID] = row.Damage
		}
		if kind, reason := l.h.repair.CheckItem(it, l.h.catalog.Items.Get(it.Template), env); kind != 0 {
			l.p.Inventory.LoadDetached(it)
			l.p.Inventory.Remove(it.GUID)
			l.run.Delete(kind, "items", it.GUID, reason)
			continue
		}
		switch {
		case !it.Placed():
			l.mailItems = append(l.mailItems, it)
		case it.Bag == 0:
			roots = append(roots, it)
		default:
			nested = append(nested, it)
		}
	}
	for _, it := range roots {
		l.place(it)
	}
	for _, it := range nested {
		l.place(it)
	}
	return nil
}

func (l *load) place(it world.Item) {
	inv := l.p.Inventory
	if err := inv.Restore(it, l.h.catalog); err != nil {
		// Held unplaced at the root until the return mail attaches it, so a
		// failed bag never looks like it still has contents.
		it.Bag, it.Slot = 0, 0
		inv.LoadDetached(it)
		l.run.MailBack(it.GUID, fmt.Sprintf("placement failed: %v", err))
		return
	}
	if it.Flags&world.ItemTradeable != 0 && len(it.Looters) == 0 && l.damaged[it.GUID] == "" {
		l.run.ClearTradeable(l.p, it.GUID)
	}
}

func (l *load) voidStorage() error {
	items := l.h.catalog.Items
	for it := range owned(l, "void_storage", l.b.VoidStorage, l.owner()) {
		l.p.VoidStorage.Load(it)
		switch {
		case it.Slot >= world.MaxVoidStorageSlots:
			l.p.VoidStorage.Withdraw(it.Slot)
			l.run.Apply(repair.Capacity, repair.Deleted, "void_storage", it.Slot, "slot out of range")
		case items.Get(it.Template) == nil:
			l.p.VoidStorage.Withdraw(it.Slot)
			l.run.Delete(repair.Corrupt, "void_storage", it.Slot, fmt.Sprintf("unknown item template %d", it.Template))
		}
	}
	return nil
}

// mail loads message headers, then their attachments. An attachment whose
// message is gone is returned in a new one.
func (l *load) mail() error {
	for m := range owned(l, "mail", l.b.Mail, l.owner()) {
		l.p.Mailbox.Load(m)
	}
	for _, it := range l.mailItems {
		l.p.Inventory.LoadDetached(it)
		if !l.p.Mailbox.Has(it.MailID) {
			l.run.MailBack(it.GUID, fmt.Sprintf("mail %d missing", it.MailID))
		}
	}
	l.mailItems = nil
	l.rewriteDamaged()
	return nil
}

// rewriteDamaged clears the looter list of items whose stored list was
// unreadable. Without looters the item cannot stay tradeable.
func (l *load) rewriteDamaged() {
	for _, guid := range slices.Sorted(maps.Keys(l.damaged)) {
		if l.p.Inventory.ClearTradeable(guid) {
			l.run.Apply(repair.Corrupt, repair.Cleared, "items", guid, l.damaged[guid])
		}
	}
	l.damaged = nil
}

func (l *load) equipmentSets() error {
	type setIndex struct {
		kind world.EquipmentSetKind
		id   uint8
	}
	seen := make(map[setIndex]bool)
	for row := range ownedRows(l, "equipment_sets", l.b.EquipmentSets, l.owner()) {
		s := row.Value
		l.p.EquipmentSets.Load(s)
		if row.Damage != "" {
			l.p.EquipmentSets.Reset(s.GUID)
			l.run.Apply(repair.Corrupt, repair.Cleared, "equipment_sets", s.GUID, row.Damage)
		}
		idx := setIndex{s.Kind, s.SetID}
		switch {
		case s.SetID >= world.MaxEquipmentSetIndex:
			l.p.EquipmentSets.Delete(s.GUID)
			l.run.Apply(repair.Capacity, repair.Deleted, "equipment_sets", s.GUID, fmt.Sprintf("set index %d out of range", s.SetID))
		case seen[idx]:
			l.p.EquipmentSets.Delete(s.GUID)
			l.run.Apply(repair.Capacity, repair.Deleted, "equipment_sets", s.GUID, fmt.Sprintf("duplicate set index %d", s.SetID))
		default:
			seen[idx] = true
			if s.Kind == world.GearSet {
				l.clearMissingPieces(s)
			}
		}
	}
	return nil
}

func (l *load) clearMissingPieces(s world.EquipmentSet) {
	for _, guid := range s.Pieces {
		if guid == 0 || l.inBags(guid) {
			continue
		}
		l.p.EquipmentSets.ClearPiece(guid)
		l.run.Apply(repair.Orphaned, repair.Cleared, "equipment_sets", s.GUID, fmt.Sprintf("piece %d not in inventory", guid))
	}
}

// inBags reports whether an item currently occupies an inventory slot.
func (l *load) inBags(guid world.GUID) bool {
	it, ok := l.p.Inventory.Get(guid)
	if !ok || !it.Placed() {
		return false
	}
	at, ok := l.p.Inventory.At(it.Bag, it.Slot)
	return ok && at.GUID == guid
}

// auras collects every effect row before materializing the headers. A header
// without effects and an effect without a header are both dropped.
func (l *load) auras() error {
	auras := l.p.Auras
	effects := make(map[world.AuraKey]map[uint8]world.AuraEffect)
	for row := range owned(l, "aura_effects", l.b.AuraEffects, l.owner()) {
		if row.Key.Index >= world.MaxAuraEffects {
			auras.LoadEffect(row.Key, row.Effect)
			auras.RemoveEffect(row.Key)
			l.run.Drop("aura_effects", row.Key.Aura.SpellID, fmt.Sprintf("effect index %d out of range", row.Key.Index))
			continue
		}
		m := effects[row.Key.Aura]
		if m == nil {
			m = make(map[uint8]world.AuraEffect)
			effects[row.Key.Aura] = m
		}
		m[row.Key.Index] = row.Effect
	}

	for a := range owned(l, "auras", l.b.Auras, l.owner()) {
		effs, ok := effects[a.Key]
		delete(effects, a.Key)
		auras.Load(a, effs)
		switch {
		case l.h.catalog.Spells.Get(a.Key.SpellID) == nil:
			auras.Remove(a.Key)
			l.run.Delete(repair.Corrupt, "auras", a.Key.SpellID, "unknown spell")
		case !ok:
			auras.Remove(a.Key)
			l.run.Drop("auras", a.Key.SpellID, "aura without effects")
		}
	}

	for key, effs := range effects {
		for idx, eff := range effs {
			ek := world.AuraEffectKey{Aura: key, Index: idx}
			auras.LoadEffect(ek, eff)
			auras.RemoveEffect(ek)
		}
		l.run.Drop("aura_effects", key.SpellID, "effects without aura")
	}
	return nil
}

func (l *load) quests() error {
	progress := l.h.catalog.Progress
	q := l.p.Quests
	for st := range owned(l, "queststatus", l.b.QuestStatus, l.owner()) {
		q.LoadStatus(st)
		if progress.Quest(st.QuestID) == nil {
			q.Abandon(st.QuestID)
			l.run.Delete(repair.Corrupt, "queststatus", st.QuestID, "unknown quest")
		}
	}
	for row := range owned(l, "queststatus_objectives", l.b.QuestObjectives, l.owner()) {
		q.LoadObjective(row.Key, row.Value)
		if _, inLog := q.Status(row.Key.QuestID); !inLog {
			q.RemoveObjective(row.Key)
			l.run.Drop("queststatus_objectives", row.Key.QuestID, "quest not in log")
			continue
		}
		if row.Key.Index >= progress.Quest(row.Key.QuestID).Objectives {
			q.RemoveObjective(row.Key)
			l.run.Apply(repair.Capacity, repair.Deleted, "queststatus_objectives", row.Key.QuestID,
				fmt.Sprintf("objective index %d out of range", row.Key.Index))
		}
	}
	for _, id := range q.Compact() {
		l.run.Apply(repair.Capacity, repair.Deleted, "queststatus", id, "quest log full")
	}
	return nil
}

func (l *load) questRewards() error {
	progress := l.h.catalog.Progress
	for id := range owned(l, "queststatus_rewarded", l.b.QuestRewarded, l.owner()) {
		l.p.Quests.LoadRewarded(id)
		if progress.Quest(id) == nil {
			l.p.Quests.RemoveRewarded(id)
			l.run.Delete(repair.Corrupt, "queststatus_rewarded", id, "unknown quest")
		}
	}
	return nil
}

// finalizeSkills fills in missing starting skills and spells once quest
// rewards are loaded.
func (l *load) finalizeSkills() error {
	cat := l.h.catalog
	create := cat.Characters.CreateInfo(l.p.Race(), l.p.Class())
	for _, id := range create.Skills {
		if l.p.Skills.Has(id) {
			continue
		}
		info := cat.Skills.Get(id)
		if info == nil {
			continue
		}
		value, maxValue := info.Bounds(1, l.p.Level())
		l.p.Skills.Learn(world.Skill{ID: id, Value: value, Max: maxValue})
		l.run.Apply(repair.Policy, repair.Regenerated, "skills", id, "starting skill missing")
		l.learnAutoSpells(info)
	}
	for _, id := range create.Spells {
		if !l.p.Spells.Knows(id) {
			l.p.Spells.Learn(id)
			l.run.Apply(repair.Policy, repair.Regenerated, "spells", id, "starting spell missing")
		}
	}
	return nil
}

// traits loads talent configs and repairs the ones that no longer fit the
// character's class or tree.
func (l *load) traits() error {
	cat := l.h.catalog
	t := l.p.Traits
	for cfg := range owned(l, "trait_configs", l.b.TraitConfigs, l.owner()) {
		t.LoadConfig(cfg)
	}
	for row := range owned(l, "trait_entries", l.b.TraitEntries, l.owner()) {
		t.LoadEntry(row.Key, row.Entry)
		if !t.HasConfig(row.Key.ConfigID) {
			t.RemoveEntry(row.Key)
			l.run.Drop("trait_entries", row.Key.ConfigID, "config missing")
		}
	}

	class := l.p.Class()
	defaultSpec := cat.Characters.Class(class).DefaultSpec
	if !cat.ValidSpec(class, l.p.ActiveSpec()) {
		l.run.Apply(repair.Orphaned, repair.Regenerated, "characters", l.guid,
			fmt.Sprintf("active spec %d not available to class %d", l.p.ActiveSpec(), class))
		l.p.SetActiveSpec(defaultSpec)
	}

	active := make(map[uint32]bool)
	for id, cfg := range t.Configs() {
		switch cfg.Type {
		case world.TraitCombat:
			if reason := l.checkTraitConfig(cfg); reason != "" {
				spec := cat.Traits.Spec(cfg.SpecID)
				if !cat.ValidSpec(class, cfg.SpecID) {
					spec = cat.Traits.Spec(defaultSpec)
				}
				l.run.RegenerateTraits(l.p, cfg, spec, reason)
				cfg, _ = t.Config(id)
			}
			if cfg.Active() {
				if active[cfg.SpecID] {
					t.Deactivate(id)
					l.run.Clamp("trait_configs", id, fmt.Sprintf("second active config for spec %d", cfg.SpecID))
				}
				active[cfg.SpecID] = true
			}
		case world.TraitProfession:
			if cat.Skills.Get(cfg.SkillLineID) == nil {
				t.DeleteConfig(id)
				l.run.Delete(repair.Corrupt, "trait_configs", id, fmt.Sprintf("unknown skill line %d", cfg.SkillLineID))
			}
		}
	}
	return nil
}

func (l *load) checkTraitConfig(cfg world.TraitConfig) string {
	if !l.h.catalog.ValidSpec(l.p.Class(), cfg.SpecID) {
		return fmt.Sprintf("spec %d not available to class %d", cfg.SpecID, l.p.Class())
	}
	spec := l.h.catalog.Traits.Spec(cfg.SpecID)
	for k, e := range l.p.Traits.Entries(cfg.ID) {
		entry := spec.Entry(k.NodeID, k.EntryID)
		if entry == nil {
			return fmt.Sprintf("node %d entry %d not in tree", k.NodeID, k.EntryID)
		}
		if e.Rank > entry.MaxRank {
			return fmt.Sprintf("node %d rank %d above max %d", k.NodeID, e.Rank, entry.MaxRank)
		}
	}
	return ""
}

// pets loads pets; one whose slot is out of range or already taken is
// unslotted rather than dropped.
func (l *load) pets() error {
	used := make(map[int16]bool)
	for pet := range owned(l, "pets", l.b.Pets, l.owner()) {
		l.p.Pets.Load(pet)
		if pet.Slot < world.PetNoSlot || pet.Slot >= world.MaxPetSlot || (pet.Slot >= 0 && used[pet.Slot]) {
			l.p.Pets.SetSlot(pet.Number, world.PetNoSlot)
			l.run.Apply(repair.Capacity, repair.Relocated, "pets", pet.Number, fmt.Sprintf("slot %d unavailable", pet.Slot))
			continue
		}
		used[pet.Slot] = true
	}
	return nil
}

func (l *load) actionButtons() error {
	for row := range owned(l, "action_buttons", l.b.ActionButtons, l.owner()) {
		l.p.ActionButtons.Load(row.Index, row.Button)
		if kind, reason := l.checkButton(row.Index, row.Button); kind != 0 {
			l.p.ActionButtons.Clear(row.Index)
			l.run.Delete(kind, "action_buttons", row.Index, reason)
		}
	}
	return nil
}

func (l *load) checkButton(index uint8, b world.ActionButton) (repair.Kind, string) {
	cat := l.h.catalog
	switch {
	case index >= world.MaxActionButtons:
		return repair.Capacity, "button index out of range"
	case b.Type == world.ActionSpell && cat.Spells.Get(b.Action) == nil:
		return repair.Corrupt, fmt.Sprintf("unknown spell %d", b.Action)
	case b.Type == world.ActionSpell && !l.p.Spells.Knows(b.Action):
		return repair.Orphaned, fmt.Sprintf("spell %d not known", b.Action)
	case b.Type == world.ActionItem && cat.Items.Get(b.Action) == nil:
		return repair.Corrupt, fmt.Sprintf("unknown item %d", b.Action)
	}
	return 0, ""
}

// collections loads the account-wide toy, mount and heirloom rows. They are
// keyed by the character's account, not by the character.
func (l *load) collections() error {
	cat := l.h.catalog
	c := l.p.Collections
	account := l.p.AccountID()
	for row := range owned(l, "account_toys", l.b.Toys, account) {
		c.LoadToy(row.ID, row.Toy)
		if cat.Items.Get(row.ID) == nil {
			c.RemoveToy(row.ID)
			l.run.Delete(repair.Corrupt, "account_toys", row.ID, "unknown item")
		}
	}
	for row := range owned(l, "account_mounts", l.b.Mounts, account) {
		c.LoadMount(row.ID, row.Mount)
		if info := cat.Spells.Get(row.ID); info == nil || !info.Mount {
			c.RemoveMount(row.ID)
			l.run.Delete(repair.Corrupt, "account_mounts", row.ID, "unknown mount spell")
		}
	}
	for row := range owned(l, "account_heirlooms", l.b.Heirlooms, account) {
		c.LoadHeirloom(row.ID, row.Heirloom)
		if info := cat.Items.Get(row.ID); info == nil || info.Flags&data.ItemFlagHeirloom == 0 {
			c.RemoveHeirloom(row.ID)
			l.run.Delete(repair.Corrupt, "account_heirlooms", row.ID, "unknown heirloom")
		}
	}
	return nil
}

func (l *load) returnMail() error {
	l.mailIDs = l.run.DeliverMail(l.p, l.now)
	return nil
}

func (l *load) derive() error {
	l.derived = l.h.recalc.Apply(l.p, l.now)
	return nil
}
