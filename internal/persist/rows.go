package persist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/l1jgo/charsync/internal/world"
)

// Owned pairs a stored row with the owner column it was read with. The
// hydrator checks the owner against the entity being loaded.
type Owned[T any] struct {
	Owner int64
	Value T
	// Damage describes encoded columns that could not be decoded. Those
	// fields are left zero and the hydrator rewrites the row.
	Damage string
}

type AchievementRow struct {
	ID   uint32
	Date int64
}

type ObjectiveRow struct {
	Key   world.ObjectiveKey
	Value int32
}

type AuraEffectRow struct {
	Key    world.AuraEffectKey
	Effect world.AuraEffect
}

type TraitEntryRow struct {
	Key   world.TraitEntryKey
	Entry world.TraitEntry
}

type ActionButtonRow struct {
	Index  uint8
	Button world.ActionButton
}

type ToyRow struct {
	ID  uint32
	Toy world.Toy
}

type MountRow struct {
	ID    uint32
	Mount world.Mount
}

type HeirloomRow struct {
	ID       uint32
	Heirloom world.Heirloom
}

// GroupRow is the character's group membership. Read-only here; groups are
// written by the group service.
type GroupRow struct {
	GroupID    int64
	Difficulty uint8
}

// Table describes how one sub-collection maps onto statements. Insert and
// update bind the full argument list; delete and cascade bind its first Keys values.
type Table struct {
	Name    string
	Insert  StmtID
	Update  StmtID
	Delete  StmtID
	Cascade StmtID // extra delete for dependent rows when a record is Deleted; 0 = none
	Keys    int
}

var (
	CharacterTable      = Table{Name: "characters", Insert: InsCharacter, Update: UpdCharacter, Delete: DelCharacter, Keys: 1}
	HomeBindTable       = Table{Name: "homebind", Insert: InsHomeBind, Update: UpdHomeBind, Delete: DelHomeBind, Keys: 1}
	AchievementTable    = Table{Name: "achievements", Insert: InsAchievement, Update: UpdAchievement, Delete: DelAchievement, Keys: 2}
	SkillTable          = Table{Name: "skills", Insert: InsSkill, Update: UpdSkill, Delete: DelSkill, Keys: 2}
	SpellTable          = Table{Name: "spells", Insert: InsSpell, Update: UpdSpell, Delete: DelSpell, Keys: 2}
	CurrencyTable       = Table{Name: "currencies", Insert: InsCurrency, Update: UpdCurrency, Delete: DelCurrency, Keys: 2}
	ItemTable           = Table{Name: "items", Insert: InsItem, Update: UpdItem, Delete: DelItem, Keys: 2}
	VoidStorageTable    = Table{Name: "void_storage", Insert: InsVoidItem, Update: UpdVoidItem, Delete: DelVoidItem, Keys: 2}
	MailTable           = Table{Name: "mail", Insert: InsMail, Update: UpdMail, Delete: DelMail, Cascade: DelMailItems, Keys: 2}
	EquipmentSetTable   = Table{Name: "equipment_sets", Insert: InsEquipmentSet, Update: UpdEquipmentSet, Delete: DelEquipmentSet, Keys: 2}
	AuraTable           = Table{Name: "auras", Insert: InsAura, Update: UpdAura, Delete: DelAura, Keys: 5}
	AuraEffectTable     = Table{Name: "aura_effects", Insert: InsAuraEffect, Update: UpdAuraEffect, Delete: DelAuraEffect, Keys: 6}
	QuestStatusTable    = Table{Name: "quest_status", Insert: InsQuestStatus, Update: UpdQuestStatus, Delete: DelQuestStatus, Keys: 2}
	QuestObjectiveTable = Table{Name: "quest_objectives", Insert: InsQuestObjective, Update: UpdQuestObjective, Delete: DelQuestObjective, Keys: 3}
	QuestRewardedTable  = Table{Name: "quest_rewarded", Insert: InsQuestRewarded, Update: UpdQuestRewarded, Delete: DelQuestRewarded, Keys: 2}
	TraitConfigTable    = Table{Name: "trait_configs", Insert: InsTraitConfig, Update: UpdTraitConfig, Delete: DelTraitConfig, Cascade: DelTraitConfigEntries, Keys: 2}
	TraitEntryTable     = Table{Name: "trait_entries", Insert: InsTraitEntry, Update: UpdTraitEntry, Delete: DelTraitEntry, Keys: 4}
	PetTable            = Table{Name: "pets", Insert: InsPet, Update: UpdPet, Delete: DelPet, Keys: 2}
	ActionButtonTable   = Table{Name: "action_buttons", Insert: InsActionButton, Update: UpdActionButton, Delete: DelActionButton, Keys: 2}
	ToyTable            = Table{Name: "toys", Insert: InsToy, Update: UpdToy, Delete: DelToy, Keys: 2}
	MountTable          = Table{Name: "mounts", Insert: InsMount, Update: UpdMount, Delete: DelMount, Keys: 2}
	HeirloomTable       = Table{Name: "heirlooms", Insert: InsHeirloom, Update: UpdHeirloom, Delete: DelHeirloom, Keys: 2}
)

// Store reports which database holds the table.
func (t Table) Store() StoreID { return statements[t.Insert].store }

func flag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// --- argument binders (column order matches statements.go) ---

func CharacterArgs(c world.CharacterData) []any {
	return []any{
		int64(c.GUID), c.AccountID, c.Name, int64(c.Race), int64(c.Class), int64(c.Gender), int64(c.Skin), int64(c.Face),
		int64(c.Level), int64(c.XP), int64(c.Money),
		int64(c.Position.MapID), int64(c.Position.ZoneID),
		float64(c.Position.X), float64(c.Position.Y), float64(c.Position.Z), float64(c.Position.O),
		int64(c.Flags), int64(c.AtLogin), int64(c.Health),
		int64(c.Power[0]), int64(c.Power[1]), int64(c.Power[2]), int64(c.Power[3]), int64(c.Power[4]), int64(c.Power[5]),
		int64(c.ActiveSpec), c.RestBonus, flag(c.RestInArea), c.LogoutTime, int64(c.TotalTime), int64(c.LevelTime),
		int64(c.Drunk), int64(c.Difficulty),
	}
}

func HomeBindArgs(owner world.GUID, hb world.HomeBind) []any {
	return []any{int64(owner), int64(hb.MapID), int64(hb.ZoneID), float64(hb.X), float64(hb.Y), float64(hb.Z)}
}

func AchievementArgs(owner world.GUID, id uint32, date int64) []any {
	return []any{int64(owner), int64(id), date}
}

func SkillArgs(owner world.GUID, sk world.Skill) []any {
	return []any{int64(owner), int64(sk.ID), int64(sk.Value), int64(sk.Max)}
}

func SpellArgs(owner world.GUID, sp world.Spell) []any {
	return []any{int64(owner), int64(sp.ID), flag(sp.Active), flag(sp.Disabled)}
}

func CurrencyArgs(owner world.GUID, c world.Currency) []any {
	return []any{int64(owner), int64(c.ID), int64(c.Quantity), int64(c.Weekly), int64(c.Flags)}
}

func ItemArgs(owner world.GUID, it world.Item) []any {
	return []any{
		int64(owner), int64(it.GUID), int64(it.Template), int64(it.Count), int64(it.Bag), int64(it.Slot),
		it.MailID, int64(it.Flags), int64(it.Durability), int64(it.Charges), int64(it.Enchant),
		it.CreatedAt, int64(it.PlayedTime), encodeJSON(it.Looters),
	}
}

func VoidItemArgs(owner world.GUID, v world.VoidItem) []any {
	return []any{int64(owner), int64(v.Slot), v.ItemID, int64(v.Template), int64(v.Creator), int64(v.RandomSeed)}
}

func MailArgs(owner world.GUID, m world.Mail) []any {
	return []any{
		int64(owner), m.ID, int64(m.Kind), m.Sender, m.Subject, m.Body,
		int64(m.Money), int64(m.COD), m.ExpireTime, m.DeliverAt, flag(m.Checked),
	}
}

func EquipmentSetArgs(owner world.GUID, s world.EquipmentSet) []any {
	return []any{
		int64(owner), s.GUID, int64(s.SetID), int64(s.Kind), s.Name, s.Icon, int64(s.IgnoreMask),
		encodeJSON(s.Pieces), encodeJSON(s.Appearances),
	}
}

func auraKeyArgs(owner world.GUID, k world.AuraKey) []any {
	return []any{int64(owner), int64(k.Caster), int64(k.Item), int64(k.SpellID), int64(k.EffectMask)}
}

func AuraArgs(owner world.GUID, a world.Aura) []any {
	return append(auraKeyArgs(owner, a.Key),
		int64(a.RecalcMask), int64(a.StackCount), int64(a.MaxDuration), int64(a.Remaining),
		int64(a.Charges), int64(a.CastItemID))
}

func AuraEffectArgs(owner world.GUID, k world.AuraEffectKey, e world.AuraEffect) []any {
	return append(auraKeyArgs(owner, k.Aura), int64(k.Index), int64(e.Amount), int64(e.BaseAmount))
}

func QuestStatusArgs(owner world.GUID, q world.QuestStatus) []any {
	return []any{int64(owner), int64(q.QuestID), int64(q.Slot), int64(q.State), flag(q.Explored), q.AcceptAt, q.EndTime}
}

func QuestObjectiveArgs(owner world.GUID, k world.ObjectiveKey, v int32) []any {
	return []any{int64(owner), int64(k.QuestID), int64(k.Index), int64(v)}
}

func QuestRewardedArgs(owner world.GUID, quest uint32) []any {
	return []any{int64(owner), int64(quest), int64(1)}
}

func TraitConfigArgs(owner world.GUID, c world.TraitConfig) []any {
	return []any{int64(owner), int64(c.ID), int64(c.Type), int64(c.SpecID), int64(c.CombatFlags), int64(c.SkillLineID), c.Name}
}

func TraitEntryArgs(owner world.GUID, k world.TraitEntryKey, e world.TraitEntry) []any {
	return []any{int64(owner), int64(k.ConfigID), int64(k.NodeID), int64(k.EntryID), int64(e.Rank), int64(e.GrantedRanks)}
}

func PetArgs(owner world.GUID, p world.Pet) []any {
	return []any{
		int64(owner), int64(p.Number), int64(p.Entry), int64(p.Slot), p.Name, int64(p.Level), int64(p.XP),
		int64(p.Health), int64(p.Power), int64(p.React), flag(p.Renamed), int64(p.SpecID), p.SavedAt,
	}
}

func ActionButtonArgs(owner world.GUID, index uint8, b world.ActionButton) []any {
	return []any{int64(owner), int64(index), int64(b.Action), int64(b.Type)}
}

func ToyArgs(account int64, id uint32, t world.Toy) []any {
	return []any{account, int64(id), flag(t.Favorite)}
}

func MountArgs(account int64, id uint32, m world.Mount) []any {
	return []any{account, int64(id), flag(m.Favorite), flag(m.Hidden)}
}

func HeirloomArgs(account int64, id uint32, h world.Heirloom) []any {
	return []any{account, int64(id), int64(h.Upgrades)}
}

// encodeJSON marshals the integer slices and arrays stored in TEXT columns.
// Marshalling integers cannot fail.
func encodeJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

// --- row scanners ---

func scanCharacter(r Row) (world.CharacterData, error) {
	var (
		c                                                        world.CharacterData
		guid, race, class, gender, skin, face, level, xp, money int64
		mapID, zoneID                                            int64
		x, y, z, o                                               float64
		flags, atLogin, health, spec                             int64
		power                                                    [world.MaxPowers]int64
		restInArea, totalTime, levelTime, drunk, difficulty      int64
	)
	err := r.Scan(
		&guid, &c.AccountID, &c.Name, &race, &class, &gender, &skin, &face,
		&level, &xp, &money, &mapID, &zoneID, &x, &y, &z, &o,
		&flags, &atLogin, &health,
		&power[0], &power[1], &power[2], &power[3], &power[4], &power[5],
		&spec, &c.RestBonus, &restInArea, &c.LogoutTime, &totalTime, &levelTime,
		&drunk, &difficulty,
	)
	if err != nil {
		return c, fmt.Errorf("scan character: %w", err)
	}
	c.GUID = world.GUID(guid)
	c.Race, c.Class, c.Gender = uint8(race), uint8(class), uint8(gender)
	c.Skin, c.Face, c.Level = uint8(skin), uint8(face), uint8(level)
	c.XP, c.Money = uint32(xp), uint64(money)
	c.Position = world.Position{
		MapID: uint32(mapID), ZoneID: uint32(zoneID),
		X: float32(x), Y: float32(y), Z: float32(z), O: float32(o),
	}
	c.Flags = world.PlayerFlags(flags)
	c.AtLogin = world.AtLoginFlags(atLogin)
	c.Health = uint32(health)
	for i, v := range power {
		c.Power[i] = uint32(v)
	}
	c.ActiveSpec = uint32(spec)
	c.RestInArea = restInArea != 0
	c.TotalTime, c.LevelTime = uint32(totalTime), uint32(levelTime)
	c.Drunk, c.Difficulty = uint8(drunk), uint8(difficulty)
	return c, nil
}

func scanHomeBind(r Row) (Owned[world.HomeBind], error) {
	var (
		owner, mapID, zoneID int64
		x, y, z              float64
	)
	if err := r.Scan(&owner, &mapID, &zoneID, &x, &y, &z); err != nil {
		return Owned[world.HomeBind]{}, fmt.Errorf("scan homebind: %w", err)
	}
	return Owned[world.HomeBind]{Owner: owner, Value: world.HomeBind{
		MapID: uint32(mapID), ZoneID: uint32(zoneID), X: float32(x), Y: float32(y), Z: float32(z),
	}}, nil
}

func scanAchievement(r Row) (Owned[AchievementRow], error) {
	var owner, id, date int64
	if err := r.Scan(&owner, &id, &date); err != nil {
		return Owned[AchievementRow]{}, fmt.Errorf("scan achievement: %w", err)
	}
	return Owned[AchievementRow]{Owner: owner, Value: AchievementRow{ID: uint32(id), Date: date}}, nil
}

func scanSkill(r Row) (Owned[world.Skill], error) {
	var owner, id, value, maxValue int64
	if err := r.Scan(&owner, &id, &value, &maxValue); err != nil {
		return Owned[world.Skill]{}, fmt.Errorf("scan skill: %w", err)
	}
	return Owned[world.Skill]{Owner: owner, Value: world.Skill{ID: uint32(id), Value: uint16(value), Max: uint16(maxValue)}}, nil
}

func scanSpell(r Row) (Owned[world.Spell], error) {
	var owner, id, active, disabled int64
	if err := r.Scan(&owner, &id, &active, &disabled); err != nil {
		return Owned[world.Spell]{}, fmt.Errorf("scan spell: %w", err)
	}
	return Owned[world.Spell]{Owner: owner, Value: world.Spell{ID: uint32(id), Active: active != 0, Disabled: disabled != 0}}, nil
}

func scanCurrency(r Row) (Owned[world.Currency], error) {
	var owner, id, qty, weekly, flags int64
	if err := r.Scan(&owner, &id, &qty, &weekly, &flags); err != nil {
		return Owned[world.Currency]{}, fmt.Errorf("scan currency: %w", err)
	}
	return Owned[world.Currency]{Owner: owner, Value: world.Currency{
		ID: uint32(id), Quantity: uint32(qty), Weekly: uint32(weekly), Flags: uint8(flags),
	}}, nil
}

func scanItem(r Row) (Owned[world.Item], error) {
	var (
		owner, guid, template, count, bag, slot, mailID int64
		flags, durability, charges, enchant, created    int64
		played                                          int64
		looters                                         string
	)
	err := r.Scan(&owner, &guid, &template, &count, &bag, &slot, &mailID,
		&flags, &durability, &charges, &enchant, &created, &played, &looters)
	if err != nil {
		return Owned[world.Item]{}, fmt.Errorf("scan item: %w", err)
	}
	it := world.Item{
		GUID:       world.GUID(guid),
		Template:   uint32(template),
		Count:      uint32(count),
		Bag:        world.GUID(bag),
		Slot:       uint8(slot),
		MailID:     mailID,
		Flags:      world.ItemFlags(flags),
		Durability: uint32(durability),
		Charges:    int32(charges),
		Enchant:    uint32(enchant),
		CreatedAt:  created,
		PlayedTime: uint32(played),
	}
	row := Owned[world.Item]{Owner: owner}
	if err := decodeJSON(looters, &it.Looters); err != nil {
		it.Looters = nil
		row.Damage = fmt.Sprintf("looters: %v", err)
	}
	row.Value = it
	return row, nil
}

func scanVoidItem(r Row) (Owned[world.VoidItem], error) {
	var owner, slot, itemID, template, creator, seed int64
	if err := r.Scan(&owner, &slot, &itemID, &template, &creator, &seed); err != nil {
		return Owned[world.VoidItem]{}, fmt.Errorf("scan void item: %w", err)
	}
	return Owned[world.VoidItem]{Owner: owner, Value: world.VoidItem{
		ItemID: itemID, Template: uint32(template), Creator: world.GUID(creator), RandomSeed: uint32(seed), Slot: uint8(slot),
	}}, nil
}

func scanMail(r Row) (Owned[world.Mail], error) {
	var (
		m                             world.Mail
		owner, kind, money, cod, chk int64
	)
	err := r.Scan(&owner, &m.ID, &kind, &m.Sender, &m.Subject, &m.Body, &money, &cod, &m.ExpireTime, &m.DeliverAt, &chk)
	if err != nil {
		return Owned[world.Mail]{}, fmt.Errorf("scan mail: %w", err)
	}
	m.Kind = world.MailKind(kind)
	m.Money, m.COD = uint64(money), uint64(cod)
	m.Checked = chk != 0
	return Owned[world.Mail]{Owner: owner, Value: m}, nil
}

func scanEquipmentSet(r Row) (Owned[world.EquipmentSet], error) {
	var (
		s                          world.EquipmentSet
		owner, setID, kind, ignore int64
		pieces, appearances        string
	)
	if err := r.Scan(&owner, &s.GUID, &setID, &kind, &s.Name, &s.Icon, &ignore, &pieces, &appearances); err != nil {
		return Owned[world.EquipmentSet]{}, fmt.Errorf("scan equipment set: %w", err)
	}
	s.SetID, s.Kind, s.IgnoreMask = uint8(setID), world.EquipmentSetKind(kind), uint32(ignore)
	var damage []string
	if err := decodeJSON(pieces, &s.Pieces); err != nil {
		s.Pieces = [world.SlotMax]world.GUID{}
		damage = append(damage, fmt.Sprintf("pieces: %v", err))
	}
	if err := decodeJSON(appearances, &s.Appearances); err != nil {
		s.Appearances = [world.SlotMax]uint32{}
		damage = append(damage, fmt.Sprintf("appearances: %v", err))
	}
	return Owned[world.EquipmentSet]{Owner: owner, Value: s, Damage: strings.Join(damage, "; ")}, nil
}

func scanAuraKey(owner *int64, caster, item, spell, mask *int64) []any {
	return []any{owner, caster, item, spell, mask}
}

func auraKey(caster, item, spell, mask int64) world.AuraKey {
	return world.AuraKey{Caster: world.GUID(caster), Item: world.GUID(item), SpellID: uint32(spell), EffectMask: uint32(mask)}
}

func scanAura(r Row) (Owned[world.Aura], error) {
	var owner, caster, item, spell, mask, recalc, stacks, maxDur, remaining, charges, castItem int64
	dest := append(scanAuraKey(&owner, &caster, &item, &spell, &mask),
		&recalc, &stacks, &maxDur, &remaining, &charges, &castItem)
	if err := r.Scan(dest...); err != nil {
		return Owned[world.Aura]{}, fmt.Errorf("scan aura: %w", err)
	}
	return Owned[world.Aura]{Owner: owner, Value: world.Aura{
		Key:         auraKey(caster, item, spell, mask),
		RecalcMask:  uint32(recalc),
		StackCount:  uint8(stacks),
		MaxDuration: int32(maxDur),
		Remaining:   int32(remaining),
		Charges:     uint8(charges),
		CastItemID:  uint32(castItem),
	}}, nil
}

func scanAuraEffect(r Row) (Owned[AuraEffectRow], error) {
	var owner, caster, item, spell, mask, index, amount, base int64
	dest := append(scanAuraKey(&owner, &caster, &item, &spell, &mask), &index, &amount, &base)
	if err := r.Scan(dest...); err != nil {
		return Owned[AuraEffectRow]{}, fmt.Errorf("scan aura effect: %w", err)
	}
	return Owned[AuraEffectRow]{Owner: owner, Value: AuraEffectRow{
		Key:    world.AuraEffectKey{Aura: auraKey(caster, item, spell, mask), Index: uint8(index)},
		Effect: world.AuraEffect{Amount: int32(amount), BaseAmount: int32(base)},
	}}, nil
}

func scanQuestStatus(r Row) (Owned[world.QuestStatus], error) {
	var (
		q                                  world.QuestStatus
		owner, quest, slot, state, explore int64
	)
	if err := r.Scan(&owner, &quest, &slot, &state, &explore, &q.AcceptAt, &q.EndTime); err != nil {
		return Owned[world.QuestStatus]{}, fmt.Errorf("scan quest status: %w", err)
	}
	q.QuestID, q.Slot, q.State, q.Explored = uint32(quest), uint8(slot), world.QuestState(state), explore != 0
	return Owned[world.QuestStatus]{Owner: owner, Value: q}, nil
}

func scanQuestObjective(r Row) (Owned[ObjectiveRow], error) {
	var owner, quest, index, data int64
	if err := r.Scan(&owner, &quest, &index, &data); err != nil {
		return Owned[ObjectiveRow]{}, fmt.Errorf("scan quest objective: %w", err)
	}
	return Owned[ObjectiveRow]{Owner: owner, Value: ObjectiveRow{
		Key:   world.ObjectiveKey{QuestID: uint32(quest), Index: uint8(index)},
		Value: int32(data),
	}}, nil
}

func scanQuestRewarded(r Row) (Owned[uint32], error) {
	var owner, quest int64
	if err := r.Scan(&owner, &quest); err != nil {
		return Owned[uint32]{}, fmt.Errorf("scan quest rewarded: %w", err)
	}
	return Owned[uint32]{Owner: owner, Value: uint32(quest)}, nil
}

func scanTraitConfig(r Row) (Owned[world.TraitConfig], error) {
	var (
		c                                         world.TraitConfig
		owner, id, typ, spec, flags, skillLine int64
	)
	if err := r.Scan(&owner, &id, &typ, &spec, &flags, &skillLine, &c.Name); err != nil {
		return Owned[world.TraitConfig]{}, fmt.Errorf("scan trait config: %w", err)
	}
	c.ID, c.Type, c.SpecID = int32(id), world.TraitConfigType(typ), uint32(spec)
	c.CombatFlags, c.SkillLineID = world.TraitCombatFlags(flags), uint32(skillLine)
	return Owned[world.TraitConfig]{Owner: owner, Value: c}, nil
}

func scanTraitEntry(r Row) (Owned[TraitEntryRow], error) {
	var owner, config, node, entry, rank, granted int64
	if err := r.Scan(&owner, &config, &node, &entry, &rank, &granted); err != nil {
		return Owned[TraitEntryRow]{}, fmt.Errorf("scan trait entry: %w", err)
	}
	return Owned[TraitEntryRow]{Owner: owner, Value: TraitEntryRow{
		Key:   world.TraitEntryKey{ConfigID: int32(config), NodeID: uint32(node), EntryID: uint32(entry)},
		Entry: world.TraitEntry{Rank: uint8(rank), GrantedRanks: uint8(granted)},
	}}, nil
}

func scanPet(r Row) (Owned[world.Pet], error) {
	var (
		p                                                       world.Pet
		owner, number, entry, slot, level, xp, health, power int64
		react, renamed, spec                                    int64
	)
	err := r.Scan(&owner, &number, &entry, &slot, &p.Name, &level, &xp, &health, &power, &react, &renamed, &spec, &p.SavedAt)
	if err != nil {
		return Owned[world.Pet]{}, fmt.Errorf("scan pet: %w", err)
	}
	p.Number, p.Entry, p.Slot = uint32(number), uint32(entry), int16(slot)
	p.Level, p.XP, p.Health, p.Power = uint8(level), uint32(xp), uint32(health), uint32(power)
	p.React, p.Renamed, p.SpecID = world.PetReactState(react), renamed != 0, uint32(spec)
	return Owned[world.Pet]{Owner: owner, Value: p}, nil
}

func scanActionButton(r Row) (Owned[ActionButtonRow], error) {
	var owner, index, action, typ int64
	if err := r.Scan(&owner, &index, &action, &typ); err != nil {
		return Owned[ActionButtonRow]{}, fmt.Errorf("scan action button: %w", err)
	}
	return Owned[ActionButtonRow]{Owner: owner, Value: ActionButtonRow{
		Index:  uint8(index),
		Button: world.ActionButton{Action: uint32(action), Type: world.ActionType(typ)},
	}}, nil
}

func scanToy(r Row) (Owned[ToyRow], error) {
	var owner, id, fav int64
	if err := r.Scan(&owner, &id, &fav); err != nil {
		return Owned[ToyRow]{}, fmt.Errorf("scan toy: %w", err)
	}
	return Owned[ToyRow]{Owner: owner, Value: ToyRow{ID: uint32(id), Toy: world.Toy{Favorite: fav != 0}}}, nil
}

func scanMount(r Row) (Owned[MountRow], error) {
	var owner, id, fav, hidden int64
	if err := r.Scan(&owner, &id, &fav, &hidden); err != nil {
		return Owned[MountRow]{}, fmt.Errorf("scan mount: %w", err)
	}
	return Owned[MountRow]{Owner: owner, Value: MountRow{ID: uint32(id), Mount: world.Mount{Favorite: fav != 0, Hidden: hidden != 0}}}, nil
}

func scanHeirloom(r Row) (Owned[HeirloomRow], error) {
	var owner, id, upgrades int64
	if err := r.Scan(&owner, &id, &upgrades); err != nil {
		return Owned[HeirloomRow]{}, fmt.Errorf("scan heirloom: %w", err)
	}
	return Owned[HeirloomRow]{Owner: owner, Value: HeirloomRow{ID: uint32(id), Heirloom: world.Heirloom{Upgrades: uint8(upgrades)}}}, nil
}

func scanGroup(r Row) (Owned[GroupRow], error) {
	var owner, group, difficulty int64
	if err := r.Scan(&owner, &group, &difficulty); err != nil {
		return Owned[GroupRow]{}, fmt.Errorf("scan group member: %w", err)
	}
	return Owned[GroupRow]{Owner: owner, Value: GroupRow{GroupID: group, Difficulty: uint8(difficulty)}}, nil
}
