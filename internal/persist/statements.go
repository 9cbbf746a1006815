package persist

import (
	"fmt"
	"strings"
)

// StmtID identifies a registered statement. Callers never build query text;
// they pick an id and bind positional values with Prepare.
type StmtID uint16

const (
	// character store: root record
	SelCharacter StmtID = iota + 1
	SelCharacterList
	SelCharacterByName
	InsCharacter
	UpdCharacter
	DelCharacter
	UpdCharacterAtLogin
	SelMaxCharacterGUID

	SelHomeBind
	InsHomeBind
	UpdHomeBind
	DelHomeBind

	SelAchievements
	InsAchievement
	UpdAchievement
	DelAchievement

	SelSkills
	InsSkill
	UpdSkill
	DelSkill

	SelSpells
	InsSpell
	UpdSpell
	DelSpell

	SelCurrencies
	InsCurrency
	UpdCurrency
	DelCurrency

	SelItems
	InsItem
	UpdItem
	DelItem
	DelMailItems
	SelMaxItemGUID

	SelVoidStorage
	InsVoidItem
	UpdVoidItem
	DelVoidItem

	SelMail
	InsMail
	UpdMail
	DelMail
	SelMaxMailID

	SelEquipmentSets
	InsEquipmentSet
	UpdEquipmentSet
	DelEquipmentSet
	SelMaxEquipmentSetGUID

	SelAuras
	InsAura
	UpdAura
	DelAura

	SelAuraEffects
	InsAuraEffect
	UpdAuraEffect
	DelAuraEffect

	SelQuestStatus
	InsQuestStatus
	UpdQuestStatus
	DelQuestStatus

	SelQuestObjectives
	InsQuestObjective
	UpdQuestObjective
	DelQuestObjective

	SelQuestRewarded
	InsQuestRewarded
	UpdQuestRewarded
	DelQuestRewarded

	SelTraitConfigs
	InsTraitConfig
	UpdTraitConfig
	DelTraitConfig
	DelTraitConfigEntries
	SelMaxTraitConfigID

	SelTraitEntries
	InsTraitEntry
	UpdTraitEntry
	DelTraitEntry

	SelPets
	InsPet
	UpdPet
	DelPet

	SelActionButtons
	InsActionButton
	UpdActionButton
	DelActionButton

	SelGroupMember

	// session store
	SelAccountByName
	SelAccountByID
	SelMaxAccountID
	InsAccount
	UpdAccountBan
	UpdAccountLogin

	SelToys
	InsToy
	UpdToy
	DelToy

	SelMounts
	InsMount
	UpdMount
	DelMount

	SelHeirlooms
	InsHeirloom
	UpdHeirloom
	DelHeirloom
)

type stmtDef struct {
	store StoreID
	name  string
	sql   string
}

// Column layouts. Owner column first, then the natural key, then values.
// Insert and update bind the same argument list; delete binds the key prefix.
var (
	characterCols = []string{
		"guid", "account_id", "name", "race", "class", "gender", "skin", "face",
		"level", "xp", "money", "map_id", "zone_id", "pos_x", "pos_y", "pos_z", "orientation",
		"player_flags", "at_login", "health",
		"power0", "power1", "power2", "power3", "power4", "power5",
		"active_spec", "rest_bonus", "rest_in_area", "logout_time", "total_time", "level_time",
		"drunk", "difficulty",
	}
	homeBindCols     = []string{"guid", "map_id", "zone_id", "pos_x", "pos_y", "pos_z"}
	achievementCols  = []string{"guid", "achievement", "date"}
	skillCols        = []string{"guid", "skill", "value", "max"}
	spellCols        = []string{"guid", "spell", "active", "disabled"}
	currencyCols     = []string{"guid", "currency", "quantity", "weekly_quantity", "flags"}
	itemCols         = []string{"guid", "item_guid", "template", "count", "bag", "slot", "mail_id", "flags", "durability", "charges", "enchant", "created_at", "played_time", "looters"}
	voidCols         = []string{"guid", "slot", "item_id", "template", "creator", "random_seed"}
	mailCols         = []string{"guid", "mail_id", "kind", "sender", "subject", "body", "money", "cod", "expire_time", "deliver_at", "checked"}
	equipSetCols     = []string{"guid", "set_guid", "set_id", "kind", "name", "icon", "ignore_mask", "pieces", "appearances"}
	auraCols         = []string{"guid", "caster_guid", "item_guid", "spell", "effect_mask", "recalc_mask", "stack_count", "max_duration", "remaining", "charges", "cast_item_id"}
	auraEffectCols   = []string{"guid", "caster_guid", "item_guid", "spell", "effect_mask", "effect_index", "amount", "base_amount"}
	questStatusCols  = []string{"guid", "quest", "slot", "state", "explored", "accept_time", "end_time"}
	questObjCols     = []string{"guid", "quest", "objective_index", "data"}
	questRewardCols  = []string{"guid", "quest", "active"}
	traitConfigCols  = []string{"guid", "config_id", "type", "spec_id", "combat_flags", "skill_line", "name"}
	traitEntryCols   = []string{"guid", "config_id", "node_id", "entry_id", "rank", "granted_ranks"}
	petCols          = []string{"guid", "pet_number", "entry", "slot", "name", "level", "xp", "health", "power", "react_state", "renamed", "spec_id", "saved_at"}
	actionButtonCols = []string{"guid", "button", "action", "type"}
	accountCols      = []string{"account_id", "name", "password_hash", "banned_until", "ban_reason", "created_at", "last_login"}
	toyCols          = []string{"account_id", "toy", "favorite"}
	mountCols        = []string{"account_id", "mount_spell", "favorite", "hidden"}
	heirloomCols     = []string{"account_id", "item_id", "upgrades"}
)

var statements = map[StmtID]stmtDef{
	SelCharacter:        {CharacterStore, "sel_character", selectSQL("characters", characterCols, "guid = $1")},
	SelCharacterList:    {CharacterStore, "sel_character_list", `SELECT guid, name, race, class, level FROM characters WHERE account_id = $1 ORDER BY guid`},
	SelCharacterByName:  {CharacterStore, "sel_character_by_name", `SELECT guid FROM characters WHERE lower(name) = lower($1)`},
	InsCharacter:        {CharacterStore, "ins_character", insertSQL("characters", characterCols)},
	UpdCharacter:        {CharacterStore, "upd_character", updateSQL("characters", 1, characterCols)},
	DelCharacter:        {CharacterStore, "del_character", deleteSQL("characters", characterCols[:1])},
	UpdCharacterAtLogin: {CharacterStore, "upd_character_at_login", `UPDATE characters SET at_login = at_login | $2 WHERE guid = $1`},
	SelMaxCharacterGUID: {CharacterStore, "sel_max_character_guid", `SELECT COALESCE(MAX(guid), 0) FROM characters`},

	SelHomeBind: {CharacterStore, "sel_homebind", selectSQL("character_homebind", homeBindCols, "guid = $1")},
	InsHomeBind: {CharacterStore, "ins_homebind", insertSQL("character_homebind", homeBindCols)},
	UpdHomeBind: {CharacterStore, "upd_homebind", updateSQL("character_homebind", 1, homeBindCols)},
	DelHomeBind: {CharacterStore, "del_homebind", deleteSQL("character_homebind", homeBindCols[:1])},

	SelAchievements: {CharacterStore, "sel_achievements", selectSQL("character_achievements", achievementCols, "guid = $1")},
	InsAchievement:  {CharacterStore, "ins_achievement", insertSQL("character_achievements", achievementCols)},
	UpdAchievement:  {CharacterStore, "upd_achievement", updateSQL("character_achievements", 2, achievementCols)},
	DelAchievement:  {CharacterStore, "del_achievement", deleteSQL("character_achievements", achievementCols[:2])},

	SelSkills: {CharacterStore, "sel_skills", selectSQL("character_skills", skillCols, "guid = $1")},
	InsSkill:  {CharacterStore, "ins_skill", insertSQL("character_skills", skillCols)},
	UpdSkill:  {CharacterStore, "upd_skill", updateSQL("character_skills", 2, skillCols)},
	DelSkill:  {CharacterStore, "del_skill", deleteSQL("character_skills", skillCols[:2])},

	SelSpells: {CharacterStore, "sel_spells", selectSQL("character_spells", spellCols, "guid = $1")},
	InsSpell:  {CharacterStore, "ins_spell", insertSQL("character_spells", spellCols)},
	UpdSpell:  {CharacterStore, "upd_spell", updateSQL("character_spells", 2, spellCols)},
	DelSpell:  {CharacterStore, "del_spell", deleteSQL("character_spells", spellCols[:2])},

	SelCurrencies: {CharacterStore, "sel_currencies", selectSQL("character_currencies", currencyCols, "guid = $1")},
	InsCurrency:   {CharacterStore, "ins_currency", insertSQL("character_currencies", currencyCols)},
	UpdCurrency:   {CharacterStore, "upd_currency", updateSQL("character_currencies", 2, currencyCols)},
	DelCurrency:   {CharacterStore, "del_currency", deleteSQL("character_currencies", currencyCols[:2])},

	SelItems:       {CharacterStore, "sel_items", selectSQL("items", itemCols, "guid = $1") + " ORDER BY bag, slot, item_guid"},
	InsItem:        {CharacterStore, "ins_item", insertSQL("items", itemCols)},
	UpdItem:        {CharacterStore, "upd_item", updateSQL("items", 2, itemCols)},
	DelItem:        {CharacterStore, "del_item", deleteSQL("items", itemCols[:2])},
	DelMailItems:   {CharacterStore, "del_mail_items", `DELETE FROM items WHERE guid = $1 AND mail_id = $2`},
	SelMaxItemGUID: {CharacterStore, "sel_max_item_guid", `SELECT COALESCE(MAX(item_guid), 0) FROM items`},

	SelVoidStorage: {CharacterStore, "sel_void_storage", selectSQL("character_void_storage", voidCols, "guid = $1")},
	InsVoidItem:    {CharacterStore, "ins_void_item", insertSQL("character_void_storage", voidCols)},
	UpdVoidItem:    {CharacterStore, "upd_void_item", updateSQL("character_void_storage", 2, voidCols)},
	DelVoidItem:    {CharacterStore, "del_void_item", deleteSQL("character_void_storage", voidCols[:2])},

	SelMail:      {CharacterStore, "sel_mail", selectSQL("mail", mailCols, "guid = $1") + " ORDER BY mail_id"},
	InsMail:      {CharacterStore, "ins_mail", insertSQL("mail", mailCols)},
	UpdMail:      {CharacterStore, "upd_mail", updateSQL("mail", 2, mailCols)},
	DelMail:      {CharacterStore, "del_mail", deleteSQL("mail", mailCols[:2])},
	SelMaxMailID: {CharacterStore, "sel_max_mail_id", `SELECT COALESCE(MAX(mail_id), 0) FROM mail`},

	SelEquipmentSets:       {CharacterStore, "sel_equipment_sets", selectSQL("character_equipment_sets", equipSetCols, "guid = $1")},
	InsEquipmentSet:        {CharacterStore, "ins_equipment_set", insertSQL("character_equipment_sets", equipSetCols)},
	UpdEquipmentSet:        {CharacterStore, "upd_equipment_set", updateSQL("character_equipment_sets", 2, equipSetCols)},
	DelEquipmentSet:        {CharacterStore, "del_equipment_set", deleteSQL("character_equipment_sets", equipSetCols[:2])},
	SelMaxEquipmentSetGUID: {CharacterStore, "sel_max_equipment_set_guid", `SELECT COALESCE(MAX(set_guid), 0) FROM character_equipment_sets`},

	SelAuras: {CharacterStore, "sel_auras", selectSQL("character_auras", auraCols, "guid = $1")},
	InsAura:  {CharacterStore, "ins_aura", insertSQL("character_auras", auraCols)},
	UpdAura:  {CharacterStore, "upd_aura", updateSQL("character_auras", 5, auraCols)},
	DelAura:  {CharacterStore, "del_aura", deleteSQL("character_auras", auraCols[:5])},

	SelAuraEffects: {CharacterStore, "sel_aura_effects", selectSQL("character_aura_effects", auraEffectCols, "guid = $1")},
	InsAuraEffect:  {CharacterStore, "ins_aura_effect", insertSQL("character_aura_effects", auraEffectCols)},
	UpdAuraEffect:  {CharacterStore, "upd_aura_effect", updateSQL("character_aura_effects", 6, auraEffectCols)},
	DelAuraEffect:  {CharacterStore, "del_aura_effect", deleteSQL("character_aura_effects", auraEffectCols[:6])},

	SelQuestStatus: {CharacterStore, "sel_quest_status", selectSQL("character_queststatus", questStatusCols, "guid = $1")},
	InsQuestStatus: {CharacterStore, "ins_quest_status", insertSQL("character_queststatus", questStatusCols)},
	UpdQuestStatus: {CharacterStore, "upd_quest_status", updateSQL("character_queststatus", 2, questStatusCols)},
	DelQuestStatus: {CharacterStore, "del_quest_status", deleteSQL("character_queststatus", questStatusCols[:2])},

	SelQuestObjectives: {CharacterStore, "sel_quest_objectives", selectSQL("character_queststatus_objectives", questObjCols, "guid = $1")},
	InsQuestObjective:  {CharacterStore, "ins_quest_objective", insertSQL("character_queststatus_objectives", questObjCols)},
	UpdQuestObjective:  {CharacterStore, "upd_quest_objective", updateSQL("character_queststatus_objectives", 3, questObjCols)},
	DelQuestObjective:  {CharacterStore, "del_quest_objective", deleteSQL("character_queststatus_objectives", questObjCols[:3])},

	SelQuestRewarded: {CharacterStore, "sel_quest_rewarded", selectSQL("character_queststatus_rewarded", questRewardCols[:2], "guid = $1 AND active = 1")},
	InsQuestRewarded: {CharacterStore, "ins_quest_rewarded", insertSQL("character_queststatus_rewarded", questRewardCols)},
	UpdQuestRewarded: {CharacterStore, "upd_quest_rewarded", updateSQL("character_queststatus_rewarded", 2, questRewardCols)},
	DelQuestRewarded: {CharacterStore, "del_quest_rewarded", deleteSQL("character_queststatus_rewarded", questRewardCols[:2])},

	SelTraitConfigs:       {CharacterStore, "sel_trait_configs", selectSQL("character_trait_configs", traitConfigCols, "guid = $1")},
	InsTraitConfig:        {CharacterStore, "ins_trait_config", insertSQL("character_trait_configs", traitConfigCols)},
	UpdTraitConfig:        {CharacterStore, "upd_trait_config", updateSQL("character_trait_configs", 2, traitConfigCols)},
	DelTraitConfig:        {CharacterStore, "del_trait_config", deleteSQL("character_trait_configs", traitConfigCols[:2])},
	DelTraitConfigEntries: {CharacterStore, "del_trait_config_entries", `DELETE FROM character_trait_entries WHERE guid = $1 AND config_id = $2`},
	SelMaxTraitConfigID:   {CharacterStore, "sel_max_trait_config_id", `SELECT COALESCE(MAX(config_id), 0) FROM character_trait_configs`},

	SelTraitEntries: {CharacterStore, "sel_trait_entries", selectSQL("character_trait_entries", traitEntryCols, "guid = $1")},
	InsTraitEntry:   {CharacterStore, "ins_trait_entry", insertSQL("character_trait_entries", traitEntryCols)},
	UpdTraitEntry:   {CharacterStore, "upd_trait_entry", updateSQL("character_trait_entries", 4, traitEntryCols)},
	DelTraitEntry:   {CharacterStore, "del_trait_entry", deleteSQL("character_trait_entries", traitEntryCols[:4])},

	SelPets: {CharacterStore, "sel_pets", selectSQL("character_pets", petCols, "guid = $1")},
	InsPet:  {CharacterStore, "ins_pet", insertSQL("character_pets", petCols)},
	UpdPet:  {CharacterStore, "upd_pet", updateSQL("character_pets", 2, petCols)},
	DelPet:  {CharacterStore, "del_pet", deleteSQL("character_pets", petCols[:2])},

	SelActionButtons: {CharacterStore, "sel_action_buttons", selectSQL("character_action_buttons", actionButtonCols, "guid = $1")},
	InsActionButton:  {CharacterStore, "ins_action_button", insertSQL("character_action_buttons", actionButtonCols)},
	UpdActionButton:  {CharacterStore, "upd_action_button", updateSQL("character_action_buttons", 2, actionButtonCols)},
	DelActionButton:  {CharacterStore, "del_action_button", deleteSQL("character_action_buttons", actionButtonCols[:2])},

	SelGroupMember: {CharacterStore, "sel_group_member", `SELECT member_guid, group_id, difficulty FROM group_members WHERE member_guid = $1`},

	SelAccountByName: {SessionStore, "sel_account_by_name", selectSQL("accounts", accountCols, "lower(name) = lower($1)")},
	SelAccountByID:   {SessionStore, "sel_account_by_id", selectSQL("accounts", accountCols, "account_id = $1")},
	SelMaxAccountID:  {SessionStore, "sel_max_account_id", `SELECT COALESCE(MAX(account_id), 0) FROM accounts`},
	InsAccount:       {SessionStore, "ins_account", insertSQL("accounts", accountCols)},
	UpdAccountBan:    {SessionStore, "upd_account_ban", `UPDATE accounts SET banned_until = $2, ban_reason = $3 WHERE account_id = $1`},
	UpdAccountLogin:  {SessionStore, "upd_account_login", `UPDATE accounts SET last_login = $2 WHERE account_id = $1`},

	SelToys: {SessionStore, "sel_toys", selectSQL("account_toys", toyCols, "account_id = $1")},
	InsToy:  {SessionStore, "ins_toy", insertSQL("account_toys", toyCols)},
	UpdToy:  {SessionStore, "upd_toy", updateSQL("account_toys", 2, toyCols)},
	DelToy:  {SessionStore, "del_toy", deleteSQL("account_toys", toyCols[:2])},

	SelMounts: {SessionStore, "sel_mounts", selectSQL("account_mounts", mountCols, "account_id = $1")},
	InsMount:  {SessionStore, "ins_mount", insertSQL("account_mounts", mountCols)},
	UpdMount:  {SessionStore, "upd_mount", updateSQL("account_mounts", 2, mountCols)},
	DelMount:  {SessionStore, "del_mount", deleteSQL("account_mounts", mountCols[:2])},

	SelHeirlooms: {SessionStore, "sel_heirlooms", selectSQL("account_heirlooms", heirloomCols, "account_id = $1")},
	InsHeirloom:  {SessionStore, "ins_heirloom", insertSQL("account_heirlooms", heirloomCols)},
	UpdHeirloom:  {SessionStore, "upd_heirloom", updateSQL("account_heirlooms", 2, heirloomCols)},
	DelHeirloom:  {SessionStore, "del_heirloom", deleteSQL("account_heirlooms", heirloomCols[:2])},
}

func selectSQL(table string, cols []string, where string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(cols, ", "), table, where)
}

func insertSQL(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(ph, ", "))
}

// updateSQL sets every column after the first keys columns, which form the
// WHERE clause. Argument positions match insertSQL for the same column list.
func updateSQL(table string, keys int, cols []string) string {
	set := make([]string, 0, len(cols)-keys)
	for i := keys; i < len(cols); i++ {
		set = append(set, fmt.Sprintf("%s = $%d", cols[i], i+1))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(set, ", "), keyClause(cols[:keys]))
}

func deleteSQL(table string, keys []string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, keyClause(keys))
}

func keyClause(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s = $%d", k, i+1)
	}
	return strings.Join(parts, " AND ")
}
