package persist

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/world"
)

// Bundle holds every result set needed to hydrate one character. Each slice
// is what its select returned for the requested owner, unvalidated.
type Bundle struct {
	Character *world.CharacterData // nil when no such character
	Account   *Account             // the requesting account; nil when unknown

	HomeBind        []Owned[world.HomeBind]
	Achievements    []Owned[AchievementRow]
	Group           []Owned[GroupRow]
	Skills          []Owned[world.Skill]
	Spells          []Owned[world.Spell]
	Currencies      []Owned[world.Currency]
	Items           []Owned[world.Item]
	VoidStorage     []Owned[world.VoidItem]
	Mail            []Owned[world.Mail]
	EquipmentSets   []Owned[world.EquipmentSet]
	Auras           []Owned[world.Aura]
	AuraEffects     []Owned[AuraEffectRow]
	QuestStatus     []Owned[world.QuestStatus]
	QuestObjectives []Owned[ObjectiveRow]
	QuestRewarded   []Owned[uint32]
	TraitConfigs    []Owned[world.TraitConfig]
	TraitEntries    []Owned[TraitEntryRow]
	Pets            []Owned[world.Pet]
	ActionButtons   []Owned[ActionButtonRow]

	// account-scoped, from the session store
	Toys      []Owned[ToyRow]
	Mounts    []Owned[MountRow]
	Heirlooms []Owned[HeirloomRow]
}

// Loader reads a character's bundle from both stores.
type Loader struct {
	stores Stores
	log    *zap.Logger
}

func NewLoader(stores Stores, log *zap.Logger) *Loader {
	return &Loader{stores: stores, log: log}
}

// Load reads the account and the character with every sub-collection. A
// missing character or account is reported through nil fields, not an error;
// the hydrator turns those into login failures.
func (l *Loader) Load(ctx context.Context, accountID int64, guid world.GUID) (*Bundle, error) {
	b := &Bundle{}

	acc, err := loadAccount(ctx, l.stores.Session, Prepare(SelAccountByID, accountID))
	if err != nil {
		return nil, err
	}
	b.Account = acc

	var c world.CharacterData
	err = l.stores.Character.Query(ctx, Prepare(SelCharacter, int64(guid)), func(r Row) error {
		var err error
		c, err = scanCharacter(r)
		b.Character = &c
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load character %d: %w", guid, err)
	}
	if b.Character == nil {
		return b, nil
	}

	owner := int64(guid)
	cs := l.stores.Character
	steps := []error{
		collect(ctx, cs, Prepare(SelHomeBind, owner), scanHomeBind, &b.HomeBind),
		collect(ctx, cs, Prepare(SelAchievements, owner), scanAchievement, &b.Achievements),
		collect(ctx, cs, Prepare(SelGroupMember, owner), scanGroup, &b.Group),
		collect(ctx, cs, Prepare(SelSkills, owner), scanSkill, &b.Skills),
		collect(ctx, cs, Prepare(SelSpells, owner), scanSpell, &b.Spells),
		collect(ctx, cs, Prepare(SelCurrencies, owner), scanCurrency, &b.Currencies),
		collect(ctx, cs, Prepare(SelItems, owner), scanItem, &b.Items),
		collect(ctx, cs, Prepare(SelVoidStorage, owner), scanVoidItem, &b.VoidStorage),
		collect(ctx, cs, Prepare(SelMail, owner), scanMail, &b.Mail),
		collect(ctx, cs, Prepare(SelEquipmentSets, owner), scanEquipmentSet, &b.EquipmentSets),
		collect(ctx, cs, Prepare(SelAuras, owner), scanAura, &b.Auras),
		collect(ctx, cs, Prepare(SelAuraEffects, owner), scanAuraEffect, &b.AuraEffects),
		collect(ctx, cs, Prepare(SelQuestStatus, owner), scanQuestStatus, &b.QuestStatus),
		collect(ctx, cs, Prepare(SelQuestObjectives, owner), scanQuestObjective, &b.QuestObjectives),
		collect(ctx, cs, Prepare(SelQuestRewarded, owner), scanQuestRewarded, &b.QuestRewarded),
		collect(ctx, cs, Prepare(SelTraitConfigs, owner), scanTraitConfig, &b.TraitConfigs),
		collect(ctx, cs, Prepare(SelTraitEntries, owner), scanTraitEntry, &b.TraitEntries),
		collect(ctx, cs, Prepare(SelPets, owner), scanPet, &b.Pets),
		collect(ctx, cs, Prepare(SelActionButtons, owner), scanActionButton, &b.ActionButtons),
	}
	if err := errors.Join(steps...); err != nil {
		return nil, fmt.Errorf("load character %d: %w", guid, err)
	}

	// Collections belong to the character's account, which may differ from
	// the requesting one; the hydrator rejects that case before using them.
	ss := l.stores.Session
	account := b.Character.AccountID
	steps = []error{
		collect(ctx, ss, Prepare(SelToys, account), scanToy, &b.Toys),
		collect(ctx, ss, Prepare(SelMounts, account), scanMount, &b.Mounts),
		collect(ctx, ss, Prepare(SelHeirlooms, account), scanHeirloom, &b.Heirlooms),
	}
	if err := errors.Join(steps...); err != nil {
		return nil, fmt.Errorf("load account %d collections: %w", account, err)
	}

	l.log.Debug("bundle loaded",
		zap.Int64("guid", owner),
		zap.Int("items", len(b.Items)),
		zap.Int("auras", len(b.Auras)),
		zap.Int("mail", len(b.Mail)),
	)
	return b, nil
}

func collect[T any](ctx context.Context, s Store, st Statement, scan func(Row) (T, error), out *[]T) error {
	return s.Query(ctx, st, func(r Row) error {
		v, err := scan(r)
		if err != nil {
			return err
		}
		*out = append(*out, v)
		return nil
	})
}

// NextIDSeeds reads the highest stored id of every allocator sequence.
func NextIDSeeds(ctx context.Context, stores Stores) (map[world.IDKind]int64, error) {
	queries := map[world.IDKind]StmtID{
		world.IDItem:         SelMaxItemGUID,
		world.IDMail:         SelMaxMailID,
		world.IDEquipmentSet: SelMaxEquipmentSetGUID,
		world.IDTraitConfig:  SelMaxTraitConfigID,
		world.IDCharacter:    SelMaxCharacterGUID,
	}
	seeds := make(map[world.IDKind]int64, len(queries))
	for kind, id := range queries {
		var v int64
		if err := QueryOne(ctx, stores.Character, Prepare(id), &v); err != nil {
			return nil, fmt.Errorf("id seed %s: %w", Prepare(id).Name(), err)
		}
		seeds[kind] = v
	}
	return seeds, nil
}
