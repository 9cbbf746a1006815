package data

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/charsync/internal/world"
)

// ItemFlag bits from the item template.
type ItemFlag uint32

const (
	ItemFlagConjured     ItemFlag = 1 << 1
	ItemFlagBindOnPickup ItemFlag = 1 << 2
	ItemFlagUnique       ItemFlag = 1 << 3
	ItemFlagHeirloom     ItemFlag = 1 << 4
)

// ItemInfo holds a single item template.
type ItemInfo struct {
	ItemID         uint32
	Name           string
	Quality        uint8
	Flags          ItemFlag
	MaxStack       uint32
	ContainerSlots uint8             // >0 for bags
	EquipSlots     []world.EquipSlot // slots the item may be worn in
	LimitMapID     uint32            // 0 = usable anywhere
	LimitZoneID    uint32            // 0 = usable anywhere
	Stamina        int32             // stat bonus while equipped
	MaxDurability  uint32
	SpellCharges   int32
}

// Conjured reports whether the item vanishes after being offline too long.
func (i *ItemInfo) Conjured() bool { return i.Flags&ItemFlagConjured != 0 }

// ItemTable holds all item templates indexed by ItemID.
type ItemTable struct {
	items map[uint32]*ItemInfo
}

// Get returns an item template by ID, or nil if not found.
func (t *ItemTable) Get(itemID uint32) *ItemInfo {
	return t.items[itemID]
}

// Count returns total loaded items.
func (t *ItemTable) Count() int {
	return len(t.items)
}

// --- YAML loading ---

type itemEntry struct {
	ItemID         uint32   `yaml:"item_id"`
	Name           string   `yaml:"name"`
	Quality        uint8    `yaml:"quality"`
	Conjured       bool     `yaml:"conjured"`
	BindOnPickup   bool     `yaml:"bind_on_pickup"`
	Unique         bool     `yaml:"unique"`
	Heirloom       bool     `yaml:"heirloom"`
	MaxStack       uint32   `yaml:"max_stack"`
	ContainerSlots uint8    `yaml:"container_slots"`
	Equip          []string `yaml:"equip"`
	LimitMap       uint32   `yaml:"limit_map"`
	LimitZone      uint32   `yaml:"limit_zone"`
	Stamina        int32    `yaml:"stamina"`
	MaxDurability  uint32   `yaml:"max_durability"`
	SpellCharges   int32    `yaml:"spell_charges"`
}

type itemListFile struct {
	Items []itemEntry `yaml:"items"`
}

func loadItemTable(fsys fs.FS, path string) (*ItemTable, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	t := &ItemTable{items: make(map[uint32]*ItemInfo, len(f.Items))}
	for i := range f.Items {
		e := &f.Items[i]
		info := &ItemInfo{
			ItemID:         e.ItemID,
			Name:           e.Name,
			Quality:        e.Quality,
			MaxStack:       max(e.MaxStack, 1),
			ContainerSlots: e.ContainerSlots,
			LimitMapID:     e.LimitMap,
			LimitZoneID:    e.LimitZone,
			Stamina:        e.Stamina,
			MaxDurability:  e.MaxDurability,
			SpellCharges:   e.SpellCharges,
		}
		if e.Conjured {
			info.Flags |= ItemFlagConjured
		}
		if e.BindOnPickup {
			info.Flags |= ItemFlagBindOnPickup
		}
		if e.Unique {
			info.Flags |= ItemFlagUnique
		}
		if e.Heirloom {
			info.Flags |= ItemFlagHeirloom
		}
		for _, name := range e.Equip {
			slot, ok := world.EquipSlotFromName(name)
			if !ok {
				return nil, fmt.Errorf("item %d: unknown equip slot %q", e.ItemID, name)
			}
			info.EquipSlots = append(info.EquipSlots, slot)
		}
		t.items[e.ItemID] = info
	}
	return t, nil
}
