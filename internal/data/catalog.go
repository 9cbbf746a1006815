package data

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/l1jgo/charsync/internal/world"
)

// Catalog file names inside the catalog directory.
const (
	ItemsFile      = "items.yaml"
	SpellsFile     = "spells.yaml"
	SkillsFile     = "skills.yaml"
	CharactersFile = "characters.yaml"
	MapsFile       = "maps.yaml"
	ProgressFile   = "progress.yaml"
	TraitsFile     = "traits.yaml"
)

// Catalog is the read-only reference data consulted during load and save.
// Immutable after loading; safe for concurrent reads.
type Catalog struct {
	Items      *ItemTable
	Spells     *SpellTable
	Skills     *SkillTable
	Characters *CharacterTable
	Maps       *MapDataTable
	Progress   *ProgressTable
	Traits     *TraitTable
}

//go:embed catalog/*.yaml
var builtinFS embed.FS

// LoadCatalog reads every table from a directory on disk. An empty dir
// selects the built-in catalog.
func LoadCatalog(dir string) (*Catalog, error) {
	if dir == "" {
		return Builtin()
	}
	return LoadCatalogFS(os.DirFS(dir))
}

// Builtin loads the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	sub, err := fs.Sub(builtinFS, "catalog")
	if err != nil {
		return nil, fmt.Errorf("builtin catalog: %w", err)
	}
	return LoadCatalogFS(sub)
}

// LoadCatalogFS reads every table from fsys.
func LoadCatalogFS(fsys fs.FS) (*Catalog, error) {
	var (
		c   Catalog
		err error
	)
	if c.Items, err = loadItemTable(fsys, ItemsFile); err != nil {
		return nil, err
	}
	if c.Spells, err = loadSpellTable(fsys, SpellsFile); err != nil {
		return nil, err
	}
	if c.Skills, err = loadSkillTable(fsys, SkillsFile); err != nil {
		return nil, err
	}
	if c.Characters, err = loadCharacterTable(fsys, CharactersFile); err != nil {
		return nil, err
	}
	if c.Maps, err = loadMapData(fsys, MapsFile); err != nil {
		return nil, err
	}
	if c.Progress, err = loadProgressTable(fsys, ProgressFile); err != nil {
		return nil, err
	}
	if c.Traits, err = loadTraitTable(fsys, TraitsFile); err != nil {
		return nil, err
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// check validates cross-table references.
func (c *Catalog) check() error {
	for _, cls := range c.Characters.classes {
		if cls.DefaultSpec != 0 && c.Traits.Spec(cls.DefaultSpec) == nil {
			return fmt.Errorf("class %d: default spec %d not found", cls.ClassID, cls.DefaultSpec)
		}
	}
	for _, sk := range c.Skills.skills {
		for _, sp := range sk.AutoSpells {
			if c.Spells.Get(sp) == nil {
				return fmt.Errorf("skill %d: auto spell %d not found", sk.SkillID, sp)
			}
		}
	}
	return nil
}

// ContainerSlots implements world.ItemRules.
func (c *Catalog) ContainerSlots(template uint32) (uint8, bool) {
	it := c.Items.Get(template)
	if it == nil || it.ContainerSlots == 0 {
		return 0, false
	}
	return it.ContainerSlots, true
}

// CanEquip implements world.ItemRules.
func (c *Catalog) CanEquip(template uint32, slot world.EquipSlot) bool {
	it := c.Items.Get(template)
	return it != nil && slices.Contains(it.EquipSlots, slot)
}

// ValidSpec reports whether a specialization belongs to class.
func (c *Catalog) ValidSpec(class uint8, specID uint32) bool {
	s := c.Traits.Spec(specID)
	return s != nil && s.ClassID == class
}

var _ world.ItemRules = (*Catalog)(nil)
