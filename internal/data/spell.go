package data

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// SpellInfo holds the aura-relevant part of a spell definition.
type SpellInfo struct {
	SpellID        uint32
	Name           string
	DurationMs     int32 // -1 = permanent
	ProcCharges    uint8
	MaxStack       uint8
	Negative       bool // debuff; keeps ticking while offline
	ExpiresOffline bool // real-time buff; keeps ticking while offline
	Ghost          bool // grants ghost form
	Passive        bool
	Mount          bool
	Stamina        int32
}

// DecaysOffline reports whether an aura of this spell loses duration while
// its owner is logged out.
func (s *SpellInfo) DecaysOffline() bool { return s.Negative || s.ExpiresOffline }

// SpellTable holds spell definitions indexed by SpellID.
type SpellTable struct {
	spells map[uint32]*SpellInfo
}

// Get returns a spell by ID, or nil if not found.
func (t *SpellTable) Get(spellID uint32) *SpellInfo {
	return t.spells[spellID]
}

// Count returns total loaded spells.
func (t *SpellTable) Count() int {
	return len(t.spells)
}

// --- YAML loading ---

type spellEntry struct {
	SpellID        uint32 `yaml:"spell_id"`
	Name           string `yaml:"name"`
	Duration       int32  `yaml:"duration_ms"`
	ProcCharges    uint8  `yaml:"proc_charges"`
	MaxStack       uint8  `yaml:"max_stack"`
	Negative       bool   `yaml:"negative"`
	ExpiresOffline bool   `yaml:"expires_offline"`
	Ghost          bool   `yaml:"ghost"`
	Passive        bool   `yaml:"passive"`
	Mount          bool   `yaml:"mount"`
	Stamina        int32  `yaml:"stamina"`
}

type spellListFile struct {
	Spells []spellEntry `yaml:"spells"`
}

func loadSpellTable(fsys fs.FS, path string) (*SpellTable, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read spells: %w", err)
	}
	var f spellListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spells: %w", err)
	}
	t := &SpellTable{spells: make(map[uint32]*SpellInfo, len(f.Spells))}
	for i := range f.Spells {
		e := &f.Spells[i]
		t.spells[e.SpellID] = &SpellInfo{
			SpellID:        e.SpellID,
			Name:           e.Name,
			DurationMs:     e.Duration,
			ProcCharges:    e.ProcCharges,
			MaxStack:       max(e.MaxStack, 1),
			Negative:       e.Negative,
			ExpiresOffline: e.ExpiresOffline,
			Ghost:          e.Ghost,
			Passive:        e.Passive,
			Mount:          e.Mount,
			Stamina:        e.Stamina,
		}
	}
	return t, nil
}
