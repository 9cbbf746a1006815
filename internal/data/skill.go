package data

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// SkillRangeType decides how a skill line's value and max are derived.
type SkillRangeType uint8

const (
	// SkillRangeFixed lines always sit at their catalog max.
	SkillRangeFixed SkillRangeType = iota
	// SkillRangeLevel lines cap at 5 points per character level.
	SkillRangeLevel
	// SkillRangeMono lines are either known (1/1) or not.
	SkillRangeMono
)

// SkillLineInfo holds a skill line template.
type SkillLineInfo struct {
	SkillID    uint32
	Name       string
	Range      SkillRangeType
	Max        uint16
	RaceMask   uint32 // 0 = all races
	ClassMask  uint32 // 0 = all classes
	AutoSpells []uint32
}

// Available reports whether a race/class pair may know this line.
func (s *SkillLineInfo) Available(race, class uint8) bool {
	if s.RaceMask != 0 && s.RaceMask&(1<<(race-1)) == 0 {
		return false
	}
	if s.ClassMask != 0 && s.ClassMask&(1<<(class-1)) == 0 {
		return false
	}
	return true
}

// Bounds returns the value/max the line should have at level.
func (s *SkillLineInfo) Bounds(value uint16, level uint8) (uint16, uint16) {
	switch s.Range {
	case SkillRangeMono:
		return 1, 1
	case SkillRangeLevel:
		maxValue := uint16(level) * 5
		return min(max(value, 1), maxValue), maxValue
	default:
		return s.Max, s.Max
	}
}

// SkillTable holds skill lines indexed by SkillID.
type SkillTable struct {
	skills map[uint32]*SkillLineInfo
}

// Get returns a skill line by ID, or nil if not found.
func (t *SkillTable) Get(skillID uint32) *SkillLineInfo {
	return t.skills[skillID]
}

// Count returns total loaded skill lines.
func (t *SkillTable) Count() int {
	return len(t.skills)
}

// --- YAML loading ---

type skillLineEntry struct {
	SkillID    uint32   `yaml:"skill_id"`
	Name       string   `yaml:"name"`
	Range      string   `yaml:"range"` // "fixed", "level", "mono"
	Max        uint16   `yaml:"max"`
	Races      []uint8  `yaml:"races"`
	Classes    []uint8  `yaml:"classes"`
	AutoSpells []uint32 `yaml:"auto_spells"`
}

type skillLineListFile struct {
	Skills []skillLineEntry `yaml:"skills"`
}

func loadSkillTable(fsys fs.FS, path string) (*SkillTable, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read skills: %w", err)
	}
	var f skillLineListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse skills: %w", err)
	}
	t := &SkillTable{skills: make(map[uint32]*SkillLineInfo, len(f.Skills))}
	for i := range f.Skills {
		e := &f.Skills[i]
		info := &SkillLineInfo{
			SkillID:    e.SkillID,
			Name:       e.Name,
			Max:        e.Max,
			AutoSpells: e.AutoSpells,
		}
		switch e.Range {
		case "", "fixed":
			info.Range = SkillRangeFixed
		case "level":
			info.Range = SkillRangeLevel
		case "mono":
			info.Range = SkillRangeMono
		default:
			return nil, fmt.Errorf("skill %d: unknown range %q", e.SkillID, e.Range)
		}
		for _, r := range e.Races {
			info.RaceMask |= 1 << (r - 1)
		}
		for _, c := range e.Classes {
			info.ClassMask |= 1 << (c - 1)
		}
		t.skills[e.SkillID] = info
	}
	return t, nil
}
