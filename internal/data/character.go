package data

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/charsync/internal/world"
)

// RaceInfo holds a playable race.
type RaceInfo struct {
	RaceID  uint8
	Name    string
	MaxSkin uint8 // appearance choices are [0, MaxSkin]
	MaxFace uint8
}

// ClassInfo holds a playable class and its stat bases.
type ClassInfo struct {
	ClassID        uint8
	Name           string
	Powers         []int // valid power indices
	BaseHealth     uint32
	HealthPerLevel uint32
	BasePower      map[int]uint32 // per power index
	DefaultSpec    uint32
}

// HasPower reports whether idx is a valid power index for the class.
func (c *ClassInfo) HasPower(idx int) bool {
	for _, p := range c.Powers {
		if p == idx {
			return true
		}
	}
	return false
}

// CreateInfo is the starting state of a race/class pair.
type CreateInfo struct {
	Race   uint8
	Class  uint8
	Start  world.Position
	Skills []uint32
	Spells []uint32
}

type raceClassKey struct {
	race, class uint8
}

// CharacterTable holds races, classes, valid combinations and the XP curve.
type CharacterTable struct {
	races   map[uint8]*RaceInfo
	classes map[uint8]*ClassInfo
	create  map[raceClassKey]*CreateInfo
	xp      []uint32 // xp[level-1] = xp needed to reach level+1
}

// Race returns a race by ID, or nil if not found.
func (t *CharacterTable) Race(id uint8) *RaceInfo { return t.races[id] }

// Class returns a class by ID, or nil if not found.
func (t *CharacterTable) Class(id uint8) *ClassInfo { return t.classes[id] }

// CreateInfo returns the start data of a race/class pair, or nil if the pair is invalid.
func (t *CharacterTable) CreateInfo(race, class uint8) *CreateInfo {
	return t.create[raceClassKey{race, class}]
}

// XPForNextLevel returns the XP needed to advance from level; 0 at max level.
func (t *CharacterTable) XPForNextLevel(level uint8) uint32 {
	if level == 0 || int(level) > len(t.xp) {
		return 0
	}
	return t.xp[level-1]
}

// MaxLevel returns the highest attainable level.
func (t *CharacterTable) MaxLevel() uint8 { return uint8(len(t.xp) + 1) }

// --- YAML loading ---

type raceEntry struct {
	RaceID  uint8  `yaml:"race_id"`
	Name    string `yaml:"name"`
	MaxSkin uint8  `yaml:"max_skin"`
	MaxFace uint8  `yaml:"max_face"`
}

type classEntry struct {
	ClassID        uint8          `yaml:"class_id"`
	Name           string         `yaml:"name"`
	Powers         []int          `yaml:"powers"`
	BaseHealth     uint32         `yaml:"base_health"`
	HealthPerLevel uint32         `yaml:"health_per_level"`
	BasePower      map[int]uint32 `yaml:"base_power"`
	DefaultSpec    uint32         `yaml:"default_spec"`
}

type positionEntry struct {
	Map  uint32  `yaml:"map"`
	Zone uint32  `yaml:"zone"`
	X    float32 `yaml:"x"`
	Y    float32 `yaml:"y"`
	Z    float32 `yaml:"z"`
	O    float32 `yaml:"o"`
}

type createEntry struct {
	Race   uint8         `yaml:"race"`
	Class  uint8         `yaml:"class"`
	Start  positionEntry `yaml:"start"`
	Skills []uint32      `yaml:"skills"`
	Spells []uint32      `yaml:"spells"`
}

type characterFile struct {
	Races   []raceEntry   `yaml:"races"`
	Classes []classEntry  `yaml:"classes"`
	Create  []createEntry `yaml:"create"`
	XP      []uint32      `yaml:"xp_per_level"`
}

func loadCharacterTable(fsys fs.FS, path string) (*CharacterTable, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read characters: %w", err)
	}
	var f characterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse characters: %w", err)
	}
	t := &CharacterTable{
		races:   make(map[uint8]*RaceInfo, len(f.Races)),
		classes: make(map[uint8]*ClassInfo, len(f.Classes)),
		create:  make(map[raceClassKey]*CreateInfo, len(f.Create)),
		xp:      f.XP,
	}
	for i := range f.Races {
		e := &f.Races[i]
		t.races[e.RaceID] = &RaceInfo{RaceID: e.RaceID, Name: e.Name, MaxSkin: e.MaxSkin, MaxFace: e.MaxFace}
	}
	for i := range f.Classes {
		e := &f.Classes[i]
		for _, p := range e.Powers {
			if p < 0 || p >= world.MaxPowers {
				return nil, fmt.Errorf("class %d: power index %d out of range", e.ClassID, p)
			}
		}
		t.classes[e.ClassID] = &ClassInfo{
			ClassID:        e.ClassID,
			Name:           e.Name,
			Powers:         e.Powers,
			BaseHealth:     e.BaseHealth,
			HealthPerLevel: e.HealthPerLevel,
			BasePower:      e.BasePower,
			DefaultSpec:    e.DefaultSpec,
		}
	}
	for i := range f.Create {
		e := &f.Create[i]
		if t.races[e.Race] == nil || t.classes[e.Class] == nil {
			return nil, fmt.Errorf("create info %d/%d: unknown race or class", e.Race, e.Class)
		}
		t.create[raceClassKey{e.Race, e.Class}] = &CreateInfo{
			Race:  e.Race,
			Class: e.Class,
			Start: world.Position{
				MapID: e.Start.Map, ZoneID: e.Start.Zone,
				X: e.Start.X, Y: e.Start.Y, Z: e.Start.Z, O: e.Start.O,
			},
			Skills: e.Skills,
			Spells: e.Spells,
		}
	}
	return t, nil
}
