package data

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/charsync/internal/world"
)

// QuestInfo holds a quest template.
type QuestInfo struct {
	QuestID    uint32
	Name       string
	Objectives uint8 // number of objective storage slots
	Weekly     bool
}

// CurrencyInfo holds a currency definition.
type CurrencyInfo struct {
	CurrencyID uint32
	Name       string
	Max        uint32
	WeeklyMax  uint32
}

// Caps returns the limits applied by world.Currencies.
func (c *CurrencyInfo) Caps() world.CurrencyCaps {
	return world.CurrencyCaps{Max: c.Max, Weekly: c.WeeklyMax}
}

// ProgressTable holds quests, achievements and currencies.
type ProgressTable struct {
	quests       map[uint32]*QuestInfo
	achievements map[uint32]string
	currencies   map[uint32]*CurrencyInfo
}

func (t *ProgressTable) Quest(id uint32) *QuestInfo       { return t.quests[id] }
func (t *ProgressTable) Currency(id uint32) *CurrencyInfo { return t.currencies[id] }

// Achievement reports whether an achievement id exists.
func (t *ProgressTable) Achievement(id uint32) bool {
	_, ok := t.achievements[id]
	return ok
}

// --- YAML loading ---

type questEntry struct {
	QuestID    uint32 `yaml:"quest_id"`
	Name       string `yaml:"name"`
	Objectives uint8  `yaml:"objectives"`
	Weekly     bool   `yaml:"weekly"`
}

type achievementEntry struct {
	ID   uint32 `yaml:"id"`
	Name string `yaml:"name"`
}

type currencyEntry struct {
	CurrencyID uint32 `yaml:"currency_id"`
	Name       string `yaml:"name"`
	Max        uint32 `yaml:"max"`
	WeeklyMax  uint32 `yaml:"weekly_max"`
}

type progressFile struct {
	Quests       []questEntry       `yaml:"quests"`
	Achievements []achievementEntry `yaml:"achievements"`
	Currencies   []currencyEntry    `yaml:"currencies"`
}

func loadProgressTable(fsys fs.FS, path string) (*ProgressTable, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	var f progressFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse progress: %w", err)
	}
	t := &ProgressTable{
		quests:       make(map[uint32]*QuestInfo, len(f.Quests)),
		achievements: make(map[uint32]string, len(f.Achievements)),
		currencies:   make(map[uint32]*CurrencyInfo, len(f.Currencies)),
	}
	for _, e := range f.Quests {
		t.quests[e.QuestID] = &QuestInfo{QuestID: e.QuestID, Name: e.Name, Objectives: e.Objectives, Weekly: e.Weekly}
	}
	for _, e := range f.Achievements {
		t.achievements[e.ID] = e.Name
	}
	for _, e := range f.Currencies {
		t.currencies[e.CurrencyID] = &CurrencyInfo{CurrencyID: e.CurrencyID, Name: e.Name, Max: e.Max, WeeklyMax: e.WeeklyMax}
	}
	return t, nil
}
