package data

import (
	"fmt"
	"io/fs"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/charsync/internal/world"
)

// MapInfo holds metadata for a single map, loaded from maps.yaml.
type MapInfo struct {
	MapID     uint32   `yaml:"map_id"`
	Name      string   `yaml:"name"`
	Instanced bool     `yaml:"instanced"`
	Zones     []uint32 `yaml:"zones"`
	RestZones []uint32 `yaml:"rest_zones"` // zones that count as a rest area
	MinX      float32  `yaml:"min_x"`
	MaxX      float32  `yaml:"max_x"`
	MinY      float32  `yaml:"min_y"`
	MaxY      float32  `yaml:"max_y"`
}

// MapDataTable provides map metadata lookups.
type MapDataTable struct {
	maps map[uint32]*MapInfo
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

func loadMapData(fsys fs.FS, path string) (*MapDataTable, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read maps: %w", err)
	}
	var f mapListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse maps: %w", err)
	}
	t := &MapDataTable{maps: make(map[uint32]*MapInfo, len(f.Maps))}
	for i := range f.Maps {
		t.maps[f.Maps[i].MapID] = &f.Maps[i]
	}
	return t, nil
}

// Count returns total loaded maps.
func (t *MapDataTable) Count() int {
	return len(t.maps)
}

// GetInfo returns map metadata, or nil if the map is unknown.
func (t *MapDataTable) GetInfo(mapID uint32) *MapInfo {
	return t.maps[mapID]
}

// IsValid reports whether pos lies on a known map, in one of its zones and
// inside its bounds. Maps without bounds accept any coordinate.
func (t *MapDataTable) IsValid(pos world.Position) bool {
	m := t.maps[pos.MapID]
	if m == nil {
		return false
	}
	if pos.ZoneID != 0 && len(m.Zones) > 0 && !slices.Contains(m.Zones, pos.ZoneID) {
		return false
	}
	if m.MaxX > m.MinX && (pos.X < m.MinX || pos.X > m.MaxX) {
		return false
	}
	if m.MaxY > m.MinY && (pos.Y < m.MinY || pos.Y > m.MaxY) {
		return false
	}
	return true
}

// IsRestArea reports whether a position counts as resting.
func (t *MapDataTable) IsRestArea(pos world.Position) bool {
	m := t.maps[pos.MapID]
	return m != nil && slices.Contains(m.RestZones, pos.ZoneID)
}
