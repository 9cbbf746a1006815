package data

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// TraitNodeEntry is one selectable choice of a talent node.
type TraitNodeEntry struct {
	EntryID uint32
	MaxRank uint8
	SpellID uint32
	Stamina int32 // per rank
}

// TraitNode is one node of a specialization's talent tree.
type TraitNode struct {
	NodeID  uint32
	Entries map[uint32]*TraitNodeEntry
}

// TraitGrant is an entry every config of the specialization starts with.
type TraitGrant struct {
	NodeID  uint32
	EntryID uint32
	Rank    uint8
}

// SpecInfo holds a specialization and its talent tree.
type SpecInfo struct {
	SpecID  uint32
	ClassID uint8
	Name    string
	Nodes   map[uint32]*TraitNode
	Granted []TraitGrant
}

// Entry returns a node entry, or nil if the tree has no such node/entry.
func (s *SpecInfo) Entry(nodeID, entryID uint32) *TraitNodeEntry {
	n := s.Nodes[nodeID]
	if n == nil {
		return nil
	}
	return n.Entries[entryID]
}

// TraitTable holds specializations indexed by SpecID.
type TraitTable struct {
	specs map[uint32]*SpecInfo
}

// Spec returns a specialization, or nil if not found.
func (t *TraitTable) Spec(id uint32) *SpecInfo { return t.specs[id] }

// Count returns total loaded specializations.
func (t *TraitTable) Count() int { return len(t.specs) }

// --- YAML loading ---

type traitEntryEntry struct {
	EntryID uint32 `yaml:"entry_id"`
	MaxRank uint8  `yaml:"max_rank"`
	SpellID uint32 `yaml:"spell_id"`
	Stamina int32  `yaml:"stamina"`
}

type traitNodeEntry struct {
	NodeID  uint32            `yaml:"node_id"`
	Entries []traitEntryEntry `yaml:"entries"`
}

type specEntry struct {
	SpecID  uint32           `yaml:"spec_id"`
	ClassID uint8            `yaml:"class_id"`
	Name    string           `yaml:"name"`
	Nodes   []traitNodeEntry `yaml:"nodes"`
	Granted []struct {
		Node  uint32 `yaml:"node"`
		Entry uint32 `yaml:"entry"`
		Rank  uint8  `yaml:"rank"`
	} `yaml:"granted"`
}

type specListFile struct {
	Specs []specEntry `yaml:"specs"`
}

func loadTraitTable(fsys fs.FS, path string) (*TraitTable, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read traits: %w", err)
	}
	var f specListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse traits: %w", err)
	}
	t := &TraitTable{specs: make(map[uint32]*SpecInfo, len(f.Specs))}
	for i := range f.Specs {
		e := &f.Specs[i]
		spec := &SpecInfo{
			SpecID:  e.SpecID,
			ClassID: e.ClassID,
			Name:    e.Name,
			Nodes:   make(map[uint32]*TraitNode, len(e.Nodes)),
		}
		for _, n := range e.Nodes {
			node := &TraitNode{NodeID: n.NodeID, Entries: make(map[uint32]*TraitNodeEntry, len(n.Entries))}
			for _, en := range n.Entries {
				node.Entries[en.EntryID] = &TraitNodeEntry{
					EntryID: en.EntryID,
					MaxRank: max(en.MaxRank, 1),
					SpellID: en.SpellID,
					Stamina: en.Stamina,
				}
			}
			spec.Nodes[n.NodeID] = node
		}
		for _, g := range e.Granted {
			if spec.Entry(g.Node, g.Entry) == nil {
				return nil, fmt.Errorf("spec %d: granted entry %d/%d not in tree", e.SpecID, g.Node, g.Entry)
			}
			spec.Granted = append(spec.Granted, TraitGrant{NodeID: g.Node, EntryID: g.Entry, Rank: max(g.Rank, 1)})
		}
		t.specs[e.SpecID] = spec
	}
	return t, nil
}
