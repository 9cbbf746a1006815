package world

import (
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// MaxActionButtons bounds the button index.
const MaxActionButtons = 180

// ActionType is what an action button triggers.
type ActionType uint8

const (
	ActionSpell ActionType = 0x00
	ActionMacro ActionType = 0x40
	ActionItem  ActionType = 0x80
)

// ActionButton is one bar button binding.
type ActionButton struct {
	Action uint32
	Type   ActionType
}

// ActionButtons holds button bindings for the active specialization.
type ActionButtons struct {
	set *dirty.Set[uint8, ActionButton]
}

func newActionButtons() *ActionButtons {
	return &ActionButtons{set: dirty.NewSet[uint8, ActionButton]()}
}

func (a *ActionButtons) Load(button uint8, b ActionButton)     { a.set.Load(button, b) }
func (a *ActionButtons) Get(button uint8) (ActionButton, bool) { return a.set.Get(button) }
func (a *ActionButtons) Len() int                              { return a.set.Len() }
func (a *ActionButtons) All() iter.Seq2[uint8, ActionButton]   { return a.set.All() }
func (a *ActionButtons) Clear(button uint8) bool               { return a.set.Remove(button) }
func (a *ActionButtons) Records() Tracked[uint8, ActionButton] { return a.set }

// Set binds a button. Returns false for an out-of-range index.
func (a *ActionButtons) Set(button uint8, b ActionButton) bool {
	if button >= MaxActionButtons {
		return false
	}
	if cur, ok := a.set.Get(button); ok && cur == b {
		return true
	}
	a.set.Add(button, b)
	return true
}
