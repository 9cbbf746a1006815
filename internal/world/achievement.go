package world

import (
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// Achievements holds earned achievements and the date each was earned.
type Achievements struct {
	set *dirty.Set[uint32, int64]
}

func newAchievements() *Achievements { return &Achievements{set: dirty.NewSet[uint32, int64]()} }

func (a *Achievements) Load(id uint32, date int64)      { a.set.Load(id, date) }
func (a *Achievements) Has(id uint32) bool              { return a.set.Has(id) }
func (a *Achievements) Len() int                        { return a.set.Len() }
func (a *Achievements) All() iter.Seq2[uint32, int64]   { return a.set.All() }
func (a *Achievements) Remove(id uint32) bool           { return a.set.Remove(id) }
func (a *Achievements) Records() Tracked[uint32, int64] { return a.set }

// Earn records an achievement once. Returns false if it was already earned.
func (a *Achievements) Earn(id uint32, date int64) bool {
	if a.set.Has(id) {
		return false
	}
	a.set.Add(id, date)
	return true
}
