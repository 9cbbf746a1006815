package world

import (
	"cmp"
	"iter"
	"slices"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// MaxQuestLogSize bounds the quest log; slots are dense in [0, MaxQuestLogSize).
const MaxQuestLogSize = 35

// QuestState is the progress of a quest in the log.
type QuestState uint8

const (
	QuestNone QuestState = iota
	QuestComplete
	QuestIncomplete
	QuestFailed
)

// QuestStatus is one quest log entry.
type QuestStatus struct {
	QuestID  uint32
	Slot     uint8
	State    QuestState
	Explored bool
	AcceptAt int64
	EndTime  int64
}

// ObjectiveKey identifies one objective counter of a quest.
type ObjectiveKey struct {
	QuestID uint32
	Index   uint8 // storage index within the quest's objective list
}

func compareObjective(a, b ObjectiveKey) int {
	if c := cmp.Compare(a.QuestID, b.QuestID); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// Quests holds the quest log, objective counters and rewarded quests.
type Quests struct {
	status     *dirty.Set[uint32, QuestStatus]
	objectives *dirty.Set[ObjectiveKey, int32]
	rewarded   *dirty.Set[uint32, struct{}]
}

func newQuests() *Quests {
	return &Quests{
		status:     dirty.NewSet[uint32, QuestStatus](),
		objectives: dirty.NewSetFunc[ObjectiveKey, int32](compareObjective),
		rewarded:   dirty.NewSet[uint32, struct{}](),
	}
}

func (q *Quests) LoadStatus(st QuestStatus)             { q.status.Load(st.QuestID, st) }
func (q *Quests) LoadObjective(k ObjectiveKey, v int32) { q.objectives.Load(k, v) }
func (q *Quests) LoadRewarded(id uint32)                { q.rewarded.Load(id, struct{}{}) }

// Status returns a quest log entry.
func (q *Quests) Status(id uint32) (QuestStatus, bool) { return q.status.Get(id) }

// Objective returns an objective counter.
func (q *Quests) Objective(k ObjectiveKey) (int32, bool) { return q.objectives.Get(k) }

// Rewarded reports whether a quest was turned in.
func (q *Quests) Rewarded(id uint32) bool { return q.rewarded.Has(id) }

// InLog iterates the quest log in quest id order.
func (q *Quests) InLog() iter.Seq2[uint32, QuestStatus] { return q.status.All() }

// LogSize returns the number of quests in the log.
func (q *Quests) LogSize() int { return q.status.Len() }

// Accept adds a quest in the first free slot. Returns false if the log is full.
func (q *Quests) Accept(id uint32, now int64) bool {
	if q.status.Has(id) {
		return false
	}
	used := make(map[uint8]bool, q.status.Len())
	for _, st := range q.status.All() {
		used[st.Slot] = true
	}
	for slot := uint8(0); slot < MaxQuestLogSize; slot++ {
		if !used[slot] {
			q.status.Add(id, QuestStatus{QuestID: id, Slot: slot, State: QuestIncomplete, AcceptAt: now})
			return true
		}
	}
	return false
}

// SetState changes a quest's progress.
func (q *Quests) SetState(id uint32, s QuestState) bool {
	st, ok := q.status.Get(id)
	if !ok || st.State == s {
		return false
	}
	return q.status.Update(id, func(v *QuestStatus) { v.State = s })
}

// SetObjective writes an objective counter.
func (q *Quests) SetObjective(k ObjectiveKey, v int32) {
	if cur, ok := q.objectives.Get(k); ok && cur == v {
		return
	}
	q.objectives.Add(k, v)
}

// Abandon removes a quest and its objective counters.
func (q *Quests) Abandon(id uint32) bool {
	if !q.status.Remove(id) {
		return false
	}
	q.removeObjectives(id)
	return true
}

// Reward moves a quest from the log into the rewarded set.
func (q *Quests) Reward(id uint32) {
	q.Abandon(id)
	if !q.rewarded.Has(id) {
		q.rewarded.Add(id, struct{}{})
	}
}

// RemoveObjective drops one objective counter.
func (q *Quests) RemoveObjective(k ObjectiveKey) bool { return q.objectives.Remove(k) }

// RemoveRewarded forgets a turned-in quest.
func (q *Quests) RemoveRewarded(id uint32) bool { return q.rewarded.Remove(id) }

// Compact renumbers log slots densely from zero in current slot order and
// drops entries that do not fit. Returns the quest ids that were dropped.
func (q *Quests) Compact() []uint32 {
	type entry struct {
		id   uint32
		slot uint8
	}
	var entries []entry
	for id, st := range q.status.All() {
		entries = append(entries, entry{id, st.Slot})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.slot, b.slot); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	var dropped []uint32
	for i, e := range entries {
		if i >= MaxQuestLogSize {
			q.Abandon(e.id)
			dropped = append(dropped, e.id)
			continue
		}
		if e.slot != uint8(i) {
			slot := uint8(i)
			q.status.Update(e.id, func(v *QuestStatus) { v.Slot = slot })
		}
	}
	return dropped
}

func (q *Quests) removeObjectives(id uint32) {
	for k := range q.objectives.All() {
		if k.QuestID == id {
			q.objectives.Remove(k)
		}
	}
}

func (q *Quests) StatusRecords() Tracked[uint32, QuestStatus]    { return q.status }
func (q *Quests) ObjectiveRecords() Tracked[ObjectiveKey, int32] { return q.objectives }
func (q *Quests) RewardedRecords() Tracked[uint32, struct{}]     { return q.rewarded }
