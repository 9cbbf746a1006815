package flush

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/core/dirty"
	"github.com/l1jgo/charsync/internal/persist"
	"github.com/l1jgo/charsync/internal/world"
)

// fakeStore records committed batches and fails on demand.
type fakeStore struct {
	fail    error
	batches [][]persist.Statement
}

func (s *fakeStore) Query(context.Context, persist.Statement, func(persist.Row) error) error {
	return nil
}

func (s *fakeStore) Exec(context.Context, persist.Statement) (int64, error) { return 0, nil }

func (s *fakeStore) Commit(ctx context.Context, batch []persist.Statement) error {
	if s.fail != nil {
		return s.fail
	}
	s.batches = append(s.batches, batch)
	return nil
}

func (s *fakeStore) Close() {}

func (s *fakeStore) names() []string {
	var out []string
	for _, b := range s.batches {
		for _, st := range b {
			out = append(out, st.Name())
		}
	}
	return out
}

func newFlusher() (*Flusher, *fakeStore, *fakeStore) {
	char, sess := &fakeStore{}, &fakeStore{}
	return New(persist.Stores{Character: char, Session: sess}, 0, nil, zap.NewNop()), char, sess
}

func loadedPlayer() *world.Player {
	return world.NewPlayer(world.CharacterData{GUID: 7, AccountID: 1, Name: "Garrosh", Level: 10})
}

func TestFlushIsIdempotent(t *testing.T) {
	f, char, _ := newFlusher()
	p := loadedPlayer()
	p.SetLevel(11)
	p.Skills.Learn(world.Skill{ID: 43, Value: 1, Max: 50})

	r, err := f.Flush(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Statements())
	assert.True(t, r.Results[persist.CharacterStore].Committed)
	assert.NotEmpty(t, r.CycleID)

	r, err = f.Flush(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Statements())
	assert.Len(t, char.batches, 1)
}

func TestNewThenRemovedIsElided(t *testing.T) {
	f, char, _ := newFlusher()
	p := loadedPlayer()
	p.Skills.Learn(world.Skill{ID: 43, Value: 1, Max: 50})
	require.True(t, p.Skills.Remove(43))

	r, err := f.Flush(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Statements())
	assert.Empty(t, char.batches)
}

func TestRemovedEmitsDeleteWithKeysOnly(t *testing.T) {
	f, char, _ := newFlusher()
	p := loadedPlayer()
	p.Skills.Load(world.Skill{ID: 43, Value: 10, Max: 50})
	require.True(t, p.Skills.Remove(43))

	_, err := f.Flush(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, char.batches, 1)
	require.Len(t, char.batches[0], 1)
	st := char.batches[0][0]
	assert.Equal(t, persist.SkillTable.Delete, st.ID)
	assert.Len(t, st.Args, persist.SkillTable.Keys)
	assert.Equal(t, 0, p.Skills.Records().PendingCount())
}

func TestMailDeleteCascades(t *testing.T) {
	f, char, _ := newFlusher()
	p := loadedPlayer()
	p.Mailbox.Load(world.Mail{ID: 5, Kind: world.MailSystem, Subject: "returned"})
	p.Inventory.LoadDetached(world.Item{GUID: 900, Template: 6948, Count: 1, MailID: 5})
	p.Inventory.LoadDetached(world.Item{GUID: 901, Template: 6948, Count: 1, MailID: 5})

	require.True(t, p.DeleteMail(5))
	_, err := f.Flush(context.Background(), p)
	require.NoError(t, err)

	// one cascade covers both attachments; the items emit nothing themselves
	assert.Equal(t, []string{
		persist.Prepare(persist.MailTable.Cascade, int64(7), int64(5)).Name(),
		persist.Prepare(persist.MailTable.Delete, int64(7), int64(5)).Name(),
	}, char.names())
	_, ok := p.Inventory.Get(900)
	assert.False(t, ok)
}

func TestPartialFailureKeepsMarkers(t *testing.T) {
	f, char, sess := newFlusher()
	sess.fail = errors.New("connection reset")
	p := loadedPlayer()
	p.SetLevel(11)
	require.True(t, p.Collections.AddToy(1973))

	r, err := f.Flush(context.Background(), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, sess.fail)
	assert.True(t, r.Results[persist.CharacterStore].Committed)
	assert.False(t, r.Results[persist.SessionStore].Committed)
	assert.Len(t, char.batches, 1)

	_, st := p.CharacterState()
	assert.Equal(t, dirty.Unchanged, st)
	assert.Equal(t, 1, p.Collections.ToyRecords().PendingCount())

	// the retry writes only what is still pending
	sess.fail = nil
	r, err = f.Flush(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Results[persist.CharacterStore].Statements)
	assert.Equal(t, 1, r.Results[persist.SessionStore].Statements)
	assert.Len(t, char.batches, 1)
	assert.Len(t, sess.batches, 1)
}

func TestChangedDuringFlushStaysDirty(t *testing.T) {
	f, _, _ := newFlusher()
	p := loadedPlayer()
	p.Skills.Load(world.Skill{ID: 43, Value: 10, Max: 50})
	p.Skills.SetValue(43, 11)

	ws := writers(p)
	var batch persist.Batch
	for _, w := range ws {
		w.emit(&batch, func(string, string) {})
	}
	// a write between snapshot and commit must survive the ack
	p.Skills.Remove(43)
	for _, w := range ws {
		w.ack()
	}
	assert.Equal(t, 1, p.Skills.Records().PendingCount())

	r, err := f.Flush(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Statements())
}

func TestFlushDeferredDuringTransfer(t *testing.T) {
	f, char, _ := newFlusher()
	p := loadedPlayer()
	p.SetLevel(11)
	p.BeginTransfer()

	_, err := f.Flush(context.Background(), p)
	assert.ErrorIs(t, err, ErrDeferred)
	assert.Empty(t, char.batches)
	assert.True(t, p.PendingOps().Has(world.OpSave))

	p.EndTransfer()
	require.True(t, p.RunPending())
	r, err := f.Flush(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Statements())
}

func TestCancelledContextStillCommits(t *testing.T) {
	f, char, _ := newFlusher()
	p := loadedPlayer()
	p.SetLevel(12)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Flush(ctx, p)
	require.NoError(t, err)
	assert.Len(t, char.batches, 1)
}

func TestPendingCountsStatements(t *testing.T) {
	p := loadedPlayer()
	assert.Equal(t, 0, Pending(p))
	p.SetMoney(100)
	p.Spells.Learn(2457)
	assert.Equal(t, 2, Pending(p))
	// counting does not consume anything
	assert.Equal(t, 2, Pending(p))
}
