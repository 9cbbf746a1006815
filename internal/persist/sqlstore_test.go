package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db, true, zap.NewNop()), mock
}

func TestCommitRunsBatchInOneTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	del := Prepare(DelItem, int64(1), int64(10))
	ach := Prepare(InsAchievement, int64(1), int64(6), int64(1700000000))

	mock.ExpectBegin()
	mock.ExpectExec(sqliteSQL(del.SQL())).WithArgs(int64(1), int64(10)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqliteSQL(ach.SQL())).WithArgs(int64(1), int64(6), int64(1700000000)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Commit(context.Background(), []Statement{del, ach}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitRollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)
	del := Prepare(DelItem, int64(1), int64(10))
	ach := Prepare(InsAchievement, int64(1), int64(6), int64(0))

	mock.ExpectBegin()
	mock.ExpectExec(sqliteSQL(del.SQL())).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqliteSQL(ach.SQL())).WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err := s.Commit(context.Background(), []Statement{del, ach})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ins_achievement")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmptyCommitTouchesNothing(t *testing.T) {
	s, mock := newMockStore(t)
	require.NoError(t, s.Commit(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryOneNoRows(t *testing.T) {
	s, mock := newMockStore(t)
	st := Prepare(SelCharacterByName, "nobody")
	mock.ExpectQuery(sqliteSQL(st.SQL())).WithArgs("nobody").WillReturnRows(sqlmock.NewRows([]string{"guid"}))

	var guid int64
	err := QueryOne(context.Background(), s, st, &guid)
	assert.ErrorIs(t, err, ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
