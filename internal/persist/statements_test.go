package persist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryStatementIsRegistered(t *testing.T) {
	for id := SelCharacter; id <= DelHeirloom; id++ {
		def, ok := statements[id]
		require.Truef(t, ok, "statement %d not registered", id)
		assert.NotEmpty(t, def.name)
		assert.NotEmpty(t, def.sql)
	}
	assert.Len(t, statements, int(DelHeirloom))
}

func TestTablesBindMatchingArguments(t *testing.T) {
	tables := []Table{
		CharacterTable, HomeBindTable, AchievementTable, SkillTable, SpellTable, CurrencyTable,
		ItemTable, VoidStorageTable, MailTable, EquipmentSetTable, AuraTable, AuraEffectTable,
		QuestStatusTable, QuestObjectiveTable, QuestRewardedTable, TraitConfigTable, TraitEntryTable,
		PetTable, ActionButtonTable, ToyTable, MountTable, HeirloomTable,
	}
	for _, tb := range tables {
		ins := Prepare(tb.Insert).SQL()
		upd := Prepare(tb.Update).SQL()
		del := Prepare(tb.Delete).SQL()
		n := strings.Count(ins, "$")
		assert.Equalf(t, n, strings.Count(upd, "$"), "%s: update binds a different argument list", tb.Name)
		assert.Equalf(t, tb.Keys, strings.Count(del, "$"), "%s: delete key count", tb.Name)
		assert.Equal(t, Prepare(tb.Insert).Store(), Prepare(tb.Delete).Store())
		if tb.Cascade != 0 {
			assert.Equalf(t, tb.Keys, strings.Count(Prepare(tb.Cascade).SQL(), "$"), "%s: cascade key count", tb.Name)
		}
	}
	assert.Equal(t, SessionStore, Prepare(ToyTable.Insert).Store())
	assert.Equal(t, CharacterStore, Prepare(ItemTable.Insert).Store())
}

func TestUpdateSQLKeepsInsertPositions(t *testing.T) {
	got := updateSQL("t", 2, []string{"guid", "id", "a", "b"})
	assert.Equal(t, "UPDATE t SET a = $3, b = $4 WHERE guid = $1 AND id = $2", got)
	assert.Equal(t, "INSERT INTO t (guid, id, a) VALUES ($1, $2, $3)", insertSQL("t", []string{"guid", "id", "a"}))
}

func TestSQLitePlaceholders(t *testing.T) {
	assert.Equal(t, "UPDATE t SET a = ?3 WHERE guid = ?1 AND id = ?12", sqliteSQL("UPDATE t SET a = $3 WHERE guid = $1 AND id = $12"))
}

func TestBatchPartitionsByStore(t *testing.T) {
	var b Batch
	b.Add(Prepare(DelItem, int64(1), int64(2)))
	b.Add(Prepare(InsToy, int64(7), int64(3), int64(0)))
	b.Add(Prepare(DelMail, int64(1), int64(5)))

	require.Len(t, b.For(CharacterStore), 2)
	assert.Equal(t, DelItem, b.For(CharacterStore)[0].ID)
	assert.Equal(t, DelMail, b.For(CharacterStore)[1].ID)
	require.Len(t, b.For(SessionStore), 1)
	assert.Equal(t, 3, b.Len())
}

func TestPrepareUnknownPanics(t *testing.T) {
	assert.Panics(t, func() { Prepare(StmtID(60000)) })
}
