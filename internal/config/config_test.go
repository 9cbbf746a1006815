package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[character_db]
driver = "sqlite"
dsn = "file:chars.db"

[repair]
max_mail_attachments = 6

[rest]
wilderness_rate = 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.CharacterDB.Driver)
	assert.Equal(t, "file:chars.db", cfg.CharacterDB.DSN)
	assert.Equal(t, 6, cfg.Repair.MaxMailAttachments)
	assert.Equal(t, 15*time.Minute, cfg.Repair.ConjuredExpiry)
	assert.Equal(t, 0.5, cfg.Rest.WildernessRate)
	assert.Equal(t, 1.0, cfg.Rest.RestAreaRate)
	assert.Equal(t, "postgres", cfg.SessionDB.Driver)
}

func TestParseEnvOverridesDSN(t *testing.T) {
	t.Setenv("CHARSYNC_SESSION_DSN", "postgres://other/session")

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://other/session", cfg.SessionDB.DSN)
}

func TestSaveIntervalTicks(t *testing.T) {
	p := PersistConfig{TickRate: 200 * time.Millisecond, SaveInterval: 5 * time.Minute}
	assert.Equal(t, 1500, p.SaveIntervalTicks())

	p.SaveInterval = time.Millisecond
	assert.Equal(t, 1, p.SaveIntervalTicks())

	p.TickRate = 0
	assert.Equal(t, 1, p.SaveIntervalTicks())
}
