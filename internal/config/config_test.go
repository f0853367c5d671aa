package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WritesTemplateAndDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.User.ID)
	assert.Equal(t, filepath.Join(dir, "journal.db"), cfg.Journal.DBPath)
	assert.InDelta(t, 2.0, cfg.Journal.DefaultRisk, 1e-9)
	assert.InDelta(t, 3.0, cfg.Risk.PerTradeRiskCap, 1e-9)
	assert.Equal(t, "info", cfg.Logging.Level)

	// A template config.toml is written for the next run.
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[user]
id = "trader"

[journal]
default_risk = 2.5

[risk]
daily_risk_cap = 6.0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "trader", cfg.User.ID)
	assert.InDelta(t, 2.5, cfg.Journal.DefaultRisk, 1e-9)
	assert.InDelta(t, 6.0, cfg.Risk.DailyRiskCap, 1e-9)
	// Unset keys keep their defaults.
	assert.Equal(t, 3, cfg.Risk.MaxTradesPerDay)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FXJOURNAL_USER", "env-user")
	t.Setenv("FXJOURNAL_DB", "/tmp/other.db")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.User.ID)
	assert.Equal(t, "/tmp/other.db", cfg.Journal.DBPath)
}

func TestLoad_InvalidRejected(t *testing.T) {
	dir := t.TempDir()
	content := `
[journal]
default_risk = 9.0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "default_risk")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Risk.DailyRiskCap = 1 // below per-trade cap
	assert.Error(t, cfg.Validate())
}

func TestSaveActiveAccount(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, SaveActiveAccount(dir, "acct-42"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "acct-42", cfg.User.ActiveAccount)
}
