package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"STORAGE_DRIVER", "STORAGE_BASE_PATH", "SQLITE_PATH", "GEMINI_API_KEY", "API_KEY",
		"GEMINI_MODEL", "GEMINI_THINKING_BUDGET", "ANALYSIS_TIMEOUT_SECONDS", "ANALYSIS_CONCURRENCY",
		"DISCORD_CHANNELS", "SYNC_INTERVAL_MINUTES", "LOG_LEVEL", "DB_PORT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "data/fieldops", cfg.Storage.BasePath)
	assert.Equal(t, "data/fieldops.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Gemini.Model)
	assert.Equal(t, 32768, cfg.Gemini.ThinkingBudget)
	assert.Equal(t, 120*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 4, cfg.Gemini.Concurrency)
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Empty(t, cfg.Discord.Channels)
	assert.Equal(t, 5, cfg.Sync.IntervalMinutes)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("ANALYSIS_CONCURRENCY", "not-a-number")
	t.Setenv("SYNC_INTERVAL_MINUTES", "15")
	t.Setenv("JIRA_CURRENT_SPRINT", "true")
	t.Setenv("JIRA_FIELD_VENDOR", "customfield_10300")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "legacy-key", cfg.Gemini.APIKey)
	assert.Equal(t, 4, cfg.Gemini.Concurrency)
	assert.Equal(t, 15, cfg.Sync.IntervalMinutes)
	assert.True(t, cfg.Jira.CurrentSprint)
	assert.Equal(t, "customfield_10300", cfg.Jira.Fields.Vendor)

	t.Setenv("GEMINI_API_KEY", "primary")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Gemini.APIKey)
}

func TestParseDiscordChannels(t *testing.T) {
	t.Setenv("DISCORD_CHANNELS", "QuickFix Systems:111, Reliable Infra : 222 ,broken,:333,Empty:")

	channels := parseDiscordChannels()
	assert.Equal(t, map[string]string{
		"QuickFix Systems": "111",
		"Reliable Infra":   "222",
	}, channels)
}
