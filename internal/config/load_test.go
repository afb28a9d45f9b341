package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-warden/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"bot": {"token": "file-token"},
		"guild": {"id": "1", "archive_categories": ["a", "b"]},
		"moderation": {"archive_capacity": 25}
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, "1", cfg.Guild.ID)
	assert.Equal(t, []string{"a", "b"}, cfg.Guild.ArchiveCategories)
	assert.Equal(t, 25, cfg.Moderation.ArchiveCapacity)
	// Untouched sections keep their defaults.
	assert.Equal(t, 180*time.Second, cfg.ConfirmTimeout())
	assert.Equal(t, "https://discord.com/api/v10", cfg.Network.APIBaseURL)
	assert.Same(t, cfg, config.Get())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
guild:
  id: "42"
  moderator_role_id: "7"
  create_categories:
    - name: Party
      id: "100"
moderation:
  confirm_timeout_seconds: 30
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "42", cfg.Guild.ID)
	assert.Equal(t, "7", cfg.Guild.ModeratorRoleID)
	assert.Equal(t, []config.Category{{Name: "Party", ID: "100"}}, cfg.Guild.CreateCategories)
	assert.Equal(t, 30*time.Second, cfg.ConfirmTimeout())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("GUILD_ID", "env-guild")
	t.Setenv("DATABASE_PATH", "/tmp/env.db")
	t.Setenv("LOG_LEVEL", "debug")

	path := writeFile(t, "config.json", `{"bot": {"token": "file-token"}, "guild": {"id": "file-guild"}}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "env-guild", cfg.Guild.ID)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.Load(writeFile(t, "bad.json", `{"bot":`))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")

	cfg := config.LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Len(t, cfg.Guild.ArchiveCategories, 3)
	assert.Equal(t, 50, cfg.Moderation.ArchiveCapacity)
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bot.Token = "token"
	require.NoError(t, cfg.Validate())

	cfg.Guild.ArchiveCategories = nil
	cfg.Moderation.ConfirmTimeoutSeconds = 0
	cfg.Guild.CreateCategories = append(cfg.Guild.CreateCategories, config.Category{Name: "Empty"})

	err := cfg.Validate()
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "no archive categories")
	assert.Contains(t, err.Error(), "confirm timeout")
	assert.Contains(t, err.Error(), "create category 3")
}

func TestValidate_RequiresToken(t *testing.T) {
	err := config.DefaultConfig().Validate()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}
