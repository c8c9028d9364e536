package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "ollama"
model = "llama3"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hive.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Engine.ProcessingIntervalMinutes)
	assert.Equal(t, 60, cfg.Engine.RestoreIntervalMinutes)
	assert.Equal(t, 24, cfg.Engine.DecayIntervalHours)
	assert.Equal(t, 6, cfg.Engine.AllianceIntervalHours)
	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.Equal(t, 30, cfg.Engine.GatewayTimeoutSeconds)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
}

func TestLoad_MissingAPIKeyIsFatal(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "claude"
model = "claude-sonnet-4-20250514"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_UnsupportedProvider(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "carrier-pigeon"
model = "rock-dove"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "ollama"
model = "llama3"

[database]
path = "file.db"
`)
	t.Setenv("LLM_MODEL", "llama3:70b")
	t.Setenv("HIVE_DB_PATH", "other.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "llama3:70b", cfg.LLM.Model)
	assert.Equal(t, "other.db", cfg.Database.Path)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
