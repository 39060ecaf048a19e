package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
	assert.Equal(t, 30, cfg.MaxTurns)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, 1, cfg.Runs)
	assert.NotEmpty(t, cfg.SeedMessage)
	assert.NotEmpty(t, cfg.SystemA)
	assert.NotEmpty(t, cfg.SystemB)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	raw := []byte("provider: mock\nmax_turns: 6\nruns: 3\n")
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderMock, cfg.Provider)
	assert.Equal(t, 6, cfg.MaxTurns)
	assert.Equal(t, 3, cfg.Runs)
	// untouched fields keep their defaults
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
	assert.Equal(t, 1024, cfg.MaxTokens)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_IgnoresUnknownKeys(t *testing.T) {
	raw := []byte("model: m1\nretired_knob: 42\n")
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "m1", cfg.Model)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Provider = ProviderOpenAI
	cfg.Model = "gpt-4o-mini"
	cfg.Runs = 5

	path := filepath.Join(t.TempDir(), "nested", "experiment.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DUET_PROVIDER", "mock")
	t.Setenv("DUET_MODEL", "env-model")
	t.Setenv("DUET_MAX_TURNS", "12")
	t.Setenv("DUET_OUTPUT_DIR", "/tmp/duet-out")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, ProviderMock, cfg.Provider)
	assert.Equal(t, "env-model", cfg.Model)
	assert.Equal(t, 12, cfg.MaxTurns)
	assert.Equal(t, "/tmp/duet-out", cfg.OutputDir)
	// unrelated fields untouched
	assert.Equal(t, 1024, cfg.MaxTokens)
}

func TestApplyEnv_IgnoresUnparsableInt(t *testing.T) {
	t.Setenv("DUET_MAX_TURNS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 30, cfg.MaxTurns)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Provider = "cohere"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Runs = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SeedMessage = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxTokens = -1
	assert.Error(t, cfg.Validate())
}

func TestDialogueProjection(t *testing.T) {
	cfg := Default()
	cfg.Model = "test-model"
	cfg.MaxTurns = 4
	cfg.MaxTokens = 99
	cfg.SystemA = "a"
	cfg.SystemB = "b"
	cfg.SeedMessage = "seed"

	dc := cfg.Dialogue()
	assert.Equal(t, "test-model", dc.Model)
	assert.Equal(t, 4, dc.MaxTurns)
	assert.Equal(t, 99, dc.MaxTokensPerResponse)
	assert.Equal(t, "a", dc.SystemA)
	assert.Equal(t, "b", dc.SystemB)
	assert.Equal(t, "seed", dc.SeedMessage)
	assert.NoError(t, dc.Validate())
}
