package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database: /tmp/cards.db
target_retention: 0.85
fsrs:
  learning_steps: [30s, 5m]
  optimizer:
    epochs: 3
leitner:
  intervals: [12h, 48h]
log:
  pretty: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cards.db", cfg.Database)
	assert.Equal(t, 0.85, cfg.TargetRetention)
	assert.Equal(t, "fsrs", cfg.Algorithm, "unset fields keep defaults")
	assert.Equal(t, 10*time.Second, cfg.Lookahead)
	assert.Equal(t, []time.Duration{30 * time.Second, 5 * time.Minute}, cfg.FSRS.LearningSteps)
	assert.Equal(t, 3, cfg.FSRS.Optimizer.Epochs)
	assert.Equal(t, []time.Duration{12 * time.Hour, 48 * time.Hour}, cfg.Leitner.Intervals)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"algorithm": "algorithm: sm2\n",
		"retention": "target_retention: 1.5\n",
		"yaml":      "database: [\n",
	} {
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Algorithm = "leitner"
	cfg.Lookahead = time.Minute
	require.NoError(t, Save(&cfg, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *got)
}

func TestGetConfigPathHonorsEnv(t *testing.T) {
	t.Setenv("DECK_CONFIG_PATH", "/etc/deck.yaml")
	assert.Equal(t, "/etc/deck.yaml", GetConfigPath())
}
