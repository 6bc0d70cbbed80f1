package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Chunking.TargetTokens)
	assert.Equal(t, 650, cfg.Chunking.MaxTokens)
	assert.Equal(t, "cl100k_base", cfg.Chunking.Encoding)
	assert.InDelta(t, 0.78, cfg.Matching.Top1Threshold, 1e-9)
	assert.InDelta(t, 0.72, cfg.Matching.Top2Threshold, 1e-9)
	assert.InDelta(t, 0.05, cfg.Matching.DeltaThreshold, 1e-9)
	assert.NotEmpty(t, cfg.Database.URL)
}

func TestLoadAppliesPartialFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chunking:
  target_tokens: 300
matching:
  top1_threshold: 0.85
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Chunking.TargetTokens)
	assert.Equal(t, 650, cfg.Chunking.MaxTokens)
	assert.InDelta(t, 0.85, cfg.Matching.Top1Threshold, 1e-9)
	assert.InDelta(t, 0.72, cfg.Matching.Top2Threshold, 1e-9)
}

func TestLoadDatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env:env@db:5432/studybuddy")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env:env@db:5432/studybuddy", cfg.Database.URL)
}
