package toolhub

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.UsageLogEnabled)
	assert.Equal(t, 8*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Contains(t, cfg.UsageLogPath, ".toolhub")
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("TOOLHUB_CACHE_ENABLED", "false")
	t.Setenv("TOOLHUB_CACHE_TTL", "30s")
	t.Setenv("TOOLHUB_USAGE_LOG_PATH", "/tmp/usage.jsonl")
	t.Setenv("TOOLHUB_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "/tmp/usage.jsonl", cfg.UsageLogPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_ExpandsHome(t *testing.T) {
	t.Setenv("TOOLHUB_USAGE_LOG_PATH", "~/custom/usage.jsonl")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "custom", "usage.jsonl"), cfg.UsageLogPath)
}
