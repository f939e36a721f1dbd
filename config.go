package toolhub

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds environment-driven settings. Every field maps to a
// TOOLHUB_* variable; a .env file in the working directory is loaded first
// and never overrides variables already set in the process environment.
type Config struct {
	CacheEnabled    bool          `envconfig:"CACHE_ENABLED" default:"true"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"15m"`
	UsageLogEnabled bool          `envconfig:"USAGE_LOG_ENABLED" default:"true"`
	UsageLogPath    string        `envconfig:"USAGE_LOG_PATH" default:"~/.toolhub/usage.jsonl"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"8s"`
	SmitheryAPIKey  string        `envconfig:"SMITHERY_API_KEY"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads configuration from a .env file (if present) and the
// TOOLHUB_* environment, expanding a leading ~ in the usage log path.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("TOOLHUB", &cfg); err != nil {
		return Config{}, err
	}
	cfg.UsageLogPath = expandHome(cfg.UsageLogPath)
	return cfg, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
