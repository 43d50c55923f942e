// Package config provides configuration loading from an optional YAML
// file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cinequery/cinequery/pkg/tmdb"
)

// Config holds all configuration for the query router.
type Config struct {
	APIKey            string        // TMDB_API_KEY
	BaseURL           string        // TMDB_BASE_URL, default https://api.themoviedb.org/3
	Language          string        // TMDB_LANGUAGE, default "en-US"
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 10000ms
	Debounce          time.Duration // DEBOUNCE_MS, default 500ms
	PageCacheMaxItems int           // PAGE_CACHE_MAX_ITEMS, default 256

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default stderr only
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// fileConfig is the YAML file shape. Every field is optional; anything
// unset falls back to env or defaults.
type fileConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	Language          string `yaml:"language"`
	HTTPTimeoutMs     int    `yaml:"http_timeout_ms"`
	DebounceMs        int    `yaml:"debounce_ms"`
	PageCacheMaxItems int    `yaml:"page_cache_max_items"`
	Log               struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   *bool  `yaml:"compress"`
	} `yaml:"log"`
}

// Load reads configuration. Precedence: env var, then the YAML file
// named by CINEQUERY_CONFIG (if any), then built-in defaults.
func Load() (*Config, error) {
	var fc fileConfig
	if path := os.Getenv("CINEQUERY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	compress := true
	if fc.Log.Compress != nil {
		compress = *fc.Log.Compress
	}

	cfg := &Config{
		APIKey:            getEnvString("TMDB_API_KEY", fc.APIKey),
		BaseURL:           getEnvString("TMDB_BASE_URL", fallback(fc.BaseURL, tmdb.DefaultBaseURL)),
		Language:          getEnvString("TMDB_LANGUAGE", fallback(fc.Language, "en-US")),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", fallbackInt(fc.HTTPTimeoutMs, 10000)),
		Debounce:          getEnvDurationMs("DEBOUNCE_MS", fallbackInt(fc.DebounceMs, 500)),
		PageCacheMaxItems: getEnvInt("PAGE_CACHE_MAX_ITEMS", fallbackInt(fc.PageCacheMaxItems, 256)),

		LogLevel:      getEnvString("LOG_LEVEL", fallback(fc.Log.Level, "info")),
		LogFile:       getEnvString("LOG_FILE", fc.Log.File),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", fallbackInt(fc.Log.MaxSizeMB, 10)),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", fallbackInt(fc.Log.MaxBackups, 3)),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", fallbackInt(fc.Log.MaxAgeDays, 28)),
		LogCompress:   getEnvBool("LOG_COMPRESS", compress),
	}
	return cfg, nil
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func fallbackInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
