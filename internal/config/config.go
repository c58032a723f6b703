// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/roach88/storepilot/internal/llm"
	"github.com/roach88/storepilot/internal/store"
)

// Environment variable names.
const (
	EnvDriver         = "STOREPILOT_DB_DRIVER"
	EnvDSN            = "STOREPILOT_DB_DSN"
	EnvMerchant       = "STOREPILOT_MERCHANT_ID"
	EnvGeminiKey      = "GEMINI_API_KEY"
	EnvGoogleKey      = "GOOGLE_API_KEY"
	EnvModel          = "STOREPILOT_MODEL"
	EnvRedisAddr      = "STOREPILOT_REDIS_ADDR"
	EnvLockTTL        = "STOREPILOT_LOCK_TTL"
	EnvStateCacheSize = "STOREPILOT_STATE_CACHE_SIZE"
	EnvHistoryLimit   = "STOREPILOT_HISTORY_LIMIT"
)

// Defaults for unset variables.
const (
	DefaultDSN            = "storepilot.db"
	DefaultLockTTL        = 2 * time.Minute
	DefaultStateCacheSize = 128
	DefaultHistoryLimit   = 20
)

// Config is the resolved runtime configuration.
type Config struct {
	Driver         string
	DSN            string
	MerchantID     string
	GeminiAPIKey   string
	Model          string
	RedisAddr      string
	LockTTL        time.Duration
	StateCacheSize int
	HistoryLimit   int
}

// Load reads files (".env" when none are given) and resolves the config.
// Process environment variables win over file values. A missing default
// .env is ignored; a missing named file is an error.
func Load(files ...string) (Config, error) {
	fileVars := map[string]string{}
	if len(files) == 0 {
		if vars, err := godotenv.Read(); err == nil {
			fileVars = vars
		}
	} else {
		vars, err := godotenv.Read(files...)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read env files: %w", err)
		}
		fileVars = vars
	}

	return FromLookup(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileVars[key]
	})
}

// FromLookup resolves the config from lookup, which returns "" for unset
// keys.
func FromLookup(lookup func(string) string) (Config, error) {
	get := func(key string) string { return strings.TrimSpace(lookup(key)) }

	cfg := Config{
		Driver:       firstNonEmpty(get(EnvDriver), store.DriverSQLite),
		DSN:          firstNonEmpty(get(EnvDSN), DefaultDSN),
		MerchantID:   get(EnvMerchant),
		GeminiAPIKey: firstNonEmpty(get(EnvGeminiKey), get(EnvGoogleKey)),
		Model:        firstNonEmpty(get(EnvModel), llm.DefaultGeminiModel),
		RedisAddr:    get(EnvRedisAddr),
	}
	if err := cfg.SetDriver(cfg.Driver); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.LockTTL, err = durationOr(get(EnvLockTTL), DefaultLockTTL); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvLockTTL, err)
	}
	if cfg.StateCacheSize, err = positiveOr(get(EnvStateCacheSize), DefaultStateCacheSize); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvStateCacheSize, err)
	}
	if cfg.HistoryLimit, err = positiveOr(get(EnvHistoryLimit), DefaultHistoryLimit); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvHistoryLimit, err)
	}
	return cfg, nil
}

// SetDriver sets the database driver after checking it is supported.
func (c *Config) SetDriver(driver string) error {
	switch driver {
	case store.DriverSQLite, store.DriverPostgres:
		c.Driver = driver
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q (want %s or %s)", driver, store.DriverSQLite, store.DriverPostgres)
	}
}

func durationOr(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func positiveOr(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
