package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Backend names the substrate collections are persisted to.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
)

// Config holds process settings read from the environment.
type Config struct {
	Debug          bool
	LogFormat      string
	Backend        Backend
	DataDir        string
	SQLitePath     string
	KeyPrefix      string
	RedisURL       string
	ListenAddr     string
	IdempotencyTTL time.Duration
	Pprof          bool
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides is Load with non-empty overrides taking precedence over
// the environment. Keys are environment variable names.
func LoadWithOverrides(overrides map[string]string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(func(key string) (string, bool) {
		if v := overrides[key]; v != "" {
			return v, true
		}
		return os.LookupEnv(key)
	})
}

// FromEnv builds a Config using lookup for every variable.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		LogFormat:      strings.ToLower(get("LOG_FORMAT", "text")),
		Backend:        Backend(strings.ToLower(get("TRACKER_STORAGE", string(BackendFile)))),
		KeyPrefix:      get("TRACKER_KEY_PREFIX", "productivity_"),
		RedisURL:       get("REDIS_CONNECTION_STRING", ""),
		ListenAddr:     get("LISTEN_ADDR", ""),
		IdempotencyTTL: 10 * time.Minute,
	}

	var err error
	if cfg.Debug, err = parseBool(get("DEBUG", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid DEBUG: %w", err)
	}
	if cfg.Pprof, err = parseBool(get("TRACKER_PPROF", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid TRACKER_PPROF: %w", err)
	}
	if v := get("IDEMPOTENCY_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid IDEMPOTENCY_TTL: %q", v)
		}
		cfg.IdempotencyTTL = d
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
		if port := get("PORT", ""); port != "" {
			cfg.ListenAddr = ":" + port
		}
	}

	switch cfg.Backend {
	case BackendFile, BackendSQLite:
		cfg.DataDir = get("TRACKER_DATA_DIR", "")
		if cfg.DataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return Config{}, fmt.Errorf("resolve data dir: %w", err)
			}
			cfg.DataDir = filepath.Join(home, ".prism-tracker")
		}
		if cfg.Backend == BackendSQLite {
			cfg.SQLitePath = get("TRACKER_SQLITE_PATH", filepath.Join(cfg.DataDir, "tracker.db"))
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("missing redis config: REDIS_CONNECTION_STRING is required for the redis backend")
		}
	case BackendMemory:
	default:
		return Config{}, fmt.Errorf("invalid TRACKER_STORAGE %q: must be file, sqlite, redis or memory", cfg.Backend)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", cfg.LogFormat)
	}
	return cfg, nil
}

func parseBool(v string) (bool, error) {
	return strconv.ParseBool(v)
}

// NewLogger builds the process logger described by cfg.
func (c Config) NewLogger() *log.Logger {
	logger := log.New()
	if c.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	}
	return logger
}

// RedisOptions parses either a redis:// URL or the "host:port,password=..,ssl=true"
// connection string form.
func (c Config) RedisOptions() (*redis.Options, error) {
	if c.RedisURL == "" {
		return nil, fmt.Errorf("missing redis config")
	}
	if opts, err := redis.ParseURL(c.RedisURL); err == nil {
		return opts, nil
	}
	parts := strings.Split(c.RedisURL, ",")
	if strings.TrimSpace(parts[0]) == "" || strings.Contains(parts[0], "=") {
		return nil, fmt.Errorf("invalid redis connection string")
	}
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(strings.TrimSpace(kv[1]), "true") {
				opts.TLSConfig = &tls.Config{}
			}
		case "db":
			n, err := strconv.Atoi(strings.TrimSpace(kv[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid redis db: %w", err)
			}
			opts.DB = n
		}
	}
	return opts, nil
}
