package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/flagx"
)

const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds runtime settings for the civic CLI.
//
// Durations are time.Duration values; in config files they may be written as
// "3s" strings or integer nanoseconds.
type Config struct {
	ServerBaseURL       string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration

	// StorageBackend selects the local store: "sqlite", "redis" or "postgres".
	StorageBackend string
	DatabasePath   string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string

	SyncRetries   uint64
	SyncRetryBase time.Duration

	// StreakGraceDays is how many missed calendar days still extend a streak.
	StreakGraceDays int

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.StorageBackend = BackendSQLite
	c.DatabasePath = "civic.db"
	c.RedisAddr = "localhost:6379"
	c.RedisPrefix = "civic"
	c.SyncRetries = 3
	c.SyncRetryBase = 200 * time.Millisecond
	c.StreakGraceDays = 1
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	if c.ServerBaseURL == "" {
		return fmt.Errorf("server base URL is empty")
	}
	switch c.StorageBackend {
	case BackendSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("database path is empty")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is empty")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres dsn is empty")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.StreakGraceDays < 0 {
		return fmt.Errorf("streak grace days must not be negative")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	return nil
}

// Load builds a Config from defaults, then the file named by -c/-config (if
// any), then command-line flags. Later sources take precedence.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFileFlag(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args. It panics on invalid configuration.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
