package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/civicstate/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file, shared by JSON and
// YAML. Zero values leave the current setting untouched.
type FileConfig struct {
	ServerBaseURL       string         `json:"server_base_url" yaml:"server_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	StorageBackend      string         `json:"storage_backend" yaml:"storage_backend"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	PostgresDSN         string         `json:"postgres_dsn" yaml:"postgres_dsn"`
	RedisAddr           string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword       string         `json:"redis_password" yaml:"redis_password"`
	RedisDB             int            `json:"redis_db" yaml:"redis_db"`
	RedisPrefix         string         `json:"redis_prefix" yaml:"redis_prefix"`
	SyncRetries         *uint64        `json:"sync_retries" yaml:"sync_retries"`
	SyncRetryBase       timex.Duration `json:"sync_retry_base" yaml:"sync_retry_base"`
	StreakGraceDays     *int           `json:"streak_grace_days" yaml:"streak_grace_days"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
	LogFormat           string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file at path. Files ending in .yaml or
// .yml are read as YAML, everything else as JSON.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerBaseURL, fc.ServerBaseURL)
	setString(&cfg.StorageBackend, fc.StorageBackend)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.PostgresDSN, fc.PostgresDSN)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisPassword, fc.RedisPassword)
	setString(&cfg.RedisPrefix, fc.RedisPrefix)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)

	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.SyncRetryBase.Duration > 0 {
		cfg.SyncRetryBase = fc.SyncRetryBase.Duration
	}
	if fc.RedisDB != 0 {
		cfg.RedisDB = fc.RedisDB
	}
	if fc.SyncRetries != nil {
		cfg.SyncRetries = *fc.SyncRetries
	}
	if fc.StreakGraceDays != nil {
		cfg.StreakGraceDays = *fc.StreakGraceDays
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
