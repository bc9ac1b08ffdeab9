package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080/api", c.ServerBaseURL)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, BackendSQLite, c.StorageBackend)
	assert.Equal(t, 1, c.StreakGraceDays)
	assert.Equal(t, uint64(3), c.SyncRetries)
	require.NoError(t, c.Validate())
}

func TestLoad_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `
server_base_url: http://file:1
online_check_interval: 5s
log_level: debug
`)
	cfg, err := Load([]string{"-c", path, "-a", "http://flag:2", "-unknown", "x"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag:2", cfg.ServerBaseURL)
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load([]string{"-config", "/definitely/not/here.json"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.ServerBaseURL = "" }},
		{"unknown backend", func(c *Config) { c.StorageBackend = "etcd" }},
		{"sqlite without path", func(c *Config) { c.DatabasePath = "" }},
		{"redis without addr", func(c *Config) { c.StorageBackend = BackendRedis; c.RedisAddr = "" }},
		{"postgres without dsn", func(c *Config) { c.StorageBackend = BackendPostgres }},
		{"negative grace", func(c *Config) { c.StreakGraceDays = -1 }},
		{"zero interval", func(c *Config) { c.OnlineCheckInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadConfig_PanicsOnInvalid(t *testing.T) {
	withArgs(t, []string{"cmd", "-s", "etcd"})
	require.Panics(t, func() { LoadConfig() })
}
