package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-t", "-s", "-d", "-r", "-p", "-l", "-f"}

// parseFlags overlays cfg with command-line flags.
//
//	-a string   backend base URL
//	-i int      online check interval (seconds)
//	-t int      request timeout (seconds)
//	-s string   storage backend: sqlite, redis or postgres
//	-d string   SQLite database path
//	-r string   Redis address
//	-p string   Postgres DSN
//	-l string   log level
//	-f string   log format: text or json
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "backend base URL")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend: sqlite, redis or postgres")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.PostgresDSN, "p", cfg.PostgresDSN, "Postgres DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format: text or json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Sub-second values from a file survive when the flag is absent.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
