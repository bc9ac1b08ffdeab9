// Package config loads runtime configuration for the civic CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml/.yml are parsed as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// Durations use timex.Duration, so they may be "3s" strings or integer
// nanoseconds:
//
//	server_base_url: http://127.0.0.1:8080/api
//	online_check_interval: 3s
//	storage_backend: sqlite
//	database_path: civic.db
//	streak_grace_days: 1
//
// This package does not read environment variables.
package config
