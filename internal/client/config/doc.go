// Package config loads runtime configuration for the InboxMemory AI CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-t int      request timeout (seconds)
//	-d string   path of the local client database file
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "60s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://localhost:8002",
//	  "request_timeout": "60s",
//	  "database_path": "inboxmemory.db"
//	}
//
// Primary API
//
//   - type Config                     — holds ServerBaseURL, RequestTimeout and DatabasePath
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
