// Package config loads runtime configuration for the taskkeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. TASKKEEPER_* environment variables.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations are timex.Duration values, so "5s" and 5000000000 are equivalent:
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "request_timeout": "5s",
//	  "online_check_interval": "3s",
//	  "database_path": "auth.db"
//	}
package config
