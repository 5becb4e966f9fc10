// Package config loads runtime configuration for the bakerykit session core
// and its console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     ".toml" are decoded as TOML, anything else as JSON.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string    backend base URL
//	-db string   path of the local SQLite database holding credentials
//	-i int       cart count poll interval (seconds)
//	-t int       per-request timeout (seconds)
//	-rps float   outbound request rate limit (0 = unlimited)
//	-log string  log level: debug, info, warn, error
//
// # File schema
//
// Durations are strings understood by time.ParseDuration or integer
// nanoseconds (JSON only):
//
//	{
//	  "backend_url": "https://api.bakery.example",
//	  "database_path": "session.db",
//	  "request_timeout": "10s",
//	  "refresh_leeway": "30s",
//	  "cart_poll_interval": "15s",
//	  "requests_per_second": 5,
//	  "device_secret": "",
//	  "log_level": "info"
//	}
package config
