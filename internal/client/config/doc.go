// Package config loads runtime configuration for the veriauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file and the process environment (VERIAUTH_* variables).
//     The file is .env in the working directory unless -env names another.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   backend base URL
//	-b string   storage backend: sqlite, postgres, redis or memory
//	-d string   storage DSN (file path, postgres connection string or redis URL)
//	-t int      request timeout (seconds)
//	-g string   host:port of a gRPC backend answering health checks
//	-l string   log level: debug, info, warn or error
//	-f string   log format: text, json or zerolog
//	-google-client-id, -google-client-secret, -google-issuer, -google-redirect
//
// # JSON schema
//
// Durations use timex.Duration, so "10s" and integer nanoseconds both work:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "storage_backend": "sqlite",
//	  "storage_dsn": "/home/me/.veriauth/session.db",
//	  "request_timeout": "10s",
//	  "google_client_id": "123.apps.googleusercontent.com"
//	}
package config
