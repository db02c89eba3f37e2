// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// application. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the client log file path.
	App App `envPrefix:"APP_"`

	// Remote holds settings for the remote system-of-record API consumed by
	// the sync engine.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds configuration for the local persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and token settings for the dev server.
	Server Server `envPrefix:"SERVER_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds tuning knobs for the sync engine pass itself.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// LogFilePath is the rotated log file used by the client. Empty means
	// log to stdout.
	// Env: APP_LOG_FILE
	LogFilePath string `env:"LOG_FILE"`
}

// Remote holds settings for the outbound connection to the remote API.
type Remote struct {
	// BaseURL is the remote API root, e.g. "https://api.example.com".
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Token is the bearer access token presented on every request.
	// Env: REMOTE_TOKEN
	Token string `env:"TOKEN"`

	// RequestTimeout bounds every individual remote call.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for the local persistence backend.
type Storage struct {
	// DB holds the local database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB contains local database connection settings.
type DB struct {
	// DSN is the SQLite connection string (a file path).
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Server holds dev-server settings.
type Server struct {
	// HTTPAddress is the listen address in host:port form.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// TokenSignKey is the secret used to sign and verify bearer tokens.
	// Env: SERVER_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the issuer claim placed in issued tokens.
	// Env: SERVER_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`
}

// Workers contains background worker settings.
type Workers struct {
	// SyncInterval defines how often the periodic sync worker triggers a
	// pass while online.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval defines how often the connectivity monitor probes the
	// remote health endpoint.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Sync contains sync engine tuning knobs.
type Sync struct {
	// PassTimeout is the deadline for a whole sync pass. Once exceeded the
	// in-flight pass is abandoned and the engine returns to idle.
	// Env: SYNC_PASS_TIMEOUT
	PassTimeout time.Duration `env:"PASS_TIMEOUT"`
}
