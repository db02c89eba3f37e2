package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a dev server address in format [host]:[port]
//	-r remote API base URL
//	-t remote API bearer token
//	-d local database DSN (SQLite file path)
//	-l client log file path
//	-c/-config json file path with configs
//	-token-sign-key dev server token signing key
//	-token-issuer dev server token issuer name
//	-request-timeout per-request timeout (e.g., "15s")
//	-sync-interval periodic sync worker interval (e.g., "5m")
//	-probe-interval connectivity probe interval (e.g., "30s")
//	-pass-timeout whole-pass deadline (e.g., "60s")
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var remoteBaseURL string
	var remoteToken string
	var databaseDSN string
	var logFilePath string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var probeInterval time.Duration
	var passTimeout time.Duration

	flag.StringVar(&serverAddress, "a", "", "Dev server net address host:port")
	flag.StringVar(&remoteBaseURL, "r", "", "Remote API base URL")
	flag.StringVar(&remoteToken, "t", "", "Remote API bearer token")
	flag.StringVar(&databaseDSN, "d", "", "Local database DSN")
	flag.StringVar(&logFilePath, "l", "", "Client log file path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Per-request timeout (e.g., 15s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 5m)")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 30s)")
	flag.DurationVar(&passTimeout, "pass-timeout", 0, "Sync pass deadline (e.g., 60s)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			LogFilePath: logFilePath,
		},
		Remote: Remote{
			BaseURL:        remoteBaseURL,
			Token:          remoteToken,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:  serverAddress,
			TokenSignKey: tokenSignKey,
			TokenIssuer:  tokenIssuer,
		},
		Workers: Workers{
			SyncInterval:  syncInterval,
			ProbeInterval: probeInterval,
		},
		Sync: Sync{
			PassTimeout: passTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}
}
