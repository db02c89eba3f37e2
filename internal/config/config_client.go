package config

import (
	"fmt"
	"time"
)

// Default values applied by [GetClientConfig] when a knob is left unset.
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultSyncInterval   = 5 * time.Minute
	DefaultProbeInterval  = 30 * time.Second
	DefaultPassTimeout    = 60 * time.Second
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// LogFilePath is the rotated client log file. Empty logs to stdout.
	LogFilePath string
}

// ClientRemote holds network settings used by the client transport layer.
type ClientRemote struct {
	// BaseURL is the remote API root.
	BaseURL string
	// Token is the bearer access token for the remote API.
	Token string
	// RequestTimeout is the timeout for each outbound request.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path used by the client.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the periodic sync worker should run.
	SyncInterval time.Duration
	// ProbeInterval defines how often connectivity is probed.
	ProbeInterval time.Duration
}

// ClientSync contains sync engine settings.
type ClientSync struct {
	// PassTimeout bounds a whole sync pass.
	PassTimeout time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Remote contains client transport address, token and timeout.
	Remote ClientRemote
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
	// Sync contains sync engine settings.
	Sync ClientSync
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration, applying defaults for unset durations.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			LogFilePath: cfg.App.LogFilePath,
		},
		Remote: ClientRemote{
			BaseURL:        cfg.Remote.BaseURL,
			Token:          cfg.Remote.Token,
			RequestTimeout: cfg.Remote.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{
			SyncInterval:  cfg.Workers.SyncInterval,
			ProbeInterval: cfg.Workers.ProbeInterval,
		},
		Sync: ClientSync{
			PassTimeout: cfg.Sync.PassTimeout,
		},
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workers.SyncInterval <= 0 {
		cfg.Workers.SyncInterval = DefaultSyncInterval
	}
	if cfg.Workers.ProbeInterval <= 0 {
		cfg.Workers.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Sync.PassTimeout <= 0 {
		cfg.Sync.PassTimeout = DefaultPassTimeout
	}
}
