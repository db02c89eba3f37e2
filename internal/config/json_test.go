package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSONConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_AllFields(t *testing.T) {
	path := writeJSONConfig(t, `{
		"app": {"log_file": "/var/log/client.log"},
		"remote": {
			"base_url": "https://api.example.com",
			"token": "tkn",
			"request_timeout": "15s"
		},
		"storage": {"db": {"dsn": "/var/data/sync.db"}},
		"server": {
			"http_address": "localhost:9999",
			"token_sign_key": "sign",
			"token_issuer": "iss"
		},
		"workers": {"sync_interval": "5m", "probe_interval": "45s"},
		"sync": {"pass_timeout": "1m"}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/client.log", cfg.App.LogFilePath)
	assert.Equal(t, "https://api.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, "tkn", cfg.Remote.Token)
	assert.Equal(t, 15*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "/var/data/sync.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "localhost:9999", cfg.Server.HTTPAddress)
	assert.Equal(t, "sign", cfg.Server.TokenSignKey)
	assert.Equal(t, "iss", cfg.Server.TokenIssuer)
	assert.Equal(t, 5*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 45*time.Second, cfg.Workers.ProbeInterval)
	assert.Equal(t, time.Minute, cfg.Sync.PassTimeout)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_NumericDuration(t *testing.T) {
	// Durations may also be given as nanosecond numbers.
	path := writeJSONConfig(t, `{"sync": {"pass_timeout": 60000000000}}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.Sync.PassTimeout)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.Error(t, err)
}

func TestParseJSON_MalformedJSON(t *testing.T) {
	path := writeJSONConfig(t, `{"remote": `)
	_, err := parseJSON(path)
	require.Error(t, err)
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(data))

	var back Duration
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, d, back)
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() *ClientConfig {
		return &ClientConfig{
			Remote:  ClientRemote{BaseURL: "https://api.example.com", RequestTimeout: DefaultRequestTimeout},
			Storage: ClientStorage{DB: ClientDB{DSN: "/var/data/sync.db"}},
			Workers: ClientWorkers{SyncInterval: DefaultSyncInterval, ProbeInterval: DefaultProbeInterval},
			Sync:    ClientSync{PassTimeout: DefaultPassTimeout},
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *ClientConfig)
		wantErr error
	}{
		{"valid", func(cfg *ClientConfig) {}, nil},
		{"empty dsn", func(cfg *ClientConfig) { cfg.Storage.DB.DSN = "" }, ErrInvalidStorageConfigs},
		{"in-memory dsn refused", func(cfg *ClientConfig) { cfg.Storage.DB.DSN = ":memory:" }, ErrInvalidStorageConfigs},
		{"missing base url", func(cfg *ClientConfig) { cfg.Remote.BaseURL = "" }, ErrInvalidRemoteConfigs},
		{"zero sync interval", func(cfg *ClientConfig) { cfg.Workers.SyncInterval = 0 }, ErrInvalidWorkerConfigs},
		{"zero pass timeout", func(cfg *ClientConfig) { cfg.Sync.PassTimeout = 0 }, ErrInvalidSyncConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
