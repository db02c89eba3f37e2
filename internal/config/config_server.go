package config

import "fmt"

// ServerConfig is the dev-server configuration view assembled from
// [StructuredConfig].
type ServerConfig struct {
	// HTTPAddress is the listen address in host:port form.
	HTTPAddress string
	// TokenSignKey signs and verifies bearer tokens.
	TokenSignKey string
	// TokenIssuer is the issuer claim for issued tokens.
	TokenIssuer string
}

// GetServerConfig builds and validates a server-specific config view from the
// merged structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		HTTPAddress:  cfg.Server.HTTPAddress,
		TokenSignKey: cfg.Server.TokenSignKey,
		TokenIssuer:  cfg.Server.TokenIssuer,
	}
	if serverCfg.HTTPAddress == "" {
		serverCfg.HTTPAddress = "localhost:8080"
	}
	if serverCfg.TokenIssuer == "" {
		serverCfg.TokenIssuer = "mataresit-dev"
	}

	return serverCfg, serverCfg.validate()
}
