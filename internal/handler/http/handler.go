// SPDX-License-Identifier: Apache-2.0

package http

import (
	"github.com/noa10/mataresit-app-sub003/internal/config"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
)

// ctxKey is the private type for context values set by this package.
type ctxKey int

// principalCtxKey holds the authenticated principal's id (the token subject).
const principalCtxKey ctxKey = iota

type Handler struct {
	store *memoryStore

	signKey string
	issuer  string

	logger *logger.Logger
}

func NewHandler(cfg config.Server, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		store:   newMemoryStore(),
		signKey: cfg.TokenSignKey,
		issuer:  cfg.TokenIssuer,
		logger:  logger,
	}
}
