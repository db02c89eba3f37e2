package handler

import (
	"github.com/noa10/mataresit-app-sub003/internal/config"
	"github.com/noa10/mataresit-app-sub003/internal/handler/http"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(cfg, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
