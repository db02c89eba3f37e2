package main

import (
	"fmt"

	"github.com/noa10/mataresit-app-sub003/internal/config"
	"github.com/noa10/mataresit-app-sub003/internal/handler"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/server"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("mataresit-dev-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	serverCfg := config.Server{
		HTTPAddress:  cfg.HTTPAddress,
		TokenSignKey: cfg.TokenSignKey,
		TokenIssuer:  cfg.TokenIssuer,
	}

	handlers, err := handler.NewHandlers(serverCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, serverCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
