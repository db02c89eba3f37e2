package main

import (
	"context"
	"fmt"

	"github.com/noa10/mataresit-app-sub003/internal/client"
	"github.com/noa10/mataresit-app-sub003/internal/config"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("mataresit-client").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewFileLogger("mataresit-client", cfg.App.LogFilePath)

	app, err := client.NewApp(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
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
