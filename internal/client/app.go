// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/noa10/mataresit-app-sub003/internal/adapter"
	"github.com/noa10/mataresit-app-sub003/internal/config"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/netmon"
	"github.com/noa10/mataresit-app-sub003/internal/service"
	"github.com/noa10/mataresit-app-sub003/internal/store"
	"github.com/noa10/mataresit-app-sub003/internal/workers"
)

// App owns the client's wired object graph. Construction is explicit: every
// dependency flows through NewApp, nothing hangs off package globals, so two
// Apps in one process (as in tests) never share state.
type App struct {
	services *service.ClientServices
	monitor  *netmon.Monitor
	workers  *workers.Workers

	log *logger.Logger
}

func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	remote := adapter.NewHTTPRemoteAPI(adapter.HTTPClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Token:   cfg.Remote.Token,
		Timeout: cfg.Remote.RequestTimeout,
	})

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	monitor := netmon.New(remote, cfg.Workers.ProbeInterval, log)
	services := service.NewClientServices(storages, remote, monitor, cfg.Sync.PassTimeout, log)

	background := workers.New(
		workers.WorkerFunc(monitor.Run),
		workers.NewPeriodicSyncWorker(services.Engine, monitor, cfg.Workers.SyncInterval, log),
		workers.NewConnectivityWorker(monitor, services.Engine, log),
	)

	return &App{
		services: services,
		monitor:  monitor,
		workers:  background,
		log:      log,
	}, nil
}

// Services exposes the wired domain services, e.g. for an embedding UI.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Run starts the background workers and the startup consistency sweep, then
// blocks until the process receives a termination signal.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// The sweep needs the remote, so it runs alongside the workers rather
	// than delaying them. A failed sweep is logged, not fatal: the periodic
	// pass still converges everything except never-uploaded entities.
	go func() {
		if err := a.services.Engine.StartupSweep(ctx); err != nil {
			a.log.Warn().Err(err).Msg("startup consistency sweep failed")
		}
	}()

	a.log.Info().Msg("client started")
	a.workers.Run(ctx)
	a.log.Info().Msg("client shut down gracefully")

	return nil
}
