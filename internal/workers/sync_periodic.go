// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"time"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/service"
)

// defaultSyncInterval spaces out timer-driven passes when the config does not.
const defaultSyncInterval = 5 * time.Minute

// PeriodicSyncWorker triggers a sync pass on a fixed interval. Ticks that
// land while the device is offline are skipped; the connectivity worker
// covers the catch-up when the device comes back.
type PeriodicSyncWorker struct {
	trigger  service.Trigger
	online   service.OnlineChecker
	interval time.Duration
	log      *logger.Logger
}

func NewPeriodicSyncWorker(trigger service.Trigger, online service.OnlineChecker, interval time.Duration, log *logger.Logger) *PeriodicSyncWorker {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &PeriodicSyncWorker{
		trigger:  trigger,
		online:   online,
		interval: interval,
		log:      log,
	}
}

func (w *PeriodicSyncWorker) Run(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("periodic sync worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("periodic sync worker stopped")
			return
		case <-ticker.C:
			if !w.online.IsOnline() {
				w.log.Debug().Msg("periodic sync skipped, device offline")
				continue
			}
			w.trigger.TriggerSync("interval")
		}
	}
}
