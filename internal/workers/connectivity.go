// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/netmon"
	"github.com/noa10/mataresit-app-sub003/internal/service"
)

// EventSource hands out connectivity transition subscriptions.
type EventSource interface {
	Subscribe() (<-chan netmon.Event, func())
}

// ConnectivityWorker triggers a sync pass on each offline-to-online edge, so
// mutations queued while disconnected drain as soon as the link is back.
type ConnectivityWorker struct {
	events  EventSource
	trigger service.Trigger
	log     *logger.Logger
}

func NewConnectivityWorker(events EventSource, trigger service.Trigger, log *logger.Logger) *ConnectivityWorker {
	return &ConnectivityWorker{
		events:  events,
		trigger: trigger,
		log:     log,
	}
}

func (w *ConnectivityWorker) Run(ctx context.Context) {
	events, cancel := w.events.Subscribe()
	defer cancel()

	w.log.Info().Msg("connectivity worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("connectivity worker stopped")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.State != netmon.StateOnline {
				continue
			}
			w.log.Info().Time("at", ev.At).Msg("connectivity restored, triggering sync")
			w.trigger.TriggerSync("online-edge")
		}
	}
}
