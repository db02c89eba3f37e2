// SPDX-License-Identifier: Apache-2.0

// Package service holds the sync core: the durable mutation queue, the sync
// engine that drains it, the pull reconciler and the conflict resolver.
package service

import (
	"time"

	"github.com/noa10/mataresit-app-sub003/internal/adapter"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/store"
)

// ClientServices aggregates the client's domain services behind one handle.
type ClientServices struct {
	Engine SyncEngine
	Queue  QueueService
}

// NewClientServices wires the engine and queue service together. The queue
// service kicks the engine after each enqueue, gated on the online checker.
func NewClientServices(storages *store.ClientStorages, remote adapter.RemoteAPI, online OnlineChecker, passTimeout time.Duration, log *logger.Logger) *ClientServices {
	engine := NewSyncEngine(storages, remote, online, passTimeout, log)
	queue := NewQueueService(storages.Queue, engine, online, log)
	return &ClientServices{
		Engine: engine,
		Queue:  queue,
	}
}
