// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"

	"github.com/noa10/mataresit-app-sub003/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// OnlineChecker reports the connectivity monitor's current verdict.
type OnlineChecker interface {
	IsOnline() bool
}

// Trigger requests a sync pass without blocking the caller. Requests made
// while a pass is running are dropped.
type Trigger interface {
	TriggerSync(reason string)
}

// QueueService records local mutations for later replay against the remote.
type QueueService interface {
	// Enqueue appends a mutation to the durable queue and returns the queue
	// item's id. It never touches the network; connectivity only decides
	// whether a sync pass is kicked off afterwards.
	Enqueue(ctx context.Context, op models.Operation, entityType models.EntityType, entityID string, payload map[string]any) (string, error)

	// PendingCount reports the number of queued mutations.
	PendingCount(ctx context.Context) (int, error)
}

// SyncEngine drains the queue against the remote and pulls remote changes
// down, one pass at a time.
type SyncEngine interface {
	Trigger

	// RunPass executes one full sync pass synchronously. It returns
	// ErrPassInFlight if a pass is already running.
	RunPass(ctx context.Context) error

	// Status reports the engine's current lifecycle state.
	Status() models.SyncStatus

	// SubscribeStatus registers for status transitions. The returned cancel
	// func must be called to release the subscription.
	SubscribeStatus() (<-chan models.SyncStatus, func())

	// Snapshot assembles the current sync picture for display.
	Snapshot(ctx context.Context) (models.SyncSnapshot, error)

	// StartupSweep runs the full-inventory consistency check. Only the first
	// call does work; the sweep is a startup-only safety net.
	StartupSweep(ctx context.Context) error

	// ForceFullResync clears every collection watermark and triggers a pass,
	// so the next reconcile re-fetches everything from the beginning of time.
	ForceFullResync(ctx context.Context) error

	// DeadLetters lists the mutations that were given up on, newest first.
	DeadLetters(ctx context.Context) ([]models.DeadLetterItem, error)
}
