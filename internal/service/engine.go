// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/noa10/mataresit-app-sub003/internal/adapter"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/store"
	"github.com/noa10/mataresit-app-sub003/models"
)

// retryCeiling is the number of delivery attempts a queued mutation gets
// before it is moved to the dead-letter collection.
const retryCeiling = 3

// defaultPassTimeout bounds a whole sync pass when the config does not.
const defaultPassTimeout = 60 * time.Second

type syncEngine struct {
	storages   *store.ClientStorages
	remote     adapter.RemoteAPI
	reconciler *reconciler
	online     OnlineChecker
	log        *logger.Logger

	passTimeout time.Duration
	inFlight    atomic.Bool

	statusMu sync.RWMutex
	status   models.SyncStatus

	broadcaster *statusBroadcaster
	sweepOnce   sync.Once
}

// NewSyncEngine builds the engine around the given storages and remote
// adapter. passTimeout <= 0 selects the default.
func NewSyncEngine(storages *store.ClientStorages, remote adapter.RemoteAPI, online OnlineChecker, passTimeout time.Duration, log *logger.Logger) SyncEngine {
	if passTimeout <= 0 {
		passTimeout = defaultPassTimeout
	}
	return &syncEngine{
		storages:    storages,
		remote:      remote,
		reconciler:  newReconciler(storages, remote, log),
		online:      online,
		log:         log,
		passTimeout: passTimeout,
		status:      models.SyncStatusIdle,
		broadcaster: newStatusBroadcaster(),
	}
}

func (e *syncEngine) TriggerSync(reason string) {
	if e.inFlight.Load() {
		e.log.Debug().Str("reason", reason).Msg("sync already in flight, trigger dropped")
		return
	}
	go func() {
		if err := e.RunPass(context.Background()); err != nil && !errors.Is(err, ErrPassInFlight) {
			e.log.Warn().Err(err).Str("reason", reason).Msg("triggered sync pass failed")
		}
	}()
}

func (e *syncEngine) RunPass(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrPassInFlight
	}
	defer e.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, e.passTimeout)
	defer cancel()

	start := time.Now()
	e.transition(models.SyncStatusSyncing)

	err := e.pass(ctx)
	if err != nil {
		e.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("sync pass failed")
		e.transition(models.SyncStatusFailed)
	} else {
		e.log.Info().Dur("elapsed", time.Since(start)).Msg("sync pass completed")
		e.transition(models.SyncStatusCompleted)
	}
	e.transition(models.SyncStatusIdle)
	return err
}

func (e *syncEngine) pass(ctx context.Context) error {
	// Resolve the principal up front so a pass with a missing or unusable
	// token aborts before any queue item is pushed. All remote state the
	// pass touches belongs to this principal.
	principal, err := e.remote.Principal()
	if err != nil {
		return err
	}
	e.log.Debug().Str("principal", principal).Msg("sync pass started")

	if err := e.drainQueue(ctx); err != nil {
		return err
	}
	if err := e.reconciler.reconcileAll(ctx); err != nil {
		return err
	}
	return e.storages.Settings.SetLastSyncAt(ctx, time.Now().UTC())
}

// drainQueue replays queued mutations oldest first. A rejected or repeatedly
// failing item is parked in the dead letters and the drain moves on; only
// auth, storage and deadline errors abort the whole pass.
func (e *syncEngine) drainQueue(ctx context.Context) error {
	items, err := e.storages.Queue.PeekAll(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pushErr := e.pushItem(ctx, item)
		switch {
		case pushErr == nil:
			if err := e.removeFromQueue(ctx, item.ID); err != nil {
				return err
			}

		case errors.Is(pushErr, adapter.ErrAuthRequired),
			errors.Is(pushErr, store.ErrStorage),
			errors.Is(pushErr, context.DeadlineExceeded),
			errors.Is(pushErr, context.Canceled):
			return pushErr

		case errors.Is(pushErr, adapter.ErrRemoteRejected):
			if err := e.moveToDeadLetters(ctx, item, item.RetryCount+1, pushErr); err != nil {
				return err
			}

		default:
			// Transient. Count the attempt and park the item once it has
			// burned through its delivery budget.
			attempts, err := e.storages.Queue.IncrementRetry(ctx, item.ID)
			if err != nil {
				return err
			}
			if attempts >= retryCeiling {
				if err := e.moveToDeadLetters(ctx, item, attempts, pushErr); err != nil {
					return err
				}
				continue
			}
			e.log.Warn().Err(pushErr).
				Str("item_id", item.ID).
				Int("attempts", attempts).
				Msg("push failed, will retry next pass")
		}
	}
	return nil
}

func (e *syncEngine) pushItem(ctx context.Context, item models.SyncQueueItem) error {
	switch item.Operation {
	case models.OperationCreate, models.OperationUpdate:
		updatedAt, fields := extractUpdatedAt(item.Payload, item.EnqueuedAt)
		record := ToRemoteEntity(item.EntityType, models.Entity{
			ID:        item.EntityID,
			UpdatedAt: updatedAt,
			Fields:    fields,
		})
		return e.remote.Upsert(ctx, item.EntityType, record)
	case models.OperationDelete:
		return e.remote.Delete(ctx, item.EntityType, item.EntityID)
	default:
		return ErrInvalidOperation
	}
}

func (e *syncEngine) removeFromQueue(ctx context.Context, itemID string) error {
	err := e.storages.Queue.Remove(ctx, itemID)
	if errors.Is(err, store.ErrQueueItemNotFound) {
		return nil
	}
	return err
}

// moveToDeadLetters parks a mutation that will never be retried again, keeping
// the payload around for inspection instead of dropping it on the floor.
func (e *syncEngine) moveToDeadLetters(ctx context.Context, item models.SyncQueueItem, attempts int, cause error) error {
	dead := models.DeadLetterItem{
		ID:          uuid.NewString(),
		QueueItemID: item.ID,
		Operation:   item.Operation,
		EntityType:  item.EntityType,
		EntityID:    item.EntityID,
		Payload:     item.Payload,
		EnqueuedAt:  item.EnqueuedAt,
		Attempts:    attempts,
		Reason:      cause.Error(),
		FailedAt:    time.Now().UTC(),
	}
	if err := e.storages.DeadLetters.Add(ctx, dead); err != nil {
		return err
	}
	if err := e.removeFromQueue(ctx, item.ID); err != nil {
		return err
	}
	e.log.Error().Err(cause).
		Str("item_id", item.ID).
		Str("collection", item.EntityType.String()).
		Str("entity_id", item.EntityID).
		Int("attempts", attempts).
		Msg("mutation moved to dead letters")
	return nil
}

func (e *syncEngine) transition(status models.SyncStatus) {
	e.statusMu.Lock()
	e.status = status
	e.statusMu.Unlock()
	e.broadcaster.publish(status)
}

func (e *syncEngine) Status() models.SyncStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

func (e *syncEngine) SubscribeStatus() (<-chan models.SyncStatus, func()) {
	return e.broadcaster.subscribe()
}

func (e *syncEngine) Snapshot(ctx context.Context) (models.SyncSnapshot, error) {
	pending, err := e.storages.Queue.PendingCount(ctx)
	if err != nil {
		return models.SyncSnapshot{}, err
	}
	dead, err := e.storages.DeadLetters.Count(ctx)
	if err != nil {
		return models.SyncSnapshot{}, err
	}
	lastSyncAt, err := e.storages.Settings.LastSyncAt(ctx)
	if err != nil {
		return models.SyncSnapshot{}, err
	}
	return models.SyncSnapshot{
		PendingCount:    pending,
		DeadLetterCount: dead,
		LastSyncAt:      lastSyncAt,
		IsOnline:        e.online.IsOnline(),
	}, nil
}

func (e *syncEngine) StartupSweep(ctx context.Context) error {
	var err error
	ran := false
	e.sweepOnce.Do(func() {
		ran = true
		err = e.reconciler.sweep(ctx)
	})
	if !ran {
		return nil
	}
	if err != nil {
		return err
	}
	e.TriggerSync("startup-sweep")
	return nil
}

func (e *syncEngine) ForceFullResync(ctx context.Context) error {
	if err := e.storages.Settings.ResetWatermarks(ctx); err != nil {
		return err
	}
	e.log.Info().Msg("watermarks cleared, full resync requested")
	e.TriggerSync("force-full-resync")
	return nil
}

func (e *syncEngine) DeadLetters(ctx context.Context) ([]models.DeadLetterItem, error) {
	return e.storages.DeadLetters.GetAll(ctx)
}
