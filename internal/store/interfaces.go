package store

import (
	"context"
	"time"

	"github.com/noa10/mataresit-app-sub003/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// EntityRepository is the durable local store for materialized entities,
// partitioned into named collections (one per entity type).
//
// All operations are synchronous from the caller's perspective and survive
// process restart. I/O failures are reported as a [*StorageError]; nothing
// fails silently.
type EntityRepository interface {
	// Put inserts or replaces the entity in the named collection.
	Put(ctx context.Context, collection models.EntityType, entity models.Entity) error

	// Get returns the entity with the given id, or [ErrEntityNotFound].
	Get(ctx context.Context, collection models.EntityType, id string) (models.Entity, error)

	// GetAll returns every entity in the collection.
	GetAll(ctx context.Context, collection models.EntityType) ([]models.Entity, error)

	// GetAllIDs returns the id set of the collection. Used by the startup
	// consistency sweep.
	GetAllIDs(ctx context.Context, collection models.EntityType) ([]string, error)

	// Delete removes the entity with the given id. Deleting an absent id is
	// not an error.
	Delete(ctx context.Context, collection models.EntityType, id string) error

	// Clear removes every entity in the collection.
	Clear(ctx context.Context, collection models.EntityType) error
}

// QueueRepository is the ordered, durable list of pending mutations backed by
// the local store. Enqueue is append-only and crash-durable before it
// returns; items are drained in enqueue order.
type QueueRepository interface {
	// Enqueue appends the item. The write is committed before return.
	Enqueue(ctx context.Context, item models.SyncQueueItem) error

	// PeekAll returns a snapshot of all queued items in FIFO enqueue order
	// without removing them.
	PeekAll(ctx context.Context) ([]models.SyncQueueItem, error)

	// Remove deletes the item with the given id. Returns
	// [ErrQueueItemNotFound] if it is no longer queued.
	Remove(ctx context.Context, itemID string) error

	// IncrementRetry bumps the item's retry count and returns the new value.
	IncrementRetry(ctx context.Context, itemID string) (int, error)

	// PendingCount returns the number of queued items.
	PendingCount(ctx context.Context) (int, error)
}

// SettingsRepository persists sync bookkeeping: per-collection watermarks and
// the time of the last completed pass.
type SettingsRepository interface {
	// Watermark returns the collection's sync watermark, or the zero time if
	// none has been recorded yet.
	Watermark(ctx context.Context, collection models.EntityType) (time.Time, error)

	// SetWatermark advances the collection's watermark. A value earlier than
	// the stored one is ignored: watermarks never decrease.
	SetWatermark(ctx context.Context, collection models.EntityType, t time.Time) error

	// ResetWatermarks clears all watermarks back to the epoch. Used by
	// forced full resyncs.
	ResetWatermarks(ctx context.Context) error

	// LastSyncAt returns when a pass last completed, or the zero time.
	LastSyncAt(ctx context.Context) (time.Time, error)

	// SetLastSyncAt records the completion time of a pass.
	SetLastSyncAt(ctx context.Context, t time.Time) error
}

// DeadLetterRepository holds permanently-failed queue items for inspection
// and manual repair.
type DeadLetterRepository interface {
	// Add stores the dead-lettered item.
	Add(ctx context.Context, item models.DeadLetterItem) error

	// GetAll returns all dead-lettered items, most recent first.
	GetAll(ctx context.Context) ([]models.DeadLetterItem, error)

	// Count returns the number of dead-lettered items.
	Count(ctx context.Context) (int, error)
}

// ClientStorages aggregates every repository backed by the local database.
type ClientStorages struct {
	Entities    EntityRepository
	Queue       QueueRepository
	Settings    SettingsRepository
	DeadLetters DeadLetterRepository
}
