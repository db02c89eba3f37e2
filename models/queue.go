package models

import "time"

// Operation is the kind of a queued local mutation.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether op is one of the three known mutation kinds.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

func (op Operation) String() string { return string(op) }

// SyncQueueItem is one pending local mutation waiting to be pushed to the
// remote system. Items are created by local mutation paths and mutated only
// by the sync engine (RetryCount is incremented on failure).
type SyncQueueItem struct {
	// ID is the queue item's own identifier (a UUID), distinct from the
	// entity it mutates.
	ID string `json:"id"`

	// Operation is the mutation kind. Create and update are both pushed as
	// an upsert; delete is pushed as a remote delete.
	Operation Operation `json:"operation"`

	// EntityType names the collection the mutation applies to.
	EntityType EntityType `json:"entity_type"`

	// EntityID identifies the mutated entity.
	EntityID string `json:"entity_id"`

	// Payload is the local-shaped field map captured at enqueue time.
	// Empty for deletes.
	Payload map[string]any `json:"payload,omitempty"`

	// EnqueuedAt records when the mutation was appended to the queue.
	EnqueuedAt time.Time `json:"enqueued_at"`

	// RetryCount is the number of failed push attempts so far. Once it
	// reaches the retry ceiling the item is moved to the dead-letter
	// collection instead of being retried again.
	RetryCount int `json:"retry_count"`
}

// DeadLetterItem is a permanently-failed queue item moved out of the sync
// queue so it no longer blocks or pollutes passes, preserved for inspection
// and manual repair instead of being silently discarded.
type DeadLetterItem struct {
	// ID is the dead-letter record's own identifier (a UUID).
	ID string `json:"id"`

	// QueueItemID is the id the item had while it was queued.
	QueueItemID string `json:"queue_item_id"`

	Operation  Operation      `json:"operation"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	EnqueuedAt time.Time      `json:"enqueued_at"`

	// Attempts is the number of push attempts made before giving up.
	Attempts int `json:"attempts"`

	// Reason describes the final failure (e.g. the last transport error, or
	// a remote validation rejection).
	Reason string `json:"reason"`

	// FailedAt records when the item was moved to the dead-letter collection.
	FailedAt time.Time `json:"failed_at"`
}
