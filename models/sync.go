package models

import "time"

// SyncStatus is the process-wide state of the sync engine. It has a single
// writer (the engine) and any number of readers via the status stream.
type SyncStatus string

const (
	// SyncStatusIdle means no pass is running.
	SyncStatusIdle SyncStatus = "idle"

	// SyncStatusSyncing means a pass is in flight; concurrent triggers are
	// dropped while in this state.
	SyncStatusSyncing SyncStatus = "syncing"

	// SyncStatusCompleted means the last pass drained the queue and
	// reconciled without a pass-level error. Individual item failures do not
	// prevent this state.
	SyncStatusCompleted SyncStatus = "completed"

	// SyncStatusFailed means the last pass aborted: reconciliation threw, or
	// a pass-level error (auth, local storage) ended the drain early.
	SyncStatusFailed SyncStatus = "failed"
)

func (s SyncStatus) String() string { return string(s) }

// SyncSnapshot is the observability view handed to UI consumers: how many
// mutations still wait in the queue, when a pass last completed, whether the
// client currently believes it is online, and how many mutations were
// permanently parked in the dead-letter collection.
type SyncSnapshot struct {
	PendingCount    int       `json:"pending_count"`
	DeadLetterCount int       `json:"dead_letter_count"`
	LastSyncAt      time.Time `json:"last_sync_at"`
	IsOnline        bool      `json:"is_online"`
}
