package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrStorage marks any local I/O failure. Callers other than the sync
	// engine should treat it as fatal to the operation but not to the
	// process; the sync engine aborts the whole pass.
	ErrStorage = errors.New("local storage failure")

	// ErrEntityNotFound is returned when a lookup targets an entity id that
	// does not exist in the requested collection.
	ErrEntityNotFound = errors.New("entity was not found")

	// ErrQueueItemNotFound is returned when a remove or retry-increment
	// targets a queue item id that is no longer queued.
	ErrQueueItemNotFound = errors.New("sync queue item was not found")
)

// StorageError wraps a low-level database error with the operation that
// produced it. It matches [ErrStorage] under [errors.Is].
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// storageErr wraps err as a *StorageError for operation op.
func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
