package adapter

import "errors"

// Sentinel errors mapped from transport failures and HTTP status codes so
// that the sync engine can classify outcomes with [errors.Is] without knowing
// about HTTP.
var (
	// ErrAuthRequired means the remote rejected the credentials (401/403).
	// The whole sync pass aborts; no queue items are mutated, so the queue
	// is safe to retry after re-authentication.
	ErrAuthRequired = errors.New("remote authentication required")

	// ErrRemoteRejected means the remote refused the payload itself
	// (validation or schema failure, 400/409/422). The failure is permanent:
	// retrying the identical payload cannot succeed, so the item is
	// dead-lettered immediately.
	ErrRemoteRejected = errors.New("remote rejected the payload")

	// ErrUnavailable means a transient transport failure (timeout,
	// connection refused, 5xx, 429). The item stays queued and is retried
	// on the next pass via the retry-count mechanism.
	ErrUnavailable = errors.New("remote temporarily unavailable")
)
