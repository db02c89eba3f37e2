// SPDX-License-Identifier: Apache-2.0

// Package adapter provides the transport layer for communicating with the
// remote system of record.
//
// The primary abstraction is [RemoteAPI], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteAPI]) built on resty.
//
// Error values defined in errors.go are mapped from transport failures and
// HTTP status codes so that callers can use [errors.Is] for
// transport-agnostic error handling.
package adapter

import (
	"context"
	"time"

	"github.com/noa10/mataresit-app-sub003/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_api_mock.go -package=mock

// RemoteAPI defines transport-agnostic communication with the remote system
// of record. Implementations are responsible for serialisation,
// authentication header management, and mapping transport-level errors to
// the sentinel values defined in this package.
//
// Upserts are idempotent by construction: pushing the same record twice
// yields identical remote state.
type RemoteAPI interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Principal returns the identifier of the authenticated principal (the
	// token's subject claim). Reconciliation is scoped to this principal's
	// data. Returns an error if no token is set or the subject cannot be
	// extracted.
	Principal() (string, error)

	// Ping probes the remote health endpoint. Used by the connectivity
	// monitor; any error means "offline".
	Ping(ctx context.Context) error

	// Upsert inserts or updates the record in the named remote collection,
	// keyed by its id.
	Upsert(ctx context.Context, collection models.EntityType, record models.RemoteEntity) error

	// Delete removes the record with the given id from the remote
	// collection. Deleting an absent id succeeds.
	Delete(ctx context.Context, collection models.EntityType, id string) error

	// ListSince returns records whose updated_at is at or after since,
	// paginated by limit and offset.
	ListSince(ctx context.Context, collection models.EntityType, since time.Time, limit, offset int) ([]models.RemoteEntity, error)

	// ListIDs returns one page of the collection's full id set. Used by the
	// startup consistency sweep.
	ListIDs(ctx context.Context, collection models.EntityType, limit, offset int) (models.RemoteIDPage, error)

	// Fetch returns the full records for the given ids. Ids unknown to the
	// remote are silently omitted from the result.
	Fetch(ctx context.Context, collection models.EntityType, ids []string) ([]models.RemoteEntity, error)
}
