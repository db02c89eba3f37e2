// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/noa10/mataresit-app-sub003/internal/adapter"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/store"
	"github.com/noa10/mataresit-app-sub003/models"
)

// defaultPageSize bounds every remote listing call so a large account can
// never pull an unbounded response into memory.
const defaultPageSize = 200

// reconciler pulls remote changes down into the local store and runs the
// startup consistency sweep. It is owned by the engine and never called
// concurrently with itself.
type reconciler struct {
	entities store.EntityRepository
	settings store.SettingsRepository
	queue    store.QueueRepository
	remote   adapter.RemoteAPI
	log      *logger.Logger
	pageSize int
}

func newReconciler(storages *store.ClientStorages, remote adapter.RemoteAPI, log *logger.Logger) *reconciler {
	return &reconciler{
		entities: storages.Entities,
		settings: storages.Settings,
		queue:    storages.Queue,
		remote:   remote,
		log:      log,
		pageSize: defaultPageSize,
	}
}

// reconcileAll pulls every collection in the fixed registration order.
func (r *reconciler) reconcileAll(ctx context.Context) error {
	for _, entityType := range models.EntityTypes() {
		applied, err := r.reconcile(ctx, entityType)
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", entityType, err)
		}
		if applied > 0 {
			r.log.Info().
				Str("collection", entityType.String()).
				Int("applied", applied).
				Msg("remote changes applied")
		}
	}
	return nil
}

// reconcile fetches records changed since the collection's watermark, resolves
// each against the local copy and advances the watermark. The new watermark is
// captured before the first fetch, so a write that lands remotely mid-pass is
// picked up again next time instead of being skipped.
func (r *reconciler) reconcile(ctx context.Context, entityType models.EntityType) (int, error) {
	since, err := r.settings.Watermark(ctx, entityType)
	if err != nil {
		return 0, err
	}
	passStart := time.Now().UTC()

	applied := 0
	for offset := 0; ; offset += r.pageSize {
		records, err := r.remote.ListSince(ctx, entityType, since, r.pageSize, offset)
		if err != nil {
			return applied, err
		}
		for _, record := range records {
			if err := r.apply(ctx, entityType, record); err != nil {
				return applied, err
			}
			applied++
		}
		if len(records) < r.pageSize {
			break
		}
	}

	if err := r.settings.SetWatermark(ctx, entityType, passStart); err != nil {
		return applied, err
	}
	return applied, nil
}

func (r *reconciler) apply(ctx context.Context, entityType models.EntityType, record models.RemoteEntity) error {
	var local *models.Entity
	existing, err := r.entities.Get(ctx, entityType, record.ID)
	switch {
	case err == nil:
		local = &existing
	case errors.Is(err, store.ErrEntityNotFound):
		// first sighting of this entity on the device
	default:
		return err
	}
	winner := ResolveConflict(local, ToLocalEntity(entityType, record))
	return r.entities.Put(ctx, entityType, winner)
}

// sweep compares the full id inventory of both sides, collection by
// collection. Entities the remote never received are re-enqueued as creates;
// entities only the remote knows are fetched and stored. Remote id sets are
// listed concurrently, one goroutine per collection, each page-bounded.
func (r *reconciler) sweep(ctx context.Context) error {
	entityTypes := models.EntityTypes()
	remoteIDs := make([][]string, len(entityTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, entityType := range entityTypes {
		g.Go(func() error {
			ids, err := r.listAllRemoteIDs(gctx, entityType)
			if err != nil {
				return fmt.Errorf("list %s ids: %w", entityType, err)
			}
			remoteIDs[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, entityType := range entityTypes {
		if err := r.sweepCollection(ctx, entityType, remoteIDs[i]); err != nil {
			return fmt.Errorf("sweep %s: %w", entityType, err)
		}
	}
	return nil
}

func (r *reconciler) listAllRemoteIDs(ctx context.Context, entityType models.EntityType) ([]string, error) {
	var ids []string
	for offset := 0; ; offset += r.pageSize {
		page, err := r.remote.ListIDs(ctx, entityType, r.pageSize, offset)
		if err != nil {
			return nil, err
		}
		ids = append(ids, page.IDs...)
		if !page.More {
			return ids, nil
		}
	}
}

func (r *reconciler) sweepCollection(ctx context.Context, entityType models.EntityType, remoteIDs []string) error {
	localIDs, err := r.entities.GetAllIDs(ctx, entityType)
	if err != nil {
		return err
	}

	remoteSet := make(map[string]struct{}, len(remoteIDs))
	for _, id := range remoteIDs {
		remoteSet[id] = struct{}{}
	}
	localSet := make(map[string]struct{}, len(localIDs))
	for _, id := range localIDs {
		localSet[id] = struct{}{}
	}

	// Never-uploaded local entities go back through the queue so the usual
	// push path, with its retry and dead-letter handling, owns the upload.
	for _, id := range localIDs {
		if _, ok := remoteSet[id]; ok {
			continue
		}
		entity, err := r.entities.Get(ctx, entityType, id)
		if err != nil {
			return err
		}
		payload := make(map[string]any, len(entity.Fields)+1)
		for key, value := range entity.Fields {
			payload[key] = value
		}
		payload["updatedAt"] = entity.UpdatedAt.Format(time.RFC3339Nano)

		item := models.SyncQueueItem{
			ID:         uuid.NewString(),
			Operation:  models.OperationCreate,
			EntityType: entityType,
			EntityID:   id,
			Payload:    payload,
			EnqueuedAt: time.Now().UTC(),
		}
		if err := r.queue.Enqueue(ctx, item); err != nil {
			return err
		}
		r.log.Info().
			Str("collection", entityType.String()).
			Str("entity_id", id).
			Msg("local-only entity re-enqueued for upload")
	}

	// Remote-only entities are fetched in page-sized batches.
	var missing []string
	for _, id := range remoteIDs {
		if _, ok := localSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	for start := 0; start < len(missing); start += r.pageSize {
		end := min(start+r.pageSize, len(missing))
		records, err := r.remote.Fetch(ctx, entityType, missing[start:end])
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := r.apply(ctx, entityType, record); err != nil {
				return err
			}
		}
	}
	if len(missing) > 0 {
		r.log.Info().
			Str("collection", entityType.String()).
			Int("fetched", len(missing)).
			Msg("remote-only entities pulled down")
	}
	return nil
}
