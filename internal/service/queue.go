// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/store"
	"github.com/noa10/mataresit-app-sub003/models"
)

type clientQueueService struct {
	queue   store.QueueRepository
	trigger Trigger
	online  OnlineChecker
	log     *logger.Logger
}

// NewQueueService wires the mutation queue. trigger and online may come from
// the engine and connectivity monitor, or be stubs in tests.
func NewQueueService(queue store.QueueRepository, trigger Trigger, online OnlineChecker, log *logger.Logger) QueueService {
	return &clientQueueService{
		queue:   queue,
		trigger: trigger,
		online:  online,
		log:     log,
	}
}

func (s *clientQueueService) Enqueue(ctx context.Context, op models.Operation, entityType models.EntityType, entityID string, payload map[string]any) (string, error) {
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, op)
	}
	if !entityType.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntityType, entityType)
	}

	item := models.SyncQueueItem{
		ID:         uuid.NewString(),
		Operation:  op,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, item); err != nil {
		return "", err
	}

	s.log.Debug().
		Str("item_id", item.ID).
		Str("op", op.String()).
		Str("collection", entityType.String()).
		Str("entity_id", entityID).
		Msg("mutation enqueued")

	// Best-effort kick: the mutation is durable either way, so an offline
	// device just waits for the next connectivity edge or timer tick.
	if s.online.IsOnline() {
		s.trigger.TriggerSync("enqueue")
	}
	return item.ID, nil
}

func (s *clientQueueService) PendingCount(ctx context.Context) (int, error) {
	return s.queue.PendingCount(ctx)
}
