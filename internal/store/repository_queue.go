package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/models"
)

// queueRepository is the SQLite-backed implementation of [QueueRepository].
// FIFO order is provided by the autoincrement seq column, not by enqueued_at,
// so items enqueued within the same clock tick still drain in append order.
type queueRepository struct {
	*DB
	logger *logger.Logger
}

// NewQueueRepository constructs a [QueueRepository] backed by the provided
// database connection and logger.
func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *queueRepository) Enqueue(ctx context.Context, item models.SyncQueueItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return storageErr("encode queue payload", err)
	}

	query, args, err := sq.Insert("sync_queue").
		Columns("id", "operation", "entity_type", "entity_id", "payload", "enqueued_at", "retry_count").
		Values(item.ID, item.Operation.String(), item.EntityType.String(), item.EntityID,
			string(payload), formatTime(item.EnqueuedAt), item.RetryCount).
		ToSql()
	if err != nil {
		return storageErr("build enqueue query", err)
	}

	if _, err = r.execWrite(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("queue_item_id", item.ID).
			Str("operation", item.Operation.String()).
			Str("entity_type", item.EntityType.String()).
			Str("entity_id", item.EntityID).
			Msg("failed to enqueue sync item")
		return storageErr("enqueue sync item", err)
	}

	return nil
}

func (r *queueRepository) PeekAll(ctx context.Context) ([]models.SyncQueueItem, error) {
	query, args, err := sq.Select("id", "operation", "entity_type", "entity_id", "payload", "enqueued_at", "retry_count").
		From("sync_queue").
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, storageErr("build peek queue query", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("peek sync queue", err)
	}
	defer rows.Close()

	var items []models.SyncQueueItem
	for rows.Next() {
		var (
			item       models.SyncQueueItem
			op         string
			entityType string
			payloadRaw string
			enqueuedAt string
		)
		if err = rows.Scan(&item.ID, &op, &entityType, &item.EntityID, &payloadRaw, &enqueuedAt, &item.RetryCount); err != nil {
			return nil, storageErr("scan queue row", err)
		}

		item.Operation = models.Operation(op)
		item.EntityType = models.EntityType(entityType)
		if item.EnqueuedAt, err = parseTime(enqueuedAt); err != nil {
			return nil, storageErr("parse queue enqueued_at", err)
		}
		if err = json.Unmarshal([]byte(payloadRaw), &item.Payload); err != nil {
			return nil, storageErr("decode queue payload", err)
		}

		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("iterate queue rows", err)
	}

	return items, nil
}

func (r *queueRepository) Remove(ctx context.Context, itemID string) error {
	query, args, err := sq.Delete("sync_queue").
		Where(sq.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return storageErr("build remove queue item query", err)
	}

	res, err := r.execWrite(ctx, query, args...)
	if err != nil {
		return storageErr("remove queue item", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("remove queue item rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("remove queue item %s: %w", itemID, ErrQueueItemNotFound)
	}

	return nil
}

func (r *queueRepository) IncrementRetry(ctx context.Context, itemID string) (int, error) {
	query, args, err := sq.Update("sync_queue").
		Set("retry_count", sq.Expr("retry_count + 1")).
		Where(sq.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return 0, storageErr("build increment retry query", err)
	}

	res, err := r.execWrite(ctx, query, args...)
	if err != nil {
		return 0, storageErr("increment retry count", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("increment retry rows affected", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("increment retry for %s: %w", itemID, ErrQueueItemNotFound)
	}

	selectQuery, selectArgs, err := sq.Select("retry_count").
		From("sync_queue").
		Where(sq.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return 0, storageErr("build read retry count query", err)
	}

	var count int
	if err = r.QueryRowContext(ctx, selectQuery, selectArgs...).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("read retry count for %s: %w", itemID, ErrQueueItemNotFound)
		}
		return 0, storageErr("read retry count", err)
	}

	return count, nil
}

func (r *queueRepository) PendingCount(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("sync_queue").ToSql()
	if err != nil {
		return 0, storageErr("build pending count query", err)
	}

	var count int
	if err = r.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, storageErr("count pending queue items", err)
	}

	return count, nil
}
