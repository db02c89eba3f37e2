package store

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/models"
)

// deadLetterRepository is the SQLite-backed implementation of
// [DeadLetterRepository].
type deadLetterRepository struct {
	*DB
	logger *logger.Logger
}

// NewDeadLetterRepository constructs a [DeadLetterRepository] backed by the
// provided database connection and logger.
func NewDeadLetterRepository(db *DB, logger *logger.Logger) DeadLetterRepository {
	return &deadLetterRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *deadLetterRepository) Add(ctx context.Context, item models.DeadLetterItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return storageErr("encode dead letter payload", err)
	}

	query, args, err := sq.Insert("dead_letters").
		Columns("id", "queue_item_id", "operation", "entity_type", "entity_id",
			"payload", "enqueued_at", "attempts", "reason", "failed_at").
		Values(item.ID, item.QueueItemID, item.Operation.String(), item.EntityType.String(),
			item.EntityID, string(payload), formatTime(item.EnqueuedAt),
			item.Attempts, item.Reason, formatTime(item.FailedAt)).
		ToSql()
	if err != nil {
		return storageErr("build add dead letter query", err)
	}

	if _, err = r.execWrite(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("queue_item_id", item.QueueItemID).
			Str("entity_id", item.EntityID).
			Msg("failed to store dead letter")
		return storageErr("add dead letter", err)
	}

	return nil
}

func (r *deadLetterRepository) GetAll(ctx context.Context) ([]models.DeadLetterItem, error) {
	query, args, err := sq.Select("id", "queue_item_id", "operation", "entity_type", "entity_id",
		"payload", "enqueued_at", "attempts", "reason", "failed_at").
		From("dead_letters").
		OrderBy("failed_at DESC").
		ToSql()
	if err != nil {
		return nil, storageErr("build get dead letters query", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("get dead letters", err)
	}
	defer rows.Close()

	var items []models.DeadLetterItem
	for rows.Next() {
		var (
			item       models.DeadLetterItem
			op         string
			entityType string
			payloadRaw string
			enqueuedAt string
			failedAt   string
		)
		if err = rows.Scan(&item.ID, &item.QueueItemID, &op, &entityType, &item.EntityID,
			&payloadRaw, &enqueuedAt, &item.Attempts, &item.Reason, &failedAt); err != nil {
			return nil, storageErr("scan dead letter row", err)
		}

		item.Operation = models.Operation(op)
		item.EntityType = models.EntityType(entityType)
		if item.EnqueuedAt, err = parseTime(enqueuedAt); err != nil {
			return nil, storageErr("parse dead letter enqueued_at", err)
		}
		if item.FailedAt, err = parseTime(failedAt); err != nil {
			return nil, storageErr("parse dead letter failed_at", err)
		}
		if err = json.Unmarshal([]byte(payloadRaw), &item.Payload); err != nil {
			return nil, storageErr("decode dead letter payload", err)
		}

		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("iterate dead letter rows", err)
	}

	return items, nil
}

func (r *deadLetterRepository) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("dead_letters").ToSql()
	if err != nil {
		return 0, storageErr("build dead letter count query", err)
	}

	var count int
	if err = r.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, storageErr("count dead letters", err)
	}

	return count, nil
}
