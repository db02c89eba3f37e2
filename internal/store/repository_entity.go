package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/models"
)

// entityRepository is the SQLite-backed implementation of [EntityRepository].
// All collections share the "entities" table, partitioned by the collection
// column.
type entityRepository struct {
	*DB
	logger *logger.Logger
}

// NewEntityRepository constructs an [EntityRepository] backed by the provided
// database connection and logger.
func NewEntityRepository(db *DB, logger *logger.Logger) EntityRepository {
	return &entityRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *entityRepository) Put(ctx context.Context, collection models.EntityType, entity models.Entity) error {
	fields, err := json.Marshal(entity.Fields)
	if err != nil {
		return storageErr("encode entity fields", err)
	}

	query, args, err := sq.Insert("entities").
		Columns("collection", "id", "updated_at", "fields").
		Values(collection.String(), entity.ID, formatTime(entity.UpdatedAt), string(fields)).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET updated_at = excluded.updated_at, fields = excluded.fields").
		ToSql()
	if err != nil {
		return storageErr("build put entity query", err)
	}

	if _, err = r.execWrite(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("collection", collection.String()).
			Str("entity_id", entity.ID).
			Msg("failed to put entity")
		return storageErr("put entity", err)
	}

	return nil
}

func (r *entityRepository) Get(ctx context.Context, collection models.EntityType, id string) (models.Entity, error) {
	query, args, err := sq.Select("id", "updated_at", "fields").
		From("entities").
		Where(sq.Eq{"collection": collection.String(), "id": id}).
		ToSql()
	if err != nil {
		return models.Entity{}, storageErr("build get entity query", err)
	}

	row := r.QueryRowContext(ctx, query, args...)

	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entity{}, fmt.Errorf("get entity %s/%s: %w", collection, id, ErrEntityNotFound)
		}
		return models.Entity{}, storageErr("get entity", err)
	}

	return entity, nil
}

func (r *entityRepository) GetAll(ctx context.Context, collection models.EntityType) ([]models.Entity, error) {
	query, args, err := sq.Select("id", "updated_at", "fields").
		From("entities").
		Where(sq.Eq{"collection": collection.String()}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, storageErr("build get all entities query", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("get all entities", err)
	}
	defer rows.Close()

	var entities []models.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, storageErr("scan entity row", err)
		}
		entities = append(entities, entity)
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("iterate entity rows", err)
	}

	return entities, nil
}

func (r *entityRepository) GetAllIDs(ctx context.Context, collection models.EntityType) ([]string, error) {
	query, args, err := sq.Select("id").
		From("entities").
		Where(sq.Eq{"collection": collection.String()}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, storageErr("build get entity ids query", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("get entity ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, storageErr("scan entity id", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("iterate entity id rows", err)
	}

	return ids, nil
}

func (r *entityRepository) Delete(ctx context.Context, collection models.EntityType, id string) error {
	query, args, err := sq.Delete("entities").
		Where(sq.Eq{"collection": collection.String(), "id": id}).
		ToSql()
	if err != nil {
		return storageErr("build delete entity query", err)
	}

	if _, err = r.execWrite(ctx, query, args...); err != nil {
		return storageErr("delete entity", err)
	}

	return nil
}

func (r *entityRepository) Clear(ctx context.Context, collection models.EntityType) error {
	query, args, err := sq.Delete("entities").
		Where(sq.Eq{"collection": collection.String()}).
		ToSql()
	if err != nil {
		return storageErr("build clear collection query", err)
	}

	if _, err = r.execWrite(ctx, query, args...); err != nil {
		return storageErr("clear collection", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (models.Entity, error) {
	var (
		id        string
		updatedAt string
		fieldsRaw string
	)
	if err := row.Scan(&id, &updatedAt, &fieldsRaw); err != nil {
		return models.Entity{}, err
	}

	ts, err := parseTime(updatedAt)
	if err != nil {
		return models.Entity{}, fmt.Errorf("parse entity updated_at: %w", err)
	}

	var fields map[string]any
	if err = json.Unmarshal([]byte(fieldsRaw), &fields); err != nil {
		return models.Entity{}, fmt.Errorf("decode entity fields: %w", err)
	}

	return models.Entity{ID: id, UpdatedAt: ts, Fields: fields}, nil
}

// formatTime renders timestamps for TEXT columns, always in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
