package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/models"
)

// Settings keys. Watermarks are stored one row per collection under a
// "watermark:" prefix.
const (
	settingWatermarkPrefix = "watermark:"
	settingLastSyncAt      = "last_sync_at"
)

// settingsRepository is the SQLite-backed implementation of
// [SettingsRepository], a small key-value table for sync bookkeeping.
type settingsRepository struct {
	*DB
	logger *logger.Logger
}

// NewSettingsRepository constructs a [SettingsRepository] backed by the
// provided database connection and logger.
func NewSettingsRepository(db *DB, logger *logger.Logger) SettingsRepository {
	return &settingsRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *settingsRepository) Watermark(ctx context.Context, collection models.EntityType) (time.Time, error) {
	return r.getTime(ctx, settingWatermarkPrefix+collection.String())
}

func (r *settingsRepository) SetWatermark(ctx context.Context, collection models.EntityType, t time.Time) error {
	current, err := r.Watermark(ctx, collection)
	if err != nil {
		return err
	}
	// Watermarks never decrease.
	if t.Before(current) {
		r.logger.Warn().
			Str("collection", collection.String()).
			Time("current", current).
			Time("proposed", t).
			Msg("ignoring watermark regression")
		return nil
	}

	return r.setTime(ctx, settingWatermarkPrefix+collection.String(), t)
}

func (r *settingsRepository) ResetWatermarks(ctx context.Context) error {
	query, args, err := sq.Delete("settings").
		Where(sq.Like{"key": settingWatermarkPrefix + "%"}).
		ToSql()
	if err != nil {
		return storageErr("build reset watermarks query", err)
	}

	if _, err = r.execWrite(ctx, query, args...); err != nil {
		return storageErr("reset watermarks", err)
	}

	return nil
}

func (r *settingsRepository) LastSyncAt(ctx context.Context) (time.Time, error) {
	return r.getTime(ctx, settingLastSyncAt)
}

func (r *settingsRepository) SetLastSyncAt(ctx context.Context, t time.Time) error {
	return r.setTime(ctx, settingLastSyncAt, t)
}

func (r *settingsRepository) getTime(ctx context.Context, key string) (time.Time, error) {
	query, args, err := sq.Select("value").
		From("settings").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return time.Time{}, storageErr("build get setting query", err)
	}

	var value string
	if err = r.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, storageErr("get setting "+key, err)
	}

	ts, err := parseTime(value)
	if err != nil {
		return time.Time{}, storageErr("parse setting "+key, err)
	}

	return ts, nil
}

func (r *settingsRepository) setTime(ctx context.Context, key string, t time.Time) error {
	query, args, err := sq.Insert("settings").
		Columns("key", "value").
		Values(key, formatTime(t)).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return storageErr("build set setting query", err)
	}

	if _, err = r.execWrite(ctx, query, args...); err != nil {
		return storageErr("set setting "+key, err)
	}

	return nil
}
