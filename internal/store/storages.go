package store

import (
	"context"
	"fmt"

	"github.com/noa10/mataresit-app-sub003/internal/config"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/migrations"
)

// NewClientStorages opens the local database, applies migrations, and wires
// up every repository.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("connect local database: %w", err)
	}

	if err = migrations.Migrate(db.DB); err != nil {
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	return &ClientStorages{
		Entities:    NewEntityRepository(db, log),
		Queue:       NewQueueRepository(db, log),
		Settings:    NewSettingsRepository(db, log),
		DeadLetters: NewDeadLetterRepository(db, log),
	}, nil
}
