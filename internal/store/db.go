package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/noa10/mataresit-app-sub003/internal/config"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
)

// DB wraps the local SQLite connection shared by all repositories.
//
// SQLite serializes writers at the file level, but concurrent write attempts
// from multiple goroutines surface as SQLITE_BUSY errors. The writeMu mutex
// serializes all mutating statements issued through this process instead.
type DB struct {
	*sql.DB

	writeMu sync.Mutex
	logger  *logger.Logger
}

// NewConnectSQLite opens (creating if necessary) the local SQLite database
// file named by cfg.DSN and verifies the connection with a ping.
func NewConnectSQLite(ctx context.Context, cfg config.ClientDB, log *logger.Logger) (*DB, error) {
	if err := createLocalDBFileIfNotExists(cfg.DSN); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file: %w", err)
	}

	conn, err := sql.Open("sqlite3", cfg.DSN+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to local database successfully")

	return &DB{
		DB:     conn,
		logger: log,
	}, nil
}

// NewDBFromSQL wraps an existing *sql.DB. Used by tests with sqlmock.
func NewDBFromSQL(db *sql.DB, log *logger.Logger) *DB {
	return &DB{DB: db, logger: log}
}

// execWrite runs a mutating statement under the process-wide write lock.
func (db *DB) execWrite(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	return db.ExecContext(ctx, query, args...)
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		if dir := filepath.Dir(dbFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("error creating DB directory: %w", err)
			}
		}
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}
