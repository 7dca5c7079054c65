package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/service"
)

var _ service.Store = (*SQLiteStorage)(nil)

// DefaultRetryOptions bounds how long a write waits on a locked database.
var DefaultRetryOptions = service.RetryOptions{
	MaxAttempts:  5,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     time.Second,
	Multiplier:   2,
}

// SQLiteStorage implements service.Store using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	retry  service.RetryOptions
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps writes serialized and lets :memory: survive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		retry:  DefaultRetryOptions,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file the storage was opened on.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// NewCheckpointManager creates a new checkpoint manager for this storage instance.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	return NewCheckpointManager(s.db, s.dbPath)
}

// write runs op, retrying while the database reports it is busy.
func (s *SQLiteStorage) write(ctx context.Context, op func() error) error {
	return common.WithRetry(ctx, func() error {
		return translateError(op())
	}, s.retry)
}

// inTx runs fn inside a single database transaction, committing only if fn succeeds.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.write(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// translateError maps driver errors onto the store's error vocabulary.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch {
	case sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked:
		return fmt.Errorf("%w: %w", common.ErrStoreBusy, err)
	case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %w", common.ErrDuplicateName, err)
	case sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %w", common.ErrNotFound, err)
	default:
		return err
	}
}
