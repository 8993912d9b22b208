// Package sqlite provides SQLite-backed persistence for gang service state.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackhand-games/syndicate/internal/platform/storage/sqlitemigrate"
	"github.com/blackhand-games/syndicate/internal/services/gang/storage"
	"github.com/blackhand-games/syndicate/internal/services/gang/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// busyRetries bounds how often a transaction is retried on lock contention
// before the failure surfaces to the caller.
const busyRetries = 3

// Store provides SQLite-backed persistence for gang service state.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a gang SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite allows a single writer; funneling every connection through one
	// handle keeps read-modify-write transactions serialized instead of
	// failing with SQLITE_BUSY under concurrent load.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// inTx runs fn inside a transaction, retrying a bounded number of times when
// SQLite reports lock contention. Domain errors pass through untouched.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	var lastErr error
	for attempt := 0; attempt <= busyRetries; attempt++ {
		tx, err := s.sqlDB.BeginTx(ctx, nil)
		if err != nil {
			if isBusyError(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("start transaction: %w", err)
		}

		err = fn(tx)
		if err == nil {
			if commitErr := tx.Commit(); commitErr != nil {
				if isBusyError(commitErr) {
					lastErr = commitErr
					continue
				}
				return fmt.Errorf("commit transaction: %w", commitErr)
			}
			return nil
		}

		_ = tx.Rollback()
		if isBusyError(err) {
			lastErr = err
			continue
		}
		return err
	}
	return fmt.Errorf("transaction retries exhausted: %w", lastErr)
}

// isBusyError reports whether the error indicates transient lock contention.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "database is locked") || strings.Contains(value, "database table is locked") || strings.Contains(value, "sqlite_busy")
}

// runMigrations applies embedded SQL migrations in filename order.
func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value *time.Time) sql.NullInt64 {
	if value == nil || value.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: value.UTC().UnixMilli(), Valid: true}
}

func fromNullMillis(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	converted := time.UnixMilli(value.Int64).UTC()
	return &converted
}

func toNullID(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func fromNullID(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	converted := value.Int64
	return &converted
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

var _ storage.Store = (*Store)(nil)
