package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/storage"
)

// EnsureUser creates the user row if absent and returns the current record.
func (s *Store) EnsureUser(ctx context.Context, userID int64, startingCash int64) (storage.User, error) {
	if userID <= 0 {
		return storage.User{}, fmt.Errorf("user id is required")
	}
	if startingCash < 0 {
		return storage.User{}, fmt.Errorf("starting cash must not be negative")
	}

	now := time.Now().UTC()
	var user storage.User
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO users (id, cash, created_at, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			userID,
			startingCash,
			toMillis(now),
			toMillis(now),
		); err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		found, err := getUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	return user, err
}

// GetUser loads a user's cash record.
func (s *Store) GetUser(ctx context.Context, userID int64) (storage.User, error) {
	if s == nil || s.sqlDB == nil {
		return storage.User{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, cash, created_at, updated_at FROM users WHERE id = ?`,
		userID,
	)
	return scanUser(row)
}

// CreditUser adds cash to a user's balance, creating the row if needed.
func (s *Store) CreditUser(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return platformerrors.New(platformerrors.CodeAmountInvalid, "credit amount must be positive")
	}

	now := time.Now().UTC()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO users (id, cash, created_at, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   cash = cash + excluded.cash,
			   updated_at = excluded.updated_at`,
			userID,
			amount,
			toMillis(now),
			toMillis(now),
		); err != nil {
			return fmt.Errorf("credit user: %w", err)
		}
		return nil
	})
}

// debitUserTx subtracts cash inside an open transaction, failing with
// InsufficientCash when the balance cannot cover the amount.
func debitUserTx(ctx context.Context, tx *sql.Tx, userID int64, amount int64, now time.Time) error {
	user, err := getUserTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	if user.Cash < amount {
		return platformerrors.WithMetadata(
			platformerrors.CodeInsufficientCash,
			"user cash below requested amount",
			map[string]string{"Amount": strconv.FormatInt(amount, 10)},
		)
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE users SET cash = cash - ?, updated_at = ? WHERE id = ?`,
		amount,
		toMillis(now),
		userID,
	); err != nil {
		return fmt.Errorf("debit user: %w", err)
	}
	return nil
}

// creditUserTx adds cash inside an open transaction, creating the row if needed.
func creditUserTx(ctx context.Context, tx *sql.Tx, userID int64, amount int64, now time.Time) error {
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO users (id, cash, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   cash = cash + excluded.cash,
		   updated_at = excluded.updated_at`,
		userID,
		amount,
		toMillis(now),
		toMillis(now),
	); err != nil {
		return fmt.Errorf("credit user: %w", err)
	}
	return nil
}

func getUserTx(ctx context.Context, tx *sql.Tx, userID int64) (storage.User, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT id, cash, created_at, updated_at FROM users WHERE id = ?`,
		userID,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (storage.User, error) {
	var user storage.User
	var createdAt, updatedAt int64
	if err := row.Scan(&user.ID, &user.Cash, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return storage.User{}, platformerrors.New(platformerrors.CodeNotFound, "user not found")
		}
		return storage.User{}, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}
