package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

// CreateGangWithLeader debits the founding fee and creates the gang plus its
// leader membership in one transaction.
func (s *Store) CreateGangWithLeader(ctx context.Context, gang domain.Gang, foundingFee int64) (domain.Gang, error) {
	if foundingFee < 0 {
		return domain.Gang{}, fmt.Errorf("founding fee must not be negative")
	}

	now := time.Now().UTC()
	if gang.CreatedAt.IsZero() {
		gang.CreatedAt = now
	}
	gang.UpdatedAt = gang.CreatedAt
	if gang.Level <= 0 {
		gang.Level = 1
	}

	var created domain.Gang
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if foundingFee > 0 {
			if err := debitUserTx(ctx, tx, gang.OwnerID, foundingFee, now); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(
			ctx,
			`INSERT INTO gangs (name, tag, description, treasury, level, experience, respect, strength, defense, owner_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			gang.Name,
			gang.Tag,
			gang.Description,
			gang.Treasury,
			gang.Level,
			gang.Experience,
			gang.Respect,
			gang.Strength,
			gang.Defense,
			gang.OwnerID,
			toMillis(gang.CreatedAt),
			toMillis(gang.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err, "gangs.name") {
				return platformerrors.WithMetadata(platformerrors.CodeGangNameTaken, "gang name already exists", map[string]string{"Name": gang.Name})
			}
			if isUniqueViolation(err, "gangs.tag") {
				return platformerrors.WithMetadata(platformerrors.CodeGangTagTaken, "gang tag already exists", map[string]string{"Tag": gang.Tag})
			}
			return fmt.Errorf("insert gang: %w", err)
		}
		gangID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("gang insert id: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO gang_members (gang_id, user_id, role, contribution, joined_at)
			 VALUES (?, ?, ?, 0, ?)`,
			gangID,
			gang.OwnerID,
			string(domain.RoleLeader),
			toMillis(now),
		); err != nil {
			if isUniqueViolation(err, "gang_members.user_id") {
				return platformerrors.New(platformerrors.CodeAlreadyInGang, "founder already belongs to a gang")
			}
			return fmt.Errorf("insert leader membership: %w", err)
		}

		found, err := getGangTx(ctx, tx, gangID)
		if err != nil {
			return err
		}
		created = found
		return nil
	})
	return created, err
}

// GetGang loads a gang by id.
func (s *Store) GetGang(ctx context.Context, gangID int64) (domain.Gang, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Gang{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, gangSelect+` WHERE id = ?`, gangID)
	return scanGangRow(row)
}

// DepositToTreasury moves cash from the user to the gang treasury and bumps
// the member's lifetime contribution, atomically.
func (s *Store) DepositToTreasury(ctx context.Context, gangID, userID int64, amount int64) (domain.Gang, error) {
	if amount <= 0 {
		return domain.Gang{}, platformerrors.New(platformerrors.CodeAmountInvalid, "deposit amount must be positive")
	}

	now := time.Now().UTC()
	var updated domain.Gang
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getGangTx(ctx, tx, gangID); err != nil {
			return err
		}
		if err := debitUserTx(ctx, tx, userID, amount, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE gangs SET treasury = treasury + ?, updated_at = ? WHERE id = ?`,
			amount,
			toMillis(now),
			gangID,
		); err != nil {
			return fmt.Errorf("credit treasury: %w", err)
		}

		result, err := tx.ExecContext(
			ctx,
			`UPDATE gang_members SET contribution = contribution + ? WHERE gang_id = ? AND user_id = ?`,
			amount,
			gangID,
			userID,
		)
		if err != nil {
			return fmt.Errorf("bump member contribution: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("bump member contribution: %w", err)
		}
		if affected == 0 {
			return platformerrors.New(platformerrors.CodeNotAMember, "depositor is not a member of the gang")
		}

		found, err := getGangTx(ctx, tx, gangID)
		if err != nil {
			return err
		}
		updated = found
		return nil
	})
	return updated, err
}

// WithdrawFromTreasury moves cash from the gang treasury to the user. The
// treasury balance is re-checked inside the transaction.
func (s *Store) WithdrawFromTreasury(ctx context.Context, gangID, userID int64, amount int64) (domain.Gang, error) {
	if amount <= 0 {
		return domain.Gang{}, platformerrors.New(platformerrors.CodeAmountInvalid, "withdraw amount must be positive")
	}

	now := time.Now().UTC()
	var updated domain.Gang
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		gang, err := getGangTx(ctx, tx, gangID)
		if err != nil {
			return err
		}
		if gang.Treasury < amount {
			return platformerrors.WithMetadata(
				platformerrors.CodeInsufficientTreasury,
				"treasury below requested amount",
				map[string]string{"Amount": strconv.FormatInt(amount, 10)},
			)
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE gangs SET treasury = treasury - ?, updated_at = ? WHERE id = ?`,
			amount,
			toMillis(now),
			gangID,
		); err != nil {
			return fmt.Errorf("debit treasury: %w", err)
		}
		if err := creditUserTx(ctx, tx, userID, amount, now); err != nil {
			return err
		}

		found, err := getGangTx(ctx, tx, gangID)
		if err != nil {
			return err
		}
		updated = found
		return nil
	})
	return updated, err
}

// CreditTreasury adds rewards to a gang and recomputes its level.
func (s *Store) CreditTreasury(ctx context.Context, gangID int64, cash, respect, experience int64) (domain.Gang, error) {
	if cash < 0 || respect < 0 || experience < 0 {
		return domain.Gang{}, platformerrors.New(platformerrors.CodeAmountInvalid, "reward amounts must not be negative")
	}

	now := time.Now().UTC()
	var updated domain.Gang
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		found, err := creditGangTx(ctx, tx, gangID, cash, respect, experience, now)
		if err != nil {
			return err
		}
		updated = found
		return nil
	})
	return updated, err
}

// DeleteGangCascade removes the gang and everything it owns in one
// transaction: participants, wars, attempts, memberships, and territory
// control.
func (s *Store) DeleteGangCascade(ctx context.Context, gangID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getGangTx(ctx, tx, gangID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM war_participants
			 WHERE war_id IN (SELECT id FROM wars WHERE attacker_gang_id = ? OR defender_gang_id = ?)`,
			gangID,
			gangID,
		); err != nil {
			return fmt.Errorf("delete war participants: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM wars WHERE attacker_gang_id = ? OR defender_gang_id = ?`,
			gangID,
			gangID,
		); err != nil {
			return fmt.Errorf("delete wars: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE territories SET controlled_by = NULL, last_income_at = NULL WHERE controlled_by = ?`,
			gangID,
		); err != nil {
			return fmt.Errorf("release territories: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM mission_attempts WHERE gang_id = ?`, gangID); err != nil {
			return fmt.Errorf("delete mission attempts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM gang_members WHERE gang_id = ?`, gangID); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM gangs WHERE id = ?`, gangID); err != nil {
			return fmt.Errorf("delete gang: %w", err)
		}
		return nil
	})
}

const gangSelect = `SELECT id, name, tag, description, treasury, level, experience, respect, strength, defense, owner_id, created_at, updated_at FROM gangs`

// creditGangTx applies rewards inside an open transaction and recomputes the
// gang's level from its new experience total.
func creditGangTx(ctx context.Context, tx *sql.Tx, gangID int64, cash, respect, experience int64, now time.Time) (domain.Gang, error) {
	gang, err := getGangTx(ctx, tx, gangID)
	if err != nil {
		return domain.Gang{}, err
	}
	newExperience := gang.Experience + experience
	newLevel := domain.LevelForExperience(newExperience)
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE gangs
		 SET treasury = treasury + ?, respect = respect + ?, experience = ?, level = ?, updated_at = ?
		 WHERE id = ?`,
		cash,
		respect,
		newExperience,
		newLevel,
		toMillis(now),
		gangID,
	); err != nil {
		return domain.Gang{}, fmt.Errorf("credit gang: %w", err)
	}
	return getGangTx(ctx, tx, gangID)
}

func getGangTx(ctx context.Context, tx *sql.Tx, gangID int64) (domain.Gang, error) {
	row := tx.QueryRowContext(ctx, gangSelect+` WHERE id = ?`, gangID)
	return scanGangRow(row)
}

func scanGangRow(row *sql.Row) (domain.Gang, error) {
	var gang domain.Gang
	var createdAt, updatedAt int64
	if err := row.Scan(
		&gang.ID,
		&gang.Name,
		&gang.Tag,
		&gang.Description,
		&gang.Treasury,
		&gang.Level,
		&gang.Experience,
		&gang.Respect,
		&gang.Strength,
		&gang.Defense,
		&gang.OwnerID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Gang{}, platformerrors.New(platformerrors.CodeGangNotFound, "gang not found")
		}
		return domain.Gang{}, fmt.Errorf("scan gang: %w", err)
	}
	gang.CreatedAt = fromMillis(createdAt)
	gang.UpdatedAt = fromMillis(updatedAt)
	return gang, nil
}

// isUniqueViolation reports whether the error is a UNIQUE constraint failure
// on the given column.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") && strings.Contains(message, column)
}
