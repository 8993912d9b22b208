package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

// AddMember creates a membership. The unique index on user_id enforces at
// most one membership per user across all gangs.
func (s *Store) AddMember(ctx context.Context, member domain.Member) (domain.Member, error) {
	if member.GangID <= 0 || member.UserID <= 0 {
		return domain.Member{}, fmt.Errorf("gang id and user id are required")
	}
	if _, ok := domain.NormalizeRole(string(member.Role)); !ok {
		return domain.Member{}, platformerrors.New(platformerrors.CodeRoleInvalid, "unknown member role")
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}

	var created domain.Member
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getGangTx(ctx, tx, member.GangID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO gang_members (gang_id, user_id, role, contribution, joined_at)
			 VALUES (?, ?, ?, ?, ?)`,
			member.GangID,
			member.UserID,
			string(member.Role),
			member.Contribution,
			toMillis(member.JoinedAt),
		); err != nil {
			if isUniqueViolation(err, "gang_members") {
				return platformerrors.New(platformerrors.CodeAlreadyInGang, "user already belongs to a gang")
			}
			return fmt.Errorf("insert membership: %w", err)
		}
		found, err := getMemberTx(ctx, tx, member.UserID)
		if err != nil {
			return err
		}
		created = found
		return nil
	})
	return created, err
}

// GetMember loads the user's membership across all gangs.
func (s *Store) GetMember(ctx context.Context, userID int64) (domain.Member, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Member{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, memberSelect+` WHERE user_id = ?`, userID)
	return scanMemberRow(row)
}

// RemoveMember deletes a membership.
func (s *Store) RemoveMember(ctx context.Context, gangID, userID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`DELETE FROM gang_members WHERE gang_id = ? AND user_id = ?`,
			gangID,
			userID,
		)
		if err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		if affected == 0 {
			return platformerrors.New(platformerrors.CodeNotAMember, "user is not a member of the gang")
		}
		return nil
	})
}

// SetMemberRole updates a member's role.
func (s *Store) SetMemberRole(ctx context.Context, gangID, userID int64, role domain.Role) error {
	if _, ok := domain.NormalizeRole(string(role)); !ok {
		return platformerrors.New(platformerrors.CodeRoleInvalid, "unknown member role")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`UPDATE gang_members SET role = ? WHERE gang_id = ? AND user_id = ?`,
			string(role),
			gangID,
			userID,
		)
		if err != nil {
			return fmt.Errorf("update member role: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update member role: %w", err)
		}
		if affected == 0 {
			return platformerrors.New(platformerrors.CodeNotAMember, "user is not a member of the gang")
		}
		return nil
	})
}

// ListMembers returns the gang roster ordered by join time.
func (s *Store) ListMembers(ctx context.Context, gangID int64) ([]domain.Member, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		memberSelect+` WHERE gang_id = ? ORDER BY joined_at ASC, user_id ASC`,
		gangID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// MemberCount returns the size of the gang roster.
func (s *Store) MemberCount(ctx context.Context, gangID int64) (int, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM gang_members WHERE gang_id = ?`,
		gangID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

const memberSelect = `SELECT gang_id, user_id, role, contribution, joined_at FROM gang_members`

func getMemberTx(ctx context.Context, tx *sql.Tx, userID int64) (domain.Member, error) {
	row := tx.QueryRowContext(ctx, memberSelect+` WHERE user_id = ?`, userID)
	return scanMemberRow(row)
}

func scanMemberRow(row *sql.Row) (domain.Member, error) {
	var member domain.Member
	var role string
	var joinedAt int64
	if err := row.Scan(&member.GangID, &member.UserID, &role, &member.Contribution, &joinedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Member{}, platformerrors.New(platformerrors.CodeNotAMember, "user does not belong to a gang")
		}
		return domain.Member{}, fmt.Errorf("scan member: %w", err)
	}
	member.Role = domain.Role(role)
	member.JoinedAt = fromMillis(joinedAt)
	return member, nil
}

func scanMember(rows *sql.Rows) (domain.Member, error) {
	var member domain.Member
	var role string
	var joinedAt int64
	if err := rows.Scan(&member.GangID, &member.UserID, &role, &member.Contribution, &joinedAt); err != nil {
		return domain.Member{}, fmt.Errorf("scan member: %w", err)
	}
	member.Role = domain.Role(role)
	member.JoinedAt = fromMillis(joinedAt)
	return member, nil
}
