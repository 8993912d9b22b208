package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

// PutMission inserts or updates a catalog mission by id.
func (s *Store) PutMission(ctx context.Context, mission domain.Mission) error {
	if mission.ID <= 0 {
		return fmt.Errorf("mission id is required")
	}
	if mission.Name == "" {
		return fmt.Errorf("mission name is required")
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO missions (id, name, description, duration_seconds, cooldown_seconds, required_members, cash_reward, respect_reward, experience_reward, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name,
			   description = excluded.description,
			   duration_seconds = excluded.duration_seconds,
			   cooldown_seconds = excluded.cooldown_seconds,
			   required_members = excluded.required_members,
			   cash_reward = excluded.cash_reward,
			   respect_reward = excluded.respect_reward,
			   experience_reward = excluded.experience_reward,
			   is_active = excluded.is_active`,
			mission.ID,
			mission.Name,
			mission.Description,
			int64(mission.Duration/time.Second),
			int64(mission.Cooldown/time.Second),
			mission.RequiredMembers,
			mission.CashReward,
			mission.RespectReward,
			mission.ExperienceReward,
			boolToInt(mission.IsActive),
		); err != nil {
			return fmt.Errorf("upsert mission: %w", err)
		}
		return nil
	})
}

// GetMission loads a catalog mission by id.
func (s *Store) GetMission(ctx context.Context, missionID int64) (domain.Mission, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Mission{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, missionSelect+` WHERE id = ?`, missionID)
	return scanMissionRow(row)
}

// ListMissions returns the full catalog ordered by id.
func (s *Store) ListMissions(ctx context.Context) ([]domain.Mission, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, missionSelect+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		mission, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		missions = append(missions, mission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return missions, nil
}

// LatestAttempt returns the gang's most recent attempt for a mission.
func (s *Store) LatestAttempt(ctx context.Context, gangID, missionID int64) (domain.MissionAttempt, error) {
	if s == nil || s.sqlDB == nil {
		return domain.MissionAttempt{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		attemptSelect+` WHERE gang_id = ? AND mission_id = ? ORDER BY started_at DESC, id DESC LIMIT 1`,
		gangID,
		missionID,
	)
	return scanAttemptRow(row)
}

// GetAttempt loads an attempt by id.
func (s *Store) GetAttempt(ctx context.Context, attemptID int64) (domain.MissionAttempt, error) {
	if s == nil || s.sqlDB == nil {
		return domain.MissionAttempt{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, attemptSelect+` WHERE id = ?`, attemptID)
	return scanAttemptRow(row)
}

// ListActiveAttempts returns the gang's in-progress attempts.
func (s *Store) ListActiveAttempts(ctx context.Context, gangID int64) ([]domain.MissionAttempt, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		attemptSelect+` WHERE gang_id = ? AND status = ? ORDER BY started_at ASC, id ASC`,
		gangID,
		string(domain.AttemptStatusInProgress),
	)
	if err != nil {
		return nil, fmt.Errorf("list active attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.MissionAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active attempts: %w", err)
	}
	return attempts, nil
}

// StartAttempt creates an in-progress attempt. Cooldown and in-progress
// uniqueness are re-checked inside the transaction; the partial unique index
// backs the in-progress check under concurrency.
func (s *Store) StartAttempt(ctx context.Context, attempt domain.MissionAttempt) (domain.MissionAttempt, error) {
	if attempt.GangID <= 0 || attempt.MissionID <= 0 {
		return domain.MissionAttempt{}, fmt.Errorf("gang id and mission id are required")
	}
	if attempt.Status == "" {
		attempt.Status = domain.AttemptStatusInProgress
	}

	var created domain.MissionAttempt
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		latest, err := latestAttemptTx(ctx, tx, attempt.GangID, attempt.MissionID)
		if err != nil && !platformerrors.IsCode(err, platformerrors.CodeAttemptNotFound) {
			return err
		}
		if err == nil {
			if latest.Status == domain.AttemptStatusInProgress {
				return platformerrors.New(platformerrors.CodeAttemptInProgress, "mission attempt already in progress")
			}
			if latest.NextAvailableAt.After(attempt.StartedAt) {
				return platformerrors.New(platformerrors.CodeMissionOnCooldown, "mission cooldown is active")
			}
		}

		result, err := tx.ExecContext(
			ctx,
			`INSERT INTO mission_attempts (gang_id, mission_id, status, started_at, completes_at, next_available_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			attempt.GangID,
			attempt.MissionID,
			string(attempt.Status),
			toMillis(attempt.StartedAt),
			toMillis(attempt.CompletesAt),
			toMillis(attempt.NextAvailableAt),
		)
		if err != nil {
			if isUniqueViolation(err, "mission_attempts") {
				return platformerrors.New(platformerrors.CodeAttemptInProgress, "mission attempt already in progress")
			}
			return fmt.Errorf("insert mission attempt: %w", err)
		}
		attemptID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("attempt insert id: %w", err)
		}

		found, err := getAttemptTx(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		created = found
		return nil
	})
	return created, err
}

// CompleteAttempt transitions a due in-progress attempt to completed. It is
// a no-op for attempts in any other state, so repeated checks are safe.
func (s *Store) CompleteAttempt(ctx context.Context, attemptID int64, now time.Time) (domain.MissionAttempt, error) {
	now = now.UTC()
	var updated domain.MissionAttempt
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		attempt, err := getAttemptTx(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		if !attempt.DueForCompletion(now) {
			updated = attempt
			return nil
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE mission_attempts SET status = ? WHERE id = ? AND status = ?`,
			string(domain.AttemptStatusCompleted),
			attemptID,
			string(domain.AttemptStatusInProgress),
		); err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}
		found, err := getAttemptTx(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		updated = found
		return nil
	})
	return updated, err
}

// RewardAttempt credits the gang with the mission rewards and marks the
// attempt rewarded, atomically. Only completed attempts may be rewarded.
func (s *Store) RewardAttempt(ctx context.Context, attemptID int64) (domain.MissionAttempt, domain.Gang, error) {
	now := time.Now().UTC()
	var rewarded domain.MissionAttempt
	var gang domain.Gang
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		attempt, err := getAttemptTx(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		if attempt.Status != domain.AttemptStatusCompleted {
			return platformerrors.New(platformerrors.CodeAttemptNotReady, "attempt is not ready to reward")
		}

		row := tx.QueryRowContext(ctx, missionSelect+` WHERE id = ?`, attempt.MissionID)
		mission, err := scanMissionRow(row)
		if err != nil {
			return err
		}

		// The WHERE status guard makes double rewarding impossible even if
		// two callers race past the read above.
		result, err := tx.ExecContext(
			ctx,
			`UPDATE mission_attempts SET status = ? WHERE id = ? AND status = ?`,
			string(domain.AttemptStatusRewarded),
			attemptID,
			string(domain.AttemptStatusCompleted),
		)
		if err != nil {
			return fmt.Errorf("reward attempt: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("reward attempt: %w", err)
		}
		if affected == 0 {
			return platformerrors.New(platformerrors.CodeAttemptNotReady, "attempt is not ready to reward")
		}

		credited, err := creditGangTx(ctx, tx, attempt.GangID, mission.CashReward, mission.RespectReward, mission.ExperienceReward, now)
		if err != nil {
			return err
		}

		found, err := getAttemptTx(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		rewarded = found
		gang = credited
		return nil
	})
	if err != nil {
		return domain.MissionAttempt{}, domain.Gang{}, err
	}
	return rewarded, gang, nil
}

const missionSelect = `SELECT id, name, description, duration_seconds, cooldown_seconds, required_members, cash_reward, respect_reward, experience_reward, is_active FROM missions`

const attemptSelect = `SELECT id, gang_id, mission_id, status, started_at, completes_at, next_available_at FROM mission_attempts`

func latestAttemptTx(ctx context.Context, tx *sql.Tx, gangID, missionID int64) (domain.MissionAttempt, error) {
	row := tx.QueryRowContext(
		ctx,
		attemptSelect+` WHERE gang_id = ? AND mission_id = ? ORDER BY started_at DESC, id DESC LIMIT 1`,
		gangID,
		missionID,
	)
	return scanAttemptRow(row)
}

func getAttemptTx(ctx context.Context, tx *sql.Tx, attemptID int64) (domain.MissionAttempt, error) {
	row := tx.QueryRowContext(ctx, attemptSelect+` WHERE id = ?`, attemptID)
	return scanAttemptRow(row)
}

func scanMissionRow(row *sql.Row) (domain.Mission, error) {
	var mission domain.Mission
	var durationSeconds, cooldownSeconds, isActive int64
	if err := row.Scan(
		&mission.ID,
		&mission.Name,
		&mission.Description,
		&durationSeconds,
		&cooldownSeconds,
		&mission.RequiredMembers,
		&mission.CashReward,
		&mission.RespectReward,
		&mission.ExperienceReward,
		&isActive,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Mission{}, platformerrors.New(platformerrors.CodeMissionNotFound, "mission not found")
		}
		return domain.Mission{}, fmt.Errorf("scan mission: %w", err)
	}
	mission.Duration = time.Duration(durationSeconds) * time.Second
	mission.Cooldown = time.Duration(cooldownSeconds) * time.Second
	mission.IsActive = isActive != 0
	return mission, nil
}

func scanMission(rows *sql.Rows) (domain.Mission, error) {
	var mission domain.Mission
	var durationSeconds, cooldownSeconds, isActive int64
	if err := rows.Scan(
		&mission.ID,
		&mission.Name,
		&mission.Description,
		&durationSeconds,
		&cooldownSeconds,
		&mission.RequiredMembers,
		&mission.CashReward,
		&mission.RespectReward,
		&mission.ExperienceReward,
		&isActive,
	); err != nil {
		return domain.Mission{}, fmt.Errorf("scan mission: %w", err)
	}
	mission.Duration = time.Duration(durationSeconds) * time.Second
	mission.Cooldown = time.Duration(cooldownSeconds) * time.Second
	mission.IsActive = isActive != 0
	return mission, nil
}

func scanAttemptRow(row *sql.Row) (domain.MissionAttempt, error) {
	var attempt domain.MissionAttempt
	var status string
	var startedAt, completesAt, nextAvailableAt int64
	if err := row.Scan(
		&attempt.ID,
		&attempt.GangID,
		&attempt.MissionID,
		&status,
		&startedAt,
		&completesAt,
		&nextAvailableAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.MissionAttempt{}, platformerrors.New(platformerrors.CodeAttemptNotFound, "mission attempt not found")
		}
		return domain.MissionAttempt{}, fmt.Errorf("scan mission attempt: %w", err)
	}
	attempt.Status = domain.AttemptStatus(status)
	attempt.StartedAt = fromMillis(startedAt)
	attempt.CompletesAt = fromMillis(completesAt)
	attempt.NextAvailableAt = fromMillis(nextAvailableAt)
	return attempt, nil
}

func scanAttempt(rows *sql.Rows) (domain.MissionAttempt, error) {
	var attempt domain.MissionAttempt
	var status string
	var startedAt, completesAt, nextAvailableAt int64
	if err := rows.Scan(
		&attempt.ID,
		&attempt.GangID,
		&attempt.MissionID,
		&status,
		&startedAt,
		&completesAt,
		&nextAvailableAt,
	); err != nil {
		return domain.MissionAttempt{}, fmt.Errorf("scan mission attempt: %w", err)
	}
	attempt.Status = domain.AttemptStatus(status)
	attempt.StartedAt = fromMillis(startedAt)
	attempt.CompletesAt = fromMillis(completesAt)
	attempt.NextAvailableAt = fromMillis(nextAvailableAt)
	return attempt, nil
}
