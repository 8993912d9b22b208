package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

// CreateWar opens an active war over a territory. The territory's cooldown
// and controller are re-checked inside the transaction at war.StartedAt, so a
// capture racing ahead of the caller's read fails here instead of opening a
// war against a stale defender. The partial unique index on active wars
// enforces at most one per territory.
func (s *Store) CreateWar(ctx context.Context, war domain.War) (domain.War, error) {
	if war.TerritoryID <= 0 || war.AttackerGangID <= 0 || war.DefenderGangID <= 0 {
		return domain.War{}, fmt.Errorf("territory and both gangs are required")
	}
	if war.AttackerGangID == war.DefenderGangID {
		return domain.War{}, platformerrors.New(platformerrors.CodeWarNotEligible, "a gang cannot war against itself")
	}
	if war.Status == "" {
		war.Status = domain.WarStatusActive
	}
	if war.StartedAt.IsZero() {
		war.StartedAt = time.Now().UTC()
	}

	var created domain.War
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		territory, err := getTerritoryTx(ctx, tx, war.TerritoryID)
		if err != nil {
			return err
		}
		if territory.OnCooldown(war.StartedAt) {
			return platformerrors.New(platformerrors.CodeTerritoryOnCooldown, "territory attack cooldown is active")
		}
		if territory.ControlledBy == nil {
			return platformerrors.New(platformerrors.CodeWarNotEligible, "uncontrolled territory is captured, not contested")
		}
		if *territory.ControlledBy == war.AttackerGangID {
			return platformerrors.New(platformerrors.CodeTerritoryOwnGang, "gang already controls the territory")
		}
		if *territory.ControlledBy != war.DefenderGangID {
			return platformerrors.New(platformerrors.CodeWarNotEligible, "defender no longer controls the territory")
		}
		if _, err := getGangTx(ctx, tx, war.AttackerGangID); err != nil {
			return err
		}
		if _, err := getGangTx(ctx, tx, war.DefenderGangID); err != nil {
			return err
		}

		result, err := tx.ExecContext(
			ctx,
			`INSERT INTO wars (territory_id, attacker_gang_id, defender_gang_id, attack_strength, defense_strength, status, started_at, ended_at, winner_gang_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			war.TerritoryID,
			war.AttackerGangID,
			war.DefenderGangID,
			war.AttackStrength,
			war.DefenseStrength,
			string(war.Status),
			toMillis(war.StartedAt),
			toNullMillis(war.EndedAt),
			toNullID(war.WinnerGangID),
		)
		if err != nil {
			if isUniqueViolation(err, "wars") {
				return platformerrors.New(platformerrors.CodeAlreadyAtWar, "territory already has an active war")
			}
			return fmt.Errorf("insert war: %w", err)
		}
		warID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("war insert id: %w", err)
		}

		found, err := getWarTx(ctx, tx, warID)
		if err != nil {
			return err
		}
		created = found
		return nil
	})
	return created, err
}

// GetWar loads a war by id.
func (s *Store) GetWar(ctx context.Context, warID int64) (domain.War, error) {
	if s == nil || s.sqlDB == nil {
		return domain.War{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, warSelect+` WHERE id = ?`, warID)
	return scanWarRow(row)
}

// GetActiveWarByTerritory loads the territory's active war, if any.
func (s *Store) GetActiveWarByTerritory(ctx context.Context, territoryID int64) (domain.War, error) {
	if s == nil || s.sqlDB == nil {
		return domain.War{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		warSelect+` WHERE territory_id = ? AND status = ?`,
		territoryID,
		string(domain.WarStatusActive),
	)
	return scanWarRow(row)
}

// ListActiveWarsByGang returns the active wars the gang fights on either side.
func (s *Store) ListActiveWarsByGang(ctx context.Context, gangID int64) ([]domain.War, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		warSelect+` WHERE status = ? AND (attacker_gang_id = ? OR defender_gang_id = ?) ORDER BY started_at ASC, id ASC`,
		string(domain.WarStatusActive),
		gangID,
		gangID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active wars: %w", err)
	}
	defer rows.Close()

	var wars []domain.War
	for rows.Next() {
		war, err := scanWar(rows)
		if err != nil {
			return nil, err
		}
		wars = append(wars, war)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active wars: %w", err)
	}
	return wars, nil
}

// JoinWar records a participant on a fixed side of an active war.
func (s *Store) JoinWar(ctx context.Context, participant domain.WarParticipant) (domain.WarParticipant, error) {
	if participant.WarID <= 0 || participant.UserID <= 0 || participant.GangID <= 0 {
		return domain.WarParticipant{}, fmt.Errorf("war, user, and gang are required")
	}
	if participant.JoinedAt.IsZero() {
		participant.JoinedAt = time.Now().UTC()
	}

	var created domain.WarParticipant
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		war, err := getWarTx(ctx, tx, participant.WarID)
		if err != nil {
			return err
		}
		if !war.Active() {
			return platformerrors.New(platformerrors.CodeWarCompleted, "war is already resolved")
		}
		side, ok := war.SideFor(participant.GangID)
		if !ok {
			return platformerrors.New(platformerrors.CodeWarNotEligible, "gang has no stake in the war")
		}
		participant.Side = side

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO war_participants (war_id, user_id, gang_id, side, contribution, joined_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			participant.WarID,
			participant.UserID,
			participant.GangID,
			string(participant.Side),
			participant.Contribution,
			toMillis(participant.JoinedAt),
		); err != nil {
			if isUniqueViolation(err, "war_participants") {
				return platformerrors.New(platformerrors.CodeAlreadyJoinedWar, "user already joined the war")
			}
			return fmt.Errorf("insert war participant: %w", err)
		}

		found, err := getWarParticipantTx(ctx, tx, participant.WarID, participant.UserID)
		if err != nil {
			return err
		}
		created = found
		return nil
	})
	return created, err
}

// GetWarParticipant loads one user's stake in a war.
func (s *Store) GetWarParticipant(ctx context.Context, warID, userID int64) (domain.WarParticipant, error) {
	if s == nil || s.sqlDB == nil {
		return domain.WarParticipant{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		participantSelect+` WHERE war_id = ? AND user_id = ?`,
		warID,
		userID,
	)
	return scanWarParticipantRow(row)
}

// ListWarParticipants returns every participant ordered by join time.
func (s *Store) ListWarParticipants(ctx context.Context, warID int64) ([]domain.WarParticipant, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		participantSelect+` WHERE war_id = ? ORDER BY joined_at ASC, user_id ASC`,
		warID,
	)
	if err != nil {
		return nil, fmt.Errorf("list war participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.WarParticipant
	for rows.Next() {
		participant, err := scanWarParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list war participants: %w", err)
	}
	return participants, nil
}

// AddWarContribution debits the user's cash as a sunk cost, auto-joins the
// participant if absent, and adds the amount to both the participant's
// contribution and their side's strength. Everything happens in one
// transaction so a failed debit leaves no partial state.
func (s *Store) AddWarContribution(ctx context.Context, warID, userID, gangID int64, side domain.WarSide, amount int64) (domain.War, error) {
	if amount <= 0 {
		return domain.War{}, platformerrors.New(platformerrors.CodeAmountInvalid, "contribution amount must be positive")
	}

	now := time.Now().UTC()
	var updated domain.War
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		war, err := getWarTx(ctx, tx, warID)
		if err != nil {
			return err
		}
		if !war.Active() {
			return platformerrors.New(platformerrors.CodeWarCompleted, "war is already resolved")
		}
		warSide, ok := war.SideFor(gangID)
		if !ok {
			return platformerrors.New(platformerrors.CodeWarNotEligible, "gang has no stake in the war")
		}
		if side != "" && side != warSide {
			return platformerrors.New(platformerrors.CodeWarNotEligible, "side does not match the gang's stake")
		}

		if err := debitUserTx(ctx, tx, userID, amount, now); err != nil {
			return err
		}

		// Auto-join keeps the participant's side fixed at first contact.
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO war_participants (war_id, user_id, gang_id, side, contribution, joined_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(war_id, user_id) DO UPDATE SET
			   contribution = contribution + excluded.contribution`,
			warID,
			userID,
			gangID,
			string(warSide),
			amount,
			toMillis(now),
		); err != nil {
			return fmt.Errorf("upsert war participant: %w", err)
		}

		column := "attack_strength"
		if warSide == domain.WarSideDefender {
			column = "defense_strength"
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE wars SET `+column+` = `+column+` + ? WHERE id = ?`,
			amount,
			warID,
		); err != nil {
			return fmt.Errorf("bump war strength: %w", err)
		}

		found, err := getWarTx(ctx, tx, warID)
		if err != nil {
			return err
		}
		updated = found
		return nil
	})
	return updated, err
}

// CompleteWar resolves an active war and transfers the territory to the
// winner in the same transaction. Resolving an already completed war fails.
func (s *Store) CompleteWar(ctx context.Context, warID, winnerGangID int64, endedAt time.Time, cooldownUntil time.Time) (domain.War, error) {
	endedAt = endedAt.UTC()
	var resolved domain.War
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		war, err := getWarTx(ctx, tx, warID)
		if err != nil {
			return err
		}
		if !war.Active() {
			return platformerrors.New(platformerrors.CodeWarCompleted, "war is already resolved")
		}
		if !war.HasStake(winnerGangID) {
			return platformerrors.New(platformerrors.CodeWarWinnerInvalid, "winner must be the attacker or the defender")
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE wars SET status = ?, ended_at = ?, winner_gang_id = ? WHERE id = ?`,
			string(domain.WarStatusCompleted),
			toMillis(endedAt),
			winnerGangID,
			warID,
		); err != nil {
			return fmt.Errorf("complete war: %w", err)
		}

		if err := setTerritoryControlTx(ctx, tx, war.TerritoryID, winnerGangID, cooldownUntil, endedAt); err != nil {
			return err
		}

		found, err := getWarTx(ctx, tx, warID)
		if err != nil {
			return err
		}
		resolved = found
		return nil
	})
	return resolved, err
}

const warSelect = `SELECT id, territory_id, attacker_gang_id, defender_gang_id, attack_strength, defense_strength, status, started_at, ended_at, winner_gang_id FROM wars`

const participantSelect = `SELECT war_id, user_id, gang_id, side, contribution, joined_at FROM war_participants`

func getWarTx(ctx context.Context, tx *sql.Tx, warID int64) (domain.War, error) {
	row := tx.QueryRowContext(ctx, warSelect+` WHERE id = ?`, warID)
	return scanWarRow(row)
}

func getWarParticipantTx(ctx context.Context, tx *sql.Tx, warID, userID int64) (domain.WarParticipant, error) {
	row := tx.QueryRowContext(ctx, participantSelect+` WHERE war_id = ? AND user_id = ?`, warID, userID)
	return scanWarParticipantRow(row)
}

func scanWarRow(row *sql.Row) (domain.War, error) {
	var war domain.War
	var status string
	var startedAt int64
	var endedAt, winner sql.NullInt64
	if err := row.Scan(
		&war.ID,
		&war.TerritoryID,
		&war.AttackerGangID,
		&war.DefenderGangID,
		&war.AttackStrength,
		&war.DefenseStrength,
		&status,
		&startedAt,
		&endedAt,
		&winner,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.War{}, platformerrors.New(platformerrors.CodeWarNotFound, "war not found")
		}
		return domain.War{}, fmt.Errorf("scan war: %w", err)
	}
	war.Status = domain.WarStatus(status)
	war.StartedAt = fromMillis(startedAt)
	war.EndedAt = fromNullMillis(endedAt)
	war.WinnerGangID = fromNullID(winner)
	return war, nil
}

func scanWar(rows *sql.Rows) (domain.War, error) {
	var war domain.War
	var status string
	var startedAt int64
	var endedAt, winner sql.NullInt64
	if err := rows.Scan(
		&war.ID,
		&war.TerritoryID,
		&war.AttackerGangID,
		&war.DefenderGangID,
		&war.AttackStrength,
		&war.DefenseStrength,
		&status,
		&startedAt,
		&endedAt,
		&winner,
	); err != nil {
		return domain.War{}, fmt.Errorf("scan war: %w", err)
	}
	war.Status = domain.WarStatus(status)
	war.StartedAt = fromMillis(startedAt)
	war.EndedAt = fromNullMillis(endedAt)
	war.WinnerGangID = fromNullID(winner)
	return war, nil
}

func scanWarParticipantRow(row *sql.Row) (domain.WarParticipant, error) {
	var participant domain.WarParticipant
	var side string
	var joinedAt int64
	if err := row.Scan(
		&participant.WarID,
		&participant.UserID,
		&participant.GangID,
		&side,
		&participant.Contribution,
		&joinedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.WarParticipant{}, platformerrors.New(platformerrors.CodeNotFound, "war participant not found")
		}
		return domain.WarParticipant{}, fmt.Errorf("scan war participant: %w", err)
	}
	participant.Side = domain.WarSide(side)
	participant.JoinedAt = fromMillis(joinedAt)
	return participant, nil
}

func scanWarParticipant(rows *sql.Rows) (domain.WarParticipant, error) {
	var participant domain.WarParticipant
	var side string
	var joinedAt int64
	if err := rows.Scan(
		&participant.WarID,
		&participant.UserID,
		&participant.GangID,
		&side,
		&participant.Contribution,
		&joinedAt,
	); err != nil {
		return domain.WarParticipant{}, fmt.Errorf("scan war participant: %w", err)
	}
	participant.Side = domain.WarSide(side)
	participant.JoinedAt = fromMillis(joinedAt)
	return participant, nil
}
