package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

// PutTerritory inserts or updates a catalog territory by name. Control state
// and watermarks on existing rows are preserved.
func (s *Store) PutTerritory(ctx context.Context, territory domain.Territory) (domain.Territory, error) {
	if territory.Name == "" {
		return domain.Territory{}, fmt.Errorf("territory name is required")
	}

	var stored domain.Territory
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO territories (name, controlled_by, income_per_day, defense_bonus_percent, attack_cooldown_until, last_income_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET
			   income_per_day = excluded.income_per_day,
			   defense_bonus_percent = excluded.defense_bonus_percent`,
			territory.Name,
			toNullID(territory.ControlledBy),
			territory.IncomePerDay,
			territory.DefenseBonusPercent,
			toNullMillis(territory.AttackCooldownUntil),
			toNullMillis(territory.LastIncomeAt),
		); err != nil {
			return fmt.Errorf("upsert territory: %w", err)
		}

		row := tx.QueryRowContext(ctx, territorySelect+` WHERE name = ?`, territory.Name)
		found, err := scanTerritoryRow(row)
		if err != nil {
			return err
		}
		stored = found
		return nil
	})
	return stored, err
}

// GetTerritory loads a territory by id.
func (s *Store) GetTerritory(ctx context.Context, territoryID int64) (domain.Territory, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Territory{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, territorySelect+` WHERE id = ?`, territoryID)
	return scanTerritoryRow(row)
}

// ListTerritories returns every territory ordered by name.
func (s *Store) ListTerritories(ctx context.Context) ([]domain.Territory, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	return s.listTerritories(ctx, territorySelect+` ORDER BY name ASC`)
}

// ListTerritoriesByGang returns the territories the gang controls.
func (s *Store) ListTerritoriesByGang(ctx context.Context, gangID int64) ([]domain.Territory, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	return s.listTerritories(ctx, territorySelect+` WHERE controlled_by = ? ORDER BY name ASC`, gangID)
}

// CaptureTerritory transfers control of an uncontrolled territory to the gang
// and arms the attack cooldown. Both preconditions are re-checked inside the
// transaction against the caller's clock.
func (s *Store) CaptureTerritory(ctx context.Context, territoryID, gangID int64, now, cooldownUntil time.Time) (domain.Territory, error) {
	now = now.UTC()
	var captured domain.Territory
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		territory, err := getTerritoryTx(ctx, tx, territoryID)
		if err != nil {
			return err
		}
		if territory.ControlledBy != nil {
			if *territory.ControlledBy == gangID {
				return platformerrors.New(platformerrors.CodeTerritoryOwnGang, "gang already controls the territory")
			}
			return platformerrors.New(platformerrors.CodeWarNotEligible, "controlled territory changes hands through war")
		}
		if territory.OnCooldown(now) {
			return platformerrors.New(platformerrors.CodeTerritoryOnCooldown, "territory attack cooldown is active")
		}
		if _, err := getGangTx(ctx, tx, gangID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE territories
			 SET controlled_by = ?, attack_cooldown_until = ?, last_income_at = ?
			 WHERE id = ?`,
			gangID,
			toMillis(cooldownUntil),
			toMillis(now),
			territoryID,
		); err != nil {
			return fmt.Errorf("capture territory: %w", err)
		}

		found, err := getTerritoryTx(ctx, tx, territoryID)
		if err != nil {
			return err
		}
		captured = found
		return nil
	})
	return captured, err
}

// AccrueTerritoryIncome credits controlling gangs for whole elapsed income
// days and advances each territory's watermark by exactly the days credited.
// The partial remainder keeps accruing toward the next day.
func (s *Store) AccrueTerritoryIncome(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	var total int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(
			ctx,
			territorySelect+` WHERE controlled_by IS NOT NULL AND last_income_at IS NOT NULL ORDER BY id ASC`,
		)
		if err != nil {
			return fmt.Errorf("list controlled territories: %w", err)
		}
		var due []domain.Territory
		for rows.Next() {
			territory, err := scanTerritory(rows)
			if err != nil {
				rows.Close()
				return err
			}
			due = append(due, territory)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("list controlled territories: %w", err)
		}
		rows.Close()

		for _, territory := range due {
			days := territory.IncomeDays(now)
			if days == 0 {
				continue
			}
			amount := days * territory.IncomePerDay
			watermark := territory.LastIncomeAt.Add(time.Duration(days) * 24 * time.Hour)

			if amount > 0 {
				if _, err := creditGangTx(ctx, tx, *territory.ControlledBy, amount, 0, 0, now); err != nil {
					return err
				}
				total += amount
			}
			if _, err := tx.ExecContext(
				ctx,
				`UPDATE territories SET last_income_at = ? WHERE id = ?`,
				toMillis(watermark),
				territory.ID,
			); err != nil {
				return fmt.Errorf("advance income watermark: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

const territorySelect = `SELECT id, name, controlled_by, income_per_day, defense_bonus_percent, attack_cooldown_until, last_income_at FROM territories`

func (s *Store) listTerritories(ctx context.Context, query string, args ...any) ([]domain.Territory, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list territories: %w", err)
	}
	defer rows.Close()

	var territories []domain.Territory
	for rows.Next() {
		territory, err := scanTerritory(rows)
		if err != nil {
			return nil, err
		}
		territories = append(territories, territory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list territories: %w", err)
	}
	return territories, nil
}

func getTerritoryTx(ctx context.Context, tx *sql.Tx, territoryID int64) (domain.Territory, error) {
	row := tx.QueryRowContext(ctx, territorySelect+` WHERE id = ?`, territoryID)
	return scanTerritoryRow(row)
}

// setTerritoryControlTx hands a territory to a gang and resets its income
// watermark, used when a war resolves in the attacker's favor.
func setTerritoryControlTx(ctx context.Context, tx *sql.Tx, territoryID, gangID int64, cooldownUntil time.Time, now time.Time) error {
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE territories
		 SET controlled_by = ?, attack_cooldown_until = ?, last_income_at = ?
		 WHERE id = ?`,
		gangID,
		toMillis(cooldownUntil),
		toMillis(now),
		territoryID,
	); err != nil {
		return fmt.Errorf("transfer territory control: %w", err)
	}
	return nil
}

func scanTerritoryRow(row *sql.Row) (domain.Territory, error) {
	var territory domain.Territory
	var controlledBy, cooldownUntil, lastIncomeAt sql.NullInt64
	if err := row.Scan(
		&territory.ID,
		&territory.Name,
		&controlledBy,
		&territory.IncomePerDay,
		&territory.DefenseBonusPercent,
		&cooldownUntil,
		&lastIncomeAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Territory{}, platformerrors.New(platformerrors.CodeTerritoryNotFound, "territory not found")
		}
		return domain.Territory{}, fmt.Errorf("scan territory: %w", err)
	}
	territory.ControlledBy = fromNullID(controlledBy)
	territory.AttackCooldownUntil = fromNullMillis(cooldownUntil)
	territory.LastIncomeAt = fromNullMillis(lastIncomeAt)
	return territory, nil
}

func scanTerritory(rows *sql.Rows) (domain.Territory, error) {
	var territory domain.Territory
	var controlledBy, cooldownUntil, lastIncomeAt sql.NullInt64
	if err := rows.Scan(
		&territory.ID,
		&territory.Name,
		&controlledBy,
		&territory.IncomePerDay,
		&territory.DefenseBonusPercent,
		&cooldownUntil,
		&lastIncomeAt,
	); err != nil {
		return domain.Territory{}, fmt.Errorf("scan territory: %w", err)
	}
	territory.ControlledBy = fromNullID(controlledBy)
	territory.AttackCooldownUntil = fromNullMillis(cooldownUntil)
	territory.LastIncomeAt = fromNullMillis(lastIncomeAt)
	return territory, nil
}
