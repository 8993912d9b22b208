package domain

import "time"

// Territory is a map location controlled by at most one gang, generating
// passive daily income for its controller.
type Territory struct {
	ID                  int64
	Name                string
	ControlledBy        *int64
	IncomePerDay        int64
	DefenseBonusPercent int
	AttackCooldownUntil *time.Time
	LastIncomeAt        *time.Time
}

// OnCooldown reports whether the territory's attack gate is closed.
func (t Territory) OnCooldown(now time.Time) bool {
	return t.AttackCooldownUntil != nil && t.AttackCooldownUntil.After(now)
}

// ControlledByGang reports whether the given gang controls this territory.
func (t Territory) ControlledByGang(gangID int64) bool {
	return t.ControlledBy != nil && *t.ControlledBy == gangID
}

// IncomeDays returns how many whole income days have elapsed since the last
// accrual watermark. Territories without a controller accrue nothing.
func (t Territory) IncomeDays(now time.Time) int64 {
	if t.ControlledBy == nil || t.LastIncomeAt == nil {
		return 0
	}
	elapsed := now.Sub(*t.LastIncomeAt)
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / (24 * time.Hour))
}
