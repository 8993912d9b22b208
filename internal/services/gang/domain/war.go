package domain

import "time"

// WarStatus identifies the war lifecycle state. The machine is
// active -> completed with no other transitions.
type WarStatus string

const (
	WarStatusActive    WarStatus = "active"
	WarStatusCompleted WarStatus = "completed"
)

// WarSide identifies which side of a war a participant fights on.
// The side is fixed when the participant joins.
type WarSide string

const (
	WarSideAttacker WarSide = "attacker"
	WarSideDefender WarSide = "defender"
)

// War is a conflict between two gangs over a territory. Strengths accumulate
// from participant contributions; resolution is an explicit call naming the
// winner.
type War struct {
	ID              int64
	TerritoryID     int64
	AttackerGangID  int64
	DefenderGangID  int64
	AttackStrength  int64
	DefenseStrength int64
	Status          WarStatus
	StartedAt       time.Time
	EndedAt         *time.Time
	WinnerGangID    *int64
}

// WarParticipant records one user's stake in a war.
type WarParticipant struct {
	WarID        int64
	UserID       int64
	GangID       int64
	Side         WarSide
	Contribution int64
	JoinedAt     time.Time
}

// Active reports whether the war still accepts contributions.
func (w War) Active() bool {
	return w.Status == WarStatusActive
}

// SideFor derives the war side for a gang. The second return is false when
// the gang has no stake in the war.
func (w War) SideFor(gangID int64) (WarSide, bool) {
	switch gangID {
	case w.AttackerGangID:
		return WarSideAttacker, true
	case w.DefenderGangID:
		return WarSideDefender, true
	}
	return "", false
}

// HasStake reports whether the gang fights on either side of the war.
func (w War) HasStake(gangID int64) bool {
	_, ok := w.SideFor(gangID)
	return ok
}

// EffectiveDefense returns the defense strength with the territory's defense
// bonus applied. Informational only: resolution never compares strengths
// automatically.
func (w War) EffectiveDefense(defenseBonusPercent int) int64 {
	return w.DefenseStrength * int64(100+defenseBonusPercent) / 100
}
