package domain

import "time"

// Mission is a catalog-defined cooperative objective. The catalog is
// read-only data shipped with the binary.
type Mission struct {
	ID               int64
	Name             string
	Description      string
	Duration         time.Duration
	Cooldown         time.Duration
	RequiredMembers  int
	CashReward       int64
	RespectReward    int64
	ExperienceReward int64
	IsActive         bool
}

// AttemptStatus identifies the mission attempt lifecycle state. The machine
// is in-progress -> completed -> rewarded; rewarded is terminal.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in-progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
	AttemptStatusRewarded   AttemptStatus = "rewarded"
)

// MissionAttempt is one gang's run at a mission.
type MissionAttempt struct {
	ID              int64
	GangID          int64
	MissionID       int64
	Status          AttemptStatus
	StartedAt       time.Time
	CompletesAt     time.Time
	NextAvailableAt time.Time
}

// DueForCompletion reports whether an in-progress attempt has run its
// duration and should transition to completed.
func (a MissionAttempt) DueForCompletion(now time.Time) bool {
	return a.Status == AttemptStatusInProgress && !now.Before(a.CompletesAt)
}

// MissionAvailability is the per-gang availability read model for one
// catalog mission.
type MissionAvailability struct {
	Mission          Mission
	OnCooldown       bool
	HasEnoughMembers bool
	CanAttempt       bool
	NextAvailableAt  *time.Time
}

// Availability computes whether a gang can attempt the mission right now.
// latest is the gang's most recent attempt for this mission, nil if none.
func Availability(mission Mission, latest *MissionAttempt, memberCount int, now time.Time) MissionAvailability {
	availability := MissionAvailability{
		Mission:          mission,
		HasEnoughMembers: memberCount >= mission.RequiredMembers,
	}
	if latest != nil {
		if latest.Status == AttemptStatusInProgress {
			availability.OnCooldown = true
			availability.NextAvailableAt = &latest.NextAvailableAt
		} else if latest.NextAvailableAt.After(now) {
			availability.OnCooldown = true
			availability.NextAvailableAt = &latest.NextAvailableAt
		}
	}
	availability.CanAttempt = mission.IsActive && !availability.OnCooldown && availability.HasEnoughMembers
	return availability
}
