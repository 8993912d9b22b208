// Package storage defines persistence contracts for gang service state.
//
// Every read-then-write operation here is transactional: preconditions
// (balances, cooldowns, uniqueness) are re-checked inside the transaction
// that performs the write, never assumed from an earlier read. Precondition
// failures surface as coded domain errors from internal/platform/errors.
package storage

import (
	"context"
	"time"

	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

// User is the core's projection of a player: the trusted numeric id resolved
// by the auth layer plus the cash balance the ledger transacts against.
type User struct {
	ID        int64
	Cash      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserStore persists player cash balances.
type UserStore interface {
	// EnsureUser creates the user row with the given starting cash if it
	// does not exist yet, and returns the current record either way.
	EnsureUser(ctx context.Context, userID int64, startingCash int64) (User, error)
	GetUser(ctx context.Context, userID int64) (User, error)
	// CreditUser adds cash to a user's balance.
	CreditUser(ctx context.Context, userID int64, amount int64) error
}

// GangStore persists gang records and the ledger operations on treasuries.
type GangStore interface {
	// CreateGangWithLeader debits the founding fee from the founder's cash
	// and creates the gang together with its leader membership in one
	// transaction. The fee debit failing aborts gang creation.
	CreateGangWithLeader(ctx context.Context, gang domain.Gang, foundingFee int64) (domain.Gang, error)
	GetGang(ctx context.Context, gangID int64) (domain.Gang, error)
	// DepositToTreasury moves cash from the user into the gang treasury and
	// bumps the member's lifetime contribution, atomically.
	DepositToTreasury(ctx context.Context, gangID, userID int64, amount int64) (domain.Gang, error)
	// WithdrawFromTreasury moves cash from the gang treasury to the user.
	WithdrawFromTreasury(ctx context.Context, gangID, userID int64, amount int64) (domain.Gang, error)
	// CreditTreasury adds funds, respect, and experience to a gang and
	// recomputes its level, atomically.
	CreditTreasury(ctx context.Context, gangID int64, cash, respect, experience int64) (domain.Gang, error)
	// DeleteGangCascade removes the gang and everything it owns: members,
	// wars and their participants, mission attempts, and territory control.
	// The cascade is one transaction.
	DeleteGangCascade(ctx context.Context, gangID int64) error
}

// MemberStore persists the gang roster.
type MemberStore interface {
	// AddMember creates a membership; a user may hold at most one.
	AddMember(ctx context.Context, member domain.Member) (domain.Member, error)
	GetMember(ctx context.Context, userID int64) (domain.Member, error)
	RemoveMember(ctx context.Context, gangID, userID int64) error
	SetMemberRole(ctx context.Context, gangID, userID int64, role domain.Role) error
	ListMembers(ctx context.Context, gangID int64) ([]domain.Member, error)
	MemberCount(ctx context.Context, gangID int64) (int, error)
}

// TerritoryStore persists world territories and their control state.
type TerritoryStore interface {
	PutTerritory(ctx context.Context, territory domain.Territory) (domain.Territory, error)
	GetTerritory(ctx context.Context, territoryID int64) (domain.Territory, error)
	ListTerritories(ctx context.Context) ([]domain.Territory, error)
	ListTerritoriesByGang(ctx context.Context, gangID int64) ([]domain.Territory, error)
	// CaptureTerritory transfers control of an uncontrolled territory and
	// arms the attack cooldown, re-checking both inside the transaction.
	// now is the caller's clock, also used as the income watermark.
	CaptureTerritory(ctx context.Context, territoryID, gangID int64, now, cooldownUntil time.Time) (domain.Territory, error)
	// AccrueTerritoryIncome credits controlling gangs for whole elapsed
	// income days and advances each territory's watermark. Returns the
	// total amount credited.
	AccrueTerritoryIncome(ctx context.Context, now time.Time) (int64, error)
}

// WarStore persists wars and their participants.
type WarStore interface {
	// CreateWar opens an active war over a territory. The territory's
	// cooldown and controller are re-checked inside the transaction at
	// war.StartedAt. At most one active war may exist per territory.
	CreateWar(ctx context.Context, war domain.War) (domain.War, error)
	GetWar(ctx context.Context, warID int64) (domain.War, error)
	GetActiveWarByTerritory(ctx context.Context, territoryID int64) (domain.War, error)
	ListActiveWarsByGang(ctx context.Context, gangID int64) ([]domain.War, error)
	// JoinWar records a participant on the side of their gang. The side is
	// fixed at join.
	JoinWar(ctx context.Context, participant domain.WarParticipant) (domain.WarParticipant, error)
	GetWarParticipant(ctx context.Context, warID, userID int64) (domain.WarParticipant, error)
	ListWarParticipants(ctx context.Context, warID int64) ([]domain.WarParticipant, error)
	// AddWarContribution debits the user's cash as a sunk cost, auto-joins
	// the participant if absent, and adds the amount to both the
	// participant's contribution and their side's strength, atomically.
	AddWarContribution(ctx context.Context, warID, userID, gangID int64, side domain.WarSide, amount int64) (domain.War, error)
	// CompleteWar resolves the war: status, end time, and winner are set
	// and territory control transfers to the winner in the same
	// transaction.
	CompleteWar(ctx context.Context, warID, winnerGangID int64, endedAt time.Time, cooldownUntil time.Time) (domain.War, error)
}

// MissionStore persists the mission catalog and gang attempts.
type MissionStore interface {
	PutMission(ctx context.Context, mission domain.Mission) error
	GetMission(ctx context.Context, missionID int64) (domain.Mission, error)
	ListMissions(ctx context.Context) ([]domain.Mission, error)
	// LatestAttempt returns the gang's most recent attempt for a mission.
	LatestAttempt(ctx context.Context, gangID, missionID int64) (domain.MissionAttempt, error)
	GetAttempt(ctx context.Context, attemptID int64) (domain.MissionAttempt, error)
	ListActiveAttempts(ctx context.Context, gangID int64) ([]domain.MissionAttempt, error)
	// StartAttempt creates an in-progress attempt after re-checking the
	// cooldown and in-progress uniqueness inside the transaction.
	StartAttempt(ctx context.Context, attempt domain.MissionAttempt) (domain.MissionAttempt, error)
	// CompleteAttempt transitions a due in-progress attempt to completed.
	// It is idempotent for attempts in any other state.
	CompleteAttempt(ctx context.Context, attemptID int64, now time.Time) (domain.MissionAttempt, error)
	// RewardAttempt credits the gang's treasury, respect, and experience
	// and marks the attempt rewarded, atomically. Only completed attempts
	// may be rewarded.
	RewardAttempt(ctx context.Context, attemptID int64) (domain.MissionAttempt, domain.Gang, error)
}

// Store aggregates every persistence contract the gang service requires.
type Store interface {
	UserStore
	GangStore
	MemberStore
	TerritoryStore
	WarStore
	MissionStore
	Close() error
}
