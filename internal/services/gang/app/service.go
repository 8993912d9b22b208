// Package app exposes the gang service operations. The facade owns
// validation and role gating; storage owns atomicity.
package app

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
	"github.com/blackhand-games/syndicate/internal/services/gang/storage"
)

const tracerName = "github.com/blackhand-games/syndicate/internal/services/gang/app"

// Config carries the tunable game rules.
type Config struct {
	// FoundingFee is debited from the founder when a gang is created.
	FoundingFee int64
	// StartingCash seeds a user's balance on first contact.
	StartingCash int64
	// AttackCooldown gates how often a territory can change hands.
	AttackCooldown time.Duration
}

// DefaultConfig returns the standard game rules.
func DefaultConfig() Config {
	return Config{
		FoundingFee:    1_000,
		StartingCash:   5_000,
		AttackCooldown: 24 * time.Hour,
	}
}

// Service implements the gang operations on top of a storage backend.
// It is stateless and safe for concurrent use.
type Service struct {
	store  storage.Store
	config Config
	tracer trace.Tracer
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a gang service over the given store.
func New(store storage.Store, config Config, opts ...Option) *Service {
	service := &Service{
		store:  store,
		config: config,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateGang founds a gang with the caller as leader, debiting the founding
// fee from their cash.
func (s *Service) CreateGang(ctx context.Context, userID int64, name, tag, description string) (domain.Gang, error) {
	ctx, span := s.tracer.Start(ctx, "gang.create")
	defer span.End()

	if !domain.ValidateName(name) {
		return domain.Gang{}, platformerrors.New(platformerrors.CodeGangNameEmpty, "gang name is required")
	}
	if !domain.ValidateTag(tag) {
		return domain.Gang{}, platformerrors.WithMetadata(
			platformerrors.CodeGangTagInvalid,
			"gang tag length out of bounds",
			map[string]string{
				"Min": strconv.Itoa(domain.TagMinLength),
				"Max": strconv.Itoa(domain.TagMaxLength),
			},
		)
	}

	if _, err := s.store.EnsureUser(ctx, userID, s.config.StartingCash); err != nil {
		return domain.Gang{}, err
	}
	return s.store.CreateGangWithLeader(ctx, domain.Gang{
		Name:        name,
		Tag:         tag,
		Description: description,
		OwnerID:     userID,
	}, s.config.FoundingFee)
}

// JoinGang adds the caller to a gang as a soldier.
func (s *Service) JoinGang(ctx context.Context, userID, gangID int64) (domain.Member, error) {
	ctx, span := s.tracer.Start(ctx, "gang.join")
	defer span.End()

	if _, err := s.store.EnsureUser(ctx, userID, s.config.StartingCash); err != nil {
		return domain.Member{}, err
	}
	return s.store.AddMember(ctx, domain.Member{
		GangID:   gangID,
		UserID:   userID,
		Role:     domain.RoleSoldier,
		JoinedAt: s.now().UTC(),
	})
}

// LeaveGang removes the caller from their gang.
func (s *Service) LeaveGang(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "gang.leave")
	defer span.End()

	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return err
	}
	return s.store.RemoveMember(ctx, member.GangID, userID)
}

// KickMember removes another member from the caller's gang. Leaders cannot
// be kicked.
func (s *Service) KickMember(ctx context.Context, actorID, targetID int64) error {
	ctx, span := s.tracer.Start(ctx, "gang.kick")
	defer span.End()

	actor, target, err := s.sameGangPair(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !actor.Role.Can(domain.CapabilityKick) {
		return platformerrors.New(platformerrors.CodeRoleForbidden, "role cannot kick members")
	}
	if target.Role == domain.RoleLeader {
		return platformerrors.New(platformerrors.CodeRoleForbidden, "the leader cannot be kicked")
	}
	return s.store.RemoveMember(ctx, actor.GangID, targetID)
}

// SetMemberRole changes another member's role.
func (s *Service) SetMemberRole(ctx context.Context, actorID, targetID int64, role string) error {
	ctx, span := s.tracer.Start(ctx, "gang.set_role")
	defer span.End()

	normalized, ok := domain.NormalizeRole(role)
	if !ok {
		return platformerrors.New(platformerrors.CodeRoleInvalid, "unknown member role")
	}
	actor, _, err := s.sameGangPair(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !actor.Role.Can(domain.CapabilitySetRoles) {
		return platformerrors.New(platformerrors.CodeRoleForbidden, "role cannot assign roles")
	}
	return s.store.SetMemberRole(ctx, actor.GangID, targetID, normalized)
}

// DepositToBank moves the caller's cash into their gang treasury.
func (s *Service) DepositToBank(ctx context.Context, userID, amount int64) (domain.Gang, error) {
	ctx, span := s.tracer.Start(ctx, "gang.deposit")
	defer span.End()

	if amount <= 0 {
		return domain.Gang{}, platformerrors.New(platformerrors.CodeAmountInvalid, "deposit amount must be positive")
	}
	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return domain.Gang{}, err
	}
	return s.store.DepositToTreasury(ctx, member.GangID, userID, amount)
}

// WithdrawFromBank moves treasury cash to the caller. Withdrawal is gated on
// the caller's role.
func (s *Service) WithdrawFromBank(ctx context.Context, userID, amount int64) (domain.Gang, error) {
	ctx, span := s.tracer.Start(ctx, "gang.withdraw")
	defer span.End()

	if amount <= 0 {
		return domain.Gang{}, platformerrors.New(platformerrors.CodeAmountInvalid, "withdraw amount must be positive")
	}
	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return domain.Gang{}, err
	}
	if !member.Role.Can(domain.CapabilityWithdraw) {
		return domain.Gang{}, platformerrors.New(platformerrors.CodeRoleForbidden, "role cannot withdraw from the treasury")
	}
	return s.store.WithdrawFromTreasury(ctx, member.GangID, userID, amount)
}

// DisbandGang deletes the caller's gang and everything it owns.
func (s *Service) DisbandGang(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "gang.disband")
	defer span.End()

	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return err
	}
	if !member.Role.Can(domain.CapabilityDisband) {
		return platformerrors.New(platformerrors.CodeRoleForbidden, "role cannot disband the gang")
	}
	return s.store.DeleteGangCascade(ctx, member.GangID)
}

// Overview is the aggregate read model for one gang.
type Overview struct {
	Gang        domain.Gang
	Members     []domain.Member
	Territories []domain.Territory
	ActiveWars  []domain.War
	Attempts    []domain.MissionAttempt
}

// GangOverview assembles the caller's gang, roster, holdings, active wars,
// and running mission attempts.
func (s *Service) GangOverview(ctx context.Context, userID int64) (Overview, error) {
	ctx, span := s.tracer.Start(ctx, "gang.overview")
	defer span.End()

	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	gang, err := s.store.GetGang(ctx, member.GangID)
	if err != nil {
		return Overview{}, err
	}
	members, err := s.store.ListMembers(ctx, member.GangID)
	if err != nil {
		return Overview{}, err
	}
	territories, err := s.store.ListTerritoriesByGang(ctx, member.GangID)
	if err != nil {
		return Overview{}, err
	}
	wars, err := s.store.ListActiveWarsByGang(ctx, member.GangID)
	if err != nil {
		return Overview{}, err
	}
	attempts, err := s.store.ListActiveAttempts(ctx, member.GangID)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Gang:        gang,
		Members:     members,
		Territories: territories,
		ActiveWars:  wars,
		Attempts:    attempts,
	}, nil
}

// sameGangPair loads both memberships and verifies they belong to one gang.
func (s *Service) sameGangPair(ctx context.Context, actorID, targetID int64) (domain.Member, domain.Member, error) {
	actor, err := s.store.GetMember(ctx, actorID)
	if err != nil {
		return domain.Member{}, domain.Member{}, err
	}
	target, err := s.store.GetMember(ctx, targetID)
	if err != nil {
		return domain.Member{}, domain.Member{}, err
	}
	if actor.GangID != target.GangID {
		return domain.Member{}, domain.Member{}, platformerrors.New(platformerrors.CodeNotAMember, "target is not a member of the gang")
	}
	return actor, target, nil
}
