package app

import (
	"context"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

// AttackOutcome is the result of an attack: an uncontested capture fills
// Territory, an attack on held turf opens a war and fills War.
type AttackOutcome struct {
	Territory *domain.Territory
	War       *domain.War
}

// AttackTerritory claims an uncontrolled territory outright or opens a war
// against its controller. Attacking is gated on the caller's role.
func (s *Service) AttackTerritory(ctx context.Context, userID, territoryID int64) (AttackOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "territory.attack")
	defer span.End()

	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return AttackOutcome{}, err
	}
	if !member.Role.Can(domain.CapabilityAttack) {
		return AttackOutcome{}, platformerrors.New(platformerrors.CodeRoleForbidden, "role cannot order attacks")
	}

	now := s.now().UTC()
	territory, err := s.store.GetTerritory(ctx, territoryID)
	if err != nil {
		return AttackOutcome{}, err
	}
	if territory.ControlledByGang(member.GangID) {
		return AttackOutcome{}, platformerrors.New(platformerrors.CodeTerritoryOwnGang, "gang already controls the territory")
	}
	if territory.OnCooldown(now) {
		return AttackOutcome{}, platformerrors.New(platformerrors.CodeTerritoryOnCooldown, "territory attack cooldown is active")
	}

	if territory.ControlledBy == nil {
		captured, err := s.store.CaptureTerritory(ctx, territoryID, member.GangID, now, now.Add(s.config.AttackCooldown))
		if err != nil {
			return AttackOutcome{}, err
		}
		return AttackOutcome{Territory: &captured}, nil
	}

	war, err := s.store.CreateWar(ctx, domain.War{
		TerritoryID:    territoryID,
		AttackerGangID: member.GangID,
		DefenderGangID: *territory.ControlledBy,
		StartedAt:      now,
	})
	if err != nil {
		return AttackOutcome{}, err
	}
	return AttackOutcome{War: &war}, nil
}

// JoinWar enlists the caller on their gang's side of the war.
func (s *Service) JoinWar(ctx context.Context, userID, warID int64) (domain.WarParticipant, error) {
	ctx, span := s.tracer.Start(ctx, "war.join")
	defer span.End()

	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return domain.WarParticipant{}, err
	}
	return s.store.JoinWar(ctx, domain.WarParticipant{
		WarID:    warID,
		UserID:   userID,
		GangID:   member.GangID,
		JoinedAt: s.now().UTC(),
	})
}

// ContributeToWar sinks the caller's cash into their side's strength.
func (s *Service) ContributeToWar(ctx context.Context, userID, warID, amount int64) (domain.War, error) {
	ctx, span := s.tracer.Start(ctx, "war.contribute")
	defer span.End()

	if amount <= 0 {
		return domain.War{}, platformerrors.New(platformerrors.CodeAmountInvalid, "contribution amount must be positive")
	}
	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return domain.War{}, err
	}
	return s.store.AddWarContribution(ctx, warID, userID, member.GangID, "", amount)
}

// EndWar resolves a war by naming the winner. The caller must hold the
// attack capability in a gang with a stake in the war; the territory
// transfers to the winner.
func (s *Service) EndWar(ctx context.Context, userID, warID, winnerGangID int64) (domain.War, error) {
	ctx, span := s.tracer.Start(ctx, "war.end")
	defer span.End()

	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return domain.War{}, err
	}
	if !member.Role.Can(domain.CapabilityAttack) {
		return domain.War{}, platformerrors.New(platformerrors.CodeRoleForbidden, "role cannot resolve wars")
	}
	war, err := s.store.GetWar(ctx, warID)
	if err != nil {
		return domain.War{}, err
	}
	if !war.HasStake(member.GangID) {
		return domain.War{}, platformerrors.New(platformerrors.CodeWarNotEligible, "gang has no stake in the war")
	}

	now := s.now().UTC()
	return s.store.CompleteWar(ctx, warID, winnerGangID, now, now.Add(s.config.AttackCooldown))
}

// ListTerritories returns the world map.
func (s *Service) ListTerritories(ctx context.Context) ([]domain.Territory, error) {
	ctx, span := s.tracer.Start(ctx, "territory.list")
	defer span.End()

	return s.store.ListTerritories(ctx)
}

// CollectTerritoryIncome credits controlling gangs for elapsed income days
// and returns the total credited. The worker calls this on an interval.
func (s *Service) CollectTerritoryIncome(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "territory.collect_income")
	defer span.End()

	return s.store.AccrueTerritoryIncome(ctx, s.now().UTC())
}
