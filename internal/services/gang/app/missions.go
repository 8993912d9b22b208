package app

import (
	"context"
	"strconv"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

// ListAvailableMissions returns the catalog with per-gang availability for
// the caller's gang.
func (s *Service) ListAvailableMissions(ctx context.Context, userID int64) ([]domain.MissionAvailability, error) {
	ctx, span := s.tracer.Start(ctx, "mission.list")
	defer span.End()

	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	missions, err := s.store.ListMissions(ctx)
	if err != nil {
		return nil, err
	}
	memberCount, err := s.store.MemberCount(ctx, member.GangID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	availabilities := make([]domain.MissionAvailability, 0, len(missions))
	for _, mission := range missions {
		var latest *domain.MissionAttempt
		attempt, err := s.store.LatestAttempt(ctx, member.GangID, mission.ID)
		if err != nil {
			if !platformerrors.IsCode(err, platformerrors.CodeAttemptNotFound) {
				return nil, err
			}
		} else {
			latest = &attempt
		}
		availabilities = append(availabilities, domain.Availability(mission, latest, memberCount, now))
	}
	return availabilities, nil
}

// StartMission begins a mission attempt for the caller's gang.
func (s *Service) StartMission(ctx context.Context, userID, missionID int64) (domain.MissionAttempt, error) {
	ctx, span := s.tracer.Start(ctx, "mission.start")
	defer span.End()

	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return domain.MissionAttempt{}, err
	}
	mission, err := s.store.GetMission(ctx, missionID)
	if err != nil {
		return domain.MissionAttempt{}, err
	}
	if !mission.IsActive {
		return domain.MissionAttempt{}, platformerrors.New(platformerrors.CodeMissionInactive, "mission is retired from the catalog")
	}
	memberCount, err := s.store.MemberCount(ctx, member.GangID)
	if err != nil {
		return domain.MissionAttempt{}, err
	}
	if memberCount < mission.RequiredMembers {
		return domain.MissionAttempt{}, platformerrors.WithMetadata(
			platformerrors.CodeNotEnoughMembers,
			"gang roster below mission requirement",
			map[string]string{"Required": strconv.Itoa(mission.RequiredMembers)},
		)
	}

	now := s.now().UTC()
	return s.store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          member.GangID,
		MissionID:       missionID,
		Status:          domain.AttemptStatusInProgress,
		StartedAt:       now,
		CompletesAt:     now.Add(mission.Duration),
		NextAvailableAt: now.Add(mission.Duration + mission.Cooldown),
	})
}

// CheckMissionCompletion transitions the attempt to completed once its
// duration has elapsed. Attempts complete lazily: nothing fires when the
// timer expires, the next check observes it.
func (s *Service) CheckMissionCompletion(ctx context.Context, userID, attemptID int64) (domain.MissionAttempt, error) {
	ctx, span := s.tracer.Start(ctx, "mission.check")
	defer span.End()

	if _, err := s.gangAttempt(ctx, userID, attemptID); err != nil {
		return domain.MissionAttempt{}, err
	}
	return s.store.CompleteAttempt(ctx, attemptID, s.now().UTC())
}

// CollectMissionRewards pays out a completed attempt to the gang. A due
// in-progress attempt is completed on the way; collecting twice fails.
func (s *Service) CollectMissionRewards(ctx context.Context, userID, attemptID int64) (domain.MissionAttempt, domain.Gang, error) {
	ctx, span := s.tracer.Start(ctx, "mission.collect")
	defer span.End()

	if _, err := s.gangAttempt(ctx, userID, attemptID); err != nil {
		return domain.MissionAttempt{}, domain.Gang{}, err
	}
	if _, err := s.store.CompleteAttempt(ctx, attemptID, s.now().UTC()); err != nil {
		return domain.MissionAttempt{}, domain.Gang{}, err
	}
	return s.store.RewardAttempt(ctx, attemptID)
}

// gangAttempt loads the attempt and verifies it belongs to the caller's gang.
func (s *Service) gangAttempt(ctx context.Context, userID, attemptID int64) (domain.MissionAttempt, error) {
	member, err := s.store.GetMember(ctx, userID)
	if err != nil {
		return domain.MissionAttempt{}, err
	}
	attempt, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.MissionAttempt{}, err
	}
	if attempt.GangID != member.GangID {
		return domain.MissionAttempt{}, platformerrors.New(platformerrors.CodeAttemptNotFound, "mission attempt not found")
	}
	return attempt, nil
}
