package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	platformerrors "github.com/blackhand-games/syndicate/internal/platform/errors"
	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
)

func TestPutMissionUpsertsCatalog(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seedMission(t, store, domain.Mission{ID: 1, Name: "Warehouse Job", CashReward: 500})
	seedMission(t, store, domain.Mission{ID: 1, Name: "Warehouse Job", CashReward: 800})

	mission, err := store.GetMission(ctx, 1)
	if err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if mission.CashReward != 800 {
		t.Fatalf("cash reward = %d, want 800 after reseed", mission.CashReward)
	}

	missions, err := store.ListMissions(ctx)
	if err != nil {
		t.Fatalf("list missions: %v", err)
	}
	if len(missions) != 1 {
		t.Fatalf("catalog size = %d, want 1", len(missions))
	}
}

func TestStartAttemptCooldownAndUniqueness(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	gang := seedGang(t, store, "Iron Serpents", "IRSN", 1)
	mission := seedMission(t, store, domain.Mission{ID: 1, Name: "Warehouse Job"})

	now := time.Now().UTC()
	attempt, err := store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          gang.ID,
		MissionID:       mission.ID,
		StartedAt:       now,
		CompletesAt:     now.Add(mission.Duration),
		NextAvailableAt: now.Add(mission.Duration + mission.Cooldown),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if attempt.Status != domain.AttemptStatusInProgress {
		t.Fatalf("status = %q, want in-progress", attempt.Status)
	}

	_, err = store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          gang.ID,
		MissionID:       mission.ID,
		StartedAt:       now,
		CompletesAt:     now.Add(mission.Duration),
		NextAvailableAt: now.Add(mission.Duration + mission.Cooldown),
	})
	if !platformerrors.IsCode(err, platformerrors.CodeAttemptInProgress) {
		t.Fatalf("second start error = %v, want AttemptInProgress", err)
	}

	// Finish the attempt; the cooldown still blocks a restart.
	if _, err := store.CompleteAttempt(ctx, attempt.ID, now.Add(mission.Duration)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err = store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          gang.ID,
		MissionID:       mission.ID,
		StartedAt:       now.Add(mission.Duration),
		CompletesAt:     now.Add(2 * mission.Duration),
		NextAvailableAt: now.Add(2*mission.Duration + mission.Cooldown),
	})
	if !platformerrors.IsCode(err, platformerrors.CodeMissionOnCooldown) {
		t.Fatalf("cooldown error = %v, want MissionOnCooldown", err)
	}

	// Past the cooldown a fresh attempt starts.
	restart := now.Add(mission.Duration + mission.Cooldown + time.Minute)
	if _, err := store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          gang.ID,
		MissionID:       mission.ID,
		StartedAt:       restart,
		CompletesAt:     restart.Add(mission.Duration),
		NextAvailableAt: restart.Add(mission.Duration + mission.Cooldown),
	}); err != nil {
		t.Fatalf("restart after cooldown: %v", err)
	}
}

func TestConcurrentStartsYieldOneAttempt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	gang := seedGang(t, store, "Iron Serpents", "IRSN", 1)
	mission := seedMission(t, store, domain.Mission{ID: 1, Name: "Warehouse Job"})

	now := time.Now().UTC()
	const workers = 6
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.StartAttempt(ctx, domain.MissionAttempt{
				GangID:          gang.ID,
				MissionID:       mission.ID,
				StartedAt:       now,
				CompletesAt:     now.Add(mission.Duration),
				NextAvailableAt: now.Add(mission.Duration + mission.Cooldown),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if !platformerrors.IsCode(err, platformerrors.CodeAttemptInProgress) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("successful starts = %d, want exactly 1", succeeded)
	}

	attempts, err := store.ListActiveAttempts(ctx, gang.ID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("active attempts = %d, want 1", len(attempts))
	}
}

func TestCompleteAttemptIsLazyAndIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	gang := seedGang(t, store, "Iron Serpents", "IRSN", 1)
	mission := seedMission(t, store, domain.Mission{ID: 1, Name: "Warehouse Job"})

	now := time.Now().UTC()
	attempt, err := store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          gang.ID,
		MissionID:       mission.ID,
		StartedAt:       now,
		CompletesAt:     now.Add(mission.Duration),
		NextAvailableAt: now.Add(mission.Duration + mission.Cooldown),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	early, err := store.CompleteAttempt(ctx, attempt.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("early check: %v", err)
	}
	if early.Status != domain.AttemptStatusInProgress {
		t.Fatalf("status before due = %q, want in-progress", early.Status)
	}

	due, err := store.CompleteAttempt(ctx, attempt.ID, now.Add(mission.Duration))
	if err != nil {
		t.Fatalf("due check: %v", err)
	}
	if due.Status != domain.AttemptStatusCompleted {
		t.Fatalf("status at due = %q, want completed", due.Status)
	}

	again, err := store.CompleteAttempt(ctx, attempt.ID, now.Add(2*mission.Duration))
	if err != nil {
		t.Fatalf("repeat check: %v", err)
	}
	if again.Status != domain.AttemptStatusCompleted {
		t.Fatalf("status on repeat = %q, want completed", again.Status)
	}
}

func TestRewardAttemptCreditsOnce(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	gang := seedGang(t, store, "Iron Serpents", "IRSN", 1)
	mission := seedMission(t, store, domain.Mission{
		ID:               1,
		Name:             "Warehouse Job",
		CashReward:       500,
		RespectReward:    20,
		ExperienceReward: 1_200,
	})

	now := time.Now().UTC()
	attempt, err := store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          gang.ID,
		MissionID:       mission.ID,
		StartedAt:       now,
		CompletesAt:     now.Add(mission.Duration),
		NextAvailableAt: now.Add(mission.Duration + mission.Cooldown),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, _, err := store.RewardAttempt(ctx, attempt.ID); !platformerrors.IsCode(err, platformerrors.CodeAttemptNotReady) {
		t.Fatalf("premature reward error = %v, want AttemptNotReady", err)
	}

	if _, err := store.CompleteAttempt(ctx, attempt.ID, now.Add(mission.Duration)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	rewarded, credited, err := store.RewardAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	if rewarded.Status != domain.AttemptStatusRewarded {
		t.Fatalf("status = %q, want rewarded", rewarded.Status)
	}
	if credited.Treasury != 500 || credited.Respect != 20 || credited.Experience != 1_200 {
		t.Fatalf("gang after reward = %+v, want 500/20/1200", credited)
	}
	if credited.Level != 2 {
		t.Fatalf("level = %d, want 2 at 1200 xp", credited.Level)
	}

	if _, _, err := store.RewardAttempt(ctx, attempt.ID); !platformerrors.IsCode(err, platformerrors.CodeAttemptNotReady) {
		t.Fatalf("double reward error = %v, want AttemptNotReady", err)
	}
	current, err := store.GetGang(ctx, gang.ID)
	if err != nil {
		t.Fatalf("get gang: %v", err)
	}
	if current.Treasury != 500 {
		t.Fatalf("treasury = %d, want 500 after single payout", current.Treasury)
	}
}

func TestLatestAttemptPicksMostRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	gang := seedGang(t, store, "Iron Serpents", "IRSN", 1)
	mission := seedMission(t, store, domain.Mission{ID: 1, Name: "Warehouse Job"})

	if _, err := store.LatestAttempt(ctx, gang.ID, mission.ID); !platformerrors.IsCode(err, platformerrors.CodeAttemptNotFound) {
		t.Fatalf("empty latest error = %v, want AttemptNotFound", err)
	}

	base := time.Now().UTC().Add(-48 * time.Hour)
	first, err := store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          gang.ID,
		MissionID:       mission.ID,
		StartedAt:       base,
		CompletesAt:     base.Add(mission.Duration),
		NextAvailableAt: base.Add(mission.Duration + mission.Cooldown),
	})
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := store.CompleteAttempt(ctx, first.ID, base.Add(mission.Duration)); err != nil {
		t.Fatalf("complete first: %v", err)
	}

	later := base.Add(24 * time.Hour)
	second, err := store.StartAttempt(ctx, domain.MissionAttempt{
		GangID:          gang.ID,
		MissionID:       mission.ID,
		StartedAt:       later,
		CompletesAt:     later.Add(mission.Duration),
		NextAvailableAt: later.Add(mission.Duration + mission.Cooldown),
	})
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	latest, err := store.LatestAttempt(ctx, gang.ID, mission.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != second.ID {
		t.Fatalf("latest = %d, want %d", latest.ID, second.ID)
	}
}
