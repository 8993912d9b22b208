// Package catalog loads the embedded mission and territory definitions and
// seeds them into storage at startup.
package catalog

import (
	"context"
	"embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blackhand-games/syndicate/internal/services/gang/domain"
	"github.com/blackhand-games/syndicate/internal/services/gang/storage"
)

//go:embed missions.yaml territories.yaml
var files embed.FS

// missionDef is the YAML shape of one catalog mission.
type missionDef struct {
	ID               int64  `yaml:"id"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	DurationMinutes  int64  `yaml:"duration_minutes"`
	CooldownMinutes  int64  `yaml:"cooldown_minutes"`
	RequiredMembers  int    `yaml:"required_members"`
	CashReward       int64  `yaml:"cash_reward"`
	RespectReward    int64  `yaml:"respect_reward"`
	ExperienceReward int64  `yaml:"experience_reward"`
	Inactive         bool   `yaml:"inactive"`
}

// territoryDef is the YAML shape of one catalog territory.
type territoryDef struct {
	Name                string `yaml:"name"`
	IncomePerDay        int64  `yaml:"income_per_day"`
	DefenseBonusPercent int    `yaml:"defense_bonus_percent"`
}

type missionFile struct {
	Missions []missionDef `yaml:"missions"`
}

type territoryFile struct {
	Territories []territoryDef `yaml:"territories"`
}

// Catalog holds the parsed, validated game content shipped with the binary.
type Catalog struct {
	Missions    []domain.Mission
	Territories []domain.Territory
}

// Load parses and validates the embedded catalogs.
func Load() (Catalog, error) {
	missionData, err := files.ReadFile("missions.yaml")
	if err != nil {
		return Catalog{}, fmt.Errorf("read mission catalog: %w", err)
	}
	var missions missionFile
	if err := yaml.Unmarshal(missionData, &missions); err != nil {
		return Catalog{}, fmt.Errorf("parse mission catalog: %w", err)
	}

	territoryData, err := files.ReadFile("territories.yaml")
	if err != nil {
		return Catalog{}, fmt.Errorf("read territory catalog: %w", err)
	}
	var territories territoryFile
	if err := yaml.Unmarshal(territoryData, &territories); err != nil {
		return Catalog{}, fmt.Errorf("parse territory catalog: %w", err)
	}

	catalog := Catalog{}

	missionIDs := make(map[int64]bool, len(missions.Missions))
	for _, def := range missions.Missions {
		if def.ID <= 0 {
			return Catalog{}, fmt.Errorf("mission %q: id must be positive", def.Name)
		}
		if missionIDs[def.ID] {
			return Catalog{}, fmt.Errorf("mission %q: duplicate id %d", def.Name, def.ID)
		}
		missionIDs[def.ID] = true
		if def.Name == "" {
			return Catalog{}, fmt.Errorf("mission %d: name is required", def.ID)
		}
		if def.DurationMinutes <= 0 {
			return Catalog{}, fmt.Errorf("mission %q: duration must be positive", def.Name)
		}
		if def.CooldownMinutes < 0 {
			return Catalog{}, fmt.Errorf("mission %q: cooldown must not be negative", def.Name)
		}
		if def.RequiredMembers < 1 {
			return Catalog{}, fmt.Errorf("mission %q: required members must be at least 1", def.Name)
		}
		if def.CashReward < 0 || def.RespectReward < 0 || def.ExperienceReward < 0 {
			return Catalog{}, fmt.Errorf("mission %q: rewards must not be negative", def.Name)
		}
		catalog.Missions = append(catalog.Missions, domain.Mission{
			ID:               def.ID,
			Name:             def.Name,
			Description:      def.Description,
			Duration:         time.Duration(def.DurationMinutes) * time.Minute,
			Cooldown:         time.Duration(def.CooldownMinutes) * time.Minute,
			RequiredMembers:  def.RequiredMembers,
			CashReward:       def.CashReward,
			RespectReward:    def.RespectReward,
			ExperienceReward: def.ExperienceReward,
			IsActive:         !def.Inactive,
		})
	}

	names := make(map[string]bool, len(territories.Territories))
	for _, def := range territories.Territories {
		if def.Name == "" {
			return Catalog{}, fmt.Errorf("territory catalog: name is required")
		}
		if names[def.Name] {
			return Catalog{}, fmt.Errorf("territory %q: duplicate name", def.Name)
		}
		names[def.Name] = true
		if def.IncomePerDay < 0 {
			return Catalog{}, fmt.Errorf("territory %q: income must not be negative", def.Name)
		}
		if def.DefenseBonusPercent < 0 {
			return Catalog{}, fmt.Errorf("territory %q: defense bonus must not be negative", def.Name)
		}
		catalog.Territories = append(catalog.Territories, domain.Territory{
			Name:                def.Name,
			IncomePerDay:        def.IncomePerDay,
			DefenseBonusPercent: def.DefenseBonusPercent,
		})
	}

	return catalog, nil
}

// Seed upserts the catalog into storage. Control state on existing
// territories is preserved; missions are replaced by id.
func Seed(ctx context.Context, store storage.Store, catalog Catalog) error {
	for _, mission := range catalog.Missions {
		if err := store.PutMission(ctx, mission); err != nil {
			return fmt.Errorf("seed mission %q: %w", mission.Name, err)
		}
	}
	for _, territory := range catalog.Territories {
		if _, err := store.PutTerritory(ctx, territory); err != nil {
			return fmt.Errorf("seed territory %q: %w", territory.Name, err)
		}
	}
	return nil
}
