package services

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type achievementDef struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Category    string `yaml:"category"`
	Condition   string `yaml:"condition"`
	Threshold   int    `yaml:"threshold"`
	XPReward    int    `yaml:"xp_reward"`
}

type achievementCatalogFile struct {
	Achievements []achievementDef `yaml:"achievements"`
}

var validConditions = map[string]bool{
	types.ConditionTotalXP:           true,
	types.ConditionStreakDays:        true,
	types.ConditionStepsCompleted:    true,
	types.ConditionPostsCreated:      true,
	types.ConditionRoadmapsCompleted: true,
}

// LoadAchievementCatalog parses the YAML achievement definitions.
func LoadAchievementCatalog(path string) ([]*types.Achievement, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read achievement catalog: %w", err)
	}

	var file achievementCatalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse achievement catalog: %w", err)
	}
	if len(file.Achievements) == 0 {
		return nil, fmt.Errorf("achievement catalog %q is empty", path)
	}

	seen := make(map[string]bool, len(file.Achievements))
	out := make([]*types.Achievement, 0, len(file.Achievements))
	for i, def := range file.Achievements {
		if def.Code == "" || def.Name == "" {
			return nil, fmt.Errorf("achievement %d: code and name are required", i)
		}
		if seen[def.Code] {
			return nil, fmt.Errorf("achievement %q defined twice", def.Code)
		}
		seen[def.Code] = true
		if !validConditions[def.Condition] {
			return nil, fmt.Errorf("achievement %q: unknown condition %q", def.Code, def.Condition)
		}
		if def.Threshold <= 0 {
			return nil, fmt.Errorf("achievement %q: threshold must be positive", def.Code)
		}
		out = append(out, &types.Achievement{
			Code:        def.Code,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Category:    def.Category,
			Condition:   def.Condition,
			Threshold:   def.Threshold,
			XPReward:    def.XPReward,
		})
	}
	return out, nil
}

// SeedAchievements upserts the catalog into the database at startup.
func SeedAchievements(ctx context.Context, repo repos.AchievementRepo, path string) error {
	catalog, err := LoadAchievementCatalog(path)
	if err != nil {
		return err
	}
	if err := repo.UpsertCatalog(ctx, nil, catalog); err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}
	return nil
}
