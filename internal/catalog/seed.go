// Package catalog loads the challenge and reward seed files into the
// database on first boot.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// challengeSeed mirrors one entry in the challenges seed file.
type challengeSeed struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	Category     string   `yaml:"category"`
	Difficulty   string   `yaml:"difficulty"`
	Points       int      `yaml:"points"`
	DurationDays int      `yaml:"duration_days"`
	Requirements []string `yaml:"requirements"`
	Tips         []string `yaml:"tips"`
}

// rewardSeed mirrors one entry in the rewards seed file.
type rewardSeed struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	PointsRequired int    `yaml:"points_required"`
	Category       string `yaml:"category"`
	Stock          *int   `yaml:"stock"`
}

// Seeder populates empty catalog tables from YAML files.
type Seeder struct {
	challengeRepo *repository.ChallengeRepository
	rewardRepo    *repository.RewardRepository
	log           *logger.Logger
}

// NewSeeder creates a new catalog seeder.
func NewSeeder(challengeRepo *repository.ChallengeRepository, rewardRepo *repository.RewardRepository, log *logger.Logger) *Seeder {
	return &Seeder{
		challengeRepo: challengeRepo,
		rewardRepo:    rewardRepo,
		log:           log,
	}
}

// SeedChallenges loads the challenge seed file unless the catalog already
// has rows. An empty path skips seeding.
func (s *Seeder) SeedChallenges(path string) error {
	if path == "" {
		return nil
	}

	count, err := s.challengeRepo.Count("")
	if err != nil {
		return err
	}
	if count > 0 {
		s.log.Debug().Int64("existing", count).Msg("Challenge catalog already seeded")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read challenge seed file: %w", err)
	}

	var seeds []challengeSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse challenge seed file: %w", err)
	}

	for _, seed := range seeds {
		challenge := models.Challenge{
			Title:        seed.Title,
			Description:  seed.Description,
			Category:     seed.Category,
			Difficulty:   seed.Difficulty,
			Points:       seed.Points,
			DurationDays: seed.DurationDays,
			Requirements: seed.Requirements,
			Tips:         seed.Tips,
			Status:       models.ChallengeStatusActive,
		}
		if err := s.challengeRepo.Create(&challenge); err != nil {
			return fmt.Errorf("failed to seed challenge %q: %w", seed.Title, err)
		}
	}

	s.log.Info().Int("challenges", len(seeds)).Str("file", path).Msg("Seeded challenge catalog")
	return nil
}

// SeedRewards loads the reward seed file unless rewards already exist. An
// empty path skips seeding.
func (s *Seeder) SeedRewards(path string) error {
	if path == "" {
		return nil
	}

	existing, err := s.rewardRepo.List(false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.log.Debug().Int("existing", len(existing)).Msg("Reward catalog already seeded")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read reward seed file: %w", err)
	}

	var seeds []rewardSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse reward seed file: %w", err)
	}

	for _, seed := range seeds {
		reward := models.Reward{
			Title:          seed.Title,
			Description:    seed.Description,
			PointsRequired: seed.PointsRequired,
			Category:       seed.Category,
			Stock:          seed.Stock,
			Active:         true,
		}
		if err := s.rewardRepo.Create(&reward); err != nil {
			return fmt.Errorf("failed to seed reward %q: %w", seed.Title, err)
		}
	}

	s.log.Info().Int("rewards", len(seeds)).Str("file", path).Msg("Seeded reward catalog")
	return nil
}
