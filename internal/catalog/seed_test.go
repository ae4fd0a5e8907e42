package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

func setupSeedTest(t *testing.T) (*Seeder, *repository.ChallengeRepository, *repository.RewardRepository) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Challenge{}, &models.Reward{}, &models.RewardClaim{}); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	db := &repository.DB{DB: gdb}
	challengeRepo := repository.NewChallengeRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	log := logger.New("debug", "console", "stdout")

	return NewSeeder(challengeRepo, rewardRepo, log), challengeRepo, rewardRepo
}

func writeSeedFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}

const challengeSeedYAML = `
- title: Bike to Campus Week
  description: Commute by bicycle for a week.
  category: Transport
  difficulty: Medium
  points: 150
  duration_days: 7
  requirements:
    - Photo each day
- title: Zero-Waste Lunch
  description: No single-use packaging for five days.
  category: Waste
  difficulty: Easy
  points: 80
  duration_days: 5
`

const rewardSeedYAML = `
- title: Cafe Voucher
  description: A free hot drink.
  points_required: 100
  category: Food
  stock: 200
- title: Certificate
  description: Digital certificate.
  points_required: 500
  category: Recognition
`

func TestSeedChallenges(t *testing.T) {
	seeder, challengeRepo, _ := setupSeedTest(t)
	path := writeSeedFile(t, "challenges.yaml", challengeSeedYAML)

	if err := seeder.SeedChallenges(path); err != nil {
		t.Fatalf("SeedChallenges() failed: %v", err)
	}

	challenges, err := challengeRepo.List("", "", "")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(challenges) != 2 {
		t.Fatalf("Expected 2 seeded challenges, got %d", len(challenges))
	}
	for _, c := range challenges {
		if c.Status != models.ChallengeStatusActive {
			t.Errorf("Expected seeded challenge %q to be active, got %q", c.Title, c.Status)
		}
	}
}

func TestSeedChallenges_SkipsWhenPopulated(t *testing.T) {
	seeder, challengeRepo, _ := setupSeedTest(t)
	path := writeSeedFile(t, "challenges.yaml", challengeSeedYAML)

	existing := &models.Challenge{Title: "Manual Entry", Points: 10, Status: models.ChallengeStatusActive}
	if err := challengeRepo.Create(existing); err != nil {
		t.Fatalf("Failed to create existing challenge: %v", err)
	}

	if err := seeder.SeedChallenges(path); err != nil {
		t.Fatalf("SeedChallenges() failed: %v", err)
	}

	challenges, err := challengeRepo.List("", "", "")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(challenges) != 1 {
		t.Errorf("Expected seeding to skip a populated catalog, got %d rows", len(challenges))
	}
}

func TestSeedChallenges_EmptyPath(t *testing.T) {
	seeder, _, _ := setupSeedTest(t)

	if err := seeder.SeedChallenges(""); err != nil {
		t.Fatalf("Expected empty path to be a no-op, got %v", err)
	}
}

func TestSeedChallenges_MissingFile(t *testing.T) {
	seeder, _, _ := setupSeedTest(t)

	if err := seeder.SeedChallenges("/nonexistent/challenges.yaml"); err == nil {
		t.Fatal("Expected error for missing seed file")
	}
}

func TestSeedRewards(t *testing.T) {
	seeder, _, rewardRepo := setupSeedTest(t)
	path := writeSeedFile(t, "rewards.yaml", rewardSeedYAML)

	if err := seeder.SeedRewards(path); err != nil {
		t.Fatalf("SeedRewards() failed: %v", err)
	}

	rewards, err := rewardRepo.List(false)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(rewards) != 2 {
		t.Fatalf("Expected 2 seeded rewards, got %d", len(rewards))
	}

	// Cheapest first per List ordering
	if rewards[0].Stock == nil || *rewards[0].Stock != 200 {
		t.Errorf("Expected voucher stock 200, got %v", rewards[0].Stock)
	}
	if rewards[1].Stock != nil {
		t.Errorf("Expected certificate stock to stay nil (unlimited), got %v", rewards[1].Stock)
	}
}
