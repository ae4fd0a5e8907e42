package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ecocampus/eco-challenge/internal/config"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// Mock Submission Repository
type mockSubmissionRepo struct {
	pending []models.Submission
	listErr error
	calls   int
}

func (m *mockSubmissionRepo) ListByStatus(status string) ([]models.Submission, error) {
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.pending, nil
}

func testConfig() *config.SchedulerConfig {
	return &config.SchedulerConfig{
		Enabled:         true,
		Timezone:        "UTC",
		QueueDigestCron: "0 9 * * *",
		CacheWarmCron:   "*/15 * * * *",
	}
}

func TestStart_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	svc := NewService(cfg, &mockSubmissionRepo{}, nil, logger.New("debug", "console", "stdout"))

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() with disabled scheduler failed: %v", err)
	}
	if svc.cron != nil {
		t.Error("Expected no cron instance when disabled")
	}
}

func TestStart_InvalidTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus"
	svc := NewService(cfg, &mockSubmissionRepo{}, nil, logger.New("debug", "console", "stdout"))

	if err := svc.Start(); err == nil {
		t.Fatal("Expected error for invalid timezone")
	}
}

func TestStart_InvalidCronSpec(t *testing.T) {
	cfg := testConfig()
	cfg.QueueDigestCron = "not a cron spec"
	svc := NewService(cfg, &mockSubmissionRepo{}, nil, logger.New("debug", "console", "stdout"))

	if err := svc.Start(); err == nil {
		t.Fatal("Expected error for invalid cron spec")
	}
}

func TestStart_And_Stop(t *testing.T) {
	svc := NewService(testConfig(), &mockSubmissionRepo{}, nil, logger.New("debug", "console", "stdout"))

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	svc.Stop()
}

func TestRunQueueDigest(t *testing.T) {
	repo := &mockSubmissionRepo{
		pending: []models.Submission{
			{ID: 1, SubmittedAt: time.Now().Add(-3 * time.Hour), Status: models.SubmissionUnderReview},
			{ID: 2, SubmittedAt: time.Now().Add(-time.Hour), Status: models.SubmissionUnderReview},
		},
	}
	svc := NewService(testConfig(), repo, nil, logger.New("debug", "console", "stdout"))

	svc.RunQueueDigest()
	if repo.calls != 1 {
		t.Errorf("Expected 1 repository query, got %d", repo.calls)
	}
}

func TestRunQueueDigest_RepoError(t *testing.T) {
	repo := &mockSubmissionRepo{listErr: fmt.Errorf("database gone")}
	svc := NewService(testConfig(), repo, nil, logger.New("debug", "console", "stdout"))

	// Must not panic; the failure is logged
	svc.RunQueueDigest()
}

func TestCacheWarm(t *testing.T) {
	warmed := 0
	warm := func(ctx context.Context) error {
		warmed++
		return nil
	}
	svc := NewService(testConfig(), &mockSubmissionRepo{}, warm, logger.New("debug", "console", "stdout"))

	svc.runCacheWarm()
	if warmed != 1 {
		t.Errorf("Expected 1 warm call, got %d", warmed)
	}
}
