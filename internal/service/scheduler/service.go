// Package scheduler runs periodic maintenance jobs: the morning review queue
// digest for admins and leaderboard cache warming.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ecocampus/eco-challenge/internal/config"
	"github.com/ecocampus/eco-challenge/internal/metrics"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// SubmissionRepository interface for queue inspection.
type SubmissionRepository interface {
	ListByStatus(status string) ([]models.Submission, error)
}

// Service schedules the maintenance jobs.
type Service struct {
	config         *config.SchedulerConfig
	submissionRepo SubmissionRepository
	log            *logger.Logger
	cron           *cron.Cron
	warm           func(ctx context.Context) error
}

// NewService creates a new scheduler service. warm rebuilds the leaderboard
// cache and may be nil to skip warming.
func NewService(
	cfg *config.SchedulerConfig,
	submissionRepo SubmissionRepository,
	warm func(ctx context.Context) error,
	log *logger.Logger,
) *Service {
	return &Service{
		config:         cfg,
		submissionRepo: submissionRepo,
		warm:           warm,
		log:            log,
	}
}

// Start registers and starts the cron jobs.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := time.LoadLocation(s.config.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	if _, err := s.cron.AddFunc(s.config.QueueDigestCron, s.RunQueueDigest); err != nil {
		return fmt.Errorf("invalid queue digest schedule %q: %w", s.config.QueueDigestCron, err)
	}
	if s.warm != nil {
		if _, err := s.cron.AddFunc(s.config.CacheWarmCron, s.runCacheWarm); err != nil {
			return fmt.Errorf("invalid cache warm schedule %q: %w", s.config.CacheWarmCron, err)
		}
	}

	s.cron.Start()
	s.log.Info().
		Str("queue_digest", s.config.QueueDigestCron).
		Str("cache_warm", s.config.CacheWarmCron).
		Str("timezone", s.config.Timezone).
		Msg("Scheduler started")

	return nil
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// RunQueueDigest refreshes the queue depth gauge and logs a summary of the
// pending review queue, including how long the oldest item has waited.
func (s *Service) RunQueueDigest() {
	submissions, err := s.submissionRepo.ListByStatus(models.SubmissionUnderReview)
	if err != nil {
		s.log.Error().Err(err).Msg("Queue digest failed")
		return
	}

	metrics.SetPendingSubmissions(int64(len(submissions)))

	if len(submissions) == 0 {
		s.log.Info().Msg("Review queue is empty")
		return
	}

	// ListByStatus returns oldest first
	oldestWait := time.Since(submissions[0].SubmittedAt)
	s.log.Info().
		Int("pending", len(submissions)).
		Dur("oldest_wait", oldestWait).
		Msg("Review queue digest")
}

// runCacheWarm rebuilds the global leaderboard projection so the first
// request after the cache expires is served warm.
func (s *Service) runCacheWarm() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.warm(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Leaderboard cache warm failed")
		return
	}
	s.log.Debug().Msg("Leaderboard cache warmed")
}
