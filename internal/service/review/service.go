// Package review implements the admin approval engine for proof submissions.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/metrics"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// SubmissionRepository interface for review queue operations. Approve and
// Reject are atomic in the storage layer; this service never sees a
// half-applied decision.
type SubmissionRepository interface {
	GetByID(id uint) (*models.Submission, error)
	ListByStatus(status string) ([]models.Submission, error)
	CountByStatus(status string) (int64, error)
	Approve(submissionID, reviewerID uint, comment string) (int, error)
	Reject(submissionID, reviewerID uint, comment string) error
}

// UserRepository interface for reviewer and submitter lookups.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// LeaderboardInvalidator drops cached projections after a balance change.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context, department string)
}

// Service handles the pending queue and approve/reject decisions.
type Service struct {
	submissionRepo SubmissionRepository
	userRepo       UserRepository
	invalidator    LeaderboardInvalidator
	sanitizer      *bluemonday.Policy
	log            *logger.Logger
}

// NewService creates a new review service with concrete repository types.
func NewService(
	submissionRepo *repository.SubmissionRepository,
	userRepo *repository.UserRepository,
	invalidator LeaderboardInvalidator,
	log *logger.Logger,
) *Service {
	return newService(submissionRepo, userRepo, invalidator, log)
}

// NewServiceWithInterfaces creates a new review service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	submissionRepo SubmissionRepository,
	userRepo UserRepository,
	invalidator LeaderboardInvalidator,
	log *logger.Logger,
) *Service {
	return newService(submissionRepo, userRepo, invalidator, log)
}

func newService(
	submissionRepo SubmissionRepository,
	userRepo UserRepository,
	invalidator LeaderboardInvalidator,
	log *logger.Logger,
) *Service {
	return &Service{
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		invalidator:    invalidator,
		sanitizer:      bluemonday.StrictPolicy(),
		log:            log,
	}
}

// PendingQueue returns the under-review items oldest first and refreshes the
// queue depth gauge.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) PendingQueue(ctx context.Context) ([]models.Submission, error) {
	submissions, err := s.submissionRepo.ListByStatus(models.SubmissionUnderReview)
	if err != nil {
		return nil, err
	}
	metrics.SetPendingSubmissions(int64(len(submissions)))
	return submissions, nil
}

// Review resolves a submission. On approve the storage layer atomically
// completes the participation and credits points; this method then records
// metrics and drops the affected leaderboard projections. On reject the
// participation stays in progress and the user may resubmit.
func (s *Service) Review(ctx context.Context, submissionID, reviewerID uint, decision, comment string) error {
	comment = strings.TrimSpace(s.sanitizer.Sanitize(comment))

	submission, err := s.submissionRepo.GetByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	switch decision {
	case models.DecisionApprove:
		credited, err := s.submissionRepo.Approve(submissionID, reviewerID, comment)
		if err != nil {
			return err
		}

		category := ""
		if submission.Challenge != nil {
			category = submission.Challenge.Category
		}
		metrics.RecordReviewResolved(models.DecisionApprove)
		metrics.RecordPointsAwarded(category, credited)
		metrics.ObserveReviewTurnaround(time.Since(submission.SubmittedAt).Seconds())

		s.invalidateFor(ctx, submission.UserID)

		s.log.Info().
			Uint("submission_id", submissionID).
			Uint("reviewer_id", reviewerID).
			Uint("user_id", submission.UserID).
			Int("points", credited).
			Msg("Submission approved")

	case models.DecisionReject:
		if err := s.submissionRepo.Reject(submissionID, reviewerID, comment); err != nil {
			return err
		}

		metrics.RecordReviewResolved(models.DecisionReject)
		metrics.ObserveReviewTurnaround(time.Since(submission.SubmittedAt).Seconds())

		s.log.Info().
			Uint("submission_id", submissionID).
			Uint("reviewer_id", reviewerID).
			Uint("user_id", submission.UserID).
			Msg("Submission rejected")

	default:
		return fmt.Errorf("unknown review decision %q", decision)
	}

	if count, err := s.submissionRepo.CountByStatus(models.SubmissionUnderReview); err == nil {
		metrics.SetPendingSubmissions(count)
	}

	return nil
}

// invalidateFor drops the cached projections the user's new balance affects.
func (s *Service) invalidateFor(ctx context.Context, userID uint) {
	if s.invalidator == nil {
		return
	}

	department := ""
	if user, err := s.userRepo.GetByID(userID); err == nil {
		department = user.Department
	} else {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to load user for cache invalidation")
	}
	s.invalidator.Invalidate(ctx, department)
}
