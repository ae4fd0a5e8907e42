// Package ledger tracks each user's enrollment in challenges and handles
// proof submission.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/metrics"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// ParticipationRepository interface for enrollment operations.
type ParticipationRepository interface {
	Create(participation *models.Participation) error
	GetByUserAndChallenge(userID, challengeID uint) (*models.Participation, error)
	ListByUser(userID uint) ([]models.Participation, error)
}

// ChallengeRepository interface for catalog lookups.
type ChallengeRepository interface {
	GetByID(id uint) (*models.Challenge, error)
}

// SubmissionRepository interface for enqueueing review items. Enqueue must
// flip the participation, store the files and insert the queue item
// atomically, refusing a participation already under review or approved.
type SubmissionRepository interface {
	Enqueue(participationID uint, description string, files []models.ProofFile, submission *models.Submission) error
}

// ProofFileInput carries metadata for one uploaded proof artifact.
type ProofFileInput struct {
	FileName    string
	ContentType string
	Size        int64
}

// ChallengeProgress is the read model for "my challenges": the stored
// participation joined with its challenge and the derived display status.
type ChallengeProgress struct {
	Participation models.Participation `json:"participation"`
	Challenge     models.Challenge     `json:"challenge"`
	Status        string               `json:"status"`
	Deadline      time.Time            `json:"deadline"`
}

// UserStats summarizes one user's ledger.
type UserStats struct {
	Joined            int `json:"joined"`
	InProgress        int `json:"in_progress"`
	Completed         int `json:"completed"`
	Overdue           int `json:"overdue"`
	UnderReview       int `json:"under_review"`
	TotalPointsEarned int `json:"total_points_earned"`
}

// Service implements the participation ledger and proof submission handler.
type Service struct {
	participationRepo ParticipationRepository
	challengeRepo     ChallengeRepository
	submissionRepo    SubmissionRepository
	sanitizer         *bluemonday.Policy
	log               *logger.Logger
}

// NewService creates a new ledger service with concrete repository types.
func NewService(
	participationRepo *repository.ParticipationRepository,
	challengeRepo *repository.ChallengeRepository,
	submissionRepo *repository.SubmissionRepository,
	log *logger.Logger,
) *Service {
	return newService(participationRepo, challengeRepo, submissionRepo, log)
}

// NewServiceWithInterfaces creates a new ledger service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	participationRepo ParticipationRepository,
	challengeRepo ChallengeRepository,
	submissionRepo SubmissionRepository,
	log *logger.Logger,
) *Service {
	return newService(participationRepo, challengeRepo, submissionRepo, log)
}

func newService(
	participationRepo ParticipationRepository,
	challengeRepo ChallengeRepository,
	submissionRepo SubmissionRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		participationRepo: participationRepo,
		challengeRepo:     challengeRepo,
		submissionRepo:    submissionRepo,
		sanitizer:         bluemonday.StrictPolicy(),
		log:               log,
	}
}

// Join enrolls a user in a challenge. Joining twice is rejected; the unique
// (user, challenge) index backs the check against concurrent joins.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) Join(ctx context.Context, userID, challengeID uint) (*models.Participation, error) {
	challenge, err := s.challengeRepo.GetByID(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if challenge.Status != models.ChallengeStatusActive {
		return nil, apperr.ErrNotFound
	}

	if _, err := s.participationRepo.GetByUserAndChallenge(userID, challengeID); err == nil {
		metrics.RecordJoin(challenge.Category, "already_joined")
		return nil, apperr.ErrAlreadyJoined
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	participation := &models.Participation{
		UserID:      userID,
		ChallengeID: challengeID,
		JoinedAt:    time.Now(),
		Status:      models.ParticipationInProgress,
		Progress:    0,
		ProofStatus: models.ProofStatusPending,
	}
	if err := s.participationRepo.Create(participation); err != nil {
		// A concurrent join may win the race; the unique index turns the
		// second insert into a constraint violation.
		if _, lookupErr := s.participationRepo.GetByUserAndChallenge(userID, challengeID); lookupErr == nil {
			metrics.RecordJoin(challenge.Category, "already_joined")
			return nil, apperr.ErrAlreadyJoined
		}
		return nil, err
	}

	metrics.RecordJoin(challenge.Category, "joined")
	s.log.Info().
		Uint("user_id", userID).
		Uint("challenge_id", challengeID).
		Msg("User joined challenge")

	return participation, nil
}

// Get returns the participation record for one (user, challenge) pair.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) Get(ctx context.Context, userID, challengeID uint) (*models.Participation, error) {
	participation, err := s.participationRepo.GetByUserAndChallenge(userID, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return participation, nil
}

// ListByUser returns all of a user's enrollments with the overdue state
// resolved at read time.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) ListByUser(ctx context.Context, userID uint) ([]ChallengeProgress, error) {
	participations, err := s.participationRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	progress := make([]ChallengeProgress, 0, len(participations))
	for _, p := range participations {
		challenge := p.Challenge
		if challenge == nil {
			loaded, err := s.challengeRepo.GetByID(p.ChallengeID)
			if err != nil {
				s.log.Warn().Err(err).Uint("challenge_id", p.ChallengeID).Msg("Failed to load challenge for participation")
				continue
			}
			challenge = loaded
		}

		progress = append(progress, ChallengeProgress{
			Participation: p,
			Challenge:     *challenge,
			Status:        p.DisplayStatus(challenge.DurationDays, now),
			Deadline:      p.Deadline(challenge.DurationDays),
		})
	}

	return progress, nil
}

// Stats aggregates a user's ledger into dashboard counters.
func (s *Service) Stats(ctx context.Context, userID uint) (*UserStats, error) {
	progress, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{Joined: len(progress)}
	for _, p := range progress {
		switch p.Status {
		case models.ParticipationCompleted:
			stats.Completed++
			stats.TotalPointsEarned += p.Challenge.Points
		case models.ParticipationOverdue:
			stats.Overdue++
		default:
			stats.InProgress++
		}
		if p.Participation.ProofStatus == models.ProofStatusUnderReview {
			stats.UnderReview++
		}
	}

	return stats, nil
}

// SubmitProof records proof for a joined challenge and enqueues exactly one
// review item. A record already under review or already completed rejects
// the call, keeping at most one review in flight per participation.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) SubmitProof(ctx context.Context, userID, challengeID uint, files []ProofFileInput, description string) (*models.Submission, error) {
	participation, err := s.participationRepo.GetByUserAndChallenge(userID, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotJoined
		}
		return nil, err
	}

	challenge, err := s.challengeRepo.GetByID(challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge %d: %w", challengeID, err)
	}

	switch {
	case participation.Status == models.ParticipationCompleted:
		metrics.RecordProofSubmission(challenge.Category, "already_resolved")
		return nil, apperr.ErrAlreadyResolved
	case participation.ProofStatus == models.ProofStatusUnderReview:
		metrics.RecordProofSubmission(challenge.Category, "already_under_review")
		return nil, apperr.ErrAlreadyUnderReview
	}

	description = strings.TrimSpace(s.sanitizer.Sanitize(description))
	if len(files) == 0 && description == "" {
		metrics.RecordProofSubmission(challenge.Category, "empty")
		return nil, apperr.ErrEmptySubmission
	}

	proofFiles := make([]models.ProofFile, 0, len(files))
	for _, f := range files {
		id := uuid.NewString()
		proofFiles = append(proofFiles, models.ProofFile{
			ID:              id,
			ParticipationID: participation.ID,
			FileName:        f.FileName,
			ContentType:     f.ContentType,
			Size:            f.Size,
			URL:             "/uploads/proofs/" + id,
		})
	}

	submission := &models.Submission{
		ParticipationID: participation.ID,
		UserID:          userID,
		ChallengeID:     challengeID,
		SubmittedAt:     time.Now(),
		Description:     description,
		Status:          models.SubmissionUnderReview,
	}

	// One transaction: a concurrent submit that slipped past the checks
	// above loses on the guarded status flip inside Enqueue, and a failed
	// insert rolls everything back so the user can simply retry.
	if err := s.submissionRepo.Enqueue(participation.ID, description, proofFiles, submission); err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyUnderReview):
			metrics.RecordProofSubmission(challenge.Category, "already_under_review")
		case errors.Is(err, apperr.ErrAlreadyResolved):
			metrics.RecordProofSubmission(challenge.Category, "already_resolved")
		}
		return nil, err
	}

	metrics.RecordProofSubmission(challenge.Category, "submitted")
	s.log.Info().
		Uint("user_id", userID).
		Uint("challenge_id", challengeID).
		Uint("submission_id", submission.ID).
		Int("files", len(files)).
		Msg("Proof submitted for review")

	return submission, nil
}
