// Package analytics aggregates platform-wide figures for the admin
// dashboard.
package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// UserRepository interface for user counts and department aggregates.
type UserRepository interface {
	CountStudents() (int64, error)
	GetDepartmentRankings() ([]repository.DepartmentRanking, error)
}

// ChallengeRepository interface for catalog counts.
type ChallengeRepository interface {
	Count(status string) (int64, error)
}

// SubmissionRepository interface for queue counts.
type SubmissionRepository interface {
	CountByStatus(status string) (int64, error)
	CountDistinctSubmitters() (int64, error)
}

// RewardRepository interface for claim counts.
type RewardRepository interface {
	CountClaims() (int64, error)
}

// Overview is the admin analytics dashboard payload.
type Overview struct {
	TotalStudents       int64                          `json:"total_students"`
	ActiveStudents      int64                          `json:"active_students"`
	ParticipationRate   float64                        `json:"participation_rate"`
	ActiveChallenges    int64                          `json:"active_challenges"`
	ArchivedChallenges  int64                          `json:"archived_challenges"`
	PendingSubmissions  int64                          `json:"pending_submissions"`
	ApprovedSubmissions int64                          `json:"approved_submissions"`
	RejectedSubmissions int64                          `json:"rejected_submissions"`
	RewardClaims        int64                          `json:"reward_claims"`
	Departments         []repository.DepartmentRanking `json:"departments"`
}

// Service assembles the analytics overview from repository counts.
type Service struct {
	userRepo       UserRepository
	challengeRepo  ChallengeRepository
	submissionRepo SubmissionRepository
	rewardRepo     RewardRepository
	log            *logger.Logger
}

// NewService creates a new analytics service with concrete repository types.
func NewService(
	userRepo *repository.UserRepository,
	challengeRepo *repository.ChallengeRepository,
	submissionRepo *repository.SubmissionRepository,
	rewardRepo *repository.RewardRepository,
	log *logger.Logger,
) *Service {
	return newService(userRepo, challengeRepo, submissionRepo, rewardRepo, log)
}

// NewServiceWithInterfaces creates a new analytics service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	challengeRepo ChallengeRepository,
	submissionRepo SubmissionRepository,
	rewardRepo RewardRepository,
	log *logger.Logger,
) *Service {
	return newService(userRepo, challengeRepo, submissionRepo, rewardRepo, log)
}

func newService(
	userRepo UserRepository,
	challengeRepo ChallengeRepository,
	submissionRepo SubmissionRepository,
	rewardRepo RewardRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:       userRepo,
		challengeRepo:  challengeRepo,
		submissionRepo: submissionRepo,
		rewardRepo:     rewardRepo,
		log:            log,
	}
}

// Overview builds the dashboard snapshot. The participation rate is the
// share of students who have submitted proof at least once.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	totalStudents, err := s.userRepo.CountStudents()
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	activeStudents, err := s.submissionRepo.CountDistinctSubmitters()
	if err != nil {
		return nil, fmt.Errorf("failed to count active students: %w", err)
	}

	activeChallenges, err := s.challengeRepo.Count(models.ChallengeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active challenges: %w", err)
	}
	archivedChallenges, err := s.challengeRepo.Count(models.ChallengeStatusArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to count archived challenges: %w", err)
	}

	pending, err := s.submissionRepo.CountByStatus(models.SubmissionUnderReview)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending submissions: %w", err)
	}
	approved, err := s.submissionRepo.CountByStatus(models.SubmissionApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved submissions: %w", err)
	}
	rejected, err := s.submissionRepo.CountByStatus(models.SubmissionRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to count rejected submissions: %w", err)
	}

	claims, err := s.rewardRepo.CountClaims()
	if err != nil {
		return nil, fmt.Errorf("failed to count reward claims: %w", err)
	}

	departments, err := s.userRepo.GetDepartmentRankings()
	if err != nil {
		return nil, fmt.Errorf("failed to get department rankings: %w", err)
	}

	rate := 0.0
	if totalStudents > 0 {
		rate = math.Round(float64(activeStudents)/float64(totalStudents)*10000) / 100
	}

	return &Overview{
		TotalStudents:       totalStudents,
		ActiveStudents:      activeStudents,
		ParticipationRate:   rate,
		ActiveChallenges:    activeChallenges,
		ArchivedChallenges:  archivedChallenges,
		PendingSubmissions:  pending,
		ApprovedSubmissions: approved,
		RejectedSubmissions: rejected,
		RewardClaims:        claims,
		Departments:         departments,
	}, nil
}
