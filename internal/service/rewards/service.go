// Package rewards handles the reward catalog and point-gated claims.
package rewards

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/metrics"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// RewardRepository interface for reward catalog and claim operations.
type RewardRepository interface {
	GetByID(id uint) (*models.Reward, error)
	List(activeOnly bool) ([]models.Reward, error)
	Claim(rewardID, userID uint) error
	ListClaimsByUser(userID uint) ([]models.RewardClaim, error)
}

// UserRepository interface for balance checks.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// Service implements reward browsing and claiming.
type Service struct {
	rewardRepo RewardRepository
	userRepo   UserRepository
	log        *logger.Logger
}

// NewService creates a new rewards service with concrete repository types.
func NewService(rewardRepo *repository.RewardRepository, userRepo *repository.UserRepository, log *logger.Logger) *Service {
	return newService(rewardRepo, userRepo, log)
}

// NewServiceWithInterfaces creates a new rewards service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(rewardRepo RewardRepository, userRepo UserRepository, log *logger.Logger) *Service {
	return newService(rewardRepo, userRepo, log)
}

func newService(rewardRepo RewardRepository, userRepo UserRepository, log *logger.Logger) *Service {
	return &Service{
		rewardRepo: rewardRepo,
		userRepo:   userRepo,
		log:        log,
	}
}

// List returns the active reward catalog, cheapest first.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) List(ctx context.Context) ([]models.Reward, error) {
	return s.rewardRepo.List(true)
}

// Claim lets a user with a sufficient balance claim a reward. Points are a
// lifetime score; claiming does not spend them. Stock decrement and the
// claim record are one transaction in the storage layer.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) Claim(ctx context.Context, rewardID, userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	reward, err := s.rewardRepo.GetByID(rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordRewardClaim("not_found")
			return apperr.ErrNotFound
		}
		return err
	}
	if !reward.Active {
		metrics.RecordRewardClaim("not_found")
		return apperr.ErrNotFound
	}

	if user.EcoPoints < reward.PointsRequired {
		metrics.RecordRewardClaim("insufficient_points")
		return apperr.ErrInsufficientPoints
	}

	if err := s.rewardRepo.Claim(rewardID, userID); err != nil {
		if errors.Is(err, apperr.ErrOutOfStock) {
			metrics.RecordRewardClaim("out_of_stock")
		}
		return err
	}

	metrics.RecordRewardClaim("claimed")
	s.log.Info().
		Uint("user_id", userID).
		Uint("reward_id", rewardID).
		Int("points_required", reward.PointsRequired).
		Msg("Reward claimed")

	return nil
}

// ClaimsByUser returns a user's claim history.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) ClaimsByUser(ctx context.Context, userID uint) ([]models.RewardClaim, error) {
	return s.rewardRepo.ListClaimsByUser(userID)
}
