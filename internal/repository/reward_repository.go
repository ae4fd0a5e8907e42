package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/models"
)

// RewardRepository handles reward catalog and claim database operations.
type RewardRepository struct {
	db *DB
}

// NewRewardRepository creates a new reward repository.
func NewRewardRepository(db *DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// Create creates a new reward.
func (r *RewardRepository) Create(reward *models.Reward) error {
	if err := r.db.Create(reward).Error; err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}
	return nil
}

// GetByID retrieves a reward by ID.
func (r *RewardRepository) GetByID(id uint) (*models.Reward, error) {
	var reward models.Reward
	if err := r.db.First(&reward, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get reward by id %d: %w", id, err)
	}
	return &reward, nil
}

// List retrieves rewards cheapest first, optionally only active ones.
func (r *RewardRepository) List(activeOnly bool) ([]models.Reward, error) {
	query := r.db.Model(&models.Reward{}).Order("points_required ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var rewards []models.Reward
	if err := query.Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

// Claim records a claim and decrements stock in one transaction. The stock
// decrement is guarded so two concurrent claims cannot oversell the last
// unit.
func (r *RewardRepository) Claim(rewardID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.First(&reward, rewardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("failed to load reward %d: %w", rewardID, err)
		}
		if !reward.Active {
			return apperr.ErrNotFound
		}

		if reward.Stock != nil {
			result := tx.Model(&models.Reward{}).
				Where("id = ? AND stock > 0", rewardID).
				UpdateColumn("stock", gorm.Expr("stock - 1"))
			if result.Error != nil {
				return fmt.Errorf("failed to decrement stock for reward %d: %w", rewardID, result.Error)
			}
			if result.RowsAffected == 0 {
				return apperr.ErrOutOfStock
			}
		}

		claim := models.RewardClaim{
			RewardID:  rewardID,
			UserID:    userID,
			ClaimedAt: time.Now(),
		}
		if err := tx.Create(&claim).Error; err != nil {
			return fmt.Errorf("failed to record claim for reward %d: %w", rewardID, err)
		}

		return nil
	})
}

// CountClaims counts all recorded reward claims.
func (r *RewardRepository) CountClaims() (int64, error) {
	var count int64
	if err := r.db.Model(&models.RewardClaim{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reward claims: %w", err)
	}
	return count, nil
}

// ListClaimsByUser retrieves a user's claims, newest first.
func (r *RewardRepository) ListClaimsByUser(userID uint) ([]models.RewardClaim, error) {
	var claims []models.RewardClaim
	err := r.db.Where("user_id = ?", userID).
		Preload("Reward").
		Order("claimed_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list claims for user %d: %w", userID, err)
	}
	return claims, nil
}
