package repository

import (
	"fmt"

	"github.com/ecocampus/eco-challenge/internal/models"
)

// ChallengeRepository handles challenge catalog database operations.
type ChallengeRepository struct {
	db *DB
}

// NewChallengeRepository creates a new challenge repository.
func NewChallengeRepository(db *DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create creates a new challenge.
func (r *ChallengeRepository) Create(challenge *models.Challenge) error {
	if err := r.db.Create(challenge).Error; err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// GetByID retrieves a challenge by ID.
func (r *ChallengeRepository) GetByID(id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.First(&challenge, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get challenge by id %d: %w", id, err)
	}
	return &challenge, nil
}

// Update updates a challenge.
func (r *ChallengeRepository) Update(challenge *models.Challenge) error {
	if err := r.db.Save(challenge).Error; err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	return nil
}

// Archive soft-retires a challenge; catalog rows are never deleted.
func (r *ChallengeRepository) Archive(id uint) error {
	result := r.db.Model(&models.Challenge{}).
		Where("id = ?", id).
		Update("status", models.ChallengeStatusArchived)
	if result.Error != nil {
		return fmt.Errorf("failed to archive challenge %d: %w", id, result.Error)
	}
	return nil
}

// List retrieves challenges filtered by status, category and a free-text
// search over title and description.
func (r *ChallengeRepository) List(status, category, search string) ([]models.Challenge, error) {
	query := r.db.Model(&models.Challenge{}).Order("created_at DESC")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var challenges []models.Challenge
	if err := query.Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// Count returns the number of challenges with the given status; an empty
// status counts everything.
func (r *ChallengeRepository) Count(status string) (int64, error) {
	query := r.db.Model(&models.Challenge{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count challenges: %w", err)
	}
	return count, nil
}
