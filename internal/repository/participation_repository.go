package repository

import (
	"fmt"

	"github.com/ecocampus/eco-challenge/internal/models"
)

// ParticipationRepository handles enrollment database operations.
type ParticipationRepository struct {
	db *DB
}

// NewParticipationRepository creates a new participation repository.
func NewParticipationRepository(db *DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Create creates a new participation record. The unique index on
// (user_id, challenge_id) makes a duplicate insert fail.
func (r *ParticipationRepository) Create(participation *models.Participation) error {
	if err := r.db.Create(participation).Error; err != nil {
		return fmt.Errorf("failed to create participation: %w", err)
	}
	return nil
}

// GetByUserAndChallenge retrieves the record for one (user, challenge) pair.
func (r *ParticipationRepository) GetByUserAndChallenge(userID, challengeID uint) (*models.Participation, error) {
	var participation models.Participation
	err := r.db.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Preload("ProofFiles").
		First(&participation).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get participation for user %d, challenge %d: %w", userID, challengeID, err)
	}
	return &participation, nil
}

// ListByUser retrieves all enrollments for a user, newest first.
func (r *ParticipationRepository) ListByUser(userID uint) ([]models.Participation, error) {
	var participations []models.Participation
	err := r.db.Where("user_id = ?", userID).
		Preload("Challenge").
		Preload("ProofFiles").
		Order("joined_at DESC").
		Find(&participations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participations for user %d: %w", userID, err)
	}
	return participations, nil
}

// CountByUserAndStatus counts a user's enrollments in a given status.
func (r *ParticipationRepository) CountByUserAndStatus(userID uint, status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count participations for user %d: %w", userID, err)
	}
	return count, nil
}
