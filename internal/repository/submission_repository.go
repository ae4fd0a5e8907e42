package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/models"
)

// SubmissionRepository handles the proof review queue. Approval and
// rejection run inside a single transaction: the participation flip, the
// point credit and the queue resolution are never observed half-done.
type SubmissionRepository struct {
	db *DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Enqueue flips the participation to under review and inserts the proof
// files and the queue item as one transaction. The flip is a guarded
// update: only a pending or rejected proof transitions, so a double
// submit enqueues exactly one item, and a failed insert rolls the flip
// back instead of stranding the participation under review.
func (r *SubmissionRepository) Enqueue(participationID uint, description string, files []models.ProofFile, submission *models.Submission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Participation{}).
			Where("id = ? AND proof_status IN ?", participationID,
				[]string{models.ProofStatusPending, models.ProofStatusRejected}).
			Updates(map[string]interface{}{
				"proof_submitted":   true,
				"proof_status":      models.ProofStatusUnderReview,
				"proof_description": description,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark participation %d under review: %w", participationID, result.Error)
		}
		if result.RowsAffected == 0 {
			var current models.Participation
			if err := tx.First(&current, participationID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.ErrNotFound
				}
				return fmt.Errorf("failed to load participation %d: %w", participationID, err)
			}
			if current.ProofStatus == models.ProofStatusApproved {
				return apperr.ErrAlreadyResolved
			}
			return apperr.ErrAlreadyUnderReview
		}

		if len(files) > 0 {
			if err := tx.Create(&files).Error; err != nil {
				return fmt.Errorf("failed to store proof files: %w", err)
			}
		}
		if err := tx.Create(submission).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a submission by ID.
func (r *SubmissionRepository) GetByID(id uint) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.Preload("User").Preload("Challenge").Preload("Participation").
		First(&submission, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get submission by id %d: %w", id, err)
	}
	return &submission, nil
}

// ListByStatus lists queue items by status, oldest first so admins work the
// queue in arrival order.
func (r *SubmissionRepository) ListByStatus(status string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.Where("status = ?", status).
		Preload("User").
		Preload("Challenge").
		Preload("Participation").
		Preload("Participation.ProofFiles").
		Order("submitted_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions by status %s: %w", status, err)
	}
	return submissions, nil
}

// CountDistinctSubmitters counts users who have submitted proof at least
// once, the "active students" figure on the analytics overview.
func (r *SubmissionRepository) CountDistinctSubmitters() (int64, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).
		Distinct("user_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct submitters: %w", err)
	}
	return count, nil
}

// CountByStatus counts queue items in a status.
func (r *SubmissionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).Where("status = ?", status).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions by status %s: %w", status, err)
	}
	return count, nil
}

// Approve resolves a submission and, in the same transaction, completes the
// participation and credits the challenge points to the user. The status
// flip is a guarded update: only a row still under review transitions, so
// two concurrent approvals produce exactly one credit. Returns the credited
// points.
func (r *SubmissionRepository) Approve(submissionID, reviewerID uint, comment string) (int, error) {
	var credited int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.First(&submission, submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("failed to load submission %d: %w", submissionID, err)
		}

		var challenge models.Challenge
		if err := tx.First(&challenge, submission.ChallengeID).Error; err != nil {
			return fmt.Errorf("failed to load challenge %d: %w", submission.ChallengeID, err)
		}

		now := time.Now()
		result := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", submissionID, models.SubmissionUnderReview).
			Updates(map[string]interface{}{
				"status":         models.SubmissionApproved,
				"reviewed_by":    reviewerID,
				"reviewed_at":    now,
				"review_comment": comment,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to approve submission %d: %w", submissionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.ErrAlreadyResolved
		}

		// The participation flip is guarded on proof_status as well: when
		// two queue items exist for one participation (a double submit that
		// slipped in before the enqueue guard), only the first approval can
		// transition it, so points are credited at most once.
		partResult := tx.Model(&models.Participation{}).
			Where("id = ? AND proof_status = ?", submission.ParticipationID, models.ProofStatusUnderReview).
			Updates(map[string]interface{}{
				"status":       models.ParticipationCompleted,
				"progress":     100,
				"proof_status": models.ProofStatusApproved,
				"completed_at": now,
			})
		if partResult.Error != nil {
			return fmt.Errorf("failed to complete participation %d: %w", submission.ParticipationID, partResult.Error)
		}
		if partResult.RowsAffected == 0 {
			return apperr.ErrAlreadyResolved
		}

		err := tx.Model(&models.User{}).
			Where("id = ?", submission.UserID).
			UpdateColumn("eco_points", gorm.Expr("eco_points + ?", challenge.Points)).Error
		if err != nil {
			return fmt.Errorf("failed to credit %d points to user %d: %w", challenge.Points, submission.UserID, err)
		}

		credited = challenge.Points
		return nil
	})
	if err != nil {
		return 0, err
	}
	return credited, nil
}

// Reject resolves a submission without touching points or progress. The
// participation returns to a rejected proof state and stays in progress, so
// the user can submit fresh proof.
func (r *SubmissionRepository) Reject(submissionID, reviewerID uint, comment string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.First(&submission, submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("failed to load submission %d: %w", submissionID, err)
		}

		result := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", submissionID, models.SubmissionUnderReview).
			Updates(map[string]interface{}{
				"status":         models.SubmissionRejected,
				"reviewed_by":    reviewerID,
				"reviewed_at":    time.Now(),
				"review_comment": comment,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to reject submission %d: %w", submissionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.ErrAlreadyResolved
		}

		// Same proof_status guard as Approve: a second queue item cannot
		// reopen a participation another approval already completed.
		partResult := tx.Model(&models.Participation{}).
			Where("id = ? AND proof_status = ?", submission.ParticipationID, models.ProofStatusUnderReview).
			Update("proof_status", models.ProofStatusRejected)
		if partResult.Error != nil {
			return fmt.Errorf("failed to mark participation %d rejected: %w", submission.ParticipationID, partResult.Error)
		}
		if partResult.RowsAffected == 0 {
			return apperr.ErrAlreadyResolved
		}

		return nil
	})
}
