package models

import (
	"time"
)

// Submission is one queued unit of admin review work, created each time a
// participant submits proof. Resolution is terminal for the submission;
// a rejected participation may spawn a fresh submission later.
type Submission struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ParticipationID uint           `gorm:"not null;index" json:"participation_id"`
	Participation   *Participation `gorm:"foreignKey:ParticipationID" json:"participation,omitempty"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ChallengeID     uint           `gorm:"not null;index" json:"challenge_id"`
	Challenge       *Challenge     `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
	SubmittedAt     time.Time      `gorm:"not null" json:"submitted_at"`
	Description     string         `gorm:"type:text" json:"description"`
	Status          string         `gorm:"size:50;index" json:"status"` // 'under_review', 'approved', 'rejected'
	ReviewedBy      *uint          `json:"reviewed_by"`
	Reviewer        *User          `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at"`
	ReviewComment   string         `gorm:"type:text" json:"review_comment"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName specifies the table name for Submission model.
func (Submission) TableName() string {
	return "submissions"
}

// SubmissionStatus constants.
const (
	SubmissionUnderReview = "under_review"
	SubmissionApproved    = "approved"
	SubmissionRejected    = "rejected"
)

// ReviewDecision constants accepted by the review endpoint.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)
