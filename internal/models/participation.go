package models

import (
	"time"
)

// Participation tracks one user's enrollment in one challenge. There is at
// most one row per (user, challenge) pair; history is retained, rows are
// never deleted.
type Participation struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;uniqueIndex:idx_participation_user_challenge" json:"user_id"`
	User             *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ChallengeID      uint       `gorm:"not null;uniqueIndex:idx_participation_user_challenge" json:"challenge_id"`
	Challenge        *Challenge `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
	JoinedAt         time.Time  `gorm:"not null" json:"joined_at"`
	Status           string     `gorm:"size:50;index" json:"status"` // 'in_progress', 'completed'
	Progress         int        `gorm:"default:0" json:"progress"`   // 0-100
	ProofSubmitted   bool       `gorm:"default:false" json:"proof_submitted"`
	ProofStatus      string     `gorm:"size:50;index" json:"proof_status"` // 'pending', 'under_review', 'approved', 'rejected'
	ProofDescription string     `gorm:"type:text" json:"proof_description"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relationships
	ProofFiles []ProofFile `gorm:"foreignKey:ParticipationID" json:"proof_files,omitempty"`
}

// TableName specifies the table name for Participation model.
func (Participation) TableName() string {
	return "participations"
}

// ParticipationStatus constants. Overdue is never stored; it is derived at
// read time from JoinedAt plus the challenge duration.
const (
	ParticipationInProgress = "in_progress"
	ParticipationCompleted  = "completed"
	ParticipationOverdue    = "overdue"
)

// ProofStatus constants.
const (
	ProofStatusPending     = "pending"
	ProofStatusUnderReview = "under_review"
	ProofStatusApproved    = "approved"
	ProofStatusRejected    = "rejected"
)

// Deadline returns the moment the participation goes overdue.
func (p *Participation) Deadline(durationDays int) time.Time {
	return p.JoinedAt.Add(time.Duration(durationDays) * 24 * time.Hour)
}

// DisplayStatus resolves the status shown to callers, substituting the
// derived overdue state for stale in-progress records.
func (p *Participation) DisplayStatus(durationDays int, now time.Time) string {
	if p.Status == ParticipationInProgress && now.After(p.Deadline(durationDays)) {
		return ParticipationOverdue
	}
	return p.Status
}

// ProofFile is the stored metadata for one uploaded proof artifact. The
// binary itself lives with the upload layer; only the reference is kept.
type ProofFile struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"` // uuid
	ParticipationID uint      `gorm:"not null;index" json:"participation_id"`
	FileName        string    `gorm:"size:255" json:"file_name"`
	ContentType     string    `gorm:"size:100" json:"content_type"`
	Size            int64     `json:"size"`
	URL             string    `gorm:"type:text" json:"url"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for ProofFile model.
func (ProofFile) TableName() string {
	return "proof_files"
}
