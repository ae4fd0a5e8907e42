package models

import (
	"time"
)

// Challenge is an admin-authored sustainability task with a point reward.
// Students never mutate catalog entries; retiring a challenge flips Status
// to archived rather than deleting the row.
type Challenge struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"size:100;index" json:"category"`
	Difficulty   string    `gorm:"size:50" json:"difficulty"` // 'Easy', 'Medium', 'Hard'
	Points       int       `gorm:"not null" json:"points"`
	DurationDays int       `gorm:"default:7" json:"duration_days"`
	Requirements []string  `gorm:"serializer:json" json:"requirements"`
	Tips         []string  `gorm:"serializer:json" json:"tips"`
	Status       string    `gorm:"size:50;index;default:'active'" json:"status"` // 'active', 'archived'
	CreatedBy    uint      `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Challenge model.
func (Challenge) TableName() string {
	return "challenges"
}

// ChallengeStatus constants.
const (
	ChallengeStatusActive   = "active"
	ChallengeStatusArchived = "archived"
)

// ChallengeDifficulty constants.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)
