package models

import (
	"time"
)

// Reward is a claimable perk gated by a user's eco-point balance. Claiming
// does not spend points; the balance is a lifetime score.
type Reward struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"type:text;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	PointsRequired int       `gorm:"not null" json:"points_required"`
	Category       string    `gorm:"size:100" json:"category"` // 'certificate', 'eco-merch', 'meal-token'
	Stock          *int      `json:"stock"`                    // nil means unlimited
	Active         bool      `gorm:"default:true;index" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Reward model.
func (Reward) TableName() string {
	return "rewards"
}

// RewardClaim records one user claiming one reward.
type RewardClaim struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RewardID  uint      `gorm:"not null;index" json:"reward_id"`
	Reward    *Reward   `gorm:"foreignKey:RewardID" json:"reward,omitempty"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ClaimedAt time.Time `gorm:"not null" json:"claimed_at"`
}

// TableName specifies the table name for RewardClaim model.
func (RewardClaim) TableName() string {
	return "reward_claims"
}
