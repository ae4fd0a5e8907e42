package models

import (
	"time"
)

// User represents a platform account, student or admin.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         string    `gorm:"size:50;index" json:"role"` // 'student' or 'admin'
	Department   string    `gorm:"size:100;index" json:"department"`
	EcoPoints    int       `gorm:"default:0" json:"eco_points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// UserRole constants.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// IsAdmin reports whether the user may access admin endpoints.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
