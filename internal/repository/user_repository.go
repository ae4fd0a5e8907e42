package repository

import (
	"fmt"

	"github.com/ecocampus/eco-challenge/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// Update updates a user.
func (r *UserRepository) Update(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// ListStudents retrieves student accounts, optionally filtered by department,
// ordered for the leaderboard projection: points descending, then ID
// ascending so ties have a total deterministic order.
func (r *UserRepository) ListStudents(department string, limit int) ([]models.User, error) {
	query := r.db.Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Order("eco_points DESC, id ASC")

	if department != "" {
		query = query.Where("department = ?", department)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return users, nil
}

// CountStudentsRankedAbove counts students ahead of the given (points, id)
// pair in the leaderboard order: more points, or equal points with a lower
// ID. Adding one yields the user's rank without materializing the
// projection.
func (r *UserRepository) CountStudentsRankedAbove(points int, id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Where("eco_points > ? OR (eco_points = ? AND id < ?)", points, points, id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count students ranked above %d points: %w", points, err)
	}
	return count, nil
}

// CountStudents counts all student accounts.
func (r *UserRepository) CountStudents() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// DepartmentRanking aggregates student points per department.
type DepartmentRanking struct {
	Department   string  `json:"department"`
	TotalPoints  int     `json:"total_points"`
	StudentCount int     `json:"student_count"`
	AvgPoints    float64 `json:"avg_points"`
}

// GetDepartmentRankings returns per-department point totals sorted descending.
func (r *UserRepository) GetDepartmentRankings() ([]DepartmentRanking, error) {
	var rankings []DepartmentRanking
	err := r.db.Model(&models.User{}).
		Select("department, SUM(eco_points) as total_points, COUNT(*) as student_count, AVG(eco_points) as avg_points").
		Where("role = ?", models.RoleStudent).
		Group("department").
		Order("total_points DESC").
		Scan(&rankings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get department rankings: %w", err)
	}
	return rankings, nil
}
