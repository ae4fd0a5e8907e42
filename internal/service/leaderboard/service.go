// Package leaderboard derives ranked views of users from their eco-point
// balances.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/cache"
	"github.com/ecocampus/eco-challenge/internal/metrics"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// UserRepository interface for ranked user queries. ListStudents must return
// rows ordered by points descending then ID ascending so the projection is a
// total order.
type UserRepository interface {
	ListStudents(department string, limit int) ([]models.User, error)
	GetByID(id uint) (*models.User, error)
	CountStudentsRankedAbove(points int, id uint) (int64, error)
	GetDepartmentRankings() ([]repository.DepartmentRanking, error)
}

// Entry represents a single row in a leaderboard.
type Entry struct {
	Rank       int    `json:"rank"`
	UserID     uint   `json:"user_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	EcoPoints  int    `json:"eco_points"`
}

// Service builds leaderboard projections on demand, caching each scope until
// the next approval invalidates it.
type Service struct {
	userRepo UserRepository
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(userRepo *repository.UserRepository, c cache.Cache, cacheTTL time.Duration, log *logger.Logger) *Service {
	return newService(userRepo, c, cacheTTL, log)
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, c cache.Cache, cacheTTL time.Duration, log *logger.Logger) *Service {
	return newService(userRepo, c, cacheTTL, log)
}

func newService(userRepo UserRepository, c cache.Cache, cacheTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// GetGlobal returns the campus-wide leaderboard.
func (s *Service) GetGlobal(ctx context.Context, limit int) ([]Entry, error) {
	return s.getLeaderboard(ctx, "", limit)
}

// GetDepartment returns the leaderboard for one department.
func (s *Service) GetDepartment(ctx context.Context, department string, limit int) ([]Entry, error) {
	return s.getLeaderboard(ctx, department, limit)
}

// getLeaderboard serves a scope from cache when possible, otherwise
// recomputes the projection from current balances.
func (s *Service) getLeaderboard(ctx context.Context, department string, limit int) ([]Entry, error) {
	key := cacheKey(department)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			var entries []Entry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				metrics.RecordLeaderboardCache("hit")
				return clip(entries, limit), nil
			}
		}
	}
	metrics.RecordLeaderboardCache("miss")

	// The repository orders by points descending, ID ascending; ranks are
	// positional. Cache the full projection so every limit shares it.
	users, err := s.userRepo.ListStudents(department, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(users))
	for i, u := range users {
		entries = append(entries, Entry{
			Rank:       i + 1,
			UserID:     u.ID,
			Name:       u.Name,
			Department: u.Department,
			EcoPoints:  u.EcoPoints,
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache leaderboard")
			}
		}
	}

	return clip(entries, limit), nil
}

// GetUserRank returns a user's position in the global projection. The rank
// comes from a count query against current balances, so it never waits on
// the cached projection.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) GetUserRank(ctx context.Context, userID uint) (int, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.ErrNotFound
		}
		return 0, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user.Role != models.RoleStudent {
		return 0, apperr.ErrNotFound
	}

	ahead, err := s.userRepo.CountStudentsRankedAbove(user.EcoPoints, user.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to rank user %d: %w", userID, err)
	}
	return int(ahead) + 1, nil
}

// GetDepartmentRankings returns aggregate point totals per department.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) GetDepartmentRankings(ctx context.Context) ([]repository.DepartmentRanking, error) {
	return s.userRepo.GetDepartmentRankings()
}

// Invalidate drops the cached global projection and, when known, the
// affected department's. Called after every approval.
func (s *Service) Invalidate(ctx context.Context, department string) {
	if s.cache == nil {
		return
	}

	keys := []string{cacheKey("")}
	if department != "" {
		keys = append(keys, cacheKey(department))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
}

func cacheKey(department string) string {
	if department == "" {
		return "leaderboard:global"
	}
	return "leaderboard:department:" + department
}

func clip(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
