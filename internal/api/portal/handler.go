// Package portal provides the student-facing REST API: challenge catalog,
// participation, proof submission, leaderboards and rewards.
package portal

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecocampus/eco-challenge/internal/api/middleware"
	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/internal/service/leaderboard"
	"github.com/ecocampus/eco-challenge/internal/service/ledger"
	"github.com/ecocampus/eco-challenge/internal/service/rewards"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// LedgerService interface for participation operations.
type LedgerService interface {
	Join(ctx context.Context, userID, challengeID uint) (*models.Participation, error)
	Get(ctx context.Context, userID, challengeID uint) (*models.Participation, error)
	ListByUser(ctx context.Context, userID uint) ([]ledger.ChallengeProgress, error)
	Stats(ctx context.Context, userID uint) (*ledger.UserStats, error)
	SubmitProof(ctx context.Context, userID, challengeID uint, files []ledger.ProofFileInput, description string) (*models.Submission, error)
}

// LeaderboardService interface for projection operations.
type LeaderboardService interface {
	GetGlobal(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	GetDepartment(ctx context.Context, department string, limit int) ([]leaderboard.Entry, error)
	GetUserRank(ctx context.Context, userID uint) (int, error)
	GetDepartmentRankings(ctx context.Context) ([]repository.DepartmentRanking, error)
}

// RewardsService interface for reward operations.
type RewardsService interface {
	List(ctx context.Context) ([]models.Reward, error)
	Claim(ctx context.Context, rewardID, userID uint) error
	ClaimsByUser(ctx context.Context, userID uint) ([]models.RewardClaim, error)
}

// ChallengeRepository interface for catalog reads.
type ChallengeRepository interface {
	GetByID(id uint) (*models.Challenge, error)
	List(status, category, search string) ([]models.Challenge, error)
}

// UserRepository interface for profile reads.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// ParticipationRepository interface for profile counters.
type ParticipationRepository interface {
	CountByUserAndStatus(userID uint, status string) (int64, error)
}

// Handler handles student-facing API requests.
type Handler struct {
	ledgerService      LedgerService
	leaderboardService LeaderboardService
	rewardsService     RewardsService
	challengeRepo      ChallengeRepository
	userRepo           UserRepository
	participationRepo  ParticipationRepository
	log                *logger.Logger
}

// NewHandler creates a new portal handler.
func NewHandler(
	ledgerService *ledger.Service,
	leaderboardService *leaderboard.Service,
	rewardsService *rewards.Service,
	challengeRepo *repository.ChallengeRepository,
	userRepo *repository.UserRepository,
	participationRepo *repository.ParticipationRepository,
	log *logger.Logger,
) *Handler {
	return &Handler{
		ledgerService:      ledgerService,
		leaderboardService: leaderboardService,
		rewardsService:     rewardsService,
		challengeRepo:      challengeRepo,
		userRepo:           userRepo,
		participationRepo:  participationRepo,
		log:                log,
	}
}

// NewHandlerWithInterfaces creates a new portal handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	ledgerService LedgerService,
	leaderboardService LeaderboardService,
	rewardsService RewardsService,
	challengeRepo ChallengeRepository,
	userRepo UserRepository,
	participationRepo ParticipationRepository,
	log *logger.Logger,
) *Handler {
	return &Handler{
		ledgerService:      ledgerService,
		leaderboardService: leaderboardService,
		rewardsService:     rewardsService,
		challengeRepo:      challengeRepo,
		userRepo:           userRepo,
		participationRepo:  participationRepo,
		log:                log,
	}
}

// ListChallenges returns the challenge catalog.
// GET /api/v1/challenges?status=active&category=Energy&search=bike.
func (h *Handler) ListChallenges(c *gin.Context) {
	status := c.DefaultQuery("status", models.ChallengeStatusActive)
	category := c.Query("category")
	search := c.Query("search")

	challenges, err := h.challengeRepo.List(status, category, search)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list challenges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve challenges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenges": challenges,
		"total":      len(challenges),
	})
}

// GetChallenge returns one catalog entry.
// GET /api/v1/challenges/:id.
func (h *Handler) GetChallenge(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	challenge, err := h.challengeRepo.GetByID(id)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Challenge not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": challenge})
}

// JoinChallenge enrolls the caller in a challenge.
// POST /api/v1/challenges/:id/join.
func (h *Handler) JoinChallenge(c *gin.Context) {
	challengeID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	userID := middleware.UserID(c)

	participation, err := h.ledgerService.Join(c.Request.Context(), userID, challengeID)
	if err != nil {
		h.domainError(c, err, "Failed to join challenge")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Challenge joined",
		"participation": participation,
	})
}

// SubmitProof accepts proof files and a description for a joined challenge.
// POST /api/v1/challenges/:id/proof (multipart form: files[], description).
func (h *Handler) SubmitProof(c *gin.Context) {
	challengeID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	userID := middleware.UserID(c)

	description := c.PostForm("description")

	var files []ledger.ProofFileInput
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["files"] {
			files = append(files, ledger.ProofFileInput{
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			})
		}
	}

	submission, err := h.ledgerService.SubmitProof(c.Request.Context(), userID, challengeID, files, description)
	if err != nil {
		h.domainError(c, err, "Failed to submit proof")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Proof submitted for review",
		"submission": submission,
	})
}

// MyChallenges returns the caller's enrollments with derived status.
// GET /api/v1/me/challenges.
func (h *Handler) MyChallenges(c *gin.Context) {
	userID := middleware.UserID(c)

	progress, err := h.ledgerService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to list user challenges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve challenges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenges": progress,
		"total":      len(progress),
	})
}

// MyStats returns the caller's ledger summary and global rank.
// GET /api/v1/me/stats.
func (h *Handler) MyStats(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	stats, err := h.ledgerService.Stats(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to compute user stats")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve statistics")
		return
	}

	rank := 0
	if r, err := h.leaderboardService.GetUserRank(ctx, userID); err == nil {
		rank = r
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
		"rank":  rank,
	})
}

// GetUser returns a user's public profile and balance.
// GET /api/v1/users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userRepo.GetByID(id)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "User not found")
		return
	}

	completed, err := h.participationRepo.CountByUserAndStatus(id, models.ParticipationCompleted)
	if err != nil {
		h.log.Warn().Err(err).Uint("user_id", id).Msg("Failed to count completed challenges")
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                 user,
		"completed_challenges": completed,
	})
}

// GetLeaderboard returns the ranked projection for a scope.
// GET /api/v1/leaderboard?scope=global|department:{d}&limit=100.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	scope := c.DefaultQuery("scope", "global")
	limit, err := h.parseLimit(c, 100)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	var entries []leaderboard.Entry
	switch {
	case scope == "global":
		entries, err = h.leaderboardService.GetGlobal(ctx, limit)
	case strings.HasPrefix(scope, "department:"):
		department := strings.TrimPrefix(scope, "department:")
		if department == "" {
			h.errorResponse(c, http.StatusBadRequest, "department scope requires a name")
			return
		}
		entries, err = h.leaderboardService.GetDepartment(ctx, department, limit)
	default:
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid scope: %s (valid: global, department:{name})", scope))
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("scope", scope).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"scope":         scope,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetDepartmentRankings returns aggregate department totals.
// GET /api/v1/departments/rankings.
func (h *Handler) GetDepartmentRankings(c *gin.Context) {
	rankings, err := h.leaderboardService.GetDepartmentRankings(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get department rankings")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve department rankings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"departments":  rankings,
		"generated_at": time.Now().UTC(),
	})
}

// ListRewards returns the active reward catalog.
// GET /api/v1/rewards.
func (h *Handler) ListRewards(c *gin.Context) {
	rewardList, err := h.rewardsService.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list rewards")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve rewards")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rewards": rewardList,
		"total":   len(rewardList),
	})
}

// ClaimReward claims a reward for the caller.
// POST /api/v1/rewards/:id/claim.
func (h *Handler) ClaimReward(c *gin.Context) {
	rewardID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	userID := middleware.UserID(c)

	if err := h.rewardsService.Claim(c.Request.Context(), rewardID, userID); err != nil {
		h.domainError(c, err, "Failed to claim reward")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reward claimed"})
}

// MyRewardClaims returns the caller's claim history.
// GET /api/v1/me/rewards.
func (h *Handler) MyRewardClaims(c *gin.Context) {
	userID := middleware.UserID(c)

	claims, err := h.rewardsService.ClaimsByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to list reward claims")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve claims")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claims": claims,
		"total":  len(claims),
	})
}

// Helper functions

// parseID extracts and validates a numeric URL parameter.
func (h *Handler) parseID(c *gin.Context, name string) (uint, error) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}
	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}

	return limit, nil
}

// domainError maps a domain error to its HTTP status; anything outside the
// taxonomy is logged and reported generically.
func (h *Handler) domainError(c *gin.Context, err error, fallback string) {
	if apperr.IsDomain(err) {
		h.errorResponse(c, apperr.HTTPStatus(err), err.Error())
		return
	}
	h.log.Error().Err(err).Msg(fallback)
	h.errorResponse(c, http.StatusInternalServerError, fallback)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
