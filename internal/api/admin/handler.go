// Package admin provides the administrator REST API: the proof review queue
// and challenge catalog management.
package admin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecocampus/eco-challenge/internal/api/middleware"
	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/internal/service/analytics"
	"github.com/ecocampus/eco-challenge/internal/service/review"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// ReviewService interface for queue and decision operations.
type ReviewService interface {
	PendingQueue(ctx context.Context) ([]models.Submission, error)
	Review(ctx context.Context, submissionID, reviewerID uint, decision, comment string) error
}

// ChallengeRepository interface for catalog management.
type ChallengeRepository interface {
	Create(challenge *models.Challenge) error
	GetByID(id uint) (*models.Challenge, error)
	Update(challenge *models.Challenge) error
	Archive(id uint) error
	List(status, category, search string) ([]models.Challenge, error)
}

// AnalyticsService interface for the dashboard overview.
type AnalyticsService interface {
	Overview(ctx context.Context) (*analytics.Overview, error)
}

// Handler handles admin API requests.
type Handler struct {
	reviewService    ReviewService
	challengeRepo    ChallengeRepository
	analyticsService AnalyticsService
	log              *logger.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(
	reviewService *review.Service,
	challengeRepo *repository.ChallengeRepository,
	analyticsService *analytics.Service,
	log *logger.Logger,
) *Handler {
	return &Handler{
		reviewService:    reviewService,
		challengeRepo:    challengeRepo,
		analyticsService: analyticsService,
		log:              log,
	}
}

// NewHandlerWithInterfaces creates a new admin handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	reviewService ReviewService,
	challengeRepo ChallengeRepository,
	analyticsService AnalyticsService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		reviewService:    reviewService,
		challengeRepo:    challengeRepo,
		analyticsService: analyticsService,
		log:              log,
	}
}

// ListSubmissions returns the review queue.
// GET /api/v1/admin/submissions?status=under_review.
func (h *Handler) ListSubmissions(c *gin.Context) {
	status := c.DefaultQuery("status", models.SubmissionUnderReview)
	if status != models.SubmissionUnderReview {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid status: %s (valid: %s)", status, models.SubmissionUnderReview))
		return
	}

	submissions, err := h.reviewService.PendingQueue(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list pending submissions")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve submissions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"total":       len(submissions),
	})
}

type reviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Comment  string `json:"comment"`
}

// ReviewSubmission resolves one queue item.
// POST /api/v1/admin/submissions/:id/review {decision, comment}.
func (h *Handler) ReviewSubmission(c *gin.Context) {
	submissionID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	reviewerID := middleware.UserID(c)
	if err := h.reviewService.Review(c.Request.Context(), submissionID, reviewerID, req.Decision, req.Comment); err != nil {
		h.domainError(c, err, "Failed to review submission")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Submission " + req.Decision + "d",
		"decision": req.Decision,
	})
}

type challengeRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Difficulty   string   `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Points       int      `json:"points" binding:"required,gt=0"`
	DurationDays int      `json:"duration_days" binding:"required,gt=0"`
	Requirements []string `json:"requirements"`
	Tips         []string `json:"tips"`
}

// CreateChallenge adds a catalog entry.
// POST /api/v1/admin/challenges.
func (h *Handler) CreateChallenge(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	challenge := &models.Challenge{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Points:       req.Points,
		DurationDays: req.DurationDays,
		Requirements: req.Requirements,
		Tips:         req.Tips,
		Status:       models.ChallengeStatusActive,
		CreatedBy:    middleware.UserID(c),
	}
	if err := h.challengeRepo.Create(challenge); err != nil {
		h.log.Error().Err(err).Msg("Failed to create challenge")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to create challenge")
		return
	}

	h.log.Info().
		Uint("challenge_id", challenge.ID).
		Str("title", challenge.Title).
		Uint("created_by", challenge.CreatedBy).
		Msg("Challenge created")

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Challenge created",
		"challenge": challenge,
	})
}

// UpdateChallenge edits a catalog entry.
// PUT /api/v1/admin/challenges/:id.
func (h *Handler) UpdateChallenge(c *gin.Context) {
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

	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	challenge.Title = req.Title
	challenge.Description = req.Description
	challenge.Category = req.Category
	challenge.Difficulty = req.Difficulty
	challenge.Points = req.Points
	challenge.DurationDays = req.DurationDays
	challenge.Requirements = req.Requirements
	challenge.Tips = req.Tips

	if err := h.challengeRepo.Update(challenge); err != nil {
		h.log.Error().Err(err).Uint("challenge_id", id).Msg("Failed to update challenge")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to update challenge")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Challenge updated",
		"challenge": challenge,
	})
}

// ArchiveChallenge soft-retires a catalog entry.
// DELETE /api/v1/admin/challenges/:id.
func (h *Handler) ArchiveChallenge(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.challengeRepo.GetByID(id); err != nil {
		h.errorResponse(c, http.StatusNotFound, "Challenge not found")
		return
	}

	if err := h.challengeRepo.Archive(id); err != nil {
		h.log.Error().Err(err).Uint("challenge_id", id).Msg("Failed to archive challenge")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to archive challenge")
		return
	}

	h.log.Info().Uint("challenge_id", id).Msg("Challenge archived")

	c.JSON(http.StatusOK, gin.H{"message": "Challenge archived"})
}

// AnalyticsOverview returns the platform-wide dashboard snapshot.
// GET /api/v1/admin/analytics/overview.
func (h *Handler) AnalyticsOverview(c *gin.Context) {
	overview, err := h.analyticsService.Overview(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build analytics overview")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve analytics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analytics":    overview,
		"generated_at": time.Now().UTC(),
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
