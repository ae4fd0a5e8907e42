package portal

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/auth"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// AccountRepository interface for account creation and lookup.
type AccountRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	userRepo AccountRepository
	manager  *auth.Manager
	log      *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(userRepo *repository.UserRepository, manager *auth.Manager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, manager: manager, log: log}
}

// NewAuthHandlerWithInterfaces creates a new auth handler with interface dependencies (useful for testing).
func NewAuthHandlerWithInterfaces(userRepo AccountRepository, manager *auth.Manager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, manager: manager, log: log}
}

type registerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a student account and returns a token.
// POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.userRepo.GetByEmail(email); err == nil {
		h.errorResponse(c, apperr.HTTPStatus(apperr.ErrEmailTaken), apperr.ErrEmailTaken.Error())
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.log.Error().Err(err).Msg("Failed to check existing account")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	hash, err := h.manager.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to hash password")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	user := &models.User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Department:   req.Department,
	}
	if err := h.userRepo.Create(user); err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	token, err := h.manager.IssueToken(user.ID, user.Role)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to issue token")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	h.log.Info().Uint("user_id", user.ID).Str("email", email).Msg("Account registered")

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// Login verifies credentials and returns a token.
// POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepo.GetByEmail(email)
	if err != nil {
		h.errorResponse(c, apperr.HTTPStatus(apperr.ErrInvalidCredentials), apperr.ErrInvalidCredentials.Error())
		return
	}
	if !h.manager.CheckPassword(user.PasswordHash, req.Password) {
		h.errorResponse(c, apperr.HTTPStatus(apperr.ErrInvalidCredentials), apperr.ErrInvalidCredentials.Error())
		return
	}

	token, err := h.manager.IssueToken(user.ID, user.Role)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to issue token")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
