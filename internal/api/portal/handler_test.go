//nolint:noctx // Test file uses http.NewRequest for simplicity
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ecocampus/eco-challenge/internal/api/middleware"
	"github.com/ecocampus/eco-challenge/internal/apperr"
	"github.com/ecocampus/eco-challenge/internal/models"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/internal/service/leaderboard"
	"github.com/ecocampus/eco-challenge/internal/service/ledger"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

const testUserID = uint(10)

// Mock Ledger Service
type mockLedgerService struct {
	participations map[string]*models.Participation // "userID:challengeID"
	progress       []ledger.ChallengeProgress
	stats          *ledger.UserStats
	joinErr        error
	submitErr      error
}

func newMockLedgerService() *mockLedgerService {
	return &mockLedgerService{participations: make(map[string]*models.Participation)}
}

func ledgerKey(userID, challengeID uint) string {
	return fmt.Sprintf("%d:%d", userID, challengeID)
}

func (m *mockLedgerService) Join(ctx context.Context, userID, challengeID uint) (*models.Participation, error) {
	if m.joinErr != nil {
		return nil, m.joinErr
	}
	p := &models.Participation{ID: 1, UserID: userID, ChallengeID: challengeID, JoinedAt: time.Now(), Status: models.ParticipationInProgress}
	m.participations[ledgerKey(userID, challengeID)] = p
	return p, nil
}

func (m *mockLedgerService) Get(ctx context.Context, userID, challengeID uint) (*models.Participation, error) {
	p, exists := m.participations[ledgerKey(userID, challengeID)]
	if !exists {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func (m *mockLedgerService) ListByUser(ctx context.Context, userID uint) ([]ledger.ChallengeProgress, error) {
	return m.progress, nil
}

func (m *mockLedgerService) Stats(ctx context.Context, userID uint) (*ledger.UserStats, error) {
	if m.stats == nil {
		return &ledger.UserStats{}, nil
	}
	return m.stats, nil
}

func (m *mockLedgerService) SubmitProof(ctx context.Context, userID, challengeID uint, files []ledger.ProofFileInput, description string) (*models.Submission, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &models.Submission{ID: 1, UserID: userID, ChallengeID: challengeID, Status: models.SubmissionUnderReview, Description: description}, nil
}

// Mock Leaderboard Service
type mockLeaderboardService struct {
	global      []leaderboard.Entry
	departments map[string][]leaderboard.Entry
	rankings    []repository.DepartmentRanking
}

func newMockLeaderboardService() *mockLeaderboardService {
	return &mockLeaderboardService{departments: make(map[string][]leaderboard.Entry)}
}

func (m *mockLeaderboardService) GetGlobal(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	entries := m.global
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *mockLeaderboardService) GetDepartment(ctx context.Context, department string, limit int) ([]leaderboard.Entry, error) {
	entries := m.departments[department]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *mockLeaderboardService) GetUserRank(ctx context.Context, userID uint) (int, error) {
	for _, e := range m.global {
		if e.UserID == userID {
			return e.Rank, nil
		}
	}
	return 0, fmt.Errorf("user not found in leaderboard")
}

func (m *mockLeaderboardService) GetDepartmentRankings(ctx context.Context) ([]repository.DepartmentRanking, error) {
	return m.rankings, nil
}

// Mock Rewards Service
type mockRewardsService struct {
	rewards  []models.Reward
	claims   []models.RewardClaim
	claimErr error
}

func (m *mockRewardsService) List(ctx context.Context) ([]models.Reward, error) {
	return m.rewards, nil
}

func (m *mockRewardsService) Claim(ctx context.Context, rewardID, userID uint) error {
	return m.claimErr
}

func (m *mockRewardsService) ClaimsByUser(ctx context.Context, userID uint) ([]models.RewardClaim, error) {
	return m.claims, nil
}

// Mock Challenge Repository
type mockChallengeRepo struct {
	challenges map[uint]*models.Challenge
}

func newMockChallengeRepo() *mockChallengeRepo {
	return &mockChallengeRepo{challenges: make(map[uint]*models.Challenge)}
}

func (m *mockChallengeRepo) GetByID(id uint) (*models.Challenge, error) {
	c, exists := m.challenges[id]
	if !exists {
		return nil, fmt.Errorf("challenge not found")
	}
	return c, nil
}

func (m *mockChallengeRepo) List(status, category, search string) ([]models.Challenge, error) {
	var result []models.Challenge
	for _, c := range m.challenges {
		if status != "" && c.Status != status {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

// Mock User Repository
type mockUserRepo struct {
	users map[uint]*models.User
}

func (m *mockUserRepo) GetByID(id uint) (*models.User, error) {
	u, exists := m.users[id]
	if !exists {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

// Mock Participation Repository
type mockParticipationRepo struct {
	completed map[uint]int64
}

func (m *mockParticipationRepo) CountByUserAndStatus(userID uint, status string) (int64, error) {
	if status != models.ParticipationCompleted {
		return 0, nil
	}
	return m.completed[userID], nil
}

// Test Setup
func setupTestHandler() (*Handler, *mockLedgerService, *mockLeaderboardService, *mockRewardsService, *mockChallengeRepo, *mockUserRepo, *mockParticipationRepo) {
	ledgerService := newMockLedgerService()
	leaderboardService := newMockLeaderboardService()
	rewardsService := &mockRewardsService{}
	challengeRepo := newMockChallengeRepo()
	userRepo := &mockUserRepo{users: make(map[uint]*models.User)}
	participationRepo := &mockParticipationRepo{completed: make(map[uint]int64)}
	log := logger.New("debug", "console", "stdout")

	handler := NewHandlerWithInterfaces(ledgerService, leaderboardService, rewardsService, challengeRepo, userRepo, participationRepo, log)
	return handler, ledgerService, leaderboardService, rewardsService, challengeRepo, userRepo, participationRepo
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Stand-in for the auth middleware
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, testUserID)
		c.Set(middleware.ContextRoleKey, models.RoleStudent)
		c.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/challenges", handler.ListChallenges)
	api.GET("/challenges/:id", handler.GetChallenge)
	api.POST("/challenges/:id/join", handler.JoinChallenge)
	api.POST("/challenges/:id/proof", handler.SubmitProof)
	api.GET("/me/challenges", handler.MyChallenges)
	api.GET("/me/stats", handler.MyStats)
	api.GET("/leaderboard", handler.GetLeaderboard)
	api.GET("/departments/rankings", handler.GetDepartmentRankings)
	api.GET("/rewards", handler.ListRewards)
	api.POST("/rewards/:id/claim", handler.ClaimReward)
	api.GET("/users/:id", handler.GetUser)

	return router
}

// Tests

func TestListChallenges(t *testing.T) {
	handler, _, _, _, challengeRepo, _, _ := setupTestHandler()
	router := setupRouter(handler)

	challengeRepo.challenges[1] = &models.Challenge{ID: 1, Title: "Bike to Campus Week", Status: models.ChallengeStatusActive}
	challengeRepo.challenges[2] = &models.Challenge{ID: 2, Title: "Old Challenge", Status: models.ChallengeStatusArchived}

	req, _ := http.NewRequest("GET", "/api/v1/challenges", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), response["total"])
}

func TestJoinChallenge_Success(t *testing.T) {
	handler, _, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("POST", "/api/v1/challenges/1/join", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Challenge joined", response["message"])
}

func TestJoinChallenge_AlreadyJoined(t *testing.T) {
	handler, ledgerService, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)
	ledgerService.joinErr = apperr.ErrAlreadyJoined

	req, _ := http.NewRequest("POST", "/api/v1/challenges/1/join", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "already joined")
}

func TestJoinChallenge_NotFound(t *testing.T) {
	handler, ledgerService, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)
	ledgerService.joinErr = apperr.ErrNotFound

	req, _ := http.NewRequest("POST", "/api/v1/challenges/42/join", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJoinChallenge_InvalidID(t *testing.T) {
	handler, _, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("POST", "/api/v1/challenges/abc/join", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitProof_Success(t *testing.T) {
	handler, _, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("POST", "/api/v1/challenges/1/proof?description=", http.NoBody)
	req.PostForm = map[string][]string{"description": {"cycled 40km"}}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Proof submitted for review", response["message"])
}

func TestSubmitProof_Empty(t *testing.T) {
	handler, ledgerService, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)
	ledgerService.submitErr = apperr.ErrEmptySubmission

	req, _ := http.NewRequest("POST", "/api/v1/challenges/1/proof", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSubmitProof_AlreadyUnderReview(t *testing.T) {
	handler, ledgerService, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)
	ledgerService.submitErr = apperr.ErrAlreadyUnderReview

	req, _ := http.NewRequest("POST", "/api/v1/challenges/1/proof", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmitProof_NotJoined(t *testing.T) {
	handler, ledgerService, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)
	ledgerService.submitErr = apperr.ErrNotJoined

	req, _ := http.NewRequest("POST", "/api/v1/challenges/1/proof", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetLeaderboard_Global(t *testing.T) {
	handler, _, leaderboardService, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	leaderboardService.global = []leaderboard.Entry{
		{Rank: 1, UserID: 2, Name: "Bob", Department: "Physics", EcoPoints: 350},
		{Rank: 2, UserID: 1, Name: "Alice", Department: "Biology", EcoPoints: 200},
	}

	req, _ := http.NewRequest("GET", "/api/v1/leaderboard?scope=global&limit=10", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "global", response["scope"])
	assert.Equal(t, float64(2), response["total_entries"])
}

func TestGetLeaderboard_Department(t *testing.T) {
	handler, _, leaderboardService, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	leaderboardService.departments["Biology"] = []leaderboard.Entry{
		{Rank: 1, UserID: 1, Name: "Alice", Department: "Biology", EcoPoints: 200},
	}

	req, _ := http.NewRequest("GET", "/api/v1/leaderboard?scope=department:Biology", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), response["total_entries"])
}

func TestGetLeaderboard_InvalidScope(t *testing.T) {
	handler, _, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/leaderboard?scope=team", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "invalid scope")
}

func TestGetLeaderboard_EmptyDepartment(t *testing.T) {
	handler, _, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/leaderboard?scope=department:", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLeaderboard_InvalidLimit(t *testing.T) {
	handler, _, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/leaderboard?limit=5000", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMyStats(t *testing.T) {
	handler, ledgerService, leaderboardService, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	ledgerService.stats = &ledger.UserStats{Joined: 3, Completed: 1, TotalPointsEarned: 150}
	leaderboardService.global = []leaderboard.Entry{{Rank: 5, UserID: testUserID}}

	req, _ := http.NewRequest("GET", "/api/v1/me/stats", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(5), response["rank"])

	stats := response["stats"].(map[string]interface{})
	assert.Equal(t, float64(150), stats["total_points_earned"])
}

func TestClaimReward_InsufficientPoints(t *testing.T) {
	handler, _, _, rewardsService, _, _, _ := setupTestHandler()
	router := setupRouter(handler)
	rewardsService.claimErr = apperr.ErrInsufficientPoints

	req, _ := http.NewRequest("POST", "/api/v1/rewards/1/claim", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestClaimReward_OutOfStock(t *testing.T) {
	handler, _, _, rewardsService, _, _, _ := setupTestHandler()
	router := setupRouter(handler)
	rewardsService.claimErr = apperr.ErrOutOfStock

	req, _ := http.NewRequest("POST", "/api/v1/rewards/1/claim", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetDepartmentRankings(t *testing.T) {
	handler, _, leaderboardService, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	leaderboardService.rankings = []repository.DepartmentRanking{
		{Department: "Biology", TotalPoints: 400, StudentCount: 2, AvgPoints: 200},
	}

	req, _ := http.NewRequest("GET", "/api/v1/departments/rankings", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	departments := response["departments"].([]interface{})
	assert.Len(t, departments, 1)
}

func TestGetUser(t *testing.T) {
	handler, _, _, _, _, userRepo, participationRepo := setupTestHandler()
	router := setupRouter(handler)

	userRepo.users[7] = &models.User{ID: 7, Name: "Alice Chen", Department: "Biology", EcoPoints: 150}
	participationRepo.completed[7] = 3

	req, _ := http.NewRequest("GET", "/api/v1/users/7", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(3), response["completed_challenges"])

	user := response["user"].(map[string]interface{})
	assert.Equal(t, "Alice Chen", user["name"])
}

func TestGetUser_NotFound(t *testing.T) {
	handler, _, _, _, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/users/99", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
