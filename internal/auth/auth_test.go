package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecocampus/eco-challenge/internal/config"
	"github.com/ecocampus/eco-challenge/internal/models"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(&config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   60,
		BcryptCost: 4, // minimum cost keeps tests fast
	})
}

func TestIssueAndParseToken(t *testing.T) {
	m := testManager(t)

	token, err := m.IssueToken(42, models.RoleStudent)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Expected user ID 42, got %d", claims.UserID)
	}
	if claims.Role != models.RoleStudent {
		t.Errorf("Expected role %q, got %q", models.RoleStudent, claims.Role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := testManager(t)
	other := NewManager(&config.AuthConfig{JWTSecret: "other-secret", TokenTTL: 60, BcryptCost: 4})

	token, err := other.IssueToken(42, models.RoleStudent)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	if _, err := m.ParseToken(token); err == nil {
		t.Error("Expected error for token signed with a different secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := testManager(t)

	claims := Claims{
		UserID: 42,
		Role:   models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign expired token: %v", err)
	}

	if _, err := m.ParseToken(token); err == nil {
		t.Error("Expected error for expired token")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := testManager(t)

	if _, err := m.ParseToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	m := testManager(t)

	hash, err := m.HashPassword("hunter2secret")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	if hash == "hunter2secret" {
		t.Fatal("Expected hash to differ from plaintext")
	}

	if !m.CheckPassword(hash, "hunter2secret") {
		t.Error("Expected correct password to verify")
	}
	if m.CheckPassword(hash, "wrong") {
		t.Error("Expected wrong password to fail")
	}
}
