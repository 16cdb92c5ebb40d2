package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/jkemta/soutenance-api/model"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "soutenance-api-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()

	token, jti, err := m.GenerateAccessToken(7, "candidat@univ.cm", model.RoleCandidat, 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if jti == "" {
		t.Fatal("empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
	if claims.Email != "candidat@univ.cm" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != model.RoleCandidat {
		t.Errorf("Role = %q, want CANDIDAT", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want %q", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateRefreshToken(7, "admin@univ.cm", model.RoleAdmin, 0)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testManager()
	token, _, err := m.GenerateAccessToken(1, "x@y.z", model.RoleAdmin, 0)
	if err != nil {
		t.Fatal(err)
	}

	other := NewJWTManager(JWTConfig{Secret: "another-secret", Expiry: time.Hour})
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Secret: "test-secret",
		Expiry: -time.Minute, // already expired
		Issuer: "soutenance-api-test",
	})

	token, _, err := m.GenerateAccessToken(1, "x@y.z", model.RoleAdmin, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken on expired token = %v, want ErrExpiredToken", err)
	}
}
