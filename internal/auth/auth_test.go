package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"qa-gate/internal/config"
	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "qa-gate",
		Expiration: time.Hour,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewService(testConfig())
	actor := models.Actor{ID: "user-42", Roles: []string{"qa_reviewer"}}

	token, err := svc.GenerateToken(actor)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	got, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if got.ID != actor.ID {
		t.Errorf("Expected actor %s, got %s", actor.ID, got.ID)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "qa_reviewer" {
		t.Errorf("Unexpected roles %v", got.Roles)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewService(testConfig()).GenerateToken(models.Actor{ID: "user-1"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	other := testConfig()
	other.Secret = "another-secret"
	if _, err := NewService(other).ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected invalid token, got %v", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewService(testConfig())
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateToken(models.Actor{ID: "user-1"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := NewService(testConfig()).ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected expired token, got %v", err)
	}
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "qa-gate",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := NewService(testConfig()).ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected invalid token for HS512, got %v", err)
	}
}

func TestValidateTokenRequiresSubject(t *testing.T) {
	token, err := NewService(testConfig()).GenerateToken(models.Actor{})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := NewService(testConfig()).ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected invalid token without subject, got %v", err)
	}
}

func TestRoleCapabilities(t *testing.T) {
	caps := NewRoleCapabilities(map[string][]string{
		"qa_manager":  {"qa.approve", "override.review", "override.direct"},
		"qa_reviewer": {"qa.approve", "override.review"},
	})

	reviewer := models.Actor{ID: "r", Roles: []string{"editor", "qa_reviewer"}}
	editor := models.Actor{ID: "e", Roles: []string{"editor"}}

	if !caps.Can(reviewer, lifecycle.CapabilityQAApprove) {
		t.Error("Reviewer should be able to approve")
	}
	if caps.Can(reviewer, lifecycle.CapabilityOverrideDirect) {
		t.Error("Reviewer should not apply direct overrides")
	}
	if caps.Can(editor, lifecycle.CapabilityQAApprove) {
		t.Error("Editor should not be able to approve")
	}

	held := caps.CapabilitiesOf(reviewer)
	if len(held) != 2 || held[0] != lifecycle.CapabilityQAApprove || held[1] != lifecycle.CapabilityOverrideReview {
		t.Errorf("Unexpected capabilities %v", held)
	}
	if got := caps.CapabilitiesOf(editor); len(got) != 0 {
		t.Errorf("Expected no capabilities, got %v", got)
	}
}
