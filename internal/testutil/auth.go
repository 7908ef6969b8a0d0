package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qa-gate/internal/auth"
	"qa-gate/internal/config"
	"qa-gate/internal/models"
)

// TestJWTSecret signs every token minted in tests
const TestJWTSecret = "test-secret-key-for-testing-only"

// AuthHelper mints bearer tokens for test actors
type AuthHelper struct {
	Service *auth.Service
}

// NewAuthHelper creates a new auth helper
func NewAuthHelper() *AuthHelper {
	return &AuthHelper{Service: auth.NewService(&config.JWTConfig{
		Secret:     TestJWTSecret,
		Issuer:     "qa-gate-test",
		Expiration: time.Hour,
	})}
}

// AddAuthHeader adds an authorization header for the actor to the request
func (h *AuthHelper) AddAuthHeader(t *testing.T, req *http.Request, actor models.Actor) {
	t.Helper()

	token, err := h.Service.GenerateToken(actor)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// TestResponse holds response data for assertions
type TestResponse struct {
	*httptest.ResponseRecorder
}

// NewTestResponse creates a new test response recorder
func NewTestResponse() *TestResponse {
	return &TestResponse{ResponseRecorder: httptest.NewRecorder()}
}

// AssertStatus asserts the HTTP status code
func (r *TestResponse) AssertStatus(t *testing.T, expected int) {
	t.Helper()

	if r.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, r.Code, r.Body.String())
	}
}
