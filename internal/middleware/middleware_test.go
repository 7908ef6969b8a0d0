package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qa-gate/internal/auth"
	"qa-gate/internal/config"
	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
)

type stubValidator struct {
	actor models.Actor
	err   error
}

func (s stubValidator) ValidateToken(string) (models.Actor, error) {
	return s.actor, s.err
}

func actorEcho(t *testing.T, want string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r)
		if !ok || actor.ID != want {
			t.Errorf("expected actor %s in context, got %+v (ok=%v)", want, actor, ok)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		validator stubValidator
		want      int
	}{
		{"missing header", "", stubValidator{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{}, http.StatusUnauthorized},
		{"empty token", "Bearer ", stubValidator{}, http.StatusUnauthorized},
		{"expired", "Bearer t", stubValidator{err: auth.ErrExpiredToken}, http.StatusUnauthorized},
		{"invalid", "Bearer t", stubValidator{err: errors.New("bad signature")}, http.StatusUnauthorized},
		{"valid", "Bearer t", stubValidator{actor: models.Actor{ID: "user-1"}}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthMiddleware(tt.validator).Authenticate(actorEcho(t, "user-1"))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/overrides", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

type roleChecker map[string]lifecycle.Capability

func (c roleChecker) Can(actor models.Actor, capability lifecycle.Capability) bool {
	for _, role := range actor.Roles {
		if c[role] == capability {
			return true
		}
	}
	return false
}

func TestCapabilityRequire(t *testing.T) {
	mw := NewCapabilityMiddleware(roleChecker{"qa_manager": lifecycle.CapabilityOverrideDirect})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := mw.Require(lifecycle.CapabilityOverrideDirect)(ok)

	tests := []struct {
		name  string
		actor *models.Actor
		want  int
	}{
		{"unauthenticated", nil, http.StatusUnauthorized},
		{"missing capability", &models.Actor{ID: "u", Roles: []string{"editor"}}, http.StatusForbidden},
		{"granted", &models.Actor{ID: "m", Roles: []string{"qa_manager"}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/overrides/direct", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCapabilityRequireAny(t *testing.T) {
	mw := NewCapabilityMiddleware(roleChecker{
		"qa_reviewer": lifecycle.CapabilityOverrideReview,
		"qa_manager":  lifecycle.CapabilityOverrideDirect,
	})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := mw.RequireAny(lifecycle.CapabilityOverrideReview, lifecycle.CapabilityOverrideDirect)(ok)

	for role, want := range map[string]int{
		"qa_reviewer": http.StatusOK,
		"qa_manager":  http.StatusOK,
		"editor":      http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/overrides", nil)
		req = req.WithContext(WithActor(req.Context(), models.Actor{ID: role, Roles: []string{role}}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("%s: expected status %d, got %d", role, want, rec.Code)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(&config.RateLimitConfig{Enabled: true, Requests: 2, Duration: time.Minute})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func() int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := call(); got != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", got)
	}
	if got := call(); got != http.StatusOK {
		t.Fatalf("second request: expected 200, got %d", got)
	}
	if got := call(); got != http.StatusTooManyRequests {
		t.Fatalf("third request: expected 429, got %d", got)
	}

	now = now.Add(time.Minute)
	if got := call(); got != http.StatusOK {
		t.Errorf("after the window: expected 200, got %d", got)
	}
}

func TestMiddlewareErrorBody(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	limiter := NewRateLimiter(&config.RateLimitConfig{Enabled: true, Requests: 1, Duration: time.Minute})
	limited := limiter.Limit(ok)
	limited.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	tests := []struct {
		name    string
		handler http.Handler
		actor   *models.Actor
		status  int
		kind    string
		message string
	}{
		{"missing token", NewAuthMiddleware(stubValidator{}).Authenticate(ok), nil,
			http.StatusUnauthorized, "unauthorized", "Missing authorization header"},
		{"missing capability", NewCapabilityMiddleware(roleChecker{}).Require(lifecycle.CapabilityQAApprove)(ok),
			&models.Actor{ID: "u", Roles: []string{"editor"}}, http.StatusForbidden, "authorization_error", "Insufficient permissions"},
		{"rate limited", limited, nil,
			http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.kind || body.Message != tt.message {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := clientIP(req); got != "192.0.2.1" {
		t.Errorf("expected peer host, got %s", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.5" {
		t.Errorf("expected first forwarded address, got %s", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	mw := NewCORSMiddleware(&config.CORSConfig{
		AllowedOrigins: []string{"https://qa.example"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/overrides", nil)
	req.Header.Set("Origin", "https://qa.example")
	rec := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://qa.example" {
		t.Errorf("unexpected allow origin %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("unexpected allow methods %q", got)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	mw := NewCORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"https://qa.example"}})
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overrides", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(rec, req)

	if !called {
		t.Error("expected the request to pass through")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers, got %q", got)
	}
}

func TestLoggingMiddlewareKeepsStatus(t *testing.T) {
	handler := LoggingMiddleware(SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/overrides", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestLoggingMiddlewareRequestID(t *testing.T) {
	var seen string
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected a generated request id, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	const given = "3f1c2b9e-8a41-4d55-9e0f-6d1e2a7c4b10"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, given)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != given {
		t.Errorf("expected caller id %s to be kept, got %s", given, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid\nforged")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "not-a-uuid\nforged" {
		t.Error("expected malformed ids to be replaced")
	}
}

func TestLoggingMiddlewareBoundsDebugBodies(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	large := strings.Repeat("x", 3*maxLoggedBody)
	var received int
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		received = len(b)
		w.Write(b)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(large)))

	if received != len(large) {
		t.Fatalf("handler saw %d bytes, want %d", received, len(large))
	}
	if rec.Body.Len() != len(large) {
		t.Fatalf("client got %d bytes, want %d", rec.Body.Len(), len(large))
	}

	var entry struct {
		RequestBody  string `json:"request_body"`
		ResponseBody string `json:"response_body"`
	}
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	for name, logged := range map[string]string{"request": entry.RequestBody, "response": entry.ResponseBody} {
		if !strings.HasSuffix(logged, "...(truncated)") || len(logged) > maxLoggedBody+len("...(truncated)") {
			t.Errorf("%s body logged with %d bytes", name, len(logged))
		}
	}
}
