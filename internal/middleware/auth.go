package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"qa-gate/internal/apperror"
	"qa-gate/internal/auth"
	"qa-gate/internal/models"
)

type contextKey string

const actorKey contextKey = "actor"

// TokenValidator turns a bearer token into the actor it was issued to
type TokenValidator interface {
	ValidateToken(token string) (models.Actor, error)
}

var _ TokenValidator = (*auth.Service)(nil)

// AuthMiddleware validates bearer tokens
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate validates the bearer token and adds the actor to the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		actor, err := m.validator.ValidateToken(strings.TrimSpace(token))
		if errors.Is(err, auth.ErrExpiredToken) {
			respondWithError(w, http.StatusUnauthorized, "Token has expired")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor returns a context carrying the actor
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor retrieves the authenticated actor from the request context
func GetActor(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(models.Actor)
	return actor, ok
}

// ErrorResponse is the body of every failed request, whether it is rejected
// here or by a handler
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// errorKind names the error for the statuses the middleware chain produces
func errorKind(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return string(apperror.KindAuthorization)
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return string(apperror.KindInternal)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{Error: errorKind(code), Message: message})
}
