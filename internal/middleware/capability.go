package middleware

import (
	"log/slog"
	"net/http"

	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
)

// CapabilityChecker decides whether an actor holds a capability
type CapabilityChecker interface {
	Can(actor models.Actor, capability lifecycle.Capability) bool
}

// CapabilityMiddleware gates routes by capability
type CapabilityMiddleware struct {
	checker CapabilityChecker
}

// NewCapabilityMiddleware creates a new capability middleware
func NewCapabilityMiddleware(checker CapabilityChecker) *CapabilityMiddleware {
	return &CapabilityMiddleware{checker: checker}
}

// Require rejects requests whose actor lacks the capability
func (m *CapabilityMiddleware) Require(capability lifecycle.Capability) func(http.Handler) http.Handler {
	return m.RequireAny(capability)
}

// RequireAny rejects requests whose actor holds none of the capabilities
func (m *CapabilityMiddleware) RequireAny(capabilities ...lifecycle.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			for _, c := range capabilities {
				if m.checker.Can(actor, c) {
					next.ServeHTTP(w, r)
					return
				}
			}

			slog.WarnContext(r.Context(), "Capability check failed",
				"actor", actor.ID,
				"capabilities", capabilities,
				"path", r.URL.Path,
			)
			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
