package handlers

import (
	"net/http"

	"qa-gate/internal/lifecycle"
	"qa-gate/internal/middleware"
)

// Router groups the handlers and the middleware that guards them
type Router struct {
	Health    *HealthHandler
	Actor     *ActorHandler
	Gate      *GateHandler
	Entities  *EntityHandler
	Overrides *OverrideHandler
	Documents *DocumentHandler
	Auth      *middleware.AuthMiddleware
	Caps      *middleware.CapabilityMiddleware
}

// Register adds every route to mux
func (rt *Router) Register(mux *http.ServeMux) {
	protected := func(h http.HandlerFunc) http.Handler {
		return rt.Auth.Authenticate(h)
	}
	requires := func(c lifecycle.Capability, h http.HandlerFunc) http.Handler {
		return rt.Auth.Authenticate(rt.Caps.Require(c)(h))
	}

	// Health check endpoint
	mux.HandleFunc("GET /health", rt.Health.Health)

	mux.Handle("GET "+APIBasePath+"/me", protected(rt.Actor.Me))

	// Checks and gate decisions
	mux.Handle("GET "+APIBasePath+"/checks/definitions", protected(rt.Gate.ListDefinitions))
	mux.Handle("POST "+APIBasePath+"/checks/evaluate", protected(rt.Gate.Evaluate))
	mux.Handle("POST "+APIBasePath+"/gate/decide", protected(rt.Gate.Decide))

	// Approval lifecycle
	mux.Handle("POST "+APIBasePath+"/entities/{table}/{id}/transitions", protected(rt.Entities.Transition))
	mux.Handle("POST "+APIBasePath+"/entities/{table}/{id}/events", protected(rt.Entities.RecordEvent))
	mux.Handle("GET "+APIBasePath+"/entities/{table}/{id}/history", protected(rt.Entities.History))
	mux.Handle("GET "+APIBasePath+"/entities/{table}/{id}/status", protected(rt.Entities.Status))

	// Overrides
	mux.Handle("POST "+APIBasePath+"/overrides", protected(rt.Overrides.Create))
	mux.Handle("GET "+APIBasePath+"/overrides", protected(rt.Overrides.List))
	mux.Handle("GET "+APIBasePath+"/overrides/active", protected(rt.Overrides.Active))
	mux.Handle("GET "+APIBasePath+"/overrides/duration", protected(rt.Overrides.Duration))
	mux.Handle("POST "+APIBasePath+"/overrides/direct",
		requires(lifecycle.CapabilityOverrideDirect, rt.Overrides.ApplyDirect))
	mux.Handle("POST "+APIBasePath+"/overrides/{id}/approve",
		requires(lifecycle.CapabilityOverrideReview, rt.Overrides.Approve))
	mux.Handle("POST "+APIBasePath+"/overrides/{id}/reject",
		requires(lifecycle.CapabilityOverrideReview, rt.Overrides.Reject))

	// Compliance documents
	mux.Handle("GET "+APIBasePath+"/documents/classify", protected(rt.Documents.Classify))
	mux.Handle("POST "+APIBasePath+"/documents", protected(rt.Documents.Create))
	mux.Handle("GET "+APIBasePath+"/documents", protected(rt.Documents.List))
	mux.Handle("POST "+APIBasePath+"/documents/{id}/renew", protected(rt.Documents.Renew))
}
