package handlers

import (
	"net/http"

	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
)

// CapabilityLister lists the capabilities an actor holds
type CapabilityLister interface {
	CapabilitiesOf(actor models.Actor) []lifecycle.Capability
}

// ActorResponse describes the authenticated caller
type ActorResponse struct {
	ID           string                 `json:"id"`
	Roles        []string               `json:"roles"`
	Capabilities []lifecycle.Capability `json:"capabilities"`
}

// ActorHandler reports who the caller is and what they may do
type ActorHandler struct {
	caps CapabilityLister
}

// NewActorHandler creates a new actor handler
func NewActorHandler(caps CapabilityLister) *ActorHandler {
	return &ActorHandler{caps: caps}
}

// Me returns the authenticated actor and its capabilities
// @Summary Current actor
// @Tags Actor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ActorResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /me [get]
func (h *ActorHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, ActorResponse{
		ID:           actor.ID,
		Roles:        actor.Roles,
		Capabilities: h.caps.CapabilitiesOf(actor),
	})
}
