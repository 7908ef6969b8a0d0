package auth

import (
	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
)

// RoleCapabilities grants capabilities to actors by the roles in their token
type RoleCapabilities struct {
	byRole map[string]map[lifecycle.Capability]bool
}

// NewRoleCapabilities builds the checker from a role to capability names mapping
func NewRoleCapabilities(mapping map[string][]string) *RoleCapabilities {
	byRole := make(map[string]map[lifecycle.Capability]bool, len(mapping))
	for role, caps := range mapping {
		set := make(map[lifecycle.Capability]bool, len(caps))
		for _, c := range caps {
			set[lifecycle.Capability(c)] = true
		}
		byRole[role] = set
	}
	return &RoleCapabilities{byRole: byRole}
}

// Can reports whether any of the actor's roles grants the capability
func (r *RoleCapabilities) Can(actor models.Actor, capability lifecycle.Capability) bool {
	for _, role := range actor.Roles {
		if r.byRole[role][capability] {
			return true
		}
	}
	return false
}

// CapabilitiesOf lists the capabilities the actor holds, in the order of lifecycle.Capabilities
func (r *RoleCapabilities) CapabilitiesOf(actor models.Actor) []lifecycle.Capability {
	held := []lifecycle.Capability{}
	for _, c := range lifecycle.Capabilities {
		if r.Can(actor, c) {
			held = append(held, c)
		}
	}
	return held
}
