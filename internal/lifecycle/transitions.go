// Package lifecycle holds the approval state machine for materials, suppliers and products.
package lifecycle

import (
	"strings"

	"qa-gate/internal/apperror"
	"qa-gate/internal/models"
)

// Capability is a permission the caller's authorization backend decides on
type Capability string

const (
	// CapabilityQAApprove allows approving or rejecting records awaiting QA
	CapabilityQAApprove Capability = "qa.approve"
	// CapabilityOverrideReview allows deciding pending override requests
	CapabilityOverrideReview Capability = "override.review"
	// CapabilityOverrideDirect allows applying an override without a second party
	CapabilityOverrideDirect Capability = "override.direct"
)

// Capabilities lists every capability the gate checks
var Capabilities = []Capability{CapabilityQAApprove, CapabilityOverrideReview, CapabilityOverrideDirect}

// Rule describes one legal transition
type Rule struct {
	Action        models.ApprovalAction
	From          []models.ApprovalStatus // nil means any status except To
	To            models.ApprovalStatus
	RequiresNotes bool
	Requires      Capability // empty when no elevated capability is needed
}

var rules = map[models.ApprovalAction]Rule{
	models.ActionSubmitted: {
		Action: models.ActionSubmitted,
		From:   []models.ApprovalStatus{models.StatusDraft},
		To:     models.StatusPendingQA,
	},
	models.ActionApproved: {
		Action:   models.ActionApproved,
		From:     []models.ApprovalStatus{models.StatusPendingQA},
		To:       models.StatusApproved,
		Requires: CapabilityQAApprove,
	},
	models.ActionRejected: {
		Action:        models.ActionRejected,
		From:          []models.ApprovalStatus{models.StatusPendingQA},
		To:            models.StatusRejected,
		RequiresNotes: true,
		Requires:      CapabilityQAApprove,
	},
	models.ActionRestored: {
		Action: models.ActionRestored,
		From:   []models.ApprovalStatus{models.StatusRejected},
		To:     models.StatusDraft,
	},
	models.ActionArchived: {
		Action: models.ActionArchived,
		To:     models.StatusArchived,
	},
}

// RuleFor returns the rule of a status-changing action
func RuleFor(action models.ApprovalAction) (Rule, bool) {
	r, ok := rules[action]
	return r, ok
}

// Allows reports whether the rule applies from the given status
func (r Rule) Allows(from models.ApprovalStatus) bool {
	if r.From == nil {
		return from.Valid() && from != r.To
	}
	for _, s := range r.From {
		if s == from {
			return true
		}
	}
	return false
}

// Resolve checks that action is legal from status and returns its rule.
// Created and Updated are audit events, not transitions, and never resolve.
func Resolve(from models.ApprovalStatus, action models.ApprovalAction) (Rule, error) {
	rule, ok := rules[action]
	if !ok || !rule.Allows(from) {
		return Rule{}, apperror.InvalidTransition(string(from), string(action))
	}
	return rule, nil
}

// CheckNotes validates the notes a rule demands
func (r Rule) CheckNotes(notes string) error {
	if r.RequiresNotes && strings.TrimSpace(notes) == "" {
		return apperror.Validation("notes", "notes are required when the action is "+string(r.Action))
	}
	return nil
}

// AvailableActions lists the actions legal from a status, in a stable order
func AvailableActions(from models.ApprovalStatus) []models.ApprovalAction {
	order := []models.ApprovalAction{
		models.ActionSubmitted, models.ActionApproved, models.ActionRejected,
		models.ActionRestored, models.ActionArchived,
	}
	var out []models.ApprovalAction
	for _, a := range order {
		if rules[a].Allows(from) {
			out = append(out, a)
		}
	}
	return out
}
