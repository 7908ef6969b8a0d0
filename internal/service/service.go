package service

import (
	"context"
	"time"

	"qa-gate/internal/apperror"
	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
	"qa-gate/internal/repository"
)

// CapabilityChecker decides whether an actor holds a capability.
// The gate never interprets role names itself.
type CapabilityChecker interface {
	Can(actor models.Actor, capability lifecycle.Capability) bool
}

// ApprovalStore persists approval status changes and log entries
type ApprovalStore interface {
	Transition(ctx context.Context, entity models.ApprovableEntity, entry *models.ApprovalLogEntry) error
	AppendEvent(ctx context.Context, entity models.ApprovableEntity, entry *models.ApprovalLogEntry) error
	GetStatus(ctx context.Context, table models.EntityTable, id string) (models.ApprovalStatus, error)
	ListByEntity(ctx context.Context, table models.EntityTable, id string) ([]models.ApprovalLogEntry, error)
}

// OverrideStore persists override requests
type OverrideStore interface {
	CreateExclusive(ctx context.Context, req *models.OverrideRequest, now time.Time) error
	GetByID(ctx context.Context, id string) (*models.OverrideRequest, error)
	Decide(ctx context.Context, id string, d repository.Decision) (*models.OverrideRequest, error)
	FindActiveGrant(ctx context.Context, table models.EntityTable, recordID string, now time.Time) (*models.OverrideRequest, error)
	ListByRecord(ctx context.Context, table models.EntityTable, recordID string) ([]models.OverrideRequest, error)
}

// DocumentStore persists compliance documents
type DocumentStore interface {
	Create(ctx context.Context, doc *models.ComplianceDocument) error
	GetByID(ctx context.Context, id string) (*models.ComplianceDocument, error)
	Renew(ctx context.Context, oldID string, next *models.ComplianceDocument) error
	ListByRecord(ctx context.Context, table models.EntityTable, recordID string) ([]models.ComplianceDocument, error)
}

var (
	_ ApprovalStore = (*repository.ApprovalRepository)(nil)
	_ OverrideStore = (*repository.OverrideRepository)(nil)
	_ DocumentStore = (*repository.DocumentRepository)(nil)
)

func requireCapability(checker CapabilityChecker, actor models.Actor, capability lifecycle.Capability) error {
	if checker == nil || !checker.Can(actor, capability) {
		return apperror.Unauthorized("missing capability " + string(capability))
	}
	return nil
}

func requireActor(actor models.Actor) error {
	if actor.ID == "" {
		return apperror.Validation("actor", "actor id is required")
	}
	return nil
}

func requireRecord(table models.EntityTable, id string) error {
	if !table.Valid() {
		return apperror.Validation("table", "unknown entity table "+string(table))
	}
	if id == "" {
		return apperror.Validation("record_id", "record id is required")
	}
	return nil
}
