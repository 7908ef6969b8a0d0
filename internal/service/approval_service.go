package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"qa-gate/internal/apperror"
	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
	"qa-gate/internal/observability"
)

// ApprovalService drives records through the approval lifecycle
type ApprovalService struct {
	store ApprovalStore
	caps  CapabilityChecker
	now   func() time.Time
}

// NewApprovalService creates a new approval service
func NewApprovalService(store ApprovalStore, caps CapabilityChecker) *ApprovalService {
	return &ApprovalService{store: store, caps: caps, now: time.Now}
}

// WithClock overrides the clock for testing
func (s *ApprovalService) WithClock(now func() time.Time) *ApprovalService {
	s.now = now
	return s
}

// Authorize checks that actor may apply action to entity with the given notes, without
// persisting anything. Errors come in a fixed order: invalid transition, missing
// capability, then missing notes.
func (s *ApprovalService) Authorize(entity models.ApprovableEntity, action models.ApprovalAction, actor models.Actor, notes string) (lifecycle.Rule, error) {
	if err := requireRecord(entity.Table, entity.ID); err != nil {
		return lifecycle.Rule{}, err
	}
	rule, err := lifecycle.Resolve(entity.Status, action)
	if err != nil {
		return lifecycle.Rule{}, err
	}
	if rule.Requires != "" {
		if err := requireCapability(s.caps, actor, rule.Requires); err != nil {
			return lifecycle.Rule{}, err
		}
	}
	if err := rule.CheckNotes(notes); err != nil {
		return lifecycle.Rule{}, err
	}
	if err := requireActor(actor); err != nil {
		return lifecycle.Rule{}, err
	}
	return rule, nil
}

// ApplyTransition moves entity to the status the action leads to and records the change.
// entity.Status is the status the caller last read; if it changed in the meantime the
// call fails with a conflict and nothing is written.
func (s *ApprovalService) ApplyTransition(ctx context.Context, entity models.ApprovableEntity, action models.ApprovalAction, actor models.Actor, notes string) (entry *models.ApprovalLogEntry, err error) {
	ctx, span := observability.StartSpan(ctx, "approval.transition",
		attribute.String("entity.table", string(entity.Table)),
		attribute.String("entity.id", entity.ID),
		attribute.String("action", string(action)),
	)
	defer func() { observability.EndSpan(span, err) }()

	rule, err := s.Authorize(entity, action, actor, notes)
	if err != nil {
		return nil, err
	}

	entry = s.newEntry(entity, action, rule.To, actor, notes)
	if err := s.store.Transition(ctx, entity, entry); err != nil {
		return nil, err
	}

	slog.Info("Approval status changed",
		"table", entity.Table,
		"entity_id", entity.ID,
		"action", action,
		"from", entity.Status,
		"to", rule.To,
		"actor", actor.ID,
	)
	return entry, nil
}

// RecordEvent appends a Created or Updated audit entry. The status stays as it is.
func (s *ApprovalService) RecordEvent(ctx context.Context, entity models.ApprovableEntity, action models.ApprovalAction, actor models.Actor, notes string) (entry *models.ApprovalLogEntry, err error) {
	ctx, span := observability.StartSpan(ctx, "approval.event",
		attribute.String("entity.table", string(entity.Table)),
		attribute.String("entity.id", entity.ID),
		attribute.String("action", string(action)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if action != models.ActionCreated && action != models.ActionUpdated {
		return nil, apperror.Validation("action", "only Created and Updated can be recorded as events")
	}
	if err := requireRecord(entity.Table, entity.ID); err != nil {
		return nil, err
	}
	if !entity.Status.Valid() {
		return nil, apperror.Validation("status", "unknown approval status "+string(entity.Status))
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	entry = s.newEntry(entity, action, entity.Status, actor, notes)
	if err := s.store.AppendEvent(ctx, entity, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Status returns the stored status of a record
func (s *ApprovalService) Status(ctx context.Context, table models.EntityTable, id string) (models.ApprovalStatus, error) {
	if err := requireRecord(table, id); err != nil {
		return "", err
	}
	return s.store.GetStatus(ctx, table, id)
}

// History returns the approval log of a record, oldest first
func (s *ApprovalService) History(ctx context.Context, table models.EntityTable, id string) ([]models.ApprovalLogEntry, error) {
	if err := requireRecord(table, id); err != nil {
		return nil, err
	}
	return s.store.ListByEntity(ctx, table, id)
}

func (s *ApprovalService) newEntry(entity models.ApprovableEntity, action models.ApprovalAction, to models.ApprovalStatus, actor models.Actor, notes string) *models.ApprovalLogEntry {
	entry := &models.ApprovalLogEntry{
		ID:             uuid.NewString(),
		EntityID:       entity.ID,
		EntityTable:    entity.Table,
		Action:         action,
		PreviousStatus: entity.Status,
		NewStatus:      to,
		PerformedBy:    actor.ID,
		Timestamp:      s.now().UTC(),
	}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		entry.Notes = &trimmed
	}
	return entry
}
