package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"qa-gate/internal/apperror"
	"qa-gate/internal/config"
	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
	"qa-gate/internal/observability"
	"qa-gate/internal/repository"
)

// Limits used when the configuration leaves them unset
const (
	DefaultMinJustificationLength = 50
	DefaultMaxFollowUpDays        = 30
	DefaultFullApprovalDays       = 365
)

// OverrideInput is what a caller supplies to request or apply an override
type OverrideInput struct {
	Table          models.EntityTable    `json:"related_table_name"`
	RecordID       string                `json:"related_record_id"`
	RecordCategory string                `json:"record_category"`
	BlockedChecks  []models.BlockedCheck `json:"blocked_checks"`
	Reason         models.OverrideReason `json:"override_reason"`
	Justification  string                `json:"justification"`
	FollowUpDate   time.Time             `json:"follow_up_date"`
	OverrideType   models.OverrideType   `json:"override_type"`
	Acknowledged   bool                  `json:"acknowledged"`
}

// OverrideService runs the override authorization workflow
type OverrideService struct {
	store OverrideStore
	caps  CapabilityChecker
	cfg   config.OverrideConfig
	now   func() time.Time
}

// NewOverrideService creates a new override service
func NewOverrideService(store OverrideStore, caps CapabilityChecker, cfg config.OverrideConfig) *OverrideService {
	if cfg.MinJustificationLength <= 0 {
		cfg.MinJustificationLength = DefaultMinJustificationLength
	}
	if cfg.MaxFollowUpDays <= 0 {
		cfg.MaxFollowUpDays = DefaultMaxFollowUpDays
	}
	if cfg.FullApprovalDays <= 0 {
		cfg.FullApprovalDays = DefaultFullApprovalDays
	}
	if cfg.Durations == nil {
		cfg.Durations = config.DefaultDurationTable()
	}
	return &OverrideService{store: store, caps: caps, cfg: cfg, now: time.Now}
}

// WithClock overrides the clock for testing
func (s *OverrideService) WithClock(now func() time.Time) *OverrideService {
	s.now = now
	return s
}

// Validate checks the input shared by the request and direct paths
func (s *OverrideService) Validate(in OverrideInput, now time.Time) error {
	if err := requireRecord(in.Table, in.RecordID); err != nil {
		return err
	}
	if !in.Reason.Valid() {
		return apperror.Validation("override_reason", fmt.Sprintf("unknown override reason %q", in.Reason))
	}
	if n := len([]rune(strings.TrimSpace(in.Justification))); n < s.cfg.MinJustificationLength {
		return apperror.Validation("justification",
			fmt.Sprintf("justification must be at least %d characters, got %d", s.cfg.MinJustificationLength, n))
	}
	if !in.FollowUpDate.After(now) {
		return apperror.Validation("follow_up_date", "follow-up date must be in the future")
	}
	if in.FollowUpDate.After(now.AddDate(0, 0, s.cfg.MaxFollowUpDays)) {
		return apperror.Validation("follow_up_date",
			fmt.Sprintf("follow-up date must be within %d days", s.cfg.MaxFollowUpDays))
	}
	if !in.OverrideType.Valid() {
		return apperror.Validation("override_type", fmt.Sprintf("unknown override type %q", in.OverrideType))
	}
	if len(in.BlockedChecks) == 0 {
		return apperror.Validation("blocked_checks", "at least one blocked check is required")
	}
	for i, c := range in.BlockedChecks {
		if strings.TrimSpace(c.CheckID) == "" {
			return apperror.Validation("blocked_checks", fmt.Sprintf("blocked check %d has no id", i))
		}
	}
	return nil
}

// DurationDays returns the conditional approval duration for a record
func (s *OverrideService) DurationDays(table models.EntityTable, category string) int {
	return s.cfg.Durations.DaysFor(table, category)
}

// CreateRequest files a pending override request. The record stays blocked until a
// reviewer approves it.
func (s *OverrideService) CreateRequest(ctx context.Context, in OverrideInput, actor models.Actor) (req *models.OverrideRequest, err error) {
	ctx, span := observability.StartSpan(ctx, "override.request",
		attribute.String("record.table", string(in.Table)),
		attribute.String("record.id", in.RecordID),
	)
	defer func() { observability.EndSpan(span, err) }()

	now := s.now().UTC()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.Validate(in, now); err != nil {
		return nil, err
	}

	req, err = s.newRequest(in, actor, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateExclusive(ctx, req, now); err != nil {
		return nil, err
	}

	slog.Info("Override requested",
		"override_id", req.ID,
		"table", req.RelatedTableName,
		"record_id", req.RelatedRecordID,
		"type", req.OverrideType,
		"requested_by", actor.ID,
	)
	return req, nil
}

// ApplyDirect grants an override immediately on the actor's own authority
func (s *OverrideService) ApplyDirect(ctx context.Context, in OverrideInput, actor models.Actor) (req *models.OverrideRequest, err error) {
	ctx, span := observability.StartSpan(ctx, "override.direct",
		attribute.String("record.table", string(in.Table)),
		attribute.String("record.id", in.RecordID),
	)
	defer func() { observability.EndSpan(span, err) }()

	now := s.now().UTC()
	if err := requireCapability(s.caps, actor, lifecycle.CapabilityOverrideDirect); err != nil {
		return nil, err
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.Validate(in, now); err != nil {
		return nil, err
	}
	if !in.Acknowledged {
		return nil, apperror.Validation("acknowledged", "direct overrides require acknowledgement of accountability")
	}

	req, err = s.newRequest(in, actor, now)
	if err != nil {
		return nil, err
	}
	days := req.DurationDays
	if req.OverrideType == models.OverrideFull {
		days = s.cfg.FullApprovalDays
	}
	expires := now.AddDate(0, 0, days)
	approvedBy := actor.ID
	req.Status = models.OverrideApproved
	req.ApprovedBy = &approvedBy
	req.ExpiresAt = &expires
	req.DecidedAt = &now

	if err := s.store.CreateExclusive(ctx, req, now); err != nil {
		return nil, err
	}

	slog.Warn("Direct override applied",
		"override_id", req.ID,
		"table", req.RelatedTableName,
		"record_id", req.RelatedRecordID,
		"type", req.OverrideType,
		"expires_at", expires,
		"approved_by", actor.ID,
	)
	return req, nil
}

// Approve grants a pending override request. The approver must hold the review
// capability and must not be the requester.
func (s *OverrideService) Approve(ctx context.Context, requestID string, approver models.Actor) (req *models.OverrideRequest, err error) {
	ctx, span := observability.StartSpan(ctx, "override.approve", attribute.String("override.id", requestID))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCapability(s.caps, approver, lifecycle.CapabilityOverrideReview); err != nil {
		return nil, err
	}
	if err := requireActor(approver); err != nil {
		return nil, err
	}

	pending, err := s.pendingFor(ctx, requestID, approver, "approved")
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	decision := repository.Decision{
		Status:     models.OverrideApproved,
		ApprovedBy: approver.ID,
		DecidedAt:  now,
	}
	if pending.OverrideType == models.OverrideConditional {
		days := pending.DurationDays
		if days <= 0 {
			days = s.DurationDays(pending.RelatedTableName, pending.RecordCategory)
		}
		expires := now.AddDate(0, 0, days)
		decision.ExpiresAt = &expires
	}

	req, err = s.store.Decide(ctx, requestID, decision)
	if err != nil {
		return nil, err
	}

	slog.Info("Override approved", "override_id", req.ID, "approved_by", approver.ID, "expires_at", req.ExpiresAt)
	return req, nil
}

// Reject closes a pending override request for good. Like Approve, it needs a
// reviewer other than the requester.
func (s *OverrideService) Reject(ctx context.Context, requestID string, approver models.Actor, reason string) (req *models.OverrideRequest, err error) {
	ctx, span := observability.StartSpan(ctx, "override.reject", attribute.String("override.id", requestID))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCapability(s.caps, approver, lifecycle.CapabilityOverrideReview); err != nil {
		return nil, err
	}
	if err := requireActor(approver); err != nil {
		return nil, err
	}
	if _, err := s.pendingFor(ctx, requestID, approver, "rejected"); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("reason", "a rejection reason is required")
	}

	req, err = s.store.Decide(ctx, requestID, repository.Decision{
		Status:          models.OverrideRejected,
		ApprovedBy:      approver.ID,
		RejectionReason: &reason,
		DecidedAt:       s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Override rejected", "override_id", req.ID, "rejected_by", approver.ID)
	return req, nil
}

// pendingFor loads a request that approver may still decide
func (s *OverrideService) pendingFor(ctx context.Context, requestID string, approver models.Actor, verb string) (*models.OverrideRequest, error) {
	pending, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pending.Status != models.OverridePending {
		return nil, apperror.Conflict(fmt.Sprintf("override request is %s, not pending", pending.Status))
	}
	if pending.RequestedBy == approver.ID {
		return nil, apperror.Unauthorized("an override request cannot be " + verb + " by its requester")
	}
	return pending, nil
}

// ActiveGrant returns the approved, unexpired override of a record, or nil.
// A grant lets a blocked record proceed; it never changes the check summary.
func (s *OverrideService) ActiveGrant(ctx context.Context, table models.EntityTable, recordID string) (*models.OverrideRequest, error) {
	if err := requireRecord(table, recordID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	grant, err := s.store.FindActiveGrant(ctx, table, recordID, now)
	if err != nil {
		return nil, err
	}
	if grant == nil || !grant.IsActiveGrant(now) {
		return nil, nil
	}
	return grant, nil
}

// ListForRecord returns the override history of a record with lapsed grants shown as expired
func (s *OverrideService) ListForRecord(ctx context.Context, table models.EntityTable, recordID string) ([]models.OverrideRequest, error) {
	if err := requireRecord(table, recordID); err != nil {
		return nil, err
	}
	requests, err := s.store.ListByRecord(ctx, table, recordID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	for i := range requests {
		requests[i].Status = requests[i].EffectiveStatus(now)
	}
	return requests, nil
}

func (s *OverrideService) newRequest(in OverrideInput, actor models.Actor, now time.Time) (*models.OverrideRequest, error) {
	blocked := make([]models.BlockedCheck, len(in.BlockedChecks))
	copy(blocked, in.BlockedChecks)

	digest, err := snapshotDigest(blocked)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindInternal, "digest blocked checks")
	}

	req := &models.OverrideRequest{
		ID:               uuid.NewString(),
		RelatedRecordID:  in.RecordID,
		RelatedTableName: in.Table,
		RecordCategory:   strings.TrimSpace(in.RecordCategory),
		BlockedChecks:    blocked,
		SnapshotDigest:   digest,
		RequestedBy:      actor.ID,
		OverrideReason:   in.Reason,
		Justification:    strings.TrimSpace(in.Justification),
		FollowUpDate:     in.FollowUpDate.UTC(),
		OverrideType:     in.OverrideType,
		Acknowledged:     in.Acknowledged,
		Status:           models.OverridePending,
		CreatedAt:        now,
	}
	if in.OverrideType == models.OverrideConditional {
		req.DurationDays = s.DurationDays(in.Table, req.RecordCategory)
	}
	return req, nil
}

// snapshotDigest fingerprints the frozen blocked checks
func snapshotDigest(blocked []models.BlockedCheck) (string, error) {
	payload, err := json.Marshal(blocked)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
