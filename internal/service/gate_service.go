package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"qa-gate/internal/apperror"
	"qa-gate/internal/checks"
	"qa-gate/internal/models"
	"qa-gate/internal/observability"
)

// Evaluation is the outcome of running the battery against a snapshot
type Evaluation struct {
	Results []checks.Result `json:"results"`
	Summary checks.Summary  `json:"summary"`
	Verdict checks.Verdict  `json:"verdict"`
}

// GateDecision is an evaluation plus the override grant consulted for it.
// CanProceed is true when the record is not blocked or an active grant exists;
// Summary.IsBlocked is reported as evaluated either way. A grant covers the whole
// record, so UncoveredFailures lists the critical failures its blocked_checks do
// not name.
type GateDecision struct {
	Evaluation
	Grant             *models.OverrideRequest `json:"grant,omitempty"`
	CanProceed        bool                    `json:"can_proceed"`
	UncoveredFailures []checks.Result         `json:"uncovered_failures"`
}

// GateService combines check evaluation, override grants and approval transitions
type GateService struct {
	approvals *ApprovalService
	overrides *OverrideService
	now       func() time.Time
}

// NewGateService creates a new gate service
func NewGateService(approvals *ApprovalService, overrides *OverrideService) *GateService {
	return &GateService{approvals: approvals, overrides: overrides, now: time.Now}
}

// WithClock overrides the clock for testing
func (s *GateService) WithClock(now func() time.Time) *GateService {
	s.now = now
	return s
}

// Evaluate runs the battery for the snapshot's record type and summarizes the results.
// A snapshot without an evaluation day is evaluated as of now.
func (s *GateService) Evaluate(ctx context.Context, snapshot *checks.Snapshot) (*Evaluation, error) {
	if snapshot == nil {
		return nil, apperror.Validation("snapshot", "snapshot is required")
	}
	if !snapshot.Record.Table.Valid() {
		return nil, apperror.Validation("record.table", "unknown entity table "+string(snapshot.Record.Table))
	}

	_, span := observability.StartSpan(ctx, "checks.evaluate",
		attribute.String("record.table", string(snapshot.Record.Table)),
		attribute.String("record.id", snapshot.Record.ID),
	)
	defer span.End()

	input := *snapshot
	if input.EvaluatedOn.IsZero() {
		input.EvaluatedOn = s.now().UTC()
	}

	results := checks.NewEngineFor(input.Record.Table).Evaluate(&input)
	summary := checks.Summarize(results)
	span.SetAttributes(
		attribute.Int("checks.critical_failures", len(summary.CriticalFailures)),
		attribute.Bool("checks.blocked", summary.IsBlocked),
	)
	return &Evaluation{Results: results, Summary: summary, Verdict: summary.Verdict()}, nil
}

// Decide evaluates the snapshot and, when the record is blocked, consults its active
// override grant.
func (s *GateService) Decide(ctx context.Context, snapshot *checks.Snapshot) (*GateDecision, error) {
	eval, err := s.Evaluate(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	if err := requireRecord(snapshot.Record.Table, snapshot.Record.ID); err != nil {
		return nil, err
	}

	decision := &GateDecision{
		Evaluation:        *eval,
		CanProceed:        !eval.Summary.IsBlocked,
		UncoveredFailures: []checks.Result{},
	}
	if eval.Summary.IsBlocked {
		grant, err := s.overrides.ActiveGrant(ctx, snapshot.Record.Table, snapshot.Record.ID)
		if err != nil {
			return nil, err
		}
		decision.Grant = grant
		decision.CanProceed = grant != nil
		if grant != nil {
			decision.UncoveredFailures = uncoveredFailures(eval.Summary, grant.BlockedChecks)
		}
	}
	return decision, nil
}

func uncoveredFailures(summary checks.Summary, covered []models.BlockedCheck) []checks.Result {
	named := make(map[string]bool, len(covered))
	for _, c := range covered {
		named[c.CheckID] = true
	}
	out := []checks.Result{}
	for _, r := range summary.CriticalFailures {
		if !named[r.Definition.ID] {
			out = append(out, r)
		}
	}
	return out
}

// Advance applies an approval action. Approving additionally requires a snapshot of
// the record whose gate decision lets it proceed.
func (s *GateService) Advance(ctx context.Context, entity models.ApprovableEntity, action models.ApprovalAction, actor models.Actor, notes string, snapshot *checks.Snapshot) (*models.ApprovalLogEntry, error) {
	if action == models.ActionApproved {
		if _, err := s.approvals.Authorize(entity, action, actor, notes); err != nil {
			return nil, err
		}
		if snapshot == nil {
			return nil, apperror.Validation("snapshot", "a snapshot is required to approve a record")
		}
		if snapshot.Record.Table != entity.Table || snapshot.Record.ID != entity.ID {
			return nil, apperror.Validation("snapshot", "snapshot does not describe the record being approved")
		}
		decision, err := s.Decide(ctx, snapshot)
		if err != nil {
			return nil, err
		}
		if !decision.CanProceed {
			return nil, apperror.Validation("checks", "record is blocked by failing critical checks")
		}
	}
	return s.approvals.ApplyTransition(ctx, entity, action, actor, notes)
}

// BlockedChecks freezes the failing checks of a summary for an override request
func BlockedChecks(summary checks.Summary) []models.BlockedCheck {
	failed := summary.FailedChecks()
	blocked := make([]models.BlockedCheck, 0, len(failed))
	for _, r := range failed {
		blocked = append(blocked, models.BlockedCheck{
			CheckID:     r.Definition.ID,
			CheckName:   r.Definition.Name,
			Tier:        string(r.Definition.Tier),
			Message:     r.Message,
			TargetTab:   r.Definition.TargetTab,
			TargetField: r.Definition.TargetField,
		})
	}
	return blocked
}
