package service

import (
	"context"
	"errors"
	"testing"

	"qa-gate/internal/apperror"
	"qa-gate/internal/checks"
	"qa-gate/internal/models"
)

type gateFixture struct {
	gate      *GateService
	approvals *fakeApprovalStore
	overrides *OverrideService
}

func newGateFixture() gateFixture {
	approvalStore := newFakeApprovalStore()
	approvals := NewApprovalService(approvalStore, testCaps()).WithClock(fixedClock)
	overrides, _ := newTestOverrideService()
	return gateFixture{
		gate:      NewGateService(approvals, overrides).WithClock(fixedClock),
		approvals: approvalStore,
		overrides: overrides,
	}
}

// supplierSnapshot describes a supplier that is missing its required certificate
func supplierSnapshot(compliant bool) *checks.Snapshot {
	s := &checks.Snapshot{
		Record: checks.RecordFields{
			ID:           "sup-1",
			Table:        models.TableSuppliers,
			Name:         "Acme Mills",
			Description:  "Organic flour miller, family owned",
			ContactEmail: "qa@acme.example",
			Country:      "DE",
		},
		Requirements: []checks.DocumentRequirement{{DocumentType: "certificate", Required: true}},
		EvaluatedOn:  testNow,
	}
	if compliant {
		s.Documents = []models.ComplianceDocument{{
			ID:               "doc-1",
			RelatedRecordID:  "sup-1",
			RelatedTableName: models.TableSuppliers,
			DocumentName:     "Organic certificate",
			DocumentType:     "certificate",
			ExpirationDate:   strPtr("2026-06-01"),
			IsCurrent:        true,
		}}
	}
	return s
}

func TestDecideBlockedWithoutGrant(t *testing.T) {
	f := newGateFixture()

	decision, err := f.gate.Decide(context.Background(), supplierSnapshot(false))
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !decision.Summary.IsBlocked {
		t.Fatalf("expected the missing certificate to block")
	}
	if decision.CanProceed || decision.Grant != nil {
		t.Errorf("expected no progression without a grant")
	}
	if decision.Verdict != checks.VerdictBlocked {
		t.Errorf("expected verdict blocked, got %s", decision.Verdict)
	}
	if got := len(decision.Results); got != len(checks.DefinitionsFor(models.TableSuppliers)) {
		t.Errorf("expected one result per supplier check, got %d", got)
	}
}

func TestDecideGrantSuppressesBlockingOnly(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	snapshot := supplierSnapshot(false)
	eval, err := f.gate.Evaluate(ctx, snapshot)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	in := validInput()
	in.Table = models.TableSuppliers
	in.RecordID = "sup-1"
	in.BlockedChecks = BlockedChecks(eval.Summary)
	in.Acknowledged = true
	grant, err := f.overrides.ApplyDirect(ctx, in, manager)
	if err != nil {
		t.Fatalf("ApplyDirect failed: %v", err)
	}

	decision, err := f.gate.Decide(ctx, snapshot)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !decision.Summary.IsBlocked {
		t.Errorf("a grant must not rewrite the summary")
	}
	if !decision.CanProceed || decision.Grant == nil || decision.Grant.ID != grant.ID {
		t.Errorf("expected the grant to let the record proceed, got %+v", decision.Grant)
	}
	if len(decision.UncoveredFailures) != 0 {
		t.Errorf("expected every critical failure to be covered, got %+v", decision.UncoveredFailures)
	}
}

func TestDecideReportsFailuresOutsideGrant(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	in := validInput()
	in.Table = models.TableSuppliers
	in.RecordID = "sup-1"
	in.BlockedChecks = []models.BlockedCheck{{
		CheckID:   checks.CheckSupplierContactComplete,
		CheckName: "Supplier contact complete",
		Tier:      string(checks.TierImportant),
		Message:   "contact email missing",
	}}
	in.Acknowledged = true
	if _, err := f.overrides.ApplyDirect(ctx, in, manager); err != nil {
		t.Fatalf("ApplyDirect failed: %v", err)
	}

	decision, err := f.gate.Decide(ctx, supplierSnapshot(false))
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !decision.CanProceed {
		t.Errorf("an active grant lets the record proceed")
	}
	if len(decision.UncoveredFailures) != len(decision.Summary.CriticalFailures) || len(decision.UncoveredFailures) == 0 {
		t.Fatalf("expected every critical failure to be reported as uncovered, got %+v", decision.UncoveredFailures)
	}
	if decision.UncoveredFailures[0].Definition.ID != checks.CheckRequiredDocumentsPresent {
		t.Errorf("unexpected uncovered check %s", decision.UncoveredFailures[0].Definition.ID)
	}
}

func TestAdvanceApproveRequiresPassableGate(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()
	f.approvals.Seed(models.TableSuppliers, "sup-1", models.StatusPendingQA)
	entity := models.ApprovableEntity{Table: models.TableSuppliers, ID: "sup-1", Status: models.StatusPendingQA}

	_, err := f.gate.Advance(ctx, entity, models.ActionApproved, reviewer, "", nil)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error without snapshot, got %v", err)
	}

	_, err = f.gate.Advance(ctx, entity, models.ActionApproved, reviewer, "", supplierSnapshot(false))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for a blocked record, got %v", err)
	}

	_, err = f.gate.Advance(ctx, entity, models.ActionApproved, requester, "", supplierSnapshot(true))
	if !errors.Is(err, apperror.ErrAuthorization) {
		t.Fatalf("expected authorization error before evaluating, got %v", err)
	}

	entry, err := f.gate.Advance(ctx, entity, models.ActionApproved, reviewer, "", supplierSnapshot(true))
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if entry.NewStatus != models.StatusApproved {
		t.Errorf("expected Approved, got %s", entry.NewStatus)
	}
}

func TestAdvanceNonApprovalSkipsGate(t *testing.T) {
	f := newGateFixture()
	f.approvals.Seed(models.TableSuppliers, "sup-1", models.StatusDraft)
	entity := models.ApprovableEntity{Table: models.TableSuppliers, ID: "sup-1", Status: models.StatusDraft}

	entry, err := f.gate.Advance(context.Background(), entity, models.ActionSubmitted, requester, "", nil)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if entry.NewStatus != models.StatusPendingQA {
		t.Errorf("expected Pending_QA, got %s", entry.NewStatus)
	}
}

func TestEvaluateRejectsUnknownTable(t *testing.T) {
	f := newGateFixture()
	_, err := f.gate.Evaluate(context.Background(), &checks.Snapshot{Record: checks.RecordFields{Table: "orders"}})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
