package checks

import (
	"reflect"
	"testing"
	"time"

	"qa-gate/internal/models"
)

func passing(id string, tier Tier) Definition {
	return Definition{ID: id, Name: id, Tier: tier, Evaluate: func(*Snapshot) (bool, string) { return true, "ok" }}
}

func failing(id string, tier Tier) Definition {
	return Definition{ID: id, Name: id, Tier: tier, Evaluate: func(*Snapshot) (bool, string) { return false, "failed" }}
}

func TestEvaluateReturnsOneResultPerDefinitionInOrder(t *testing.T) {
	engine := NewEngine(
		failing("a", TierCritical),
		passing("b", TierImportant),
		failing("c", TierRecommended),
	)

	results := engine.Evaluate(&Snapshot{})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].Definition.ID != want {
			t.Errorf("result %d: expected %s, got %s", i, want, results[i].Definition.ID)
		}
	}
	if results[0].Passed || !results[1].Passed || results[2].Passed {
		t.Errorf("unexpected pass flags: %+v", results)
	}
}

func TestEvaluateRecoversFromPanickingPredicate(t *testing.T) {
	panicking := Definition{
		ID:   "explodes",
		Tier: TierCritical,
		Evaluate: func(s *Snapshot) (bool, string) {
			var m map[string]int
			m["x"] = 1
			return true, ""
		},
	}
	engine := NewEngine(passing("before", TierCritical), panicking, passing("after", TierCritical))

	results := engine.Evaluate(&Snapshot{})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	got := results[1]
	if got.Passed {
		t.Error("panicking check should fail")
	}
	if got.Definition.Tier != TierRecommended {
		t.Errorf("expected panicking check to be re-tiered to recommended, got %s", got.Definition.Tier)
	}
	if got.Message != UnevaluableMessage {
		t.Errorf("unexpected message %q", got.Message)
	}
	if !results[2].Passed {
		t.Error("evaluation should continue after a panic")
	}

	summary := Summarize(results)
	if summary.IsBlocked {
		t.Error("a panicking critical check must not block")
	}
}

func TestEvaluateNilPredicateIsUnevaluable(t *testing.T) {
	results := NewEngine(Definition{ID: "empty", Tier: TierImportant}).Evaluate(nil)
	if len(results) != 1 || results[0].Passed || results[0].Definition.Tier != TierRecommended {
		t.Fatalf("unexpected result: %+v", results)
	}
}

func TestEvaluateDoesNotMutateCallerSnapshot(t *testing.T) {
	mutating := Definition{
		ID:   "mutates",
		Tier: TierRecommended,
		Evaluate: func(s *Snapshot) (bool, string) {
			s.Record.Attributes["moisture"] = 99
			s.Suppliers[0].Status = models.StatusRejected
			*s.Limits[0].Max = 0
			return true, ""
		},
	}

	max := 12.0
	snap := &Snapshot{
		Record:    RecordFields{Attributes: map[string]float64{"moisture": 10}},
		Suppliers: []LinkedSupplier{{SupplierID: "s1", Status: models.StatusApproved}},
		Limits:    []NumericLimit{{Attribute: "moisture", Max: &max}},
	}
	before := snap.Clone()

	NewEngine(mutating).Evaluate(snap)

	if !reflect.DeepEqual(before, snap) {
		t.Errorf("snapshot was modified: before %+v after %+v", before, snap)
	}
}

func TestDefinitionsForKnownTables(t *testing.T) {
	for _, table := range []models.EntityTable{models.TableMaterials, models.TableSuppliers, models.TableProducts} {
		defs := DefinitionsFor(table)
		if len(defs) == 0 {
			t.Errorf("%s: expected a battery", table)
			continue
		}
		seen := map[string]bool{}
		for _, d := range defs {
			if seen[d.ID] {
				t.Errorf("%s: duplicate check %s", table, d.ID)
			}
			seen[d.ID] = true
			if d.Evaluate == nil {
				t.Errorf("%s: check %s has no predicate", table, d.ID)
			}
		}
	}

	if DefinitionsFor("invoices") != nil {
		t.Error("unknown table should have no battery")
	}
}

func TestEngineForEmptySnapshotNeverPanics(t *testing.T) {
	for _, table := range []models.EntityTable{models.TableMaterials, models.TableSuppliers, models.TableProducts} {
		engine := NewEngineFor(table)
		results := engine.Evaluate(&Snapshot{EvaluatedOn: time.Now()})
		if len(results) != len(engine.Definitions()) {
			t.Errorf("%s: expected %d results, got %d", table, len(engine.Definitions()), len(results))
		}
		for _, r := range results {
			if r.Message == UnevaluableMessage {
				t.Errorf("%s: check %s could not be evaluated on an empty snapshot", table, r.Definition.ID)
			}
		}
	}
}

func TestEvaluateWithoutDateUsesToday(t *testing.T) {
	expired := "2020-03-01"
	snap := &Snapshot{
		Record: RecordFields{ID: "mat-1", Table: models.TableMaterials},
		Documents: []models.ComplianceDocument{{
			ID: "d1", DocumentName: "SDS", DocumentType: "sds", ExpirationDate: &expired, IsCurrent: true,
		}},
		Requirements: []DocumentRequirement{{DocumentType: "sds", Required: true}},
	}

	results := NewEngine(requiredDocumentsUnexpired).Evaluate(snap)
	if results[0].Passed {
		t.Errorf("a document that expired in 2020 must count as expired, got %q", results[0].Message)
	}
	if !snap.EvaluatedOn.IsZero() {
		t.Error("the caller's snapshot must not be modified")
	}
}
