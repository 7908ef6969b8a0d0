package checks

import (
	"strings"
	"testing"
	"time"

	"qa-gate/internal/models"
)

var evaluatedOn = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func date(offsetDays int) *string {
	s := evaluatedOn.AddDate(0, 0, offsetDays).Format("2006-01-02")
	return &s
}

func floatPtr(f float64) *float64 { return &f }

// compliantMaterial returns a material snapshot that passes every check
func compliantMaterial() *Snapshot {
	return &Snapshot{
		Record: RecordFields{
			ID:          "mat-1",
			Table:       models.TableMaterials,
			Name:        "Wheat flour type 550",
			Category:    "dry_goods",
			Description: "Milled wheat flour for bread doughs",
			BaseUnit:    "kg",
			Attributes:  map[string]float64{"moisture": 13.5},
		},
		Suppliers: []LinkedSupplier{
			{SupplierID: "sup-1", Name: "Mill A", Status: models.StatusApproved, IsPrimary: true, PurchaseUnit: "bag25"},
			{SupplierID: "sup-2", Name: "Mill B", Status: models.StatusApproved, PurchaseUnit: "kg"},
		},
		Documents: []models.ComplianceDocument{
			{ID: "d1", DocumentName: "Spec sheet", DocumentType: "specification", IsCurrent: true},
			{ID: "d2", DocumentName: "Allergen statement", DocumentType: "allergen", ExpirationDate: date(200), IsCurrent: true},
			{ID: "d3", DocumentName: "Organic certificate", DocumentType: "organic", ExpirationDate: date(120), IsCurrent: true},
		},
		Requirements: []DocumentRequirement{
			{DocumentType: "specification", Required: true},
			{DocumentType: "allergen", Required: true},
			{DocumentType: "organic", Required: false},
		},
		Limits:      []NumericLimit{{Attribute: "moisture", Min: floatPtr(10), Max: floatPtr(15), Unit: "%"}},
		Conversions: []UnitConversion{{FromUnit: "bag25", ToUnit: "kg", Factor: 25}},
		EvaluatedOn: evaluatedOn,
	}
}

func resultByID(t *testing.T, results []Result, id string) Result {
	t.Helper()
	for _, r := range results {
		if r.Definition.ID == id {
			return r
		}
	}
	t.Fatalf("no result for check %s", id)
	return Result{}
}

func TestCompliantMaterialPassesEverything(t *testing.T) {
	results := NewEngineFor(models.TableMaterials).Evaluate(compliantMaterial())
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %s failed: %s", r.Definition.ID, r.Message)
		}
	}

	summary := Summarize(results)
	if summary.IsBlocked || !summary.CanFullApprove {
		t.Errorf("expected full approval eligibility, got %+v", summary.Verdict())
	}
}

func TestMaterialChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Snapshot)
		checkID string
		message string
	}{
		{
			name: "missing required document",
			mutate: func(s *Snapshot) {
				s.Documents = s.Documents[1:]
			},
			checkID: CheckRequiredDocumentsPresent,
			message: "specification",
		},
		{
			name: "archived document does not count",
			mutate: func(s *Snapshot) {
				s.Documents[0].IsCurrent = false
			},
			checkID: CheckRequiredDocumentsPresent,
			message: "specification",
		},
		{
			name: "expired required document",
			mutate: func(s *Snapshot) {
				s.Documents[1].ExpirationDate = date(-1)
			},
			checkID: CheckRequiredDocumentsUnexpired,
			message: "Allergen statement",
		},
		{
			name: "no approved supplier",
			mutate: func(s *Snapshot) {
				for i := range s.Suppliers {
					s.Suppliers[i].Status = models.StatusPendingQA
				}
			},
			checkID: CheckApprovedSupplierLinked,
			message: "None of the 2",
		},
		{
			name: "value above limit",
			mutate: func(s *Snapshot) {
				s.Record.Attributes["moisture"] = 16
			},
			checkID: CheckNumericLimitsRespected,
			message: "exceeds maximum 15",
		},
		{
			name: "limited value missing",
			mutate: func(s *Snapshot) {
				delete(s.Record.Attributes, "moisture")
			},
			checkID: CheckNumericLimitsRespected,
			message: "moisture is not set",
		},
		{
			name: "document expiring soon",
			mutate: func(s *Snapshot) {
				s.Documents[2].ExpirationDate = date(10)
			},
			checkID: CheckDocumentsNotExpiringSoon,
			message: "expires in 10 days",
		},
		{
			name: "purchase unit without conversion",
			mutate: func(s *Snapshot) {
				s.Conversions = nil
			},
			checkID: CheckPurchaseUnitConvertible,
			message: "Mill A (bag25)",
		},
		{
			name: "two primary suppliers",
			mutate: func(s *Snapshot) {
				s.Suppliers[1].IsPrimary = true
			},
			checkID: CheckPrimarySupplierDesignated,
			message: "2 suppliers are marked primary",
		},
		{
			name: "blank category",
			mutate: func(s *Snapshot) {
				s.Record.Category = "  "
			},
			checkID: CheckCategoryAssigned,
		},
		{
			name: "whitespace description",
			mutate: func(s *Snapshot) {
				s.Record.Description = "  a b c   "
			},
			checkID: CheckDescriptionPresent,
		},
		{
			name: "single approved supplier",
			mutate: func(s *Snapshot) {
				s.Suppliers[1].Status = models.StatusRejected
			},
			checkID: CheckBackupSupplierAvailable,
			message: "Only 1 approved",
		},
		{
			name: "optional document missing",
			mutate: func(s *Snapshot) {
				s.Documents = s.Documents[:2]
			},
			checkID: CheckOptionalDocumentsPresent,
			message: "organic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := compliantMaterial()
			tt.mutate(snap)

			r := resultByID(t, NewEngineFor(models.TableMaterials).Evaluate(snap), tt.checkID)
			if r.Passed {
				t.Fatalf("expected %s to fail", tt.checkID)
			}
			if tt.message != "" && !strings.Contains(r.Message, tt.message) {
				t.Errorf("message %q does not mention %q", r.Message, tt.message)
			}
		})
	}
}

func TestConversionMayBeInverse(t *testing.T) {
	snap := compliantMaterial()
	snap.Conversions = []UnitConversion{{FromUnit: "kg", ToUnit: "BAG25", Factor: 0.04}}

	r := resultByID(t, NewEngineFor(models.TableMaterials).Evaluate(snap), CheckPurchaseUnitConvertible)
	if !r.Passed {
		t.Errorf("inverse conversion should satisfy the check: %s", r.Message)
	}

	snap.Conversions[0].Factor = 0
	r = resultByID(t, NewEngineFor(models.TableMaterials).Evaluate(snap), CheckPurchaseUnitConvertible)
	if r.Passed {
		t.Error("a zero conversion factor must not count")
	}
}

func TestSupplierContactCheck(t *testing.T) {
	snap := &Snapshot{
		Record: RecordFields{
			ID:           "sup-1",
			Table:        models.TableSuppliers,
			Description:  "Regional mill supplying flours",
			ContactEmail: "qa@mill.example",
		},
		EvaluatedOn: evaluatedOn,
	}

	r := resultByID(t, NewEngineFor(models.TableSuppliers).Evaluate(snap), CheckSupplierContactComplete)
	if r.Passed || !strings.Contains(r.Message, "country") {
		t.Errorf("expected missing country, got %+v", r)
	}

	snap.Record.Country = "DE"
	r = resultByID(t, NewEngineFor(models.TableSuppliers).Evaluate(snap), CheckSupplierContactComplete)
	if !r.Passed {
		t.Errorf("expected contact check to pass, got %s", r.Message)
	}
}

func TestImportantFailureOnlyAllowsConditionalApproval(t *testing.T) {
	snap := compliantMaterial()
	snap.Documents[2].ExpirationDate = date(5)

	summary := Summarize(NewEngineFor(models.TableMaterials).Evaluate(snap))
	if summary.IsBlocked {
		t.Error("important failure must not block")
	}
	if summary.CanFullApprove {
		t.Error("important failure must prevent full approval")
	}
	if summary.Verdict() != VerdictConditionalOnly {
		t.Errorf("expected conditional_only, got %s", summary.Verdict())
	}
}
