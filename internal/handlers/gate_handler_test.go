package handlers_test

import (
	"bytes"
	"net/http"
	"testing"

	"qa-gate/internal/checks"
	"qa-gate/internal/handlers"
	"qa-gate/internal/models"
	"qa-gate/internal/service"
)

func TestListDefinitions(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/v1/checks/definitions?table=suppliers", &editor, nil)
	resp.AssertStatus(t, http.StatusOK)
	var defs []handlers.CheckDefinition
	decode(t, resp, &defs)
	want := checks.DefinitionsFor(models.TableSuppliers)
	if len(defs) != len(want) {
		t.Fatalf("expected %d definitions, got %d", len(want), len(defs))
	}
	for i := range want {
		if defs[i].ID != want[i].ID || defs[i].Tier != want[i].Tier {
			t.Errorf("definition %d: expected %s/%s, got %s/%s", i, want[i].ID, want[i].Tier, defs[i].ID, defs[i].Tier)
		}
	}

	ts.do(t, http.MethodGet, "/api/v1/checks/definitions?table=orders", &editor, nil).
		AssertStatus(t, http.StatusBadRequest)
}

func TestEvaluate(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/checks/evaluate", &editor, supplierSnapshot(false))
	resp.AssertStatus(t, http.StatusOK)
	var eval service.Evaluation
	decode(t, resp, &eval)
	if eval.Verdict != checks.VerdictBlocked || !eval.Summary.IsBlocked {
		t.Errorf("expected a blocked verdict, got %s", eval.Verdict)
	}
	if len(eval.Results) != len(checks.DefinitionsFor(models.TableSuppliers)) {
		t.Errorf("expected one result per check, got %d", len(eval.Results))
	}

	resp = ts.do(t, http.MethodPost, "/api/v1/checks/evaluate", &editor, supplierSnapshot(true))
	resp.AssertStatus(t, http.StatusOK)
	if bytes.Contains(resp.Body.Bytes(), []byte(`"critical_failures":null`)) {
		t.Errorf("expected empty failure lists to encode as arrays: %s", resp.Body.String())
	}
	decode(t, resp, &eval)
	if eval.Summary.IsBlocked {
		t.Errorf("expected the compliant supplier not to be blocked")
	}
}

func TestEvaluateRejectsUnknownTable(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/api/v1/checks/evaluate", &editor, checks.Snapshot{})
	resp.AssertStatus(t, http.StatusBadRequest)
	if body := errorBody(t, resp); body.Field != "record.table" {
		t.Errorf("expected record.table field error, got %+v", body)
	}
}

func TestGateDecide(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/gate/decide", &editor, supplierSnapshot(false))
	resp.AssertStatus(t, http.StatusOK)
	var decision service.GateDecision
	decode(t, resp, &decision)
	if decision.CanProceed || decision.Grant != nil {
		t.Errorf("expected a blocked record without grant, got %+v", decision)
	}

	resp = ts.do(t, http.MethodPost, "/api/v1/gate/decide", &editor, supplierSnapshot(true))
	decode(t, resp, &decision)
	if !decision.CanProceed {
		t.Errorf("expected the compliant supplier to proceed")
	}
}
