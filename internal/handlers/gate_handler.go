package handlers

import (
	"net/http"

	"qa-gate/internal/apperror"
	"qa-gate/internal/checks"
	"qa-gate/internal/models"
	"qa-gate/internal/service"
)

// GateHandler exposes check evaluation and gate decisions
type GateHandler struct {
	gate *service.GateService
}

// NewGateHandler creates a new gate handler
func NewGateHandler(gate *service.GateService) *GateHandler {
	return &GateHandler{gate: gate}
}

// CheckDefinition describes one check of a battery
type CheckDefinition struct {
	ID          string      `json:"id"`
	Name        string      `json:"check_name"`
	Tier        checks.Tier `json:"tier"`
	TargetTab   string      `json:"target_tab"`
	TargetField string      `json:"target_field"`
}

// ListDefinitions returns the battery of checks for a record type
// @Summary List check definitions
// @Description List the checks evaluated for a record type, in evaluation order
// @Tags Checks
// @Produce json
// @Security BearerAuth
// @Param table query string true "Entity table" Enums(materials, suppliers, products)
// @Success 200 {array} CheckDefinition
// @Failure 400 {object} ErrorResponse "Unknown table"
// @Router /checks/definitions [get]
func (h *GateHandler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	table := models.EntityTable(r.URL.Query().Get("table"))
	if !table.Valid() {
		respondWithError(w, r, apperror.Validation("table", "unknown entity table "+string(table)))
		return
	}

	defs := checks.NewEngineFor(table).Definitions()
	out := make([]CheckDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, CheckDefinition{
			ID:          d.ID,
			Name:        d.Name,
			Tier:        d.Tier,
			TargetTab:   d.TargetTab,
			TargetField: d.TargetField,
		})
	}
	respondWithJSON(w, http.StatusOK, out)
}

// Evaluate runs the checks against a record snapshot
// @Summary Evaluate checks
// @Description Evaluate the battery for the snapshot's record type and summarize the results
// @Tags Checks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param snapshot body checks.Snapshot true "Record snapshot"
// @Success 200 {object} service.Evaluation
// @Failure 400 {object} ErrorResponse "Invalid snapshot"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /checks/evaluate [post]
func (h *GateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var snapshot checks.Snapshot
	if err := decodeJSON(w, r, &snapshot); err != nil {
		respondWithError(w, r, err)
		return
	}

	eval, err := h.gate.Evaluate(r.Context(), &snapshot)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, eval)
}

// Decide evaluates a snapshot and consults the record's active override
// @Summary Gate decision
// @Description Evaluate the snapshot and report whether the record may proceed, considering an active override grant
// @Tags Checks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param snapshot body checks.Snapshot true "Record snapshot"
// @Success 200 {object} service.GateDecision
// @Failure 400 {object} ErrorResponse "Invalid snapshot"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /gate/decide [post]
func (h *GateHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var snapshot checks.Snapshot
	if err := decodeJSON(w, r, &snapshot); err != nil {
		respondWithError(w, r, err)
		return
	}

	decision, err := h.gate.Decide(r.Context(), &snapshot)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, decision)
}
