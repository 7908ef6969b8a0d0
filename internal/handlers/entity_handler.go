package handlers

import (
	"net/http"

	"qa-gate/internal/apperror"
	"qa-gate/internal/checks"
	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
	"qa-gate/internal/service"
)

// TransitionRequest asks to move a record through its approval lifecycle
type TransitionRequest struct {
	Action        models.ApprovalAction `json:"action" validate:"required"`
	CurrentStatus models.ApprovalStatus `json:"current_status" validate:"required,oneof=Draft Pending_QA Approved Rejected Archived"`
	Notes         string                `json:"notes"`
	Snapshot      *checks.Snapshot      `json:"snapshot,omitempty"`
}

// EventRequest records a non-transition audit event for a record
type EventRequest struct {
	Action        models.ApprovalAction `json:"action" validate:"required,oneof=Created Updated"`
	CurrentStatus models.ApprovalStatus `json:"current_status" validate:"required,oneof=Draft Pending_QA Approved Rejected Archived"`
	Notes         string                `json:"notes"`
}

// EntityStatusResponse is the stored status of a record and what can happen next
type EntityStatusResponse struct {
	Table            models.EntityTable      `json:"table"`
	ID               string                  `json:"id"`
	Status           models.ApprovalStatus   `json:"status"`
	AvailableActions []models.ApprovalAction `json:"available_actions"`
}

// EntityHandler exposes the approval lifecycle of materials, suppliers and products
type EntityHandler struct {
	gate      *service.GateService
	approvals *service.ApprovalService
}

// NewEntityHandler creates a new entity handler
func NewEntityHandler(gate *service.GateService, approvals *service.ApprovalService) *EntityHandler {
	return &EntityHandler{gate: gate, approvals: approvals}
}

func entityFromPath(r *http.Request) (models.EntityTable, string, error) {
	table := models.EntityTable(r.PathValue("table"))
	if !table.Valid() {
		return "", "", apperror.Validation("table", "unknown entity table "+string(table))
	}
	id := r.PathValue("id")
	if id == "" {
		return "", "", apperror.Validation("id", "record id is required")
	}
	return table, id, nil
}

// Transition applies an approval action to a record
// @Summary Apply approval action
// @Description Submit, approve, reject, archive or restore a record. Approving requires a snapshot whose checks do not block, or an active override.
// @Tags Entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param table path string true "Entity table" Enums(materials, suppliers, products)
// @Param id path string true "Record ID"
// @Param request body TransitionRequest true "Transition"
// @Success 200 {object} models.ApprovalLogEntry
// @Failure 400 {object} ErrorResponse "Invalid input or blocked by checks"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Missing capability"
// @Failure 404 {object} ErrorResponse "Record not found"
// @Failure 409 {object} ErrorResponse "Invalid transition or stale status"
// @Router /entities/{table}/{id}/transitions [post]
func (h *EntityHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	table, id, err := entityFromPath(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var req TransitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	entity := models.ApprovableEntity{Table: table, ID: id, Status: req.CurrentStatus}
	entry, err := h.gate.Advance(r.Context(), entity, req.Action, actor, req.Notes, req.Snapshot)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

// RecordEvent appends a Created or Updated event to a record's history
// @Summary Record audit event
// @Description Append a Created or Updated entry without changing the record's status
// @Tags Entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param table path string true "Entity table" Enums(materials, suppliers, products)
// @Param id path string true "Record ID"
// @Param request body EventRequest true "Event"
// @Success 201 {object} models.ApprovalLogEntry
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Stale status"
// @Router /entities/{table}/{id}/events [post]
func (h *EntityHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	table, id, err := entityFromPath(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var req EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	entity := models.ApprovableEntity{Table: table, ID: id, Status: req.CurrentStatus}
	entry, err := h.approvals.RecordEvent(r.Context(), entity, req.Action, actor, req.Notes)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, entry)
}

// History lists a record's approval log, oldest first
// @Summary Approval history
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param table path string true "Entity table" Enums(materials, suppliers, products)
// @Param id path string true "Record ID"
// @Success 200 {array} models.ApprovalLogEntry
// @Failure 400 {object} ErrorResponse "Invalid table"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /entities/{table}/{id}/history [get]
func (h *EntityHandler) History(w http.ResponseWriter, r *http.Request) {
	table, id, err := entityFromPath(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	entries, err := h.approvals.History(r.Context(), table, id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// Status returns a record's stored status and the actions available from it
// @Summary Approval status
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param table path string true "Entity table" Enums(materials, suppliers, products)
// @Param id path string true "Record ID"
// @Success 200 {object} EntityStatusResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Record not found"
// @Router /entities/{table}/{id}/status [get]
func (h *EntityHandler) Status(w http.ResponseWriter, r *http.Request) {
	table, id, err := entityFromPath(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	status, err := h.approvals.Status(r.Context(), table, id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, EntityStatusResponse{
		Table:            table,
		ID:               id,
		Status:           status,
		AvailableActions: lifecycle.AvailableActions(status),
	})
}
