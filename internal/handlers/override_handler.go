package handlers

import (
	"net/http"
	"time"

	"qa-gate/internal/apperror"
	"qa-gate/internal/compliance"
	"qa-gate/internal/models"
	"qa-gate/internal/service"
)

// OverrideRequestBody is the payload of a requested or directly applied override
type OverrideRequestBody struct {
	Table          models.EntityTable    `json:"related_table_name" validate:"required,oneof=materials suppliers products"`
	RecordID       string                `json:"related_record_id" validate:"required"`
	RecordCategory string                `json:"record_category"`
	BlockedChecks  []models.BlockedCheck `json:"blocked_checks" validate:"required"`
	Reason         models.OverrideReason `json:"override_reason" validate:"required"`
	Justification  string                `json:"justification" validate:"required"`
	FollowUpDate   string                `json:"follow_up_date" validate:"required"` // YYYY-MM-DD or RFC 3339
	OverrideType   models.OverrideType   `json:"override_type" validate:"required,oneof=conditional_approval full_approval"`
	Acknowledged   bool                  `json:"acknowledged"`
}

// RejectRequest carries the reason an override is turned down
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// DurationResponse is the conditional approval duration that applies to a record
type DurationResponse struct {
	Table        models.EntityTable `json:"table"`
	Category     string             `json:"category"`
	DurationDays int                `json:"duration_days"`
}

// OverrideHandler exposes the override authorization workflow
type OverrideHandler struct {
	overrides *service.OverrideService
}

// NewOverrideHandler creates a new override handler
func NewOverrideHandler(overrides *service.OverrideService) *OverrideHandler {
	return &OverrideHandler{overrides: overrides}
}

func (b OverrideRequestBody) input() (service.OverrideInput, error) {
	followUp, err := parseFollowUp(b.FollowUpDate)
	if err != nil {
		return service.OverrideInput{}, err
	}
	return service.OverrideInput{
		Table:          b.Table,
		RecordID:       b.RecordID,
		RecordCategory: b.RecordCategory,
		BlockedChecks:  b.BlockedChecks,
		Reason:         b.Reason,
		Justification:  b.Justification,
		FollowUpDate:   followUp,
		OverrideType:   b.OverrideType,
		Acknowledged:   b.Acknowledged,
	}, nil
}

func parseFollowUp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if d, ok := compliance.ParseDate(value); ok {
		return d, nil
	}
	return time.Time{}, apperror.Validation("follow_up_date", "must be a date in YYYY-MM-DD or RFC 3339 format")
}

func (h *OverrideHandler) decodeInput(w http.ResponseWriter, r *http.Request) (service.OverrideInput, error) {
	var body OverrideRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		return service.OverrideInput{}, err
	}
	return body.input()
}

// Create files a pending override request
// @Summary Request override
// @Description File an override request for the failing checks of a record. The record stays blocked until a reviewer approves it.
// @Tags Overrides
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OverrideRequestBody true "Override request"
// @Success 201 {object} models.OverrideRequest
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Record already has an active override"
// @Router /overrides [post]
func (h *OverrideHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	in, err := h.decodeInput(w, r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	req, err := h.overrides.CreateRequest(r.Context(), in, actor)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, req)
}

// ApplyDirect grants an override immediately
// @Summary Apply override directly
// @Description Grant an override on the caller's own authority. Requires the override.direct capability and an explicit acknowledgement.
// @Tags Overrides
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OverrideRequestBody true "Override"
// @Success 201 {object} models.OverrideRequest
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Missing capability"
// @Failure 409 {object} ErrorResponse "Record already has an active override"
// @Router /overrides/direct [post]
func (h *OverrideHandler) ApplyDirect(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	in, err := h.decodeInput(w, r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	req, err := h.overrides.ApplyDirect(r.Context(), in, actor)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, req)
}

// Approve approves a pending override request
// @Summary Approve override
// @Tags Overrides
// @Produce json
// @Security BearerAuth
// @Param id path string true "Override request ID"
// @Success 200 {object} models.OverrideRequest
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Missing capability or own request"
// @Failure 404 {object} ErrorResponse "Override request not found"
// @Failure 409 {object} ErrorResponse "Request is no longer pending"
// @Router /overrides/{id}/approve [post]
func (h *OverrideHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req, err := h.overrides.Approve(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, req)
}

// Reject rejects a pending override request
// @Summary Reject override
// @Tags Overrides
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Override request ID"
// @Param request body RejectRequest true "Rejection reason"
// @Success 200 {object} models.OverrideRequest
// @Failure 400 {object} ErrorResponse "Missing reason"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Missing capability"
// @Failure 404 {object} ErrorResponse "Override request not found"
// @Failure 409 {object} ErrorResponse "Request is no longer pending"
// @Router /overrides/{id}/reject [post]
func (h *OverrideHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var body RejectRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondWithError(w, r, err)
		return
	}

	req, err := h.overrides.Reject(r.Context(), r.PathValue("id"), actor, body.Reason)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, req)
}

// List returns the override history of a record
// @Summary List overrides
// @Description List a record's override requests, newest first. Lapsed conditional grants are reported as expired.
// @Tags Overrides
// @Produce json
// @Security BearerAuth
// @Param table query string true "Entity table" Enums(materials, suppliers, products)
// @Param record_id query string true "Record ID"
// @Success 200 {array} models.OverrideRequest
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /overrides [get]
func (h *OverrideHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := h.overrides.ListForRecord(r.Context(), models.EntityTable(q.Get("table")), q.Get("record_id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, requests)
}

// Active returns the active override grant of a record
// @Summary Active override
// @Tags Overrides
// @Produce json
// @Security BearerAuth
// @Param table query string true "Entity table" Enums(materials, suppliers, products)
// @Param record_id query string true "Record ID"
// @Success 200 {object} models.OverrideRequest
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "No active override"
// @Router /overrides/active [get]
func (h *OverrideHandler) Active(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	table, recordID := models.EntityTable(q.Get("table")), q.Get("record_id")
	grant, err := h.overrides.ActiveGrant(r.Context(), table, recordID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if grant == nil {
		respondWithError(w, r, apperror.NotFound("active override for", string(table)+"/"+recordID))
		return
	}
	respondWithJSON(w, http.StatusOK, grant)
}

// Duration returns the conditional approval duration for a record
// @Summary Conditional approval duration
// @Tags Overrides
// @Produce json
// @Security BearerAuth
// @Param table query string true "Entity table" Enums(materials, suppliers, products)
// @Param category query string false "Record category"
// @Success 200 {object} DurationResponse
// @Failure 400 {object} ErrorResponse "Unknown table"
// @Router /overrides/duration [get]
func (h *OverrideHandler) Duration(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	table := models.EntityTable(q.Get("table"))
	if !table.Valid() {
		respondWithError(w, r, apperror.Validation("table", "unknown entity table "+string(table)))
		return
	}
	respondWithJSON(w, http.StatusOK, DurationResponse{
		Table:        table,
		Category:     q.Get("category"),
		DurationDays: h.overrides.DurationDays(table, q.Get("category")),
	})
}
