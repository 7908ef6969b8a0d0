package handlers

import (
	"net/http"
	"time"

	"qa-gate/internal/apperror"
	"qa-gate/internal/compliance"
	"qa-gate/internal/models"
	"qa-gate/internal/service"
)

// CreateDocumentRequest registers a compliance document on a record
type CreateDocumentRequest struct {
	Table          models.EntityTable `json:"related_table_name" validate:"required,oneof=materials suppliers products"`
	RecordID       string             `json:"related_record_id" validate:"required"`
	DocumentName   string             `json:"document_name" validate:"required,max=255"`
	DocumentType   string             `json:"document_type" validate:"required,max=100"`
	ExpirationDate *string            `json:"expiration_date,omitempty"`
}

// RenewDocumentRequest supersedes a current document with a new one of the same type
type RenewDocumentRequest struct {
	DocumentName   string  `json:"document_name" validate:"required,max=255"`
	DocumentType   string  `json:"document_type,omitempty" validate:"max=100"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
}

// DocumentHandler exposes the compliance document tracker
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Classify classifies an expiration date
// @Summary Classify expiration date
// @Description Classify an expiration date as expired, expiring_soon, valid or no_expiry
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param expiration_date query string false "Expiration date (YYYY-MM-DD)"
// @Param today query string false "Day to classify against (YYYY-MM-DD), defaults to today"
// @Success 200 {object} service.Classification
// @Failure 400 {object} ErrorResponse "Invalid today"
// @Router /documents/classify [get]
func (h *DocumentHandler) Classify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var today time.Time
	if v := q.Get("today"); v != "" {
		d, ok := compliance.ParseDate(v)
		if !ok {
			respondWithError(w, r, apperror.Validation("today", ErrMsgInvalidDate))
			return
		}
		today = d
	}

	var expiration *string
	if q.Has("expiration_date") {
		v := q.Get("expiration_date")
		expiration = &v
	}
	respondWithJSON(w, http.StatusOK, h.documents.Classify(expiration, today))
}

// Create registers a document on a record
// @Summary Create document
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDocumentRequest true "Document"
// @Success 201 {object} models.ComplianceDocument
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "A current document of this type exists"
// @Router /documents [post]
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	doc, err := h.documents.Create(r.Context(), req.Table, req.RecordID, models.DocumentFields{
		DocumentName:   req.DocumentName,
		DocumentType:   req.DocumentType,
		ExpirationDate: req.ExpirationDate,
	}, actor)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, doc)
}

// Renew replaces a current document with a new version
// @Summary Renew document
// @Description Mark the document as no longer current and register its successor
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param request body RenewDocumentRequest true "Successor document"
// @Success 201 {object} models.ComplianceDocument
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Document not found"
// @Failure 409 {object} ErrorResponse "Document already superseded"
// @Router /documents/{id}/renew [post]
func (h *DocumentHandler) Renew(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req RenewDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	doc, err := h.documents.Renew(r.Context(), r.PathValue("id"), models.DocumentFields{
		DocumentName:   req.DocumentName,
		DocumentType:   req.DocumentType,
		ExpirationDate: req.ExpirationDate,
	}, actor)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, doc)
}

// List returns a record's documents with their expiration status
// @Summary List documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param table query string true "Entity table" Enums(materials, suppliers, products)
// @Param record_id query string true "Record ID"
// @Success 200 {array} service.DocumentStatus
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs, err := h.documents.ListForRecord(r.Context(), models.EntityTable(q.Get("table")), q.Get("record_id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, docs)
}
