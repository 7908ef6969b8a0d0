package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"qa-gate/internal/apperror"
	"qa-gate/internal/compliance"
	"qa-gate/internal/models"
	"qa-gate/internal/observability"
)

// DocumentStatus is a document together with its expiration classification
type DocumentStatus struct {
	models.ComplianceDocument
	ExpirationStatus compliance.ExpirationStatus `json:"expiration_status"`
	DaysUntilExpiry  *int                        `json:"days_until_expiry,omitempty"`
}

// DocumentService tracks compliance documents and their renewals
type DocumentService struct {
	store DocumentStore
	now   func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(store DocumentStore) *DocumentService {
	return &DocumentService{store: store, now: time.Now}
}

// WithClock overrides the clock for testing
func (s *DocumentService) WithClock(now func() time.Time) *DocumentService {
	s.now = now
	return s
}

// Create registers the first current document of a type on a record
func (s *DocumentService) Create(ctx context.Context, table models.EntityTable, recordID string, fields models.DocumentFields, actor models.Actor) (doc *models.ComplianceDocument, err error) {
	ctx, span := observability.StartSpan(ctx, "document.create",
		attribute.String("record.table", string(table)),
		attribute.String("record.id", recordID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := requireRecord(table, recordID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fields.DocumentType) == "" {
		return nil, apperror.Validation("document_type", "document type is required")
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	doc = s.newDocument(table, recordID, strings.TrimSpace(fields.DocumentType), fields, actor)
	if err := s.store.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Renew replaces the current document oldID with a new current document of the same
// type. Both writes happen together or not at all.
func (s *DocumentService) Renew(ctx context.Context, oldID string, fields models.DocumentFields, actor models.Actor) (doc *models.ComplianceDocument, err error) {
	ctx, span := observability.StartSpan(ctx, "document.renew", attribute.String("document.id", oldID))
	defer func() { observability.EndSpan(span, err) }()

	if err := validateFields(fields); err != nil {
		return nil, err
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	old, err := s.store.GetByID(ctx, oldID)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(fields.DocumentType); t != "" && t != old.DocumentType {
		return nil, apperror.Validation("document_type",
			fmt.Sprintf("a renewal keeps the document type %q", old.DocumentType))
	}

	doc = s.newDocument(old.RelatedTableName, old.RelatedRecordID, old.DocumentType, fields, actor)
	if err := s.store.Renew(ctx, oldID, doc); err != nil {
		return nil, err
	}

	slog.Info("Compliance document renewed",
		"old_document_id", oldID,
		"document_id", doc.ID,
		"document_type", doc.DocumentType,
		"record_id", doc.RelatedRecordID,
	)
	return doc, nil
}

// ListForRecord returns the documents of a record classified against today
func (s *DocumentService) ListForRecord(ctx context.Context, table models.EntityTable, recordID string) ([]DocumentStatus, error) {
	if err := requireRecord(table, recordID); err != nil {
		return nil, err
	}
	docs, err := s.store.ListByRecord(ctx, table, recordID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC()
	out := make([]DocumentStatus, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentStatus{
			ComplianceDocument: d,
			ExpirationStatus:   compliance.Classify(d.ExpirationDate, today),
			DaysUntilExpiry:    daysUntilExpiry(d.ExpirationDate, today),
		})
	}
	return out, nil
}

// Classification is the expiration status of a date as of a given day
type Classification struct {
	ExpirationDate   *string                     `json:"expiration_date,omitempty"`
	Today            string                      `json:"today"`
	ExpirationStatus compliance.ExpirationStatus `json:"expiration_status"`
	DaysUntilExpiry  *int                        `json:"days_until_expiry,omitempty"`
}

// Classify classifies an expiration date as of today, or as of now when today is zero
func (s *DocumentService) Classify(expirationDate *string, today time.Time) Classification {
	if today.IsZero() {
		today = s.now().UTC()
	}
	return Classification{
		ExpirationDate:   expirationDate,
		Today:            today.Format(compliance.DateLayout),
		ExpirationStatus: compliance.Classify(expirationDate, today),
		DaysUntilExpiry:  daysUntilExpiry(expirationDate, today),
	}
}

func daysUntilExpiry(expirationDate *string, today time.Time) *int {
	if expirationDate == nil {
		return nil
	}
	date, ok := compliance.ParseDate(*expirationDate)
	if !ok {
		return nil
	}
	days := compliance.DaysUntil(date, today)
	return &days
}

func (s *DocumentService) newDocument(table models.EntityTable, recordID, docType string, fields models.DocumentFields, actor models.Actor) *models.ComplianceDocument {
	doc := &models.ComplianceDocument{
		ID:               uuid.NewString(),
		RelatedRecordID:  recordID,
		RelatedTableName: table,
		DocumentName:     strings.TrimSpace(fields.DocumentName),
		DocumentType:     docType,
		IsCurrent:        true,
		CreatedBy:        actor.ID,
		CreatedAt:        s.now().UTC(),
	}
	if fields.ExpirationDate != nil && strings.TrimSpace(*fields.ExpirationDate) != "" {
		exp := strings.TrimSpace(*fields.ExpirationDate)
		doc.ExpirationDate = &exp
	}
	return doc
}

func validateFields(fields models.DocumentFields) error {
	if strings.TrimSpace(fields.DocumentName) == "" {
		return apperror.Validation("document_name", "document name is required")
	}
	if fields.ExpirationDate != nil {
		exp := strings.TrimSpace(*fields.ExpirationDate)
		if _, ok := compliance.ParseDate(exp); exp != "" && !ok {
			return apperror.Validation("expiration_date", "expiration date must be a calendar date in YYYY-MM-DD form")
		}
	}
	return nil
}
