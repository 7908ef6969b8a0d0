package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qa-gate/internal/apperror"
	"qa-gate/internal/database"
	"qa-gate/internal/models"
)

// DocumentRepository handles database operations for compliance documents
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `
	id, related_record_id, related_table_name, document_name, document_type,
	to_char(expiration_date, 'YYYY-MM-DD'), is_current, supersedes_id, created_by, created_at
`

const insertDocument = `
	INSERT INTO compliance_documents (
		id, related_record_id, related_table_name, document_name, document_type,
		expiration_date, is_current, supersedes_id, created_by, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// Create stores a new current document. A current document of the same type on the
// same record is a conflict; renew it instead.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.ComplianceDocument) error {
	if _, err := entityTable(doc.RelatedTableName); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, insertDocument, documentArgs(doc)...)
	if isUniqueViolation(err) {
		return apperror.Conflict(fmt.Sprintf("a current %s document already exists for this record", doc.DocumentType))
	}
	if err != nil {
		return internal(err, "insert compliance document")
	}
	return nil
}

// GetByID retrieves a compliance document
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.ComplianceDocument, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM compliance_documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("compliance document", id)
	}
	if err != nil {
		return nil, internal(err, "get compliance document")
	}
	return doc, nil
}

// Renew retires the current document oldID and stores next as its successor in one
// transaction. Renewing a document that was already superseded is a conflict.
func (r *DocumentRepository) Renew(ctx context.Context, oldID string, next *models.ComplianceDocument) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var isCurrent bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_current FROM compliance_documents WHERE id = $1 FOR UPDATE`, oldID,
		).Scan(&isCurrent)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("compliance document", oldID)
		}
		if err != nil {
			return internal(err, "lock compliance document")
		}
		if !isCurrent {
			return apperror.Conflict("document has already been superseded")
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE compliance_documents SET is_current = FALSE WHERE id = $1`, oldID,
		); err != nil {
			return internal(err, "retire compliance document")
		}

		supersedes := oldID
		next.SupersedesID = &supersedes
		next.IsCurrent = true
		_, err = tx.ExecContext(ctx, insertDocument, documentArgs(next)...)
		if isUniqueViolation(err) {
			return apperror.Conflict("a current document of this type already exists for this record")
		}
		if err != nil {
			return internal(err, "insert renewed compliance document")
		}
		return nil
	})
}

// ListByRecord returns every document of a record, current and superseded
func (r *DocumentRepository) ListByRecord(ctx context.Context, table models.EntityTable, recordID string) ([]models.ComplianceDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM compliance_documents
		WHERE related_table_name = $1 AND related_record_id = $2
		ORDER BY document_type ASC, created_at DESC
	`, table, recordID)
	if err != nil {
		return nil, internal(err, "list compliance documents")
	}
	defer rows.Close()

	docs := []models.ComplianceDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, internal(err, "scan compliance document")
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, internal(err, "list compliance documents")
	}
	return docs, nil
}

func documentArgs(doc *models.ComplianceDocument) []any {
	return []any{
		doc.ID,
		doc.RelatedRecordID,
		doc.RelatedTableName,
		doc.DocumentName,
		doc.DocumentType,
		nullString(doc.ExpirationDate),
		doc.IsCurrent,
		nullString(doc.SupersedesID),
		doc.CreatedBy,
		doc.CreatedAt,
	}
}

func scanDocument(row rowScanner) (*models.ComplianceDocument, error) {
	var (
		doc        models.ComplianceDocument
		expiration sql.NullString
		supersedes sql.NullString
	)
	err := row.Scan(
		&doc.ID,
		&doc.RelatedRecordID,
		&doc.RelatedTableName,
		&doc.DocumentName,
		&doc.DocumentType,
		&expiration,
		&doc.IsCurrent,
		&supersedes,
		&doc.CreatedBy,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.ExpirationDate = stringPtr(expiration)
	doc.SupersedesID = stringPtr(supersedes)
	return &doc, nil
}
