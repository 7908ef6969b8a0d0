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

// ApprovalRepository persists approval status changes and the append-only approval log
type ApprovalRepository struct {
	db *sql.DB
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *sql.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

const insertLogEntry = `
	INSERT INTO approval_log (
		id, entity_id, entity_table, action, previous_status, new_status, notes, performed_by, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Transition moves the entity from entity.Status to entry.NewStatus and appends entry,
// both in one transaction. The status update is a compare-and-swap on the status the
// caller read; a concurrent change makes it fail with a conflict.
func (r *ApprovalRepository) Transition(ctx context.Context, entity models.ApprovableEntity, entry *models.ApprovalLogEntry) error {
	table, err := entityTable(entity.Table)
	if err != nil {
		return err
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := fmt.Sprintf(
			`UPDATE %s SET approval_status = $1, updated_at = NOW() WHERE id = $2 AND approval_status = $3`,
			table,
		)
		res, err := tx.ExecContext(ctx, query, entry.NewStatus, entity.ID, entity.Status)
		if err != nil {
			return internal(err, "update approval status")
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return internal(err, "update approval status")
		}
		if affected == 0 {
			return r.explainMissedUpdate(ctx, tx, table, entity)
		}

		return insertEntry(ctx, tx, entry)
	})
}

// AppendEvent records an audit event that does not change the status, after checking
// that the stored status still matches entity.Status.
func (r *ApprovalRepository) AppendEvent(ctx context.Context, entity models.ApprovableEntity, entry *models.ApprovalLogEntry) error {
	table, err := entityTable(entity.Table)
	if err != nil {
		return err
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var current models.ApprovalStatus
		query := fmt.Sprintf(`SELECT approval_status FROM %s WHERE id = $1 FOR SHARE`, table)
		err := tx.QueryRowContext(ctx, query, entity.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound(string(entity.Table), entity.ID)
		}
		if err != nil {
			return internal(err, "read approval status")
		}
		if current != entity.Status {
			return apperror.Conflict(fmt.Sprintf("status is %s, not %s", current, entity.Status))
		}

		return insertEntry(ctx, tx, entry)
	})
}

// explainMissedUpdate distinguishes a missing record from a lost race
func (r *ApprovalRepository) explainMissedUpdate(ctx context.Context, tx *sql.Tx, table string, entity models.ApprovableEntity) error {
	var current models.ApprovalStatus
	query := fmt.Sprintf(`SELECT approval_status FROM %s WHERE id = $1`, table)
	err := tx.QueryRowContext(ctx, query, entity.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(string(entity.Table), entity.ID)
	}
	if err != nil {
		return internal(err, "read approval status")
	}
	return apperror.Conflict(fmt.Sprintf("status changed concurrently: expected %s, found %s", entity.Status, current))
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry *models.ApprovalLogEntry) error {
	_, err := tx.ExecContext(ctx, insertLogEntry,
		entry.ID,
		entry.EntityID,
		entry.EntityTable,
		entry.Action,
		entry.PreviousStatus,
		entry.NewStatus,
		nullString(entry.Notes),
		entry.PerformedBy,
		entry.Timestamp,
	)
	if err != nil {
		return internal(err, "insert approval log entry")
	}
	return nil
}

// GetStatus returns the stored approval status of an entity
func (r *ApprovalRepository) GetStatus(ctx context.Context, tableName models.EntityTable, id string) (models.ApprovalStatus, error) {
	table, err := entityTable(tableName)
	if err != nil {
		return "", err
	}

	var status models.ApprovalStatus
	query := fmt.Sprintf(`SELECT approval_status FROM %s WHERE id = $1`, table)
	err = r.db.QueryRowContext(ctx, query, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.NotFound(string(tableName), id)
	}
	if err != nil {
		return "", internal(err, "read approval status")
	}
	return status, nil
}

// ListByEntity returns the approval log of an entity, oldest first
func (r *ApprovalRepository) ListByEntity(ctx context.Context, tableName models.EntityTable, id string) ([]models.ApprovalLogEntry, error) {
	query := `
		SELECT id, entity_id, entity_table, action, previous_status, new_status, notes, performed_by, created_at
		FROM approval_log
		WHERE entity_table = $1 AND entity_id = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tableName, id)
	if err != nil {
		return nil, internal(err, "list approval log")
	}
	defer rows.Close()

	entries := []models.ApprovalLogEntry{}
	for rows.Next() {
		var entry models.ApprovalLogEntry
		var notes sql.NullString
		err := rows.Scan(
			&entry.ID,
			&entry.EntityID,
			&entry.EntityTable,
			&entry.Action,
			&entry.PreviousStatus,
			&entry.NewStatus,
			&notes,
			&entry.PerformedBy,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, internal(err, "scan approval log entry")
		}
		entry.Notes = stringPtr(notes)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, internal(err, "list approval log")
	}

	return entries, nil
}
