package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"qa-gate/internal/apperror"
	"qa-gate/internal/database"
	"qa-gate/internal/models"
)

// OverrideRepository handles database operations for override requests
type OverrideRepository struct {
	db *sql.DB
}

// NewOverrideRepository creates a new override repository
func NewOverrideRepository(db *sql.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

const overrideColumns = `
	id, related_record_id, related_table_name, record_category, blocked_checks, snapshot_digest,
	requested_by, override_reason, justification, follow_up_date, override_type, duration_days,
	acknowledged, status, approved_by, rejection_reason, expires_at, decided_at, created_at
`

// Decision is the outcome written when a pending override is approved or rejected
type Decision struct {
	Status          models.OverrideStatus
	ApprovedBy      string
	RejectionReason *string
	ExpiresAt       *time.Time
	DecidedAt       time.Time
}

// CreateExclusive inserts req unless the record already has a pending or unexpired
// approved override. The record row is locked for the duration of the transaction so
// concurrent creators for the same record are serialized; lapsed conditional grants
// are marked expired before the check.
func (r *OverrideRepository) CreateExclusive(ctx context.Context, req *models.OverrideRequest, now time.Time) error {
	table, err := entityTable(req.RelatedTableName)
	if err != nil {
		return err
	}

	blocked, err := json.Marshal(req.BlockedChecks)
	if err != nil {
		return internal(err, "encode blocked checks")
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked string
		lock := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, table)
		err := tx.QueryRowContext(ctx, lock, req.RelatedRecordID).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound(string(req.RelatedTableName), req.RelatedRecordID)
		}
		if err != nil {
			return internal(err, "lock record")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE override_requests
			SET status = 'expired'
			WHERE related_table_name = $1 AND related_record_id = $2
			  AND status = 'approved' AND override_type = 'conditional_approval'
			  AND expires_at IS NOT NULL AND expires_at <= $3
		`, req.RelatedTableName, req.RelatedRecordID, now)
		if err != nil {
			return internal(err, "expire lapsed overrides")
		}

		var activeID string
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM override_requests
			WHERE related_table_name = $1 AND related_record_id = $2 AND status IN ('pending', 'approved')
			LIMIT 1
		`, req.RelatedTableName, req.RelatedRecordID).Scan(&activeID)
		switch {
		case err == nil:
			return apperror.Conflict(fmt.Sprintf("override %s is already active for this record", activeID))
		case !errors.Is(err, sql.ErrNoRows):
			return internal(err, "check active overrides")
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO override_requests (`+overrideColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		`,
			req.ID,
			req.RelatedRecordID,
			req.RelatedTableName,
			req.RecordCategory,
			blocked,
			req.SnapshotDigest,
			req.RequestedBy,
			req.OverrideReason,
			req.Justification,
			req.FollowUpDate,
			req.OverrideType,
			req.DurationDays,
			req.Acknowledged,
			req.Status,
			nullString(req.ApprovedBy),
			nullString(req.RejectionReason),
			req.ExpiresAt,
			req.DecidedAt,
			req.CreatedAt,
		)
		if isUniqueViolation(err) {
			return apperror.Conflict("an override is already active for this record")
		}
		if err != nil {
			return internal(err, "insert override request")
		}
		return nil
	})
}

// GetByID retrieves an override request
func (r *OverrideRepository) GetByID(ctx context.Context, id string) (*models.OverrideRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+overrideColumns+` FROM override_requests WHERE id = $1`, id)
	req, err := scanOverride(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("override request", id)
	}
	if err != nil {
		return nil, internal(err, "get override request")
	}
	return req, nil
}

// Decide moves a pending override to its decided status. The update only applies while
// the request is still pending, so of two concurrent deciders exactly one wins.
func (r *OverrideRepository) Decide(ctx context.Context, id string, d Decision) (*models.OverrideRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE override_requests
		SET status = $1, approved_by = $2, rejection_reason = $3, expires_at = $4, decided_at = $5
		WHERE id = $6 AND status = 'pending'
		RETURNING `+overrideColumns,
		d.Status, d.ApprovedBy, nullString(d.RejectionReason), d.ExpiresAt, d.DecidedAt, id,
	)
	req, err := scanOverride(row)
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, apperror.Conflict(fmt.Sprintf("override request is %s, not pending", current.Status))
	}
	if err != nil {
		return nil, internal(err, "decide override request")
	}
	return req, nil
}

// FindActiveGrant returns the approved override currently suppressing blocking for a
// record, or nil when there is none.
func (r *OverrideRepository) FindActiveGrant(ctx context.Context, table models.EntityTable, recordID string, now time.Time) (*models.OverrideRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+overrideColumns+`
		FROM override_requests
		WHERE related_table_name = $1 AND related_record_id = $2 AND status = 'approved'
		  AND (override_type = 'full_approval' OR expires_at IS NULL OR expires_at > $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, table, recordID, now)
	req, err := scanOverride(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err, "find active override")
	}
	return req, nil
}

// ListByRecord returns every override of a record, newest first
func (r *OverrideRepository) ListByRecord(ctx context.Context, table models.EntityTable, recordID string) ([]models.OverrideRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+overrideColumns+`
		FROM override_requests
		WHERE related_table_name = $1 AND related_record_id = $2
		ORDER BY created_at DESC
	`, table, recordID)
	if err != nil {
		return nil, internal(err, "list override requests")
	}
	defer rows.Close()

	requests := []models.OverrideRequest{}
	for rows.Next() {
		req, err := scanOverride(rows)
		if err != nil {
			return nil, internal(err, "scan override request")
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, internal(err, "list override requests")
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOverride(row rowScanner) (*models.OverrideRequest, error) {
	var (
		req             models.OverrideRequest
		blocked         []byte
		approvedBy      sql.NullString
		rejectionReason sql.NullString
		expiresAt       sql.NullTime
		decidedAt       sql.NullTime
	)
	err := row.Scan(
		&req.ID,
		&req.RelatedRecordID,
		&req.RelatedTableName,
		&req.RecordCategory,
		&blocked,
		&req.SnapshotDigest,
		&req.RequestedBy,
		&req.OverrideReason,
		&req.Justification,
		&req.FollowUpDate,
		&req.OverrideType,
		&req.DurationDays,
		&req.Acknowledged,
		&req.Status,
		&approvedBy,
		&rejectionReason,
		&expiresAt,
		&decidedAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blocked, &req.BlockedChecks); err != nil {
		return nil, fmt.Errorf("decode blocked checks: %w", err)
	}
	req.ApprovedBy = stringPtr(approvedBy)
	req.RejectionReason = stringPtr(rejectionReason)
	req.ExpiresAt = timePtr(expiresAt)
	req.DecidedAt = timePtr(decidedAt)
	return &req, nil
}
