package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"qa-gate/internal/apperror"
	"qa-gate/internal/models"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// entityTable returns the quoted table name for an approvable entity, rejecting anything else
func entityTable(table models.EntityTable) (string, error) {
	if !table.Valid() {
		return "", apperror.Validation("table", fmt.Sprintf("unknown entity table %q", table))
	}
	return string(table), nil
}

// internal wraps an unclassified database error
func internal(err error, op string) error {
	return apperror.Wrap(err, apperror.KindInternal, op)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
