package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hostel-portal/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// mapPQError turns constraint violations into domain errors; anything else is
// returned unchanged.
func mapPQError(err error, what string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		return fmt.Errorf("%w: %s already exists", domain.ErrConflict, what)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %s is still referenced", domain.ErrConflict, what)
	case "23514": // check_violation
		return fmt.Errorf("%w: %s violates %s", domain.ErrInvalid, what, pqErr.Constraint)
	}
	return err
}

func notFound(err error, kind, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, key, domain.ErrNotFound)
	}
	return err
}

// validID guards uuid columns so a malformed path id reads as not found
// instead of a PostgreSQL syntax error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
