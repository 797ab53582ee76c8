package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hostel-portal/internal/domain"
)

const applicationColumns = `
	id::text, application_number, name, email, dob, year, branch, gender,
	distance, rank, counseling_round, status, room_allotted,
	fee_status, mess_fee_per_month, months_due, fee_amount_due, fee_due_date,
	password_hash, version, created_at, updated_at`

type PostgresApplicationsRepository struct {
	db *sql.DB
}

func NewPostgresApplicationsRepository(db *sql.DB) *PostgresApplicationsRepository {
	return &PostgresApplicationsRepository{db: db}
}

func scanApplication(row rowScanner) (*domain.Application, error) {
	var a domain.Application
	var room sql.NullString
	var due sql.NullTime
	if err := row.Scan(
		&a.ID, &a.ApplicationNumber, &a.Name, &a.Email, &a.DOB, &a.Year, &a.Branch, &a.Gender,
		&a.Distance, &a.Rank, &a.CounselingRound, &a.Status, &room,
		&a.FeeStatus, &a.MessFeePerMonth, &a.MonthsDue, &a.FeeAmountDue, &due,
		&a.PasswordHash, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if room.Valid {
		r := room.String
		a.RoomAllotted = &r
	}
	if due.Valid {
		d := due.Time.UTC()
		a.FeeDueDate = &d
	}
	return &a, nil
}

func (r *PostgresApplicationsRepository) CreateApplication(ctx context.Context, a *domain.Application) error {
	if a == nil {
		return fmt.Errorf("application is required")
	}
	q := `
		INSERT INTO applications (
			application_number, name, email, dob, year, branch, gender,
			distance, rank, counseling_round, status,
			fee_status, mess_fee_per_month, months_due, fee_amount_due, fee_due_date,
			password_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id::text, version, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, q,
		a.ApplicationNumber, a.Name, a.Email, a.DOB, a.Year, a.Branch, a.Gender,
		a.Distance, a.Rank, a.CounselingRound, string(a.Status),
		string(a.FeeStatus), a.MessFeePerMonth, a.MonthsDue, a.FeeAmountDue, nullTime(a.FeeDueDate),
		a.PasswordHash,
	).Scan(&a.ID, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return mapPQError(err, "application "+a.ApplicationNumber)
	}
	return nil
}

func (r *PostgresApplicationsRepository) GetApplication(ctx context.Context, applicationNumber string) (*domain.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE application_number = $1`
	a, err := scanApplication(r.db.QueryRowContext(ctx, q, applicationNumber))
	if err != nil {
		return nil, notFound(err, "application", applicationNumber)
	}
	return a, nil
}

func (r *PostgresApplicationsRepository) GetApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	if !validID(id) {
		return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	a, err := scanApplication(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err, "application", id)
	}
	return a, nil
}

func (r *PostgresApplicationsRepository) ListApplications(ctx context.Context, f ApplicationFilter) ([]*domain.Application, error) {
	var where []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.HousedOnly {
		where = append(where, "room_allotted IS NOT NULL")
	}
	if f.Unhoused {
		where = append(where, "room_allotted IS NULL")
	}

	q := `SELECT ` + applicationColumns + ` FROM applications`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresApplicationsRepository) UpdateApplication(ctx context.Context, a *domain.Application) error {
	q := `
		UPDATE applications
		SET status = $3,
			fee_status = $4,
			mess_fee_per_month = $5,
			months_due = $6,
			fee_amount_due = $7,
			fee_due_date = $8,
			version = version + 1,
			updated_at = now()
		WHERE application_number = $1 AND version = $2
		RETURNING version, updated_at, room_allotted
	`
	var room sql.NullString
	err := r.db.QueryRowContext(ctx, q,
		a.ApplicationNumber, a.Version,
		string(a.Status), string(a.FeeStatus), a.MessFeePerMonth, a.MonthsDue, a.FeeAmountDue, nullTime(a.FeeDueDate),
	).Scan(&a.Version, &a.UpdatedAt, &room)
	if err == sql.ErrNoRows {
		return r.missOrStale(ctx, a.ApplicationNumber)
	}
	if err != nil {
		return mapPQError(err, "application "+a.ApplicationNumber)
	}
	a.RoomAllotted = nil
	if room.Valid {
		s := room.String
		a.RoomAllotted = &s
	}
	return nil
}

// missOrStale explains why a version-checked write matched no row.
func (r *PostgresApplicationsRepository) missOrStale(ctx context.Context, applicationNumber string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE application_number = $1)`, applicationNumber,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("application %s: %w", applicationNumber, domain.ErrNotFound)
	}
	return fmt.Errorf("application %s: %w", applicationNumber, domain.ErrVersionMismatch)
}

func (r *PostgresApplicationsRepository) DeleteApplication(ctx context.Context, applicationNumber string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM applications WHERE application_number = $1 AND room_allotted IS NULL`, applicationNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	a, err := r.GetApplication(ctx, applicationNumber)
	if err != nil {
		return err
	}
	if !a.Housed() {
		return fmt.Errorf("application %s: %w", applicationNumber, domain.ErrVersionMismatch)
	}
	return fmt.Errorf("%w: application %s holds room %s", domain.ErrConflict, applicationNumber, *a.RoomAllotted)
}
