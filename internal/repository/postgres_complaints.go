package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hostel-portal/internal/domain"
)

const complaintColumns = `id::text, student_id, student_name, application_number, room_allotted,
	category, subject, details, status, filed_at, updated_at`

type PostgresComplaintsRepository struct {
	db *sql.DB
}

func NewPostgresComplaintsRepository(db *sql.DB) *PostgresComplaintsRepository {
	return &PostgresComplaintsRepository{db: db}
}

func scanComplaint(row rowScanner) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(&c.ID, &c.StudentID, &c.StudentName, &c.ApplicationNumber, &c.RoomAllotted,
		&c.Category, &c.Subject, &c.Details, &c.Status, &c.FiledAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresComplaintsRepository) CreateComplaint(ctx context.Context, c *domain.Complaint) error {
	if c.Status == "" {
		c.Status = domain.ComplaintPending
	}
	q := `
		INSERT INTO complaints (student_id, student_name, application_number, room_allotted, category, subject, details, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, filed_at, updated_at
	`
	return r.db.QueryRowContext(ctx, q,
		c.StudentID, c.StudentName, c.ApplicationNumber, c.RoomAllotted, c.Category, c.Subject, c.Details, string(c.Status),
	).Scan(&c.ID, &c.FiledAt, &c.UpdatedAt)
}

func (r *PostgresComplaintsRepository) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	if !validID(id) {
		return nil, fmt.Errorf("complaint %s: %w", id, domain.ErrNotFound)
	}
	c, err := scanComplaint(r.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "complaint", id)
	}
	return c, nil
}

func (r *PostgresComplaintsRepository) ListComplaints(ctx context.Context, applicationNumber string) ([]*domain.Complaint, error) {
	q := `SELECT ` + complaintColumns + ` FROM complaints`
	var args []any
	if applicationNumber != "" {
		q += ` WHERE application_number = $1`
		args = append(args, applicationNumber)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresComplaintsRepository) UpdateComplaintStatus(ctx context.Context, id string, from, to domain.ComplaintStatus) (*domain.Complaint, error) {
	if !validID(id) {
		return nil, fmt.Errorf("complaint %s: %w", id, domain.ErrNotFound)
	}
	q := `
		UPDATE complaints SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + complaintColumns
	c, err := scanComplaint(r.db.QueryRowContext(ctx, q, id, string(from), string(to)))
	if err == sql.ErrNoRows {
		if _, gerr := r.GetComplaint(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("complaint %s: %w", id, domain.ErrVersionMismatch)
	}
	return c, err
}
