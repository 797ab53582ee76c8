package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hostel-portal/internal/domain"
)

type PostgresNoticesRepository struct {
	db *sql.DB
}

func NewPostgresNoticesRepository(db *sql.DB) *PostgresNoticesRepository {
	return &PostgresNoticesRepository{db: db}
}

const noticeColumns = `id::text, title, content, is_active, created_at, updated_at`

func scanNotice(row rowScanner) (*domain.Notice, error) {
	var n domain.Notice
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.IsActive, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PostgresNoticesRepository) CreateNotice(ctx context.Context, n *domain.Notice) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO notices (title, content, is_active) VALUES ($1, $2, $3) RETURNING id::text, created_at, updated_at`,
		n.Title, n.Content, n.IsActive,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (r *PostgresNoticesRepository) GetNotice(ctx context.Context, id string) (*domain.Notice, error) {
	if !validID(id) {
		return nil, fmt.Errorf("notice %s: %w", id, domain.ErrNotFound)
	}
	n, err := scanNotice(r.db.QueryRowContext(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "notice", id)
	}
	return n, nil
}

func (r *PostgresNoticesRepository) ListNotices(ctx context.Context, activeOnly bool) ([]*domain.Notice, error) {
	q := `SELECT ` + noticeColumns + ` FROM notices`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Notice{}
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresNoticesRepository) UpdateNotice(ctx context.Context, n *domain.Notice) error {
	if !validID(n.ID) {
		return fmt.Errorf("notice %s: %w", n.ID, domain.ErrNotFound)
	}
	q := `
		UPDATE notices SET title = $2, content = $3, is_active = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + noticeColumns
	updated, err := scanNotice(r.db.QueryRowContext(ctx, q, n.ID, n.Title, n.Content, n.IsActive))
	if err != nil {
		return notFound(err, "notice", n.ID)
	}
	*n = *updated
	return nil
}

func (r *PostgresNoticesRepository) DeleteNotice(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("notice %s: %w", id, domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notice %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
