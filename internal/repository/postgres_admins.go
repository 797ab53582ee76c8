package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hostel-portal/internal/domain"
)

type PostgresAdminsRepository struct {
	db *sql.DB
}

func NewPostgresAdminsRepository(db *sql.DB) *PostgresAdminsRepository {
	return &PostgresAdminsRepository{db: db}
}

const adminColumns = `id::text, admin_id, name, email, role, password_hash, created_at`

func scanAdmin(row rowScanner) (*domain.Admin, error) {
	var a domain.Admin
	if err := row.Scan(&a.ID, &a.AdminID, &a.Name, &a.Email, &a.Role, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresAdminsRepository) CreateAdmin(ctx context.Context, a *domain.Admin) error {
	if a.Role == "" {
		a.Role = domain.RoleAdmin
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO admins (admin_id, name, email, role, password_hash) VALUES ($1, $2, $3, $4, $5) RETURNING id::text, created_at`,
		a.AdminID, a.Name, a.Email, a.Role, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return mapPQError(err, "admin "+a.Email)
	}
	return nil
}

func (r *PostgresAdminsRepository) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	if !validID(id) {
		return nil, fmt.Errorf("admin %s: %w", id, domain.ErrNotFound)
	}
	a, err := scanAdmin(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "admin", id)
	}
	return a, nil
}

func (r *PostgresAdminsRepository) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	a, err := scanAdmin(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, notFound(err, "admin", email)
	}
	return a, nil
}

func (r *PostgresAdminsRepository) AdminExists(ctx context.Context, email, adminID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE lower(email) = lower($1) OR admin_id = $2)`,
		email, adminID,
	).Scan(&exists)
	return exists, err
}
