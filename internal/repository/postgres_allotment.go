package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hostel-portal/internal/domain"

	"go.uber.org/zap"
)

// PostgresAllotmentRepository moves students in and out of rooms. Every
// operation locks the application row first and the room row second, so two
// requests racing for the last bed are serialized by PostgreSQL.
type PostgresAllotmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresAllotmentRepository(db *sql.DB, logger *zap.Logger) *PostgresAllotmentRepository {
	return &PostgresAllotmentRepository{db: db, logger: logger}
}

func (r *PostgresAllotmentRepository) lockApplication(ctx context.Context, tx *sql.Tx, applicationNumber string) (*domain.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE application_number = $1 FOR UPDATE`
	a, err := scanApplication(tx.QueryRowContext(ctx, q, applicationNumber))
	if err != nil {
		return nil, notFound(err, "application", applicationNumber)
	}
	return a, nil
}

func (r *PostgresAllotmentRepository) lockRoom(ctx context.Context, tx *sql.Tx, roomNumber string) (*domain.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE room_number = $1 FOR UPDATE`
	rm, err := scanRoom(tx.QueryRowContext(ctx, q, roomNumber))
	if err != nil {
		return nil, notFound(err, "room", roomNumber)
	}
	return rm, nil
}

func (r *PostgresAllotmentRepository) saveRoom(ctx context.Context, tx *sql.Tx, rm *domain.Room) error {
	q := `
		UPDATE rooms
		SET occupied_count = $2, status = $3, version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING version, updated_at
	`
	return tx.QueryRowContext(ctx, q, rm.ID, rm.OccupiedCount, string(rm.Status)).Scan(&rm.Version, &rm.UpdatedAt)
}

func (r *PostgresAllotmentRepository) setRoomAllotted(ctx context.Context, tx *sql.Tx, a *domain.Application, roomNumber *string) error {
	q := `
		UPDATE applications
		SET room_allotted = $2, version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING version, updated_at
	`
	if err := tx.QueryRowContext(ctx, q, a.ID, nullString(roomNumber)).Scan(&a.Version, &a.UpdatedAt); err != nil {
		return err
	}
	a.RoomAllotted = roomNumber
	return nil
}

func (r *PostgresAllotmentRepository) AllotRoom(ctx context.Context, applicationNumber, roomNumber string) (*domain.Application, *domain.Room, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin allotment: %w", err)
	}
	defer tx.Rollback()

	a, err := r.lockApplication(ctx, tx, applicationNumber)
	if err != nil {
		return nil, nil, err
	}
	if err := checkAllottable(a); err != nil {
		return nil, nil, err
	}
	rm, err := r.lockRoom(ctx, tx, roomNumber)
	if err != nil {
		return nil, nil, err
	}
	if err := rm.Occupy(); err != nil {
		return nil, nil, err
	}
	if err := r.saveRoom(ctx, tx, rm); err != nil {
		return nil, nil, fmt.Errorf("update room %s: %w", roomNumber, err)
	}
	rn := roomNumber
	if err := r.setRoomAllotted(ctx, tx, a, &rn); err != nil {
		return nil, nil, fmt.Errorf("update application %s: %w", applicationNumber, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit allotment: %w", err)
	}
	r.logger.Debug("room allotted",
		zap.String("application_number", applicationNumber),
		zap.String("room_number", roomNumber),
		zap.Int("occupied_count", rm.OccupiedCount),
	)
	return a, rm, nil
}

// release frees the locked application's bed inside tx. A dangling room
// reference only clears the application.
func (r *PostgresAllotmentRepository) release(ctx context.Context, tx *sql.Tx, a *domain.Application) (*domain.Room, error) {
	roomNumber := *a.RoomAllotted
	rm, err := r.lockRoom(ctx, tx, roomNumber)
	switch {
	case err == nil:
		rm.Release()
		if err := r.saveRoom(ctx, tx, rm); err != nil {
			return nil, fmt.Errorf("update room %s: %w", roomNumber, err)
		}
	default:
		if !isNotFound(err) {
			return nil, err
		}
		r.logger.Warn("allotted room missing while releasing",
			zap.String("application_number", a.ApplicationNumber),
			zap.String("room_number", roomNumber),
		)
		rm = &domain.Room{RoomNumber: roomNumber}
	}
	if err := r.setRoomAllotted(ctx, tx, a, nil); err != nil {
		return nil, fmt.Errorf("update application %s: %w", a.ApplicationNumber, err)
	}
	return rm, nil
}

func (r *PostgresAllotmentRepository) ReleaseRoom(ctx context.Context, applicationNumber string) (*domain.Application, *domain.Room, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin release: %w", err)
	}
	defer tx.Rollback()

	a, err := r.lockApplication(ctx, tx, applicationNumber)
	if err != nil {
		return nil, nil, err
	}
	if !a.Housed() {
		return nil, nil, fmt.Errorf("%w: application %s holds no room", domain.ErrConflict, applicationNumber)
	}
	rm, err := r.release(ctx, tx, a)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit release: %w", err)
	}
	return a, rm, nil
}

func (r *PostgresAllotmentRepository) RemoveStudent(ctx context.Context, applicationNumber string) (*domain.Application, *domain.Room, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	a, err := r.lockApplication(ctx, tx, applicationNumber)
	if err != nil {
		return nil, nil, err
	}
	var rm *domain.Room
	if a.Housed() {
		if rm, err = r.release(ctx, tx, a); err != nil {
			return nil, nil, err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, a.ID); err != nil {
		return nil, nil, fmt.Errorf("delete application %s: %w", applicationNumber, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit remove: %w", err)
	}
	return a, rm, nil
}

func (r *PostgresAllotmentRepository) AuditOccupancy(ctx context.Context) ([]OccupancyRow, error) {
	q := `
		SELECT r.room_number, r.capacity, r.occupied_count, COUNT(a.id)
		FROM rooms r
		LEFT JOIN applications a ON a.room_allotted = r.room_number
		GROUP BY r.id, r.room_number, r.capacity, r.occupied_count
		ORDER BY r.room_number
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OccupancyRow{}
	for rows.Next() {
		var row OccupancyRow
		if err := rows.Scan(&row.RoomNumber, &row.Capacity, &row.OccupiedCount, &row.Allotted); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
