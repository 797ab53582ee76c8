package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hostel-portal/internal/domain"
)

const roomColumns = `id::text, room_number, capacity, room_type, status, occupied_count, version, created_at, updated_at`

type PostgresRoomsRepository struct {
	db *sql.DB
}

func NewPostgresRoomsRepository(db *sql.DB) *PostgresRoomsRepository {
	return &PostgresRoomsRepository{db: db}
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	var rm domain.Room
	if err := row.Scan(&rm.ID, &rm.RoomNumber, &rm.Capacity, &rm.Type, &rm.Status,
		&rm.OccupiedCount, &rm.Version, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *PostgresRoomsRepository) CreateRoom(ctx context.Context, rm *domain.Room) error {
	q := `
		INSERT INTO rooms (room_number, capacity, room_type, status, occupied_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, version, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, q, rm.RoomNumber, rm.Capacity, string(rm.Type), string(rm.Status), rm.OccupiedCount).
		Scan(&rm.ID, &rm.Version, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return mapPQError(err, "room "+rm.RoomNumber)
	}
	return nil
}

func (r *PostgresRoomsRepository) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	if !validID(id) {
		return nil, fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
	}
	rm, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "room", id)
	}
	return rm, nil
}

func (r *PostgresRoomsRepository) GetRoomByNumber(ctx context.Context, roomNumber string) (*domain.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE room_number = $1`, roomNumber))
	if err != nil {
		return nil, notFound(err, "room", roomNumber)
	}
	return rm, nil
}

func (r *PostgresRoomsRepository) ListRooms(ctx context.Context, status domain.RoomStatus) ([]*domain.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms`
	var args []any
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, string(status))
	}
	q += ` ORDER BY room_number`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *PostgresRoomsRepository) UpdateRoom(ctx context.Context, rm *domain.Room) error {
	if !validID(rm.ID) {
		return fmt.Errorf("room %s: %w", rm.ID, domain.ErrNotFound)
	}
	q := `
		UPDATE rooms
		SET capacity = $3, room_type = $4, status = $5,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING ` + roomColumns
	updated, err := scanRoom(r.db.QueryRowContext(ctx, q, rm.ID, rm.Version, rm.Capacity, string(rm.Type), string(rm.Status)))
	if err == sql.ErrNoRows {
		if _, gerr := r.GetRoom(ctx, rm.ID); gerr != nil {
			return gerr
		}
		return fmt.Errorf("room %s: %w", rm.RoomNumber, domain.ErrVersionMismatch)
	}
	if err != nil {
		return mapPQError(err, "room "+rm.RoomNumber)
	}
	*rm = *updated
	return nil
}

func (r *PostgresRoomsRepository) DeleteRoom(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1 AND occupied_count = 0`, id)
	if err != nil {
		return mapPQError(err, "room "+id)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	rm, err := r.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: room %s is occupied by %d student(s)", domain.ErrConflict, rm.RoomNumber, rm.OccupiedCount)
}
