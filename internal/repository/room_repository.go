package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// RoomRepo provides data access to the `rooms` table. Status mutations go
// through conditional updates so concurrent lifecycle transitions never
// overwrite each other; descriptive fields are updated separately and
// never touch the status column. All timestamps are stored in UTC.
type RoomRepo struct {
	DB *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = `id, number, status, capacity, description, characteristics, floor, price_per_night, created_at, updated_at`

func scanRoom(row *sql.Row) (model.Room, error) {
	var rm model.Room
	err := row.Scan(&rm.ID, &rm.Number, &rm.Status, &rm.Capacity, &rm.Description,
		&rm.Characteristics, &rm.Floor, &rm.PricePerNight, &rm.CreatedAt, &rm.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Room{}, ErrNotFound
	}
	return rm, err
}

// Create inserts a new room and returns the stored row. New rooms start
// in the status supplied by the caller (AVAILABLE unless an admin seeds
// them differently).
func (r *RoomRepo) Create(ctx context.Context, rm model.Room) (model.Room, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO rooms (number, status, capacity, description, characteristics, floor, price_per_night)
		 VALUES (?,?,?,?,?,?,?)`,
		rm.Number, rm.Status, rm.Capacity, rm.Description, rm.Characteristics, rm.Floor, rm.PricePerNight)
	if err != nil {
		return model.Room{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Room{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single room or ErrNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	return scanRoom(row)
}

// List returns rooms optionally filtered by status, with pagination.
func (r *RoomRepo) List(ctx context.Context, status model.RoomStatus, limit, offset int) ([]model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Room
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.Number, &rm.Status, &rm.Capacity, &rm.Description,
			&rm.Characteristics, &rm.Floor, &rm.PricePerNight, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// UpdateDetails updates the descriptive fields of a room. The status
// column is deliberately not part of this statement; status changes go
// through UpdateStatusIf so they stay consistent with the booking
// lifecycle.
func (r *RoomRepo) UpdateDetails(ctx context.Context, rm model.Room) (model.Room, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE rooms SET number=?, capacity=?, description=?, characteristics=?, floor=?, price_per_night=?, updated_at=UTC_TIMESTAMP()
		 WHERE id=?`,
		rm.Number, rm.Capacity, rm.Description, rm.Characteristics, rm.Floor, rm.PricePerNight, rm.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Room{}, ErrInvalidArgument
		}
		return model.Room{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean an identical update; confirm existence.
		if _, err := r.GetByID(ctx, rm.ID); err != nil {
			return model.Room{}, err
		}
	}
	return r.GetByID(ctx, rm.ID)
}

// UpdateStatusIf atomically moves a room from one status to another. It
// returns true when the conditional update matched, false when the room
// was not in the expected status (or does not exist). This is the only
// way room status changes, so concurrent transitions serialize on the
// database row.
func (r *RoomRepo) UpdateStatusIf(ctx context.Context, id uint64, from, to model.RoomStatus) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE rooms SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND status=?`,
		to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a room. Returns ErrNotFound when no row matched.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RoomStats summarizes rooms grouped by status.
type RoomStats struct {
	Total    int                      `json:"total"`
	ByStatus map[model.RoomStatus]int `json:"by_status"`
}

// Stats returns room counts grouped by status.
func (r *RoomRepo) Stats(ctx context.Context) (RoomStats, error) {
	stats := RoomStats{ByStatus: map[model.RoomStatus]int{}}
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM rooms GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var st model.RoomStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return stats, err
		}
		stats.ByStatus[st] = n
		stats.Total += n
	}
	return stats, rows.Err()
}
