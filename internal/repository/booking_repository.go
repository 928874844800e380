package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// BookingRepo provides data access to the `bookings` table. Every status
// transition is expressed as a single conditional UPDATE gated on the
// current status, so concurrent API calls and sweeper runs serialize on
// the database row instead of racing through read-then-write sequences.
// All timestamps are stored in UTC.
type BookingRepo struct {
	DB *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = `id, room_id, user_id, check_in, check_out, guest_name, guest_email, guest_phone,
	number_of_guests, special_requests, status, created_at, updated_at`

func scanBooking(sc interface {
	Scan(dest ...interface{}) error
}) (model.Booking, error) {
	var b model.Booking
	var special sql.NullString
	err := sc.Scan(&b.ID, &b.RoomID, &b.UserID, &b.CheckIn, &b.CheckOut, &b.GuestName,
		&b.GuestEmail, &b.GuestPhone, &b.NumberOfGuests, &special, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	if special.Valid {
		s := special.String
		b.SpecialRequests = &s
	}
	return b, nil
}

// Insert stores a new booking and returns the created row.
func (r *BookingRepo) Insert(ctx context.Context, b model.Booking) (model.Booking, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO bookings (room_id, user_id, check_in, check_out, guest_name, guest_email, guest_phone,
		   number_of_guests, special_requests, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.RoomID, b.UserID, b.CheckIn.UTC(), b.CheckOut.UTC(), b.GuestName, b.GuestEmail, b.GuestPhone,
		b.NumberOfGuests, b.SpecialRequests, b.Status)
	if err != nil {
		return model.Booking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Booking{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// BookingFilter narrows List results. Zero values mean "no filter".
type BookingFilter struct {
	RoomID   uint64
	UserID   uint64
	Status   model.BookingStatus
	DateFrom *time.Time // check_in >= DateFrom
	DateTo   *time.Time // check_in <= DateTo
	Limit    int
	Offset   int
}

// List returns bookings matching the filter, newest check-in first.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	if f.RoomID != 0 {
		query += ` AND room_id = ?`
		args = append(args, f.RoomID)
	}
	if f.UserID != 0 {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.DateFrom != nil {
		query += ` AND check_in >= ?`
		args = append(args, f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		query += ` AND check_in <= ?`
		args = append(args, f.DateTo.UTC())
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query += ` ORDER BY check_in DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	return r.queryBookings(ctx, query, args...)
}

func (r *BookingRepo) queryBookings(ctx context.Context, query string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// activeStatusPlaceholders expands ActiveBookingStatuses into SQL
// placeholders and args. Kept in one place so the definition of "active"
// cannot drift between queries.
func activeStatusArgs() (string, []interface{}) {
	placeholders := ""
	args := make([]interface{}, 0, len(model.ActiveBookingStatuses))
	for i, st := range model.ActiveBookingStatuses {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, st)
	}
	return placeholders, args
}

// CountOverlapping counts active bookings for a room whose interval
// overlaps the candidate [checkIn, checkOut). The comparison is
// deliberately inclusive on both boundaries: a booking that starts
// exactly when another ends still conflicts, which leaves a cleaning
// buffer between back-to-back stays. excludeID (when non-zero) removes a
// booking from consideration, for date updates.
func (r *BookingRepo) CountOverlapping(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (int, error) {
	placeholders, args := activeStatusArgs()
	query := `SELECT COUNT(*) FROM bookings
		WHERE room_id = ? AND status IN (` + placeholders + `)
		AND check_in <= ? AND check_out >= ?`
	allArgs := append([]interface{}{roomID}, args...)
	allArgs = append(allArgs, checkOut.UTC(), checkIn.UTC())
	if excludeID != 0 {
		query += ` AND id <> ?`
		allArgs = append(allArgs, excludeID)
	}
	var n int
	if err := r.DB.QueryRowContext(ctx, query, allArgs...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatusGated atomically moves a booking into `to`, but only when
// its current status is one of `from`. The UPDATE and the status check
// are a single statement, so at most one concurrent caller wins. When no
// row matches, the booking is re-read once purely for error reporting:
// ErrNotFound if it is gone, otherwise InvalidTransitionError carrying
// the status it actually had.
func (r *BookingRepo) UpdateStatusGated(ctx context.Context, id uint64, op string, from []model.BookingStatus, to model.BookingStatus) (model.Booking, error) {
	placeholders := ""
	args := []interface{}{to, id}
	for i, st := range from {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, st)
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND status IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return model.Booking{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Booking{}, err
	}
	if n == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return model.Booking{}, err // ErrNotFound or a real failure
		}
		return model.Booking{}, &InvalidTransitionError{Op: op, Current: string(current.Status)}
	}
	return r.GetByID(ctx, id)
}

// UpdateDetails updates dates and guest metadata of a booking. Status is
// never touched here; availability re-validation is the caller's job
// when dates change.
func (r *BookingRepo) UpdateDetails(ctx context.Context, b model.Booking) (model.Booking, error) {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET check_in=?, check_out=?, guest_name=?, guest_email=?, guest_phone=?,
		   number_of_guests=?, special_requests=?, updated_at=UTC_TIMESTAMP()
		 WHERE id=?`,
		b.CheckIn.UTC(), b.CheckOut.UTC(), b.GuestName, b.GuestEmail, b.GuestPhone,
		b.NumberOfGuests, b.SpecialRequests, b.ID)
	if err != nil {
		return model.Booking{}, err
	}
	return r.GetByID(ctx, b.ID)
}

// DueCheckIns returns CONFIRMED bookings whose check-in time has passed.
func (r *BookingRepo) DueCheckIns(ctx context.Context, now time.Time) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE status = ? AND check_in <= ?`,
		model.BookingConfirmed, now.UTC())
}

// DueCheckOuts returns IN_PROGRESS bookings whose check-out time has passed.
func (r *BookingRepo) DueCheckOuts(ctx context.Context, now time.Time) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE status = ? AND check_out <= ?`,
		model.BookingInProgress, now.UTC())
}

// DueMaintenance returns COMPLETED bookings that checked out at or before
// the cutoff, i.e. whose room has been in maintenance for at least the
// configured window.
func (r *BookingRepo) DueMaintenance(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE status = ? AND check_out <= ?`,
		model.BookingCompleted, cutoff.UTC())
}

// NextUpcoming returns the earliest PENDING or CONFIRMED booking for a
// room with check_in at or after `after`, or ErrNotFound when none
// exists. Used to decide whether a room may leave maintenance.
func (r *BookingRepo) NextUpcoming(ctx context.Context, roomID uint64, after time.Time) (model.Booking, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE room_id = ? AND status IN (?,?) AND check_in >= ?
		 ORDER BY check_in ASC LIMIT 1`,
		roomID, model.BookingPending, model.BookingConfirmed, after.UTC())
	return scanBooking(row)
}

// CountActiveForRoom counts the room's bookings in an active status,
// excluding excludeID when non-zero. Cancellation uses this to decide
// whether the room can revert to AVAILABLE.
func (r *BookingRepo) CountActiveForRoom(ctx context.Context, roomID, excludeID uint64) (int, error) {
	placeholders, args := activeStatusArgs()
	query := `SELECT COUNT(*) FROM bookings WHERE room_id = ? AND status IN (` + placeholders + `)`
	allArgs := append([]interface{}{roomID}, args...)
	if excludeID != 0 {
		query += ` AND id <> ?`
		allArgs = append(allArgs, excludeID)
	}
	var n int
	if err := r.DB.QueryRowContext(ctx, query, allArgs...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListUpcomingForRoom returns all bookings for a room whose check-in is
// at or after `from`, regardless of status. The broadcaster uses
// this to notify requesters affected by a room status change.
func (r *BookingRepo) ListUpcomingForRoom(ctx context.Context, roomID uint64, from time.Time) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE room_id = ? AND check_in >= ? ORDER BY check_in ASC`,
		roomID, from.UTC())
}

// BookingStats summarizes bookings grouped by status.
type BookingStats struct {
	Total    int                         `json:"total"`
	Active   int                         `json:"active"`
	ByStatus map[model.BookingStatus]int `json:"by_status"`
}

// Stats returns booking counts grouped by status plus an active total.
func (r *BookingRepo) Stats(ctx context.Context) (BookingStats, error) {
	stats := BookingStats{ByStatus: map[model.BookingStatus]int{}}
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var st model.BookingStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return stats, err
		}
		stats.ByStatus[st] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}
	for _, st := range model.ActiveBookingStatuses {
		stats.Active += stats.ByStatus[st]
	}
	return stats, nil
}
