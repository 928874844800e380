package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// Lifecycle is the booking state machine. It owns the five booking
// operations (create, check-in, check-out, complete-maintenance, cancel)
// and keeps room status consistent with the most advanced active booking
// through the RoomController. Every transition rests on a single
// status-gated conditional update, so the same operations are safe to
// run from API handlers and sweeper passes concurrently.
type Lifecycle struct {
	rooms    RoomStore
	bookings BookingStore
	users    UserStore
	ctrl     *RoomController
	window   time.Duration    // maintenance window after checkout
	now      func() time.Time // injected for tests
}

// NewLifecycle wires the state machine. maintenanceWindow is how long a
// room stays in MAINTENANCE after a checkout before it may return to
// AVAILABLE.
func NewLifecycle(rooms RoomStore, bookings BookingStore, users UserStore, ctrl *RoomController, maintenanceWindow time.Duration) *Lifecycle {
	return &Lifecycle{
		rooms:    rooms,
		bookings: bookings,
		users:    users,
		ctrl:     ctrl,
		window:   maintenanceWindow,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TransitionResult reports the previous/new status pair for both the
// booking and its room after a lifecycle operation.
type TransitionResult struct {
	Booking     model.Booking       `json:"booking"`
	BookingFrom model.BookingStatus `json:"previous_status"`
	BookingTo   model.BookingStatus `json:"new_status"`
	RoomFrom    model.RoomStatus    `json:"room_previous_status"`
	RoomTo      model.RoomStatus    `json:"room_new_status"`
}

// CreateBookingInput carries the fields needed to create a booking.
type CreateBookingInput struct {
	RoomID          uint64
	UserID          uint64
	CheckIn         time.Time
	CheckOut        time.Time
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	NumberOfGuests  int
	SpecialRequests *string
}

// Create validates the room, the requester and the dates, then stores a
// CONFIRMED booking and reserves the room. The room must currently be
// AVAILABLE or MAINTENANCE (freshly cleaned); any other status rejects
// the booking. Creation deliberately skips PENDING: there is no approval
// step in front of confirmation today.
func (l *Lifecycle) Create(ctx context.Context, in CreateBookingInput) (model.Booking, error) {
	if !in.CheckOut.After(in.CheckIn) {
		return model.Booking{}, repository.ErrInvalidArgument
	}
	if in.NumberOfGuests < 1 || in.GuestName == "" {
		return model.Booking{}, repository.ErrInvalidArgument
	}
	ok, err := l.users.Exists(ctx, in.UserID)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}

	room, err := l.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return model.Booking{}, err
	}
	if err := ValidateAvailability(ctx, l.rooms, l.bookings, in.RoomID, in.CheckIn, in.CheckOut, 0); err != nil {
		return model.Booking{}, err
	}
	if room.Status != model.RoomAvailable && room.Status != model.RoomMaintenance {
		return model.Booking{}, &repository.InvalidTransitionError{Op: "create booking", Current: string(room.Status)}
	}

	b, err := l.bookings.Insert(ctx, model.Booking{
		RoomID:          in.RoomID,
		UserID:          in.UserID,
		CheckIn:         in.CheckIn.UTC(),
		CheckOut:        in.CheckOut.UTC(),
		GuestName:       in.GuestName,
		GuestEmail:      in.GuestEmail,
		GuestPhone:      in.GuestPhone,
		NumberOfGuests:  in.NumberOfGuests,
		SpecialRequests: in.SpecialRequests,
		Status:          model.BookingConfirmed,
	})
	if err != nil {
		return model.Booking{}, err
	}
	if _, _, err := l.ctrl.SetStatus(ctx, in.RoomID, model.RoomReserved); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// CheckIn moves a CONFIRMED booking to IN_PROGRESS and occupies the
// room. Any other current status fails with InvalidTransition reporting
// that status.
func (l *Lifecycle) CheckIn(ctx context.Context, bookingID uint64) (TransitionResult, error) {
	b, err := l.bookings.UpdateStatusGated(ctx, bookingID, "check-in",
		[]model.BookingStatus{model.BookingConfirmed}, model.BookingInProgress)
	if err != nil {
		return TransitionResult{}, err
	}
	roomFrom, _, err := l.ctrl.SetStatus(ctx, b.RoomID, model.RoomOccupied)
	if err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{
		Booking:     b,
		BookingFrom: model.BookingConfirmed,
		BookingTo:   model.BookingInProgress,
		RoomFrom:    roomFrom,
		RoomTo:      model.RoomOccupied,
	}, nil
}

// CheckOut moves an IN_PROGRESS booking to COMPLETED and puts the room
// into MAINTENANCE for cleaning.
func (l *Lifecycle) CheckOut(ctx context.Context, bookingID uint64) (TransitionResult, error) {
	b, err := l.bookings.UpdateStatusGated(ctx, bookingID, "check-out",
		[]model.BookingStatus{model.BookingInProgress}, model.BookingCompleted)
	if err != nil {
		return TransitionResult{}, err
	}
	roomFrom, _, err := l.ctrl.SetStatus(ctx, b.RoomID, model.RoomMaintenance)
	if err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{
		Booking:     b,
		BookingFrom: model.BookingInProgress,
		BookingTo:   model.BookingCompleted,
		RoomFrom:    roomFrom,
		RoomTo:      model.RoomMaintenance,
	}, nil
}

// CompleteMaintenance returns a room to AVAILABLE once the maintenance
// window after a COMPLETED booking's checkout has elapsed. It refuses
// when the window has not passed yet, or when another PENDING/CONFIRMED
// booking is already due (check_in <= now): the room must stay reserved
// for the imminent guest. The booking status itself does not change;
// COMPLETED is terminal.
func (l *Lifecycle) CompleteMaintenance(ctx context.Context, bookingID uint64) (model.Room, error) {
	b, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return model.Room{}, err
	}
	if b.Status != model.BookingCompleted {
		return model.Room{}, &repository.InvalidTransitionError{Op: "complete maintenance", Current: string(b.Status)}
	}
	now := l.now()
	if now.Before(b.CheckOut.Add(l.window)) {
		return model.Room{}, &repository.InvalidTransitionError{Op: "complete maintenance", Current: string(model.RoomMaintenance)}
	}
	next, err := l.bookings.NextUpcoming(ctx, b.RoomID, b.CheckOut)
	if err != nil && err != repository.ErrNotFound {
		return model.Room{}, err
	}
	if err == nil && !next.CheckIn.After(now) {
		return model.Room{}, &repository.InvalidTransitionError{Op: "complete maintenance", Current: string(model.RoomReserved)}
	}
	changed, err := l.ctrl.SetStatusFrom(ctx, b.RoomID, model.RoomMaintenance, model.RoomAvailable)
	if err != nil {
		return model.Room{}, err
	}
	if !changed {
		// The room left MAINTENANCE through some other path, typically
		// because the next guest already checked in.
		room, rerr := l.rooms.GetByID(ctx, b.RoomID)
		if rerr != nil {
			return model.Room{}, rerr
		}
		return model.Room{}, &repository.InvalidTransitionError{Op: "complete maintenance", Current: string(room.Status)}
	}
	return l.rooms.GetByID(ctx, b.RoomID)
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED. When the
// cancelled booking was the sole active booking for its room, a RESERVED
// room reverts to AVAILABLE; a room in any other status is left alone
// (an occupied or in-maintenance room owes its status to a different
// booking's lifecycle).
func (l *Lifecycle) Cancel(ctx context.Context, bookingID uint64) (TransitionResult, error) {
	prev, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return TransitionResult{}, err
	}
	b, err := l.bookings.UpdateStatusGated(ctx, bookingID, "cancel",
		[]model.BookingStatus{model.BookingPending, model.BookingConfirmed}, model.BookingCancelled)
	if err != nil {
		return TransitionResult{}, err
	}
	res := TransitionResult{
		Booking:     b,
		BookingFrom: prev.Status,
		BookingTo:   model.BookingCancelled,
	}
	remaining, err := l.bookings.CountActiveForRoom(ctx, b.RoomID, b.ID)
	if err != nil {
		return res, err
	}
	room, err := l.rooms.GetByID(ctx, b.RoomID)
	if err != nil {
		return res, err
	}
	res.RoomFrom, res.RoomTo = room.Status, room.Status
	if remaining == 0 {
		changed, err := l.ctrl.SetStatusFrom(ctx, b.RoomID, model.RoomReserved, model.RoomAvailable)
		if err != nil {
			return res, err
		}
		if changed {
			res.RoomFrom, res.RoomTo = model.RoomReserved, model.RoomAvailable
		}
	}
	return res, nil
}

// UpdateDates re-validates availability (excluding the booking itself)
// and stores new dates and guest metadata. Used by the admin update
// endpoint; status never changes here.
func (l *Lifecycle) UpdateDates(ctx context.Context, b model.Booking) (model.Booking, error) {
	if !b.CheckOut.After(b.CheckIn) {
		return model.Booking{}, repository.ErrInvalidArgument
	}
	if err := ValidateAvailability(ctx, l.rooms, l.bookings, b.RoomID, b.CheckIn, b.CheckOut, b.ID); err != nil {
		return model.Booking{}, err
	}
	return l.bookings.UpdateDetails(ctx, b)
}
