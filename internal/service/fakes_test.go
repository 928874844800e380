package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// The fakes below mirror the repositories' conditional-update semantics
// in memory so the lifecycle rules can be tested without a database.

type fakeRooms struct {
	rooms map[uint64]*model.Room
}

func newFakeRooms(rooms ...model.Room) *fakeRooms {
	f := &fakeRooms{rooms: map[uint64]*model.Room{}}
	for i := range rooms {
		r := rooms[i]
		f.rooms[r.ID] = &r
	}
	return f
}

func (f *fakeRooms) GetByID(_ context.Context, id uint64) (model.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return *r, nil
}

func (f *fakeRooms) UpdateStatusIf(_ context.Context, id uint64, from, to model.RoomStatus) (bool, error) {
	r, ok := f.rooms[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (f *fakeRooms) status(id uint64) model.RoomStatus { return f.rooms[id].Status }

type fakeBookings struct {
	bookings map[uint64]*model.Booking
	nextID   uint64
}

func newFakeBookings(bookings ...model.Booking) *fakeBookings {
	f := &fakeBookings{bookings: map[uint64]*model.Booking{}, nextID: 1}
	for i := range bookings {
		b := bookings[i]
		f.bookings[b.ID] = &b
		if b.ID >= f.nextID {
			f.nextID = b.ID + 1
		}
	}
	return f
}

func active(st model.BookingStatus) bool {
	for _, a := range model.ActiveBookingStatuses {
		if st == a {
			return true
		}
	}
	return false
}

func (f *fakeBookings) Insert(_ context.Context, b model.Booking) (model.Booking, error) {
	b.ID = f.nextID
	f.nextID++
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	f.bookings[b.ID] = &b
	return b, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return *b, nil
}

func (f *fakeBookings) CountOverlapping(_ context.Context, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (int, error) {
	n := 0
	for _, b := range f.bookings {
		if b.RoomID != roomID || b.ID == excludeID || !active(b.Status) {
			continue
		}
		// Inclusive on both boundaries, matching the SQL comparison.
		if !b.CheckIn.After(checkOut) && !b.CheckOut.Before(checkIn) {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) UpdateStatusGated(_ context.Context, id uint64, op string, from []model.BookingStatus, to model.BookingStatus) (model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	for _, src := range from {
		if b.Status == src {
			b.Status = to
			b.UpdatedAt = time.Now().UTC()
			return *b, nil
		}
	}
	return model.Booking{}, &repository.InvalidTransitionError{Op: op, Current: string(b.Status)}
}

func (f *fakeBookings) UpdateDetails(_ context.Context, b model.Booking) (model.Booking, error) {
	cur, ok := f.bookings[b.ID]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	cur.CheckIn = b.CheckIn
	cur.CheckOut = b.CheckOut
	cur.GuestName = b.GuestName
	cur.GuestEmail = b.GuestEmail
	cur.GuestPhone = b.GuestPhone
	cur.NumberOfGuests = b.NumberOfGuests
	cur.SpecialRequests = b.SpecialRequests
	cur.UpdatedAt = time.Now().UTC()
	return *cur, nil
}

func (f *fakeBookings) DueCheckIns(_ context.Context, now time.Time) ([]model.Booking, error) {
	var due []model.Booking
	for _, b := range f.bookings {
		if b.Status == model.BookingConfirmed && !b.CheckIn.After(now) {
			due = append(due, *b)
		}
	}
	return due, nil
}

func (f *fakeBookings) DueCheckOuts(_ context.Context, now time.Time) ([]model.Booking, error) {
	var due []model.Booking
	for _, b := range f.bookings {
		if b.Status == model.BookingInProgress && !b.CheckOut.After(now) {
			due = append(due, *b)
		}
	}
	return due, nil
}

func (f *fakeBookings) DueMaintenance(_ context.Context, cutoff time.Time) ([]model.Booking, error) {
	var due []model.Booking
	for _, b := range f.bookings {
		if b.Status == model.BookingCompleted && !b.CheckOut.After(cutoff) {
			due = append(due, *b)
		}
	}
	return due, nil
}

func (f *fakeBookings) NextUpcoming(_ context.Context, roomID uint64, after time.Time) (model.Booking, error) {
	var next *model.Booking
	for _, b := range f.bookings {
		if b.RoomID != roomID || b.CheckIn.Before(after) {
			continue
		}
		if b.Status != model.BookingPending && b.Status != model.BookingConfirmed {
			continue
		}
		if next == nil || b.CheckIn.Before(next.CheckIn) {
			next = b
		}
	}
	if next == nil {
		return model.Booking{}, repository.ErrNotFound
	}
	return *next, nil
}

func (f *fakeBookings) CountActiveForRoom(_ context.Context, roomID, excludeID uint64) (int, error) {
	n := 0
	for _, b := range f.bookings {
		if b.RoomID == roomID && b.ID != excludeID && active(b.Status) {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) ListUpcomingForRoom(_ context.Context, roomID uint64, from time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if b.RoomID == roomID && !b.CheckIn.Before(from) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookings) status(id uint64) model.BookingStatus { return f.bookings[id].Status }

type fakeUsers struct {
	activeIDs []uint64
}

func (f *fakeUsers) Exists(_ context.Context, id uint64) (bool, error) {
	for _, a := range f.activeIDs {
		if a == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ListActiveIDs(_ context.Context) ([]uint64, error) {
	return f.activeIDs, nil
}

type fakeNotifications struct {
	inserted []model.Notification
}

func (f *fakeNotifications) Insert(_ context.Context, n model.Notification) (model.Notification, error) {
	n.ID = uint64(len(f.inserted) + 1)
	n.Status = model.NotificationPending
	f.inserted = append(f.inserted, n)
	return n, nil
}

type fakePublisher struct {
	events []queue.RoomStatusChangedEvent
	err    error
}

func (f *fakePublisher) PublishRoomStatusChanged(_ context.Context, ev queue.RoomStatusChangedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}
