package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

var day = func(d int) time.Time {
	return time.Date(2026, 9, d, 14, 0, 0, 0, time.UTC)
}

func testLifecycle(rooms *fakeRooms, bookings *fakeBookings, users *fakeUsers) *Lifecycle {
	ctrl := NewRoomController(rooms, nil)
	return NewLifecycle(rooms, bookings, users, ctrl, 30*time.Minute)
}

func confirmedBooking(id, roomID, userID uint64, checkIn, checkOut time.Time) model.Booking {
	return model.Booking{
		ID:             id,
		RoomID:         roomID,
		UserID:         userID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		GuestName:      "Ana Torres",
		NumberOfGuests: 2,
		Status:         model.BookingConfirmed,
	}
}

func TestCreateBookingReservesRoom(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Number: "101", Status: model.RoomAvailable})
	bookings := newFakeBookings()
	users := &fakeUsers{activeIDs: []uint64{7}}
	l := testLifecycle(rooms, bookings, users)

	b, err := l.Create(context.Background(), CreateBookingInput{
		RoomID:         1,
		UserID:         7,
		CheckIn:        day(10),
		CheckOut:       day(12),
		GuestName:      "Ana Torres",
		NumberOfGuests: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != model.BookingConfirmed {
		t.Errorf("booking status = %s, want CONFIRMED", b.Status)
	}
	if rooms.status(1) != model.RoomReserved {
		t.Errorf("room status = %s, want RESERVED", rooms.status(1))
	}
}

func TestCreateBookingFromMaintenanceRoom(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomMaintenance})
	l := testLifecycle(rooms, newFakeBookings(), &fakeUsers{activeIDs: []uint64{7}})

	_, err := l.Create(context.Background(), CreateBookingInput{
		RoomID: 1, UserID: 7, CheckIn: day(10), CheckOut: day(12),
		GuestName: "Ana Torres", NumberOfGuests: 1,
	})
	if err != nil {
		t.Fatalf("booking a freshly cleaned room should work: %v", err)
	}
	if rooms.status(1) != model.RoomReserved {
		t.Errorf("room status = %s, want RESERVED", rooms.status(1))
	}
}

func TestCreateBookingRejectsOccupiedRoom(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomOccupied})
	l := testLifecycle(rooms, newFakeBookings(), &fakeUsers{activeIDs: []uint64{7}})

	_, err := l.Create(context.Background(), CreateBookingInput{
		RoomID: 1, UserID: 7, CheckIn: day(10), CheckOut: day(12),
		GuestName: "Ana Torres", NumberOfGuests: 1,
	})
	var tr *repository.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if tr.Current != string(model.RoomOccupied) {
		t.Errorf("Current = %s, want OCCUPIED", tr.Current)
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomAvailable})
	bookings := newFakeBookings(confirmedBooking(1, 1, 9, day(10), day(12)))
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7}})

	_, err := l.Create(context.Background(), CreateBookingInput{
		RoomID: 1, UserID: 7, CheckIn: day(11), CheckOut: day(14),
		GuestName: "Ana Torres", NumberOfGuests: 1,
	})
	var conflict *repository.AvailabilityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want AvailabilityConflictError", err)
	}
	if conflict.Conflicts != 1 {
		t.Errorf("Conflicts = %d, want 1", conflict.Conflicts)
	}
}

func TestCreateBookingOverlapBoundariesAreInclusive(t *testing.T) {
	// A stay that begins exactly when an existing one ends still
	// conflicts: the room needs its cleaning buffer between guests.
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomAvailable})
	bookings := newFakeBookings(confirmedBooking(1, 1, 9, day(10), day(12)))
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7}})

	_, err := l.Create(context.Background(), CreateBookingInput{
		RoomID: 1, UserID: 7, CheckIn: day(12), CheckOut: day(14),
		GuestName: "Ana Torres", NumberOfGuests: 1,
	})
	var conflict *repository.AvailabilityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("back-to-back stay should conflict, got %v", err)
	}
}

func TestCreateBookingCancelledDatesAreFree(t *testing.T) {
	cancelled := confirmedBooking(1, 1, 9, day(10), day(12))
	cancelled.Status = model.BookingCancelled
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomAvailable})
	l := testLifecycle(rooms, newFakeBookings(cancelled), &fakeUsers{activeIDs: []uint64{7}})

	if _, err := l.Create(context.Background(), CreateBookingInput{
		RoomID: 1, UserID: 7, CheckIn: day(10), CheckOut: day(12),
		GuestName: "Ana Torres", NumberOfGuests: 1,
	}); err != nil {
		t.Fatalf("cancelled bookings must not block the dates: %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomAvailable})
	l := testLifecycle(rooms, newFakeBookings(), &fakeUsers{activeIDs: []uint64{7}})
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateBookingInput
		want error
	}{
		{"checkout before checkin", CreateBookingInput{RoomID: 1, UserID: 7, CheckIn: day(12), CheckOut: day(10), GuestName: "A", NumberOfGuests: 1}, repository.ErrInvalidArgument},
		{"equal dates", CreateBookingInput{RoomID: 1, UserID: 7, CheckIn: day(10), CheckOut: day(10), GuestName: "A", NumberOfGuests: 1}, repository.ErrInvalidArgument},
		{"zero guests", CreateBookingInput{RoomID: 1, UserID: 7, CheckIn: day(10), CheckOut: day(12), GuestName: "A", NumberOfGuests: 0}, repository.ErrInvalidArgument},
		{"missing guest name", CreateBookingInput{RoomID: 1, UserID: 7, CheckIn: day(10), CheckOut: day(12), NumberOfGuests: 1}, repository.ErrInvalidArgument},
		{"unknown user", CreateBookingInput{RoomID: 1, UserID: 99, CheckIn: day(10), CheckOut: day(12), GuestName: "A", NumberOfGuests: 1}, repository.ErrNotFound},
		{"unknown room", CreateBookingInput{RoomID: 99, UserID: 7, CheckIn: day(10), CheckOut: day(12), GuestName: "A", NumberOfGuests: 1}, repository.ErrNotFound},
	}
	for _, tc := range cases {
		if _, err := l.Create(ctx, tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestCheckInOccupiesRoom(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	bookings := newFakeBookings(confirmedBooking(1, 1, 7, day(10), day(12)))
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7}})

	res, err := l.CheckIn(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BookingTo != model.BookingInProgress || res.RoomTo != model.RoomOccupied {
		t.Errorf("transition = %s/%s, want IN_PROGRESS/OCCUPIED", res.BookingTo, res.RoomTo)
	}
	if bookings.status(1) != model.BookingInProgress {
		t.Errorf("booking status = %s", bookings.status(1))
	}
	if rooms.status(1) != model.RoomOccupied {
		t.Errorf("room status = %s", rooms.status(1))
	}
}

func TestDoubleCheckInFails(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	bookings := newFakeBookings(confirmedBooking(1, 1, 7, day(10), day(12)))
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7}})
	ctx := context.Background()

	if _, err := l.CheckIn(ctx, 1); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	_, err := l.CheckIn(ctx, 1)
	var tr *repository.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("second check-in: err = %v, want InvalidTransitionError", err)
	}
	if tr.Current != string(model.BookingInProgress) {
		t.Errorf("Current = %s, want IN_PROGRESS", tr.Current)
	}
}

func TestCheckOutStartsMaintenance(t *testing.T) {
	b := confirmedBooking(1, 1, 7, day(10), day(12))
	b.Status = model.BookingInProgress
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomOccupied})
	bookings := newFakeBookings(b)
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7}})

	res, err := l.CheckOut(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BookingTo != model.BookingCompleted || res.RoomTo != model.RoomMaintenance {
		t.Errorf("transition = %s/%s, want COMPLETED/MAINTENANCE", res.BookingTo, res.RoomTo)
	}
}

func TestCompleteMaintenanceHonorsWindow(t *testing.T) {
	checkOut := day(12)
	b := confirmedBooking(1, 1, 7, day(10), checkOut)
	b.Status = model.BookingCompleted
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomMaintenance})
	bookings := newFakeBookings(b)
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7}})
	ctx := context.Background()

	// 29 minutes after checkout the 30-minute window has not elapsed.
	l.now = func() time.Time { return checkOut.Add(29 * time.Minute) }
	_, err := l.CompleteMaintenance(ctx, 1)
	var tr *repository.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("inside the window: err = %v, want InvalidTransitionError", err)
	}
	if rooms.status(1) != model.RoomMaintenance {
		t.Errorf("room must stay in MAINTENANCE inside the window")
	}

	// Two minutes later the flip succeeds.
	l.now = func() time.Time { return checkOut.Add(31 * time.Minute) }
	room, err := l.CompleteMaintenance(ctx, 1)
	if err != nil {
		t.Fatalf("after the window: %v", err)
	}
	if room.Status != model.RoomAvailable {
		t.Errorf("room status = %s, want AVAILABLE", room.Status)
	}
}

func TestCompleteMaintenanceBlockedByImminentBooking(t *testing.T) {
	checkOut := day(12)
	done := confirmedBooking(1, 1, 7, day(10), checkOut)
	done.Status = model.BookingCompleted
	next := confirmedBooking(2, 1, 8, checkOut.Add(40*time.Minute), day(14))
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomMaintenance})
	bookings := newFakeBookings(done, next)
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7, 8}})

	// The window elapsed, but the next guest's check-in is already due.
	l.now = func() time.Time { return checkOut.Add(45 * time.Minute) }
	_, err := l.CompleteMaintenance(context.Background(), 1)
	var tr *repository.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if rooms.status(1) != model.RoomMaintenance {
		t.Errorf("room must not flip while a due booking waits")
	}
}

func TestCompleteMaintenanceFailsWhenRoomAlreadyLeftMaintenance(t *testing.T) {
	checkOut := day(12)
	done := confirmedBooking(1, 1, 7, day(10), checkOut)
	done.Status = model.BookingCompleted
	// The next guest is already in house, so the room is OCCUPIED.
	next := confirmedBooking(2, 1, 8, checkOut.Add(35*time.Minute), day(14))
	next.Status = model.BookingInProgress
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomOccupied})
	bookings := newFakeBookings(done, next)
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7, 8}})

	l.now = func() time.Time { return checkOut.Add(45 * time.Minute) }
	_, err := l.CompleteMaintenance(context.Background(), 1)
	var tr *repository.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if tr.Current != string(model.RoomOccupied) {
		t.Errorf("Current = %s, want OCCUPIED", tr.Current)
	}
	if rooms.status(1) != model.RoomOccupied {
		t.Errorf("room status = %s, want OCCUPIED untouched", rooms.status(1))
	}
}

func TestCompleteMaintenanceRequiresCompletedBooking(t *testing.T) {
	b := confirmedBooking(1, 1, 7, day(10), day(12))
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomMaintenance})
	l := testLifecycle(rooms, newFakeBookings(b), &fakeUsers{activeIDs: []uint64{7}})

	_, err := l.CompleteMaintenance(context.Background(), 1)
	var tr *repository.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if tr.Current != string(model.BookingConfirmed) {
		t.Errorf("Current = %s, want CONFIRMED", tr.Current)
	}
}

func TestCancelRevertsSoleReservation(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	bookings := newFakeBookings(confirmedBooking(1, 1, 7, day(10), day(12)))
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7}})

	res, err := l.Cancel(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BookingTo != model.BookingCancelled {
		t.Errorf("booking status = %s, want CANCELLED", res.BookingTo)
	}
	if rooms.status(1) != model.RoomAvailable {
		t.Errorf("room status = %s, want AVAILABLE", rooms.status(1))
	}
	if res.RoomFrom != model.RoomReserved || res.RoomTo != model.RoomAvailable {
		t.Errorf("room transition = %s/%s, want RESERVED/AVAILABLE", res.RoomFrom, res.RoomTo)
	}
}

func TestCancelKeepsRoomWhenOtherBookingsRemain(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	bookings := newFakeBookings(
		confirmedBooking(1, 1, 7, day(10), day(12)),
		confirmedBooking(2, 1, 8, day(20), day(22)),
	)
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7, 8}})

	if _, err := l.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rooms.status(1) != model.RoomReserved {
		t.Errorf("room status = %s, want RESERVED while booking 2 is active", rooms.status(1))
	}
}

func TestCancelLeavesOccupiedRoomAlone(t *testing.T) {
	// The room is OCCUPIED by a different booking's guest; cancelling an
	// upcoming reservation must not free it.
	inHouse := confirmedBooking(1, 1, 8, day(8), day(9))
	inHouse.Status = model.BookingInProgress
	upcoming := confirmedBooking(2, 1, 7, day(10), day(12))
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomOccupied})
	bookings := newFakeBookings(inHouse, upcoming)
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7, 8}})

	if _, err := l.Cancel(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rooms.status(1) != model.RoomOccupied {
		t.Errorf("room status = %s, want OCCUPIED", rooms.status(1))
	}
}

func TestCancelReportsPendingSource(t *testing.T) {
	b := confirmedBooking(1, 1, 7, day(10), day(12))
	b.Status = model.BookingPending
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	l := testLifecycle(rooms, newFakeBookings(b), &fakeUsers{activeIDs: []uint64{7}})

	res, err := l.Cancel(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BookingFrom != model.BookingPending {
		t.Errorf("previous status = %s, want PENDING", res.BookingFrom)
	}
	if res.BookingTo != model.BookingCancelled {
		t.Errorf("new status = %s, want CANCELLED", res.BookingTo)
	}
}

func TestCancelCompletedBookingFails(t *testing.T) {
	b := confirmedBooking(1, 1, 7, day(10), day(12))
	b.Status = model.BookingCompleted
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomMaintenance})
	l := testLifecycle(rooms, newFakeBookings(b), &fakeUsers{activeIDs: []uint64{7}})

	_, err := l.Cancel(context.Background(), 1)
	var tr *repository.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
}

func TestUpdateDatesRevalidatesAvailability(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	mine := confirmedBooking(1, 1, 7, day(10), day(12))
	other := confirmedBooking(2, 1, 8, day(20), day(22))
	bookings := newFakeBookings(mine, other)
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7, 8}})
	ctx := context.Background()

	// Shifting within free dates works; the booking's own interval is
	// excluded from the overlap check.
	mine.CheckIn, mine.CheckOut = day(11), day(13)
	if _, err := l.UpdateDates(ctx, mine); err != nil {
		t.Fatalf("free shift: %v", err)
	}

	// Colliding with the other booking fails.
	mine.CheckIn, mine.CheckOut = day(19), day(21)
	_, err := l.UpdateDates(ctx, mine)
	var conflict *repository.AvailabilityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want AvailabilityConflictError", err)
	}
}
