package service

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

func testSweeper(rooms *fakeRooms, bookings *fakeBookings, now time.Time) (*Sweeper, *Lifecycle) {
	l := testLifecycle(rooms, bookings, &fakeUsers{activeIDs: []uint64{7, 8}})
	l.now = func() time.Time { return now }
	s := NewSweeper(bookings, l, 30*time.Minute)
	s.now = l.now
	return s, l
}

func TestSweepChecksInDueBookings(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	bookings := newFakeBookings(confirmedBooking(1, 1, 7, day(10), day(12)))
	s, _ := testSweeper(rooms, bookings, day(10).Add(time.Hour))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookings.status(1) != model.BookingInProgress {
		t.Errorf("booking status = %s, want IN_PROGRESS", bookings.status(1))
	}
	if rooms.status(1) != model.RoomOccupied {
		t.Errorf("room status = %s, want OCCUPIED", rooms.status(1))
	}
}

func TestSweepSkipsFutureBookings(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	bookings := newFakeBookings(confirmedBooking(1, 1, 7, day(10), day(12)))
	s, _ := testSweeper(rooms, bookings, day(10).Add(-time.Hour))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookings.status(1) != model.BookingConfirmed {
		t.Errorf("booking not yet due must stay CONFIRMED, got %s", bookings.status(1))
	}
}

func TestSweepChecksOutAndFreesRoomAfterWindow(t *testing.T) {
	inHouse := confirmedBooking(1, 1, 7, day(10), day(12))
	inHouse.Status = model.BookingInProgress
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomOccupied})
	bookings := newFakeBookings(inHouse)

	// First sweep shortly after the checkout time: the guest leaves and
	// the room goes into its cleaning window.
	s, _ := testSweeper(rooms, bookings, day(12).Add(time.Minute))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookings.status(1) != model.BookingCompleted {
		t.Fatalf("booking status = %s, want COMPLETED", bookings.status(1))
	}
	if rooms.status(1) != model.RoomMaintenance {
		t.Fatalf("room status = %s, want MAINTENANCE", rooms.status(1))
	}

	// A sweep inside the window leaves the room alone.
	s, _ = testSweeper(rooms, bookings, day(12).Add(29*time.Minute))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rooms.status(1) != model.RoomMaintenance {
		t.Errorf("room flipped before the maintenance window elapsed")
	}

	// After the window the room returns to AVAILABLE.
	s, _ = testSweeper(rooms, bookings, day(12).Add(31*time.Minute))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rooms.status(1) != model.RoomAvailable {
		t.Errorf("room status = %s, want AVAILABLE", rooms.status(1))
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	bookings := newFakeBookings(confirmedBooking(1, 1, 7, day(10), day(12)))
	s, _ := testSweeper(rooms, bookings, day(10).Add(time.Hour))
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// Re-running the same pass finds the booking already advanced; the
	// gated update is a no-op and nothing regresses.
	if err := s.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if bookings.status(1) != model.BookingInProgress {
		t.Errorf("booking status = %s after repeat sweep, want IN_PROGRESS", bookings.status(1))
	}
	if rooms.status(1) != model.RoomOccupied {
		t.Errorf("room status = %s after repeat sweep, want OCCUPIED", rooms.status(1))
	}
}

func TestSweepAdvancesIndependentBookingsTogether(t *testing.T) {
	leaving := confirmedBooking(1, 1, 7, day(8), day(10))
	leaving.Status = model.BookingInProgress
	arriving := confirmedBooking(2, 2, 8, day(10), day(12))
	rooms := newFakeRooms(
		model.Room{ID: 1, Status: model.RoomOccupied},
		model.Room{ID: 2, Status: model.RoomReserved},
	)
	bookings := newFakeBookings(leaving, arriving)
	s, _ := testSweeper(rooms, bookings, day(10).Add(time.Minute))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookings.status(1) != model.BookingCompleted || rooms.status(1) != model.RoomMaintenance {
		t.Errorf("room 1: got %s/%s, want COMPLETED/MAINTENANCE", bookings.status(1), rooms.status(1))
	}
	if bookings.status(2) != model.BookingInProgress || rooms.status(2) != model.RoomOccupied {
		t.Errorf("room 2: got %s/%s, want IN_PROGRESS/OCCUPIED", bookings.status(2), rooms.status(2))
	}
}
