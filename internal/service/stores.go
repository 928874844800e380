// Package service implements the reservation lifecycle engine: the
// booking state machine, the room state controller, the interval overlap
// validator, the transition sweeper and the event broadcaster. Services
// depend on narrow store interfaces rather than concrete repositories so
// the lifecycle rules can be exercised against in-memory fakes in tests;
// the repository package satisfies every interface.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// RoomStore is the subset of the room repository the lifecycle engine
// needs. Status mutations are conditional: the store updates the row only
// when it still holds the expected status, which is what serializes
// concurrent transitions.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	UpdateStatusIf(ctx context.Context, id uint64, from, to model.RoomStatus) (bool, error)
}

// BookingStore is the subset of the booking repository used by the state
// machine, the sweeper and the broadcaster. UpdateStatusGated is the
// single primitive every transition is built on.
type BookingStore interface {
	Insert(ctx context.Context, b model.Booking) (model.Booking, error)
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	CountOverlapping(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (int, error)
	UpdateStatusGated(ctx context.Context, id uint64, op string, from []model.BookingStatus, to model.BookingStatus) (model.Booking, error)
	UpdateDetails(ctx context.Context, b model.Booking) (model.Booking, error)
	DueCheckIns(ctx context.Context, now time.Time) ([]model.Booking, error)
	DueCheckOuts(ctx context.Context, now time.Time) ([]model.Booking, error)
	DueMaintenance(ctx context.Context, cutoff time.Time) ([]model.Booking, error)
	NextUpcoming(ctx context.Context, roomID uint64, after time.Time) (model.Booking, error)
	CountActiveForRoom(ctx context.Context, roomID, excludeID uint64) (int, error)
	ListUpcomingForRoom(ctx context.Context, roomID uint64, from time.Time) ([]model.Booking, error)
}

// NotificationStore is the enqueue side of the notification queue; the
// broadcaster only ever inserts.
type NotificationStore interface {
	Insert(ctx context.Context, n model.Notification) (model.Notification, error)
}

// UserStore supplies recipients for the back-online broadcast.
type UserStore interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	ListActiveIDs(ctx context.Context) ([]uint64, error)
}
