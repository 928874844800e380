// Package repository defines error types that are reused across multiple
// repositories. These values allow higher layers such as handlers to
// distinguish between different failure scenarios. For example,
// ErrNotFound indicates that a referenced room, booking or notification
// does not exist, while AvailabilityConflictError signals that a
// candidate date range overlaps existing bookings.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument is returned when an identifier or field value is
// malformed or out of range. Handlers should translate this into an
// HTTP 400 response.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrForbidden is returned when the caller attempts an operation they
// are not authorized for. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registering a user with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")

// AvailabilityConflictError is returned when a candidate booking
// interval overlaps one or more active bookings for the same room. It
// carries the number of conflicting bookings so clients can explain the
// rejection. Handlers should translate this into an HTTP 409 response.
type AvailabilityConflictError struct {
	Conflicts int
}

func (e *AvailabilityConflictError) Error() string {
	return fmt.Sprintf("room is not available for the requested dates: %d overlapping booking(s)", e.Conflicts)
}

// InvalidTransitionError is returned when a lifecycle operation is
// illegal from the entity's current status. The status-gated conditional
// update found no matching row, and Current reports the status the
// entity actually had. Handlers should translate this into an HTTP 409
// response.
type InvalidTransitionError struct {
	Op      string // operation attempted (e.g. "check-in")
	Current string // status the entity actually had
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s: current status is %s", e.Op, e.Current)
}
