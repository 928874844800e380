package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking. Transitions
// are monotonic along a fixed graph: PENDING/CONFIRMED may advance to
// IN_PROGRESS, IN_PROGRESS to COMPLETED, and PENDING/CONFIRMED may be
// cancelled. COMPLETED and CANCELLED are terminal.
//
// Note: booking creation currently produces CONFIRMED directly. PENDING
// remains part of the enumeration (it counts as active everywhere statuses
// are consulted) but nothing in the system produces it today; it is kept
// for a possible approval step in front of confirmation.
type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"     // created, awaiting confirmation
	BookingConfirmed  BookingStatus = "CONFIRMED"   // room is reserved for the dates
	BookingInProgress BookingStatus = "IN_PROGRESS" // guest has checked in
	BookingCompleted  BookingStatus = "COMPLETED"   // guest has checked out
	BookingCancelled  BookingStatus = "CANCELLED"   // cancelled before check-in
)

// bookingTransitions encodes the legal edges of the booking lifecycle
// graph. Every operation that moves a booking consults this table instead
// of re-implementing the rules; there are no edges out of COMPLETED or
// CANCELLED.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingInProgress, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted},
}

// CanTransition reports whether a booking may move from one status to
// another according to the lifecycle graph.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns the statuses from which a booking may legally
// move into the given status. Repositories use this to build the
// status-gated conditional updates that keep transitions atomic.
func TransitionSources(to BookingStatus) []BookingStatus {
	var from []BookingStatus
	for src, nexts := range bookingTransitions {
		for _, next := range nexts {
			if next == to {
				from = append(from, src)
			}
		}
	}
	return from
}

// ActiveBookingStatuses lists the statuses that count toward interval
// overlap and room-status derivation. A booking in any of these states
// still holds its room for the booked dates.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingInProgress}

// Booking mirrors the `bookings` table. The room and user are weak
// references: their existence is validated at creation only.
type Booking struct {
	ID              uint64        `json:"id"`
	RoomID          uint64        `json:"room_id"`
	UserID          uint64        `json:"user_id"`
	CheckIn         time.Time     `json:"check_in"`  // start of the stay
	CheckOut        time.Time     `json:"check_out"` // end of the stay, must be after CheckIn
	GuestName       string        `json:"guest_name"`
	GuestEmail      string        `json:"guest_email"`
	GuestPhone      string        `json:"guest_phone"`
	NumberOfGuests  int           `json:"number_of_guests"`
	SpecialRequests *string       `json:"special_requests,omitempty"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
