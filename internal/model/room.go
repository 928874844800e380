package model

import "time"

// RoomStatus enumerates the lifecycle states of a room. A room has
// exactly one status at any time. The status is derived from the room's
// bookings and only changes through the lifecycle engine or an explicit
// administrative override; it is never edited independently.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"   // ready to be booked
	RoomReserved    RoomStatus = "RESERVED"    // a confirmed booking exists that has not started
	RoomOccupied    RoomStatus = "OCCUPIED"    // a guest is currently checked in
	RoomMaintenance RoomStatus = "MAINTENANCE" // being cleaned after a checkout
)

// ValidRoomStatus reports whether s is one of the known room statuses.
func ValidRoomStatus(s RoomStatus) bool {
	switch s {
	case RoomAvailable, RoomReserved, RoomOccupied, RoomMaintenance:
		return true
	}
	return false
}

// Room mirrors the `rooms` table.
type Room struct {
	ID              uint64     `json:"id"`
	Number          string     `json:"number"`          // human-readable room number, e.g. "101"
	Status          RoomStatus `json:"status"`
	Capacity        int        `json:"capacity"`
	Description     string     `json:"description"`
	Characteristics string     `json:"characteristics"` // comma-separated feature list (WiFi, TV, ...)
	Floor           string     `json:"floor"`
	PricePerNight   uint32     `json:"price_per_night"` // nightly rate in cents
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
