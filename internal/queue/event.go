// Package queue defines message payloads exchanged over the message
// broker, the publisher that emits them and the background consumer that
// drains them.
package queue

// RoomStatusChangedEvent is published whenever a room's status changes,
// whether through the booking lifecycle or an administrative override.
// It carries enough information for downstream consumers to log, audit
// or trigger integrations without querying the primary database.
type RoomStatusChangedEvent struct {
	RoomID     uint64 `json:"room_id"`
	RoomNumber string `json:"room_number"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	ChangedAt  string `json:"changed_at"`
}
