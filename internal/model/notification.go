package model

import "time"

// NotificationStatus enumerates the delivery states of a queued
// notification: PENDING items wait to be claimed, PROCESSING items are
// held by exactly one worker, and SENT/FAILED are terminal.
type NotificationStatus string

const (
	NotificationPending    NotificationStatus = "PENDING"    // waiting for a worker
	NotificationProcessing NotificationStatus = "PROCESSING" // claimed by a worker
	NotificationSent       NotificationStatus = "SENT"       // delivered successfully
	NotificationFailed     NotificationStatus = "FAILED"     // exhausted all retries
)

// NotificationChannel identifies how a notification is delivered.
type NotificationChannel string

const (
	ChannelInApp NotificationChannel = "INAPP"
	ChannelEmail NotificationChannel = "EMAIL"
	ChannelPush  NotificationChannel = "PUSH"
)

// ValidChannel reports whether ch is a known delivery channel.
func ValidChannel(ch NotificationChannel) bool {
	switch ch {
	case ChannelInApp, ChannelEmail, ChannelPush:
		return true
	}
	return false
}

// Notification mirrors the `notifications` table. Rows are created by the
// event broadcaster or through the API and mutated only by the delivery
// worker; the core never deletes them.
type Notification struct {
	ID            uint64              `json:"id"`
	UserID        uint64              `json:"user_id"`
	Title         *string             `json:"title,omitempty"`
	Message       string              `json:"message"`
	Channel       NotificationChannel `json:"channel"`
	Status        NotificationStatus  `json:"status"`
	Attempts      int                 `json:"attempts"` // never decreases
	LastError     *string             `json:"last_error,omitempty"`
	ScheduledAt   *time.Time          `json:"scheduled_at,omitempty"`    // earliest eligibility
	NextAttemptAt *time.Time          `json:"next_attempt_at,omitempty"` // retry eligibility after a failure
	SentAt        *time.Time          `json:"sent_at,omitempty"`
	ReadAt        *time.Time          `json:"read_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"` // claim order is FIFO on this column
	UpdatedAt     time.Time           `json:"updated_at"`
}
