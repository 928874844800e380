package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
)

// EventPublisher pushes room status change events to the message broker
// for external consumers. Publishing is best-effort; errors are logged
// and dropped.
type EventPublisher interface {
	PublishRoomStatusChanged(ctx context.Context, ev queue.RoomStatusChangedEvent) error
}

// EventBroadcaster turns room status changes into queued notifications.
// Two behaviors: every booking for the room with a future check-in gets
// a notice sent to its requester, and when a room comes back online
// (MAINTENANCE to AVAILABLE) every active user is told. All failures are
// logged and absorbed here; a broadcast can never fail the state
// transition that triggered it.
type EventBroadcaster struct {
	bookings  BookingStore
	users     UserStore
	queue     NotificationStore
	publisher EventPublisher // may be nil
	now       func() time.Time
}

// NewEventBroadcaster wires the broadcaster. publisher may be nil when
// no message broker is configured.
func NewEventBroadcaster(bookings BookingStore, users UserStore, queueStore NotificationStore, publisher EventPublisher) *EventBroadcaster {
	return &EventBroadcaster{
		bookings:  bookings,
		users:     users,
		queue:     queueStore,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RoomStatusChanged implements Broadcaster.
func (b *EventBroadcaster) RoomStatusChanged(ctx context.Context, room model.Room, old, new model.RoomStatus) {
	if old == new {
		return
	}
	now := b.now()

	b.notifyAffectedBookings(ctx, room, old, new, now)

	if old == model.RoomMaintenance && new == model.RoomAvailable {
		b.broadcastBackOnline(ctx, room)
	}

	if b.publisher != nil {
		ev := queue.RoomStatusChangedEvent{
			RoomID:     room.ID,
			RoomNumber: room.Number,
			OldStatus:  string(old),
			NewStatus:  string(new),
			ChangedAt:  now.Format(time.RFC3339),
		}
		if err := b.publisher.PublishRoomStatusChanged(ctx, ev); err != nil {
			log.Printf("broadcast: publish room status event failed: %v", err)
		}
	}
}

// notifyAffectedBookings enqueues a notice for the requester of every
// booking on this room whose check-in has not passed yet.
func (b *EventBroadcaster) notifyAffectedBookings(ctx context.Context, room model.Room, old, new model.RoomStatus, now time.Time) {
	upcoming, err := b.bookings.ListUpcomingForRoom(ctx, room.ID, now)
	if err != nil {
		log.Printf("broadcast: listing upcoming bookings for room %d failed: %v", room.ID, err)
		return
	}
	for _, bk := range upcoming {
		title := fmt.Sprintf("Room %s status update", room.Number)
		msg := fmt.Sprintf("Room %s changed from %s to %s. Your booking from %s to %s may be affected.",
			room.Number, old, new,
			bk.CheckIn.Format("2006-01-02 15:04"), bk.CheckOut.Format("2006-01-02 15:04"))
		if _, err := b.queue.Insert(ctx, model.Notification{
			UserID:  bk.UserID,
			Title:   &title,
			Message: msg,
			Channel: model.ChannelInApp,
		}); err != nil {
			log.Printf("broadcast: enqueue notice for user %d failed: %v", bk.UserID, err)
		}
	}
}

// broadcastBackOnline enqueues a notification for every active user when
// a room finishes maintenance.
func (b *EventBroadcaster) broadcastBackOnline(ctx context.Context, room model.Room) {
	ids, err := b.users.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("broadcast: listing users for back-online broadcast failed: %v", err)
		return
	}
	title := fmt.Sprintf("Room %s is available again", room.Number)
	msg := fmt.Sprintf("Room %s has finished maintenance and is open for booking.", room.Number)
	for _, id := range ids {
		if _, err := b.queue.Insert(ctx, model.Notification{
			UserID:  id,
			Title:   &title,
			Message: msg,
			Channel: model.ChannelInApp,
		}); err != nil {
			log.Printf("broadcast: enqueue back-online notice for user %d failed: %v", id, err)
		}
	}
}
