package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// Broadcaster reacts to room status changes. Implementations must absorb
// their own failures: a broadcast must never fail the state transition
// that triggered it.
type Broadcaster interface {
	RoomStatusChanged(ctx context.Context, room model.Room, old, new model.RoomStatus)
}

// RoomController is the thin coordination layer that mutates room status
// consistently. The booking state machine calls it after every gated
// booking transition, and the admin room endpoints call it for explicit
// status overrides. Every change it makes goes through a conditional
// update keyed on the status the room was just observed in, and every
// observed old != new change is announced to the broadcaster.
type RoomController struct {
	rooms       RoomStore
	broadcaster Broadcaster // may be nil
}

// NewRoomController builds a controller. broadcaster may be nil when
// status changes should not produce notifications (tests, tooling).
func NewRoomController(rooms RoomStore, broadcaster Broadcaster) *RoomController {
	return &RoomController{rooms: rooms, broadcaster: broadcaster}
}

// setStatusRetries bounds the observe-then-CAS loop. Two concurrent
// transitions on one room resolve within a retry; more churn than this
// means something is looping on the room and is worth surfacing.
const setStatusRetries = 3

// SetStatus moves a room to the target status regardless of its current
// one. It returns the status the room had before the change and whether
// anything changed (a room already in the target status is a no-op).
func (c *RoomController) SetStatus(ctx context.Context, roomID uint64, to model.RoomStatus) (model.RoomStatus, bool, error) {
	for attempt := 0; attempt < setStatusRetries; attempt++ {
		rm, err := c.rooms.GetByID(ctx, roomID)
		if err != nil {
			return "", false, err
		}
		if rm.Status == to {
			return rm.Status, false, nil
		}
		ok, err := c.rooms.UpdateStatusIf(ctx, roomID, rm.Status, to)
		if err != nil {
			return "", false, err
		}
		if ok {
			c.notify(ctx, rm, rm.Status, to)
			return rm.Status, true, nil
		}
		// Lost the race against a concurrent transition; re-observe.
	}
	return "", false, fmt.Errorf("room %d: status kept changing under concurrent transitions", roomID)
}

// SetStatusFrom moves a room to the target status only when it currently
// holds the expected one. Returns false without error when the gate did
// not match.
func (c *RoomController) SetStatusFrom(ctx context.Context, roomID uint64, from, to model.RoomStatus) (bool, error) {
	rm, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return false, err
	}
	ok, err := c.rooms.UpdateStatusIf(ctx, roomID, from, to)
	if err != nil || !ok {
		return ok, err
	}
	c.notify(ctx, rm, from, to)
	return true, nil
}

// AdminSetStatus is the direct administrative override path. It accepts
// only known statuses and otherwise behaves exactly like SetStatus, so
// an admin change fires the broadcaster the same way lifecycle changes
// do.
func (c *RoomController) AdminSetStatus(ctx context.Context, roomID uint64, to model.RoomStatus) (model.RoomStatus, bool, error) {
	if !model.ValidRoomStatus(to) {
		return "", false, repository.ErrInvalidArgument
	}
	return c.SetStatus(ctx, roomID, to)
}

func (c *RoomController) notify(ctx context.Context, room model.Room, old, new model.RoomStatus) {
	if c.broadcaster == nil || old == new {
		return
	}
	room.Status = new
	c.broadcaster.RoomStatusChanged(ctx, room, old, new)
}
