package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

type recordingBroadcaster struct {
	changes []string
}

func (r *recordingBroadcaster) RoomStatusChanged(_ context.Context, _ model.Room, old, new model.RoomStatus) {
	r.changes = append(r.changes, string(old)+"->"+string(new))
}

func TestSetStatusChangesAndNotifies(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomAvailable})
	rec := &recordingBroadcaster{}
	ctrl := NewRoomController(rooms, rec)

	old, changed, err := ctrl.SetStatus(context.Background(), 1, model.RoomReserved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if old != model.RoomAvailable || !changed {
		t.Errorf("old = %s changed = %v, want AVAILABLE true", old, changed)
	}
	if len(rec.changes) != 1 || rec.changes[0] != "AVAILABLE->RESERVED" {
		t.Errorf("broadcast = %v", rec.changes)
	}
}

func TestSetStatusNoOpWhenAlreadyTarget(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomReserved})
	rec := &recordingBroadcaster{}
	ctrl := NewRoomController(rooms, rec)

	_, changed, err := ctrl.SetStatus(context.Background(), 1, model.RoomReserved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Errorf("setting the current status must be a no-op")
	}
	if len(rec.changes) != 0 {
		t.Errorf("no-op must not broadcast, got %v", rec.changes)
	}
}

func TestSetStatusFromGate(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomOccupied})
	ctrl := NewRoomController(rooms, nil)
	ctx := context.Background()

	changed, err := ctrl.SetStatusFrom(ctx, 1, model.RoomMaintenance, model.RoomAvailable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Errorf("gate must not match an OCCUPIED room")
	}
	if rooms.status(1) != model.RoomOccupied {
		t.Errorf("room status = %s, want unchanged OCCUPIED", rooms.status(1))
	}

	rooms.rooms[1].Status = model.RoomMaintenance
	changed, err = ctrl.SetStatusFrom(ctx, 1, model.RoomMaintenance, model.RoomAvailable)
	if err != nil || !changed {
		t.Fatalf("changed = %v err = %v, want true nil", changed, err)
	}
	if rooms.status(1) != model.RoomAvailable {
		t.Errorf("room status = %s, want AVAILABLE", rooms.status(1))
	}
}

func TestAdminSetStatusRejectsUnknownStatus(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomAvailable})
	ctrl := NewRoomController(rooms, nil)

	_, _, err := ctrl.AdminSetStatus(context.Background(), 1, "CLEANING")
	if !errors.Is(err, repository.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestAdminSetStatusFiresBroadcaster(t *testing.T) {
	rooms := newFakeRooms(model.Room{ID: 1, Status: model.RoomAvailable})
	rec := &recordingBroadcaster{}
	ctrl := NewRoomController(rooms, rec)

	if _, _, err := ctrl.AdminSetStatus(context.Background(), 1, model.RoomMaintenance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.changes) != 1 || rec.changes[0] != "AVAILABLE->MAINTENANCE" {
		t.Errorf("admin override must broadcast like any other change, got %v", rec.changes)
	}
}

func TestSetStatusUnknownRoom(t *testing.T) {
	ctrl := NewRoomController(newFakeRooms(), nil)
	_, _, err := ctrl.SetStatus(context.Background(), 99, model.RoomReserved)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
