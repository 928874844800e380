package model

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to BookingStatus }{
		{BookingPending, BookingInProgress},
		{BookingPending, BookingCancelled},
		{BookingConfirmed, BookingInProgress},
		{BookingConfirmed, BookingCancelled},
		{BookingInProgress, BookingCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be legal", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to BookingStatus }{
		{BookingPending, BookingCompleted},
		{BookingConfirmed, BookingCompleted},
		{BookingInProgress, BookingCancelled},
		{BookingCompleted, BookingInProgress},
		{BookingCompleted, BookingCancelled},
		{BookingCancelled, BookingConfirmed},
		{BookingCancelled, BookingInProgress},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
}

func TestTerminalStatusesHaveNoEdges(t *testing.T) {
	all := []BookingStatus{BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled}
	for _, to := range all {
		if CanTransition(BookingCompleted, to) {
			t.Errorf("COMPLETED must not transition to %s", to)
		}
		if CanTransition(BookingCancelled, to) {
			t.Errorf("CANCELLED must not transition to %s", to)
		}
	}
}

func TestTransitionSources(t *testing.T) {
	got := TransitionSources(BookingCancelled)
	if len(got) != 2 {
		t.Fatalf("sources of CANCELLED = %v, want PENDING and CONFIRMED", got)
	}
	seen := map[BookingStatus]bool{}
	for _, s := range got {
		seen[s] = true
	}
	if !seen[BookingPending] || !seen[BookingConfirmed] {
		t.Errorf("sources of CANCELLED = %v, want PENDING and CONFIRMED", got)
	}

	got = TransitionSources(BookingCompleted)
	if len(got) != 1 || got[0] != BookingInProgress {
		t.Errorf("sources of COMPLETED = %v, want [IN_PROGRESS]", got)
	}
}

func TestValidRoomStatus(t *testing.T) {
	for _, s := range []RoomStatus{RoomAvailable, RoomReserved, RoomOccupied, RoomMaintenance} {
		if !ValidRoomStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if ValidRoomStatus("CLEANING") {
		t.Errorf("unknown status should be invalid")
	}
	if ValidRoomStatus("") {
		t.Errorf("empty status should be invalid")
	}
}
