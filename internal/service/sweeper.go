package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// Sweeper advances bookings whose due time has arrived independently of
// any API call. Each run makes three idempotent passes: overdue
// check-ins, overdue check-outs, and expired maintenance windows. Every
// underlying transition is status-gated, so reapplying a pass to a
// booking that already advanced (or that an API call advanced
// concurrently) is a no-op. Per-item failures are logged and never abort
// the rest of the batch.
type Sweeper struct {
	bookings  BookingStore
	lifecycle *Lifecycle
	window    time.Duration
	now       func() time.Time
}

// NewSweeper builds a sweeper sharing the lifecycle's maintenance window.
func NewSweeper(bookings BookingStore, lifecycle *Lifecycle, maintenanceWindow time.Duration) *Sweeper {
	return &Sweeper{
		bookings:  bookings,
		lifecycle: lifecycle,
		window:    maintenanceWindow,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run executes the three passes once. It only returns an error when a
// pass cannot even list its candidates; individual transition failures
// are logged and skipped.
func (s *Sweeper) Run(ctx context.Context) error {
	now := s.now()

	due, err := s.bookings.DueCheckIns(ctx, now)
	if err != nil {
		return err
	}
	for _, b := range due {
		if _, err := s.lifecycle.CheckIn(ctx, b.ID); err != nil && !isNoOp(err) {
			log.Printf("sweep: auto check-in of booking %d failed: %v", b.ID, err)
		}
	}

	due, err = s.bookings.DueCheckOuts(ctx, now)
	if err != nil {
		return err
	}
	for _, b := range due {
		if _, err := s.lifecycle.CheckOut(ctx, b.ID); err != nil && !isNoOp(err) {
			log.Printf("sweep: auto check-out of booking %d failed: %v", b.ID, err)
		}
	}

	due, err = s.bookings.DueMaintenance(ctx, now.Add(-s.window))
	if err != nil {
		return err
	}
	for _, b := range due {
		if _, err := s.lifecycle.CompleteMaintenance(ctx, b.ID); err != nil && !isNoOp(err) {
			log.Printf("sweep: maintenance completion for booking %d failed: %v", b.ID, err)
		}
	}
	return nil
}

// isNoOp reports whether a transition error just means another caller
// got there first (or an imminent booking blocks the flip). Those are
// expected during sweeps and not worth logging.
func isNoOp(err error) bool {
	var tr *repository.InvalidTransitionError
	return errors.As(err, &tr)
}
