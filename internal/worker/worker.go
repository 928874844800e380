// Package worker drains the notification queue. Each run claims
// notifications one at a time through the store's atomic claim
// operation, attempts delivery through the configured capability and
// finalizes the item as sent, retried with backoff, or permanently
// failed.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/notifier"
)

// DeliveryMode is the feature flag governing the delivery capability.
type DeliveryMode string

const (
	ModeOn     DeliveryMode = "on"      // real delivery attempts
	ModeOff    DeliveryMode = "off"     // force failure (controlled degradation)
	ModeDryRun DeliveryMode = "dry-run" // log and report success without sending
)

// ParseDeliveryMode normalizes a config string to a DeliveryMode,
// defaulting to on.
func ParseDeliveryMode(s string) DeliveryMode {
	switch DeliveryMode(s) {
	case ModeOff, ModeDryRun:
		return DeliveryMode(s)
	}
	return ModeOn
}

// Store is the claim-and-finalize side of the notification repository.
// ClaimNext must be atomic: the selection of the oldest eligible PENDING
// item and its move to PROCESSING happen as one operation, so at most
// one worker ever holds a given notification.
type Store interface {
	ClaimNext(ctx context.Context, now time.Time) (model.Notification, bool, error)
	MarkSent(ctx context.Context, id uint64, sentAt time.Time) error
	MarkRetry(ctx context.Context, id uint64, attempts int, nextAttempt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id uint64, attempts int, lastError string) error
}

// Config carries the worker's tunables.
type Config struct {
	BatchLimit int           // max notifications per run
	MaxRetries int           // attempts before a notification is terminally FAILED
	Backoff    BackoffPolicy // retry schedule
	Mode       DeliveryMode  // delivery feature flag
}

// Worker claims and delivers queued notifications.
type Worker struct {
	store    Store
	notifier notifier.Notifier
	cfg      Config
	now      func() time.Time
}

// New builds a worker.
func New(store Store, n notifier.Notifier, cfg Config) *Worker {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &Worker{
		store:    store,
		notifier: n,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ProcessPending claims and processes eligible notifications until the
// batch limit is reached or the queue has no eligible item left. The
// limit bounds worst-case latency per scheduler tick. Per-item delivery
// failures are recorded on the notification and never abort the batch;
// only a claim failure (the store itself erroring) stops the run.
func (w *Worker) ProcessPending(ctx context.Context) (int, error) {
	processed := 0
	for processed < w.cfg.BatchLimit {
		n, ok, err := w.store.ClaimNext(ctx, w.now())
		if err != nil {
			return processed, err
		}
		if !ok {
			break
		}
		w.deliver(ctx, n)
		processed++
	}
	return processed, nil
}

// deliver attempts one delivery and finalizes the claimed notification.
func (w *Worker) deliver(ctx context.Context, n model.Notification) {
	err := w.attempt(ctx, n)
	now := w.now()
	if err == nil {
		if markErr := w.store.MarkSent(ctx, n.ID, now); markErr != nil {
			log.Printf("worker: mark notification %d sent failed: %v", n.ID, markErr)
		}
		return
	}

	attempts := n.Attempts + 1
	if attempts >= w.cfg.MaxRetries {
		log.Printf("worker: notification %d failed permanently after %d attempts: %v", n.ID, attempts, err)
		if markErr := w.store.MarkFailed(ctx, n.ID, attempts, err.Error()); markErr != nil {
			log.Printf("worker: mark notification %d failed errored: %v", n.ID, markErr)
		}
		return
	}
	next := now.Add(w.cfg.Backoff.Delay(attempts))
	log.Printf("worker: notification %d attempt %d failed, retrying at %s: %v", n.ID, attempts, next.Format(time.RFC3339), err)
	if markErr := w.store.MarkRetry(ctx, n.ID, attempts, next, err.Error()); markErr != nil {
		log.Printf("worker: mark notification %d for retry failed: %v", n.ID, markErr)
	}
}

// attempt performs a single delivery honoring the feature flag. A panic
// inside the capability is converted into a failure so one bad message
// cannot take the worker down.
func (w *Worker) attempt(ctx context.Context, n model.Notification) (err error) {
	switch w.cfg.Mode {
	case ModeOff:
		return fmt.Errorf("delivery disabled by feature flag")
	case ModeDryRun:
		log.Printf("worker: dry-run delivery of notification %d to user %d", n.ID, n.UserID)
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("delivery panicked: %v", r)
		}
	}()
	return w.notifier.Send(ctx, n.UserID, subject(n), n.Message)
}

func subject(n model.Notification) string {
	if n.Title != nil && *n.Title != "" {
		return *n.Title
	}
	return "Notification"
}
