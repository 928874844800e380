// Package notifier abstracts the outbound delivery capability so the
// transport (email, push, SMS) can change without touching the worker.
package notifier

import (
	"context"
	"log"
)

// Notifier delivers one message to one recipient. Implementations must
// be safe for concurrent use. The delivery worker treats any returned
// error as a failed attempt subject to retry.
type Notifier interface {
	Send(ctx context.Context, recipient uint64, subject, body string) error
}

// ConsoleNotifier writes deliveries to the process log. It is the
// default capability until a real email or push transport is wired in.
type ConsoleNotifier struct{}

// NewConsole returns a ConsoleNotifier.
func NewConsole() *ConsoleNotifier { return &ConsoleNotifier{} }

// Send logs the message and reports success.
func (c *ConsoleNotifier) Send(_ context.Context, recipient uint64, subject, body string) error {
	log.Printf("[notify] user=%d subject=%q :: %s", recipient, subject, body)
	return nil
}
