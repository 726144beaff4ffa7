// Package mail sends account lifecycle notifications. Delivery is
// fire-and-forget from the caller's point of view: failures are logged by
// the caller, never surfaced to the end user.
package mail

import "context"

// Notifier sends the two account lifecycle emails.
type Notifier interface {
	// SendWelcome greets a freshly registered account.
	SendWelcome(ctx context.Context, email, name string) error

	// SendCancellation says goodbye after account deletion.
	SendCancellation(ctx context.Context, email, name string) error
}

// NoopNotifier discards all notifications. Used when no mail provider is
// configured.
type NoopNotifier struct{}

func (NoopNotifier) SendWelcome(ctx context.Context, email, name string) error      { return nil }
func (NoopNotifier) SendCancellation(ctx context.Context, email, name string) error { return nil }
