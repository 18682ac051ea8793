// Package notify delivers late-loan notices. The scanner only sees the
// Notifier interface; SMTP is one implementation.
package notify

import "context"

// Notifier dispatches one message to a list of recipient addresses.
// Retry policy, if any, belongs to the implementation.
type Notifier interface {
	Send(ctx context.Context, message string, recipients []string) error
}
