// Package overdue finds loans unreturned past the grace period and hands
// the customers' addresses to the notifier. Detection never mutates loan
// state; returning late books stays the circulation service's business.
package overdue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/circulation"
	"libris/internal/notify"
)

// Ledger is the slice of the loan store the scanner needs.
type Ledger interface {
	FindOverdueUnreturned(ctx context.Context, cutoff time.Time) ([]circulation.Loan, error)
}

// Scanner runs the late-loan sweep.
type Scanner struct {
	ledger    Ledger
	notifier  notify.Notifier
	graceDays int
	message   string
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	lateNotified metric.Int64Counter
}

// Option configures the scanner.
type Option func(*Scanner)

// WithClock overrides the current-time source so boundary tests are
// deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// NewScanner creates a scanner with the given grace period in days.
func NewScanner(ledger Ledger, notifier notify.Notifier, graceDays int, message string, logger *slog.Logger, opts ...Option) *Scanner {
	lateNotified, _ := otel.Meter("overdue").Int64Counter("late_loans_notified_total")

	s := &Scanner{
		ledger:       ledger,
		notifier:     notifier,
		graceDays:    graceDays,
		message:      message,
		logger:       logger,
		tracer:       otel.Tracer("overdue"),
		now:          time.Now,
		lateNotified: lateNotified,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan lists every open loan with loan_date <= today - grace and sends
// the notice to the customers' addresses, duplicates kept. The late list
// is returned even when dispatch fails, and the dispatch failure is the
// run's single error.
func (s *Scanner) Scan(ctx context.Context) ([]circulation.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "overdue.Scan")
	defer span.End()

	cutoff := dateOf(s.now()).AddDate(0, 0, -s.graceDays)
	late, err := s.ledger.FindOverdueUnreturned(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying overdue loans: %w", err)
	}
	if len(late) == 0 {
		s.logger.InfoContext(ctx, "late loan scan found nothing", "cutoff", cutoff)
		return late, nil
	}

	recipients := make([]string, 0, len(late))
	for _, loan := range late {
		recipients = append(recipients, loan.CustomerEmail)
	}

	if err := s.notifier.Send(ctx, s.message, recipients); err != nil {
		return late, fmt.Errorf("notifying %d late loans: %w", len(late), err)
	}

	s.lateNotified.Add(ctx, int64(len(late)))
	s.logger.InfoContext(ctx, "late loan notices sent",
		"late_loans", len(late), "cutoff", cutoff)
	return late, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
