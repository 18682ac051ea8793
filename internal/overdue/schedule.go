package overdue

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const scanTimeout = 5 * time.Minute

// NewCron builds a cron runner whose jobs skip a tick while the previous
// run is still going, so scans stay serialized with respect to themselves.
func NewCron(logger *slog.Logger) *cron.Cron {
	return cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{logger}),
	))
}

// Schedule attaches the scanner to the cron runner under the given spec
// (standard five-field cron, e.g. "0 0 * * *" for daily at midnight).
func Schedule(c *cron.Cron, spec string, scanner *Scanner, logger *slog.Logger) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		late, err := scanner.Scan(ctx)
		if err != nil {
			logger.Error("late loan scan failed", "err", err, "late_loans", len(late))
		}
	})
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"err", err}, keysAndValues...)...)
}
