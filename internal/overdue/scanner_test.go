// internal/overdue/scanner_test.go
package overdue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/circulation"
)

// memLedger applies the overdue rule in memory: open and
// loan_date <= cutoff.
type memLedger struct {
	loans      []circulation.Loan
	lastCutoff time.Time
	err        error
}

func (m *memLedger) FindOverdueUnreturned(_ context.Context, cutoff time.Time) ([]circulation.Loan, error) {
	m.lastCutoff = cutoff
	if m.err != nil {
		return nil, m.err
	}
	var late []circulation.Loan
	for _, l := range m.loans {
		if l.Open() && !l.LoanDate.After(cutoff) {
			late = append(late, l)
		}
	}
	return late, nil
}

// recordingNotifier captures the dispatch.
type recordingNotifier struct {
	message    string
	recipients []string
	calls      int
	err        error
}

func (n *recordingNotifier) Send(_ context.Context, message string, recipients []string) error {
	n.calls++
	n.message = message
	n.recipients = recipients
	return n.err
}

var today = time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func day(offset int) time.Time {
	return time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func loanOn(date time.Time, email string, status circulation.Status) circulation.Loan {
	return circulation.Loan{
		ID:            uuid.New(),
		BookID:        uuid.New(),
		Customer:      "Ann",
		CustomerEmail: email,
		LoanDate:      date,
		Status:        status,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScanner(ledger *memLedger, notifier *recordingNotifier, grace int) *Scanner {
	return NewScanner(ledger, notifier, grace, "please return your book", testLogger(),
		WithClock(fixedClock))
}

func TestScanBoundary(t *testing.T) {
	atBoundary := loanOn(day(-3), "boundary@example.com", circulation.StatusOpen)
	ledger := &memLedger{loans: []circulation.Loan{
		atBoundary,
		loanOn(day(-2), "recent@example.com", circulation.StatusOpen),
		loanOn(day(-5), "returned@example.com", circulation.StatusReturned),
	}}
	notifier := &recordingNotifier{}

	late, err := newTestScanner(ledger, notifier, 3).Scan(context.Background())
	require.NoError(t, err)

	// Grace 3, today T: T-3 qualifies, T-2 does not, returned never does.
	require.Len(t, late, 1)
	assert.Equal(t, atBoundary.ID, late[0].ID)
	assert.Equal(t, day(-3), ledger.lastCutoff, "cutoff is today minus grace, as a date")
	assert.Equal(t, []string{"boundary@example.com"}, notifier.recipients)
	assert.Equal(t, "please return your book", notifier.message)
}

func TestScanKeepsDuplicateRecipients(t *testing.T) {
	ledger := &memLedger{loans: []circulation.Loan{
		loanOn(day(-10), "ann@example.com", circulation.StatusOpen),
		loanOn(day(-7), "ann@example.com", circulation.StatusOpen),
	}}
	notifier := &recordingNotifier{}

	late, err := newTestScanner(ledger, notifier, 3).Scan(context.Background())
	require.NoError(t, err)

	assert.Len(t, late, 2)
	assert.Equal(t, []string{"ann@example.com", "ann@example.com"}, notifier.recipients)
}

func TestScanNothingLate(t *testing.T) {
	ledger := &memLedger{loans: []circulation.Loan{
		loanOn(day(0), "ann@example.com", circulation.StatusOpen),
	}}
	notifier := &recordingNotifier{}

	late, err := newTestScanner(ledger, notifier, 3).Scan(context.Background())
	require.NoError(t, err)

	assert.Empty(t, late)
	assert.Zero(t, notifier.calls, "no notice is sent for an empty late list")
}

func TestScanNotifierFailure(t *testing.T) {
	ledger := &memLedger{loans: []circulation.Loan{
		loanOn(day(-10), "ann@example.com", circulation.StatusOpen),
	}}
	notifier := &recordingNotifier{err: errors.New("smtp down")}

	late, err := newTestScanner(ledger, notifier, 3).Scan(context.Background())

	require.ErrorContains(t, err, "smtp down")
	assert.Len(t, late, 1, "the computed late list survives a dispatch failure")
}

func TestScanLedgerFailure(t *testing.T) {
	ledger := &memLedger{err: errors.New("store unavailable")}
	notifier := &recordingNotifier{}

	_, err := newTestScanner(ledger, notifier, 3).Scan(context.Background())

	require.ErrorContains(t, err, "store unavailable")
	assert.Zero(t, notifier.calls)
}

func TestScanNeverMutatesLoans(t *testing.T) {
	loan := loanOn(day(-10), "ann@example.com", circulation.StatusOpen)
	ledger := &memLedger{loans: []circulation.Loan{loan}}
	notifier := &recordingNotifier{}

	_, err := newTestScanner(ledger, notifier, 3).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, circulation.StatusOpen, ledger.loans[0].Status)
}
