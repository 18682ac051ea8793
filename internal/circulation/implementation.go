// internal/circulation/implementation.go
package circulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/catalog"
	"libris/internal/paging"
	"libris/internal/validation"
)

// service implements the Service interface.
type service struct {
	ledger Ledger
	books  BookResolver
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time

	loansCreated  metric.Int64Counter
	loansReturned metric.Int64Counter
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the current-time source. Loan dates derive from it,
// so tests inject a fixed clock here.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new circulation service instance.
func NewService(ledger Ledger, books BookResolver, logger *slog.Logger, opts ...Option) Service {
	meter := otel.Meter("circulation")
	loansCreated, _ := meter.Int64Counter("loans_created_total")
	loansReturned, _ := meter.Int64Counter("loans_returned_total")

	s := &service{
		ledger:        ledger,
		books:         books,
		logger:        logger,
		tracer:        otel.Tracer("circulation"),
		now:           time.Now,
		loansCreated:  loansCreated,
		loansReturned: loansReturned,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLoan opens a loan for the book with the given isbn. The open-loan
// pre-check gives the common case a clean error; the ledger's atomic
// insert is what actually guarantees that two concurrent requests for the
// same book cannot both succeed.
func (s *service) CreateLoan(ctx context.Context, isbn, customer, customerEmail string) (Loan, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.CreateLoan")
	defer span.End()

	var check validation.Check
	check.Require("isbn", isbn)
	check.Require("customer", customer)
	check.Require("customer_email", customerEmail)
	if err := check.Err(); err != nil {
		return Loan{}, err
	}

	book, err := s.books.GetByISBN(ctx, isbn)
	if errors.Is(err, catalog.ErrNotFound) {
		return Loan{}, ErrBookNotFound
	}
	if err != nil {
		return Loan{}, fmt.Errorf("resolving book: %w", err)
	}

	open, err := s.ledger.ExistsOpenLoanForBook(ctx, book.ID)
	if err != nil {
		return Loan{}, fmt.Errorf("checking open loan: %w", err)
	}
	if open {
		return Loan{}, ErrBookAlreadyLoaned
	}

	loan := Loan{
		ID:            uuid.New(),
		BookID:        book.ID,
		Customer:      strings.TrimSpace(customer),
		CustomerEmail: strings.TrimSpace(customerEmail),
		LoanDate:      dateOf(s.now()),
		Status:        StatusOpen,
	}
	created, err := s.ledger.Insert(ctx, loan)
	if errors.Is(err, ErrBookAlreadyLoaned) {
		// Lost the race against a concurrent loan on the same book.
		return Loan{}, ErrBookAlreadyLoaned
	}
	if err != nil {
		return Loan{}, fmt.Errorf("inserting loan: %w", err)
	}

	s.loansCreated.Add(ctx, 1)
	s.logger.InfoContext(ctx, "loan created",
		"loan_id", created.ID, "book_id", created.BookID, "customer", created.Customer)
	return created, nil
}

// ReturnLoan closes the loan. Returning an already-returned loan is an
// idempotent no-op: the loan is returned unchanged and the uniqueness
// invariant is untouched.
func (s *service) ReturnLoan(ctx context.Context, id uuid.UUID) (Loan, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.ReturnLoan")
	defer span.End()

	loan, err := s.ledger.FindByID(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if loan.Status == StatusReturned {
		return loan, nil
	}

	loan.Status = StatusReturned
	updated, err := s.ledger.Update(ctx, loan)
	if err != nil {
		return Loan{}, fmt.Errorf("updating loan: %w", err)
	}

	s.loansReturned.Add(ctx, 1)
	s.logger.InfoContext(ctx, "loan returned",
		"loan_id", updated.ID, "book_id", updated.BookID)
	return updated, nil
}

// GetLoan retrieves a loan by id.
func (s *service) GetLoan(ctx context.Context, id uuid.UUID) (Loan, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.GetLoan")
	defer span.End()
	return s.ledger.FindByID(ctx, id)
}

// FindLoans pages loans matching the filter's isbn or customer
// (inclusive-or).
func (s *service) FindLoans(ctx context.Context, filter Filter, page paging.Page) ([]Loan, int, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.FindLoans")
	defer span.End()
	return s.ledger.FindPage(ctx, filter, page)
}

// FindLoansByBook pages the loan history of a book.
func (s *service) FindLoansByBook(ctx context.Context, bookID uuid.UUID, page paging.Page) ([]Loan, int, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.FindLoansByBook")
	defer span.End()
	return s.ledger.FindPageByBook(ctx, bookID, page)
}

// dateOf truncates t to a calendar date in UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
