// internal/circulation/postgres.go
package circulation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"libris/internal/paging"
)

const pqUniqueViolation = "23505"

// loanRow is the storage shape of a loan. The returned column is a
// nullable boolean for historical reasons; NULL and FALSE both mean the
// loan is open, and statusOf is the single place that rule lives.
type loanRow struct {
	ID            uuid.UUID    `db:"id"`
	BookID        uuid.UUID    `db:"book_id"`
	Customer      string       `db:"customer"`
	CustomerEmail string       `db:"customer_email"`
	LoanDate      time.Time    `db:"loan_date"`
	Returned      sql.NullBool `db:"returned"`
}

func (r loanRow) toLoan() Loan {
	return Loan{
		ID:            r.ID,
		BookID:        r.BookID,
		Customer:      r.Customer,
		CustomerEmail: r.CustomerEmail,
		LoanDate:      r.LoanDate,
		Status:        statusOf(r.Returned),
	}
}

// statusOf maps the tri-state returned column to the loan status:
// only an explicit TRUE closes the loan.
func statusOf(returned sql.NullBool) Status {
	if returned.Valid && returned.Bool {
		return StatusReturned
	}
	return StatusOpen
}

const loanColumns = "id, book_id, customer, customer_email, loan_date, returned"

// PostgresLedger implements Ledger on the loans table. The partial unique
// index loans_one_open_per_book makes Insert atomic with respect to the
// open-loan check: a concurrent double insert surfaces as a unique
// violation, never as a second open loan.
type PostgresLedger struct {
	db *sqlx.DB
}

// NewPostgresLedger creates a ledger on the given database.
func NewPostgresLedger(db *sqlx.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Insert(ctx context.Context, loan Loan) (Loan, error) {
	query := `
		INSERT INTO loans (id, book_id, customer, customer_email, loan_date, returned)
		VALUES ($1, $2, $3, $4, $5, NULL)
		RETURNING ` + loanColumns
	var row loanRow
	err := l.db.GetContext(ctx, &row, query,
		loan.ID, loan.BookID, loan.Customer, loan.CustomerEmail, loan.LoanDate)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return Loan{}, ErrBookAlreadyLoaned
	}
	if err != nil {
		return Loan{}, fmt.Errorf("inserting loan: %w", err)
	}
	return row.toLoan(), nil
}

func (l *PostgresLedger) Update(ctx context.Context, loan Loan) (Loan, error) {
	query := `
		UPDATE loans SET returned = $2
		WHERE id = $1
		RETURNING ` + loanColumns
	var row loanRow
	err := l.db.GetContext(ctx, &row, query, loan.ID, loan.Status == StatusReturned)
	if errors.Is(err, sql.ErrNoRows) {
		return Loan{}, ErrNotFound
	}
	if err != nil {
		return Loan{}, fmt.Errorf("updating loan: %w", err)
	}
	return row.toLoan(), nil
}

func (l *PostgresLedger) FindByID(ctx context.Context, id uuid.UUID) (Loan, error) {
	var row loanRow
	err := l.db.GetContext(ctx, &row,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Loan{}, ErrNotFound
	}
	if err != nil {
		return Loan{}, fmt.Errorf("querying loan by id: %w", err)
	}
	return row.toLoan(), nil
}

func (l *PostgresLedger) ExistsOpenLoanForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := l.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE book_id = $1 AND NOT COALESCE(returned, FALSE)
		)`, bookID)
	if err != nil {
		return false, fmt.Errorf("querying open loan existence: %w", err)
	}
	return exists, nil
}

// FindPage matches loans whose book isbn equals the filter's isbn or
// whose customer equals the filter's customer. Omitted fields drop out of
// the condition; an empty filter pages the whole ledger.
func (l *PostgresLedger) FindPage(ctx context.Context, filter Filter, page paging.Page) ([]Loan, int, error) {
	var conds []string
	var args []any
	if filter.ISBN != "" {
		args = append(args, filter.ISBN)
		conds = append(conds, fmt.Sprintf("b.isbn = $%d", len(args)))
	}
	if filter.Customer != "" {
		args = append(args, filter.Customer)
		conds = append(conds, fmt.Sprintf("l.customer = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " OR ")
	}
	from := ` FROM loans l JOIN books b ON b.id = l.book_id` + where

	var total int
	if err := l.db.GetContext(ctx, &total, `SELECT COUNT(*)`+from, args...); err != nil {
		return nil, 0, fmt.Errorf("counting loans: %w", err)
	}

	query := `SELECT l.id, l.book_id, l.customer, l.customer_email, l.loan_date, l.returned` +
		from + ` ORDER BY l.loan_date DESC, l.id` +
		` LIMIT ` + strconv.Itoa(page.Limit()) +
		` OFFSET ` + strconv.Itoa(page.Offset())

	return l.selectLoans(ctx, query, args, total)
}

func (l *PostgresLedger) FindPageByBook(ctx context.Context, bookID uuid.UUID, page paging.Page) ([]Loan, int, error) {
	var total int
	err := l.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM loans WHERE book_id = $1`, bookID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting loans by book: %w", err)
	}

	query := `SELECT ` + loanColumns + ` FROM loans WHERE book_id = $1` +
		` ORDER BY loan_date DESC, id` +
		` LIMIT ` + strconv.Itoa(page.Limit()) +
		` OFFSET ` + strconv.Itoa(page.Offset())

	return l.selectLoans(ctx, query, []any{bookID}, total)
}

func (l *PostgresLedger) FindOverdueUnreturned(ctx context.Context, cutoff time.Time) ([]Loan, error) {
	rows := []loanRow{}
	err := l.db.SelectContext(ctx, &rows, `
		SELECT `+loanColumns+` FROM loans
		WHERE loan_date <= $1 AND NOT COALESCE(returned, FALSE)
		ORDER BY loan_date, id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying overdue loans: %w", err)
	}
	loans := make([]Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.toLoan())
	}
	return loans, nil
}

func (l *PostgresLedger) selectLoans(ctx context.Context, query string, args []any, total int) ([]Loan, int, error) {
	rows := []loanRow{}
	if err := l.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("querying loan page: %w", err)
	}
	loans := make([]Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.toLoan())
	}
	return loans, total, nil
}
