// internal/circulation/domain.go
package circulation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the loan lifecycle state. A loan opens as StatusOpen and
// transitions to StatusReturned exactly once; StatusReturned is terminal.
type Status string

const (
	StatusOpen     Status = "open"
	StatusReturned Status = "returned"
)

// Loan records a book lent to a customer. Per book at most one loan may
// be open at any instant.
type Loan struct {
	ID            uuid.UUID `json:"id"`
	BookID        uuid.UUID `json:"book_id"`
	Customer      string    `json:"customer"`
	CustomerEmail string    `json:"customer_email"`
	LoanDate      time.Time `json:"loan_date"`
	Status        Status    `json:"status"`
}

// Open reports whether the loan counts against the one-open-loan-per-book
// invariant.
func (l Loan) Open() bool {
	return l.Status != StatusReturned
}

// Filter narrows a ledger page query. Provided fields match inclusively:
// a loan qualifies when its book isbn equals ISBN or its customer equals
// Customer. With no fields set, all loans match.
type Filter struct {
	ISBN     string
	Customer string
}

var (
	// ErrBookNotFound is returned when the loan request's isbn does not
	// resolve to a catalog book.
	ErrBookNotFound = errors.New("book not found for passed isbn")

	// ErrBookAlreadyLoaned is returned when the book already has an open
	// loan. No mutation occurs.
	ErrBookAlreadyLoaned = errors.New("book already loaned")

	// ErrNotFound is returned when no loan matches the given id.
	ErrNotFound = errors.New("loan not found")
)
