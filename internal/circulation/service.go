// internal/circulation/service.go
package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"libris/internal/catalog"
	"libris/internal/paging"
)

// Service defines the interface for the circulation service.
type Service interface {
	CreateLoan(ctx context.Context, isbn, customer, customerEmail string) (Loan, error)
	ReturnLoan(ctx context.Context, id uuid.UUID) (Loan, error)
	GetLoan(ctx context.Context, id uuid.UUID) (Loan, error)
	FindLoans(ctx context.Context, filter Filter, page paging.Page) ([]Loan, int, error)
	FindLoansByBook(ctx context.Context, bookID uuid.UUID, page paging.Page) ([]Loan, int, error)
}

// Ledger is the loan storage contract. Implementations must be safe for
// concurrent use and must treat a NULL and a FALSE returned column
// identically as "open".
type Ledger interface {
	// Insert persists a new open loan. It returns ErrBookAlreadyLoaned
	// when the book already has an open loan; the check and the insert
	// are a single atomic operation, so concurrent inserts for the same
	// book cannot both succeed.
	Insert(ctx context.Context, loan Loan) (Loan, error)
	Update(ctx context.Context, loan Loan) (Loan, error)
	FindByID(ctx context.Context, id uuid.UUID) (Loan, error)
	ExistsOpenLoanForBook(ctx context.Context, bookID uuid.UUID) (bool, error)
	FindPage(ctx context.Context, filter Filter, page paging.Page) ([]Loan, int, error)
	FindPageByBook(ctx context.Context, bookID uuid.UUID, page paging.Page) ([]Loan, int, error)
	// FindOverdueUnreturned lists every open loan with
	// loan_date <= cutoff, unpaged.
	FindOverdueUnreturned(ctx context.Context, cutoff time.Time) ([]Loan, error)
}

// BookResolver resolves catalog books for loan creation. catalog.Service
// satisfies it.
type BookResolver interface {
	GetByISBN(ctx context.Context, isbn string) (catalog.Book, error)
}
