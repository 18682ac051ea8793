// internal/catalog/domain.go
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Book is a registered catalog entry. ISBN is unique across the catalog.
type Book struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Author    string    `json:"author" db:"author"`
	ISBN      string    `json:"isbn" db:"isbn"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Filter narrows a catalog page query. Empty fields are ignored.
type Filter struct {
	Title  string
	Author string
	ISBN   string
}

var (
	// ErrDuplicateISBN is returned when registering an isbn that is
	// already in the catalog.
	ErrDuplicateISBN = errors.New("isbn already registered")

	// ErrNotFound is returned when no book matches the given id or isbn.
	ErrNotFound = errors.New("book not found")
)
