// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"

	"libris/internal/paging"
)

// Service defines the interface for the catalog service.
type Service interface {
	Register(ctx context.Context, title, author, isbn string) (Book, error)
	Get(ctx context.Context, id uuid.UUID) (Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	Find(ctx context.Context, filter Filter, page paging.Page) ([]Book, int, error)
}

// Repository is the storage contract the catalog requires.
type Repository interface {
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	FindByISBN(ctx context.Context, isbn string) (Book, error)
	FindByID(ctx context.Context, id uuid.UUID) (Book, error)
	Insert(ctx context.Context, book Book) (Book, error)
	FindPage(ctx context.Context, filter Filter, page paging.Page) ([]Book, int, error)
}
