// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/paging"
	"libris/internal/validation"
)

// service implements the Service interface.
type service struct {
	repo   Repository
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService creates a new catalog service instance.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("catalog"),
	}
}

// Register adds a new book to the catalog. The isbn must not already be
// registered; the existence check runs before any insert.
func (s *service) Register(ctx context.Context, title, author, isbn string) (Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Register")
	defer span.End()

	var check validation.Check
	check.Require("title", title)
	check.Require("author", author)
	check.Require("isbn", isbn)
	if err := check.Err(); err != nil {
		return Book{}, err
	}

	isbn = strings.TrimSpace(isbn)
	exists, err := s.repo.ExistsByISBN(ctx, isbn)
	if err != nil {
		return Book{}, fmt.Errorf("checking isbn: %w", err)
	}
	if exists {
		return Book{}, ErrDuplicateISBN
	}

	book := Book{
		ID:     uuid.New(),
		Title:  strings.TrimSpace(title),
		Author: strings.TrimSpace(author),
		ISBN:   isbn,
	}
	created, err := s.repo.Insert(ctx, book)
	if err != nil {
		return Book{}, fmt.Errorf("inserting book: %w", err)
	}

	s.logger.InfoContext(ctx, "book registered",
		"book_id", created.ID, "isbn", created.ISBN)
	return created, nil
}

// Get retrieves a book by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Get")
	defer span.End()
	return s.repo.FindByID(ctx, id)
}

// GetByISBN retrieves a book by isbn. Circulation resolves loan
// requests through this.
func (s *service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.GetByISBN")
	defer span.End()
	return s.repo.FindByISBN(ctx, strings.TrimSpace(isbn))
}

// Find is a pass-through filtered, paged catalog query.
func (s *service) Find(ctx context.Context, filter Filter, page paging.Page) ([]Book, int, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Find")
	defer span.End()
	return s.repo.FindPage(ctx, filter, page)
}
