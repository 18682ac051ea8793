// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"libris/internal/paging"
)

const pqUniqueViolation = "23505"

// PostgresRepository implements Repository on the books table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a catalog repository on the given database.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn)
	if err != nil {
		return false, fmt.Errorf("querying isbn existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) FindByISBN(ctx context.Context, isbn string) (Book, error) {
	var book Book
	err := r.db.GetContext(ctx, &book,
		`SELECT id, title, author, isbn, created_at FROM books WHERE isbn = $1`, isbn)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, fmt.Errorf("querying book by isbn: %w", err)
	}
	return book, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (Book, error) {
	var book Book
	err := r.db.GetContext(ctx, &book,
		`SELECT id, title, author, isbn, created_at FROM books WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, fmt.Errorf("querying book by id: %w", err)
	}
	return book, nil
}

// Insert persists the book. The unique index on isbn backs the service's
// existence check, so a race between two registrations still surfaces as
// ErrDuplicateISBN.
func (r *PostgresRepository) Insert(ctx context.Context, book Book) (Book, error) {
	query := `
		INSERT INTO books (id, title, author, isbn)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, author, isbn, created_at
	`
	var created Book
	err := r.db.GetContext(ctx, &created, query, book.ID, book.Title, book.Author, book.ISBN)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return Book{}, ErrDuplicateISBN
	}
	if err != nil {
		return Book{}, fmt.Errorf("inserting book: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) FindPage(ctx context.Context, filter Filter, page paging.Page) ([]Book, int, error) {
	where, args := buildBookFilter(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM books`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("counting books: %w", err)
	}

	query := `SELECT id, title, author, isbn, created_at FROM books` + where +
		` ORDER BY created_at DESC, id` +
		` LIMIT ` + strconv.Itoa(page.Limit()) +
		` OFFSET ` + strconv.Itoa(page.Offset())

	books := []Book{}
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, 0, fmt.Errorf("querying book page: %w", err)
	}
	return books, total, nil
}

func buildBookFilter(filter Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Title != "" {
		add("title ILIKE '%%' || $%d || '%%'", filter.Title)
	}
	if filter.Author != "" {
		add("author ILIKE '%%' || $%d || '%%'", filter.Author)
	}
	if filter.ISBN != "" {
		add("isbn = $%d", filter.ISBN)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
