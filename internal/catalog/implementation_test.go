// internal/catalog/implementation_test.go
package catalog

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/paging"
	"libris/internal/validation"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu          sync.Mutex
	books       map[uuid.UUID]Book
	existsCalls int
	insertCalls int
}

func newMemRepo() *memRepo {
	return &memRepo{books: make(map[uuid.UUID]Book)}
}

func (m *memRepo) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsCalls++
	for _, b := range m.books {
		if b.ISBN == isbn {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) FindByISBN(_ context.Context, isbn string) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return Book{}, ErrNotFound
}

func (m *memRepo) FindByID(_ context.Context, id uuid.UUID) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return book, nil
}

func (m *memRepo) Insert(_ context.Context, book Book) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	for _, b := range m.books {
		if b.ISBN == book.ISBN {
			return Book{}, ErrDuplicateISBN
		}
	}
	m.books[book.ID] = book
	return book, nil
}

func (m *memRepo) FindPage(_ context.Context, filter Filter, page paging.Page) ([]Book, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []Book
	for _, b := range m.books {
		if filter.ISBN != "" && b.ISBN != filter.ISBN {
			continue
		}
		matched = append(matched, b)
	}
	return matched, len(matched), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterAssignsID(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, testLogger())

	book, err := svc.Register(context.Background(), "The Adventures", "Jane Doe", "123")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, book.ID)
	assert.Equal(t, "The Adventures", book.Title)
	assert.Equal(t, "Jane Doe", book.Author)
	assert.Equal(t, "123", book.ISBN)
}

func TestRegisterDuplicateISBN(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, testLogger())

	_, err := svc.Register(context.Background(), "The Adventures", "Jane Doe", "123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Another Title", "John Doe", "123")
	require.ErrorIs(t, err, ErrDuplicateISBN)
	assert.Equal(t, 1, repo.insertCalls, "catalog unchanged after the failed call")
	assert.Len(t, repo.books, 1)
}

func TestRegisterValidation(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, testLogger())

	_, err := svc.Register(context.Background(), "", "Jane Doe", "  ")

	var validationErr *validation.Error
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"title", "isbn"}, validationErr.Missing)
	assert.Zero(t, repo.existsCalls, "validation fails before any store access")
	assert.Zero(t, repo.insertCalls)
}

func TestGetNotFound(t *testing.T) {
	svc := NewService(newMemRepo(), testLogger())

	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetByISBN(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, testLogger())

	created, err := svc.Register(context.Background(), "The Adventures", "Jane Doe", "123")
	require.NoError(t, err)

	got, err := svc.GetByISBN(context.Background(), " 123 ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID, "isbn lookup trims whitespace")

	_, err = svc.GetByISBN(context.Background(), "999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindPassThrough(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, testLogger())

	_, err := svc.Register(context.Background(), "The Adventures", "Jane Doe", "123")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Second Book", "John Doe", "456")
	require.NoError(t, err)

	books, total, err := svc.Find(context.Background(), Filter{ISBN: "456"}, paging.Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, "456", books[0].ISBN)
}
