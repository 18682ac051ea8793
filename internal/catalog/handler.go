// internal/catalog/handler.go
package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"libris/internal/httpx"
	"libris/internal/paging"
	"libris/internal/validation"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/books", h.handleRegisterBook)
	r.Get("/books", h.handleFindBooks)
	r.Get("/books/{id}", h.handleGetBook)
}

func (h *Handler) handleRegisterBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		ISBN   string `json:"isbn"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.service.Register(r.Context(), req.Title, req.Author, req.ISBN)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, book)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) handleFindBooks(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Title:  r.URL.Query().Get("title"),
		Author: r.URL.Query().Get("author"),
		ISBN:   r.URL.Query().Get("isbn"),
	}
	page := paging.FromRequest(r)

	books, total, err := h.service.Find(r.Context(), filter, page)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": books,
		"total": total,
		"page":  page.Number,
		"size":  page.Size,
	})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr):
		httpx.Error(w, http.StatusBadRequest, validationErr.Messages()...)
	case errors.Is(err, ErrDuplicateISBN):
		httpx.Error(w, http.StatusConflict, ErrDuplicateISBN.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, ErrNotFound.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
