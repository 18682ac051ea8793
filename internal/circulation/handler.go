// internal/circulation/handler.go
package circulation

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

// Register mounts the circulation routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/loans", h.handleCreateLoan)
	r.Get("/loans", h.handleFindLoans)
	r.Get("/loans/{id}", h.handleGetLoan)
	r.Patch("/loans/{id}", h.handleReturnLoan)
	r.Get("/books/{id}/loans", h.handleFindLoansByBook)
}

func (h *Handler) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ISBN          string `json:"isbn"`
		Customer      string `json:"customer"`
		CustomerEmail string `json:"customer_email"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), req.ISBN, req.Customer, req.CustomerEmail)
	if err != nil {
		writeCirculationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, loan)
}

func (h *Handler) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	var req struct {
		Returned bool `json:"returned"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Returned {
		httpx.Error(w, http.StatusBadRequest, "returned must be true")
		return
	}

	loan, err := h.service.ReturnLoan(r.Context(), id)
	if err != nil {
		writeCirculationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loan)
}

func (h *Handler) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		writeCirculationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loan)
}

func (h *Handler) handleFindLoans(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		ISBN:     r.URL.Query().Get("isbn"),
		Customer: r.URL.Query().Get("customer"),
	}
	page := paging.FromRequest(r)

	loans, total, err := h.service.FindLoans(r.Context(), filter, page)
	if err != nil {
		writeCirculationError(w, err)
		return
	}
	writeLoanPage(w, loans, total, page)
}

func (h *Handler) handleFindLoansByBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid book id")
		return
	}
	page := paging.FromRequest(r)

	loans, total, err := h.service.FindLoansByBook(r.Context(), id, page)
	if err != nil {
		writeCirculationError(w, err)
		return
	}
	writeLoanPage(w, loans, total, page)
}

func writeLoanPage(w http.ResponseWriter, loans []Loan, total int, page paging.Page) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": loans,
		"total": total,
		"page":  page.Number,
		"size":  page.Size,
	})
}

func writeCirculationError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr):
		httpx.Error(w, http.StatusBadRequest, validationErr.Messages()...)
	case errors.Is(err, ErrBookNotFound):
		httpx.Error(w, http.StatusBadRequest, ErrBookNotFound.Error())
	case errors.Is(err, ErrBookAlreadyLoaned):
		httpx.Error(w, http.StatusConflict, ErrBookAlreadyLoaned.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, ErrNotFound.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
