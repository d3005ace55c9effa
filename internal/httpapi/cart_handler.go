package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/cart"
)

// CartService is the slice of the cart service the HTTP layer consumes.
type CartService interface {
	GetCart(ctx context.Context, owner string) (*cart.View, error)
	AddItem(ctx context.Context, owner string, productID int64, quantity int, wantsWholesale bool) (*cart.View, error)
	UpdateQuantity(ctx context.Context, owner, lineID string, quantity int) (*cart.View, error)
	RemoveItem(ctx context.Context, owner, lineID string) (*cart.View, error)
	Clear(ctx context.Context, owner string) error
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
	logger  *slog.Logger
}

func NewCartHandler(carts CartService, timeout time.Duration, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, timeout: timeout, logger: logger}
}

type addItemRequest struct {
	ProductID   int64 `json:"product_id"`
	Quantity    int   `json:"quantity"`
	IsWholesale bool  `json:"is_wholesale"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	view, err := h.carts.GetCart(ctx, p.UserID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	view, err := h.carts.AddItem(ctx, p.UserID, req.ProductID, req.Quantity, req.IsWholesale)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lineID := chi.URLParam(r, "line_id")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "missing_line_id", "line_id is required")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	view, err := h.carts.UpdateQuantity(ctx, p.UserID, lineID, req.Quantity)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lineID := chi.URLParam(r, "line_id")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "missing_line_id", "line_id is required")
		return
	}

	view, err := h.carts.RemoveItem(ctx, p.UserID, lineID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.carts.Clear(ctx, p.UserID); err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
