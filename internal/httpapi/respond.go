package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/cart"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/catalog"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/order"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/payment"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/pricing"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleDomainError maps domain sentinels to HTTP responses. Signature
// failures are logged with detail server-side but answered generically so
// the response aids no forgery attempt.
func handleDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, cart.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", "cart not found")
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", "line item not found")
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")

	case errors.Is(err, cart.ErrOutOfStock):
		respondError(w, http.StatusBadRequest, "out_of_stock", "product is out of stock")
	case errors.Is(err, cart.ErrInvalidPrice):
		respondError(w, http.StatusBadRequest, "invalid_price", "product has no valid price")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
	case errors.Is(err, pricing.ErrBelowMinimumOrder):
		respondError(w, http.StatusBadRequest, "below_minimum_order", "wholesale orders must meet the minimum order value")
	case errors.Is(err, pricing.ErrEmptyOrder):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to checkout")
	case errors.Is(err, payment.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must be at least 1")
	case errors.Is(err, order.ErrInvalidTotals):
		respondError(w, http.StatusBadRequest, "invalid_totals", "order totals are inconsistent")
	case errors.Is(err, order.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
	case errors.Is(err, order.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "invalid_transition", err.Error())

	case errors.Is(err, payment.ErrInvalidSignature):
		logger.Warn("payment signature verification failed", "error", err)
		respondError(w, http.StatusBadRequest, "verification_failed", "payment verification failed")
	case errors.Is(err, payment.ErrPaymentProvider):
		respondError(w, http.StatusBadGateway, "payment_provider_error", err.Error())

	default:
		logger.Error("internal error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
