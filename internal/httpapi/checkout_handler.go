package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/payment"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/pricing"
)

// IntentBroker opens gateway orders. Amounts go in as major units.
type IntentBroker interface {
	CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*payment.Intent, error)
}

type CheckoutHandler struct {
	carts    CartService
	broker   IntentBroker
	currency string
	timeout  time.Duration
	logger   *slog.Logger
}

func NewCheckoutHandler(carts CartService, broker IntentBroker, currency string, timeout time.Duration, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		broker:   broker,
		currency: currency,
		timeout:  timeout,
		logger:   logger,
	}
}

type checkoutRequest struct {
	DeliveryOption string `json:"delivery_option"`
}

type checkoutResponse struct {
	Quote          pricing.Totals `json:"quote"`
	GatewayOrderID string         `json:"gateway_order_id"`
	Amount         int64          `json:"amount"` // minor units, as the gateway echoes it
	Currency       string         `json:"currency"`
	Receipt        string         `json:"receipt"`
}

// Checkout recomputes authoritative totals from the stored cart and opens
// a payment intent for them. Client-supplied amounts never reach the
// gateway from here.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	delivery := pricing.DeliveryOption(req.DeliveryOption)
	if delivery == "" {
		delivery = pricing.DeliveryNormal
	}
	if delivery != pricing.DeliveryNormal && delivery != pricing.DeliveryExpress {
		respondError(w, http.StatusBadRequest, "invalid_delivery_option", "delivery_option must be normal or express")
		return
	}

	view, err := h.carts.GetCart(ctx, p.UserID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	lines := make([]pricing.Line, 0, len(view.Items))
	for _, item := range view.Lines() {
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}

	quote, err := pricing.Quote(lines, pricing.Buyer{
		Wholesale: p.IsWholesale(),
		Delivery:  delivery,
	})
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	receipt := uuid.NewString()
	intent, err := h.broker.CreateIntent(ctx, quote.Total, h.currency, receipt)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse{
		Quote:          quote,
		GatewayOrderID: intent.GatewayOrderID,
		Amount:         intent.Amount,
		Currency:       intent.Currency,
		Receipt:        receipt,
	})
}
