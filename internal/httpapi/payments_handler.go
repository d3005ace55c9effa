package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/order"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/payment"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/pricing"
)

type PaymentsHandler struct {
	broker       IntentBroker
	orders       OrderService
	sharedSecret string
	timeout      time.Duration
	logger       *slog.Logger
}

func NewPaymentsHandler(broker IntentBroker, orders OrderService, sharedSecret string, timeout time.Duration, logger *slog.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		broker:       broker,
		orders:       orders,
		sharedSecret: sharedSecret,
		timeout:      timeout,
		logger:       logger,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"` // major units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderPayload struct {
	Items        []order.Item          `json:"items"`
	Subtotal     int64                 `json:"subtotal"`
	ShippingCost int64                 `json:"shipping_cost"`
	Tax          int64                 `json:"tax"`
	Total        int64                 `json:"total"`
	Shipping     order.ShippingDetails `json:"shipping"`
}

type verifyPaymentRequest struct {
	GatewayOrderID   string       `json:"gateway_order_id"`
	GatewayPaymentID string       `json:"gateway_payment_id"`
	Signature        string       `json:"signature"`
	Order            orderPayload `json:"order"`
}

func (h *PaymentsHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if _, ok := principalFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Currency == "" {
		respondError(w, http.StatusBadRequest, "invalid_currency", "currency is required")
		return
	}
	if req.Receipt == "" {
		respondError(w, http.StatusBadRequest, "invalid_receipt", "receipt is required")
		return
	}

	intent, err := h.broker.CreateIntent(ctx, req.Amount, req.Currency, req.Receipt)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, intent)
}

// VerifyPayment authenticates a gateway payment confirmation and, on
// success, materializes the order. Safe to call more than once with the
// same confirmation: both calls answer 200 with the single persisted
// order.
func (h *PaymentsHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "gateway_order_id, gateway_payment_id and signature are required")
		return
	}
	if len(req.Order.Items) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "order items are required")
		return
	}

	if err := payment.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature, h.sharedSecret); err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	// The wholesale flag comes from the authenticated role, never the
	// payload: the minimum-order re-check at materialization must not be
	// defeatable by a client clearing a JSON field.
	o, err := h.orders.MaterializeFromVerifiedPayment(ctx,
		p.UserID,
		req.GatewayOrderID,
		req.GatewayPaymentID,
		req.Order.Items,
		pricing.Totals{
			Subtotal: req.Order.Subtotal,
			Shipping: req.Order.ShippingCost,
			Tax:      req.Order.Tax,
			Total:    req.Order.Total,
		},
		p.IsWholesale(),
		req.Order.Shipping,
	)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}
