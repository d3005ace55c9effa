package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/order"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/pricing"
)

// OrderService is the slice of the order service the HTTP layer consumes.
type OrderService interface {
	MaterializeFromVerifiedPayment(ctx context.Context, owner, gatewayOrderID, gatewayPaymentID string,
		items []order.Item, totals pricing.Totals, wholesale bool, shipping order.ShippingDetails) (*order.Order, error)
	MaterializeDirect(ctx context.Context, owner string,
		items []order.Item, totals pricing.Totals, wholesale bool, shipping order.ShippingDetails) (*order.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
	ListOrders(ctx context.Context, owner string) ([]*order.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next order.Status) (*order.Order, error)
	SetTrackingNumber(ctx context.Context, id uuid.UUID, trackingNumber string) (*order.Order, error)
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
	logger  *slog.Logger
}

func NewOrdersHandler(orders OrderService, timeout time.Duration, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout, logger: logger}
}

type createDirectOrderRequest struct {
	Items        []order.Item          `json:"items"`
	Subtotal     int64                 `json:"subtotal"`
	ShippingCost int64                 `json:"shipping_cost"`
	Tax          int64                 `json:"tax"`
	Total        int64                 `json:"total"`
	Shipping     order.ShippingDetails `json:"shipping"`
}

type updateOrderRequest struct {
	Status         *string `json:"status,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
}

// CreateOrder is the direct, no-gateway path: a deferred/invoice-style
// order that starts out pending on both status and payment.
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req createDirectOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "order items are required")
		return
	}
	for _, item := range req.Items {
		if item.ProductID <= 0 || item.Quantity < 1 || item.UnitPrice <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "each item needs a product, a positive price and quantity >= 1")
			return
		}
	}
	if req.Shipping.Address == "" || req.Shipping.Pincode == "" {
		respondError(w, http.StatusBadRequest, "invalid_shipping", "shipping address and pincode are required")
		return
	}

	o, err := h.orders.MaterializeDirect(ctx,
		p.UserID,
		req.Items,
		pricing.Totals{
			Subtotal: req.Subtotal,
			Shipping: req.ShippingCost,
			Tax:      req.Tax,
			Total:    req.Total,
		},
		p.IsWholesale(),
		req.Shipping,
	)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrders(ctx, p.UserID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a valid uuid")
		return
	}

	o, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}
	if o.Owner != p.UserID && !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "forbidden", "not your order")
		return
	}

	respondJSON(w, http.StatusOK, o)
}

// UpdateOrder is the admin surface for the lifecycle state machine and
// tracking numbers.
func (h *OrdersHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	if !p.IsAdmin() {
		respondError(w, http.StatusForbidden, "forbidden", "admin role required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a valid uuid")
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Status == nil && req.TrackingNumber == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "status or tracking_number is required")
		return
	}

	var o *order.Order
	if req.Status != nil {
		o, err = h.orders.UpdateStatus(ctx, id, order.Status(*req.Status))
		if err != nil {
			handleDomainError(w, h.logger, err)
			return
		}
	}
	if req.TrackingNumber != nil {
		o, err = h.orders.SetTrackingNumber(ctx, id, *req.TrackingNumber)
		if err != nil {
			handleDomainError(w, h.logger, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, o)
}
