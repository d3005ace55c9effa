package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var (
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("illegal order status transition")
)

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces the forward-only lifecycle
// pending -> confirmed -> processing -> shipped -> delivered, with
// cancelled reachable from any non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}

// Item is a frozen copy of a cart line at purchase time; it never re-reads
// the live catalog price.
type Item struct {
	ProductID   int64  `json:"product_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	IsWholesale bool   `json:"is_wholesale"`
}

type ShippingDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Order struct {
	ID               uuid.UUID       `json:"id"`
	Owner            string          `json:"owner"`
	Items            []Item          `json:"items"`
	Subtotal         int64           `json:"subtotal"`
	ShippingCost     int64           `json:"shipping_cost"`
	Tax              int64           `json:"tax"`
	Total            int64           `json:"total"`
	IsWholesaleOrder bool            `json:"is_wholesale_order"`
	Status           Status          `json:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	GatewayOrderID   *string         `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string         `json:"gateway_payment_id,omitempty"`
	TrackingNumber   *string         `json:"tracking_number,omitempty"`
	Shipping         ShippingDetails `json:"shipping"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
