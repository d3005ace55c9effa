package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/pricing"
)

// ErrInvalidTotals rejects a materialization payload whose totals do not
// add up; totals travel through the client and cannot be trusted.
var ErrInvalidTotals = errors.New("order totals are inconsistent")

// CartClearer retires the owner's cart after an order is durably written.
type CartClearer interface {
	Clear(ctx context.Context, owner string) error
}

type Service struct {
	repo   Repository
	carts  CartClearer
	logger *slog.Logger
}

func NewService(repo Repository, carts CartClearer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		carts:  carts,
		logger: logger,
	}
}

// MaterializeFromVerifiedPayment persists the order for a payment the
// caller has already verified. It is idempotent by the gateway natural
// key: redelivered confirmations return the first writer's order. The
// cart clear after the durable write is best-effort; order durability
// outranks cart hygiene.
func (s *Service) MaterializeFromVerifiedPayment(
	ctx context.Context,
	owner, gatewayOrderID, gatewayPaymentID string,
	items []Item,
	totals pricing.Totals,
	wholesale bool,
	shipping ShippingDetails,
) (*Order, error) {
	if existing, err := s.repo.GetOrderByGatewayOrderID(ctx, gatewayOrderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrOrderNotFound) {
		return nil, fmt.Errorf("check existing order: %w", err)
	}

	o, err := s.buildOrder(owner, items, totals, wholesale, shipping)
	if err != nil {
		return nil, err
	}
	o.Status = StatusConfirmed
	o.PaymentStatus = PaymentPaid
	o.GatewayOrderID = &gatewayOrderID
	o.GatewayPaymentID = &gatewayPaymentID

	return s.persist(ctx, o)
}

// MaterializeDirect creates a deferred-payment order with no gateway
// involved. The wholesale minimum is a hard precondition here because the
// totals arrive from the client.
func (s *Service) MaterializeDirect(
	ctx context.Context,
	owner string,
	items []Item,
	totals pricing.Totals,
	wholesale bool,
	shipping ShippingDetails,
) (*Order, error) {
	o, err := s.buildOrder(owner, items, totals, wholesale, shipping)
	if err != nil {
		return nil, err
	}
	o.Status = StatusPending
	o.PaymentStatus = PaymentPending

	return s.persist(ctx, o)
}

func (s *Service) buildOrder(owner string, items []Item, totals pricing.Totals, wholesale bool, shipping ShippingDetails) (*Order, error) {
	if err := pricing.CheckMinimum(totals.Subtotal, wholesale); err != nil {
		return nil, err
	}
	if totals.Total != totals.Subtotal+totals.Shipping+totals.Tax {
		return nil, ErrInvalidTotals
	}

	now := time.Now()
	return &Order{
		ID:               uuid.New(),
		Owner:            owner,
		Items:            items,
		Subtotal:         totals.Subtotal,
		ShippingCost:     totals.Shipping,
		Tax:              totals.Tax,
		Total:            totals.Total,
		IsWholesaleOrder: wholesale,
		Shipping:         shipping,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (s *Service) persist(ctx context.Context, o *Order) (*Order, error) {
	err := s.repo.CreateOrder(ctx, o)
	if errors.Is(err, ErrDuplicateOrder) && o.GatewayOrderID != nil {
		// A racing confirmation won the insert; return its row.
		existing, getErr := s.repo.GetOrderByGatewayOrderID(ctx, *o.GatewayOrderID)
		if getErr != nil {
			return nil, fmt.Errorf("fetch winning duplicate: %w", getErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.Clear(ctx, o.Owner); err != nil {
		// The order is durable; a stale cart is tolerable and reconciled
		// manually, so this is logged and never surfaced.
		s.logger.Error("cart clear failed after order creation",
			"order_id", o.ID, "owner", o.Owner, "error", err)
	}

	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, owner string) ([]*Order, error) {
	return s.repo.ListOrdersByOwner(ctx, owner)
}

// UpdateStatus moves an order along the lifecycle, rejecting transitions
// the state machine does not allow.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	o.Status = next
	return o, nil
}

// SetTrackingNumber attaches shipment tracking; it only makes sense once
// the order has shipped.
func (s *Service) SetTrackingNumber(ctx context.Context, id uuid.UUID, trackingNumber string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status != StatusShipped && o.Status != StatusDelivered {
		return nil, fmt.Errorf("%w: tracking requires shipped status, order is %s", ErrInvalidTransition, o.Status)
	}

	if err := s.repo.SetTrackingNumber(ctx, id, trackingNumber); err != nil {
		return nil, err
	}
	o.TrackingNumber = &trackingNumber
	return o, nil
}
