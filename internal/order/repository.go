package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder means another writer already materialized an order
	// for the same gateway identifiers; callers resolve it by returning the
	// first writer's row.
	ErrDuplicateOrder = errors.New("order already exists for gateway order id")
)

// OutboxEvent is a pending domain event written in the same transaction as
// the order it describes.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)
	ListOrdersByOwner(ctx context.Context, owner string) ([]*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	SetTrackingNumber(ctx context.Context, id uuid.UUID, trackingNumber string) error

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID int64) error
}
