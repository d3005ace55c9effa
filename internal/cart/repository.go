package cart

import (
	"context"
	"errors"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository defines the interface for cart persistence. The service layer
// serializes mutations per owner, so the implementation only needs
// get/upsert/delete semantics.
type Repository interface {
	GetCart(ctx context.Context, owner string) (*Cart, error)
	UpsertCart(ctx context.Context, cart *Cart) error
	DeleteCart(ctx context.Context, owner string) error
}
