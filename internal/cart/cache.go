package cart

import (
	"context"
	"errors"
)

// Cache is a read-side cache for carts. Implementations live under
// cart/cache; the service treats cache failures as soft errors.
type Cache interface {
	Get(ctx context.Context, owner string) (*Cart, error)
	Set(ctx context.Context, owner string, c *Cart) error
	Delete(ctx context.Context, owner string) error
}

var ErrCacheMiss = errors.New("cache miss")
