package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/catalog"
)

var (
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInvalidPrice    = errors.New("product has no valid price")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("line item not found in cart")
)

type Service struct {
	repo    Repository
	cache   Cache
	catalog catalog.Reader
	logger  *slog.Logger
	sfg     singleflight.Group // prevents cache stampede on reads
	locks   sync.Map           // owner -> *sync.Mutex, serializes mutations per owner
}

func NewService(repo Repository, cache Cache, reader catalog.Reader, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		catalog: reader,
		logger:  logger,
	}
}

// GetCart returns the owner's cart, creating an empty one lazily. There is
// no error path for a missing cart.
func (s *Service) GetCart(ctx context.Context, owner string) (*View, error) {
	v, err, _ := s.sfg.Do(owner, func() (interface{}, error) {
		c, err := s.cache.Get(ctx, owner)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", "owner", owner, "error", err)
		}

		c, err = s.repo.GetCart(ctx, owner)
		if errors.Is(err, ErrCartNotFound) {
			return emptyCart(owner), nil
		}
		if err != nil {
			return nil, err
		}

		go func() {
			if err := s.cache.Set(context.Background(), owner, c); err != nil {
				s.logger.Warn("cart cache set failed", "owner", owner, "error", err)
			}
		}()

		return c, nil
	})
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, v.(*Cart)), nil
}

// AddItem resolves the unit price for the requested tier, snapshots it on
// the line, and merges with an existing line of the same tier. Requesting
// wholesale on a product without a wholesale price falls back to the
// retail price without error.
func (s *Service) AddItem(ctx context.Context, owner string, productID int64, quantity int, wantsWholesale bool) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock {
		return nil, ErrOutOfStock
	}

	unitPrice, isWholesale := resolvePrice(product, wantsWholesale)
	if unitPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	return s.mutate(ctx, owner, func(c *Cart) error {
		if i := c.findTierLine(productID, isWholesale); i >= 0 {
			c.Items[i].Quantity += quantity
			return nil
		}
		c.Items = append(c.Items, LineItem{
			LineID:      uuid.NewString(),
			ProductID:   productID,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			IsWholesale: isWholesale,
			AddedAt:     time.Now(),
		})
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, owner, lineID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	return s.mutate(ctx, owner, func(c *Cart) error {
		if len(c.Items) == 0 {
			return ErrCartNotFound
		}
		i := c.findLine(lineID)
		if i < 0 {
			return ErrLineNotFound
		}
		c.Items[i].Quantity = quantity
		return nil
	})
}

// RemoveItem is idempotent: removing an absent line succeeds silently.
func (s *Service) RemoveItem(ctx context.Context, owner, lineID string) (*View, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		if i := c.findLine(lineID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return nil
	})
}

// Clear deletes the owner's cart document. Clearing an absent cart
// succeeds silently.
func (s *Service) Clear(ctx context.Context, owner string) error {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	if err := s.repo.DeleteCart(ctx, owner); err != nil && !errors.Is(err, ErrCartNotFound) {
		return err
	}
	s.invalidate(owner)
	return nil
}

// mutate runs a read-modify-write against the owner's cart under the
// per-owner lock, re-establishes the total invariant, and persists.
func (s *Service) mutate(ctx context.Context, owner string, fn func(*Cart) error) (*View, error) {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.repo.GetCart(ctx, owner)
	if errors.Is(err, ErrCartNotFound) {
		c = emptyCart(owner)
	} else if err != nil {
		return nil, err
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	c.Recalculate()

	if err := s.repo.UpsertCart(ctx, c); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}

	s.invalidate(owner)
	return s.enrich(ctx, c), nil
}

func (s *Service) ownerLock(owner string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *Service) invalidate(owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, owner); err != nil {
		s.logger.Warn("cart cache invalidate failed", "owner", owner, "error", err)
	}
}

func resolvePrice(p *catalog.Product, wantsWholesale bool) (int64, bool) {
	if wantsWholesale && p.WholesalePrice != nil {
		return *p.WholesalePrice, true
	}
	return p.Price, false
}

func emptyCart(owner string) *Cart {
	now := time.Now()
	return &Cart{
		Owner:     owner,
		Items:     []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
