package cart

import (
	"context"
	"errors"
	"time"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/catalog"
)

// View is a cart decorated with current catalog display fields for
// presentation. The stored price snapshot is never overwritten by this
// enrichment; display data rides alongside it.
type View struct {
	Owner       string     `json:"owner"`
	Items       []LineView `json:"items"`
	TotalAmount int64      `json:"total_amount"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type LineView struct {
	LineItem
	Name      string `json:"name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	LiveStock int    `json:"live_stock"`
	InStock   bool   `json:"in_stock"`
}

// Lines returns the raw snapshot lines backing the view.
func (v *View) Lines() []LineItem {
	lines := make([]LineItem, len(v.Items))
	for i, item := range v.Items {
		lines[i] = item.LineItem
	}
	return lines
}

func (s *Service) enrich(ctx context.Context, c *Cart) *View {
	view := &View{
		Owner:       c.Owner,
		Items:       make([]LineView, 0, len(c.Items)),
		TotalAmount: c.TotalAmount,
		UpdatedAt:   c.UpdatedAt,
	}

	for _, item := range c.Items {
		lv := LineView{LineItem: item}
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		switch {
		case err == nil:
			lv.Name = product.Name
			lv.ImageURL = product.ImageURL
			lv.LiveStock = product.Stock
			lv.InStock = product.InStock
		case errors.Is(err, catalog.ErrProductNotFound):
			// Product retired since it was added; keep the snapshot line.
		default:
			s.logger.Warn("cart enrichment lookup failed",
				"owner", c.Owner, "product_id", item.ProductID, "error", err)
		}
		view.Items = append(view.Items, lv)
	}

	return view
}
