package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

var ErrProductNotFound = errors.New("product not found")

// Reader is the narrow catalog interface the cart and checkout layers
// consume. This core never writes product state.
type Reader interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := `SELECT id, name, image_url, price, wholesale_price, wholesale_min_qty, stock, in_stock
	          FROM products WHERE id = $1`

	var p Product
	var wholesalePrice sql.NullInt64
	var wholesaleMinQty sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.ImageURL,
		&p.Price,
		&wholesalePrice,
		&wholesaleMinQty,
		&p.Stock,
		&p.InStock,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}

	if wholesalePrice.Valid {
		p.WholesalePrice = &wholesalePrice.Int64
	}
	if wholesaleMinQty.Valid {
		qty := int(wholesaleMinQty.Int64)
		p.WholesaleMinQty = &qty
	}

	return &p, nil
}
