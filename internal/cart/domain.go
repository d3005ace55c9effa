package cart

import "time"

type Cart struct {
	ID          string     `bson:"_id,omitempty" json:"-"`
	Owner       string     `bson:"owner" json:"owner"`
	Items       []LineItem `bson:"items" json:"items"`
	TotalAmount int64      `bson:"total_amount" json:"total_amount"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// LineItem binds a product to a quantity and the unit price snapshotted at
// add time. The snapshot is deliberately insulated from later catalog
// price changes.
type LineItem struct {
	LineID      string    `bson:"line_id" json:"line_id"`
	ProductID   int64     `bson:"product_id" json:"product_id"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	UnitPrice   int64     `bson:"unit_price" json:"unit_price"`
	IsWholesale bool      `bson:"is_wholesale" json:"is_wholesale"`
	AddedAt     time.Time `bson:"added_at" json:"added_at"`
}

// Recalculate re-establishes the total invariant after any mutation:
// TotalAmount == sum of unit_price * quantity over all lines.
func (c *Cart) Recalculate() {
	var total int64
	for _, item := range c.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	c.TotalAmount = total
}

// findLine returns the index of the line with the given id, or -1.
func (c *Cart) findLine(lineID string) int {
	for i, item := range c.Items {
		if item.LineID == lineID {
			return i
		}
	}
	return -1
}

// findTierLine returns the index of the line for the product at the given
// price tier, or -1. Retail and wholesale lines for one product coexist.
func (c *Cart) findTierLine(productID int64, wholesale bool) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.IsWholesale == wholesale {
			return i
		}
	}
	return -1
}
