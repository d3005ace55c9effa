package catalog

// Product is the read-only catalog view this core depends on. Prices are
// integer major currency units; WholesalePrice and WholesaleMinQty are nil
// for products without a wholesale tier.
type Product struct {
	ID              int64
	Name            string
	ImageURL        string
	Price           int64
	WholesalePrice  *int64
	WholesaleMinQty *int
	Stock           int
	InStock         bool
}
