package pricing

import "errors"

// All amounts are integer major currency units. Tax rounding is half-up;
// nothing in this package touches floating point.
const (
	TaxRatePercent        = 18
	FreeShippingThreshold = 1000
	StandardShipping      = 80
	ExpressShipping       = 200
	WholesaleMinimum      = 10000
)

type DeliveryOption string

const (
	DeliveryNormal  DeliveryOption = "normal"
	DeliveryExpress DeliveryOption = "express"
)

var (
	ErrBelowMinimumOrder = errors.New("order total below wholesale minimum")
	ErrEmptyOrder        = errors.New("no lines to price")
)

type Line struct {
	UnitPrice int64
	Quantity  int
}

type Buyer struct {
	Wholesale bool
	Delivery  DeliveryOption
}

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping_cost"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Subtotal sums unit price times quantity over the given lines.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.UnitPrice * int64(l.Quantity)
	}
	return sum
}

// Quote computes the authoritative totals for a checkout. Wholesale buyers
// below the minimum order value are rejected before any money moves.
func Quote(lines []Line, buyer Buyer) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrEmptyOrder
	}

	subtotal := Subtotal(lines)

	if err := CheckMinimum(subtotal, buyer.Wholesale); err != nil {
		return Totals{}, err
	}

	shipping := shippingFor(subtotal, buyer)
	tax := taxOn(subtotal)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}, nil
}

// CheckMinimum enforces the wholesale minimum order policy. It runs at
// quote time and again at order materialization.
func CheckMinimum(subtotal int64, wholesale bool) error {
	if wholesale && subtotal < WholesaleMinimum {
		return ErrBelowMinimumOrder
	}
	return nil
}

func shippingFor(subtotal int64, buyer Buyer) int64 {
	if buyer.Wholesale {
		// Wholesale freight is negotiated off-platform.
		return 0
	}
	if buyer.Delivery == DeliveryExpress {
		return ExpressShipping
	}
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return StandardShipping
}

// taxOn rounds half-up to the nearest major unit.
func taxOn(subtotal int64) int64 {
	return (subtotal*TaxRatePercent + 50) / 100
}
