package product

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Pricing validation errors.
var (
	ErrInvalidPrice    = errors.New("price must be non-negative")
	ErrInvalidDiscount = errors.New("discount percentage must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// ComputeSalePrice derives the sale price from a list price and a discount
// percentage: floor(price * (1 - pct/100)), clamped at zero. A zero or
// negative percentage yields the list price unchanged.
func ComputeSalePrice(price, discountPct decimal.Decimal) decimal.Decimal {
	if !discountPct.IsPositive() {
		return price
	}
	sale := price.Mul(hundred.Sub(discountPct)).Div(hundred).Floor()
	if sale.IsNegative() {
		return decimal.Zero
	}
	return sale
}

// PricingUpdate carries the pricing fields supplied by a create or update
// request. Nil fields were not supplied.
type PricingUpdate struct {
	Price              *decimal.Decimal
	SalePrice          *decimal.Decimal
	DiscountPercentage *decimal.Decimal
}

// Apply folds a pricing update into the product, keeping the invariant that
// SalePrice is always derived. Exactly one field drives the computation and
// the other two are recomputed from it:
//
//   - discount-driven: SalePrice recomputed from Price and the new percentage.
//   - salePrice-driven: the percentage is derived from the requested sale
//     price, then SalePrice is re-derived so flooring stays consistent.
//   - price-driven: the existing percentage is kept, SalePrice recomputed.
//
// When several fields are supplied in one request the discount percentage
// wins, matching create semantics (last-writer-wins per request, not merged).
func (u PricingUpdate) Apply(p *Product) error {
	if u.Price != nil {
		if u.Price.IsNegative() {
			return ErrInvalidPrice
		}
		p.Price = *u.Price
	}

	switch {
	case u.DiscountPercentage != nil:
		pct := *u.DiscountPercentage
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return ErrInvalidDiscount
		}
		p.DiscountPercentage = pct

	case u.SalePrice != nil:
		sale := *u.SalePrice
		if sale.IsNegative() || sale.GreaterThan(p.Price) {
			return ErrInvalidPrice
		}
		if p.Price.IsZero() {
			p.DiscountPercentage = decimal.Zero
		} else {
			p.DiscountPercentage = hundred.Sub(sale.Div(p.Price).Mul(hundred)).Round(2)
		}
	}

	p.SalePrice = ComputeSalePrice(p.Price, p.DiscountPercentage)
	return nil
}
