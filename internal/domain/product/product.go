package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
//
// SalePrice is always derived from Price and DiscountPercentage (see
// ComputeSalePrice) and is never independently authoritative.
type Product struct {
	ID                 string
	Title              string
	Description        string
	Price              decimal.Decimal
	DiscountPercentage decimal.Decimal
	SalePrice          decimal.Decimal
	Stock              int
	Rating             decimal.Decimal
	CategoryID         string
	SellerID           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EffectivePrice is the price a unit actually sells for: the sale price when
// a discount is set, the list price otherwise. All checkout paths use this
// single rule.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPercentage.IsPositive() {
		return p.SalePrice
	}
	return p.Price
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
