package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/cart"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// Service implements the checkout flow: converting a cart (or a single
// direct purchase) into a pending order, decrementing stock and firing the
// order-placed notification.
type Service struct {
	carts    cart.Repository
	products product.Repository
	store    CheckoutStore
	orders   Repository
	notifier Notifier
	now      func() time.Time
}

// NewService creates a checkout Service with the required dependencies.
func NewService(
	carts cart.Repository,
	products product.Repository,
	store CheckoutStore,
	orders Repository,
	notifier Notifier,
) *Service {
	return &Service{
		carts:    carts,
		products: products,
		store:    store,
		orders:   orders,
		notifier: notifier,
		now:      time.Now,
	}
}

// PlaceFromCart converts the user's entire cart into a pending order.
//
// The stock pre-pass checks every line before anything is written, so a
// single short line aborts the whole checkout with no partial order. The
// pre-pass result can go stale under concurrent checkouts; the conditional
// decrements inside the store transaction are what actually guarantee stock
// never goes negative.
func (s *Service) PlaceFromCart(ctx context.Context, userID string) (*Order, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, errors.Wrap(err, "load cart")
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	// All-or-nothing pre-pass: every line must reference an existing product
	// with enough stock.
	items := make([]Item, len(c.Lines))
	decrements := make([]StockDecrement, len(c.Lines))
	total := decimal.Zero
	for i, l := range c.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: l.ProductID}
		}
		if p.Stock < l.Quantity {
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Title:     p.Title,
				Stock:     p.Stock,
				Requested: l.Quantity,
			}
		}

		price := p.EffectivePrice()
		items[i] = Item{ProductID: p.ID, Quantity: l.Quantity, UnitPrice: price}
		decrements[i] = StockDecrement{ProductID: p.ID, Quantity: l.Quantity}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	o := &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     items,
		Total:     total.Round(2),
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	if err := s.store.Place(ctx, o, decrements, userID); err != nil {
		return nil, err
	}

	s.notifier.OrderPlaced(ctx, o)
	return o, nil
}

// PlaceDirect places a single-product order without touching the cart.
func (s *Service) PlaceDirect(ctx context.Context, userID, productID string, quantity int) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, errors.Wrap(err, "get product")
	}

	switch {
	case p.Stock == 0:
		return nil, &OutOfStockError{ProductID: p.ID, Title: p.Title}
	case p.Stock < quantity:
		return nil, &InsufficientStockError{
			ProductID: p.ID,
			Title:     p.Title,
			Stock:     p.Stock,
			Requested: quantity,
		}
	}

	price := p.EffectivePrice()
	o := &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     []Item{{ProductID: p.ID, Quantity: quantity, UnitPrice: price}},
		Total:     price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	decrements := []StockDecrement{{ProductID: p.ID, Quantity: quantity}}
	if err := s.store.Place(ctx, o, decrements, ""); err != nil {
		return nil, err
	}

	s.notifier.OrderPlaced(ctx, o)
	return o, nil
}

// History returns the user's orders, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}
