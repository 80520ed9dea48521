package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/product"
)

// Service implements cart mutation and read operations on top of the cart
// and product repositories.
//
// The repository performs plain read-modify-write on the cart document, so
// the service serializes mutations per user with a keyed mutex. Two
// concurrent mutations on the same cart are applied one after the other
// instead of last-write-wins.
type Service struct {
	carts    Repository
	products product.Repository

	userLocks sync.Map // userID -> *sync.Mutex
}

// NewService creates a cart Service with the required repositories.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{
		carts:    carts,
		products: products,
	}
}

func (s *Service) lock(userID string) func() {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Get returns the cart joined with product data and the total quantity.
// A missing cart yields an empty view, not an error. Lines whose product no
// longer exists are omitted from the view.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &View{Items: []LineView{}}, nil
		}
		return nil, errors.Wrap(err, "get cart")
	}

	ids := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get cart products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	view := &View{Items: make([]LineView, 0, len(c.Lines))}
	for _, l := range c.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		view.Items = append(view.Items, LineView{Product: p, Quantity: l.Quantity})
		view.Count += l.Quantity
	}
	return view, nil
}

// Upsert sets the quantity for a product line, creating the cart on first
// use. An existing line's quantity is replaced, not added to.
func (s *Service) Upsert(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	defer s.lock(userID)()

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrap(err, "get cart")
		}
		c = &Cart{UserID: userID}
	}

	if i := c.LineIndex(productID); i >= 0 {
		c.Lines[i].Quantity = quantity
	} else {
		c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
	}

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// Remove deletes the line for productID and returns the removed product's
// title for the confirmation message. Returns ErrNotFound when no cart
// exists and ErrLineNotFound when the product is not in the cart.
func (s *Service) Remove(ctx context.Context, userID, productID string) (string, error) {
	defer s.lock(userID)()

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	i := c.LineIndex(productID)
	if i < 0 {
		return "", ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)

	if err := s.carts.Save(ctx, c); err != nil {
		return "", errors.Wrap(err, "save cart")
	}

	// Best effort: name the removed product in the confirmation. Fall back
	// to the ID when the product record is gone.
	title := productID
	if p, err := s.products.GetByID(ctx, productID); err == nil {
		title = p.Title
	}
	return title, nil
}

// Clear deletes the cart document entirely. Clearing an absent cart succeeds.
func (s *Service) Clear(ctx context.Context, userID string) error {
	defer s.lock(userID)()

	if err := s.carts.Delete(ctx, userID); err != nil {
		return errors.Wrap(err, "delete cart")
	}
	return nil
}

// Increment raises a line's quantity by one, creating the cart or the line
// (at quantity 1) as needed. It always succeeds on a reachable store.
func (s *Service) Increment(ctx context.Context, userID, productID string) (*Cart, error) {
	defer s.lock(userID)()

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrap(err, "get cart")
		}
		c = &Cart{UserID: userID}
	}

	if i := c.LineIndex(productID); i >= 0 {
		c.Lines[i].Quantity++
	} else {
		c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: 1})
	}

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// Decrement lowers a line's quantity by one, removing the line entirely when
// it would drop to zero. Returns ErrNotFound when no cart exists and
// ErrLineNotFound when the product is not in the cart.
func (s *Service) Decrement(ctx context.Context, userID, productID string) (*Cart, error) {
	defer s.lock(userID)()

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := c.LineIndex(productID)
	if i < 0 {
		return nil, ErrLineNotFound
	}

	if c.Lines[i].Quantity <= 1 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	} else {
		c.Lines[i].Quantity--
	}

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}
