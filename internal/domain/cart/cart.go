package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/product"
)

// Errors returned by cart operations.
var (
	ErrNotFound        = errors.New("cart not found")
	ErrLineNotFound    = errors.New("product not in cart")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// Line is a single (product, quantity) entry in a cart. A cart holds at most
// one line per product.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is a user's shopping cart, persisted as one document per user.
type Cart struct {
	UserID    string
	Lines     []Line
	UpdatedAt time.Time
}

// LineIndex returns the position of the line for productID, or -1.
func (c *Cart) LineIndex(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// LineView is a cart line joined with its product record.
type LineView struct {
	Product  product.Product
	Quantity int
}

// View is the read model for a cart: joined line items plus the total
// quantity across all lines.
type View struct {
	Items []LineView
	Count int
}

// Repository defines persistence operations for carts. Save persists the
// full document; there is no partial-line write.
type Repository interface {
	// Get returns the cart for userID, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Cart, error)
	// Save upserts the full cart document.
	Save(ctx context.Context, c *Cart) error
	// Delete removes the cart document. Deleting an absent cart is not an error.
	Delete(ctx context.Context, userID string) error
}
