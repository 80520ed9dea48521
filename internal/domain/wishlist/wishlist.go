package wishlist

import (
	"context"

	"github.com/go-faster/errors"
)

// Errors returned by wishlist operations.
var (
	ErrAlreadyInWishlist = errors.New("product already in wishlist")
	ErrNotInWishlist     = errors.New("product not in wishlist")
)

// Repository defines persistence for the set of wishlisted products per
// user. The set holds at most one entry per product.
type Repository interface {
	// Add inserts (userID, productID); ErrAlreadyInWishlist on duplicate.
	Add(ctx context.Context, userID, productID string) error
	// Remove deletes (userID, productID); ErrNotInWishlist when absent.
	Remove(ctx context.Context, userID, productID string) error
	ListProductIDs(ctx context.Context, userID string) ([]string, error)
}
