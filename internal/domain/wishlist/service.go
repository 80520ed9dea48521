package wishlist

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/product"
)

// Service implements set-like wishlist operations joined with product data.
type Service struct {
	wishlists Repository
	products  product.Repository
}

// NewService creates a wishlist Service with the required repositories.
func NewService(wishlists Repository, products product.Repository) *Service {
	return &Service{
		wishlists: wishlists,
		products:  products,
	}
}

// Add puts a product on the user's wishlist. The product must exist;
// duplicates fail with ErrAlreadyInWishlist.
func (s *Service) Add(ctx context.Context, userID, productID string) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.wishlists.Add(ctx, userID, productID)
}

// Remove takes a product off the user's wishlist.
func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	return s.wishlists.Remove(ctx, userID, productID)
}

// List returns the wishlisted products joined with their catalog records.
// Products that no longer exist are omitted.
func (s *Service) List(ctx context.Context, userID string) ([]product.Product, error) {
	ids, err := s.wishlists.ListProductIDs(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist")
	}
	if len(ids) == 0 {
		return []product.Product{}, nil
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get wishlist products")
	}
	return products, nil
}
