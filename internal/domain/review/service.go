package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/product"
)

// Service implements review submission and lookup.
type Service struct {
	reviews  Repository
	products product.Repository
	now      func() time.Time
}

// NewService creates a review Service with the required repositories.
func NewService(reviews Repository, products product.Repository) *Service {
	return &Service{
		reviews:  reviews,
		products: products,
		now:      time.Now,
	}
}

// Add validates and stores a review, returning the stored review and the
// product's recomputed aggregate rating. Fails with ErrAlreadyReviewed when
// the user has already reviewed this product.
func (s *Service) Add(ctx context.Context, productID, userID string, rating int, comment string) (*Review, decimal.Decimal, error) {
	if rating < 1 || rating > 5 {
		return nil, decimal.Zero, ErrInvalidRating
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, decimal.Zero, err
	}

	r := &Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	newRating, err := s.reviews.Add(ctx, r)
	if err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, decimal.Zero, ErrAlreadyReviewed
		}
		return nil, decimal.Zero, errors.Wrap(err, "add review")
	}
	return r, newRating, nil
}

// ListByProduct returns all reviews for a product.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	return reviews, nil
}
