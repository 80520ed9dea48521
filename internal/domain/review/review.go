package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Errors returned by review operations.
var (
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// Review is a single user's rating and comment for a product. A user can
// review a product at most once.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Repository defines persistence operations for reviews.
type Repository interface {
	// Add inserts the review and recomputes the product's aggregate rating
	// (average of all its reviews, rounded to 1 decimal) in the same
	// transaction. Returns ErrAlreadyReviewed on a (product, user) duplicate.
	Add(ctx context.Context, r *Review) (decimal.Decimal, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
}

// AverageRating computes the aggregate product rating: the mean of all
// review ratings rounded to 1 decimal, zero when there are no reviews.
func AverageRating(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(ratings)))).
		Round(1)
}
