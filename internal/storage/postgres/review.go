package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/review"
)

const (
	insertReviewSQL = `INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	// Recompute the product's aggregate rating from all its reviews.
	recalcRatingSQL = `UPDATE products SET rating = sub.avg_rating, updated_at = now()
		FROM (SELECT ROUND(AVG(rating)::numeric, 1) AS avg_rating FROM reviews WHERE product_id = $1) sub
		WHERE id = $1
		RETURNING rating`

	listReviewsByProductSQL = `SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Add inserts the review and recomputes the product's aggregate rating in
// the same transaction. The (product_id, user_id) unique constraint maps to
// review.ErrAlreadyReviewed.
func (r *ReviewRepository) Add(ctx context.Context, rv *review.Review) (decimal.Decimal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("beginning review transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, insertReviewSQL,
		rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return decimal.Zero, review.ErrAlreadyReviewed
		}
		return decimal.Zero, fmt.Errorf("inserting review for product %q: %w", rv.ProductID, err)
	}

	var rating decimal.Decimal
	if err := tx.QueryRow(ctx, recalcRatingSQL, rv.ProductID).Scan(&rating); err != nil {
		return decimal.Zero, fmt.Errorf("recomputing rating for product %q: %w", rv.ProductID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("committing review for product %q: %w", rv.ProductID, err)
	}
	return rating, nil
}

// ListByProduct returns all reviews for a product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for product %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (review.Review, error) {
		var rv review.Review
		err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		return rv, err
	})
}
