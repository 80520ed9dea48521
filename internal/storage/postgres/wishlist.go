package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/wishlist"
)

const (
	addWishlistSQL = `INSERT INTO wishlists (user_id, product_id) VALUES ($1, $2)`

	removeWishlistSQL = `DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2`

	listWishlistSQL = `SELECT product_id FROM wishlists WHERE user_id = $1 ORDER BY created_at`
)

var _ wishlist.Repository = (*WishlistRepository)(nil)

// WishlistRepository implements wishlist.Repository backed by PostgreSQL.
// The (user_id, product_id) primary key enforces set semantics.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository returns a WishlistRepository that uses the given pool.
func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// Add inserts the (user, product) pair; a duplicate maps to
// wishlist.ErrAlreadyInWishlist.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	if _, err := r.pool.Exec(ctx, addWishlistSQL, userID, productID); err != nil {
		if isUniqueViolation(err) {
			return wishlist.ErrAlreadyInWishlist
		}
		return fmt.Errorf("adding product %q to wishlist: %w", productID, err)
	}
	return nil
}

// Remove deletes the (user, product) pair.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	ct, err := r.pool.Exec(ctx, removeWishlistSQL, userID, productID)
	if err != nil {
		return fmt.Errorf("removing product %q from wishlist: %w", productID, err)
	}
	if ct.RowsAffected() == 0 {
		return wishlist.ErrNotInWishlist
	}
	return nil
}

// ListProductIDs returns the wishlisted product IDs in insertion order.
func (r *WishlistRepository) ListProductIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, listWishlistSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
}
