package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/cart"
)

const (
	getCartSQL = `SELECT items, updated_at FROM carts WHERE user_id = $1`

	saveCartSQL = `INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`

	deleteCartSQL = `DELETE FROM carts WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. The line
// items are one JSONB document per user, written whole on every mutation.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the cart document for userID, or cart.ErrNotFound.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	c := cart.Cart{UserID: userID}
	var itemsJSON []byte

	err := r.pool.QueryRow(ctx, getCartSQL, userID).Scan(&itemsJSON, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	if err := json.Unmarshal(itemsJSON, &c.Lines); err != nil {
		return nil, fmt.Errorf("unmarshaling cart items for user %q: %w", userID, err)
	}
	return &c, nil
}

// Save upserts the full cart document.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	itemsJSON, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshaling cart items: %w", err)
	}

	if _, err := r.pool.Exec(ctx, saveCartSQL, c.UserID, itemsJSON); err != nil {
		return fmt.Errorf("saving cart for user %q: %w", c.UserID, err)
	}
	return nil
}

// Delete removes the cart document. Deleting an absent cart is a no-op.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, deleteCartSQL, userID); err != nil {
		return fmt.Errorf("deleting cart for user %q: %w", userID, err)
	}
	return nil
}
