package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, user_id, items, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	// Conditional decrement: affects zero rows when stock would go negative.
	decrementStockSQL = `UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`

	stockForErrorSQL = `SELECT title, stock FROM products WHERE id = $1`

	listOrdersByUserSQL = `SELECT id, user_id, items, total, status, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	deleteOrdersBeforeSQL = `DELETE FROM orders WHERE created_at < $1`
)

var (
	_ order.Repository    = (*OrderRepository)(nil)
	_ order.CheckoutStore = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository and order.CheckoutStore backed
// by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Place runs the whole checkout write in one transaction: every stock
// decrement, the order insert and (when clearCartUserID is set) the cart
// delete commit together or not at all. A decrement that would take stock
// below zero affects no rows and aborts with *order.InsufficientStockError,
// so concurrent checkouts can never oversell.
func (r *OrderRepository) Place(ctx context.Context, o *order.Order, decrements []order.StockDecrement, clearCartUserID string) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range decrements {
		ct, err := tx.Exec(ctx, decrementStockSQL, d.ProductID, d.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for product %q: %w", d.ProductID, err)
		}
		if ct.RowsAffected() == 0 {
			return r.insufficientStock(ctx, tx, d)
		}
	}

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, itemsJSON, o.Total, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	if clearCartUserID != "" {
		if _, err := tx.Exec(ctx, deleteCartSQL, clearCartUserID); err != nil {
			return fmt.Errorf("deleting cart for user %q: %w", clearCartUserID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout for order %q: %w", o.ID, err)
	}
	return nil
}

// insufficientStock builds the typed error for a failed decrement. The row
// lookup runs inside the doomed transaction; a vanished product maps to
// *order.ProductNotFoundError.
func (r *OrderRepository) insufficientStock(ctx context.Context, tx pgx.Tx, d order.StockDecrement) error {
	var (
		title string
		stock int
	)
	if err := tx.QueryRow(ctx, stockForErrorSQL, d.ProductID).Scan(&title, &stock); err != nil {
		return &order.ProductNotFoundError{ProductID: d.ProductID}
	}
	return &order.InsufficientStockError{
		ProductID: d.ProductID,
		Title:     title,
		Stock:     stock,
		Requested: d.Quantity,
	}
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// DeleteOlderThan removes orders created before cutoff.
func (r *OrderRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.pool.Exec(ctx, deleteOrdersBeforeSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting orders before %s: %w", cutoff, err)
	}
	return ct.RowsAffected(), nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		status    string
	)
	if err := row.Scan(&o.ID, &o.UserID, &itemsJSON, &o.Total, &status, &o.CreatedAt); err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items for %q: %w", o.ID, err)
	}
	return o, nil
}
