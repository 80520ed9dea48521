package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. Checkout only ever creates
// orders in StatusPending; the later states belong to fulfilment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyCart       = fmt.Errorf("cart is empty")
	ErrInvalidQuantity = fmt.Errorf("quantity must be greater than 0")
)

// ProductNotFoundError indicates a cart line references a product that no
// longer exists.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// OutOfStockError indicates a product has zero units left.
type OutOfStockError struct {
	ProductID string
	Title     string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock", e.name())
}

func (e *OutOfStockError) name() string {
	if e.Title != "" {
		return e.Title
	}
	return e.ProductID
}

// InsufficientStockError indicates the requested quantity exceeds the units
// available for a product.
type InsufficientStockError struct {
	ProductID string
	Title     string
	Stock     int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	name := e.Title
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for product %s: %d available, %d requested", name, e.Stock, e.Requested)
}

// Item is an immutable order line: the quantity and the unit price at the
// time of purchase.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Order is an immutable snapshot of a completed checkout. It is never
// mutated after creation; only the retention sweep deletes old rows.
type Order struct {
	ID        string
	UserID    string
	Items     []Item
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
}

// StockDecrement names one conditional stock decrement inside a checkout
// transaction.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// Repository defines read and retention operations for orders.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// DeleteOlderThan removes orders created before cutoff and reports how
	// many rows were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CheckoutStore persists a checkout atomically: the order insert, every
// conditional stock decrement and (optionally) the cart delete commit or
// roll back together. Implementations return *InsufficientStockError when
// any decrement would take stock below zero, so an order is never created
// against stock that a concurrent checkout already sold.
type CheckoutStore interface {
	Place(ctx context.Context, o *Order, decrements []StockDecrement, clearCartUserID string) error
}

// Notifier receives order-placed events. Implementations must be
// fire-and-forget: they may not block checkout and their failures are never
// surfaced to the caller.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order)
}
