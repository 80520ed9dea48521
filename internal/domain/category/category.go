package category

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Errors returned by category operations.
var (
	ErrNotFound = errors.New("category not found")
	ErrExists   = errors.New("category already exists")
)

// Category groups products in the catalog.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Repository defines persistence operations for categories.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}
