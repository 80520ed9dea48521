// Package auth defines the bearer-token identity model. Tokens are stored as
// HMAC-SHA256 hashes; the plaintext token never touches the database.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/user"
)

// ErrTokenNotFound is returned when no active token matches a hash.
var ErrTokenNotFound = errors.New("token not found")

// Token is a stored API token bound to a user.
type Token struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID string
	Role   user.Role
}

// Repository provides lookup of tokens by their HMAC-SHA256 hash, joined
// with the owning user's role.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*Token, *Identity, error)
}
