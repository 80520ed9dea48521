package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/user"
)

const findTokenByHashSQL = `SELECT t.id, t.token_hash, t.user_id, t.expires_at, t.created_at, u.role
	FROM api_tokens t
	JOIN users u ON u.id = t.user_id
	WHERE t.token_hash = $1 AND (t.expires_at IS NULL OR t.expires_at > now())`

var _ auth.Repository = (*TokenRepository)(nil)

// TokenRepository provides bearer-token lookups backed by PostgreSQL.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a TokenRepository that uses the given pool.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// FindByHash looks up an unexpired token by its HMAC-SHA256 hash, joined
// with the owning user's role. Returns auth.ErrTokenNotFound when no match
// exists.
func (r *TokenRepository) FindByHash(ctx context.Context, hash string) (*auth.Token, *auth.Identity, error) {
	var (
		t    auth.Token
		role string
	)
	err := r.pool.QueryRow(ctx, findTokenByHashSQL, hash).
		Scan(&t.ID, &t.TokenHash, &t.UserID, &t.ExpiresAt, &t.CreatedAt, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, auth.ErrTokenNotFound
		}
		return nil, nil, fmt.Errorf("finding token by hash: %w", err)
	}

	return &t, &auth.Identity{UserID: t.UserID, Role: user.Role(role)}, nil
}
