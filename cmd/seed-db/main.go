// Command seed-db loads the catalog seed file and a bootstrap admin account
// into the database. Safe to run repeatedly: everything is upserted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/httpapi"
	"github.com/xenking/storefront-api/internal/storage/postgres"
)

type catalogJSON struct {
	Categories []categoryJSON `json:"categories"`
	Products   []productJSON  `json:"products"`
}

type categoryJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productJSON struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Stock              int             `json:"stock"`
	CategoryID         string          `json:"categoryId"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
		adminToken  string
		tokenPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&adminToken, "admin-token", "", "bearer token to seed for the admin user (or SHOP_SEED_ADMIN_TOKEN env)")
	flag.StringVar(&tokenPepper, "token-pepper", "", "HMAC pepper for token hashing (or SHOP_TOKEN_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminToken == "" {
		adminToken = os.Getenv("SHOP_SEED_ADMIN_TOKEN")
	}
	if adminToken == "" {
		slog.Error("admin token is required: set --admin-token or SHOP_SEED_ADMIN_TOKEN")
		os.Exit(1)
	}
	if tokenPepper == "" {
		tokenPepper = os.Getenv("SHOP_TOKEN_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, adminToken, tokenPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, adminToken, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedAdmin(ctx, pool, adminToken, pepper); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	return nil
}

const (
	upsertCategorySQL = `
INSERT INTO categories (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	upsertProductSQL = `
INSERT INTO products (id, title, description, price, discount_percentage, sale_price, stock, category_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    discount_percentage = EXCLUDED.discount_percentage,
    sale_price = EXCLUDED.sale_price,
    stock = EXCLUDED.stock,
    category_id = EXCLUDED.category_id,
    updated_at = now()`

	upsertUserSQL = `
INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role`

	upsertTokenSQL = `
INSERT INTO api_tokens (id, token_hash, user_id) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET token_hash = EXCLUDED.token_hash, user_id = EXCLUDED.user_id`
)

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting categories", slog.Int("count", len(catalog.Categories)))

	for _, c := range catalog.Categories {
		if _, err := pool.Exec(ctx, upsertCategorySQL, c.ID, c.Name); err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}
	}

	slog.Info("upserting products", slog.Int("count", len(catalog.Products)))

	hundred := decimal.NewFromInt(100)
	for _, p := range catalog.Products {
		if p.Price.IsNegative() || p.DiscountPercentage.IsNegative() || p.DiscountPercentage.GreaterThan(hundred) {
			return errors.Errorf("invalid pricing for product %s", p.ID)
		}
		salePrice := product.ComputeSalePrice(p.Price, p.DiscountPercentage)
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Title, p.Description,
			p.Price, p.DiscountPercentage, salePrice,
			p.Stock, p.CategoryID,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("title", p.Title))
	}

	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, adminToken, pepper string) error {
	slog.Info("seeding admin account")

	if _, err := pool.Exec(ctx, upsertUserSQL,
		"admin", "Administrator", "admin@storefront.local", "admin",
	); err != nil {
		return errors.Wrap(err, "upsert admin user")
	}

	tokenHash := httpapi.HashToken(adminToken, []byte(pepper))
	if _, err := pool.Exec(ctx, upsertTokenSQL, "admin-token", tokenHash, "admin"); err != nil {
		return errors.Wrap(err, "upsert admin token")
	}

	slog.Info("upserted admin token", slog.String("user", "admin"))

	return nil
}
