// Package httpapi exposes the storefront over REST. Handlers decode the
// request, delegate to the domain services and map results (or domain
// errors) onto the JSON wire format.
package httpapi

import (
	"net/http"

	"github.com/xenking/storefront-api/internal/domain/cart"
	"github.com/xenking/storefront-api/internal/domain/category"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/review"
	"github.com/xenking/storefront-api/internal/domain/user"
	"github.com/xenking/storefront-api/internal/domain/wishlist"
)

// Handler carries the domain dependencies for all routes.
type Handler struct {
	carts      *cart.Service
	checkout   *order.Service
	reviews    *review.Service
	wishlists  *wishlist.Service
	products   product.Repository
	categories category.Repository
	users      user.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	carts *cart.Service,
	checkout *order.Service,
	reviews *review.Service,
	wishlists *wishlist.Service,
	products product.Repository,
	categories category.Repository,
	users user.Repository,
) *Handler {
	return &Handler{
		carts:      carts,
		checkout:   checkout,
		reviews:    reviews,
		wishlists:  wishlists,
		products:   products,
		categories: categories,
		users:      users,
	}
}

// Routes registers every API route on mux. Routes under sec.Authenticate
// require a valid bearer token.
func (h *Handler) Routes(mux *http.ServeMux, sec *Security) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return sec.Authenticate(fn)
	}

	// Catalog: public reads, authenticated writes.
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.Handle("POST /api/products", authed(h.createProduct))
	mux.Handle("PUT /api/products/{id}", authed(h.updateProduct))
	mux.Handle("DELETE /api/products/{id}", authed(h.deleteProduct))

	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.Handle("POST /api/categories", authed(h.createCategory))
	mux.Handle("DELETE /api/categories/{id}", authed(h.deleteCategory))

	// Cart.
	mux.Handle("GET /api/cart/{userID}", authed(h.getCart))
	mux.Handle("PUT /api/cart", authed(h.upsertCartLine))
	mux.Handle("DELETE /api/cart", authed(h.removeCartLine))
	mux.Handle("DELETE /api/cart/{userID}", authed(h.clearCart))
	mux.Handle("PUT /api/cart/increase", authed(h.incrementCartLine))
	mux.Handle("PUT /api/cart/decrease", authed(h.decrementCartLine))

	// Checkout and order history.
	mux.Handle("POST /api/order/cart/{userID}", authed(h.placeFromCart))
	mux.Handle("POST /api/order/direct", authed(h.placeDirect))
	mux.Handle("GET /api/order/{userID}", authed(h.orderHistory))

	// Reviews.
	mux.HandleFunc("GET /api/products/{id}/reviews", h.listReviews)
	mux.Handle("POST /api/products/{id}/reviews", authed(h.addReview))

	// Wishlist.
	mux.Handle("GET /api/wishlist/{userID}", authed(h.getWishlist))
	mux.Handle("POST /api/wishlist", authed(h.addToWishlist))
	mux.Handle("DELETE /api/wishlist/{userID}/{productID}", authed(h.removeFromWishlist))

	// Users.
	mux.Handle("GET /api/users/{id}", authed(h.getUser))
}
