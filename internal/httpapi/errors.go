package httpapi

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/cart"
	"github.com/xenking/storefront-api/internal/domain/category"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/review"
	"github.com/xenking/storefront-api/internal/domain/user"
	"github.com/xenking/storefront-api/internal/domain/wishlist"
)

// respondError maps a domain error onto the wire taxonomy: validation 400,
// not-found 404, conflicts 409, stock failures 409 with their own reasons,
// everything unexpected 500 (logged, body kept generic).
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		insErr *order.InsufficientStockError
		oosErr *order.OutOfStockError
		pnfErr *order.ProductNotFoundError
	)

	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidDiscount):
		writeError(w, http.StatusBadRequest, reasonValidation, err.Error())

	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, reasonValidation, err.Error())

	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, wishlist.ErrNotInWishlist):
		writeError(w, http.StatusNotFound, reasonNotFound, err.Error())

	case errors.As(err, &pnfErr):
		writeError(w, http.StatusNotFound, reasonNotFound, pnfErr.Error())

	case errors.Is(err, review.ErrAlreadyReviewed),
		errors.Is(err, wishlist.ErrAlreadyInWishlist),
		errors.Is(err, category.ErrExists):
		writeError(w, http.StatusConflict, reasonConflict, err.Error())

	case errors.As(err, &oosErr):
		writeError(w, http.StatusConflict, reasonOutOfStock, oosErr.Error())

	case errors.As(err, &insErr):
		writeError(w, http.StatusConflict, reasonInsufficientStock, insErr.Error())

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, reasonInternal, "internal server error")
	}
}
