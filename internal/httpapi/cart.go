package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xenking/storefront-api/internal/domain/cart"
)

type cartLineRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartItemResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

type cartResponse struct {
	CartItems []cartItemResponse `json:"cartItems"`
	CartCount int                `json:"cartCount"`
}

type cartLinesResponse struct {
	UserID string      `json:"userId"`
	Items  []cart.Line `json:"items"`
}

func toCartLinesResponse(c *cart.Cart) cartLinesResponse {
	items := c.Lines
	if items == nil {
		items = []cart.Line{}
	}
	return cartLinesResponse{UserID: c.UserID, Items: items}
}

// getCart returns the joined cart view; an absent cart is an empty 200, not
// a 404.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !authorizeUser(w, r, userID) {
		return
	}

	view, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := cartResponse{
		CartItems: make([]cartItemResponse, len(view.Items)),
		CartCount: view.Count,
	}
	for i, item := range view.Items {
		resp.CartItems[i] = cartItemResponse{
			Product:  toProductResponse(item.Product),
			Quantity: item.Quantity,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) upsertCartLine(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, reasonValidation, "userId and productId are required")
		return
	}
	if !authorizeUser(w, r, req.UserID) {
		return
	}

	c, err := h.carts.Upsert(r.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartLinesResponse(c))
}

func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, reasonValidation, "userId and productId are required")
		return
	}
	if !authorizeUser(w, r, req.UserID) {
		return
	}

	title, err := h.carts.Remove(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s removed from cart", title),
	})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !authorizeUser(w, r, userID) {
		return
	}

	if err := h.carts.Clear(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

func (h *Handler) incrementCartLine(w http.ResponseWriter, r *http.Request) {
	h.stepCartLine(w, r, h.carts.Increment)
}

func (h *Handler) decrementCartLine(w http.ResponseWriter, r *http.Request) {
	h.stepCartLine(w, r, h.carts.Decrement)
}

func (h *Handler) stepCartLine(
	w http.ResponseWriter,
	r *http.Request,
	step func(ctx context.Context, userID, productID string) (*cart.Cart, error),
) {
	var req cartLineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, reasonValidation, "userId and productId are required")
		return
	}
	if !authorizeUser(w, r, req.UserID) {
		return
	}

	c, err := step(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartLinesResponse(c))
}
