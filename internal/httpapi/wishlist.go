package httpapi

import "net/http"

type wishlistRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !authorizeUser(w, r, userID) {
		return
	}

	products, err := h.wishlists.List(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
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

	if err := h.wishlists.Add(r.Context(), req.UserID, req.ProductID); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "product added to wishlist"})
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !authorizeUser(w, r, userID) {
		return
	}

	if err := h.wishlists.Remove(r.Context(), userID, r.PathValue("productID")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product removed from wishlist"})
}
