package httpapi

import (
	"net/http"
	"time"

	"github.com/xenking/storefront-api/internal/domain/review"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func toReviewResponse(rv review.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]reviewResponse, len(reviews))
	for i, rv := range reviews {
		resp[i] = toReviewResponse(rv)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, reasonUnauthorized, "missing identity")
		return
	}

	var req reviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rv, rating, err := h.reviews.Add(r.Context(), r.PathValue("id"), id.UserID, req.Rating, req.Comment)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Review        reviewResponse `json:"review"`
		ProductRating float64        `json:"productRating"`
	}{
		Review:        toReviewResponse(*rv),
		ProductRating: rating.InexactFloat64(),
	})
}
