package httpapi

import (
	"net/http"
	"time"

	"github.com/xenking/storefront-api/internal/domain/order"
)

type directOrderRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"userId"`
	Items      []orderItemResponse `json:"items"`
	TotalPrice float64             `json:"totalPrice"`
	Status     string              `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
		}
	}
	return orderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		Items:      items,
		TotalPrice: o.Total.InexactFloat64(),
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
	}
}

func (h *Handler) placeFromCart(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !authorizeUser(w, r, userID) {
		return
	}

	o, err := h.checkout.PlaceFromCart(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) placeDirect(w http.ResponseWriter, r *http.Request) {
	var req directOrderRequest
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

	o, err := h.checkout.PlaceDirect(r.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !authorizeUser(w, r, userID) {
		return
	}

	orders, err := h.checkout.History(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}
