package httpapi

import (
	"net/http"
	"time"
)

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if !authorizeUser(w, r, userID) {
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	})
}
