package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/xenking/storefront-api/internal/domain/category"
	"github.com/xenking/storefront-api/internal/domain/user"
)

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, user.RoleAdmin) {
		return
	}

	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, reasonValidation, "name is required")
		return
	}

	c := &category.Category{ID: uuid.New().String(), Name: req.Name}
	if err := h.categories.Create(r.Context(), c); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: c.ID, Name: c.Name})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, user.RoleAdmin) {
		return
	}

	if err := h.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
