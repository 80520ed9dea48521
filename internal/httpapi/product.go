package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/user"
)

type productRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              *float64 `json:"price"`
	SalePrice          *float64 `json:"salePrice"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	Stock              *int     `json:"stock"`
	CategoryID         string   `json:"categoryId"`
}

type productResponse struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Price              float64 `json:"price"`
	SalePrice          float64 `json:"salePrice"`
	DiscountPercentage float64 `json:"discountPercentage"`
	Stock              int     `json:"stock"`
	Rating             float64 `json:"rating"`
	CategoryID         string  `json:"categoryId,omitempty"`
	SellerID           string  `json:"sellerId,omitempty"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		Price:              p.Price.InexactFloat64(),
		SalePrice:          p.SalePrice.InexactFloat64(),
		DiscountPercentage: p.DiscountPercentage.InexactFloat64(),
		Stock:              p.Stock,
		Rating:             p.Rating.InexactFloat64(),
		CategoryID:         p.CategoryID,
		SellerID:           p.SellerID,
	}
}

func (req *productRequest) pricing() product.PricingUpdate {
	var u product.PricingUpdate
	if req.Price != nil {
		p := decimal.NewFromFloat(*req.Price)
		u.Price = &p
	}
	if req.SalePrice != nil {
		p := decimal.NewFromFloat(*req.SalePrice)
		u.SalePrice = &p
	}
	if req.DiscountPercentage != nil {
		p := decimal.NewFromFloat(*req.DiscountPercentage)
		u.DiscountPercentage = &p
	}
	return u
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
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

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, user.RoleSeller, user.RoleAdmin) {
		return
	}

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" || req.Price == nil {
		writeError(w, http.StatusBadRequest, reasonValidation, "title and price are required")
		return
	}

	id, _ := IdentityFrom(r.Context())
	p := &product.Product{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		SellerID:    id.UserID,
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			writeError(w, http.StatusBadRequest, reasonValidation, "stock must be non-negative")
			return
		}
		p.Stock = *req.Stock
	}
	if err := req.pricing().Apply(p); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.products.Create(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, user.RoleSeller, user.RoleAdmin) {
		return
	}

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Sellers may only touch their own products; admins anyone's.
	id, _ := IdentityFrom(r.Context())
	if id.Role != user.RoleAdmin && p.SellerID != id.UserID {
		writeError(w, http.StatusForbidden, reasonForbidden, "not allowed to modify this product")
		return
	}

	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.CategoryID != "" {
		p.CategoryID = req.CategoryID
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			writeError(w, http.StatusBadRequest, reasonValidation, "stock must be non-negative")
			return
		}
		p.Stock = *req.Stock
	}
	if err := req.pricing().Apply(p); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.products.Update(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, user.RoleAdmin) {
		return
	}

	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
