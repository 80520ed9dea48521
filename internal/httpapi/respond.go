package httpapi

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error reasons carried in the error envelope. Clients use
// insufficient_stock to distinguish "refresh and retry" from input errors.
const (
	reasonValidation        = "validation_error"
	reasonNotFound          = "not_found"
	reasonConflict          = "conflict"
	reasonUnauthorized      = "unauthorized"
	reasonForbidden         = "forbidden"
	reasonOutOfStock        = "out_of_stock"
	reasonInsufficientStock = "insufficient_stock"
	reasonInternal          = "internal_error"
)

// errorResponse is the JSON error envelope for every non-2xx response.
type errorResponse struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, errorResponse{
		Code:    status,
		Reason:  reason,
		Message: message,
	})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown junk
// only loosely: malformed JSON yields false and a 400 response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, reasonValidation, "invalid request body")
		return false
	}
	return true
}
