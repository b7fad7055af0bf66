package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chandraa-ads/sthree-storefront/internal/cart"
	"github.com/chandraa-ads/sthree-storefront/internal/remote"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondCartError maps manager and remote-store errors to HTTP statuses.
// Remote failures become 502: the local cart is untouched and the user may
// retry, which is the contract for every mutation.
func respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrNoUser):
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
	case errors.Is(err, cart.ErrMissingProduct):
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "not_found", "line not found in cart")
	case errors.Is(err, remote.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		respondError(w, http.StatusBadGateway, "remote_unavailable", "remote store request failed")
	}
}
