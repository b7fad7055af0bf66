package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// WishlistSource is the backend wishlist surface, consumed as a passthrough.
type WishlistSource interface {
	ToggleWishlist(ctx context.Context, userID, productID string) (bool, error)
	InWishlist(ctx context.Context, userID, productID string) (bool, error)
}

type WishlistHandler struct {
	source  WishlistSource
	timeout time.Duration
}

func NewWishlistHandler(source WishlistSource, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{source: source, timeout: timeout}
}

type WishlistStateDTO struct {
	ProductID  string `json:"product_id"`
	Wishlisted bool   `json:"wishlisted"`
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userFrom(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	wishlisted, err := h.source.ToggleWishlist(ctx, userID, productID)
	if err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, WishlistStateDTO{ProductID: productID, Wishlisted: wishlisted})
}

func (h *WishlistHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userFrom(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	wishlisted, err := h.source.InWishlist(ctx, userID, productID)
	if err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, WishlistStateDTO{ProductID: productID, Wishlisted: wishlisted})
}
