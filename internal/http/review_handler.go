package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chandraa-ads/sthree-storefront/internal/domain"
	"github.com/chandraa-ads/sthree-storefront/internal/remote"
	"github.com/go-chi/chi/v5"
)

// ReviewSource is the backend review surface, consumed as a passthrough.
type ReviewSource interface {
	Reviews(ctx context.Context, productID string) ([]domain.Review, error)
	PostReview(ctx context.Context, review domain.Review) error
}

type ReviewHandler struct {
	source  ReviewSource
	timeout time.Duration
}

func NewReviewHandler(source ReviewSource, timeout time.Duration) *ReviewHandler {
	return &ReviewHandler{source: source, timeout: timeout}
}

type PostReviewRequestDTO struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviews, err := h.source.Reviews(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			respondJSON(w, http.StatusOK, []domain.Review{})
			return
		}
		respondCartError(w, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	respondJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userFrom(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PostReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
		return
	}

	review := domain.Review{
		ProductID: chi.URLParam(r, "product_id"),
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.source.PostReview(ctx, review); err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}
