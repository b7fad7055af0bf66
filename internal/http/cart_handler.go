package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chandraa-ads/sthree-storefront/internal/cart"
	"github.com/chandraa-ads/sthree-storefront/internal/domain"
	"github.com/chandraa-ads/sthree-storefront/internal/remote"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductSource is the read-only slice of the catalog the cart surface needs
// to denormalize display fields and check stock before an add.
type ProductSource interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
}

type CartHandler struct {
	carts    *cart.Registry
	products ProductSource
	timeout  time.Duration
	log      *zap.Logger
}

func NewCartHandler(carts *cart.Registry, products ProductSource, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
		timeout:  timeout,
		log:      log,
	}
}

type AddLineRequestDTO struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Lines    []domain.CartLine `json:"lines"`
	Subtotal float64           `json:"subtotal"`
	Units    int               `json:"units"`
}

func cartView(m *cart.Manager) CartResponseDTO {
	return CartResponseDTO{
		Lines:    m.Lines(),
		Subtotal: m.Subtotal(),
		Units:    m.Units(),
	}
}

// GetCart returns the cached cart. Without a signed-in user this is the
// documented no-op: an empty cart, not an error.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userFrom(r.Context())
	if userID == "" {
		respondJSON(w, http.StatusOK, CartResponseDTO{Lines: []domain.CartLine{}})
		return
	}

	m := h.carts.ForUser(ctx, userID)
	respondJSON(w, http.StatusOK, cartView(m))
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userFrom(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.products.Product(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondCartError(w, err)
		return
	}

	variant := product.Variant(req.VariantID)
	if req.VariantID != "" && variant == nil {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant does not belong to product")
		return
	}

	m := h.carts.ForUser(ctx, userID)

	// The manager trusts its callers on stock; the check lives here.
	if m.AvailableStock(product, variant) < req.Quantity {
		respondError(w, http.StatusConflict, "out_of_stock", "not enough stock for this selection")
		return
	}

	line := domain.CartLine{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		UnitPrice: product.UnitPrice(variant),
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	}
	if variant != nil {
		line.VariantName = variant.Name
		if len(variant.Images) > 0 {
			line.ImageURL = variant.Images[0]
		}
		if line.Color == "" {
			line.Color = variant.Color
		}
	}

	if err := m.AddItem(ctx, line); err != nil {
		respondCartError(w, err)
		return
	}

	h.log.Info("line added to cart",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity))
	respondJSON(w, http.StatusCreated, cartView(m))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userFrom(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lineID := chi.URLParam(r, "line_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	m := h.carts.ForUser(ctx, userID)
	if err := m.UpdateQuantity(ctx, lineID, req.Quantity); err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartView(m))
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userFrom(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lineID := chi.URLParam(r, "line_id")

	m := h.carts.ForUser(ctx, userID)
	if err := m.RemoveItem(ctx, lineID); err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartView(m))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userFrom(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	m := h.carts.ForUser(ctx, userID)
	if err := m.ClearCart(ctx); err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartView(m))
}
