package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chandraa-ads/sthree-storefront/internal/cart"
	"github.com/chandraa-ads/sthree-storefront/internal/catalog"
	"github.com/chandraa-ads/sthree-storefront/internal/domain"
	"github.com/chandraa-ads/sthree-storefront/internal/remote"
	"github.com/chandraa-ads/sthree-storefront/internal/stock"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogSource is the read-only backend surface the browsing pages consume.
type CatalogSource interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
	Products(ctx context.Context, q remote.ProductQuery) ([]domain.Product, error)
	AverageRating(ctx context.Context, productID string) (float64, error)
}

type CatalogHandler struct {
	source  CatalogSource
	carts   *cart.Registry
	timeout time.Duration
	log     *zap.Logger
}

func NewCatalogHandler(source CatalogSource, carts *cart.Registry, timeout time.Duration, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		source:  source,
		carts:   carts,
		timeout: timeout,
		log:     log,
	}
}

// ListProducts fetches the category's products from the remote store and
// applies filtering, fuzzy search and sorting locally, the way the storefront
// UI narrows an already-fetched list.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()

	products, err := h.source.Products(ctx, remote.ProductQuery{Category: q.Get("category")})
	if err != nil {
		respondCartError(w, err)
		return
	}

	filter := catalog.Filter{
		Color:       q.Get("color"),
		Size:        q.Get("size"),
		MinPrice:    parsePrice(q.Get("min_price")),
		MaxPrice:    parsePrice(q.Get("max_price")),
		InStockOnly: q.Get("in_stock") == "true",
	}
	products = catalog.Apply(products, filter)
	products = catalog.Search(products, q.Get("q"))
	catalog.Sort(products, catalog.Order(q.Get("sort")))

	respondJSON(w, http.StatusOK, products)
}

type VariantStockDTO struct {
	VariantID   string `json:"variant_id"`
	Available   int    `json:"available"`
	Purchasable bool   `json:"purchasable"`
}

type ProductDetailDTO struct {
	domain.Product
	Rating       float64           `json:"rating"`
	Available    int               `json:"available"`
	Purchasable  bool              `json:"purchasable"`
	VariantStock []VariantStockDTO `json:"variant_stock,omitempty"`
}

// GetProduct returns one product with its average rating and the derived
// available stock per variant, already adjusted for what the signed-in user's
// cart holds. This drives the out-of-stock badges and add-control disabling.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.source.Product(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondCartError(w, err)
		return
	}

	var lines []domain.CartLine
	if userID := userFrom(r.Context()); userID != "" {
		lines = h.carts.ForUser(ctx, userID).Lines()
	}

	rating, err := h.source.AverageRating(ctx, product.ID)
	if err != nil {
		// a missing rating never blocks the product page
		h.log.Warn("rating fetch failed", zap.String("product_id", product.ID), zap.Error(err))
	}

	detail := ProductDetailDTO{
		Product:     *product,
		Rating:      rating,
		Available:   stock.Available(product, nil, lines),
		Purchasable: stock.Purchasable(product, nil, lines),
	}
	for i := range product.Variants {
		v := &product.Variants[i]
		detail.VariantStock = append(detail.VariantStock, VariantStockDTO{
			VariantID:   v.ID,
			Available:   stock.Available(product, v, lines),
			Purchasable: stock.Purchasable(product, v, lines),
		})
	}

	respondJSON(w, http.StatusOK, detail)
}

func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
