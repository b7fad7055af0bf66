package http

import (
	"net/http"
	"time"

	"github.com/chandraa-ads/sthree-storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// NewRouter assembles the storefront API.
func NewRouter(
	carts *CartHandler,
	catalog *CatalogHandler,
	wishlist *WishlistHandler,
	reviews *ReviewHandler,
	sessions session.Store,
	requestTimeout time.Duration,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionAuth(sessions, log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/lines", carts.AddLine)
			r.Put("/lines/{line_id}", carts.UpdateQuantity)
			r.Delete("/lines/{line_id}", carts.RemoveLine)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalog.ListProducts)
			r.Get("/{product_id}", catalog.GetProduct)
			r.Get("/{product_id}/reviews", reviews.List)
			r.Post("/{product_id}/reviews", reviews.Create)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Post("/{product_id}/toggle", wishlist.Toggle)
			r.Get("/{product_id}", wishlist.Check)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
