package router

import (
	"context"
	"encoding/json"
	"net/http"

	"dulce-kart/internal/handler"
	"dulce-kart/internal/metrics"
	"dulce-kart/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	APIKey         string
	AllowedOrigins []string
	Metrics        *metrics.Metrics

	// Gatherer backs /metrics. The endpoint is not mounted when nil.
	Gatherer prometheus.Gatherer

	// Ready is consulted by /health. A nil Ready always reports healthy.
	Ready func(ctx context.Context) error
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> Metrics -> CORS -> APIKeyAuth -> Session
	r.Use(
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.Metrics(opts.Metrics),
		middleware.CORS(opts.AllowedOrigins),
		middleware.APIKeyAuth(opts.APIKey, logger),
	)

	r.Get("/health", health(opts.Ready))
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/categories", h.Products.Categories)
			r.Get("/{id}", h.Products.GetByID)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Post("/items/{id}/decrement", h.Cart.Decrement)
			r.Delete("/items/{id}", h.Cart.Remove)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.Checkout.View)
			r.Post("/identity", h.Checkout.Identity)
			r.Post("/delivery", h.Checkout.Delivery)
			r.Post("/back", h.Checkout.Back)
			r.Post("/terms", h.Checkout.Terms)
			r.Post("/coupon", h.Checkout.Coupon)
			r.Post("/submit", h.Checkout.Submit)
			r.Post("/reset", h.Checkout.Reset)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.History)
			r.Get("/track", h.Orders.Track)
		})
	})

	return r
}

func health(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]string{"status": "healthy"}
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
