package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/shopcart-backend/api/controllers/carts"
	"github.com/angelmondragon/shopcart-backend/api/controllers/orders"
	"github.com/angelmondragon/shopcart-backend/api/controllers/products"
	"github.com/angelmondragon/shopcart-backend/api/handlers"
	"github.com/angelmondragon/shopcart-backend/api/middleware"
	cartsvc "github.com/angelmondragon/shopcart-backend/internal/carts"
	ordersvc "github.com/angelmondragon/shopcart-backend/internal/orders"
	"github.com/angelmondragon/shopcart-backend/pkg/config"
	"github.com/angelmondragon/shopcart-backend/pkg/db"
	"github.com/angelmondragon/shopcart-backend/pkg/logger"
	"github.com/angelmondragon/shopcart-backend/pkg/metrics"
)

// NewRouter wires every HTTP surface of the service. The metrics registry may
// be nil, in which case the /metrics endpoint is omitted.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cartService cartsvc.Service,
	orderService ordersvc.Service,
	catalogClient products.Fetcher,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", handlers.HealthLive(cfg))
		r.Get("/ready", handlers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/cart", func(r chi.Router) {
		r.Post("/", carts.Create(cartService, logg))
		r.Route("/{cart_id}", func(r chi.Router) {
			r.Get("/", carts.Fetch(cartService, logg))
			r.Put("/", carts.UpdateStatus(cartService, logg))
			r.Delete("/", carts.Delete(cartService, logg))
			r.Post("/items", carts.AddItem(cartService, logg))
			r.Route("/items/{product_id}", func(r chi.Router) {
				r.Patch("/", carts.UpdateItem(cartService, logg))
				r.Delete("/", carts.RemoveItem(cartService, logg))
			})
		})
	})

	r.Route("/order", func(r chi.Router) {
		r.Get("/", orders.List(orderService, logg))
		r.Post("/", orders.Create(orderService, logg))
		r.Route("/{order_id}", func(r chi.Router) {
			r.Get("/", orders.Fetch(orderService, logg))
			r.Put("/", orders.Update(orderService, logg))
			r.Delete("/", orders.Delete(orderService, logg))
		})
	})

	r.Route("/user/{user_id}", func(r chi.Router) {
		r.Get("/carts", carts.ListByUser(cartService, logg))
		r.Get("/orders", orders.ListByUser(orderService, logg))
	})

	r.Get("/products", products.List(catalogClient, logg))
	r.Get("/product/{product_id}", products.Fetch(catalogClient, logg))

	return r
}
