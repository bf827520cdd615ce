package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DTBbuilds/SmartDuka-sub000/api/controllers"
	checkoutcontrollers "github.com/DTBbuilds/SmartDuka-sub000/api/controllers/checkout"
	inventorycontrollers "github.com/DTBbuilds/SmartDuka-sub000/api/controllers/inventory"
	ordercontrollers "github.com/DTBbuilds/SmartDuka-sub000/api/controllers/orders"
	paymentcontrollers "github.com/DTBbuilds/SmartDuka-sub000/api/controllers/payments"
	shopcontrollers "github.com/DTBbuilds/SmartDuka-sub000/api/controllers/shops"
	"github.com/DTBbuilds/SmartDuka-sub000/api/middleware"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/checkout"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/inventory"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/orders"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/payments"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/shops"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the HTTP surface needs from the composition root.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        pinger
	Cache     *cache.Cache
	Gatherer  prometheus.Gatherer
	Checkout  checkout.Service
	Orders    orders.Service
	Payments  payments.Service
	Inventory inventory.Service
	Shops     shops.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var cacheTier controllers.CacheTier
	if deps.Cache != nil {
		cacheTier = deps.Cache
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, cacheTier))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if deps.Cache != nil {
			r.Use(middleware.Idempotency(deps.Cache, logg))
		}

		r.Post("/checkout", checkoutcontrollers.Create(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/stats", ordercontrollers.Stats(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.Get("/{orderId}/payments", paymentcontrollers.ListByOrder(deps.Payments, logg))
			r.With(middleware.RequireStockManager(logg)).Post("/{orderId}/void", checkoutcontrollers.Void(deps.Checkout, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/{paymentId}/confirm", paymentcontrollers.Confirm(deps.Payments, logg))
			r.Post("/{paymentId}/fail", paymentcontrollers.Fail(deps.Payments, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/low-stock", inventorycontrollers.LowStock(deps.Inventory, logg))
			r.Get("/{productId}/adjustments", inventorycontrollers.ListAdjustments(deps.Inventory, logg))
			r.With(middleware.RequireStockManager(logg)).Patch("/{productId}/stock", inventorycontrollers.UpdateStock(deps.Inventory, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Use(middleware.RequireStockManager(logg))
			r.Post("/adjustments", inventorycontrollers.Adjust(deps.Inventory, logg))
			r.Post("/transfers", inventorycontrollers.Transfer(deps.Inventory, logg))
			r.Post("/reconciliations", inventorycontrollers.Reconcile(deps.Inventory, logg))
			r.Post("/imports", inventorycontrollers.ImportBranch(deps.Inventory, logg))
		})

		r.Route("/shop/settings", func(r chi.Router) {
			r.Get("/", shopcontrollers.GetSettings(deps.Shops, logg))
			r.With(middleware.RequireStockManager(logg)).Patch("/", shopcontrollers.UpdateSettings(deps.Shops, logg))
		})
	})

	return r
}
