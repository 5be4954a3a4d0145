package router

import (
	"net/http"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/handler"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Admin    *handler.AdminHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// RequestID -> Logging -> Recovery -> CORS, then APIKeyAuth on /api.
	// Recovery sits inside Logging so a recovered panic still gets its
	// access log line.
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(apiKey, logger))

		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{id}", h.Product.GetByID)

		r.Route("/carts/{sessionID}", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Patch("/items", h.Cart.UpdateItem)
			r.Delete("/items", h.Cart.RemoveItem)
		})

		r.Post("/checkout/price", h.Checkout.Price)
		r.Post("/checkout/orders", h.Checkout.PlaceOrder)

		r.Get("/orders/{orderNumber}", h.Order.GetByNumber)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", h.Order.List)
			r.Get("/orders/export.csv", h.Order.Export)
			r.Patch("/orders/{id}/status", h.Order.UpdateStatus)
			r.Patch("/orders/{id}/tracking", h.Order.UpdateTracking)

			r.Get("/coupons", h.Admin.ListCoupons)
			r.Post("/coupons", h.Admin.CreateCoupon)
			r.Get("/coupons/{code}", h.Admin.GetCoupon)
			r.Put("/coupons/{code}", h.Admin.UpdateCoupon)
			r.Delete("/coupons/{code}", h.Admin.DeleteCoupon)

			r.Get("/shipping-zones", h.Admin.ListZones)
			r.Post("/shipping-zones", h.Admin.CreateZone)
			r.Put("/shipping-zones/{id}", h.Admin.UpdateZone)
			r.Delete("/shipping-zones/{id}", h.Admin.DeleteZone)
		})
	})

	return r
}
