package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Carts          CartService
	Orders         OrderService
	Broker         IntentBroker
	GatewaySecret  string
	Currency       string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	cartHandler := NewCartHandler(cfg.Carts, cfg.RequestTimeout, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.Carts, cfg.Broker, cfg.Currency, cfg.RequestTimeout, cfg.Logger)
	paymentsHandler := NewPaymentsHandler(cfg.Broker, cfg.Orders, cfg.GatewaySecret, cfg.RequestTimeout, cfg.Logger)
	ordersHandler := NewOrdersHandler(cfg.Orders, cfg.RequestTimeout, cfg.Logger)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(PrincipalMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.AddItem)
			r.Delete("/", cartHandler.ClearCart)
			r.Put("/items/{line_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{line_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Checkout)

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-order", paymentsHandler.CreateOrder)
			r.Post("/verify-payment", paymentsHandler.VerifyPayment)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordersHandler.CreateOrder)
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
			r.Put("/{order_id}", ordersHandler.UpdateOrder)
		})
	})

	return r
}
