package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"mytrade/internal/auth"
	"mytrade/internal/commons"
	ordercontroller "mytrade/internal/order/controller"
	"mytrade/internal/presence"
	"mytrade/internal/product"
)

type Handlers struct {
	Auth     *auth.Handler
	Orders   *ordercontroller.OrdersController
	Products *product.Controller
	Presence *presence.Handler
}

func NewRouter(h Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		commons.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)
		r.Get("/statuses", h.Orders.Statuses)
		r.Get("/views", h.Orders.Views)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)

			r.Get("/auth/me", h.Auth.Me)

			r.Get("/orders/{view}", h.Orders.ListOrders)
			r.Post("/orders/{view}/{orderId}/actions", h.Orders.PerformAction)
			r.Get("/orders/{view}/{orderId}/history", h.Orders.OrderHistory)

			r.Get("/products", h.Products.HandleSearchProducts)

			r.Post("/presence/heartbeat", h.Presence.Heartbeat)
			r.Get("/presence/{userId}", h.Presence.Status)
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
