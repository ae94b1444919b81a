package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"storefront/internal/auth/gate"
	ordercontroller "storefront/internal/order/controller"
	"storefront/internal/product"
	"storefront/internal/server/middleware"
	usercontroller "storefront/internal/user/controller"
)

type Controllers struct {
	Auth    *usercontroller.AuthController
	Orders  *ordercontroller.OrderController
	Product *product.Controller
}

// NewRouter mounts every route under /api/v1. limiter throttles the
// unauthenticated credential endpoints per client IP.
func NewRouter(ctrls Controllers, g *gate.Gate, limiter *middleware.RateLimiter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.Trace)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	authenticated := g.Middleware(logger.Named("gate"))
	adminOnly := g.RequireAdmin(logger.Named("gate"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", ctrls.Auth.Register)
			r.With(limiter.Handler).Post("/login", ctrls.Auth.Login)
			r.With(limiter.Handler).Post("/forgot-password", ctrls.Auth.ForgotPassword)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Get("/user-auth", ctrls.Auth.UserAuth)
				r.Put("/profile", ctrls.Auth.UpdateProfile)
				r.Get("/orders", ctrls.Orders.ListOwn)
				r.Post("/orders", ctrls.Orders.Create)

				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Get("/admin-auth", ctrls.Auth.AdminAuth)
					r.Get("/all-orders", ctrls.Orders.ListAll)
					r.Put("/order-status/{orderId}", ctrls.Orders.UpdateStatus)
				})
			})
		})

		r.Post("/product/search", ctrls.Product.HandleSearchProducts)
	})

	return r
}
