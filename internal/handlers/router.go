package handlers

import (
	"net/http"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Handlers groups every handler the shell serves.
type Handlers struct {
	Health       *HealthHandler
	Account      *AccountHandler
	Catalog      *CatalogHandler
	Cart         *CartHandler
	Coupon       *CouponHandler
	Checkout     *CheckoutHandler
	Order        *OrderHandler
	Notification *NotificationHandler
}

// NewRouter builds the shell's routes
func NewRouter(h Handlers, auth config.AuthConfig, requestTimeout time.Duration, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found", Navigate: "home"}, log)
	})

	r.Get("/health", h.Health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(auth))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", h.Account.SignUp)
			r.Post("/sign-in", h.Account.SignIn)
			r.Post("/sign-out", h.Account.SignOut)
			r.Post("/forgot-password", h.Account.ForgotPassword)
			r.Post("/change-password", h.Account.ChangePassword)
		})
		r.Get("/profile", h.Account.GetProfile)
		r.Put("/profile", h.Account.UpdateProfile)

		r.Get("/addresses", h.Account.ListAddresses)
		r.Delete("/addresses/{addressId}", h.Account.DeleteAddress)

		r.Get("/dishes", h.Catalog.ListDishes)
		r.Get("/dishes/{dishId}", h.Catalog.GetDish)
		r.Get("/dishes/{dishId}/reviews", h.Catalog.ListReviews)
		r.Post("/dishes/{dishId}/reviews", h.Catalog.CreateReview)
		r.Get("/blogs", h.Catalog.ListBlogs)
		r.Get("/blogs/{blogId}", h.Catalog.GetBlog)

		r.Get("/cart", h.Cart.GetCart)
		r.Delete("/cart", h.Cart.ClearCart)
		r.Post("/cart/items", h.Cart.AddItem)
		r.Put("/cart/items", h.Cart.UpdateItem)
		r.Delete("/cart/items", h.Cart.RemoveItem)

		r.Get("/coupons", h.Coupon.ListCoupons)
		r.Post("/coupons/apply", h.Coupon.ApplyCoupon)
		r.Delete("/coupons/applied", h.Coupon.ClearCoupon)

		r.Get("/checkout", h.Checkout.GetCheckout)
		r.Get("/checkout/summary", h.Checkout.GetSummary)
		r.Post("/checkout/address", h.Checkout.SelectAddress)
		r.Post("/checkout/submit", h.Checkout.Submit)
		r.Post("/checkout/reset", h.Checkout.Reset)

		r.Get("/orders", h.Order.ListOrders)
		r.Get("/payment/return", h.Order.PaymentReturn)

		r.Get("/notifications", h.Notification.Drain)
	})

	return r
}
