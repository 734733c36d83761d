package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	couponhttp "couponsystem/internal/coupon/transport/http"
	userhttp "couponsystem/internal/user/transport/http"
	"couponsystem/pkg/middleware"
)

type RouterConfig struct {
	Coupons *couponhttp.Handler
	Users   *userhttp.Handler
	Log     zerolog.Logger

	// Nil disables rate limiting.
	RateLimiter *middleware.RateLimiter

	AllowedOrigins []string
	AdminJWTSecret string

	MetricsUser         string
	MetricsPasswordHash string
	// Defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// The limiter keys on RemoteAddr, so forwarding headers are not trusted here.
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer(cfg.Log))
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	if cfg.MetricsUser != "" && cfg.MetricsPasswordHash != "" {
		metricsHandler = middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPasswordHash)(metricsHandler)
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Get("/users", cfg.Users.Welcome)

	r.Route("/coupons", func(cr chi.Router) {
		cr.Use(middleware.RequireJSON)

		cr.Get("/", cfg.Coupons.ListCoupons)
		cr.Post("/validate", cfg.Coupons.ValidateCoupon)
		cr.Post("/redeem", cfg.Coupons.RedeemCoupon)

		cr.Group(func(ar chi.Router) {
			if cfg.AdminJWTSecret != "" {
				ar.Use(middleware.AdminAuth(cfg.AdminJWTSecret))
			}
			ar.Post("/", cfg.Coupons.CreateCoupon)
		})
	})

	return r
}
