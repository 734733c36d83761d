package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"couponsystem/internal/api"
	"couponsystem/internal/config"
	"couponsystem/internal/coupon/repository"
	"couponsystem/internal/coupon/service"
	couponhttp "couponsystem/internal/coupon/transport/http"
	"couponsystem/internal/metrics"
	userhttp "couponsystem/internal/user/transport/http"
	"couponsystem/pkg/db"
	"couponsystem/pkg/middleware"
	"couponsystem/pkg/rabbitmq"
)

func main() {
	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.Database())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database connection failed")
	}
	defer database.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("database connected")

	metrics.InitMetrics()

	publisher := rabbitmq.Connect(cfg.RabbitMQURL, log.With().Str("component", "rabbitmq").Logger())
	defer publisher.Close()

	couponRepo := repository.NewSQLCouponRepository(database)
	couponService := service.NewService(couponRepo, service.NewSQLTxRunner(database), publisher, log)
	couponService.Exchange = cfg.RabbitMQExchange
	couponService.CapScope = service.CapScope(cfg.RedemptionCapScope)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute, log)
		go limiter.Run(ctx)
	}

	router := api.NewRouter(api.RouterConfig{
		Coupons:             couponhttp.NewHandler(couponService, log),
		Users:               userhttp.NewHandler(),
		Log:                 log,
		RateLimiter:         limiter,
		AllowedOrigins:      cfg.AllowedOrigins(),
		AdminJWTSecret:      cfg.AdminJWTSecret,
		MetricsUser:         cfg.MetricsUser,
		MetricsPasswordHash: cfg.MetricsPasswordHash,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.LogFormat == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Str("service", "coupon-system").Logger()
}
