package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/api"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/checkout"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/notify"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/session"
	"github.com/Lixing-Zhang/kart-challenge/client-core/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	log.Info("starting food ordering client shell",
		zap.String("port", cfg.Server.Port),
		zap.String("host", cfg.Server.Host),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	var rdb *redis.Client
	if cfg.UsesRedis() {
		opts, err := redis.ParseURL(cfg.Session.RedisURL)
		if err != nil {
			log.Fatal("invalid redis url", zap.Error(err))
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		log.Info("connected to redis")
	}

	// Session token storage
	var tokens session.TokenStore = session.NewMemoryStore()
	if cfg.Session.Store == "redis" {
		tokens = session.NewRedisStore(rdb, cfg.Session.TokenKey)
	}

	center := notify.NewCenter(50, log.Named("notify"))

	var accountService *service.AccountService
	client := api.New(api.Options{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
		OnSessionExpired:  func() { accountService.SessionExpired() },
	}, tokens, center, log.Named("api"))

	// Cart store, restored from the last run when persistence is on
	cartOpts := []cart.Option{cart.WithLogger(log.Named("cart"))}
	if cfg.Cart.Persist {
		repo := repository.NewRedisCartRepository(rdb, cfg.Cart.TTL)
		cartOpts = append(cartOpts, cart.WithRepository(repo, cfg.Cart.OwnerKey))
	}
	store := cart.NewStore(cartOpts...)
	if err := store.Restore(ctx); err != nil {
		log.Warn("failed to restore cart", zap.Error(err))
	}

	book := coupon.NewBook(client, coupon.NewResolver(cfg.Currency.Scale))

	// Initialize services
	var orch *checkout.Orchestrator
	accountService = service.NewAccountService(client, tokens, book, log.Named("account"), func() { orch.Reset() })
	catalogService := service.NewCatalogService(client, accountService)
	cartService := service.NewCartService(catalogService, store)

	orch = checkout.New(checkout.Deps{
		Cart:     store,
		Coupons:  book,
		Orders:   client,
		Geocoder: client,
		Stock:    client,
		Identity: accountService,
		Notifier: center,
		Logger:   log.Named("checkout"),
	})

	if user, ok := accountService.Restore(ctx); ok {
		log.Info("restored session", zap.String("user_id", user.ID))
	}

	// Initialize handlers
	router := handlers.NewRouter(handlers.Handlers{
		Health:       handlers.NewHealthHandler(log),
		Account:      handlers.NewAccountHandler(accountService, log),
		Catalog:      handlers.NewCatalogHandler(catalogService, log),
		Cart:         handlers.NewCartHandler(cartService, log),
		Coupon:       handlers.NewCouponHandler(book, accountService, cartService, log),
		Checkout:     handlers.NewCheckoutHandler(orch, accountService, log),
		Order:        handlers.NewOrderHandler(accountService, client, center, log),
		Notification: handlers.NewNotificationHandler(center, log),
	}, cfg.Auth, 60*time.Second, log.Named("http"))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server stopped gracefully")
}
