package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"paidlinks-api/internal/api"
	"paidlinks-api/internal/config"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/middleware"
	"paidlinks-api/internal/payment"
	"paidlinks-api/internal/services"
	"paidlinks-api/pkg/logging"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}
	cfg := config.AppConfig

	// Initialize logging
	logging.InitLogging(cfg.Mode)

	// Initialize database
	if err := database.InitDatabase(cfg); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.CloseDatabase()

	deps, cleanup := buildDeps(cfg)
	defer cleanup()

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	handler := api.NewHandler(database.NewStore(database.DB), deps)
	api.SetupRoutes(r, handler, cfg.JWTSecret)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	logging.Infof("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Server shutdown failed: %v", err)
	}
}

// buildDeps picks the cache, purchase guard, gateway and notifiers for cfg
func buildDeps(cfg *config.Config) (api.Deps, func()) {
	deps := api.Deps{
		Purchase: services.PurchaseConfig{
			Currency:      cfg.PaymentCurrency,
			PublicBaseURL: cfg.PublicBaseURL,
		},
	}
	cleanup := func() {}

	lockTTL := time.Duration(cfg.PurchaseLockSeconds) * time.Second
	deps.Cache = services.NopLinkCache{}
	if database.RedisClient != nil {
		if cfg.LinkCacheTTLSeconds > 0 {
			deps.Cache = services.NewRedisLinkCache(database.RedisClient, time.Duration(cfg.LinkCacheTTLSeconds)*time.Second)
		}
		deps.Guard = services.NewRedisPurchaseGuard(database.RedisClient, lockTTL)
	} else {
		guard := services.NewMemoryPurchaseGuard(lockTTL)
		deps.Guard = guard
		cleanup = guard.Stop
	}

	switch cfg.PaymentProvider {
	case config.ProviderYookassa:
		deps.Gateway = payment.NewYookassaGateway(cfg.YookassaShopID, cfg.YookassaSecretKey, cfg.YookassaAPIURL)
	default:
		logging.Warnf("Using sandbox payment gateway, purchases are not charged")
		deps.Gateway = payment.SandboxGateway{}
	}

	if cfg.PurchaseWebhookURL != "" {
		deps.Notifiers = append(deps.Notifiers, services.NewWebhookNotifier(cfg.PurchaseWebhookURL, cfg.PurchaseWebhookSecret))
	}
	if cfg.BrevoAPIKey != "" {
		deps.Notifiers = append(deps.Notifiers, services.NewBrevoReceiptMailer(cfg.BrevoAPIKey, cfg.BrevoFromEmail, cfg.BrevoFromName, cfg.PublicBaseURL))
	}

	return deps, cleanup
}
