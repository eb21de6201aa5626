package server

import (
	"fmt"
	"net/http"
	"time"

	"shtora-api/internal/cms"
	"shtora-api/internal/config"
	"shtora-api/internal/delivery"
	custommiddleware "shtora-api/internal/middleware"
	"shtora-api/internal/payment"
	"shtora-api/internal/repository"
	"shtora-api/internal/service"
	"shtora-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cartTTL = 30 * 24 * time.Hour

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware([]string{cfg.Server.AppURL}, cfg.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	if cfg.RateLimit.Requests > 0 {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "shtora:ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize external clients
	contentStore := cms.NewClient(cfg.CMS.URL, cfg.CMS.Token, logger)
	liqpayClient := payment.NewLiqPayClient(payment.LiqPayConfig{
		PublicKey:  cfg.LiqPay.PublicKey,
		PrivateKey: cfg.LiqPay.PrivateKey,
		Sandbox:    cfg.LiqPay.Sandbox,
		AppURL:     cfg.Server.AppURL,
	})
	stripeClient := payment.NewStripeClient(payment.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		AppURL:        cfg.Server.AppURL,
	})
	carrier := delivery.NewClient(cfg.Delivery.NovaPoshtaAPIKey, logger)

	// Initialize repositories
	cartRepo := repository.NewCartRepository(redisClient, cartTTL)

	// Initialize services
	cartService := service.NewCartService(cartRepo, logger)
	catalogService := service.NewCatalogService(contentStore, logger)
	checkoutService := service.NewCheckoutService(cartService, stripeClient, liqpayClient, service.ShippingConfig{
		FreeThreshold: cfg.Shipping.FreeThreshold,
		FlatFee:       cfg.Shipping.FlatFee,
	}, logger)

	// Register routes
	transport.NewCatalogHandler(catalogService, logger).RegisterRoutes(router)
	transport.NewCartHandler(cartService, logger).RegisterRoutes(router)
	transport.NewCheckoutHandler(checkoutService, cartService, liqpayClient, stripeClient, logger).RegisterRoutes(router)
	transport.NewDeliveryHandler(carrier, logger).RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
