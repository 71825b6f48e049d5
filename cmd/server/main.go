package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pharmacart/internal/orders/adapters"
	"pharmacart/internal/orders/application"
	"pharmacart/internal/orders/infrastructure"
	"pharmacart/internal/orders/ports"
	"pharmacart/pkg/cache"
	"pharmacart/pkg/config"
	"pharmacart/pkg/db"
	"pharmacart/pkg/events"
	"pharmacart/pkg/logger"
	"pharmacart/pkg/middleware"
	"pharmacart/pkg/rabbitmq"
	tlspkg "pharmacart/pkg/tls"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting " + cfg.ServiceName)

	// Order repository: in-memory reference or Postgres
	repo := buildRepository(cfg, log)

	// Catalog collaborator: seeded static assortment, optionally cached
	var catalog ports.CatalogClient = adapters.NewStaticCatalog(adapters.SeedCatalog(cfg.Currency))
	if cfg.RedisAddr != "" {
		c := cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
		catalog = adapters.NewCachedCatalog(catalog, c, cfg.CatalogCacheTTL, log)
		log.Info("catalog cache enabled")
	}

	// Compliance collaborator
	compliance := adapters.NewStubComplianceClient()

	// Connect to RabbitMQ; events are best-effort, the server runs without it
	var publisher *adapters.RabbitMQPublisher
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled: " + err.Error())
	} else {
		defer rabbitConn.Close()

		pub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeOrders, log)
		if err != nil {
			log.Warn("failed to create publisher: " + err.Error())
		} else {
			publisher = adapters.NewRabbitMQPublisher(pub, log)
		}
	}

	// Initialize use cases
	var eventPublisher ports.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}
	cartUseCase := application.NewCartUseCase(repo, catalog, eventPublisher, log)
	orderUseCase := application.NewOrderUseCase(repo, eventPublisher, log)
	queryUseCase := application.NewQueryUseCase(repo, compliance, log)

	// HTTP server
	httpHandler := infrastructure.NewHTTPHandler(cartUseCase, orderUseCase, queryUseCase)
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	api := router.Group("/api/v1", middleware.Identity())
	httpHandler.RegisterRoutes(api)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	if cfg.TLSEnabled {
		tlsConfig, err := tlspkg.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			log.Fatal("failed to load TLS config: " + err.Error())
		}
		httpServer.Addr = ":" + cfg.HTTPSPort
		httpServer.TLSConfig = tlsConfig
	}

	go func() {
		var err error
		if cfg.TLSEnabled {
			log.Info("HTTPS server listening on " + httpServer.Addr)
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			log.Info("HTTP server listening on " + httpServer.Addr)
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error: " + err.Error())
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error: " + err.Error())
	}

	log.Info("server stopped")
}

func buildRepository(cfg *config.Config, log *logger.Logger) ports.OrderRepository {
	if cfg.RepoDriver != "postgres" {
		log.Info("using in-memory order repository")
		return adapters.NewMemoryOrderRepository()
	}

	dbConn, err := db.NewConnection(db.Config{
		DSN:     cfg.DSN(),
		Timeout: cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database: " + err.Error())
	}
	log.Info("connected to database")

	repo := adapters.NewGormOrderRepository(dbConn)
	if err := repo.Migrate(); err != nil {
		log.Fatal("failed to migrate database: " + err.Error())
	}

	return repo
}
