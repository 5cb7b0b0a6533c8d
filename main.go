package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oldgate-museum/booking-widget/internal/cart"
	"github.com/oldgate-museum/booking-widget/internal/catalog"
	"github.com/oldgate-museum/booking-widget/internal/di"
	"github.com/oldgate-museum/booking-widget/internal/metrics"
	"github.com/oldgate-museum/booking-widget/internal/middleware"
	"github.com/oldgate-museum/booking-widget/internal/repository"
	"github.com/oldgate-museum/booking-widget/internal/service"
	"github.com/oldgate-museum/booking-widget/internal/worker"
	"github.com/oldgate-museum/booking-widget/pkg/config"
	"github.com/oldgate-museum/booking-widget/pkg/database"
	"github.com/oldgate-museum/booking-widget/pkg/kafka"
	"github.com/oldgate-museum/booking-widget/pkg/logger"
	pkgmiddleware "github.com/oldgate-museum/booking-widget/pkg/middleware"
	pkgredis "github.com/oldgate-museum/booking-widget/pkg/redis"
	"github.com/oldgate-museum/booking-widget/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Booking Widget...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

	// Initialize the catalog source. The postgres source owns a connection
	// pool; the file source reads a local snapshot and needs no backend.
	var db *database.PostgresDB
	var catalogSource catalog.Source
	switch cfg.Catalog.Source {
	case "postgres":
		dbCfg := &database.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MinConns:        int32(cfg.Database.MaxIdleConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
			ConnectTimeout:  5 * time.Second,
			MaxRetries:      3,
			RetryInterval:   1 * time.Second,
			EnableTracing:   cfg.OTel.Enabled,
			ServiceName:     cfg.App.Name,
		}
		db, err = database.NewPostgres(ctx, dbCfg)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
		}
		defer db.Close()
		appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))
		catalogSource = repository.NewPostgresCatalogRepository(db)
	case "file":
		catalogSource = catalog.NewFileSource(cfg.Catalog.FilePath)
		appLog.Info(fmt.Sprintf("Using file catalog source: %s", cfg.Catalog.FilePath))
	default:
		appLog.Fatal(fmt.Sprintf("Unknown catalog source: %s", cfg.Catalog.Source))
	}

	// Initialize the session store. Redis keeps sessions across restarts
	// and instances; without it sessions fall back to process memory.
	var sessionRepo repository.SessionRepository
	var redisClient *pkgredis.Client
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	}
	redisClient, err = pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, using in-memory sessions: %v", err))
		redisClient = nil
		sessionRepo = repository.NewMemorySessionRepository()
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (pool: %d, minIdle: %d)", redisCfg.PoolSize, redisCfg.MinIdleConns))
		sessionRepo = repository.NewRedisSessionRepository(redisClient)
	}

	// Initialize the remote cart client
	cartClient := cart.NewHTTPClient(&cart.ClientConfig{
		BaseURL:            cfg.Cart.BaseURL,
		Timeout:            cfg.Cart.Timeout,
		SnapshotMaxRetries: cfg.Cart.SnapshotMaxRetries,
	})

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
			eventPublisher = service.NewNoOpEventPublisher()
		} else {
			defer producer.Close()
			eventPublisher = service.NewKafkaEventPublisher(producer, cfg.Kafka.BookingsTopic)
			appLog.Info("Kafka event publisher connected")
		}
	} else {
		eventPublisher = service.NewNoOpEventPublisher()
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		CatalogSource:  catalogSource,
		SessionRepo:    sessionRepo,
		CartClient:     cartClient,
		EventPublisher: eventPublisher,
		ServiceConfig: &service.WidgetServiceConfig{
			TicketCap:       cfg.Widget.MaxTickets,
			SessionTTL:      cfg.Session.TTL,
			SubmitGuardTTL:  cfg.Widget.SubmitGuardTTL,
			TokenSecret:     cfg.Session.TokenSecret,
			TokenTTL:        cfg.Session.TokenTTL,
			TokenIssuer:     cfg.Session.Issuer,
			CartRedirectURL: strings.TrimRight(cfg.Cart.BaseURL, "/") + "/cart",
		},
		WorkerConfig: &worker.CatalogRefreshWorkerConfig{
			RefreshInterval: cfg.Catalog.RefreshInterval,
			SourceName:      cfg.Catalog.Source,
		},
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})

	// Load the catalog before accepting traffic, then keep it fresh
	if failed, err := container.CatalogWorker.RefreshOnce(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Initial catalog load failed: %v", err))
	} else if len(failed) > 0 {
		appLog.Warn(fmt.Sprintf("Catalog loaded with degraded payloads: %s", strings.Join(failed, ", ")))
	}
	if err := container.CatalogWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start catalog refresh worker: %v", err))
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}

	// The widget is embedded in storefront pages, so cross-origin calls
	// are the normal case
	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	corsCfg.ExposeHeaders = []string{"Content-Length", "X-Request-ID"}
	router.Use(cors.New(corsCfg))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	{
		widget := v1.Group("/widget")
		{
			// Public endpoints (no session required)
			widget.POST("/sessions", container.WidgetHandler.StartSession)
			widget.GET("/availability", container.WidgetHandler.CheckAvailability)

			// Session endpoints (require a session token)
			session := widget.Group("/session")
			session.Use(middleware.SessionAuth(container.WidgetService))
			{
				session.GET("", container.WidgetHandler.GetView)
				session.POST("/date", container.WidgetHandler.SelectDate)
				session.DELETE("/date", container.WidgetHandler.ResetDate)
				session.POST("/tickets/add", container.WidgetHandler.AddTicket)
				session.POST("/tickets/remove", container.WidgetHandler.RemoveTicket)
				session.PUT("/tickets", container.WidgetHandler.SetTicketQuantity)
				session.POST("/gift-aid", container.WidgetHandler.SetGiftAid)

				// A retried submit must not commit to the remote cart
				// twice, so retries carrying an idempotency key replay
				// the original response instead
				if redisClient != nil {
					idemCfg := pkgmiddleware.DefaultIdempotencyConfig(redisClient)
					idemCfg.SubjectKey = middleware.SessionIDKey
					session.POST("/submit", pkgmiddleware.Idempotency(idemCfg), container.WidgetHandler.Submit)
				} else {
					session.POST("/submit", container.WidgetHandler.Submit)
				}
			}
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Booking Widget listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	container.CatalogWorker.Stop()

	appLog.Info("Server exited gracefully")
}
