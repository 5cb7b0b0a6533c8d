package di

import (
	"github.com/oldgate-museum/booking-widget/internal/cart"
	"github.com/oldgate-museum/booking-widget/internal/catalog"
	"github.com/oldgate-museum/booking-widget/internal/handler"
	"github.com/oldgate-museum/booking-widget/internal/repository"
	"github.com/oldgate-museum/booking-widget/internal/service"
	"github.com/oldgate-museum/booking-widget/internal/worker"
	"github.com/oldgate-museum/booking-widget/pkg/database"
	"github.com/oldgate-museum/booking-widget/pkg/redis"
)

// Container holds all dependencies for the widget service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Catalog
	CatalogSource catalog.Source
	CatalogStore  *catalog.Store

	// Repositories
	SessionRepo repository.SessionRepository

	// Clients and publishers
	CartClient     cart.Client
	EventPublisher service.EventPublisher

	// Services
	WidgetService service.WidgetService

	// Workers
	CatalogWorker *worker.CatalogRefreshWorker

	// Handlers
	HealthHandler *handler.HealthHandler
	WidgetHandler *handler.WidgetHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	CatalogSource  catalog.Source
	SessionRepo    repository.SessionRepository
	CartClient     cart.Client
	EventPublisher service.EventPublisher
	ServiceConfig  *service.WidgetServiceConfig
	WorkerConfig   *worker.CatalogRefreshWorkerConfig
	ServiceName    string
	Version        string
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		CatalogSource:  cfg.CatalogSource,
		CatalogStore:   catalog.NewStore(),
		SessionRepo:    cfg.SessionRepo,
		CartClient:     cfg.CartClient,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize services
	c.WidgetService = service.NewWidgetService(
		c.SessionRepo,
		c.CatalogStore,
		c.CartClient,
		c.EventPublisher,
		cfg.ServiceConfig,
	)

	// Initialize workers
	c.CatalogWorker = worker.NewCatalogRefreshWorker(c.CatalogSource, c.CatalogStore, cfg.WorkerConfig)

	// Initialize handlers. Readiness only checks the backends this
	// deployment actually runs on.
	var checks []handler.DependencyCheck
	if cfg.DB != nil {
		checks = append(checks, handler.DependencyCheck{Name: "postgres", Pinger: cfg.DB})
	}
	if cfg.Redis != nil {
		checks = append(checks, handler.DependencyCheck{Name: "redis", Pinger: cfg.Redis})
	}
	c.HealthHandler = handler.NewHealthHandler(cfg.ServiceName, cfg.Version, checks...)
	c.WidgetHandler = handler.NewWidgetHandler(c.WidgetService)

	return c
}
