package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/catalog"
	"github.com/oldgate-museum/booking-widget/internal/metrics"
	"github.com/oldgate-museum/booking-widget/pkg/logger"
)

// CatalogRefreshWorkerConfig contains configuration for the catalog refresh worker
type CatalogRefreshWorkerConfig struct {
	// RefreshInterval is the interval between catalog reloads
	RefreshInterval time.Duration
	// SourceName labels the backing source in logs and metrics
	SourceName string
}

// DefaultCatalogRefreshWorkerConfig returns default configuration
func DefaultCatalogRefreshWorkerConfig() *CatalogRefreshWorkerConfig {
	return &CatalogRefreshWorkerConfig{
		RefreshInterval: 5 * time.Minute,
		SourceName:      "unknown",
	}
}

// CatalogRefreshWorker periodically reloads the exhibition catalog and
// swaps it into the shared store. Sessions always read whichever snapshot
// was current when they touch the store, so a reload never tears an
// in-flight request.
type CatalogRefreshWorker struct {
	source  catalog.Source
	store   *catalog.Store
	config  *CatalogRefreshWorkerConfig
	log     *logger.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	// Stats
	totalRefreshes     int64
	lastRefreshTime    time.Time
	lastFailedPayloads []string
}

// NewCatalogRefreshWorker creates a new catalog refresh worker
func NewCatalogRefreshWorker(source catalog.Source, store *catalog.Store, config *CatalogRefreshWorkerConfig) *CatalogRefreshWorker {
	if config == nil {
		config = DefaultCatalogRefreshWorkerConfig()
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 5 * time.Minute
	}
	if config.SourceName == "" {
		config.SourceName = "unknown"
	}

	return &CatalogRefreshWorker{
		source: source,
		store:  store,
		config: config,
		log:    logger.Get(),
		stopCh: make(chan struct{}),
	}
}

// Start starts the catalog refresh worker
func (w *CatalogRefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("catalog refresh worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info(fmt.Sprintf("Starting catalog refresh worker (interval: %s, source: %s)",
		w.config.RefreshInterval, w.config.SourceName))

	w.wg.Add(1)
	go w.refreshLoop(ctx)

	return nil
}

// Stop stops the catalog refresh worker
func (w *CatalogRefreshWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping catalog refresh worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Catalog refresh worker stopped")
}

// refreshLoop reloads the catalog on each tick. The initial load happens
// at boot before the worker starts, so the loop waits for the first tick.
func (w *CatalogRefreshWorker) refreshLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if _, err := w.RefreshOnce(ctx); err != nil {
				w.log.Error(fmt.Sprintf("Catalog refresh failed, keeping previous snapshot: %v", err))
			}
		}
	}
}

// RefreshOnce loads the catalog from the source and swaps it into the
// store. It returns the names of payloads that fell back to defaults.
// On a load error the store keeps the previous snapshot.
func (w *CatalogRefreshWorker) RefreshOnce(ctx context.Context) ([]string, error) {
	cat, results, err := w.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	failed := catalog.FailedPayloads(results)
	w.store.Set(cat, time.Now())

	w.mu.Lock()
	w.totalRefreshes++
	w.lastRefreshTime = time.Now()
	w.lastFailedPayloads = failed
	w.mu.Unlock()

	metrics.RecordCatalogRefresh(ctx, w.config.SourceName, len(failed))

	if len(failed) > 0 {
		w.log.Warn(fmt.Sprintf("Catalog refreshed with %d degraded payloads: %s",
			len(failed), strings.Join(failed, ", ")))
	} else {
		w.log.Info(fmt.Sprintf("Catalog refreshed: %d exhibitions, %d variants, %d closed dates",
			len(cat.Exhibitions), len(cat.Variants), len(cat.ClosedDates)))
	}

	return failed, nil
}

// GetStats returns worker statistics
func (w *CatalogRefreshWorker) GetStats() *CatalogRefreshWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &CatalogRefreshWorkerStats{
		IsRunning:          w.running,
		TotalRefreshes:     w.totalRefreshes,
		LastRefreshTime:    w.lastRefreshTime,
		LastFailedPayloads: w.lastFailedPayloads,
	}
}

// CatalogRefreshWorkerStats contains worker statistics
type CatalogRefreshWorkerStats struct {
	IsRunning          bool      `json:"is_running"`
	TotalRefreshes     int64     `json:"total_refreshes"`
	LastRefreshTime    time.Time `json:"last_refresh_time"`
	LastFailedPayloads []string  `json:"last_failed_payloads"`
}
