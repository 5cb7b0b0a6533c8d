package worker

import (
	"context"
	"testing"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/catalog"
	"github.com/oldgate-museum/booking-widget/internal/domain"
	"github.com/stretchr/testify/assert"
)

// MockCatalogSource is a mock implementation of catalog.Source
type MockCatalogSource struct {
	LoadFunc func(ctx context.Context) (domain.Catalog, []catalog.PayloadResult, error)
}

func (m *MockCatalogSource) Load(ctx context.Context) (domain.Catalog, []catalog.PayloadResult, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return domain.EmptyCatalog(), nil, nil
}

var _ catalog.Source = (*MockCatalogSource)(nil)

func TestNewCatalogRefreshWorker(t *testing.T) {
	t.Run("creates worker with custom config", func(t *testing.T) {
		cfg := &CatalogRefreshWorkerConfig{
			RefreshInterval: 30 * time.Second,
			SourceName:      "postgres",
		}
		w := NewCatalogRefreshWorker(&MockCatalogSource{}, catalog.NewStore(), cfg)
		assert.NotNil(t, w)
		assert.Equal(t, 30*time.Second, w.config.RefreshInterval)
	})

	t.Run("uses defaults for invalid config values", func(t *testing.T) {
		cfg := &CatalogRefreshWorkerConfig{
			RefreshInterval: 0,
			SourceName:      "",
		}
		w := NewCatalogRefreshWorker(&MockCatalogSource{}, catalog.NewStore(), cfg)
		assert.Equal(t, 5*time.Minute, w.config.RefreshInterval)
		assert.Equal(t, "unknown", w.config.SourceName)
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		w := NewCatalogRefreshWorker(&MockCatalogSource{}, catalog.NewStore(), nil)
		assert.Equal(t, 5*time.Minute, w.config.RefreshInterval)
	})
}

func TestCatalogRefreshWorker_RefreshOnce(t *testing.T) {
	t.Run("swaps fresh catalog into store", func(t *testing.T) {
		store := catalog.NewStore()
		source := &MockCatalogSource{
			LoadFunc: func(ctx context.Context) (domain.Catalog, []catalog.PayloadResult, error) {
				cat := domain.EmptyCatalog()
				cat.Exhibitions = []domain.Exhibition{{Title: "Silk Roads"}}
				return cat, []catalog.PayloadResult{
					{Payload: catalog.PayloadExhibitions, OK: true},
				}, nil
			},
		}
		w := NewCatalogRefreshWorker(source, store, nil)

		failed, err := w.RefreshOnce(context.Background())

		assert.NoError(t, err)
		assert.Empty(t, failed)
		assert.Len(t, store.Get().Exhibitions, 1)
		assert.False(t, store.LoadedAt().IsZero())

		stats := w.GetStats()
		assert.Equal(t, int64(1), stats.TotalRefreshes)
		assert.Empty(t, stats.LastFailedPayloads)
	})

	t.Run("reports degraded payloads", func(t *testing.T) {
		store := catalog.NewStore()
		source := &MockCatalogSource{
			LoadFunc: func(ctx context.Context) (domain.Catalog, []catalog.PayloadResult, error) {
				return domain.EmptyCatalog(), []catalog.PayloadResult{
					{Payload: catalog.PayloadExhibitions, OK: true},
					{Payload: catalog.PayloadGiftAid, OK: false, Err: assert.AnError},
				}, nil
			},
		}
		w := NewCatalogRefreshWorker(source, store, nil)

		failed, err := w.RefreshOnce(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, []string{catalog.PayloadGiftAid}, failed)
		assert.Equal(t, []string{catalog.PayloadGiftAid}, w.GetStats().LastFailedPayloads)
	})

	t.Run("load error keeps previous snapshot", func(t *testing.T) {
		store := catalog.NewStore()
		seeded := domain.EmptyCatalog()
		seeded.Exhibitions = []domain.Exhibition{{Title: "Silk Roads"}}
		store.Set(seeded, time.Now())

		source := &MockCatalogSource{
			LoadFunc: func(ctx context.Context) (domain.Catalog, []catalog.PayloadResult, error) {
				return domain.Catalog{}, nil, assert.AnError
			},
		}
		w := NewCatalogRefreshWorker(source, store, nil)

		_, err := w.RefreshOnce(context.Background())

		assert.Error(t, err)
		assert.Len(t, store.Get().Exhibitions, 1)
		assert.Equal(t, int64(0), w.GetStats().TotalRefreshes)
	})
}

func TestCatalogRefreshWorker_StartStop(t *testing.T) {
	store := catalog.NewStore()
	source := &MockCatalogSource{}
	cfg := &CatalogRefreshWorkerConfig{
		RefreshInterval: 10 * time.Millisecond,
		SourceName:      "file",
	}
	w := NewCatalogRefreshWorker(source, store, cfg)

	err := w.Start(context.Background())
	assert.NoError(t, err)
	assert.True(t, w.GetStats().IsRunning)

	// Starting twice is an error
	err = w.Start(context.Background())
	assert.Error(t, err)

	// Let a few ticks fire
	time.Sleep(50 * time.Millisecond)

	w.Stop()
	assert.False(t, w.GetStats().IsRunning)
	assert.Greater(t, w.GetStats().TotalRefreshes, int64(0))

	// Stop again is a no-op
	w.Stop()
}
