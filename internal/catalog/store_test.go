package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

func TestStore_GetBeforeFirstLoad(t *testing.T) {
	store := NewStore()

	catalog := store.Get()

	if len(catalog.Exhibitions) != 0 || len(catalog.Variants) != 0 {
		t.Error("fresh store should hold the empty catalog")
	}
	if !store.LoadedAt().IsZero() {
		t.Error("LoadedAt() should be zero before the first Set")
	}
}

func TestStore_SetSwapsSnapshot(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)

	loaded := domain.Catalog{
		Exhibitions: []domain.Exhibition{{Title: "Silk Roads"}},
		Variants:    []domain.ProductVariant{{ID: 101, Title: "Adult", Price: 1850}},
		GiftAid:     domain.DefaultGiftAidCopy(),
	}
	store.Set(loaded, now)

	got := store.Get()
	if len(got.Exhibitions) != 1 || got.Exhibitions[0].Title != "Silk Roads" {
		t.Errorf("Get() = %+v, want the loaded catalog", got)
	}
	if !store.LoadedAt().Equal(now) {
		t.Errorf("LoadedAt() = %v, want %v", store.LoadedAt(), now)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set(domain.EmptyCatalog(), now)
		}()
		go func() {
			defer wg.Done()
			_ = store.Get()
		}()
	}
	wg.Wait()
}
