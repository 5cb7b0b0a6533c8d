package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

func TestMemorySessionRepository_SaveAndGet(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	state := domain.NewBookingState("sess-1", domain.CartSnapshot{}, time.Now())
	state = state.AddOne(101, domain.DefaultTicketCap)

	if err := repo.Save(ctx, state, time.Minute); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want %q", got.SessionID, "sess-1")
	}
	if got.AggregateQuantity() != 1 {
		t.Errorf("AggregateQuantity() = %d, want 1", got.AggregateQuantity())
	}
}

func TestMemorySessionRepository_GetMissing(t *testing.T) {
	repo := NewMemorySessionRepository()

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestMemorySessionRepository_SaveEmptyID(t *testing.T) {
	repo := NewMemorySessionRepository()

	state := domain.NewBookingState("", domain.CartSnapshot{}, time.Now())
	err := repo.Save(context.Background(), state, time.Minute)
	if !errors.Is(err, domain.ErrInvalidSessionID) {
		t.Errorf("Save() error = %v, want ErrInvalidSessionID", err)
	}
}

func TestMemorySessionRepository_Expiry(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	state := domain.NewBookingState("sess-exp", domain.CartSnapshot{}, time.Now())
	if err := repo.Save(ctx, state, -time.Second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, err := repo.Get(ctx, "sess-exp")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrSessionNotFound", err)
	}
	if repo.Len() != 0 {
		t.Errorf("Len() after expired Get = %d, want 0", repo.Len())
	}
}

func TestMemorySessionRepository_Delete(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	state := domain.NewBookingState("sess-del", domain.CartSnapshot{}, time.Now())
	if err := repo.Save(ctx, state, time.Minute); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Delete(ctx, "sess-del"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := repo.Get(ctx, "sess-del")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}
}

func TestMemorySessionRepository_SaveOverwrites(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	state := domain.NewBookingState("sess-ow", domain.CartSnapshot{}, time.Now())
	if err := repo.Save(ctx, state, time.Minute); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	state = state.AddOne(101, domain.DefaultTicketCap)
	state = state.AddOne(101, domain.DefaultTicketCap)
	if err := repo.Save(ctx, state, time.Minute); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	got, err := repo.Get(ctx, "sess-ow")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AggregateQuantity() != 2 {
		t.Errorf("AggregateQuantity() = %d, want 2", got.AggregateQuantity())
	}
	if repo.Len() != 1 {
		t.Errorf("Len() = %d, want 1", repo.Len())
	}
}
