package repository

import (
	"context"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

// SessionRepository persists per-visitor booking state between widget
// interactions
type SessionRepository interface {
	// Save stores the state under its session id with the given TTL
	Save(ctx context.Context, state domain.BookingState, ttl time.Duration) error

	// Get loads the state for a session id. Returns
	// domain.ErrSessionNotFound when the session does not exist or has
	// expired.
	Get(ctx context.Context, sessionID string) (domain.BookingState, error)

	// Delete removes a session
	Delete(ctx context.Context, sessionID string) error
}
