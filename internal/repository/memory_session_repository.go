package repository

import (
	"context"
	"sync"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

// MemorySessionRepository implements SessionRepository with an
// in-process map. Used for development and tests; state does not
// survive a restart.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	state     domain.BookingState
	expiresAt time.Time
}

// NewMemorySessionRepository creates a new MemorySessionRepository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]memorySession),
	}
}

// Save stores the booking state with the given TTL
func (r *MemorySessionRepository) Save(ctx context.Context, state domain.BookingState, ttl time.Duration) error {
	if state.SessionID == "" {
		return domain.ErrInvalidSessionID
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[state.SessionID] = memorySession{state: state, expiresAt: expiresAt}
	return nil
}

// Get loads the booking state for a session id. Expired sessions are
// dropped lazily on read.
func (r *MemorySessionRepository) Get(ctx context.Context, sessionID string) (domain.BookingState, error) {
	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return domain.BookingState{}, domain.ErrSessionNotFound
	}

	if !session.expiresAt.IsZero() && time.Now().After(session.expiresAt) {
		r.mu.Lock()
		delete(r.sessions, sessionID)
		r.mu.Unlock()
		return domain.BookingState{}, domain.ErrSessionNotFound
	}

	return session.state, nil
}

// Delete removes a session
func (r *MemorySessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Ensure MemorySessionRepository implements SessionRepository
var _ SessionRepository = (*MemorySessionRepository)(nil)
