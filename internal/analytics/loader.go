package analytics

import (
	"context"

	"github.com/neurova/neurova/internal/sessions"
)

// Loader retrieves all sessions (with nested measurements) owned by a user,
// ordered by ascending session number. Implementations are read-only.
type Loader interface {
	LoadSessions(ctx context.Context, userID string) ([]*sessions.Session, error)
}

// StoreLoader loads sessions straight from the local session store.
type StoreLoader struct {
	store sessions.SessionStore
}

// NewStoreLoader creates a loader backed by a session store.
func NewStoreLoader(store sessions.SessionStore) *StoreLoader {
	return &StoreLoader{
		store: store,
	}
}

// LoadSessions returns the user's sessions in ascending session number
// order. Store faults surface as DataUnavailableError; the caller should
// treat that as recoverable.
func (l *StoreLoader) LoadSessions(ctx context.Context, userID string) ([]*sessions.Session, error) {
	if userID == "" {
		return nil, sessions.NewValidationError("user_id", "user_id is required")
	}

	result, err := l.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, NewDataUnavailableError("Error", "failed to load session data", err)
	}
	if result == nil {
		result = []*sessions.Session{}
	}
	return result, nil
}
