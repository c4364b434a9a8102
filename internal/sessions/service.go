package sessions

import (
	"context"
	"fmt"
	"time"
)

// SessionService implements the SessionManager interface
type SessionService struct {
	store SessionStore
}

// NewSessionService creates a new session data service
func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{
		store: store,
	}
}

// NewService creates a new session data service (alias for NewSessionService)
func NewService(store SessionStore) *SessionService {
	return NewSessionService(store)
}

// ListSessionData returns all sessions owned by a user in ascending session
// number order. A user without sessions gets an empty list, not an error.
func (s *SessionService) ListSessionData(ctx context.Context, userID string) ([]*Session, error) {
	if userID == "" {
		return nil, NewValidationError("user_id", "user_id is required")
	}

	result, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session data: %w", err)
	}
	if result == nil {
		result = []*Session{}
	}
	return result, nil
}

// ReplaceSessionData validates and stores a measurement batch for one
// session number. Prior data for the same (user, session number) pair is
// fully replaced, never merged.
func (s *SessionService) ReplaceSessionData(ctx context.Context, req *CreateSessionDataRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session := &Session{
		SessionNumber: req.SessionNumber,
		UserID:        req.UserID,
		CreatedAt:     time.Now(),
		Measurements:  make([]*Measurement, len(req.Bands)),
	}
	for i, in := range req.Bands {
		var lobe *Lobe
		if in.Lobe != nil && *in.Lobe != "" {
			l := Lobe(*in.Lobe)
			lobe = &l
		}
		session.Measurements[i] = &Measurement{
			Band:                     Band(in.Band),
			ZScore:                   *in.ZScore,
			Frequency:                *in.Frequency,
			Lobe:                     lobe,
			Region:                   in.Region,
			BrodmannArea:             *in.BrodmannArea,
			Functions:                in.Functions,
			PossibleSymptomsOfDefect: in.PossibleSymptomsOfDefect,
		}
	}

	created, err := s.store.ReplaceSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to replace session data: %w", err)
	}

	return created, nil
}

// DeleteSessionData deletes one session and its measurements. The returned
// bool reports whether a session actually existed; a miss is not an error.
func (s *SessionService) DeleteSessionData(ctx context.Context, req *DeleteSessionDataRequest) (bool, error) {
	if req.UserID == "" {
		return false, NewValidationError("user_id", "user_id is required")
	}
	if req.SessionNumber <= 0 {
		return false, NewValidationError("session_number", "session_number must be a positive integer")
	}

	deleted, err := s.store.DeleteSession(ctx, req.UserID, req.SessionNumber)
	if err != nil {
		return false, fmt.Errorf("failed to delete session data: %w", err)
	}

	return deleted, nil
}

// DeleteAllSessionData deletes every session a user owns.
func (s *SessionService) DeleteAllSessionData(ctx context.Context, req *DeleteAllDataRequest) error {
	if req.UserID == "" {
		return NewValidationError("user_id", "user_id is required")
	}

	if err := s.store.DeleteAllSessions(ctx, req.UserID); err != nil {
		return fmt.Errorf("failed to delete all session data: %w", err)
	}

	return nil
}
