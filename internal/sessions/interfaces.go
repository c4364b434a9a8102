package sessions

import "context"

// SessionManager defines the interface for session data operations
type SessionManager interface {
	ListSessionData(ctx context.Context, userID string) ([]*Session, error)
	ReplaceSessionData(ctx context.Context, req *CreateSessionDataRequest) (*Session, error)
	DeleteSessionData(ctx context.Context, req *DeleteSessionDataRequest) (bool, error)
	DeleteAllSessionData(ctx context.Context, req *DeleteAllDataRequest) error
}

// SessionStore defines the interface for session storage operations
type SessionStore interface {
	ListSessionsByUser(ctx context.Context, userID string) ([]*Session, error)
	GetSession(ctx context.Context, userID string, sessionNumber int) (*Session, error)
	ReplaceSession(ctx context.Context, session *Session) (*Session, error)
	DeleteSession(ctx context.Context, userID string, sessionNumber int) (bool, error)
	DeleteAllSessions(ctx context.Context, userID string) error
}
