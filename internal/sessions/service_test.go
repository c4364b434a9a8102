package sessions

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory SessionStore with the same replace and cascade
// semantics as the Postgres store.
type fakeStore struct {
	sessions []*Session
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) ListSessionsByUser(ctx context.Context, userID string) ([]*Session, error) {
	var result []*Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SessionNumber < result[j].SessionNumber
	})
	return result, nil
}

func (f *fakeStore) GetSession(ctx context.Context, userID string, sessionNumber int) (*Session, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.SessionNumber == sessionNumber {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ReplaceSession(ctx context.Context, session *Session) (*Session, error) {
	if _, err := f.DeleteSession(ctx, session.UserID, session.SessionNumber); err != nil {
		return nil, err
	}
	session.ID = f.nextID
	f.nextID++
	for _, m := range session.Measurements {
		m.SessionID = session.ID
	}
	f.sessions = append(f.sessions, session)
	return session, nil
}

func (f *fakeStore) DeleteSession(ctx context.Context, userID string, sessionNumber int) (bool, error) {
	for i, s := range f.sessions {
		if s.UserID == userID && s.SessionNumber == sessionNumber {
			f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeleteAllSessions(ctx context.Context, userID string) error {
	var kept []*Session
	for _, s := range f.sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
	return nil
}

func createRequest(userID string, sessionNumber int, bands ...string) *CreateSessionDataRequest {
	req := &CreateSessionDataRequest{
		UserID:        userID,
		SessionNumber: sessionNumber,
	}
	for _, band := range bands {
		req.Bands = append(req.Bands, validInput(band))
	}
	return req
}

func TestSessionService(t *testing.T) {
	ctx := context.Background()

	t.Run("ListEmptyIsNotAnError", func(t *testing.T) {
		service := NewService(newFakeStore())

		result, err := service.ListSessionData(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("ListRequiresUserID", func(t *testing.T) {
		service := NewService(newFakeStore())

		_, err := service.ListSessionData(ctx, "")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("ReplaceStoresBatch", func(t *testing.T) {
		service := NewService(newFakeStore())

		created, err := service.ReplaceSessionData(ctx, createRequest("user-1", 1, "delta", "alpha"))
		require.NoError(t, err)

		assert.Equal(t, 1, created.SessionNumber)
		assert.Len(t, created.Measurements, 2)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("ResubmitReplacesNotMerges", func(t *testing.T) {
		store := newFakeStore()
		service := NewService(store)

		_, err := service.ReplaceSessionData(ctx, createRequest("user-1", 1, "delta", "alpha", "theta"))
		require.NoError(t, err)

		_, err = service.ReplaceSessionData(ctx, createRequest("user-1", 1, "gamma"))
		require.NoError(t, err)

		listed, err := service.ListSessionData(ctx, "user-1")
		require.NoError(t, err)

		require.Len(t, listed, 1)
		require.Len(t, listed[0].Measurements, 1)
		assert.Equal(t, BandGamma, listed[0].Measurements[0].Band)
	})

	t.Run("ReplaceRejectsInvalidBatch", func(t *testing.T) {
		store := newFakeStore()
		service := NewService(store)

		req := createRequest("user-1", 1, "delta")
		req.Bands[0].BrodmannArea = intPtr(99)

		_, err := service.ReplaceSessionData(ctx, req)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Empty(t, store.sessions, "rejected batch must not be written")
	})

	t.Run("DeleteReportsMiss", func(t *testing.T) {
		service := NewService(newFakeStore())

		deleted, err := service.DeleteSessionData(ctx, &DeleteSessionDataRequest{UserID: "user-1", SessionNumber: 7})
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("DeleteRemovesSession", func(t *testing.T) {
		service := NewService(newFakeStore())

		_, err := service.ReplaceSessionData(ctx, createRequest("user-1", 1, "delta"))
		require.NoError(t, err)
		_, err = service.ReplaceSessionData(ctx, createRequest("user-1", 2, "alpha"))
		require.NoError(t, err)

		deleted, err := service.DeleteSessionData(ctx, &DeleteSessionDataRequest{UserID: "user-1", SessionNumber: 1})
		require.NoError(t, err)
		assert.True(t, deleted)

		listed, err := service.ListSessionData(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, 2, listed[0].SessionNumber)
	})

	t.Run("DeleteValidatesSessionNumber", func(t *testing.T) {
		service := NewService(newFakeStore())

		_, err := service.DeleteSessionData(ctx, &DeleteSessionDataRequest{UserID: "user-1", SessionNumber: 0})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("DeleteAllOnlyTouchesOneUser", func(t *testing.T) {
		service := NewService(newFakeStore())

		_, err := service.ReplaceSessionData(ctx, createRequest("user-1", 1, "delta"))
		require.NoError(t, err)
		_, err = service.ReplaceSessionData(ctx, createRequest("user-2", 1, "alpha"))
		require.NoError(t, err)

		require.NoError(t, service.DeleteAllSessionData(ctx, &DeleteAllDataRequest{UserID: "user-1"}))

		gone, err := service.ListSessionData(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, gone)

		kept, err := service.ListSessionData(ctx, "user-2")
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})
}
