package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurova/neurova/internal/sessions"
)

type fakeLoader struct {
	sessions []*sessions.Session
	err      error
}

func (f *fakeLoader) LoadSessions(ctx context.Context, userID string) ([]*sessions.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions, nil
}

func TestEngine(t *testing.T) {
	ctx := context.Background()

	loader := &fakeLoader{sessions: testSessions()}
	engine := NewEngine(loader)

	t.Run("GroupedZScoresAppliesFilter", func(t *testing.T) {
		result, err := engine.GroupedZScores(ctx, "user-1", Filter{
			Range: &SessionRange{Start: intPtr(1), End: intPtr(2)},
		})
		require.NoError(t, err)

		require.Len(t, result, 2)
		assert.InDelta(t, 2.0, result[0].Values[sessions.BandDelta], 1e-9)
	})

	t.Run("ProportionsOverAllSessions", func(t *testing.T) {
		result, err := engine.Proportions(ctx, "user-1", Filter{})
		require.NoError(t, err)
		assert.NotEmpty(t, result)
	})

	t.Run("TrendsAscending", func(t *testing.T) {
		result, err := engine.Trends(ctx, "user-1", Filter{})
		require.NoError(t, err)

		require.Len(t, result, 5)
		for i := 1; i < len(result); i++ {
			assert.Less(t, result[i-1].SessionNumber, result[i].SessionNumber)
		}
	})

	t.Run("SessionSummaryMissIsNoMatchingData", func(t *testing.T) {
		_, err := engine.SessionSummary(ctx, "user-1", 99)
		require.Error(t, err)
		assert.True(t, IsNoMatchingData(err))
	})

	t.Run("SessionSummaryFound", func(t *testing.T) {
		summary, err := engine.SessionSummary(ctx, "user-1", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.SessionNumber)
	})

	t.Run("LoaderFaultPropagates", func(t *testing.T) {
		failing := NewEngine(&fakeLoader{err: NewDataUnavailableError("Error", "backend down", nil)})

		_, err := failing.GroupedZScores(ctx, "user-1", Filter{})
		require.Error(t, err)
		assert.True(t, IsDataUnavailable(err))
	})
}
