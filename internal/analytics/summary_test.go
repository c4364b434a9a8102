package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurova/neurova/internal/sessions"
)

func TestSummarizeSession(t *testing.T) {
	t.Run("ZScoreMeansAreTrueMeans", func(t *testing.T) {
		session := &sessions.Session{
			SessionNumber: 4,
			Measurements: []*sessions.Measurement{
				{Band: sessions.BandDelta, ZScore: 2.0, Frequency: 1},
				{Band: sessions.BandDelta, ZScore: 4.0, Frequency: 2},
				{Band: sessions.BandDelta, ZScore: 6.0, Frequency: 3},
			},
		}

		summary := SummarizeSession(session)

		assert.Equal(t, 4, summary.SessionNumber)
		require.Len(t, summary.ZScoreMeans, 1)
		// The cross-session charts would fold this to 4.5; the per-session
		// summary uses the arithmetic mean
		assert.InDelta(t, 4.0, summary.ZScoreMeans[0].Mean, 1e-9)
		assert.Equal(t, SeveritySevereHigh, summary.ZScoreMeans[0].Severity)
	})

	t.Run("FrequencyTotalsSumPerBand", func(t *testing.T) {
		session := &sessions.Session{
			SessionNumber: 1,
			Measurements: []*sessions.Measurement{
				{Band: sessions.BandAlpha, ZScore: 0, Frequency: 5},
				{Band: sessions.BandAlpha, ZScore: 0, Frequency: 2.5},
				{Band: sessions.BandBeta, ZScore: 0, Frequency: 1},
			},
		}

		summary := SummarizeSession(session)

		require.Len(t, summary.FrequencyTotals, 2)
		assert.Equal(t, sessions.BandAlpha, summary.FrequencyTotals[0].Band)
		assert.InDelta(t, 7.5, summary.FrequencyTotals[0].Total, 1e-9)
		assert.Equal(t, sessions.BandBeta, summary.FrequencyTotals[1].Band)
		assert.InDelta(t, 1.0, summary.FrequencyTotals[1].Total, 1e-9)
	})

	t.Run("LobeCountsUseUnknownSentinel", func(t *testing.T) {
		frontal := sessions.LobeFrontal
		session := &sessions.Session{
			SessionNumber: 1,
			Measurements: []*sessions.Measurement{
				{Band: sessions.BandDelta, Lobe: &frontal},
				{Band: sessions.BandTheta, Lobe: &frontal},
				{Band: sessions.BandAlpha},
			},
		}

		summary := SummarizeSession(session)

		require.Len(t, summary.LobeCounts, 2)
		assert.Equal(t, sessions.LobeFrontal, summary.LobeCounts[0].Lobe)
		assert.Equal(t, 2, summary.LobeCounts[0].Count)
		assert.Equal(t, sessions.LobeUnknown, summary.LobeCounts[1].Lobe)
		assert.Equal(t, 1, summary.LobeCounts[1].Count)
	})

	t.Run("EmptySession", func(t *testing.T) {
		summary := SummarizeSession(&sessions.Session{SessionNumber: 2})

		assert.Equal(t, 2, summary.SessionNumber)
		assert.Empty(t, summary.ZScoreMeans)
		assert.Empty(t, summary.FrequencyTotals)
		assert.Empty(t, summary.LobeCounts)
	})
}
