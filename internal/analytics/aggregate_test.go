package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurova/neurova/internal/sessions"
)

func TestGroupZScores(t *testing.T) {
	t.Run("PairwiseAverageNotTrueMean", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 1,
				Measurements: []*sessions.Measurement{
					{Band: sessions.BandDelta, ZScore: 2.0},
					{Band: sessions.BandDelta, ZScore: 4.0},
					{Band: sessions.BandDelta, ZScore: 6.0},
				},
			},
		}

		result := GroupZScores(input)

		require.Len(t, result, 1)
		// (((2+4)/2)+6)/2 = 4.5, the true mean would be 4.0
		assert.InDelta(t, 4.5, result[0].Values[sessions.BandDelta], 1e-9)
	})

	t.Run("SingleMeasurementPassesThrough", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 3,
				Measurements: []*sessions.Measurement{
					{Band: sessions.BandAlpha, ZScore: -1.25},
				},
			},
		}

		result := GroupZScores(input)

		require.Len(t, result, 1)
		assert.Equal(t, "Session 3", result[0].Label)
		assert.InDelta(t, -1.25, result[0].Values[sessions.BandAlpha], 1e-9)
	})

	t.Run("SessionsOrderedByNumber", func(t *testing.T) {
		input := []*sessions.Session{
			{SessionNumber: 9},
			{SessionNumber: 2},
			{SessionNumber: 5},
		}

		result := GroupZScores(input)

		require.Len(t, result, 3)
		assert.Equal(t, 2, result[0].SessionNumber)
		assert.Equal(t, 5, result[1].SessionNumber)
		assert.Equal(t, 9, result[2].SessionNumber)
	})

	t.Run("EmptySessionYieldsEmptyValues", func(t *testing.T) {
		input := []*sessions.Session{
			{SessionNumber: 1},
		}

		result := GroupZScores(input)

		require.Len(t, result, 1)
		assert.Empty(t, result[0].Values)
	})
}

func TestStackFrequencies(t *testing.T) {
	t.Run("SameBandFrequenciesSum", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 1,
				Measurements: []*sessions.Measurement{
					{Band: sessions.BandTheta, Frequency: 4.5},
					{Band: sessions.BandTheta, Frequency: 2.5},
					{Band: sessions.BandBeta, Frequency: 3.0},
				},
			},
		}

		result := StackFrequencies(input)

		require.Len(t, result, 1)
		assert.InDelta(t, 7.0, result[0].Values[sessions.BandTheta], 1e-9)
		assert.InDelta(t, 3.0, result[0].Values[sessions.BandBeta], 1e-9)
	})
}

func TestBandProportions(t *testing.T) {
	t.Run("SharesOfGrandTotal", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 1,
				Measurements: []*sessions.Measurement{
					{Band: sessions.BandDelta, Frequency: 30},
					{Band: sessions.BandAlpha, Frequency: 50},
				},
			},
			{
				SessionNumber: 2,
				Measurements: []*sessions.Measurement{
					{Band: sessions.BandDelta, Frequency: 20},
				},
			},
		}

		result, err := BandProportions(input)
		require.NoError(t, err)

		require.Len(t, result, 2)
		assert.Equal(t, sessions.BandDelta, result[0].Band)
		assert.InDelta(t, 50.0, result[0].Percent, 1e-9)
		assert.Equal(t, sessions.BandAlpha, result[1].Band)
		assert.InDelta(t, 50.0, result[1].Percent, 1e-9)
	})

	t.Run("PercentsRoundedToTwoDecimals", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 1,
				Measurements: []*sessions.Measurement{
					{Band: sessions.BandDelta, Frequency: 1},
					{Band: sessions.BandTheta, Frequency: 1},
					{Band: sessions.BandAlpha, Frequency: 1},
				},
			},
		}

		result, err := BandProportions(input)
		require.NoError(t, err)

		require.Len(t, result, 3)
		total := 0.0
		for _, share := range result {
			assert.InDelta(t, 33.33, share.Percent, 1e-9)
			total += share.Percent
		}
		// Rounding may leave the sum slightly off 100
		assert.InDelta(t, 100.0, total, 0.02)
	})

	t.Run("ZeroGrandTotalIsNoMatchingData", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 1,
				Measurements: []*sessions.Measurement{
					{Band: sessions.BandDelta, Frequency: 0},
				},
			},
		}

		_, err := BandProportions(input)
		require.Error(t, err)
		assert.True(t, IsNoMatchingData(err))
	})

	t.Run("NoMeasurementsIsNoMatchingData", func(t *testing.T) {
		_, err := BandProportions([]*sessions.Session{{SessionNumber: 1}})
		require.Error(t, err)
		assert.True(t, IsNoMatchingData(err))
	})

	t.Run("FirstEncounterOrderIsStable", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 1,
				Measurements: []*sessions.Measurement{
					{Band: sessions.BandGamma, Frequency: 1},
					{Band: sessions.BandDelta, Frequency: 1},
					{Band: sessions.BandGamma, Frequency: 1},
				},
			},
		}

		result, err := BandProportions(input)
		require.NoError(t, err)

		require.Len(t, result, 2)
		assert.Equal(t, sessions.BandGamma, result[0].Band)
		assert.Equal(t, sessions.BandDelta, result[1].Band)
	})
}

func TestZScoreTrends(t *testing.T) {
	t.Run("SparseSessionNumbersSortAscending", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 7,
				Measurements:  []*sessions.Measurement{{Band: sessions.BandDelta, ZScore: 1.0}},
			},
			{
				SessionNumber: 2,
				Measurements:  []*sessions.Measurement{{Band: sessions.BandDelta, ZScore: -1.0}},
			},
		}

		result := ZScoreTrends(input)

		require.Len(t, result, 2)
		assert.Equal(t, 2, result[0].SessionNumber)
		assert.Equal(t, "Session 2", result[0].Label)
		assert.Equal(t, 7, result[1].SessionNumber)
		assert.InDelta(t, 1.0, result[1].Values[sessions.BandDelta], 1e-9)
	})

	t.Run("DuplicateSessionNumbersFoldTogether", func(t *testing.T) {
		input := []*sessions.Session{
			{
				SessionNumber: 1,
				Measurements:  []*sessions.Measurement{{Band: sessions.BandAlpha, ZScore: 2.0}},
			},
			{
				SessionNumber: 1,
				Measurements:  []*sessions.Measurement{{Band: sessions.BandAlpha, ZScore: 4.0}},
			},
		}

		result := ZScoreTrends(input)

		require.Len(t, result, 1)
		assert.InDelta(t, 3.0, result[0].Values[sessions.BandAlpha], 1e-9)
	})
}

func TestZScoreSeverity(t *testing.T) {
	tests := []struct {
		z    float64
		want Severity
	}{
		{-2.5, SeveritySevereLow},
		{-2.0, SeverityLow},
		{-1.5, SeverityLow},
		{-1.0, SeverityNormal},
		{0.0, SeverityNormal},
		{0.99, SeverityNormal},
		{1.0, SeverityHigh},
		{1.99, SeverityHigh},
		{2.0, SeveritySevereHigh},
		{3.7, SeveritySevereHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ZScoreSeverity(tt.z), "z=%v", tt.z)
	}
}
