package analytics

import (
	"github.com/neurova/neurova/internal/sessions"
)

// BandZScoreMean is one bar of the per-session z-score summary. Mean here is
// the true arithmetic mean (sum over count), unlike the multi-session charts
// which fold pairwise. The two must not be unified; they are different
// statistics and both are rendered.
type BandZScoreMean struct {
	Band     sessions.Band `json:"name"`
	Mean     float64       `json:"value"`
	Severity Severity      `json:"severity"`
}

// BandFrequencyTotal is one spoke of the per-session frequency summary.
type BandFrequencyTotal struct {
	Band  sessions.Band `json:"name"`
	Total float64       `json:"value"`
}

// LobeCount is one slice of the per-session lobe distribution. Measurements
// without a lobe count under LobeUnknown.
type LobeCount struct {
	Lobe  sessions.Lobe `json:"name"`
	Count int           `json:"value"`
}

// SessionSummary is the single-session detail view: mean z-score and total
// frequency per band, plus how measurements distribute across lobes. Bands
// and lobes keep first-encounter order.
type SessionSummary struct {
	SessionNumber   int                   `json:"session_number"`
	ZScoreMeans     []*BandZScoreMean     `json:"z_score_means"`
	FrequencyTotals []*BandFrequencyTotal `json:"frequency_totals"`
	LobeCounts      []*LobeCount          `json:"lobe_counts"`
}

// SummarizeSession computes the summary for one session.
func SummarizeSession(session *sessions.Session) *SessionSummary {
	type zAcc struct {
		sum   float64
		count int
	}
	zByBand := make(map[sessions.Band]*zAcc)
	freqByBand := make(map[sessions.Band]float64)
	countByLobe := make(map[sessions.Lobe]int)
	var bandOrder []sessions.Band
	var lobeOrder []sessions.Lobe

	for _, m := range session.Measurements {
		acc, ok := zByBand[m.Band]
		if !ok {
			acc = &zAcc{}
			zByBand[m.Band] = acc
			bandOrder = append(bandOrder, m.Band)
		}
		acc.sum += m.ZScore
		acc.count++
		freqByBand[m.Band] += m.Frequency

		lobe := m.LobeOrUnknown()
		if _, ok := countByLobe[lobe]; !ok {
			lobeOrder = append(lobeOrder, lobe)
		}
		countByLobe[lobe]++
	}

	summary := &SessionSummary{
		SessionNumber:   session.SessionNumber,
		ZScoreMeans:     make([]*BandZScoreMean, len(bandOrder)),
		FrequencyTotals: make([]*BandFrequencyTotal, len(bandOrder)),
		LobeCounts:      make([]*LobeCount, len(lobeOrder)),
	}
	for i, band := range bandOrder {
		mean := zByBand[band].sum / float64(zByBand[band].count)
		summary.ZScoreMeans[i] = &BandZScoreMean{
			Band:     band,
			Mean:     mean,
			Severity: ZScoreSeverity(mean),
		}
		summary.FrequencyTotals[i] = &BandFrequencyTotal{
			Band:  band,
			Total: freqByBand[band],
		}
	}
	for i, lobe := range lobeOrder {
		summary.LobeCounts[i] = &LobeCount{
			Lobe:  lobe,
			Count: countByLobe[lobe],
		}
	}
	return summary
}

// Severity is the presentation bucket for a z-score. Bucketing is display
// metadata only and never feeds back into aggregation.
type Severity string

const (
	SeveritySevereLow  Severity = "severe-low"
	SeverityLow        Severity = "low"
	SeverityNormal     Severity = "normal"
	SeverityHigh       Severity = "high"
	SeveritySevereHigh Severity = "severe-high"
)

// ZScoreSeverity buckets a z-score. Boundaries are inclusive on the upper
// side of each range: -2 is low, -1 is normal, 1 is high, 2 is severe-high.
func ZScoreSeverity(z float64) Severity {
	switch {
	case z < -2:
		return SeveritySevereLow
	case z < -1:
		return SeverityLow
	case z < 1:
		return SeverityNormal
	case z < 2:
		return SeverityHigh
	default:
		return SeveritySevereHigh
	}
}
