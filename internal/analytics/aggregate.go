package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/neurova/neurova/internal/sessions"
)

// SessionBandSeries is one record of a grouped/stacked chart source: a
// session label plus one scalar per band present under the current filters.
type SessionBandSeries struct {
	Label         string                    `json:"session"`
	SessionNumber int                       `json:"session_number"`
	Values        map[sessions.Band]float64 `json:"values"`
}

// BandShare is one slice of the proportion (pie) series.
type BandShare struct {
	Band    sessions.Band `json:"name"`
	Percent float64       `json:"value"`
}

// sessionLabel renders the user-facing label for a session number.
func sessionLabel(sessionNumber int) string {
	return fmt.Sprintf("Session %d", sessionNumber)
}

// pairwiseAverage folds a new same-band value into the accumulator the way
// the dashboard charts always have: averaged against the accumulator so far,
// not against a running sum and count. For [2, 4, 6] the result is
// (((2+4)/2)+6)/2 = 4.5, not the true mean 4. Order-dependent on purpose;
// chart parity depends on it.
func pairwiseAverage(acc map[sessions.Band]float64, band sessions.Band, zScore float64) {
	if prev, ok := acc[band]; ok {
		acc[band] = (prev + zScore) / 2
	} else {
		acc[band] = zScore
	}
}

// GroupZScores computes the grouped bar chart source: one record per
// session, ascending by session number, mapping each band to its pairwise
// averaged z-score within that session.
func GroupZScores(input []*sessions.Session) []*SessionBandSeries {
	ordered := sortedBySessionNumber(input)

	result := make([]*SessionBandSeries, len(ordered))
	for i, session := range ordered {
		values := make(map[sessions.Band]float64)
		for _, m := range session.Measurements {
			pairwiseAverage(values, m.Band, m.ZScore)
		}
		result[i] = &SessionBandSeries{
			Label:         sessionLabel(session.SessionNumber),
			SessionNumber: session.SessionNumber,
			Values:        values,
		}
	}
	return result
}

// StackFrequencies computes the stacked bar chart source: one record per
// session, ascending by session number, mapping each band to its summed
// frequency within that session. Frequencies sum where z-scores average.
func StackFrequencies(input []*sessions.Session) []*SessionBandSeries {
	ordered := sortedBySessionNumber(input)

	result := make([]*SessionBandSeries, len(ordered))
	for i, session := range ordered {
		values := make(map[sessions.Band]float64)
		for _, m := range session.Measurements {
			values[m.Band] += m.Frequency
		}
		result[i] = &SessionBandSeries{
			Label:         sessionLabel(session.SessionNumber),
			SessionNumber: session.SessionNumber,
			Values:        values,
		}
	}
	return result
}

// BandProportions computes the pie chart source: each band's summed
// frequency as a percentage of the grand total across all filtered
// measurements, rounded half away from zero to 2 decimals. Bands keep their
// first-encounter order. A zero grand total is undefined and yields
// NoMatchingDataError instead of a division by zero.
func BandProportions(input []*sessions.Session) ([]*BandShare, error) {
	totals := make(map[sessions.Band]float64)
	var order []sessions.Band
	var grandTotal float64

	for _, session := range input {
		for _, m := range session.Measurements {
			if _, ok := totals[m.Band]; !ok {
				order = append(order, m.Band)
			}
			totals[m.Band] += m.Frequency
			grandTotal += m.Frequency
		}
	}

	if grandTotal == 0 {
		return nil, NewNoMatchingDataError("no frequency data to compute proportions from")
	}

	result := make([]*BandShare, len(order))
	for i, band := range order {
		result[i] = &BandShare{
			Band:    band,
			Percent: round2(totals[band] / grandTotal * 100),
		}
	}
	return result, nil
}

// ZScoreTrends computes the line chart source: records keyed by session
// number (not slice position, so sparse or unordered input is safe), each
// mapping bands to their pairwise averaged z-score, ascending by number.
// Sessions sharing a number fold into one record in encounter order.
func ZScoreTrends(input []*sessions.Session) []*SessionBandSeries {
	byNumber := make(map[int]map[sessions.Band]float64)
	var numbers []int

	for _, session := range input {
		values, ok := byNumber[session.SessionNumber]
		if !ok {
			values = make(map[sessions.Band]float64)
			byNumber[session.SessionNumber] = values
			numbers = append(numbers, session.SessionNumber)
		}
		for _, m := range session.Measurements {
			pairwiseAverage(values, m.Band, m.ZScore)
		}
	}

	sort.Ints(numbers)

	result := make([]*SessionBandSeries, len(numbers))
	for i, n := range numbers {
		result[i] = &SessionBandSeries{
			Label:         sessionLabel(n),
			SessionNumber: n,
			Values:        byNumber[n],
		}
	}
	return result
}

// round2 rounds to 2 decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sortedBySessionNumber returns a copy of the input ordered by ascending
// session number. The store already orders its listings, but aggregation
// must not depend on that.
func sortedBySessionNumber(input []*sessions.Session) []*sessions.Session {
	ordered := make([]*sessions.Session, len(input))
	copy(ordered, input)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SessionNumber < ordered[j].SessionNumber
	})
	return ordered
}
