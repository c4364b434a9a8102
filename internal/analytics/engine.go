package analytics

import (
	"context"
	"fmt"

	"github.com/neurova/neurova/internal/sessions"
)

// Engine runs the load, filter, aggregate pipeline for the dashboard series.
// It is stateless between calls; every series is recomputed from a fresh
// load so concurrent callers never share mutable state.
type Engine struct {
	loader Loader
}

// NewEngine creates an aggregation engine on top of a session loader.
func NewEngine(loader Loader) *Engine {
	return &Engine{
		loader: loader,
	}
}

func (e *Engine) loadFiltered(ctx context.Context, userID string, filter Filter) ([]*sessions.Session, error) {
	loaded, err := e.loader.LoadSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(loaded)
}

// GroupedZScores returns the grouped bar series: per session, the pairwise
// averaged z-score of each band under the given filter.
func (e *Engine) GroupedZScores(ctx context.Context, userID string, filter Filter) ([]*SessionBandSeries, error) {
	filtered, err := e.loadFiltered(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return GroupZScores(filtered), nil
}

// StackedFrequencies returns the stacked bar series: per session, the summed
// frequency of each band under the given filter.
func (e *Engine) StackedFrequencies(ctx context.Context, userID string, filter Filter) ([]*SessionBandSeries, error) {
	filtered, err := e.loadFiltered(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return StackFrequencies(filtered), nil
}

// Proportions returns the pie series: each band's share of the total
// frequency mass under the given filter.
func (e *Engine) Proportions(ctx context.Context, userID string, filter Filter) ([]*BandShare, error) {
	filtered, err := e.loadFiltered(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return BandProportions(filtered)
}

// Trends returns the line series: z-scores keyed by session number under the
// given filter, ascending.
func (e *Engine) Trends(ctx context.Context, userID string, filter Filter) ([]*SessionBandSeries, error) {
	filtered, err := e.loadFiltered(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return ZScoreTrends(filtered), nil
}

// SessionSummary returns the single-session detail summary. Filters do not
// apply here; the summary always describes the full measurement batch of the
// requested session. An unknown session number is a reportable no-data state.
func (e *Engine) SessionSummary(ctx context.Context, userID string, sessionNumber int) (*SessionSummary, error) {
	loaded, err := e.loader.LoadSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, session := range loaded {
		if session.SessionNumber == sessionNumber {
			return SummarizeSession(session), nil
		}
	}
	return nil, NewNoMatchingDataError(fmt.Sprintf("no session with number %d", sessionNumber))
}
