package analytics

import (
	"github.com/neurova/neurova/internal/sessions"
)

// BandSelection narrows measurements to a chosen set of bands. A nil
// selection means the criterion is inactive and passes everything through;
// a non-nil empty selection is an explicit "select nothing" and yields a
// NoMatchingDataError. The two states are deliberately distinct: an inactive
// filter and an active filter naming every band behave the same today, but
// only the former keeps passing bands that appear in future data.
type BandSelection map[sessions.Band]struct{}

// SelectBands builds an active band selection.
func SelectBands(bands ...sessions.Band) BandSelection {
	sel := make(BandSelection, len(bands))
	for _, b := range bands {
		sel[b] = struct{}{}
	}
	return sel
}

// LobeSelection narrows measurements by anatomical lobe. Same nil/empty
// semantics as BandSelection. LobeUnknown is selectable like any other
// value, so "measurements without a lobe" is an expressible criterion.
type LobeSelection map[sessions.Lobe]struct{}

// SelectLobes builds an active lobe selection.
func SelectLobes(lobes ...sessions.Lobe) LobeSelection {
	sel := make(LobeSelection, len(lobes))
	for _, l := range lobes {
		sel[l] = struct{}{}
	}
	return sel
}

// SessionRange keeps sessions whose number lies within [Start, End]. A nil
// bound is open on that side.
type SessionRange struct {
	Start *int
	End   *int
}

func (r *SessionRange) contains(sessionNumber int) bool {
	if r.Start != nil && sessionNumber < *r.Start {
		return false
	}
	if r.End != nil && sessionNumber > *r.End {
		return false
	}
	return true
}

// Filter is a set of independently composable criteria over loaded
// sessions. The zero value is fully inactive and acts as the identity.
type Filter struct {
	Range *SessionRange
	Bands BandSelection
	Lobes LobeSelection
}

// Apply produces a reduced view of the input. The input is treated as an
// immutable snapshot: sessions whose measurement lists shrink are shallow
// copies, never mutations. Filtering measurements never removes a session;
// a session left with zero measurements stays in the output so downstream
// aggregation can represent "no data under current filters" explicitly.
func (f Filter) Apply(input []*sessions.Session) ([]*sessions.Session, error) {
	if f.Bands != nil && len(f.Bands) == 0 {
		return nil, NewNoMatchingDataError("band filter is active but selects no bands")
	}
	if f.Lobes != nil && len(f.Lobes) == 0 {
		return nil, NewNoMatchingDataError("lobe filter is active but selects no lobes")
	}

	result := make([]*sessions.Session, 0, len(input))
	for _, session := range input {
		if f.Range != nil && !f.Range.contains(session.SessionNumber) {
			continue
		}

		if f.Bands == nil && f.Lobes == nil {
			result = append(result, session)
			continue
		}

		filtered := *session
		filtered.Measurements = make([]*sessions.Measurement, 0, len(session.Measurements))
		for _, m := range session.Measurements {
			if f.Bands != nil {
				if _, ok := f.Bands[m.Band]; !ok {
					continue
				}
			}
			if f.Lobes != nil {
				if _, ok := f.Lobes[m.LobeOrUnknown()]; !ok {
					continue
				}
			}
			filtered.Measurements = append(filtered.Measurements, m)
		}
		result = append(result, &filtered)
	}

	return result, nil
}
