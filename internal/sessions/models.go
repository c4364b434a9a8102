package sessions

import (
	"time"
)

// Band is one of the fixed set of brainwave frequency bands a measurement
// can be recorded against.
type Band string

const (
	BandDelta  Band = "delta"
	BandTheta  Band = "theta"
	BandAlpha  Band = "alpha"
	BandIoBeta Band = "ioBeta"
	BandBeta   Band = "beta"
	BandHiBeta Band = "hiBeta"
	BandGamma  Band = "gamma"
	BandAlpha1 Band = "alpha1"
	BandAlpha2 Band = "alpha2"
)

// AllBands lists every known band in canonical order.
var AllBands = []Band{
	BandDelta,
	BandTheta,
	BandAlpha,
	BandIoBeta,
	BandBeta,
	BandHiBeta,
	BandGamma,
	BandAlpha1,
	BandAlpha2,
}

// Valid reports whether b is a member of the closed band set.
func (b Band) Valid() bool {
	for _, known := range AllBands {
		if b == known {
			return true
		}
	}
	return false
}

// Lobe is an anatomical brain-lobe label.
type Lobe string

const (
	LobeFrontal   Lobe = "Frontal"
	LobeParietal  Lobe = "Parietal"
	LobeTemporal  Lobe = "Temporal"
	LobeOccipital Lobe = "Occipital"

	// LobeUnknown stands in for measurements without an anatomical label.
	// It is a real, filterable value, not an error state.
	LobeUnknown Lobe = "Unknown"
)

// AllLobes lists the four anatomical lobes (the Unknown sentinel excluded).
var AllLobes = []Lobe{LobeFrontal, LobeParietal, LobeTemporal, LobeOccipital}

// Brodmann area bounds for measurement validation.
const (
	MinBrodmannArea = 1
	MaxBrodmannArea = 52
)

// Measurement is a single brainwave-band reading within a session.
type Measurement struct {
	ID                       int64    `json:"id"`
	Band                     Band     `json:"brainwave_band"`
	ZScore                   float64  `json:"z_score"`
	Frequency                float64  `json:"frequency"`
	Lobe                     *Lobe    `json:"lobe,omitempty"`
	Region                   *string  `json:"region,omitempty"`
	BrodmannArea             int      `json:"brodmann_area"`
	Functions                *string  `json:"functions,omitempty"`
	PossibleSymptomsOfDefect *string  `json:"possible_symptoms_of_defect,omitempty"`
	SessionID                int64    `json:"session_id"`
}

// LobeOrUnknown returns the measurement's lobe, substituting the Unknown
// sentinel when the field is absent.
func (m *Measurement) LobeOrUnknown() Lobe {
	if m.Lobe == nil || *m.Lobe == "" {
		return LobeUnknown
	}
	return *m.Lobe
}

// Session is one recording session for one user, identified user-facing by
// its user-scoped session number.
type Session struct {
	ID            int64          `json:"id"`
	SessionNumber int            `json:"session_number"`
	UserID        string         `json:"user_id"`
	CreatedAt     time.Time      `json:"created_at"`
	Measurements  []*Measurement `json:"measurements"`
}

// MeasurementInput carries one band reading as submitted by a client.
// Numeric fields are pointers so missing values are distinguishable from
// zero during validation.
type MeasurementInput struct {
	Band                     string   `json:"brainwave_band"`
	ZScore                   *float64 `json:"z_score"`
	Frequency                *float64 `json:"frequency"`
	Lobe                     *string  `json:"lobe,omitempty"`
	Region                   *string  `json:"region,omitempty"`
	BrodmannArea             *int     `json:"brodmann_area"`
	Functions                *string  `json:"functions,omitempty"`
	PossibleSymptomsOfDefect *string  `json:"possible_symptoms_of_defect,omitempty"`
}

// valid reports whether the input satisfies the measurement constraints:
// z-score, frequency and Brodmann area present and numeric, frequency
// non-negative, Brodmann area within [1, 52], band in the closed set.
func (in *MeasurementInput) valid() bool {
	if !Band(in.Band).Valid() {
		return false
	}
	if in.ZScore == nil || in.Frequency == nil || in.BrodmannArea == nil {
		return false
	}
	if *in.Frequency < 0 {
		return false
	}
	if *in.BrodmannArea < MinBrodmannArea || *in.BrodmannArea > MaxBrodmannArea {
		return false
	}
	return true
}

// CreateSessionDataRequest represents a request to submit one session's
// measurement batch. Resubmitting an existing (user, session number) pair
// replaces the prior batch entirely.
type CreateSessionDataRequest struct {
	UserID        string              `json:"user_id"`
	SessionNumber int                 `json:"session_number"`
	Bands         []*MeasurementInput `json:"bands"`
}

// Validate checks the request against the measurement constraints. Every
// offending band is reported by name so callers can enumerate them.
func (r *CreateSessionDataRequest) Validate() error {
	if r.UserID == "" {
		return NewValidationError("user_id", "user_id is required")
	}
	if r.SessionNumber <= 0 {
		return NewValidationError("session_number", "session_number must be a positive integer")
	}
	if len(r.Bands) == 0 {
		return NewValidationError("bands", "at least one band measurement is required")
	}

	var invalid []string
	for _, in := range r.Bands {
		if !in.valid() {
			name := in.Band
			if name == "" {
				name = "(unnamed)"
			}
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return NewMeasurementValidationError(invalid)
	}
	return nil
}

// DeleteSessionDataRequest represents a request to delete one session and,
// by cascade, all of its measurements.
type DeleteSessionDataRequest struct {
	UserID        string `json:"user_id"`
	SessionNumber int    `json:"session_number"`
}

// DeleteAllDataRequest represents a request to delete every session a user
// owns.
type DeleteAllDataRequest struct {
	UserID string `json:"user_id"`
}
