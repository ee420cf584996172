package synth

import "math"

// Envelope selects the amplitude shape applied across a segment.
// The set is closed; see the constants below.
type Envelope string

const (
	// EnvelopeLinearFadeOut falls linearly from 1 at the first frame to 0 at
	// the end of the segment.
	EnvelopeLinearFadeOut Envelope = "fade_out"

	// EnvelopeHalfSineSwell follows sin(π·t): silent at both ends, full at the
	// midpoint.
	EnvelopeHalfSineSwell Envelope = "swell"
)

// IsValid reports whether e is a recognised envelope kind.
func (e Envelope) IsValid() bool {
	switch e {
	case EnvelopeLinearFadeOut, EnvelopeHalfSineSwell:
		return true
	}
	return false
}

// At returns the amplitude multiplier at fractional position t ∈ [0, 1].
// Unknown kinds return 0.
func (e Envelope) At(t float64) float64 {
	switch e {
	case EnvelopeLinearFadeOut:
		return 1 - t
	case EnvelopeHalfSineSwell:
		return math.Sin(math.Pi * t)
	}
	return 0
}
