// Package synth renders short monophonic sound effects from a handful of
// numeric parameters.
//
// A [ClipSpec] is an ordered list of [ToneSegment] values plus a master volume
// and sample rate. [Render] evaluates every segment in order and concatenates
// the quantized 16-bit samples into a single [SampleBuffer]. Rendering is a
// pure function: identical specs always yield identical buffers.
//
// Each segment is either a fixed tone (StartHz == EndHz) or a linear sweep,
// shaped by one of a small, closed set of [Envelope] kinds.
package synth

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MrWong99/sfxgen/pkg/audio"
)

const (
	// DefaultSampleRate is used when a ClipSpec leaves SampleRate at zero.
	DefaultSampleRate = 44100

	// Channels is the only supported channel count (mono).
	Channels = 1

	// BitDepth is the only supported sample width in bits.
	BitDepth = 16
)

// ErrInvalidSpec is returned (wrapped) when a [ClipSpec] or [ToneSegment]
// violates one of its invariants. Use errors.Is to detect it.
var ErrInvalidSpec = errors.New("synth: invalid clip spec")

// SampleBuffer holds one signed 16-bit sample per mono audio frame.
type SampleBuffer []int16

// ToneSegment is one piece of a clip: a tone of fixed or linearly changing
// pitch lasting Duration seconds.
type ToneSegment struct {
	// StartHz is the instantaneous frequency at the first frame.
	StartHz float64

	// EndHz is the frequency the sweep approaches at the end of the segment.
	// Equal to StartHz for a fixed tone.
	EndHz float64

	// Duration is the segment length in seconds.
	Duration float64

	// Envelope shapes the amplitude over the segment.
	Envelope Envelope
}

// Tone returns a fixed-pitch segment.
func Tone(hz, seconds float64, env Envelope) ToneSegment {
	return ToneSegment{StartHz: hz, EndHz: hz, Duration: seconds, Envelope: env}
}

// Sweep returns a segment whose pitch moves linearly from startHz to endHz.
func Sweep(startHz, endHz, seconds float64, env Envelope) ToneSegment {
	return ToneSegment{StartHz: startHz, EndHz: endHz, Duration: seconds, Envelope: env}
}

// IsSweep reports whether the segment changes pitch over its duration.
func (s ToneSegment) IsSweep() bool {
	return s.StartHz != s.EndHz
}

// Frames returns the number of frames the segment occupies at sampleRate,
// round(sampleRate × Duration).
func (s ToneSegment) Frames(sampleRate int) int {
	return int(math.Round(float64(sampleRate) * s.Duration))
}

// validate returns one error per violated invariant, each wrapping ErrInvalidSpec.
func (s ToneSegment) validate(prefix string) []error {
	var errs []error
	if !positiveFinite(s.StartHz) {
		errs = append(errs, fmt.Errorf("%w: %s.start_hz %v must be > 0", ErrInvalidSpec, prefix, s.StartHz))
	}
	if !positiveFinite(s.EndHz) {
		errs = append(errs, fmt.Errorf("%w: %s.end_hz %v must be > 0", ErrInvalidSpec, prefix, s.EndHz))
	}
	if !positiveFinite(s.Duration) {
		errs = append(errs, fmt.Errorf("%w: %s.duration_seconds %v must be > 0", ErrInvalidSpec, prefix, s.Duration))
	}
	if !s.Envelope.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %s.envelope %q is invalid; valid values: fade_out, swell", ErrInvalidSpec, prefix, s.Envelope))
	}
	return errs
}

// ClipSpec fully determines one output clip. Treat it as immutable once built.
type ClipSpec struct {
	// Segments are rendered in order and concatenated. Must not be empty.
	Segments []ToneSegment

	// Volume is the master gain in (0, 1].
	Volume float64

	// SampleRate in Hz. Zero selects DefaultSampleRate.
	SampleRate int
}

// Rate returns the effective sample rate, applying the default.
func (c ClipSpec) Rate() int {
	if c.SampleRate == 0 {
		return DefaultSampleRate
	}
	return c.SampleRate
}

// Format returns the container format a rendered clip is written with.
func (c ClipSpec) Format() audio.Format {
	return audio.Format{SampleRate: c.Rate(), Channels: Channels, BitDepth: BitDepth}
}

// Duration returns the nominal clip length as the sum of segment durations.
func (c ClipSpec) Duration() time.Duration {
	var total float64
	for _, seg := range c.Segments {
		total += seg.Duration
	}
	return time.Duration(math.Round(total * float64(time.Second)))
}

// Validate checks every invariant of c and returns a joined error listing
// all violations. Every joined error wraps ErrInvalidSpec.
func (c ClipSpec) Validate() error {
	var errs []error
	if len(c.Segments) == 0 {
		errs = append(errs, fmt.Errorf("%w: segments must not be empty", ErrInvalidSpec))
	}
	if !(c.Volume > 0 && c.Volume <= 1) {
		errs = append(errs, fmt.Errorf("%w: volume %v is out of range (0, 1]", ErrInvalidSpec, c.Volume))
	}
	if c.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("%w: sample_rate_hz %d must be > 0", ErrInvalidSpec, c.SampleRate))
	}
	for i, seg := range c.Segments {
		errs = append(errs, seg.validate(fmt.Sprintf("segments[%d]", i))...)
	}
	if len(errs) == 0 {
		errs = append(errs, c.validateLength()...)
	}
	return errors.Join(errs...)
}

// validateLength rejects clips too long to index or to fit in one file.
// Frame counts are summed as floats so oversized segments cannot wrap.
func (c ClipSpec) validateLength() []error {
	limit := float64(c.Format().MaxFrames())
	var (
		errs  []error
		total float64
	)
	for i, seg := range c.Segments {
		n := math.Round(float64(c.Rate()) * seg.Duration)
		if n > limit {
			errs = append(errs, fmt.Errorf("%w: segments[%d].duration_seconds %v is too long (%.0f frames, at most %.0f)", ErrInvalidSpec, i, seg.Duration, n, limit))
		}
		total += n
	}
	if len(errs) == 0 && total > limit {
		errs = append(errs, fmt.Errorf("%w: clip is too long (%.0f frames, at most %.0f)", ErrInvalidSpec, total, limit))
	}
	return errs
}

// FrameCount returns the number of frames Render would produce for c,
// without rendering. It does not validate c.
func FrameCount(c ClipSpec) int {
	rate := c.Rate()
	n := 0
	for _, seg := range c.Segments {
		n += seg.Frames(rate)
	}
	return n
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
