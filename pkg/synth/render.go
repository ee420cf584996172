package synth

import "math"

// Render evaluates every segment of spec in order and returns the
// concatenated 16-bit samples. The spec is validated before any sample is
// computed; an invalid spec yields a nil buffer and an error wrapping
// [ErrInvalidSpec].
func Render(spec ClipSpec) (SampleBuffer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	rate := spec.Rate()
	buf := make(SampleBuffer, 0, FrameCount(spec))
	for _, seg := range spec.Segments {
		buf = appendSegment(buf, seg, spec.Volume, rate)
	}
	return buf, nil
}

// RenderSegment renders a single segment at the given volume and sample rate.
// It does not validate its arguments; use [Render] for untrusted input.
func RenderSegment(seg ToneSegment, volume float64, sampleRate int) SampleBuffer {
	return appendSegment(make(SampleBuffer, 0, seg.Frames(sampleRate)), seg, volume, sampleRate)
}

func appendSegment(buf SampleBuffer, seg ToneSegment, volume float64, sampleRate int) SampleBuffer {
	n := seg.Frames(sampleRate)
	rate := float64(sampleRate)
	span := seg.EndHz - seg.StartHz
	for i := range n {
		t := float64(i) / float64(n)
		freq := seg.StartHz + span*t
		// Phase uses absolute time within the segment, not an accumulated
		// per-sample angle.
		raw := math.Sin(2 * math.Pi * freq * (float64(i) / rate))
		buf = append(buf, Quantize(raw*volume*seg.Envelope.At(t)))
	}
	return buf
}

// Quantize maps a float amplitude to a signed 16-bit sample. The amplitude is
// clamped to [-1, 1] before scaling by 32767 and rounding, and the result is
// clamped again to the int16 range. NaN maps to 0.
func Quantize(a float64) int16 {
	if math.IsNaN(a) {
		return 0
	}
	a = max(-1, min(1, a))
	v := math.Round(a * math.MaxInt16)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
