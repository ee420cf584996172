// Package spectrum estimates the pitch of short 16-bit PCM windows. It is used
// to sanity-check rendered clips: a fixed tone should peak at its configured
// frequency and a sweep should peak at different frequencies near its start
// and end.
package spectrum

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// DefaultWindow is the analysis window size used by [Edges].
const DefaultWindow = 2048

// ErrTooShort is returned when there are not enough samples to analyze.
var ErrTooShort = errors.New("spectrum: not enough samples")

// DominantFrequency returns the frequency in Hz of the strongest spectral
// component in samples. A Hann window is applied before the FFT and the peak
// position is refined by parabolic interpolation between neighboring bins.
func DominantFrequency(samples []int16, sampleRate int) (float64, error) {
	if len(samples) < 4 || sampleRate <= 0 {
		return 0, ErrTooShort
	}

	n := len(samples)
	frame := make([]float64, n)
	for i, s := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		frame[i] = float64(s) / 32768 * w
	}

	spec := fft.FFTReal(frame)
	mags := make([]float64, n/2)
	for i := range mags {
		mags[i] = cmplx.Abs(spec[i])
	}

	// Skip the DC bin.
	peak := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if mags[peak] == 0 {
		return 0, nil
	}

	offset := 0.0
	if peak > 0 && peak < len(mags)-1 {
		a, b, c := mags[peak-1], mags[peak], mags[peak+1]
		if den := a - 2*b + c; den != 0 {
			offset = 0.5 * (a - c) / den
		}
	}
	binHz := float64(sampleRate) / float64(n)
	return (float64(peak) + offset) * binHz, nil
}

// Window returns DominantFrequency over size samples starting at start,
// clipped to the bounds of samples.
func Window(samples []int16, sampleRate, start, size int) (float64, error) {
	start = max(0, min(start, len(samples)))
	end := min(len(samples), start+size)
	return DominantFrequency(samples[start:end], sampleRate)
}

// Edges returns the dominant frequency of the first and last analysis
// windows of samples. For clips shorter than two windows the halves are used.
func Edges(samples []int16, sampleRate int) (first, last float64, err error) {
	size := min(DefaultWindow, len(samples)/2)
	if first, err = Window(samples, sampleRate, 0, size); err != nil {
		return 0, 0, err
	}
	if last, err = Window(samples, sampleRate, len(samples)-size, size); err != nil {
		return 0, 0, err
	}
	return first, last, nil
}
