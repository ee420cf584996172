// Package audio serializes 16-bit PCM sample buffers into standard RIFF/WAVE
// files and reads them back.
//
// Only the canonical 44-byte header layout is produced: a RIFF descriptor, a
// 16-byte "fmt " chunk and a "data" chunk, with no extension or metadata
// chunks. [WriteFile] replaces the destination atomically so a reader never
// observes a truncated file.
package audio

import (
	"errors"
	"fmt"
	"math"
)

// maxDataSize is the largest data chunk the 32-bit RIFF size field can
// describe once the 36 bytes that follow it are counted.
const maxDataSize = math.MaxUint32 - (HeaderSize - 8)

var (
	// ErrInvalidFormat is returned (wrapped) for unsupported container
	// parameters: anything other than 16-bit mono at a positive sample rate.
	ErrInvalidFormat = errors.New("audio: unsupported format")

	// ErrIO is returned (wrapped) when the underlying filesystem or writer
	// fails. The original error is wrapped as well.
	ErrIO = errors.New("audio: i/o failure")
)

// Format describes the layout of the PCM data in a container.
type Format struct {
	// SampleRate in Hz (e.g., 44100).
	SampleRate int

	// Channels: only 1 (mono) is supported.
	Channels int

	// BitDepth in bits per sample: only 16 is supported.
	BitDepth int
}

// Mono16 returns the supported 16-bit mono format at sampleRate.
func Mono16(sampleRate int) Format {
	return Format{SampleRate: sampleRate, Channels: 1, BitDepth: 16}
}

// BlockAlign returns the number of bytes per frame across all channels.
func (f Format) BlockAlign() int {
	return f.Channels * (f.BitDepth / 8)
}

// ByteRate returns the number of bytes per second of audio.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

// Validate reports whether f can be written. It returns a joined error
// listing every unsupported field, each wrapping ErrInvalidFormat.
func (f Format) Validate() error {
	var errs []error
	if f.BitDepth != 16 {
		errs = append(errs, fmt.Errorf("%w: bit depth %d (only 16 is supported)", ErrInvalidFormat, f.BitDepth))
	}
	if f.Channels != 1 {
		errs = append(errs, fmt.Errorf("%w: %d channels (only mono is supported)", ErrInvalidFormat, f.Channels))
	}
	if f.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: sample rate %d must be > 0", ErrInvalidFormat, f.SampleRate))
	} else if int64(f.SampleRate)*int64(max(f.BlockAlign(), 1)) > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("%w: sample rate %d overflows the byte rate field", ErrInvalidFormat, f.SampleRate))
	}
	return errors.Join(errs...)
}

// MaxFrames returns the largest number of frames a single file in format f
// can hold. It returns 0 for formats with no whole-byte frames.
func (f Format) MaxFrames() int64 {
	if f.BlockAlign() <= 0 {
		return 0
	}
	return maxDataSize / int64(f.BlockAlign())
}

// ValidateFrames reports whether frames frames of f fit in one file.
// Oversized buffers wrap ErrInvalidFormat.
func (f Format) ValidateFrames(frames int64) error {
	if frames < 0 || frames > f.MaxFrames() {
		return fmt.Errorf("%w: %d frames exceed the %d a %s file can hold", ErrInvalidFormat, frames, f.MaxFrames(), f)
	}
	return nil
}

// String returns a human-readable description, e.g. "44100Hz mono 16-bit".
func (f Format) String() string {
	ch := "mono"
	if f.Channels == 2 {
		ch = "stereo"
	} else if f.Channels > 2 {
		ch = fmt.Sprintf("%dch", f.Channels)
	}
	return fmt.Sprintf("%dHz %s %d-bit", f.SampleRate, ch, f.BitDepth)
}
