package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Info describes a WAV file read back from disk.
type Info struct {
	Format Format

	// Frames is the number of decoded sample frames.
	Frames int

	// DataSize is the byte length declared by the "data" chunk header.
	DataSize int

	// RIFFSize is the value of the RIFF size field (file size − 8).
	RIFFSize int

	// Peak is the largest absolute sample value at the file's own bit depth.
	Peak int

	// Samples holds the decoded samples of a 16-bit file. Multi-channel files
	// are returned interleaved as stored. Nil for other bit depths.
	Samples []int16
}

// Duration returns the playback length implied by Frames and the sample rate.
func (i Info) Duration() time.Duration {
	if i.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(i.Frames) * time.Second / time.Duration(i.Format.SampleRate)
}

// ReadInfo opens the WAV file at path and decodes its format and samples.
// It accepts any PCM WAV the decoder understands, not just the layout this
// package writes, so it can be used to inspect externally produced files.
// Only 16-bit files yield Samples; the rest report format, size and peak.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: open %q: %w", ErrIO, path, err)
	}
	defer f.Close()

	var riff [8]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return Info{}, fmt.Errorf("audio: %q is not a WAV file: %w", path, err)
	}
	if string(riff[0:4]) != "RIFF" {
		return Info{}, fmt.Errorf("audio: %q is missing the RIFF header", path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("%w: seek %q: %w", ErrIO, path, err)
	}

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return Info{}, fmt.Errorf("audio: read header of %q: %w", path, err)
	}
	if dec.WavAudioFormat != 1 {
		return Info{}, fmt.Errorf("%w: %q uses audio format %d, not PCM", ErrInvalidFormat, path, dec.WavAudioFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return Info{}, fmt.Errorf("audio: decode samples of %q: %w", path, err)
	}

	info := Info{
		Format: Format{
			SampleRate: int(dec.SampleRate),
			Channels:   int(dec.NumChans),
			BitDepth:   int(dec.BitDepth),
		},
		DataSize: dec.PCMSize,
		RIFFSize: int(binary.LittleEndian.Uint32(riff[4:8])),
	}
	if info.Format.Channels > 0 {
		info.Frames = len(pcm.Data) / info.Format.Channels
	}
	if info.Format.BitDepth == 16 {
		info.Samples = make([]int16, len(pcm.Data))
	}
	for i, v := range pcm.Data {
		if info.Samples != nil {
			info.Samples[i] = int16(v)
		}
		if v < 0 {
			v = -v
		}
		info.Peak = max(info.Peak, v)
	}
	return info, nil
}
