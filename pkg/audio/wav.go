package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the size of the canonical RIFF/WAVE header written by this
// package.
const HeaderSize = 44

// header builds the 44-byte RIFF/WAVE header for frames frames of format f.
func header(frames int, f Format) []byte {
	dataSize := frames * f.BlockAlign()

	buf := make([]byte, HeaderSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize)) // file size − 8
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)                     // sub-chunk size (PCM)
	binary.LittleEndian.PutUint16(buf[20:22], 1)                      // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(f.Channels))     // num channels
	binary.LittleEndian.PutUint32(buf[24:28], uint32(f.SampleRate))   // sample rate
	binary.LittleEndian.PutUint32(buf[28:32], uint32(f.ByteRate()))   // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], uint16(f.BlockAlign())) // block align
	binary.LittleEndian.PutUint16(buf[34:36], uint16(f.BitDepth))     // bits per sample

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return buf
}

// Encode returns the complete WAV file for samples in format f: the 44-byte
// header followed by each sample as two little-endian bytes.
func Encode(samples []int16, f Format) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := f.ValidateFrames(int64(len(samples))); err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(samples)*2)
	copy(buf, header(len(samples), f))
	putSamples(buf[HeaderSize:], samples)
	return buf, nil
}

// WriteTo streams the WAV encoding of samples to w in fixed-size chunks and
// returns the number of bytes written. Write failures wrap [ErrIO].
func WriteTo(w io.Writer, samples []int16, f Format) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	if err := f.ValidateFrames(int64(len(samples))); err != nil {
		return 0, err
	}
	n, err := w.Write(header(len(samples), f))
	written := int64(n)
	if err != nil {
		return written, fmt.Errorf("%w: write header: %w", ErrIO, err)
	}

	const chunkFrames = 4096
	buf := make([]byte, min(len(samples), chunkFrames)*2)
	for i := 0; i < len(samples); i += chunkFrames {
		end := min(i+chunkFrames, len(samples))
		chunk := buf[:(end-i)*2]
		putSamples(chunk, samples[i:end])
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("%w: write samples: %w", ErrIO, err)
		}
	}
	return written, nil
}

// putSamples writes samples into dst as little-endian int16. dst must hold
// at least 2*len(samples) bytes.
func putSamples(dst []byte, samples []int16) {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
}
