package audio_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/MrWong99/sfxgen/pkg/audio"
)

func TestEncode_Header(t *testing.T) {
	t.Parallel()
	samples := []int16{0, 1, -1, 32767, -32768, 0x1234}
	wav, err := audio.Encode(samples, audio.Mono16(44100))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(wav) != audio.HeaderSize+len(samples)*2 {
		t.Fatalf("length: got %d, want %d", len(wav), audio.HeaderSize+len(samples)*2)
	}

	le := binary.LittleEndian
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"RIFF id", string(wav[0:4]), "RIFF"},
		{"RIFF size", le.Uint32(wav[4:8]), uint32(len(wav) - 8)},
		{"WAVE id", string(wav[8:12]), "WAVE"},
		{"fmt id", string(wav[12:16]), "fmt "},
		{"fmt size", le.Uint32(wav[16:20]), uint32(16)},
		{"audio format", le.Uint16(wav[20:22]), uint16(1)},
		{"channels", le.Uint16(wav[22:24]), uint16(1)},
		{"sample rate", le.Uint32(wav[24:28]), uint32(44100)},
		{"byte rate", le.Uint32(wav[28:32]), uint32(88200)},
		{"block align", le.Uint16(wav[32:34]), uint16(2)},
		{"bits per sample", le.Uint16(wav[34:36]), uint16(16)},
		{"data id", string(wav[36:40]), "data"},
		{"data size", le.Uint32(wav[40:44]), uint32(2 * len(samples))},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestEncode_SamplesLittleEndian(t *testing.T) {
	t.Parallel()
	wav, err := audio.Encode([]int16{0x1234, -2}, audio.Mono16(8000))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{0x34, 0x12, 0xFE, 0xFF}
	if got := wav[audio.HeaderSize:]; !bytes.Equal(got, want) {
		t.Errorf("sample bytes: got % x, want % x", got, want)
	}
}

func TestEncode_Empty(t *testing.T) {
	t.Parallel()
	wav, err := audio.Encode(nil, audio.Mono16(44100))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(wav) != audio.HeaderSize {
		t.Fatalf("length: got %d, want %d", len(wav), audio.HeaderSize)
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != 36 {
		t.Errorf("RIFF size: got %d, want 36", got)
	}
}

func TestEncode_InvalidFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		f    audio.Format
	}{
		{"8-bit", audio.Format{SampleRate: 44100, Channels: 1, BitDepth: 8}},
		{"24-bit", audio.Format{SampleRate: 44100, Channels: 1, BitDepth: 24}},
		{"stereo", audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}},
		{"zero channels", audio.Format{SampleRate: 44100, Channels: 0, BitDepth: 16}},
		{"zero rate", audio.Format{SampleRate: 0, Channels: 1, BitDepth: 16}},
		{"negative rate", audio.Format{SampleRate: -8000, Channels: 1, BitDepth: 16}},
		{"rate overflows byte rate", audio.Format{SampleRate: 1 << 31, Channels: 1, BitDepth: 16}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := audio.Encode([]int16{1}, tc.f); !errors.Is(err, audio.ErrInvalidFormat) {
				t.Errorf("Encode: got %v, want ErrInvalidFormat", err)
			}
			var buf bytes.Buffer
			if _, err := audio.WriteTo(&buf, []int16{1}, tc.f); !errors.Is(err, audio.ErrInvalidFormat) {
				t.Errorf("WriteTo: got %v, want ErrInvalidFormat", err)
			}
			if buf.Len() != 0 {
				t.Errorf("WriteTo wrote %d bytes for an invalid format", buf.Len())
			}
		})
	}
}

func TestWriteTo_MatchesEncode(t *testing.T) {
	t.Parallel()
	// More than one write chunk.
	samples := make([]int16, 10000)
	for i := range samples {
		samples[i] = int16(i*7 - 30000)
	}
	want, err := audio.Encode(samples, audio.Mono16(22050))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var buf bytes.Buffer
	n, err := audio.WriteTo(&buf, samples, audio.Mono16(22050))
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(len(want)) {
		t.Errorf("WriteTo returned %d bytes, want %d", n, len(want))
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Error("WriteTo output differs from Encode")
	}
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func TestWriteTo_WriterError(t *testing.T) {
	t.Parallel()
	for _, after := range []int{0, 1} {
		_, err := audio.WriteTo(&failingWriter{after: after}, make([]int16, 100), audio.Mono16(44100))
		if !errors.Is(err, audio.ErrIO) {
			t.Errorf("after %d writes: got %v, want ErrIO", after, err)
		}
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()
	f := audio.Mono16(48000)
	if f.BlockAlign() != 2 {
		t.Errorf("BlockAlign: got %d, want 2", f.BlockAlign())
	}
	if f.ByteRate() != 96000 {
		t.Errorf("ByteRate: got %d, want 96000", f.ByteRate())
	}
	if got := f.String(); got != "48000Hz mono 16-bit" {
		t.Errorf("String: got %q", got)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFormat_ValidateFrames(t *testing.T) {
	t.Parallel()
	f := audio.Mono16(44100)
	// (2^32 - 1 - 36) / 2 bytes per frame.
	const limit = 2147483629
	if got := f.MaxFrames(); got != limit {
		t.Fatalf("MaxFrames: got %d, want %d", got, limit)
	}

	tests := []struct {
		name    string
		frames  int64
		wantErr bool
	}{
		{"empty", 0, false},
		{"one second", 44100, false},
		{"at limit", limit, false},
		{"past limit", limit + 1, true},
		{"past 4 GiB", 1 << 32, true},
		{"negative", -1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := f.ValidateFrames(tc.frames)
			if tc.wantErr && !errors.Is(err, audio.ErrInvalidFormat) {
				t.Errorf("got %v, want ErrInvalidFormat", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
