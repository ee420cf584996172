package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/sfxgen/internal/config"
	"github.com/MrWong99/sfxgen/pkg/synth"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantMsg []string
	}{
		{
			name:    "invalid log level",
			yaml:    "log_level: verbose\n",
			wantMsg: []string{"log_level"},
		},
		{
			name:    "invalid version constraint",
			yaml:    "requires: \">= banana\"\n",
			wantMsg: []string{"requires"},
		},
		{
			name:    "negative workers and sample rate",
			yaml:    "workers: -1\nsample_rate: -8000\n",
			wantMsg: []string{"workers", "sample_rate"},
		},
		{
			name: "missing name",
			yaml: `
clips:
  - file: a.wav
    volume: 0.3
    segments: [{hz: 440, duration: 0.1}]
`,
			wantMsg: []string{"clips[0].name is required"},
		},
		{
			name: "duplicate names",
			yaml: `
clips:
  - name: beep
    volume: 0.3
    segments: [{hz: 440, duration: 0.1}]
  - name: beep
    file: beep2.wav
    volume: 0.3
    segments: [{hz: 880, duration: 0.1}]
`,
			wantMsg: []string{"duplicate"},
		},
		{
			name: "duplicate files",
			yaml: `
clips:
  - name: beep
    volume: 0.3
    segments: [{hz: 440, duration: 0.1}]
  - name: boop
    file: ./beep.wav
    volume: 0.3
    segments: [{hz: 880, duration: 0.1}]
`,
			wantMsg: []string{"also written by clips[0]"},
		},
		{
			name: "file escapes output dir",
			yaml: `
clips:
  - name: beep
    file: ../beep.wav
    volume: 0.3
    segments: [{hz: 440, duration: 0.1}]
`,
			wantMsg: []string{"relative path"},
		},
		{
			name: "segments and melody",
			yaml: `
clips:
  - name: beep
    volume: 0.3
    segments: [{hz: 440, duration: 0.1}]
    melody: {tones: [440], duration: 0.1}
`,
			wantMsg: []string{"mutually exclusive"},
		},
		{
			name: "hz combined with sweep",
			yaml: `
clips:
  - name: beep
    volume: 0.3
    segments: [{hz: 440, start_hz: 440, end_hz: 880, duration: 0.1}]
`,
			wantMsg: []string{"segments[0]", "cannot be combined"},
		},
		{
			name: "invalid clip values",
			yaml: `
clips:
  - name: beep
    volume: 1.5
    segments: [{hz: 440, duration: 0, envelope: ramp}]
`,
			wantMsg: []string{"clips[0] (beep)", "volume", "duration_seconds", "envelope"},
		},
		{
			name: "empty melody",
			yaml: `
clips:
  - name: beep
    volume: 0.3
    melody: {tones: [], duration: 0.1}
`,
			wantMsg: []string{"segments must not be empty"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			for _, want := range tc.wantMsg {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error should mention %q, got: %v", want, err)
				}
			}
		})
	}
}

func TestValidate_ClipErrorsWrapInvalidSpec(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Clips[1].Volume = 0

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected error for zero volume, got nil")
	}
	if !errors.Is(err, synth.ErrInvalidSpec) {
		t.Errorf("error should wrap synth.ErrInvalidSpec, got: %v", err)
	}
	if !strings.Contains(err.Error(), "clips[1] (fail)") {
		t.Errorf("error should identify the clip, got: %v", err)
	}
}
