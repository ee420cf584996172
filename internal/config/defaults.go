package config

import "github.com/MrWong99/sfxgen/pkg/synth"

// Default returns the built-in manifest: the game's four feedback sounds,
// written to [DefaultOutputDir] at 44.1 kHz.
func Default() *Config {
	return &Config{
		LogLevel:   LogInfo,
		OutputDir:  DefaultOutputDir,
		SampleRate: synth.DefaultSampleRate,
		Clips: []ClipConfig{
			{
				Name:        "success",
				Description: "High-pitched ascending ding",
				Volume:      0.3,
				Segments: []SegmentConfig{
					{StartHz: 880, EndHz: 1760, Duration: 0.15, Envelope: synth.EnvelopeLinearFadeOut},
				},
			},
			{
				Name:        "fail",
				Description: "Low descending buzz",
				Volume:      0.5,
				Segments: []SegmentConfig{
					{StartHz: 200, EndHz: 100, Duration: 0.3, Envelope: synth.EnvelopeLinearFadeOut},
				},
			},
			{
				Name:        "car_full",
				Description: "E5-A5-D6 arpeggio",
				Volume:      0.4,
				Melody: &MelodyConfig{
					Tones:    []float64{659.25, 880, 1174.66},
					Duration: 0.1,
					Envelope: synth.EnvelopeHalfSineSwell,
				},
			},
			{
				Name:        "ground_hit",
				Description: "Dull thud",
				Volume:      0.4,
				Segments: []SegmentConfig{
					{StartHz: 150, EndHz: 50, Duration: 0.2, Envelope: synth.EnvelopeLinearFadeOut},
				},
			},
		},
	}
}
