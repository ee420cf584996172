// Package config provides the manifest schema, loader, and built-in clip
// catalog for sfxgen.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/MrWong99/sfxgen/pkg/synth"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// ErrUnsupportedVersion is returned by [Config.CheckVersion] when the running
// sfxgen does not satisfy the manifest's version constraint.
var ErrUnsupportedVersion = errors.New("config: unsupported sfxgen version")

// DefaultOutputDir is where clips are written when the manifest does not say.
const DefaultOutputDir = "assets"

// Config is the root manifest structure. It is typically loaded from a YAML
// file using [Load] or [LoadFromReader], or taken from [Default].
type Config struct {
	// Requires is an optional semantic version constraint (e.g. ">= 0.2")
	// the running sfxgen must satisfy. See [Config.CheckVersion].
	Requires string `yaml:"requires"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// OutputDir is the directory clip files are written to. Clip file names
	// are resolved relative to it.
	OutputDir string `yaml:"output_dir"`

	// SampleRate is the default sample rate in Hz for clips that do not set
	// their own. Zero selects 44100.
	SampleRate int `yaml:"sample_rate"`

	// Workers bounds how many clips are generated concurrently.
	// Zero uses one worker per available CPU.
	Workers int `yaml:"workers"`

	// MetricsFile, when set, receives the run's metrics in Prometheus text
	// format after generation finishes.
	MetricsFile string `yaml:"metrics_file"`

	// Clips lists every clip the manifest defines, in output order.
	Clips []ClipConfig `yaml:"clips"`
}

// ClipConfig describes one named clip. Exactly one of Segments or Melody
// must be set.
type ClipConfig struct {
	// Name identifies the clip on the command line and in logs.
	Name string `yaml:"name"`

	// Description is free text shown by "sfxgen list".
	Description string `yaml:"description"`

	// File is the output file name relative to the output directory.
	// Defaults to "<name>.wav".
	File string `yaml:"file"`

	// Volume is the master gain in (0, 1].
	Volume float64 `yaml:"volume"`

	// SampleRate overrides the manifest-wide sample rate for this clip.
	SampleRate int `yaml:"sample_rate"`

	// Segments are rendered in order.
	Segments []SegmentConfig `yaml:"segments"`

	// Melody is shorthand for a run of fixed tones sharing one duration and
	// envelope.
	Melody *MelodyConfig `yaml:"melody"`
}

// SegmentConfig is the YAML form of a [synth.ToneSegment]. Set either Hz for
// a fixed tone or StartHz and EndHz for a sweep.
type SegmentConfig struct {
	Hz       float64        `yaml:"hz"`
	StartHz  float64        `yaml:"start_hz"`
	EndHz    float64        `yaml:"end_hz"`
	Duration float64        `yaml:"duration"`
	Envelope synth.Envelope `yaml:"envelope"` // default fade_out
}

// MelodyConfig expands to one fixed-tone segment per entry in Tones.
type MelodyConfig struct {
	Tones    []float64      `yaml:"tones"`
	Duration float64        `yaml:"duration"`
	Envelope synth.Envelope `yaml:"envelope"` // default swell
}

// FileName returns the clip's output file name, applying the default.
func (c ClipConfig) FileName() string {
	if c.File != "" {
		return c.File
	}
	return c.Name + ".wav"
}

// Spec expands c into a [synth.ClipSpec]. defaultRate is used when the clip
// sets no sample rate of its own. The returned spec has been validated.
func (c ClipConfig) Spec(defaultRate int) (synth.ClipSpec, error) {
	spec := synth.ClipSpec{
		Volume:     c.Volume,
		SampleRate: defaultRate,
	}
	if c.SampleRate != 0 {
		spec.SampleRate = c.SampleRate
	}

	switch {
	case c.Melody != nil && len(c.Segments) > 0:
		return synth.ClipSpec{}, fmt.Errorf("%w: segments and melody are mutually exclusive", synth.ErrInvalidSpec)
	case c.Melody != nil:
		env := c.Melody.Envelope
		if env == "" {
			env = synth.EnvelopeHalfSineSwell
		}
		for _, hz := range c.Melody.Tones {
			spec.Segments = append(spec.Segments, synth.Tone(hz, c.Melody.Duration, env))
		}
	default:
		for i, seg := range c.Segments {
			ts, err := seg.toneSegment()
			if err != nil {
				return synth.ClipSpec{}, fmt.Errorf("segments[%d]: %w", i, err)
			}
			spec.Segments = append(spec.Segments, ts)
		}
	}

	if err := spec.Validate(); err != nil {
		return synth.ClipSpec{}, err
	}
	return spec, nil
}

func (s SegmentConfig) toneSegment() (synth.ToneSegment, error) {
	env := s.Envelope
	if env == "" {
		env = synth.EnvelopeLinearFadeOut
	}
	if s.Hz != 0 {
		if s.StartHz != 0 || s.EndHz != 0 {
			return synth.ToneSegment{}, fmt.Errorf("%w: hz cannot be combined with start_hz/end_hz", synth.ErrInvalidSpec)
		}
		return synth.Tone(s.Hz, s.Duration, env), nil
	}
	return synth.Sweep(s.StartHz, s.EndHz, s.Duration, env), nil
}

// CheckVersion reports an error wrapping [ErrUnsupportedVersion] when version
// does not satisfy the manifest's Requires constraint. An empty constraint
// accepts every version; development builds that are not valid semantic
// versions are always accepted.
func (cfg *Config) CheckVersion(version string) error {
	if cfg.Requires == "" {
		return nil
	}
	c, err := semver.NewConstraint(cfg.Requires)
	if err != nil {
		return fmt.Errorf("config: requires %q: %w", cfg.Requires, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: manifest requires %s, running %s", ErrUnsupportedVersion, cfg.Requires, version)
	}
	return nil
}

// OutputPath returns the destination path for clip c.
func (cfg *Config) OutputPath(c ClipConfig) string {
	dir := cfg.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	return filepath.Join(dir, c.FileName())
}
