package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/antzucaro/matchr"
	"gopkg.in/yaml.v3"
)

// ErrUnknownClip is returned by [Config.Select] for clip names the manifest
// does not define.
var ErrUnknownClip = errors.New("config: unknown clip")

// suggestThreshold is the minimum Jaro-Winkler similarity for a known clip
// name to be offered as a suggestion.
const suggestThreshold = 0.75

// Load reads the YAML manifest at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML manifest from r and validates the result.
// Useful in tests where manifests are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Requires != "" {
		if _, err := semver.NewConstraint(cfg.Requires); err != nil {
			errs = append(errs, fmt.Errorf("requires %q is not a version constraint: %w", cfg.Requires, err))
		}
	}
	if cfg.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("sample_rate %d must not be negative", cfg.SampleRate))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", cfg.Workers))
	}
	if len(cfg.Clips) == 0 {
		slog.Warn("manifest defines no clips; nothing will be generated")
	}

	namesSeen := make(map[string]int, len(cfg.Clips))
	filesSeen := make(map[string]int, len(cfg.Clips))

	for i, clip := range cfg.Clips {
		prefix := fmt.Sprintf("clips[%d]", i)
		if clip.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			prefix = fmt.Sprintf("clips[%d] (%s)", i, clip.Name)
			if prev, ok := namesSeen[clip.Name]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of clips[%d]", prefix, clip.Name, prev))
			}
			namesSeen[clip.Name] = i
		}

		file := filepath.Clean(clip.FileName())
		if !filepath.IsLocal(file) {
			errs = append(errs, fmt.Errorf("%s.file %q must be a relative path inside the output directory", prefix, clip.FileName()))
		} else if prev, ok := filesSeen[file]; ok {
			errs = append(errs, fmt.Errorf("%s.file %q is also written by clips[%d]", prefix, clip.FileName(), prev))
		} else {
			filesSeen[file] = i
		}
		if !strings.EqualFold(filepath.Ext(file), ".wav") {
			slog.Warn("clip file does not use the .wav extension", "clip", clip.Name, "file", clip.FileName())
		}

		if _, err := clip.Spec(cfg.SampleRate); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}

	return errors.Join(errs...)
}

// Names returns the clip names in manifest order.
func (cfg *Config) Names() []string {
	names := make([]string, len(cfg.Clips))
	for i, c := range cfg.Clips {
		names[i] = c.Name
	}
	return names
}

// Select returns the clips with the given names in the order requested.
// An empty names list selects every clip. Unknown names yield a joined error
// wrapping [ErrUnknownClip], suggesting the closest known name where one is
// similar enough.
func (cfg *Config) Select(names []string) ([]ClipConfig, error) {
	if len(names) == 0 {
		return slices.Clone(cfg.Clips), nil
	}

	byName := make(map[string]ClipConfig, len(cfg.Clips))
	for _, c := range cfg.Clips {
		byName[c.Name] = c
	}

	var (
		out  []ClipConfig
		errs []error
		seen = make(map[string]bool, len(names))
	)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		c, ok := byName[name]
		if !ok {
			if s := suggest(name, cfg.Names()); s != "" {
				errs = append(errs, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownClip, name, s))
			} else {
				errs = append(errs, fmt.Errorf("%w %q", ErrUnknownClip, name))
			}
			continue
		}
		out = append(out, c)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// suggest returns the known name most similar to name, or "" if none reaches
// suggestThreshold.
func suggest(name string, known []string) string {
	best, bestScore := "", 0.0
	lower := strings.ToLower(name)
	for _, k := range known {
		score := matchr.JaroWinkler(lower, strings.ToLower(k), false)
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}
