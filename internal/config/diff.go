package config

import (
	"reflect"
	"slices"
)

// ManifestDiff describes what changed between two manifests in terms of the
// files they produce.
type ManifestDiff struct {
	// Added lists clips present only in the new manifest.
	Added []string

	// Removed lists clips present only in the old manifest. Their files are
	// left on disk.
	Removed []string

	// Changed lists clips whose rendered audio or destination differ.
	// Description-only edits are not reported.
	Changed []string

	LogLevelChanged bool
	NewLogLevel     LogLevel
}

// Regenerate returns the clips that must be rendered again, in the new
// manifest's order.
func (d ManifestDiff) Regenerate(new *Config) []string {
	var out []string
	for _, c := range new.Clips {
		if slices.Contains(d.Added, c.Name) || slices.Contains(d.Changed, c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

// Empty reports whether the diff carries no change at all.
func (d ManifestDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 && !d.LogLevelChanged
}

// Diff compares old and new manifests and returns what changed.
// Clips are matched by name.
func Diff(old, new *Config) ManifestDiff {
	d := ManifestDiff{}

	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.LogLevel
	}

	oldClips := make(map[string]ClipConfig, len(old.Clips))
	for _, c := range old.Clips {
		oldClips[c.Name] = c
	}
	newClips := make(map[string]bool, len(new.Clips))

	for _, c := range new.Clips {
		newClips[c.Name] = true
		prev, exists := oldClips[c.Name]
		if !exists {
			d.Added = append(d.Added, c.Name)
			continue
		}
		if clipChanged(old, prev, new, c) {
			d.Changed = append(d.Changed, c.Name)
		}
	}

	for _, c := range old.Clips {
		if !newClips[c.Name] {
			d.Removed = append(d.Removed, c.Name)
		}
	}

	return d
}

// clipChanged reports whether a clip would produce a different file, either
// because its audio or its destination changed.
func clipChanged(oldCfg *Config, old ClipConfig, newCfg *Config, new ClipConfig) bool {
	if oldCfg.OutputPath(old) != newCfg.OutputPath(new) {
		return true
	}
	oldSpec, oldErr := old.Spec(oldCfg.SampleRate)
	newSpec, newErr := new.Spec(newCfg.SampleRate)
	if oldErr != nil || newErr != nil {
		return true
	}
	return !reflect.DeepEqual(oldSpec, newSpec)
}
