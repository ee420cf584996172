package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/sfxgen/internal/config"
	"github.com/MrWong99/sfxgen/internal/observe"
)

// These tests install global slog and OTel providers through run, so they do
// not run in parallel.

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_GeneratesBuiltinClips(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(dir, "metrics", "sfxgen.prom")

	code, stdout, stderr := runCLI(t, "-out", dir, "-log-level", "error", "-metrics-file", metrics)
	if code != exitOK {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr)
	}

	for _, name := range []string{"success", "fail", "car_full", "ground_hit"} {
		if _, err := os.Stat(filepath.Join(dir, name+".wav")); err != nil {
			t.Errorf("%s.wav: %v", name, err)
		}
		if !strings.Contains(stdout, name) {
			t.Errorf("summary should list %s:\n%s", name, stdout)
		}
	}
	if !strings.Contains(stdout, "4 written, 0 unchanged, 0 failed") {
		t.Errorf("summary totals missing:\n%s", stdout)
	}
	if _, err := os.Stat(metrics); err != nil {
		t.Errorf("metrics file: %v", err)
	}

	// A second run finds every file up to date.
	code, stdout, _ = runCLI(t, "-out", dir, "-log-level", "error")
	if code != exitOK {
		t.Fatalf("second run exit code %d", code)
	}
	if !strings.Contains(stdout, "0 written, 4 unchanged, 0 failed") {
		t.Errorf("second run should leave files unchanged:\n%s", stdout)
	}
}

func TestRun_SelectedClips(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runCLI(t, "-out", dir, "-log-level", "error", "success")
	if code != exitOK {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "success.wav" {
		t.Errorf("output dir: got %v, want only success.wav", entries)
	}
}

func TestRun_UnknownClip(t *testing.T) {
	code, _, stderr := runCLI(t, "-out", t.TempDir(), "sucess")
	if code != exitUsage {
		t.Errorf("exit code: got %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr, `did you mean "success"`) {
		t.Errorf("stderr should suggest success:\n%s", stderr)
	}
}

func TestRun_BadUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"invalid log level", []string{"-log-level", "loud"}},
		{"negative workers", []string{"-workers", "-3"}},
		{"inspect without files", []string{"inspect"}},
		{"watch without manifest", []string{"-watch"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tc.args...); code != exitUsage {
				t.Errorf("exit code: got %d, want %d", code, exitUsage)
			}
		})
	}
}

func TestRun_ManifestFailures(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runCLI(t, "-config", filepath.Join(dir, "missing.yaml"))
	if code != exitFail {
		t.Errorf("missing manifest exit code: got %d, want %d", code, exitFail)
	}
	if !strings.Contains(stderr, "not found") {
		t.Errorf("stderr should say the manifest is missing:\n%s", stderr)
	}

	manifest := filepath.Join(dir, "sfx.yaml")
	if err := os.WriteFile(manifest, []byte("requires: \">= 99.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr = runCLI(t, "-config", manifest)
	if code != exitFail {
		t.Errorf("version mismatch exit code: got %d, want %d", code, exitFail)
	}
	if !strings.Contains(stderr, "unsupported sfxgen version") {
		t.Errorf("stderr should report the version mismatch:\n%s", stderr)
	}
}

func TestRun_WriteFailureExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, _ := runCLI(t, "-out", blocker, "-log-level", "error", "success")
	if code != exitFail {
		t.Errorf("exit code: got %d, want %d", code, exitFail)
	}
	if !strings.Contains(stdout, "failed (io)") {
		t.Errorf("summary should report an io failure:\n%s", stdout)
	}
}

func TestList(t *testing.T) {
	code, stdout, _ := runCLI(t, "list")
	if code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	for _, want := range []string{"success", "6615", "150ms", "E5-A5-D6 arpeggio", filepath.Join("assets", "ground_hit.wav")} {
		if !strings.Contains(stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, stdout)
		}
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	if code, _, stderr := runCLI(t, "-out", dir, "-log-level", "error", "success"); code != exitOK {
		t.Fatalf("generate exit code %d:\n%s", code, stderr)
	}

	code, stdout, stderr := runCLI(t, "inspect", filepath.Join(dir, "success.wav"))
	if code != exitOK {
		t.Fatalf("inspect exit code %d:\n%s", code, stderr)
	}
	for _, want := range []string{"44100Hz mono 16-bit", "6615 (150ms)", "13274 bytes", "rising"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, stdout)
		}
	}

	notWAV := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notWAV, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runCLI(t, "inspect", notWAV); code != exitFail {
		t.Errorf("inspect of a non-WAV file: got exit %d, want %d", code, exitFail)
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	if code != exitOK || !strings.Contains(stdout, version) {
		t.Errorf("version: got exit %d, output %q", code, stdout)
	}
}

// ── Watch reload ─────────────────────────────────────────────────────────────

func watchManifest(dir string, clips ...string) *config.Config {
	cfg := &config.Config{OutputDir: dir, LogLevel: config.LogInfo}
	for _, name := range clips {
		cfg.Clips = append(cfg.Clips, config.ClipConfig{
			Name:     name,
			Volume:   0.5,
			Segments: []config.SegmentConfig{{Hz: 440, Duration: 0.01}},
		})
	}
	return cfg
}

func TestBatchReload(t *testing.T) {
	tests := []struct {
		name      string
		only      []string
		edit      func(*config.Config)
		wantErr   error
		wantFiles []string
		wantLevel slog.Level
	}{
		{
			name:      "added clip",
			edit:      func(c *config.Config) { c.Clips = append(c.Clips, watchManifest("", "b").Clips...) },
			wantFiles: []string{"b.wav"},
			wantLevel: slog.LevelInfo,
		},
		{
			name: "clip args filter regeneration",
			only: []string{"a"},
			edit: func(c *config.Config) {
				c.Clips[0].Segments[0].Hz = 880
				c.Clips = append(c.Clips, watchManifest("", "b").Clips...)
			},
			wantFiles: []string{"a.wav"},
			wantLevel: slog.LevelInfo,
		},
		{
			name:      "log level change",
			edit:      func(c *config.Config) { c.LogLevel = config.LogDebug },
			wantLevel: slog.LevelDebug,
		},
		{
			name: "version constraint rejects the edit",
			edit: func(c *config.Config) {
				c.Requires = ">= 99.0"
				c.LogLevel = config.LogDebug
				c.Clips = append(c.Clips, watchManifest("", "b").Clips...)
			},
			wantErr:   config.ErrUnsupportedVersion,
			wantLevel: slog.LevelInfo,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			old := watchManifest(dir, "a")
			updated := watchManifest(dir, "a")
			tc.edit(updated)

			var out bytes.Buffer
			level := new(slog.LevelVar)
			b := &batch{metrics: observe.DefaultMetrics(), stdout: &out, level: level, only: tc.only}

			err := b.reload(context.Background(), old, updated)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("reload: got %v, want %v", err, tc.wantErr)
				}
			} else if err != nil {
				t.Fatalf("reload: %v", err)
			}

			for _, name := range []string{"a.wav", "b.wav"} {
				_, statErr := os.Stat(filepath.Join(dir, name))
				want := strings.Contains(strings.Join(tc.wantFiles, " "), name)
				if got := statErr == nil; got != want {
					t.Errorf("%s exists: got %v, want %v", name, got, want)
				}
			}
			if got := level.Level(); got != tc.wantLevel {
				t.Errorf("log level: got %v, want %v", got, tc.wantLevel)
			}
			if len(tc.wantFiles) == 0 && out.Len() != 0 {
				t.Errorf("nothing should be generated, got summary:\n%s", out.String())
			}
		})
	}
}
