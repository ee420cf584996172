package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/fatih/color"

	"github.com/MrWong99/sfxgen/internal/config"
	"github.com/MrWong99/sfxgen/internal/generator"
	"github.com/MrWong99/sfxgen/internal/observe"
	"github.com/MrWong99/sfxgen/pkg/audio"
	"github.com/MrWong99/sfxgen/pkg/audio/spectrum"
	"github.com/MrWong99/sfxgen/pkg/synth"
)

var (
	okColor   = color.New(color.FgGreen)
	skipColor = color.New(color.FgCyan)
	failColor = color.New(color.FgRed, color.Bold)
	headColor = color.New(color.Bold)
)

// ── Generation summary ───────────────────────────────────────────────────────

// printSummary writes one row per result followed by a totals line. Failed
// clips are repeated underneath with the reason.
func printSummary(w io.Writer, results []generator.Result) {
	nameW, pathW := len("CLIP"), len("PATH")
	for _, r := range results {
		nameW = max(nameW, len(r.Name))
		pathW = max(pathW, len(r.Path))
	}

	headColor.Fprintf(w, "%-*s  %-*s  %8s  %8s  %s\n", nameW, "CLIP", pathW, "PATH", "FRAMES", "LENGTH", "STATUS")

	var written, unchanged, failed int
	for _, r := range results {
		var status string
		switch r.Status {
		case observe.StatusWritten:
			written++
			status = okColor.Sprint(r.Status)
		case observe.StatusUnchanged:
			unchanged++
			status = skipColor.Sprint(r.Status)
		default:
			failed++
			status = failColor.Sprintf("%s (%s)", observe.StatusFailed, generator.Kind(r.Err))
		}
		fmt.Fprintf(w, "%-*s  %-*s  %8d  %8s  %s\n",
			nameW, r.Name, pathW, r.Path, r.Frames, formatLength(r.Duration), status)
	}

	fmt.Fprintf(w, "\n%d written, %d unchanged, %d failed\n", written, unchanged, failed)
	for _, r := range results {
		if r.Err != nil {
			failColor.Fprintf(w, "  %s -> %s: %v\n", r.Name, r.Path, r.Err)
		}
	}
}

func formatLength(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// ── Catalog listing ──────────────────────────────────────────────────────────

func printCatalog(w io.Writer, cfg *config.Config) {
	nameW := len("CLIP")
	for _, c := range cfg.Clips {
		nameW = max(nameW, len(c.Name))
	}

	headColor.Fprintf(w, "%-*s  %-24s  %8s  %8s  %s\n", nameW, "CLIP", "FILE", "FRAMES", "LENGTH", "DESCRIPTION")
	for _, c := range cfg.Clips {
		frames, length := "-", "-"
		if spec, err := c.Spec(cfg.SampleRate); err == nil {
			frames = fmt.Sprint(synth.FrameCount(spec))
			length = formatLength(spec.Duration())
		}
		fmt.Fprintf(w, "%-*s  %-24s  %8s  %8s  %s\n", nameW, c.Name, cfg.OutputPath(c), frames, length, c.Description)
	}
}

// ── File inspection ──────────────────────────────────────────────────────────

func inspectFile(w io.Writer, path string) error {
	info, err := audio.ReadInfo(path)
	if err != nil {
		return err
	}

	headColor.Fprintln(w, path)
	fmt.Fprintf(w, "  format  %s\n", info.Format)
	fmt.Fprintf(w, "  frames  %d (%s)\n", info.Frames, formatLength(info.Duration()))
	fmt.Fprintf(w, "  size    %d bytes\n", audio.HeaderSize+info.DataSize)
	if info.Format.BitDepth != synth.BitDepth {
		fmt.Fprintf(w, "  peak    %d\n", info.Peak)
		fmt.Fprintf(w, "  pitch   n/a (%d-bit)\n", info.Format.BitDepth)
		return nil
	}
	fmt.Fprintf(w, "  peak    %d (%s)\n", info.Peak, formatDBFS(info.Peak))

	if info.Format.Channels != synth.Channels {
		fmt.Fprintln(w, "  pitch   n/a (not mono)")
		return nil
	}
	first, last, err := spectrum.Edges(info.Samples, info.Format.SampleRate)
	switch {
	case errors.Is(err, spectrum.ErrTooShort):
		fmt.Fprintln(w, "  pitch   n/a (too short)")
	case err != nil:
		return fmt.Errorf("inspect %q: %w", path, err)
	default:
		fmt.Fprintf(w, "  pitch   %.0f Hz -> %.0f Hz (%s)\n", first, last, direction(first, last))
	}
	return nil
}

// direction describes a pitch change, treating differences under 3% as steady.
func direction(first, last float64) string {
	switch {
	case first == 0 || last == 0:
		return "silent"
	case last > first*1.03:
		return "rising"
	case last < first*0.97:
		return "falling"
	default:
		return "steady"
	}
}

func formatDBFS(peak int) string {
	if peak <= 0 {
		return "-inf dBFS"
	}
	return fmt.Sprintf("%.1f dBFS", 20*math.Log10(float64(peak)/math.MaxInt16))
}
