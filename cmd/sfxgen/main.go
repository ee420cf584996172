// Command sfxgen renders the game's procedural sound effects to WAV files.
//
// Usage:
//
//	sfxgen [-config file] [-out dir] [-workers n] [-log-level lvl] [-metrics-file f] [-watch] [clip ...]
//	sfxgen list [-config file]
//	sfxgen inspect file.wav ...
//	sfxgen version
//
// Without -config the built-in clip catalog is used. Named clips restrict
// generation to those clips. With -watch, sfxgen stays running and
// regenerates the clips affected by each saved edit of the manifest.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/MrWong99/sfxgen/internal/config"
	"github.com/MrWong99/sfxgen/internal/generator"
	"github.com/MrWong99/sfxgen/internal/observe"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "list":
			return runList(args[1:], stdout, stderr)
		case "inspect":
			return runInspect(args[1:], stdout, stderr)
		case "version":
			fmt.Fprintln(stdout, "sfxgen", version)
			return exitOK
		}
	}
	return runGenerate(args, stdout, stderr)
}

func runGenerate(args []string, stdout, stderr io.Writer) int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	fs := flag.NewFlagSet("sfxgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML clip manifest (default: built-in clips)")
	outDir := fs.String("out", "", "output directory, overrides the manifest")
	workers := fs.Int("workers", 0, "clips generated concurrently, 0 for one per CPU")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	metricsFile := fs.String("metrics-file", "", "write run metrics to this Prometheus textfile")
	watch := fs.Bool("watch", false, "keep running and regenerate clips when the manifest changes")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *watch && *configPath == "" {
		fmt.Fprintln(stderr, "sfxgen: -watch requires -config")
		return exitUsage
	}

	// applyFlags copies explicitly set flags over manifest values. It is
	// reapplied to every manifest reloaded in watch mode.
	applyFlags := func(cfg *config.Config) error {
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "out":
				cfg.OutputDir = *outDir
			case "workers":
				cfg.Workers = *workers
			case "log-level":
				cfg.LogLevel = config.LogLevel(*logLevel)
			case "metrics-file":
				cfg.MetricsFile = *metricsFile
			}
		})
		return config.Validate(cfg)
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, code := loadConfig(*configPath, stderr)
	if cfg == nil {
		return code
	}
	if err := applyFlags(cfg); err != nil {
		fmt.Fprintf(stderr, "sfxgen: %v\n", err)
		return exitUsage
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger, level := newLogger(cfg.LogLevel, stderr)
	slog.SetDefault(logger)

	clips, err := cfg.Select(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "sfxgen: %v\n", err)
		return exitUsage
	}

	slog.Info("sfxgen starting",
		"version", version,
		"config", configLabel(*configPath),
		"output_dir", cfg.OutputDir,
		"clips", len(clips),
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	provider, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return exitFail
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics, err := observe.NewMetrics(provider.MeterProvider)
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return exitFail
	}

	// ── Generate ──────────────────────────────────────────────────────────────
	b := &batch{provider: provider, metrics: metrics, stdout: stdout}
	runErr := b.run(ctx, cfg, clips)
	if errors.Is(runErr, generator.ErrDuplicatePath) {
		fmt.Fprintf(stderr, "sfxgen: %v\n", runErr)
		return exitUsage
	}
	if !*watch {
		if runErr != nil {
			return exitFail
		}
		return exitOK
	}

	// ── Watch mode ────────────────────────────────────────────────────────────
	b.level = level
	b.only = fs.Args()
	b.prepare = applyFlags
	w, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		if err := b.reload(ctx, old, new); err != nil {
			slog.Warn("manifest reload failed", "path", *configPath, "err", err)
		}
	})
	if err != nil {
		slog.Error("failed to watch manifest", "path", *configPath, "err", err)
		return exitFail
	}
	defer w.Stop()

	slog.Info("watching manifest for changes; press Ctrl+C to stop", "path", *configPath)
	<-ctx.Done()
	slog.Info("shutdown signal received, stopping")
	return exitOK
}

// batch generates clips and reports the outcome of each run.
type batch struct {
	provider *observe.Provider
	metrics  *observe.Metrics
	stdout   io.Writer

	// Watch mode only.
	level   *slog.LevelVar
	only    []string
	prepare func(*config.Config) error
}

// run generates clips from cfg, prints the summary, and refreshes the
// metrics textfile when one is configured.
func (b *batch) run(ctx context.Context, cfg *config.Config, clips []config.ClipConfig) error {
	jobs := make([]generator.Job, 0, len(clips))
	for _, c := range clips {
		spec, err := c.Spec(cfg.SampleRate)
		if err != nil {
			return fmt.Errorf("clip %q: %w", c.Name, err)
		}
		jobs = append(jobs, generator.Job{Name: c.Name, Spec: spec, Path: cfg.OutputPath(c)})
	}

	gen := generator.New(generator.WithWorkers(cfg.Workers), generator.WithMetrics(b.metrics))
	results, err := gen.Run(ctx, jobs)
	if errors.Is(err, generator.ErrDuplicatePath) {
		return err
	}
	printSummary(b.stdout, results)

	if cfg.MetricsFile != "" {
		if werr := b.provider.WriteTextfile(cfg.MetricsFile); werr != nil {
			slog.Error("failed to write metrics file", "path", cfg.MetricsFile, "err", werr)
			return errors.Join(err, werr)
		}
		slog.Debug("metrics written", "path", cfg.MetricsFile)
	}
	return err
}

// reload applies an edited manifest: it adopts a new log level and
// regenerates the clips whose output changed, restricted to b.only when set.
// A manifest rejected by its version constraint or by validation changes
// nothing.
func (b *batch) reload(ctx context.Context, old, new *config.Config) error {
	if err := new.CheckVersion(version); err != nil {
		return err
	}
	prepare := b.prepare
	if prepare == nil {
		prepare = config.Validate
	}
	if err := prepare(new); err != nil {
		return err
	}

	d := config.Diff(old, new)
	if d.LogLevelChanged && b.level != nil {
		b.level.Set(slogLevel(new.LogLevel))
	}
	for _, name := range d.Removed {
		slog.Info("clip removed from manifest; its file is left in place", "clip", name)
	}
	names := d.Regenerate(new)
	if len(b.only) > 0 {
		names = slices.DeleteFunc(names, func(n string) bool { return !slices.Contains(b.only, n) })
	}
	if len(names) == 0 {
		return nil
	}
	changed, err := new.Select(names)
	if err != nil {
		return err
	}
	return b.run(ctx, new, changed)
}

func runList(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sfxgen list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML clip manifest (default: built-in clips)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, code := loadConfig(*configPath, stderr)
	if cfg == nil {
		return code
	}
	printCatalog(stdout, cfg)
	return exitOK
}

func runInspect(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sfxgen inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: sfxgen inspect file.wav ...")
		return exitUsage
	}

	code := exitOK
	for i, path := range fs.Args() {
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		if err := inspectFile(stdout, path); err != nil {
			fmt.Fprintf(stderr, "sfxgen: %v\n", err)
			code = exitFail
		}
	}
	return code
}

// loadConfig returns the manifest at path, or the built-in catalog when path
// is empty. On failure it reports to stderr and returns a nil config with the
// exit code to use.
func loadConfig(path string, stderr io.Writer) (*config.Config, int) {
	if path == "" {
		return config.Default(), exitOK
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "sfxgen: manifest %q not found; copy configs/sfx.yaml to get started\n", path)
		} else {
			fmt.Fprintf(stderr, "sfxgen: %v\n", err)
		}
		return nil, exitFail
	}
	if err := cfg.CheckVersion(version); err != nil {
		fmt.Fprintf(stderr, "sfxgen: %v\n", err)
		return nil, exitFail
	}
	return cfg, exitOK
}

func configLabel(path string) string {
	if path == "" {
		return "(built-in)"
	}
	return path
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	lvl := new(slog.LevelVar)
	lvl.Set(slogLevel(level))
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), lvl
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
