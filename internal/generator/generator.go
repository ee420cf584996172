// Package generator renders batches of clips and writes them to disk.
//
// A [Generator] takes a list of [Job] values, each pairing a
// [synth.ClipSpec] with a destination path, and processes them with bounded
// parallelism. A failing clip never stops its siblings: every job gets a
// [Result], and the error returned by [Generator.Run] joins the failures so
// the caller can report all of them at once.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/sfxgen/internal/observe"
	"github.com/MrWong99/sfxgen/pkg/audio"
	"github.com/MrWong99/sfxgen/pkg/synth"
)

// ErrDuplicatePath is returned by [Generator.Run] when two jobs target the
// same destination file.
var ErrDuplicatePath = errors.New("generator: duplicate destination path")

// Error kinds reported by [Kind].
const (
	KindInvalidSpec   = "invalid_spec"
	KindInvalidFormat = "invalid_format"
	KindIO            = "io"
	KindCanceled      = "canceled"
	KindUnknown       = "unknown"
)

// Job is one clip to render and write.
type Job struct {
	// Name identifies the clip in logs, spans, and errors.
	Name string

	// Spec describes the audio to synthesize.
	Spec synth.ClipSpec

	// Path is the destination file. Parent directories are created.
	Path string
}

// Result is the outcome of one [Job].
type Result struct {
	Name string
	Path string

	// Status is one of observe.StatusWritten, observe.StatusUnchanged or
	// observe.StatusFailed.
	Status string

	// Frames is the number of sample frames rendered.
	Frames int

	// Bytes is the size of the encoded file, header included.
	Bytes int64

	// Duration is the playback length of the clip.
	Duration time.Duration

	// Elapsed is the wall time spent rendering and writing.
	Elapsed time.Duration

	// Err is non-nil when the clip could not be produced.
	Err error
}

// Generator runs batches of [Job] values. The zero value is not usable; use
// [New].
type Generator struct {
	workers int
	metrics *observe.Metrics
}

// Option is a functional option for [New].
type Option func(*Generator)

// WithWorkers bounds how many clips are processed concurrently. Values below
// one select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

// WithMetrics sets the instruments clip outcomes are recorded on. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// New creates a [Generator]. Apply [Option] values to override the defaults.
func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, o := range opts {
		o(g)
	}
	if g.workers < 1 {
		g.workers = runtime.GOMAXPROCS(0)
	}
	if g.metrics == nil {
		g.metrics = observe.DefaultMetrics()
	}
	return g
}

// Workers returns the effective concurrency limit.
func (g *Generator) Workers() int { return g.workers }

// Run renders and writes every job and returns one [Result] per job, in job
// order.
//
// At most Workers jobs run at once. A failed job is recorded in its Result
// and does not affect the others. Once ctx is cancelled no further jobs are
// started; those jobs report ctx.Err(). A job already writing is allowed to
// finish so no partial file is left behind.
//
// The returned error joins every per-job error, each prefixed with the clip
// name and path, or is nil when all jobs succeeded. If two jobs share a
// destination path nothing is generated and an error wrapping
// [ErrDuplicatePath] is returned with a nil slice.
func (g *Generator) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := checkPaths(jobs); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	slog.Debug("batch starting", "run_id", runID, "clips", len(jobs), "workers", g.workers)

	results := make([]Result, len(jobs))
	var eg errgroup.Group
	eg.SetLimit(g.workers)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = g.skipped(ctx, job, err)
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = g.skipped(ctx, job, err)
				return nil
			}
			results[i] = g.runJob(ctx, runID, job)
			return nil
		})
	}
	_ = eg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("clip %q (%s): %w", r.Name, r.Path, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// runJob renders one clip and commits it to disk.
func (g *Generator) runJob(ctx context.Context, runID string, job Job) Result {
	ctx, span := observe.StartSpan(ctx, "sfxgen.clip", trace.WithAttributes(
		attribute.String("sfxgen.run_id", runID),
		attribute.String("clip.name", job.Name),
		attribute.String("clip.path", job.Path),
	))
	defer span.End()

	start := time.Now()
	res := Result{
		Name:     job.Name,
		Path:     job.Path,
		Duration: job.Spec.Duration(),
	}

	samples, err := synth.Render(job.Spec)
	g.metrics.RenderDuration.Record(ctx, time.Since(start).Seconds())
	if err == nil {
		res.Frames = len(samples)
		writeStart := time.Now()
		res.Status, res.Bytes, err = g.write(job.Path, samples, job.Spec.Format())
		g.metrics.WriteDuration.Record(ctx, time.Since(writeStart).Seconds())
	}
	res.Elapsed = time.Since(start)
	span.SetAttributes(attribute.Int("clip.frames", res.Frames))

	log := observe.Logger(ctx).With(slog.String("run_id", runID))
	if err != nil {
		kind := Kind(err)
		res.Status = observe.StatusFailed
		res.Err = err
		g.metrics.RecordClipError(ctx, kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		log.LogAttrs(ctx, slog.LevelError, "clip failed",
			slog.String("clip", job.Name),
			slog.String("path", job.Path),
			slog.String("kind", kind),
			slog.Any("err", err),
		)
		return res
	}

	g.metrics.RecordClip(ctx, res.Status, res.Frames, res.Bytes)
	log.LogAttrs(ctx, slog.LevelInfo, "clip "+res.Status,
		slog.String("clip", job.Name),
		slog.String("path", job.Path),
		slog.Int("frames", res.Frames),
		slog.Int64("bytes", res.Bytes),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res
}

// write encodes samples and replaces path with them unless the file already
// holds the same bytes.
func (g *Generator) write(path string, samples []int16, f audio.Format) (string, int64, error) {
	data, err := audio.Encode(samples, f)
	if err != nil {
		return "", 0, err
	}
	if audio.SameContent(path, data) {
		return observe.StatusUnchanged, int64(len(data)), nil
	}
	if err := audio.WriteEncoded(path, data); err != nil {
		return "", 0, err
	}
	return observe.StatusWritten, int64(len(data)), nil
}

// skipped builds the result of a job that was never started.
func (g *Generator) skipped(ctx context.Context, job Job, err error) Result {
	g.metrics.RecordClipError(ctx, KindCanceled)
	return Result{
		Name:     job.Name,
		Path:     job.Path,
		Status:   observe.StatusFailed,
		Duration: job.Spec.Duration(),
		Err:      err,
	}
}

// checkPaths rejects batches in which two jobs resolve to the same file.
func checkPaths(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	var errs []error
	for _, j := range jobs {
		key := filepath.Clean(j.Path)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%w: %q and %q both write %s", ErrDuplicatePath, prev, j.Name, j.Path))
			continue
		}
		seen[key] = j.Name
	}
	return errors.Join(errs...)
}

// Kind classifies err for metrics labels and summaries.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, synth.ErrInvalidSpec):
		return KindInvalidSpec
	case errors.Is(err, audio.ErrInvalidFormat):
		return KindInvalidFormat
	case errors.Is(err, audio.ErrIO):
		return KindIO
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}
