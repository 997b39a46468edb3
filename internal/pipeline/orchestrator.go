package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docbundle/internal/aggregate"
	"github.com/dgallion1/docbundle/internal/classify"
	"github.com/dgallion1/docbundle/internal/config"
	"github.com/dgallion1/docbundle/internal/discovery"
	"github.com/dgallion1/docbundle/internal/docerr"
	"github.com/dgallion1/docbundle/internal/doctree"
	"github.com/dgallion1/docbundle/internal/metrics"
	"github.com/dgallion1/docbundle/internal/render"
	"github.com/dgallion1/docbundle/internal/writer"
)

// Orchestrator runs builds: discover, process, aggregate, write.
type Orchestrator struct {
	cfg        config.Config
	log        *slog.Logger
	classifier *classify.Classifier
	renderer   render.Renderer
	cache      *render.Cached
	stats      *RenderStats
	metrics    metrics.Recorder

	mu   sync.Mutex
	last *Run
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithRenderer replaces the markdown renderer. The content cache still
// wraps it when the configured cache size is positive.
func WithRenderer(r render.Renderer) Option {
	return func(o *Orchestrator) { o.renderer = r }
}

// WithMetrics sends observations to rec.
func WithMetrics(rec metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = rec }
}

// NewOrchestrator wires the components described by cfg. cfg should
// already be validated.
func NewOrchestrator(cfg config.Config, log *slog.Logger, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		cfg:        cfg,
		log:        log,
		classifier: classify.New(cfg.Categories, cfg.FallbackCategory),
		renderer:   render.NewMarkdown(),
		stats:      NewRenderStats(),
		metrics:    metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if cfg.CacheSize > 0 {
		cached, err := render.NewCached(o.renderer, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		o.cache = cached
		o.renderer = cached
	}
	return o, nil
}

// Run executes one build and returns the absolute path of the written page.
// Any failure aborts the run before the output is touched, except for
// failures in the write itself, which leave the previous file in place.
func (o *Orchestrator) Run(ctx context.Context) (string, error) {
	run := newRun(uuid.NewString(), o.cfg.Root, o.cfg.Output)
	o.mu.Lock()
	o.last = run
	o.mu.Unlock()

	log := o.log.With("run_id", run.id)
	start := time.Now()

	path, err := o.run(ctx, run, log)
	if err != nil {
		run.Fail(err)
		outcome := metrics.OutcomeFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeCanceled
		}
		o.metrics.IncRunOutcome(outcome)
		log.Error("run failed", "phase", run.Snapshot().FailedIn, "error", err)
		return "", err
	}

	run.SetPhase(PhaseCompleted)
	o.metrics.IncRunOutcome(metrics.OutcomeSuccess)
	log.Info("run completed", "output", path, "duration_ms", time.Since(start).Milliseconds())
	return path, nil
}

func (o *Orchestrator) run(ctx context.Context, run *Run, log *slog.Logger) (string, error) {
	// Phase 1: Discover
	run.SetPhase(PhaseDiscovering)
	log.Info("discovery started", "root", o.cfg.Root)
	files, err := timed(o, "discover", func() ([]doctree.DocumentFile, error) {
		return discovery.New(o.cfg.Root, o.discoveryOptions(), log).Discover(ctx)
	})
	if err != nil {
		return "", err
	}
	run.setDiscovered(len(files))
	log.Info("files found", "count", len(files))
	if len(files) == 0 {
		if o.cfg.RequireDocuments {
			return "", &docerr.FilesystemError{Op: "discover", Path: o.cfg.Root, Err: docerr.ErrNoDocuments}
		}
		log.Warn("no documentation files found, writing an empty page")
	}

	// Phase 2: Classify and render
	run.SetPhase(PhaseRendering)
	log.Info("rendering started", "files", len(files), "concurrency", o.cfg.Concurrency)
	var hitsBefore int64
	if o.cache != nil {
		hitsBefore, _ = o.cache.Stats()
	}
	worker := NewWorker(o.classifier, o.renderer, log, WorkerOptions{
		Concurrency:   o.cfg.Concurrency,
		RenderTimeout: o.cfg.RenderTimeout,
		Stats:         o.stats,
		Metrics:       o.metrics,
	})
	docs, err := timed(o, "process", func() ([]doctree.ProcessedDocument, error) {
		return worker.Process(ctx, files)
	})
	if err != nil {
		return "", err
	}
	if o.cache != nil {
		hits, _ := o.cache.Stats()
		o.metrics.AddCacheHits(hits - hitsBefore)
	}

	// Phase 3: Aggregate
	run.SetPhase(PhaseAggregating)
	page, err := timed(o, "aggregate", func() (string, error) {
		return aggregate.Aggregate(docs, aggregate.Options{
			Title:        o.cfg.Title,
			CheckAnchors: o.cfg.CheckAnchors,
		})
	})
	if err != nil {
		return "", fmt.Errorf("aggregate: %w", err)
	}
	categories := len(aggregate.Group(docs))
	run.setRendered(len(docs), categories)
	log.Info("aggregation complete", "documents", len(docs), "categories", categories, "bytes", len(page))

	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Phase 4: Write
	run.SetPhase(PhaseWriting)
	path, err := timed(o, "write", func() (string, error) {
		return writer.Write(page, o.cfg.Output)
	})
	if err != nil {
		return "", err
	}
	run.setOutput(path, len(page))
	log.Info("write completed", "path", path, "bytes", len(page))
	return path, nil
}

func (o *Orchestrator) discoveryOptions() discovery.Options {
	return discovery.Options{
		IncludeHidden: o.cfg.IncludeHidden,
		Exclude:       o.cfg.Exclude,
		ExtraFormats:  o.cfg.ExtraFormats,
		Skip:          []string{o.cfg.Output},
	}
}

// Discover runs discovery and classification only, for dry runs.
func (o *Orchestrator) Discover(ctx context.Context) ([]doctree.DocumentFile, error) {
	files, err := discovery.New(o.cfg.Root, o.discoveryOptions(), o.log).Discover(ctx)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Category = o.classifier.Classify(files[i].Path)
	}
	return files, nil
}

// LastRun returns the most recent run, or nil before the first one.
func (o *Orchestrator) LastRun() *Run {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Stats returns the render latency collector shared by all runs.
func (o *Orchestrator) Stats() *RenderStats {
	return o.stats
}

// Classifier returns the rule table in effect.
func (o *Orchestrator) Classifier() *classify.Classifier {
	return o.classifier
}

// Output returns the configured destination path.
func (o *Orchestrator) Output() string {
	return o.cfg.Output
}

// timed runs fn and records its duration under phase.
func timed[T any](o *Orchestrator, phase string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	o.metrics.ObservePhaseDuration(phase, time.Since(start))
	return v, err
}
