package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docbundle/internal/classify"
	"github.com/dgallion1/docbundle/internal/docerr"
	"github.com/dgallion1/docbundle/internal/doctree"
	"github.com/dgallion1/docbundle/internal/metrics"
	"github.com/dgallion1/docbundle/internal/render"
)

// Worker classifies and renders documents with bounded concurrency.
type Worker struct {
	classifier *classify.Classifier
	renderer   render.Renderer
	log        *slog.Logger
	stats      *RenderStats
	metrics    metrics.Recorder

	concurrency   int
	renderTimeout time.Duration
}

// WorkerOptions tunes a Worker. Zero values mean unbounded parallelism and
// no per-file timeout.
type WorkerOptions struct {
	Concurrency   int
	RenderTimeout time.Duration
	Stats         *RenderStats
	Metrics       metrics.Recorder
}

func NewWorker(c *classify.Classifier, r render.Renderer, log *slog.Logger, opts WorkerOptions) *Worker {
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Worker{
		classifier:    c,
		renderer:      r,
		log:           log,
		stats:         opts.Stats,
		metrics:       rec,
		concurrency:   opts.Concurrency,
		renderTimeout: opts.RenderTimeout,
	}
}

// Process classifies and renders every file. Results keep the input order.
// The first render failure cancels the remaining work and is returned as a
// *docerr.RenderError; no partial list is returned alongside it.
func (w *Worker) Process(ctx context.Context, files []doctree.DocumentFile) ([]doctree.ProcessedDocument, error) {
	out := make([]doctree.ProcessedDocument, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if w.concurrency > 0 {
		g.SetLimit(w.concurrency)
	}

	for i, f := range files {
		i, f := i, f
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := w.processOne(gctx, f)
			if err != nil {
				return err
			}
			out[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Worker) processOne(ctx context.Context, f doctree.DocumentFile) (doctree.ProcessedDocument, error) {
	f.Category = w.classifier.Classify(f.Path)

	start := time.Now()
	html, err := w.render(ctx, f.RawContent)
	elapsed := time.Since(start)
	if err != nil {
		// Cancellation is the caller's doing, not a fault in this document.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return doctree.ProcessedDocument{}, err
		}
		w.log.Error("render failed", "path", f.Path, "error", err)
		return doctree.ProcessedDocument{}, &docerr.RenderError{Path: f.Path, Err: err}
	}

	if w.stats != nil {
		w.stats.Record(elapsed)
	}
	w.metrics.ObserveRenderDuration(elapsed)
	w.metrics.IncDocuments(f.Category)
	w.log.Debug("rendered document", "path", f.Path, "category", f.Category, "duration_ms", elapsed.Milliseconds())

	return doctree.ProcessedDocument{DocumentFile: f, RenderedHTML: html}, nil
}

// render calls the renderer, giving up after renderTimeout when one is set.
// A renderer that overruns keeps its goroutine until it returns; its result
// is dropped.
func (w *Worker) render(ctx context.Context, markdown string) (string, error) {
	if w.renderTimeout <= 0 {
		return w.renderer.Render(markdown)
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		html, err := w.renderer.Render(markdown)
		done <- result{html: html, err: err}
	}()

	timer := time.NewTimer(w.renderTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.html, r.err
	case <-timer.C:
		return "", fmt.Errorf("%w after %s", docerr.ErrRenderTimeout, w.renderTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
