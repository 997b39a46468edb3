package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on a dedicated registry.
type PrometheusRecorder struct {
	reg            *prom.Registry
	phaseDuration  *prom.HistogramVec
	renderDuration prom.Histogram
	documents      *prom.CounterVec
	cacheHits      prom.Counter
	runOutcomes    *prom.CounterVec
}

// NewPrometheusRecorder registers docbundle collectors on reg, or on a
// fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		phaseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docbundle",
			Name:      "phase_duration_seconds",
			Help:      "Duration of run phases (discover, process, aggregate, write)",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"}),
		renderDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docbundle",
			Name:      "render_duration_seconds",
			Help:      "Duration of single document renders",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1},
		}),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docbundle",
			Name:      "documents_rendered_total",
			Help:      "Documents rendered by category",
		}, []string{"category"}),
		cacheHits: prom.NewCounter(prom.CounterOpts{
			Namespace: "docbundle",
			Name:      "render_cache_hits_total",
			Help:      "Renders served from the content-hash cache",
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docbundle",
			Name:      "run_outcomes_total",
			Help:      "Finished runs by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.phaseDuration, pr.renderDuration, pr.documents, pr.cacheHits, pr.runOutcomes)
	return pr
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocuments(category string) {
	p.documents.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) AddCacheHits(n int64) {
	if n > 0 {
		p.cacheHits.Add(float64(n))
	}
}

func (p *PrometheusRecorder) IncRunOutcome(outcome Outcome) {
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
