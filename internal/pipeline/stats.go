package pipeline

import (
	"sort"
	"sync"
	"time"
)

// StatsSnapshot aggregates render latency samples.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// RenderStats collects per-document render durations. Samples are kept
// until Reset, so a snapshot always describes whole runs.
type RenderStats struct {
	mu      sync.Mutex
	samples []time.Duration
}

func NewRenderStats() *RenderStats {
	return &RenderStats{samples: make([]time.Duration, 0, 256)}
}

func (s *RenderStats) Record(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, d)
}

// Reset drops all samples.
func (s *RenderStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = s.samples[:0]
}

func (s *RenderStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	values := make([]float64, 0, len(s.samples))
	for _, d := range s.samples {
		values = append(values, float64(d)/float64(time.Millisecond))
	}
	s.mu.Unlock()

	if len(values) == 0 {
		return StatsSnapshot{}
	}
	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	return StatsSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: sum / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}

	index := float64(len(sorted)-1) * pct / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}
