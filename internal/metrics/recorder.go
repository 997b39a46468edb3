package metrics

import "time"

// Outcome labels a finished run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Recorder receives build observations. NoopRecorder is used when metrics
// are not exported.
type Recorder interface {
	ObservePhaseDuration(phase string, d time.Duration)
	ObserveRenderDuration(d time.Duration)
	IncDocuments(category string)
	AddCacheHits(n int64)
	IncRunOutcome(outcome Outcome)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObservePhaseDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRenderDuration(time.Duration)        {}
func (NoopRecorder) IncDocuments(string)                        {}
func (NoopRecorder) AddCacheHits(int64)                         {}
func (NoopRecorder) IncRunOutcome(Outcome)                      {}
