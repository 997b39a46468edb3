package pipeline

import (
	"sync"
	"time"
)

// Phase is the stage a run is in.
type Phase string

const (
	PhasePending     Phase = "pending"
	PhaseDiscovering Phase = "discovering"
	PhaseRendering   Phase = "rendering"
	PhaseAggregating Phase = "aggregating"
	PhaseWriting     Phase = "writing"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
)

// Run tracks the state of one build.
type Run struct {
	mu sync.Mutex

	id         string
	root       string
	output     string
	phase      Phase
	failedIn   Phase
	discovered int
	rendered   int
	categories int
	bytes      int
	err        string
	startedAt  time.Time
	updatedAt  time.Time
	finishedAt time.Time
}

func newRun(id, root, output string) *Run {
	now := time.Now()
	return &Run{
		id:        id,
		root:      root,
		output:    output,
		phase:     PhasePending,
		startedAt: now,
		updatedAt: now,
	}
}

// SetPhase moves the run to phase.
func (r *Run) SetPhase(phase Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = phase
	r.updatedAt = time.Now()
	if phase == PhaseCompleted {
		r.finishedAt = r.updatedAt
	}
}

// Fail records err and marks the run failed, remembering the phase it
// failed in.
func (r *Run) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedIn = r.phase
	r.phase = PhaseFailed
	r.err = err.Error()
	r.updatedAt = time.Now()
	r.finishedAt = r.updatedAt
}

func (r *Run) setDiscovered(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discovered = n
	r.updatedAt = time.Now()
}

func (r *Run) setRendered(docs, categories int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = docs
	r.categories = categories
	r.updatedAt = time.Now()
}

func (r *Run) setOutput(path string, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output = path
	r.bytes = size
	r.updatedAt = time.Now()
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID         string     `json:"run_id"`
	Root       string     `json:"root"`
	Output     string     `json:"output"`
	Phase      Phase      `json:"phase"`
	FailedIn   Phase      `json:"failed_in,omitempty"`
	Discovered int        `json:"discovered"`
	Rendered   int        `json:"rendered"`
	Categories int        `json:"categories"`
	Bytes      int        `json:"bytes"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := RunSnapshot{
		ID:         r.id,
		Root:       r.root,
		Output:     r.output,
		Phase:      r.phase,
		FailedIn:   r.failedIn,
		Discovered: r.discovered,
		Rendered:   r.rendered,
		Categories: r.categories,
		Bytes:      r.bytes,
		Error:      r.err,
		StartedAt:  r.startedAt,
		UpdatedAt:  r.updatedAt,
	}
	if !r.finishedAt.IsZero() {
		finished := r.finishedAt
		snap.FinishedAt = &finished
	}
	return snap
}
