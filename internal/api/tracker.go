package api

import (
	"sync"
	"time"

	"memecoin-hunter/internal/orchestrator"
)

// Tracker records hunt pass progress for GET /status.
type Tracker struct {
	mu      sync.Mutex
	started time.Time
	now     func() time.Time

	running    bool
	runs       int
	lastRunAt  time.Time
	lastResult *orchestrator.RunResult
	lastError  string
}

// NewTracker creates a Tracker starting now.
func NewTracker() *Tracker {
	return &Tracker{started: time.Now(), now: time.Now}
}

// Begin marks a pass as running.
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = true
}

// Finish records the outcome of a pass.
func (t *Tracker) Finish(result *orchestrator.RunResult, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.runs++
	t.lastRunAt = t.now()
	t.lastResult = result
	t.lastError = ""
	if err != nil {
		t.lastError = err.Error()
	}
}

// LastRun holds the counts of the most recent pass.
type LastRun struct {
	At              time.Time `json:"at"`
	Message         string    `json:"message"`
	Chains          int       `json:"chains"`
	ChainFailures   int       `json:"chain_failures"`
	Discovered      int       `json:"discovered"`
	Scored          int       `json:"scored"`
	Skipped         int       `json:"skipped"`
	Degraded        int       `json:"degraded"`
	Qualified       int       `json:"qualified"`
	Persisted       int       `json:"persisted"`
	PersistFailures int       `json:"persist_failures"`
	AvgScore        float64   `json:"avg_score"`
	Error           string    `json:"error,omitempty"`
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status  string   `json:"status"`
	Uptime  string   `json:"uptime"`
	Running bool     `json:"running"`
	Runs    int      `json:"runs"`
	LastRun *LastRun `json:"last_run,omitempty"`
}

// Snapshot returns the current status.
func (t *Tracker) Snapshot() StatusResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	resp := StatusResponse{
		Status:  "running",
		Uptime:  t.now().Sub(t.started).Truncate(time.Second).String(),
		Running: t.running,
		Runs:    t.runs,
	}
	if t.runs == 0 {
		return resp
	}

	last := &LastRun{At: t.lastRunAt, Error: t.lastError}
	if r := t.lastResult; r != nil {
		last.Message = r.Status()
		last.Chains = r.Chains
		last.ChainFailures = r.ChainFailures
		last.Discovered = r.Discovered
		last.Scored = r.Scored
		last.Skipped = r.Skipped
		last.Degraded = r.Degraded
		last.Qualified = r.Qualified
		last.Persisted = r.Persisted
		last.PersistFailures = r.PersistFailures
		last.AvgScore = r.Summary.AvgScore
	}
	resp.LastRun = last
	return resp
}
