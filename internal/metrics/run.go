package metrics

import (
	"sync"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/revision"
)

// Run statuses, matching the persisted run status
const (
	RunStatusPassed   = "passed"
	RunStatusDegraded = "degraded"
	RunStatusFailed   = "failed"
)

// RunOutcome summarizes one pipeline run for the metrics backends
type RunOutcome struct {
	Status         string
	Passed         bool
	AudioAvailable bool
	DirectorRounds int
	ScriptRounds   int
	FailedAttempts int
	Duration       time.Duration

	// From the run's progress events
	FailedAttemptsByStage map[string]int
	MusicDegraded         bool
	Heartbeats            int
}

// RunCollector counts what happened during a run from its progress events.
// It is attached to the loops as one more observer.
type RunCollector struct {
	mu             sync.Mutex
	failedAttempts map[string]int
	degraded       bool
	heartbeats     int
}

func NewRunCollector() *RunCollector {
	return &RunCollector{failedAttempts: make(map[string]int)}
}

func (c *RunCollector) OnEvent(e revision.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Type {
	case revision.EventAttemptFailed:
		c.failedAttempts[e.Stage]++
	case revision.EventMusicDegraded:
		c.degraded = true
	case revision.EventHeartbeat:
		c.heartbeats++
	}
}

// Fill copies the collected counts into outcome
func (c *RunCollector) Fill(outcome *RunOutcome) {
	outcome.FailedAttempts = c.FailedAttempts()
	outcome.FailedAttemptsByStage = c.FailedAttemptsByStage()
	outcome.MusicDegraded = c.Degraded()
	outcome.Heartbeats = c.Heartbeats()
}

// FailedAttempts returns the number of rejected attempts across all stages
func (c *RunCollector) FailedAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.failedAttempts {
		total += n
	}
	return total
}

// FailedAttemptsByStage returns a copy of the per-stage failure counts
func (c *RunCollector) FailedAttemptsByStage() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.failedAttempts))
	for k, v := range c.failedAttempts {
		out[k] = v
	}
	return out
}

func (c *RunCollector) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

func (c *RunCollector) Heartbeats() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heartbeats
}
