package revision

import (
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/logger"
)

// EventType identifies a progress event
type EventType string

const (
	EventRoundStarted    EventType = "round_started"
	EventProducerStarted EventType = "producer_started"
	EventProducerDone    EventType = "producer_done"
	EventReviewerStarted EventType = "reviewer_started"
	EventReviewerDone    EventType = "reviewer_done"
	EventHeartbeat       EventType = "heartbeat"
	EventAttemptFailed   EventType = "attempt_failed"
	EventMusicDegraded   EventType = "music_degraded"
	EventModelProgress   EventType = "model_progress"
)

// Loop names
const (
	LoopPlan     = "plan"
	LoopDirector = "director"
	LoopScript   = "script"
)

// Stage names used in events and errors
const (
	StagePlan      = "plan"
	StageVisual    = "visual"
	StageMusic     = "music"
	StageRender    = "render"
	StageDirector  = "director"
	StageNarrative = "narrative"
)

// Event is an informational progress report. Nothing in the loops
// depends on an event being delivered.
type Event struct {
	Type      EventType `json:"type"`
	Loop      string    `json:"loop,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Round     int       `json:"round,omitempty"`
	MaxRounds int       `json:"maxRounds,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	Passed    *bool     `json:"passed,omitempty"`
	Message   string    `json:"message,omitempty"`
	ElapsedMs int64     `json:"elapsedMs,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Observer receives progress events. Heartbeats arrive from their own
// goroutine, so implementations must be safe for concurrent use.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) {
	f(e)
}

// Observers fans an event out to every member in order
type Observers []Observer

func (o Observers) OnEvent(e Event) {
	for _, obs := range o {
		notify(obs, e)
	}
}

// notify delivers one event, recovering from observer panics
func notify(obs Observer, e Event) {
	if obs == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  Observer panicked on %s event: %v\n%s", e.Type, r, debug.Stack())
		}
	}()
	obs.OnEvent(e)
}

// emit stamps and delivers an event
func emit(obs Observer, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	notify(obs, e)
}

func boolPtr(b bool) *bool {
	return &b
}

// LogObserver writes events through the structured logger
type LogObserver struct {
	Fields logger.Fields
}

func (l LogObserver) OnEvent(e Event) {
	fields := logger.Fields{"event": string(e.Type)}
	for k, v := range l.Fields {
		fields[k] = v
	}
	if e.Loop != "" {
		fields["loop"] = e.Loop
	}
	if e.Stage != "" {
		fields["stage"] = e.Stage
	}
	if e.Round > 0 {
		fields["round"] = e.Round
	}
	if e.Attempt > 0 {
		fields["attempt"] = e.Attempt
	}
	if e.Passed != nil {
		fields["passed"] = *e.Passed
	}
	if e.ElapsedMs > 0 {
		fields["elapsed_ms"] = e.ElapsedMs
	}

	switch e.Type {
	case EventHeartbeat:
		logger.Debug("Still working", fields)
	case EventModelProgress:
		logger.Debug(e.Message, fields)
	case EventAttemptFailed, EventMusicDegraded:
		logger.Warn(e.Message, fields)
	default:
		msg := e.Message
		if msg == "" {
			msg = string(e.Type)
		}
		logger.Info(msg, fields)
	}
}

// Recorder keeps every event it sees. It is used by tests and by the
// HTTP layer to replay progress for late subscribers.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of type t were recorded
func (r *Recorder) Count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}
