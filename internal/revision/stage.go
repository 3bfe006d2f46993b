package revision

import (
	"context"
	"fmt"
	"log"
	"time"
)

// stageRun describes one producer or reviewer step inside a round
type stageRun struct {
	observer  Observer
	heartbeat time.Duration
	loop      string
	stage     string
	round     int
	maxRounds int
	reviewer  bool
}

func (s stageRun) event(t EventType) Event {
	return Event{Type: t, Loop: s.loop, Stage: s.stage, Round: s.round, MaxRounds: s.maxRounds}
}

// runStage wraps RunAttempts with start and done events, attempt_failed
// events and a heartbeat around every call. For reviewers, outcome reports
// the verdict on the done event.
func runStage[T any](
	ctx context.Context,
	s stageRun,
	policy AttemptPolicy,
	base Notes,
	call func(ctx context.Context, notes Notes) (any, error),
	validate func(v any) (T, error),
	outcome func(T) bool,
) (T, []Attempt, error) {
	startType, doneType := EventProducerStarted, EventProducerDone
	if s.reviewer {
		startType, doneType = EventReviewerStarted, EventReviewerDone
	}

	started := time.Now()
	emit(s.observer, s.event(startType))

	policy.Producer = s.stage
	policy.OnFailure = func(a Attempt) {
		e := s.event(EventAttemptFailed)
		e.Attempt = a.Number
		e.Message = fmt.Sprintf("%s attempt %d/%d failed: %v", s.stage, a.Number, policy.MaxAttempts, a.Err)
		emit(s.observer, e)
	}

	attempt := 0
	result, attempts, err := RunAttempts(ctx, policy, base, func(ctx context.Context, notes Notes) (any, error) {
		attempt++
		hb := s.event(EventHeartbeat)
		hb.Attempt = attempt
		ctx = ContextWithProgress(ctx, s.observer, hb)
		return WithHeartbeat(ctx, s.observer, s.heartbeat, hb, func(ctx context.Context) (any, error) {
			return call(ctx, notes)
		})
	}, validate)

	done := s.event(doneType)
	done.Attempt = len(attempts)
	done.ElapsedMs = time.Since(started).Milliseconds()
	switch {
	case err != nil:
		done.Passed = boolPtr(false)
	case outcome != nil:
		done.Passed = boolPtr(outcome(result))
	}
	if err != nil {
		done.Message = err.Error()
		log.Printf("❌ %s round %d: %s gave up after %d attempt(s)", s.loop, s.round, s.stage, len(attempts))
	} else {
		log.Printf("✅ %s round %d: %s accepted on attempt %d (%dms)", s.loop, s.round, s.stage, len(attempts), done.ElapsedMs)
	}
	emit(s.observer, done)

	return result, attempts, err
}
