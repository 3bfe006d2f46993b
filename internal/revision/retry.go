package revision

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Attempt ceilings
const (
	DefaultGenerationAttempts  = 3
	DefaultRenderExtraAttempts = 2
	DefaultReviewAttempts      = 2
)

// AgentCallError wraps a failure of the producer or reviewer call itself
// (transport, auth, quota), as opposed to a rejected output
type AgentCallError struct {
	Producer string
	Attempt  int
	Err      error
}

func (e *AgentCallError) Error() string {
	return fmt.Sprintf("%s call failed on attempt %d: %v", e.Producer, e.Attempt, e.Err)
}

func (e *AgentCallError) Unwrap() error {
	return e.Err
}

// AttemptsExhaustedError is returned when every attempt failed
type AttemptsExhaustedError struct {
	Producer string
	Attempts int
	Reasons  []string
}

func (e *AttemptsExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts:\n%s", e.Producer, e.Attempts, strings.Join(e.Reasons, "\n"))
}

// AttemptPolicy configures one RunAttempts call
type AttemptPolicy struct {
	Producer    string
	MaxAttempts int
	// Constraints are restated on every retry, ahead of the failure reminders
	Constraints []string
	// OnFailure is called after each failed attempt
	OnFailure func(Attempt)
}

// Attempt records one generate and validate cycle
type Attempt struct {
	Number   int
	Notes    []string
	Err      error
	Duration time.Duration
}

// Failed reports whether the attempt was rejected
func (a Attempt) Failed() bool {
	return a.Err != nil
}

// RunAttempts calls call until validate accepts its output or the policy's
// attempt ceiling is reached. The first attempt sees base. Each later
// attempt sees base, then the policy constraints, then one reminder per
// earlier failure quoting that failure's error text.
//
// Context cancellation stops the loop immediately and is returned as is.
func RunAttempts[T any](
	ctx context.Context,
	policy AttemptPolicy,
	base Notes,
	call func(ctx context.Context, notes Notes) (any, error),
	validate func(v any) (T, error),
) (T, []Attempt, error) {
	var zero T
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		attempts  []Attempt
		reminders Notes
		reasons   []string
	)
	for n := 1; n <= maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return zero, attempts, fmt.Errorf("%s cancelled before attempt %d: %w", policy.Producer, n, err)
		}

		notes := base
		if n > 1 {
			notes = base.Append(policy.Constraints...).Concat(reminders)
		}

		started := time.Now()
		out, err := call(ctx, notes)
		if err == nil {
			var result T
			result, err = validate(out)
			if err == nil {
				attempts = append(attempts, Attempt{Number: n, Notes: notes.Items(), Duration: time.Since(started)})
				return result, attempts, nil
			}
		} else {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, attempts, fmt.Errorf("%s cancelled during attempt %d: %w", policy.Producer, n, ctxErr)
			}
			err = &AgentCallError{Producer: policy.Producer, Attempt: n, Err: err}
		}

		attempt := Attempt{Number: n, Notes: notes.Items(), Err: err, Duration: time.Since(started)}
		attempts = append(attempts, attempt)
		reasons = append(reasons, fmt.Sprintf("attempt %d: %v", n, err))
		reminders = reminders.Append(reminder(n, err))
		if policy.OnFailure != nil {
			policy.OnFailure(attempt)
		}
	}

	return zero, attempts, &AttemptsExhaustedError{Producer: policy.Producer, Attempts: maxAttempts, Reasons: reasons}
}

func reminder(n int, err error) string {
	if _, ok := err.(*AgentCallError); ok {
		return fmt.Sprintf("Attempt %d did not return a usable response (%v). Return the complete output again.", n, err)
	}
	return fmt.Sprintf("Attempt %d was rejected. Fix every problem listed below and return the complete output again.\n%s", n, err.Error())
}
