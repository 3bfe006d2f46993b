package revision

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultHeartbeatInterval is how often a long call reports liveness
const DefaultHeartbeatInterval = 5 * time.Second

// WithHeartbeat runs fn while a ticker emits heartbeat events built from base.
// The ticker shares fn's cancellation scope and has always stopped by the
// time WithHeartbeat returns, including when fn panics. Observer failures
// never reach fn.
func WithHeartbeat[T any](ctx context.Context, obs Observer, interval time.Duration, base Event, fn func(ctx context.Context) (T, error)) (T, error) {
	if obs == nil || interval <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	var g errgroup.Group
	defer func() {
		cancel()
		_ = g.Wait()
	}()

	start := time.Now()
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				// a tick racing the cancel must not leak past the call
				if ctx.Err() != nil {
					return nil
				}
				e := base
				e.Type = EventHeartbeat
				e.ElapsedMs = now.Sub(start).Milliseconds()
				e.Timestamp = now
				notify(obs, e)
			}
		}
	})

	return fn(ctx)
}
