package revision

import (
	"context"
)

type progressKey struct{}

type progressScope struct {
	observer Observer
	base     Event
}

// ContextWithProgress lets code running under ctx report model progress for
// the stage described by base. A nil observer leaves ctx unchanged.
func ContextWithProgress(ctx context.Context, obs Observer, base Event) context.Context {
	if obs == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, progressScope{observer: obs, base: base})
}

// ProgressEnabled reports whether anyone listens for progress under ctx
func ProgressEnabled(ctx context.Context) bool {
	_, ok := ctx.Value(progressKey{}).(progressScope)
	return ok
}

// ReportProgress emits a model_progress event for the stage running under
// ctx. It does nothing outside a stage.
func ReportProgress(ctx context.Context, message string) {
	scope, ok := ctx.Value(progressKey{}).(progressScope)
	if !ok {
		return
	}
	e := scope.base
	e.Type = EventModelProgress
	e.Message = message
	emit(scope.observer, e)
}
