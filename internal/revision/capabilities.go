package revision

import (
	"context"

	"github.com/Conceptual-Machines/reel-director/internal/models"
)

// Producers and reviewers return unvalidated output. Every result passes
// through internal/contracts before the loops use it, so an implementation
// may return a decoded JSON object, raw JSON bytes or a typed struct.

// CreativePlanner turns a brief into a creative plan
type CreativePlanner interface {
	GenerateCreativePlan(ctx context.Context, req models.PlanRequest) (any, error)
}

// VisualProducer writes the visual script
type VisualProducer interface {
	GenerateVisualScript(ctx context.Context, req models.VisualRequest) (any, error)
}

// MusicProducer composes the soundtrack
type MusicProducer interface {
	GenerateMusic(ctx context.Context, req models.MusicRequest) (any, error)
}

// RenderPlanProducer writes the merged render plan
type RenderPlanProducer interface {
	GenerateRenderPlan(ctx context.Context, req models.RenderPlanRequest) (any, error)
}

// CreativeReviewer judges a visual script and music pair against the plan
type CreativeReviewer interface {
	ReviewCreativeAssets(ctx context.Context, req models.CreativeReviewRequest) (any, error)
}

// ScriptReviewer judges a render plan against the brief
type ScriptReviewer interface {
	ReviewRenderPlan(ctx context.Context, req models.ScriptReviewRequest) (any, error)
}
