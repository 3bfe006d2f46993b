package revision

import (
	"context"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

// PlanStage produces the creative plan both loops work from
type PlanStage struct {
	Planner  CreativePlanner
	Observer Observer

	Attempts          int
	HeartbeatInterval time.Duration
}

// PlanInput is what the planner works from. A zero TargetDurationSec lets
// the planner choose the length.
type PlanInput struct {
	Brief             models.NarrativeBrief
	Photos            []models.Photo
	TargetDurationSec float64
	DurationEpsilon   float64
}

// Run generates and validates the plan, retrying rejected outputs. Every
// failure here is fatal to the pipeline.
func (p *PlanStage) Run(ctx context.Context, in PlanInput) (*models.CreativePlan, []Attempt, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultGenerationAttempts
	}
	rules := contracts.Rules{ExpectedDurationSec: in.TargetDurationSec, DurationEpsilon: in.DurationEpsilon}

	s := stageRun{
		observer:  p.Observer,
		heartbeat: p.HeartbeatInterval,
		loop:      LoopPlan,
		stage:     StagePlan,
		round:     1,
		maxRounds: 1,
	}
	plan, history, err := runStage(ctx, s,
		AttemptPolicy{MaxAttempts: attempts, Constraints: planConstraints(in.TargetDurationSec)},
		Notes{},
		func(ctx context.Context, notes Notes) (any, error) {
			return p.Planner.GenerateCreativePlan(ctx, models.PlanRequest{Brief: in.Brief, Photos: in.Photos, Notes: notes.Items()})
		},
		func(v any) (*models.CreativePlan, error) { return contracts.ValidateCreativePlan(v, rules) },
		nil,
	)
	if err != nil {
		return nil, history, fmt.Errorf("creative plan: %w", err)
	}
	return plan, history, nil
}

func planConstraints(targetSec float64) []string {
	out := []string{"Every keyMoments and alignmentPoints timestampMs must be between 0 and totalDurationMs."}
	if targetSec > 0 {
		out = append([]string{fmt.Sprintf("musicIntent.totalDurationMs must be exactly %.0f.", targetSec*1000)}, out...)
	}
	return out
}
