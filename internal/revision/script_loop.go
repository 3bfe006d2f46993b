package revision

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

// DefaultScriptRounds is the narrative review budget
const DefaultScriptRounds = 3

// ScriptLoop produces the render plan and has it checked for narrative
// fidelity. A failing review's required changes become the next round's
// notes as they are, replacing the previous round's notes.
type ScriptLoop struct {
	Producer RenderPlanProducer
	Reviewer ScriptReviewer
	Observer Observer

	MaxRounds         int
	RenderAttempts    int
	ReviewAttempts    int
	HeartbeatInterval time.Duration
}

// ScriptInput is everything one run of the loop works from
type ScriptInput struct {
	Brief     models.NarrativeBrief
	Photos    []models.Photo
	VideoSpec models.VideoSpec
	Rules     contracts.Rules
	Reference *models.VisualScript
}

// ScriptRound keeps what went into and came out of one round
type ScriptRound struct {
	Round          int
	Notes          []string
	RenderPlan     *models.RenderPlan
	Verdict        *models.ReviewVerdict
	RenderAttempts []Attempt
	ReviewAttempts []Attempt
}

// ScriptResult is the outcome of the loop
type ScriptResult struct {
	RenderPlan *models.RenderPlan
	Log        models.ReviewLog
	Rounds     []ScriptRound
	Passed     bool
	Warning    string
}

func (l *ScriptLoop) maxRounds() int {
	if l.MaxRounds > 0 {
		return l.MaxRounds
	}
	return DefaultScriptRounds
}

func (l *ScriptLoop) renderAttempts() int {
	if l.RenderAttempts > 0 {
		return l.RenderAttempts
	}
	return 1 + DefaultRenderExtraAttempts
}

func (l *ScriptLoop) reviewAttempts() int {
	if l.ReviewAttempts > 0 {
		return l.ReviewAttempts
	}
	return DefaultReviewAttempts
}

// Run executes rounds until the reviewer passes the render plan or the
// budget runs out. Running out is not an error.
func (l *ScriptLoop) Run(ctx context.Context, in ScriptInput) (*ScriptResult, error) {
	maxRounds := l.maxRounds()
	logBuilder := NewReviewLogBuilder()

	var (
		notes  Notes
		rounds []ScriptRound
	)
	for round := 1; round <= maxRounds; round++ {
		log.Printf("📝 Script review round %d/%d", round, maxRounds)
		emit(l.Observer, Event{Type: EventRoundStarted, Loop: LoopScript, Round: round, MaxRounds: maxRounds})

		current := ScriptRound{Round: round, Notes: notes.Items()}

		plan, attempts, err := runStage(ctx, l.stage(StageRender, round, maxRounds, false),
			AttemptPolicy{MaxAttempts: l.renderAttempts(), Constraints: scenePlanConstraints(in.Rules)},
			notes,
			func(ctx context.Context, notes Notes) (any, error) {
				return l.Producer.GenerateRenderPlan(ctx, models.RenderPlanRequest{
					Brief:     in.Brief,
					Photos:    in.Photos,
					VideoSpec: in.VideoSpec,
					Notes:     notes.Items(),
					Reference: in.Reference,
				})
			},
			func(v any) (*models.RenderPlan, error) { return contracts.ValidateRenderPlan(v, in.Rules) },
			nil,
		)
		current.RenderAttempts = attempts
		if err != nil {
			return nil, fmt.Errorf("script round %d: render plan: %w", round, err)
		}
		current.RenderPlan = plan

		verdict, attempts, err := runStage(ctx, l.stage(StageNarrative, round, maxRounds, true),
			AttemptPolicy{MaxAttempts: l.reviewAttempts(), Constraints: verdictConstraints(false)},
			Notes{},
			func(ctx context.Context, notes Notes) (any, error) {
				return l.Reviewer.ReviewRenderPlan(ctx, models.ScriptReviewRequest{
					Brief:      in.Brief,
					RenderPlan: *plan,
					Round:      round,
					MaxRounds:  maxRounds,
					Notes:      notes.Items(),
				})
			},
			contracts.ValidateReviewVerdict,
			func(v *models.ReviewVerdict) bool { return v.Passed },
		)
		current.ReviewAttempts = attempts
		if err != nil {
			return nil, fmt.Errorf("script round %d: narrative review: %w", round, err)
		}
		current.Verdict = verdict

		issues, changes := verdict.Targeted(models.TargetRender)
		logBuilder.AddRound(models.ReviewRound{
			Round:           round,
			Passed:          verdict.Passed,
			Summary:         verdict.Summary,
			Issues:          issues,
			RequiredChanges: changes,
		})
		rounds = append(rounds, current)

		if verdict.Passed {
			log.Printf("✅ Script review passed on round %d", round)
			logBuilder.MarkPassed()
			return l.result(rounds, logBuilder, true)
		}

		notes = NewNotes(verdict.RequiredChanges...)
		log.Printf("🔁 Script review round %d failed: %d change(s)", round, notes.Len())
	}

	warning := fmt.Sprintf("script review did not pass within %d rounds", maxRounds)
	log.Printf("⚠️  %s", warning)
	logBuilder.Warn(warning)
	return l.result(rounds, logBuilder, false)
}

func (l *ScriptLoop) stage(name string, round, maxRounds int, reviewer bool) stageRun {
	return stageRun{
		observer:  l.Observer,
		heartbeat: l.HeartbeatInterval,
		loop:      LoopScript,
		stage:     name,
		round:     round,
		maxRounds: maxRounds,
		reviewer:  reviewer,
	}
}

func (l *ScriptLoop) result(rounds []ScriptRound, b *ReviewLogBuilder, passed bool) (*ScriptResult, error) {
	reviewLog, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("script review log: %w", err)
	}
	return &ScriptResult{
		RenderPlan: rounds[len(rounds)-1].RenderPlan,
		Log:        reviewLog,
		Rounds:     rounds,
		Passed:     passed,
		Warning:    reviewLog.Warning,
	}, nil
}
