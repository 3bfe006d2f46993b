package revision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

// DefaultDirectorRounds is the creative review budget
const DefaultDirectorRounds = 3

// Issue category recorded when music is replaced by the silent placeholder
const CategoryAudioUnavailable = "audio_unavailable"

// DirectorLoop negotiates a visual script and a music composition with the
// creative director. Producers run one after the other, each inside its own
// retry; failing reviews send targeted notes back to the producer they
// concern.
type DirectorLoop struct {
	Visual   VisualProducer
	Music    MusicProducer
	Reviewer CreativeReviewer
	Router   *NoteRouter
	Observer Observer

	MaxRounds          int
	GenerationAttempts int
	ReviewAttempts     int
	HeartbeatInterval  time.Duration
}

// DirectorInput is everything one run of the loop works from.
// Rules apply to the visual script; the music is held to the plan duration.
type DirectorInput struct {
	Brief  models.NarrativeBrief
	Plan   models.CreativePlan
	Photos []models.Photo
	Rules  contracts.Rules
}

// DirectorRound keeps what went into and came out of one round
type DirectorRound struct {
	Round          int
	VisualNotes    []string
	MusicNotes     []string
	Visual         *models.VisualScript
	Music          *models.MusicComposition
	AudioAvailable bool
	Verdict        *models.DirectorVerdict
	VisualAttempts []Attempt
	MusicAttempts  []Attempt
	ReviewAttempts []Attempt
}

// DirectorResult is the outcome of the loop. Passed false with a warning
// is a normal outcome carrying the last round's artifacts.
type DirectorResult struct {
	Visual         *models.VisualScript
	Music          *models.MusicComposition
	AudioAvailable bool
	Log            models.ReviewLog
	Rounds         []DirectorRound
	Passed         bool
	Warning        string
}

func (l *DirectorLoop) maxRounds() int {
	if l.MaxRounds > 0 {
		return l.MaxRounds
	}
	return DefaultDirectorRounds
}

func (l *DirectorLoop) generationAttempts() int {
	if l.GenerationAttempts > 0 {
		return l.GenerationAttempts
	}
	return DefaultGenerationAttempts
}

func (l *DirectorLoop) reviewAttempts() int {
	if l.ReviewAttempts > 0 {
		return l.ReviewAttempts
	}
	return DefaultReviewAttempts
}

func (l *DirectorLoop) router() *NoteRouter {
	if l.Router != nil {
		return l.Router
	}
	return NewNoteRouter(nil)
}

// Run executes rounds until the director passes the pair or the budget
// runs out. Errors are returned only when the visual producer or the
// reviewer cannot deliver, or ctx is done.
func (l *DirectorLoop) Run(ctx context.Context, in DirectorInput) (*DirectorResult, error) {
	maxRounds := l.maxRounds()
	router := l.router()
	durationSec := in.Plan.DurationSec()
	musicRules := contracts.Rules{ExpectedDurationSec: durationSec, DurationEpsilon: in.Rules.DurationEpsilon}

	var (
		visualNotes, musicNotes Notes
		rounds                  []DirectorRound
		placeholder             *models.MusicComposition
	)
	audioAvailable := true
	logBuilder := NewReviewLogBuilder()

	for round := 1; round <= maxRounds; round++ {
		log.Printf("🎬 Creative review round %d/%d", round, maxRounds)
		emit(l.Observer, Event{Type: EventRoundStarted, Loop: LoopDirector, Round: round, MaxRounds: maxRounds})

		current := DirectorRound{
			Round:       round,
			VisualNotes: visualNotes.Items(),
			MusicNotes:  musicNotes.Items(),
		}

		visual, attempts, err := runStage(ctx, l.stage(StageVisual, round, maxRounds, false),
			AttemptPolicy{MaxAttempts: l.generationAttempts(), Constraints: scenePlanConstraints(in.Rules)},
			visualNotes,
			func(ctx context.Context, notes Notes) (any, error) {
				return l.Visual.GenerateVisualScript(ctx, models.VisualRequest{
					Plan:   in.Plan,
					Photos: in.Photos,
					Notes:  notes.Items(),
				})
			},
			func(v any) (*models.VisualScript, error) { return contracts.ValidateVisualScript(v, in.Rules) },
			nil,
		)
		current.VisualAttempts = attempts
		if err != nil {
			return nil, fmt.Errorf("creative round %d: visual script: %w", round, err)
		}
		current.Visual = visual

		var degradedBy error
		if audioAvailable {
			music, attempts, err := runStage(ctx, l.stage(StageMusic, round, maxRounds, false),
				AttemptPolicy{MaxAttempts: l.generationAttempts(), Constraints: musicConstraints(durationSec)},
				musicNotes,
				func(ctx context.Context, notes Notes) (any, error) {
					return l.Music.GenerateMusic(ctx, models.MusicRequest{Plan: in.Plan, Notes: notes.Items()})
				},
				func(v any) (*models.MusicComposition, error) { return contracts.ValidateMusicComposition(v, musicRules) },
				nil,
			)
			current.MusicAttempts = attempts
			if err != nil {
				var exhausted *AttemptsExhaustedError
				if !errors.As(err, &exhausted) {
					return nil, fmt.Errorf("creative round %d: music: %w", round, err)
				}
				degradedBy = exhausted
				audioAvailable = false
				placeholder = SilentComposition(durationSec)
				music = placeholder

				msg := fmt.Sprintf("music unavailable after %d attempts; continuing visual-only with a silent track", exhausted.Attempts)
				logBuilder.Warn(msg)
				log.Printf("🔇 %s", msg)
				emit(l.Observer, Event{Type: EventMusicDegraded, Loop: LoopDirector, Stage: StageMusic,
					Round: round, MaxRounds: maxRounds, Message: msg})
			}
			current.Music = music
		} else {
			current.Music = placeholder
		}
		current.AudioAvailable = audioAvailable

		verdict, attempts, err := runStage(ctx, l.stage(StageDirector, round, maxRounds, true),
			AttemptPolicy{MaxAttempts: l.reviewAttempts(), Constraints: verdictConstraints(true)},
			Notes{},
			func(ctx context.Context, notes Notes) (any, error) {
				return l.Reviewer.ReviewCreativeAssets(ctx, models.CreativeReviewRequest{
					Brief:          in.Brief,
					Plan:           in.Plan,
					Visual:         *current.Visual,
					Music:          *current.Music,
					AudioAvailable: audioAvailable,
					Round:          round,
					MaxRounds:      maxRounds,
					Notes:          notes.Items(),
				})
			},
			contracts.ValidateDirectorVerdict,
			func(v *models.DirectorVerdict) bool { return v.Passed },
		)
		current.ReviewAttempts = attempts
		if err != nil {
			return nil, fmt.Errorf("creative round %d: director review: %w", round, err)
		}
		current.Verdict = verdict

		changes := router.Reclassify(verdict.RequiredChanges)
		logBuilder.AddRound(models.ReviewRound{
			Round:           round,
			Passed:          verdict.Passed,
			Summary:         verdict.Summary,
			Issues:          verdict.Issues,
			RequiredChanges: changes,
		})
		if degradedBy != nil {
			// AddRound just ran, so there is always a round to attach to
			_ = logBuilder.AddIssue(models.TargetedIssue{
				Target:      models.TargetMusic,
				Category:    CategoryAudioUnavailable,
				Description: degradedBy.Error(),
			})
		}
		rounds = append(rounds, current)

		if verdict.Passed {
			log.Printf("✅ Creative review passed on round %d", round)
			logBuilder.MarkPassed()
			return l.result(rounds, logBuilder, true)
		}

		visualChanges, musicChanges := splitByTarget(changes)
		visualNotes = visualNotes.Concat(visualChanges)
		musicNotes = musicNotes.Concat(musicChanges)
		log.Printf("🔁 Creative review round %d failed: %d visual, %d music change(s)",
			round, visualChanges.Len(), musicChanges.Len())
	}

	warning := fmt.Sprintf("creative review did not pass within %d rounds", maxRounds)
	log.Printf("⚠️  %s", warning)
	logBuilder.Warn(warning)
	return l.result(rounds, logBuilder, false)
}

func (l *DirectorLoop) stage(name string, round, maxRounds int, reviewer bool) stageRun {
	return stageRun{
		observer:  l.Observer,
		heartbeat: l.HeartbeatInterval,
		loop:      LoopDirector,
		stage:     name,
		round:     round,
		maxRounds: maxRounds,
		reviewer:  reviewer,
	}
}

func (l *DirectorLoop) result(rounds []DirectorRound, b *ReviewLogBuilder, passed bool) (*DirectorResult, error) {
	reviewLog, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("creative review log: %w", err)
	}
	last := rounds[len(rounds)-1]
	return &DirectorResult{
		Visual:         last.Visual,
		Music:          last.Music,
		AudioAvailable: last.AudioAvailable,
		Log:            reviewLog,
		Rounds:         rounds,
		Passed:         passed,
		Warning:        reviewLog.Warning,
	}, nil
}

// splitByTarget sorts already classified changes into per-producer notes
func splitByTarget(changes []models.TargetedChange) (visual, music Notes) {
	for _, c := range changes {
		switch c.Target {
		case models.TargetVisual:
			visual = visual.Append(c.Instruction)
		case models.TargetMusic:
			music = music.Append(c.Instruction)
		}
	}
	return visual, music
}
