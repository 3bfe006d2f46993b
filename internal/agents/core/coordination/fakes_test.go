package coordination

import (
	"context"
	"fmt"
	"sync"

	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/revision"
)

type plannerFunc func(ctx context.Context, req models.PlanRequest) (any, error)

func (f plannerFunc) GenerateCreativePlan(ctx context.Context, req models.PlanRequest) (any, error) {
	return f(ctx, req)
}

type visualFunc func(ctx context.Context, req models.VisualRequest) (any, error)

func (f visualFunc) GenerateVisualScript(ctx context.Context, req models.VisualRequest) (any, error) {
	return f(ctx, req)
}

type musicFunc func(ctx context.Context, req models.MusicRequest) (any, error)

func (f musicFunc) GenerateMusic(ctx context.Context, req models.MusicRequest) (any, error) {
	return f(ctx, req)
}

type renderFunc func(ctx context.Context, req models.RenderPlanRequest) (any, error)

func (f renderFunc) GenerateRenderPlan(ctx context.Context, req models.RenderPlanRequest) (any, error) {
	return f(ctx, req)
}

type directorFunc func(ctx context.Context, req models.CreativeReviewRequest) (any, error)

func (f directorFunc) ReviewCreativeAssets(ctx context.Context, req models.CreativeReviewRequest) (any, error) {
	return f(ctx, req)
}

type narrativeFunc func(ctx context.Context, req models.ScriptReviewRequest) (any, error)

func (f narrativeFunc) ReviewRenderPlan(ctx context.Context, req models.ScriptReviewRequest) (any, error) {
	return f(ctx, req)
}

type memoryStore struct {
	mu       sync.Mutex
	runs     map[string]*models.RunRecord
	rounds   []models.ReviewRoundRecord
	finished map[string]models.RunUpdate
}

func newMemoryStore() *memoryStore {
	return &memoryStore{runs: map[string]*models.RunRecord{}, finished: map[string]models.RunUpdate{}}
}

func (s *memoryStore) Create(_ context.Context, run *models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *memoryStore) AppendRounds(_ context.Context, rounds []models.ReviewRoundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds = append(s.rounds, rounds...)
	return nil
}

func (s *memoryStore) Finish(_ context.Context, id string, update models.RunUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished[id] = update
	return nil
}

func testPhotos() []models.Photo {
	return []models.Photo{{Ref: "p1", URI: "file:///harbor.jpg"}, {Ref: "p2", URI: "file:///boat.jpg"}}
}

func testBrief() models.NarrativeBrief {
	return models.NarrativeBrief{
		Emotion: models.EmotionalIntent{CoreEmotion: "nostalgia", Tone: "warm", NarrativeArc: "departure and return"},
		Photos: []models.PhotoNote{
			{Ref: "p1", Weight: 0.6, Role: "opening", Analysis: "harbor at dawn"},
			{Ref: "p2", Weight: 0.4, Role: "closing", Analysis: "boat at sea"},
		},
	}
}

func testPlan(totalMs int) models.CreativePlan {
	return models.CreativePlan{
		Arc: models.NarrativeArc{Setup: "harbor", Development: "leaving", Climax: "open water", Resolution: "return"},
		VisualDirection: models.VisualDirection{
			Style: "film", Pacing: models.PacingModerate, TransitionTone: "soft", SubtitleStyle: "serif",
		},
		MusicIntent: models.MusicIntent{
			MoodKeywords:    []string{"nostalgic"},
			BPMTrend:        models.BPMSteady,
			KeyMoments:      []models.KeyMoment{},
			Instrumentation: []string{"piano"},
			TotalDurationMs: totalMs,
		},
		AlignmentPoints: []models.AlignmentPoint{},
	}
}

func testScenes(durations ...float64) models.ScenePlan {
	refs := []string{"p1", "p2"}
	plan := models.ScenePlan{VideoSpec: models.DefaultVideoSpec()}
	for i, d := range durations {
		plan.Scenes = append(plan.Scenes, models.Scene{
			ID:                fmt.Sprintf("s%d", i+1),
			PhotoRef:          refs[i%len(refs)],
			Subtitle:          "a quiet morning",
			SubtitlePlacement: models.PlacementBottom,
			DurationSec:       d,
			Transition:        models.Transition{Type: models.TransitionCut},
		})
	}
	return plan
}

func testMusic(totalSec float64) *models.MusicComposition {
	music := *revision.SilentComposition(totalSec)
	music.Tracks[0].Notes = []models.Note{{Pitch: 60, StartSec: 0, DurationSec: 1, Velocity: 90}}
	return &music
}
