package revision

import (
	"context"
	"sync"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

type fakeVisual struct {
	mu    sync.Mutex
	calls []models.VisualRequest
	fn    func(call int, req models.VisualRequest) (any, error)
}

func (f *fakeVisual) GenerateVisualScript(_ context.Context, req models.VisualRequest) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	return f.fn(n, req)
}

type fakeMusic struct {
	mu    sync.Mutex
	calls []models.MusicRequest
	fn    func(call int, req models.MusicRequest) (any, error)
}

func (f *fakeMusic) GenerateMusic(_ context.Context, req models.MusicRequest) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	return f.fn(n, req)
}

type fakeDirector struct {
	mu    sync.Mutex
	calls []models.CreativeReviewRequest
	fn    func(call int, req models.CreativeReviewRequest) (any, error)
}

func (f *fakeDirector) ReviewCreativeAssets(_ context.Context, req models.CreativeReviewRequest) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	return f.fn(n, req)
}

type fakeRender struct {
	mu    sync.Mutex
	calls []models.RenderPlanRequest
	fn    func(call int, req models.RenderPlanRequest) (any, error)
}

func (f *fakeRender) GenerateRenderPlan(_ context.Context, req models.RenderPlanRequest) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	return f.fn(n, req)
}

type fakeNarrative struct {
	mu    sync.Mutex
	calls []models.ScriptReviewRequest
	fn    func(call int, req models.ScriptReviewRequest) (any, error)
}

func (f *fakeNarrative) ReviewRenderPlan(_ context.Context, req models.ScriptReviewRequest) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	return f.fn(n, req)
}

func testPhotos() []models.Photo {
	return []models.Photo{
		{Ref: "p1", URI: "file:///photos/harbor.jpg"},
		{Ref: "p2", URI: "file:///photos/boat.jpg"},
	}
}

func testBrief() models.NarrativeBrief {
	return models.NarrativeBrief{
		Emotion: models.EmotionalIntent{CoreEmotion: "nostalgia", Tone: "warm", NarrativeArc: "departure and return"},
		Photos: []models.PhotoNote{
			{Ref: "p1", Weight: 0.6, Role: "opening", Analysis: "harbor at dawn"},
			{Ref: "p2", Weight: 0.4, Role: "closing", Analysis: "boat on open water"},
		},
	}
}

func testPlan() models.CreativePlan {
	return models.CreativePlan{
		Arc: models.NarrativeArc{Setup: "harbor", Development: "leaving", Climax: "open water", Resolution: "return"},
		VisualDirection: models.VisualDirection{
			Style: "film", Pacing: models.PacingModerate, TransitionTone: "soft", SubtitleStyle: "serif",
		},
		MusicIntent: models.MusicIntent{
			MoodKeywords:    []string{"nostalgic"},
			BPMTrend:        models.BPMSteady,
			KeyMoments:      []models.KeyMoment{{TimestampMs: 15000, Description: "swell"}},
			Instrumentation: []string{"piano"},
			TotalDurationMs: 30000,
		},
		AlignmentPoints: []models.AlignmentPoint{{TimestampMs: 15000, VisualCue: "boat", MusicCue: "swell"}},
	}
}

func testRules() contracts.Rules {
	return contracts.NewRules(models.DefaultVideoSpec(), 30, []string{"p1", "p2"})
}

func scenes(durations ...float64) models.ScenePlan {
	refs := []string{"p1", "p2"}
	plan := models.ScenePlan{VideoSpec: models.DefaultVideoSpec()}
	for i, d := range durations {
		plan.Scenes = append(plan.Scenes, models.Scene{
			ID:                string(rune('a' + i)),
			PhotoRef:          refs[i%len(refs)],
			Subtitle:          "",
			SubtitlePlacement: models.PlacementBottom,
			DurationSec:       d,
			Transition:        models.Transition{Type: models.TransitionCut},
		})
	}
	return plan
}

func goodVisual() models.VisualScript {
	return models.VisualScript{ScenePlan: scenes(12.5, 17.5)}
}

// badVisual sums to 29s, which the scene plan contract rejects
func badVisual() models.VisualScript {
	return models.VisualScript{ScenePlan: scenes(12.5, 16.5)}
}

func goodRender() models.RenderPlan {
	return models.RenderPlan{ScenePlan: scenes(10, 10, 10)}
}

func goodMusic() models.MusicComposition {
	m := *SilentComposition(30)
	for i := range m.Tracks {
		m.Tracks[i].Notes = []models.Note{
			{Pitch: 48 + i, StartSec: 0, DurationSec: 4, Velocity: 80},
			{Pitch: 50 + i, StartSec: 4, DurationSec: 4, Velocity: 80},
		}
	}
	return m
}

func directorVerdict(passed bool, changes ...models.TargetedChange) models.DirectorVerdict {
	return models.DirectorVerdict{
		Passed:          passed,
		Summary:         "round summary",
		Issues:          []models.TargetedIssue{},
		RequiredChanges: append([]models.TargetedChange{}, changes...),
	}
}

func reviewVerdict(passed bool, changes ...string) models.ReviewVerdict {
	return models.ReviewVerdict{
		Passed:          passed,
		Summary:         "round summary",
		Issues:          []models.ReviewIssue{},
		RequiredChanges: append([]string{}, changes...),
	}
}

func visualChange(text string) models.TargetedChange {
	return models.TargetedChange{Target: models.TargetVisual, Instruction: text}
}

func musicChange(text string) models.TargetedChange {
	return models.TargetedChange{Target: models.TargetMusic, Instruction: text}
}

func alwaysVisual(v models.VisualScript) *fakeVisual {
	return &fakeVisual{fn: func(int, models.VisualRequest) (any, error) { return v, nil }}
}

func alwaysMusic(m models.MusicComposition) *fakeMusic {
	return &fakeMusic{fn: func(int, models.MusicRequest) (any, error) { return m, nil }}
}

func directorInput() DirectorInput {
	return DirectorInput{Brief: testBrief(), Plan: testPlan(), Photos: testPhotos(), Rules: testRules()}
}

func scriptInput() ScriptInput {
	return ScriptInput{
		Brief:     testBrief(),
		Photos:    testPhotos(),
		VideoSpec: models.DefaultVideoSpec(),
		Rules:     testRules(),
	}
}
