package contracts

import (
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

func scene(id, ref string, durationSec float64) map[string]any {
	return map[string]any{
		"id":                id,
		"photoRef":          ref,
		"subtitle":          "a quiet morning",
		"subtitlePlacement": "bottom",
		"durationSec":       durationSec,
		"transition":        map[string]any{"type": "fade", "durationSec": 0.5},
		"effect":            map[string]any{"startScale": 1.0, "endScale": 1.1, "pan": "left"},
	}
}

func scenePlan(scenes ...map[string]any) map[string]any {
	list := make([]any, len(scenes))
	for i, s := range scenes {
		list[i] = s
	}
	return map[string]any{
		"videoSpec": map[string]any{"width": 1080.0, "height": 1920.0, "fps": 30.0},
		"scenes":    list,
	}
}

func validScenePlan() map[string]any {
	return scenePlan(scene("s1", "p1", 12.5), scene("s2", "p2", 17.5))
}

func sceneAt(plan map[string]any, i int) map[string]any {
	return plan["scenes"].([]any)[i].(map[string]any)
}

func standardRules() Rules {
	return NewRules(models.DefaultVideoSpec(), 30, []string{"p1", "p2"})
}

func notes(n ...[3]float64) []any {
	out := make([]any, len(n))
	for i, v := range n {
		out[i] = map[string]any{"pitch": v[0], "startSec": v[1], "durationSec": v[2], "velocity": 90.0}
	}
	return out
}

func validMusic() map[string]any {
	tracks := make([]any, 0, len(models.CanonicalTracks))
	for _, slot := range models.CanonicalTracks {
		tracks = append(tracks, map[string]any{
			"name":    slot.Name,
			"channel": float64(slot.Channel),
			"program": float64(slot.Program),
			"notes":   notes([3]float64{60, 0, 2}, [3]float64{64, 2, 2}, [3]float64{67, 28, 2}),
		})
	}
	return map[string]any{
		"timeSignature":    map[string]any{"numerator": 4.0, "denominator": 4.0},
		"bpm":              90.0,
		"totalDurationSec": 30.0,
		"tracks":           tracks,
	}
}

func trackAt(music map[string]any, i int) map[string]any {
	return music["tracks"].([]any)[i].(map[string]any)
}

func validPlan() map[string]any {
	return map[string]any{
		"arc": map[string]any{
			"setup":       "two friends at the harbor",
			"development": "the boat leaves",
			"climax":      "open water at dawn",
			"resolution":  "back on the pier",
		},
		"visualDirection": map[string]any{
			"style":          "warm film grain",
			"pacing":         "moderate",
			"transitionTone": "soft",
			"subtitleStyle":  "lowercase serif",
		},
		"musicIntent": map[string]any{
			"moodKeywords":    []any{"nostalgic", "hopeful"},
			"bpmTrend":        "rising",
			"keyMoments":      []any{map[string]any{"timestampMs": 15000.0, "description": "drums enter"}},
			"instrumentation": []any{"piano", "strings"},
			"totalDurationMs": 30000.0,
		},
		"alignmentPoints": []any{
			map[string]any{"timestampMs": 15000.0, "visualCue": "boat departs", "musicCue": "drums enter"},
		},
	}
}

func paths(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.FieldPath
	}
	return out
}
