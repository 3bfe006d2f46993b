package llm

import "sort"

// Schemas follow OpenAI strict mode: every property is listed in required,
// additionalProperties is false, and optional fields are typed as nullable.

const (
	midiNoteNumberMin = 0
	midiNoteNumberMax = 127
	velocityMin       = 1
	velocityMax       = 127
	bpmMin            = 40
	bpmMax            = 220
)

func object(properties map[string]any) map[string]any {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func str() map[string]any {
	return map[string]any{"type": "string"}
}

func enum(values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values}
}

func nullable(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	if t, ok := schema["type"].(string); ok {
		out["type"] = []any{t, "null"}
	}
	if values, ok := schema["enum"].([]string); ok {
		withNull := make([]any, 0, len(values)+1)
		for _, v := range values {
			withNull = append(withNull, v)
		}
		out["enum"] = append(withNull, nil)
	}
	return out
}

// GetCreativePlanSchema returns the JSON schema for the planner's creative plan
func GetCreativePlanSchema() map[string]any {
	timestamp := map[string]any{"type": "integer", "minimum": 0}
	return object(map[string]any{
		"arc": object(map[string]any{
			"setup":       str(),
			"development": str(),
			"climax":      str(),
			"resolution":  str(),
		}),
		"visualDirection": object(map[string]any{
			"style":          str(),
			"pacing":         enum("slow", "moderate", "fast", "dynamic"),
			"transitionTone": str(),
			"subtitleStyle":  str(),
		}),
		"musicIntent": object(map[string]any{
			"moodKeywords": arrayOf(str()),
			"bpmTrend":     enum("steady", "rising", "falling", "arc"),
			"keyMoments": arrayOf(object(map[string]any{
				"timestampMs": timestamp,
				"description": str(),
			})),
			"instrumentation": arrayOf(str()),
			"totalDurationMs": map[string]any{"type": "integer", "minimum": 1},
		}),
		"alignmentPoints": arrayOf(object(map[string]any{
			"timestampMs": timestamp,
			"visualCue":   str(),
			"musicCue":    str(),
		})),
	})
}

// GetScenePlanSchema returns the JSON schema shared by the visual script and the render plan
func GetScenePlanSchema() map[string]any {
	return object(map[string]any{
		"videoSpec": object(map[string]any{
			"width":  map[string]any{"type": "integer"},
			"height": map[string]any{"type": "integer"},
			"fps":    map[string]any{"type": "integer"},
		}),
		"scenes": arrayOf(object(map[string]any{
			"id":                str(),
			"photoRef":          str(),
			"subtitle":          str(),
			"subtitlePlacement": enum("top", "center", "bottom"),
			"durationSec":       map[string]any{"type": "number", "exclusiveMinimum": 0},
			"transition": object(map[string]any{
				"type":        enum("cut", "fade", "dissolve", "slide"),
				"durationSec": nullable(map[string]any{"type": "number", "minimum": 0}),
				"direction":   nullable(enum("left", "right", "up", "down")),
			}),
			"effect": nullable(object(map[string]any{
				"startScale": map[string]any{"type": "number"},
				"endScale":   map[string]any{"type": "number"},
				"pan":        enum("none", "left", "right", "up", "down"),
			})),
		})),
	})
}

// GetMusicCompositionSchema returns the JSON schema for the composer's four-track composition
func GetMusicCompositionSchema() map[string]any {
	note := object(map[string]any{
		"pitch":       map[string]any{"type": "integer", "minimum": midiNoteNumberMin, "maximum": midiNoteNumberMax},
		"startSec":    map[string]any{"type": "number", "minimum": 0},
		"durationSec": map[string]any{"type": "number", "exclusiveMinimum": 0},
		"velocity":    map[string]any{"type": "integer", "minimum": velocityMin, "maximum": velocityMax},
	})
	return object(map[string]any{
		"timeSignature": object(map[string]any{
			"numerator":   map[string]any{"type": "integer"},
			"denominator": map[string]any{"type": "integer"},
		}),
		"bpm":              map[string]any{"type": "integer", "minimum": bpmMin, "maximum": bpmMax},
		"totalDurationSec": map[string]any{"type": "number"},
		"tracks": arrayOf(object(map[string]any{
			"name":    enum("melody", "harmony", "bass", "drums"),
			"channel": map[string]any{"type": "integer"},
			"program": map[string]any{"type": "integer"},
			"notes":   arrayOf(note),
		})),
	})
}

// GetReviewVerdictSchema returns the JSON schema for the narrative reviewer's verdict
func GetReviewVerdictSchema() map[string]any {
	return object(map[string]any{
		"passed":  map[string]any{"type": "boolean"},
		"summary": str(),
		"issues": arrayOf(object(map[string]any{
			"category":    str(),
			"description": str(),
		})),
		"requiredChanges": arrayOf(str()),
	})
}

// GetDirectorVerdictSchema returns the JSON schema for the creative director's verdict.
// Every issue and required change names the producer it is meant for.
func GetDirectorVerdictSchema() map[string]any {
	target := enum("visual", "music")
	return object(map[string]any{
		"passed":  map[string]any{"type": "boolean"},
		"summary": str(),
		"issues": arrayOf(object(map[string]any{
			"target":      target,
			"category":    str(),
			"description": str(),
		})),
		"requiredChanges": arrayOf(object(map[string]any{
			"target":      target,
			"instruction": str(),
		})),
	})
}
