package contracts

import (
	"fmt"
	"math"
	"strings"

	"github.com/Conceptual-Machines/reel-director/internal/models"
)

const (
	artifactVisualScript = "visual script"
	artifactRenderPlan   = "render plan"
)

var (
	placements = []string{
		string(models.PlacementTop),
		string(models.PlacementCenter),
		string(models.PlacementBottom),
	}
	transitionTypes = []string{
		string(models.TransitionCut),
		string(models.TransitionFade),
		string(models.TransitionDissolve),
		string(models.TransitionSlide),
	}
	panDirections = []string{
		string(models.DirectionNone),
		string(models.DirectionLeft),
		string(models.DirectionRight),
		string(models.DirectionUp),
		string(models.DirectionDown),
	}
)

// ValidateVisualScript checks a visual producer's output
func ValidateVisualScript(v any, rules Rules) (*models.VisualScript, error) {
	plan, err := validateScenePlan(artifactVisualScript, v, rules)
	if err != nil {
		return nil, err
	}
	return &models.VisualScript{ScenePlan: *plan}, nil
}

// ValidateRenderPlan checks a render plan producer's output
func ValidateRenderPlan(v any, rules Rules) (*models.RenderPlan, error) {
	plan, err := validateScenePlan(artifactRenderPlan, v, rules)
	if err != nil {
		return nil, err
	}
	return &models.RenderPlan{ScenePlan: *plan}, nil
}

func validateScenePlan(artifact string, v any, rules Rules) (*models.ScenePlan, error) {
	rec, err := toRecord(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", artifact, err)
	}

	errs := &ValidationErrors{}
	plan := readScenePlan(rec, reader{errs: errs})
	if err := structuralOrNil(artifact, errs); err != nil {
		return nil, err
	}

	semantic := &ValidationErrors{}
	checkScenePlan(plan, rules, semantic)
	if err := semanticOrNil(artifact, semantic); err != nil {
		return nil, err
	}
	return plan, nil
}

func readScenePlan(rec map[string]any, r reader) *models.ScenePlan {
	plan := &models.ScenePlan{}

	if spec, ok := r.object(rec, "videoSpec", "", true); ok {
		plan.VideoSpec = readVideoSpec(spec, "videoSpec", r)
	}

	scenes := r.objects(rec, "scenes", "", true)
	if scenes != nil && len(scenes) == 0 {
		r.errs.Add("scenes", "must contain at least one scene")
	}
	for i, s := range scenes {
		if s == nil {
			continue
		}
		plan.Scenes = append(plan.Scenes, readScene(s, index("scenes", i), r))
	}
	return plan
}

func readVideoSpec(m map[string]any, path string, r reader) models.VideoSpec {
	spec := models.VideoSpec{}
	for _, f := range []struct {
		key string
		dst *int
	}{{"width", &spec.Width}, {"height", &spec.Height}, {"fps", &spec.FPS}} {
		if n, ok := r.integer(m, f.key, path, true); ok {
			if n <= 0 {
				r.errs.Add(join(path, f.key), "must be > 0")
			}
			*f.dst = n
		}
	}
	return spec
}

func readScene(m map[string]any, path string, r reader) models.Scene {
	scene := models.Scene{
		ID:                r.text(m, "id", path),
		PhotoRef:          r.text(m, "photoRef", path),
		Subtitle:          r.str(m, "subtitle", path, true),
		SubtitlePlacement: models.Placement(r.enum(m, "subtitlePlacement", path, placements, true)),
	}

	if d, ok := r.number(m, "durationSec", path, true); ok {
		if d <= 0 {
			r.errs.Addf(join(path, "durationSec"), "must be > 0, got %v", d)
		}
		scene.DurationSec = d
	}

	if t, ok := r.object(m, "transition", path, true); ok {
		scene.Transition = readTransition(t, join(path, "transition"), r)
	}

	if e, ok := r.object(m, "effect", path, false); ok {
		effect := readEffect(e, join(path, "effect"), r)
		scene.Effect = &effect
	}
	return scene
}

func readTransition(m map[string]any, path string, r reader) models.Transition {
	t := models.Transition{
		Type: models.TransitionType(r.enum(m, "type", path, transitionTypes, true)),
	}
	if d, ok := r.number(m, "durationSec", path, false); ok {
		if d < 0 {
			r.errs.Addf(join(path, "durationSec"), "must be >= 0, got %v", d)
		}
		t.DurationSec = d
	}

	direction := r.str(m, "direction", path, false)
	switch {
	case t.Type == models.TransitionSlide && direction == "":
		r.errs.Add(join(path, "direction"), "is required for slide transitions")
	case t.Type != models.TransitionSlide && t.Type != "" && direction != "":
		r.errs.Addf(join(path, "direction"), "is only allowed for slide transitions, not %s", t.Type)
	}
	t.Direction = models.Direction(direction)
	return t
}

func readEffect(m map[string]any, path string, r reader) models.Effect {
	e := models.Effect{}
	if s, ok := r.number(m, "startScale", path, true); ok {
		if s <= 0 {
			r.errs.Addf(join(path, "startScale"), "must be > 0, got %v", s)
		}
		e.StartScale = s
	}
	if s, ok := r.number(m, "endScale", path, true); ok {
		if s <= 0 {
			r.errs.Addf(join(path, "endScale"), "must be > 0, got %v", s)
		}
		e.EndScale = s
	}
	e.Pan = models.Direction(r.enum(m, "pan", path, panDirections, true))
	return e
}

func checkScenePlan(plan *models.ScenePlan, rules Rules, errs *ValidationErrors) {
	if rules.VideoSpec != nil && plan.VideoSpec != *rules.VideoSpec {
		errs.Addf("videoSpec", "must be %dx%d@%dfps, got %dx%d@%dfps",
			rules.VideoSpec.Width, rules.VideoSpec.Height, rules.VideoSpec.FPS,
			plan.VideoSpec.Width, plan.VideoSpec.Height, plan.VideoSpec.FPS)
	}

	allowedSlides := make(map[models.Direction]bool)
	for _, d := range rules.slideDirections() {
		allowedSlides[d] = true
	}
	required := make(map[string]bool, len(rules.RequiredPhotoRefs))
	for _, ref := range rules.RequiredPhotoRefs {
		required[ref] = true
	}

	ids := make(map[string]int, len(plan.Scenes))
	used := make(map[string]bool, len(plan.Scenes))
	for i, scene := range plan.Scenes {
		path := index("scenes", i)

		if first, dup := ids[scene.ID]; dup {
			errs.Addf(join(path, "id"), "duplicates scenes[%d].id %q", first, scene.ID)
		} else {
			ids[scene.ID] = i
		}

		used[scene.PhotoRef] = true
		if len(required) > 0 && !required[scene.PhotoRef] {
			errs.Addf(join(path, "photoRef"), "unknown photo reference %q", scene.PhotoRef)
		}

		if scene.Transition.DurationSec > scene.DurationSec {
			errs.Addf(join(path, "transition.durationSec"), "%.3fs exceeds scene duration %.3fs",
				scene.Transition.DurationSec, scene.DurationSec)
		}
		if scene.Transition.Type == models.TransitionSlide && !allowedSlides[scene.Transition.Direction] {
			errs.Addf(join(path, "transition.direction"), "slide direction %q is not allowed (allowed: %s)",
				scene.Transition.Direction, joinDirections(rules.slideDirections()))
		}
	}

	var missing []string
	for _, ref := range rules.RequiredPhotoRefs {
		if !used[ref] {
			missing = append(missing, ref)
		}
	}
	if len(missing) > 0 {
		errs.Addf("scenes", "photo references never used: %s", strings.Join(missing, ", "))
	}

	if rules.ExpectedDurationSec > 0 {
		total := plan.TotalDurationSec()
		if math.Abs(total-rules.ExpectedDurationSec) > rules.epsilon() {
			errs.Addf("scenes", "scene durations sum to %.3fs, expected exactly %.3fs",
				total, rules.ExpectedDurationSec)
		}

		if rules.FrameRate > 0 {
			frames := 0
			for _, scene := range plan.Scenes {
				frames += Frames(scene.DurationSec, rules.FrameRate)
			}
			if expected := rules.ExpectedFrames(); frames != expected {
				errs.Addf("scenes", "scene durations round to %d frames at %dfps, expected %d",
					frames, rules.FrameRate, expected)
			}
		}
	}
}

func joinDirections(dirs []models.Direction) string {
	parts := make([]string, len(dirs))
	for i, d := range dirs {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
