package contracts

import (
	"fmt"
	"math"

	"github.com/Conceptual-Machines/reel-director/internal/models"
)

const artifactCreativePlan = "creative plan"

var (
	pacings = []string{
		string(models.PacingSlow),
		string(models.PacingModerate),
		string(models.PacingFast),
		string(models.PacingDynamic),
	}
	bpmTrends = []string{
		string(models.BPMSteady),
		string(models.BPMRising),
		string(models.BPMFalling),
		string(models.BPMArc),
	}
)

// ValidateCreativePlan checks a planner's output.
// Only ExpectedDurationSec is consulted from rules.
func ValidateCreativePlan(v any, rules Rules) (*models.CreativePlan, error) {
	rec, err := toRecord(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", artifactCreativePlan, err)
	}

	errs := &ValidationErrors{}
	r := reader{errs: errs}
	plan := &models.CreativePlan{}

	if arc, ok := r.object(rec, "arc", "", true); ok {
		plan.Arc = models.NarrativeArc{
			Setup:       r.text(arc, "setup", "arc"),
			Development: r.text(arc, "development", "arc"),
			Climax:      r.text(arc, "climax", "arc"),
			Resolution:  r.text(arc, "resolution", "arc"),
		}
	}

	if vd, ok := r.object(rec, "visualDirection", "", true); ok {
		const path = "visualDirection"
		plan.VisualDirection = models.VisualDirection{
			Style:          r.text(vd, "style", path),
			Pacing:         models.Pacing(r.enum(vd, "pacing", path, pacings, true)),
			TransitionTone: r.str(vd, "transitionTone", path, true),
			SubtitleStyle:  r.str(vd, "subtitleStyle", path, true),
		}
	}

	if mi, ok := r.object(rec, "musicIntent", "", true); ok {
		plan.MusicIntent = readMusicIntent(mi, "musicIntent", r)
	}

	plan.AlignmentPoints = []models.AlignmentPoint{}
	for i, ap := range r.objects(rec, "alignmentPoints", "", true) {
		if ap == nil {
			continue
		}
		path := index("alignmentPoints", i)
		point := models.AlignmentPoint{
			VisualCue: r.text(ap, "visualCue", path),
			MusicCue:  r.text(ap, "musicCue", path),
		}
		point.TimestampMs = readTimestamp(ap, path, r)
		plan.AlignmentPoints = append(plan.AlignmentPoints, point)
	}

	if err := structuralOrNil(artifactCreativePlan, errs); err != nil {
		return nil, err
	}

	semantic := &ValidationErrors{}
	checkCreativePlan(plan, rules, semantic)
	if err := semanticOrNil(artifactCreativePlan, semantic); err != nil {
		return nil, err
	}
	return plan, nil
}

func readMusicIntent(m map[string]any, path string, r reader) models.MusicIntent {
	intent := models.MusicIntent{
		MoodKeywords:    r.strings(m, "moodKeywords", path, true),
		BPMTrend:        models.BPMTrend(r.enum(m, "bpmTrend", path, bpmTrends, true)),
		Instrumentation: r.strings(m, "instrumentation", path, true),
	}
	if total, ok := r.integer(m, "totalDurationMs", path, true); ok {
		if total <= 0 {
			r.errs.Addf(join(path, "totalDurationMs"), "must be > 0, got %d", total)
		}
		intent.TotalDurationMs = total
	}

	momentsPath := join(path, "keyMoments")
	intent.KeyMoments = []models.KeyMoment{}
	for i, km := range r.objects(m, "keyMoments", path, true) {
		if km == nil {
			continue
		}
		p := index(momentsPath, i)
		moment := models.KeyMoment{Description: r.text(km, "description", p)}
		moment.TimestampMs = readTimestamp(km, p, r)
		intent.KeyMoments = append(intent.KeyMoments, moment)
	}
	return intent
}

func readTimestamp(m map[string]any, path string, r reader) int {
	ts, ok := r.integer(m, "timestampMs", path, true)
	if ok && ts < 0 {
		r.errs.Addf(join(path, "timestampMs"), "must be >= 0, got %d", ts)
	}
	return ts
}

func checkCreativePlan(plan *models.CreativePlan, rules Rules, errs *ValidationErrors) {
	total := plan.MusicIntent.TotalDurationMs

	if rules.ExpectedDurationSec > 0 {
		expected := int(math.Round(rules.ExpectedDurationSec * 1000))
		if total != expected {
			errs.Addf("musicIntent.totalDurationMs", "must be %d, got %d", expected, total)
		}
	}

	for i, km := range plan.MusicIntent.KeyMoments {
		if km.TimestampMs > total {
			errs.Addf(index("musicIntent.keyMoments", i)+".timestampMs",
				"%dms is after the total duration %dms", km.TimestampMs, total)
		}
	}
	for i, ap := range plan.AlignmentPoints {
		if ap.TimestampMs > total {
			errs.Addf(index("alignmentPoints", i)+".timestampMs",
				"%dms is after the total duration %dms", ap.TimestampMs, total)
		}
	}
}
