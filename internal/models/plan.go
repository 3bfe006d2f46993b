package models

// Pacing is the editing tempo requested by the visual direction
type Pacing string

const (
	PacingSlow     Pacing = "slow"
	PacingModerate Pacing = "moderate"
	PacingFast     Pacing = "fast"
	PacingDynamic  Pacing = "dynamic"
)

// BPMTrend describes how the tempo should evolve over the piece
type BPMTrend string

const (
	BPMSteady  BPMTrend = "steady"
	BPMRising  BPMTrend = "rising"
	BPMFalling BPMTrend = "falling"
	BPMArc     BPMTrend = "arc"
)

// CreativePlan is the shared direction both producers work from
type CreativePlan struct {
	Arc             NarrativeArc     `json:"arc"`
	VisualDirection VisualDirection  `json:"visualDirection"`
	MusicIntent     MusicIntent      `json:"musicIntent"`
	AlignmentPoints []AlignmentPoint `json:"alignmentPoints"`
}

// NarrativeArc is the four-part story arc
type NarrativeArc struct {
	Setup       string `json:"setup"`
	Development string `json:"development"`
	Climax      string `json:"climax"`
	Resolution  string `json:"resolution"`
}

// VisualDirection guides the visual producer
type VisualDirection struct {
	Style          string `json:"style"`
	Pacing         Pacing `json:"pacing"`
	TransitionTone string `json:"transitionTone"`
	SubtitleStyle  string `json:"subtitleStyle"`
}

// MusicIntent guides the music producer
type MusicIntent struct {
	MoodKeywords    []string    `json:"moodKeywords"`
	BPMTrend        BPMTrend    `json:"bpmTrend"`
	KeyMoments      []KeyMoment `json:"keyMoments"`
	Instrumentation []string    `json:"instrumentation"`
	TotalDurationMs int         `json:"totalDurationMs"`
}

// KeyMoment marks a musically significant point in time
type KeyMoment struct {
	TimestampMs int    `json:"timestampMs"`
	Description string `json:"description"`
}

// AlignmentPoint pairs a visual cue with a music cue at the same instant
type AlignmentPoint struct {
	TimestampMs int    `json:"timestampMs"`
	VisualCue   string `json:"visualCue"`
	MusicCue    string `json:"musicCue"`
}

// DurationMs is the total length of the piece
func (p CreativePlan) DurationMs() int {
	return p.MusicIntent.TotalDurationMs
}

// DurationSec is DurationMs expressed in seconds
func (p CreativePlan) DurationSec() float64 {
	return float64(p.MusicIntent.TotalDurationMs) / 1000.0
}
