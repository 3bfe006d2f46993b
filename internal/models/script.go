package models

// Placement is where a subtitle sits on screen
type Placement string

const (
	PlacementTop    Placement = "top"
	PlacementCenter Placement = "center"
	PlacementBottom Placement = "bottom"
)

// TransitionType discriminates the Transition union
type TransitionType string

const (
	TransitionCut      TransitionType = "cut"
	TransitionFade     TransitionType = "fade"
	TransitionDissolve TransitionType = "dissolve"
	TransitionSlide    TransitionType = "slide"
)

// Direction is used by slide transitions and pan effects
type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

// Default output format for rendered reels
const (
	DefaultVideoWidth  = 1080
	DefaultVideoHeight = 1920
	DefaultVideoFPS    = 30
)

// VideoSpec is the fixed output format every scene plan must declare
type VideoSpec struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	FPS    int `json:"fps"`
}

// DefaultVideoSpec returns the vertical 1080x1920@30 format
func DefaultVideoSpec() VideoSpec {
	return VideoSpec{Width: DefaultVideoWidth, Height: DefaultVideoHeight, FPS: DefaultVideoFPS}
}

// Transition describes how a scene enters.
// Direction is only meaningful for slide.
type Transition struct {
	Type        TransitionType `json:"type"`
	DurationSec float64        `json:"durationSec,omitempty"`
	Direction   Direction      `json:"direction,omitempty"`
}

// Effect is an optional pan/zoom (Ken Burns) move over the photo
type Effect struct {
	StartScale float64   `json:"startScale"`
	EndScale   float64   `json:"endScale"`
	Pan        Direction `json:"pan"`
}

// Scene is one photo on screen
type Scene struct {
	ID                string     `json:"id"`
	PhotoRef          string     `json:"photoRef"`
	Subtitle          string     `json:"subtitle"`
	SubtitlePlacement Placement  `json:"subtitlePlacement"`
	DurationSec       float64    `json:"durationSec"`
	Transition        Transition `json:"transition"`
	Effect            *Effect    `json:"effect,omitempty"`
}

// ScenePlan is the shape shared by the visual script and the render plan
type ScenePlan struct {
	VideoSpec VideoSpec `json:"videoSpec"`
	Scenes    []Scene   `json:"scenes"`
}

// VisualScript is the visual producer's scene plan
type VisualScript struct {
	ScenePlan
}

// RenderPlan is the merged scene plan handed to the renderer
type RenderPlan struct {
	ScenePlan
}

// TotalDurationSec sums scene durations
func (p ScenePlan) TotalDurationSec() float64 {
	total := 0.0
	for _, s := range p.Scenes {
		total += s.DurationSec
	}
	return total
}

// PhotoRefsUsed returns the distinct photo references in scene order
func (p ScenePlan) PhotoRefsUsed() []string {
	seen := make(map[string]bool, len(p.Scenes))
	refs := make([]string, 0, len(p.Scenes))
	for _, s := range p.Scenes {
		if !seen[s.PhotoRef] {
			seen[s.PhotoRef] = true
			refs = append(refs, s.PhotoRef)
		}
	}
	return refs
}
