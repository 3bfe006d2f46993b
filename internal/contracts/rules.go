package contracts

import (
	"math"

	"github.com/Conceptual-Machines/reel-director/internal/models"
)

// DefaultDurationEpsilon absorbs floating accumulation when summing seconds
const DefaultDurationEpsilon = 1e-6

// DefaultSlideDirections is the allow-list used when Rules leaves it empty
var DefaultSlideDirections = []models.Direction{
	models.DirectionLeft,
	models.DirectionRight,
	models.DirectionUp,
	models.DirectionDown,
}

// Rules carries the caller-supplied expectations for semantic checks.
// Zero values switch the corresponding check off.
type Rules struct {
	VideoSpec           *models.VideoSpec
	ExpectedDurationSec float64
	DurationEpsilon     float64
	FrameRate           int
	RequiredPhotoRefs   []string
	SlideDirections     []models.Direction
}

// NewRules builds the standard rule set for a target duration and photo list
func NewRules(spec models.VideoSpec, durationSec float64, photoRefs []string) Rules {
	return Rules{
		VideoSpec:           &spec,
		ExpectedDurationSec: durationSec,
		DurationEpsilon:     DefaultDurationEpsilon,
		FrameRate:           spec.FPS,
		RequiredPhotoRefs:   append([]string(nil), photoRefs...),
	}
}

func (r Rules) epsilon() float64 {
	if r.DurationEpsilon > 0 {
		return r.DurationEpsilon
	}
	return DefaultDurationEpsilon
}

func (r Rules) slideDirections() []models.Direction {
	if len(r.SlideDirections) > 0 {
		return r.SlideDirections
	}
	return DefaultSlideDirections
}

// ExpectedFrames is the target duration rounded to whole frames
func (r Rules) ExpectedFrames() int {
	return Frames(r.ExpectedDurationSec, r.FrameRate)
}

// Frames rounds a duration in seconds to whole frames at fps
func Frames(sec float64, fps int) int {
	return int(math.Round(sec * float64(fps)))
}
