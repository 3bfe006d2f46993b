package revision

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

// Hard constraints restated to a producer when it retries

func scenePlanConstraints(rules contracts.Rules) []string {
	var out []string
	if rules.VideoSpec != nil {
		out = append(out, fmt.Sprintf("videoSpec must be exactly width %d, height %d, fps %d.",
			rules.VideoSpec.Width, rules.VideoSpec.Height, rules.VideoSpec.FPS))
	}
	if rules.ExpectedDurationSec > 0 {
		c := fmt.Sprintf("Scene durationSec values must sum to exactly %.3f seconds.", rules.ExpectedDurationSec)
		if rules.FrameRate > 0 {
			c += fmt.Sprintf(" Give every scene a whole number of frames at %d fps (%d frames in total).",
				rules.FrameRate, rules.ExpectedFrames())
		}
		out = append(out, c)
	}
	if len(rules.RequiredPhotoRefs) > 0 {
		out = append(out, fmt.Sprintf("Use every photo at least once and no other photos: %s.",
			strings.Join(rules.RequiredPhotoRefs, ", ")))
	}
	return out
}

func musicConstraints(durationSec float64) []string {
	slots := make([]string, len(models.CanonicalTracks))
	for i, s := range models.CanonicalTracks {
		slots[i] = fmt.Sprintf("%s (channel %d, program %d)", s.Name, s.Channel, s.Program)
	}
	return []string{
		fmt.Sprintf("Use exactly four tracks in this order: %s.", strings.Join(slots, ", ")),
		fmt.Sprintf("totalDurationSec must be %.3f and every note must end by then.", durationSec),
		fmt.Sprintf("Use a %d/%d time signature and a bpm between %d and %d; sort notes by startSec.",
			models.TimeSignatureNumerator, models.TimeSignatureDenominator, models.MinBPM, models.MaxBPM),
	}
}

func verdictConstraints(targeted bool) []string {
	if targeted {
		return []string{"Tag every issue and required change with target \"visual\" or \"music\"."}
	}
	return []string{"When passed is false, list at least one required change."}
}
