package revision

import "github.com/Conceptual-Machines/reel-director/internal/models"

// SilentComposition is the stand-in used when music generation gives up.
// It has the canonical four tracks with no notes, so it passes the music
// contract and a renderer can treat it like any other composition.
func SilentComposition(durationSec float64) *models.MusicComposition {
	tracks := make([]models.Track, len(models.CanonicalTracks))
	for i, slot := range models.CanonicalTracks {
		tracks[i] = models.Track{
			Name:    slot.Name,
			Channel: slot.Channel,
			Program: slot.Program,
			Notes:   []models.Note{},
		}
	}
	return &models.MusicComposition{
		TimeSignature: models.TimeSignature{
			Numerator:   models.TimeSignatureNumerator,
			Denominator: models.TimeSignatureDenominator,
		},
		BPM:              models.DefaultBPM,
		TotalDurationSec: durationSec,
		Tracks:           tracks,
	}
}
