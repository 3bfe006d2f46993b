package contracts

import (
	"fmt"
	"math"

	"github.com/Conceptual-Machines/reel-director/internal/models"
)

const artifactMusic = "music composition"

// ValidateMusicComposition checks a music producer's output
func ValidateMusicComposition(v any, rules Rules) (*models.MusicComposition, error) {
	rec, err := toRecord(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", artifactMusic, err)
	}

	errs := &ValidationErrors{}
	music := readMusic(rec, reader{errs: errs})
	if err := structuralOrNil(artifactMusic, errs); err != nil {
		return nil, err
	}

	semantic := &ValidationErrors{}
	checkMusic(music, rules, semantic)
	if err := semanticOrNil(artifactMusic, semantic); err != nil {
		return nil, err
	}
	return music, nil
}

func readMusic(rec map[string]any, r reader) *models.MusicComposition {
	music := &models.MusicComposition{}

	if ts, ok := r.object(rec, "timeSignature", "", true); ok {
		music.TimeSignature.Numerator, _ = r.integer(ts, "numerator", "timeSignature", true)
		music.TimeSignature.Denominator, _ = r.integer(ts, "denominator", "timeSignature", true)
	}

	if bpm, ok := r.integer(rec, "bpm", "", true); ok {
		if bpm < models.MinBPM || bpm > models.MaxBPM {
			r.errs.Addf("bpm", "must be between %d and %d, got %d", models.MinBPM, models.MaxBPM, bpm)
		}
		music.BPM = bpm
	}

	if total, ok := r.number(rec, "totalDurationSec", "", true); ok {
		if total <= 0 {
			r.errs.Addf("totalDurationSec", "must be > 0, got %v", total)
		}
		music.TotalDurationSec = total
	}

	for i, t := range r.objects(rec, "tracks", "", true) {
		if t == nil {
			continue
		}
		music.Tracks = append(music.Tracks, readTrack(t, index("tracks", i), r))
	}
	return music
}

func readTrack(m map[string]any, path string, r reader) models.Track {
	track := models.Track{Name: r.text(m, "name", path)}
	track.Channel, _ = r.integer(m, "channel", path, true)
	track.Program, _ = r.integer(m, "program", path, true)

	notesPath := join(path, "notes")
	track.Notes = []models.Note{}
	for i, n := range r.objects(m, "notes", path, true) {
		if n == nil {
			continue
		}
		track.Notes = append(track.Notes, readNote(n, index(notesPath, i), r))
	}
	return track
}

func readNote(m map[string]any, path string, r reader) models.Note {
	note := models.Note{}
	if p, ok := r.integer(m, "pitch", path, true); ok {
		if p < models.MidiNoteMin || p > models.MidiNoteMax {
			r.errs.Addf(join(path, "pitch"), "must be between %d and %d, got %d", models.MidiNoteMin, models.MidiNoteMax, p)
		}
		note.Pitch = p
	}
	if s, ok := r.number(m, "startSec", path, true); ok {
		if s < 0 {
			r.errs.Addf(join(path, "startSec"), "must be >= 0, got %v", s)
		}
		note.StartSec = s
	}
	if d, ok := r.number(m, "durationSec", path, true); ok {
		if d <= 0 {
			r.errs.Addf(join(path, "durationSec"), "must be > 0, got %v", d)
		}
		note.DurationSec = d
	}
	if v, ok := r.integer(m, "velocity", path, true); ok {
		if v < models.VelocityMin || v > models.VelocityMax {
			r.errs.Addf(join(path, "velocity"), "must be between %d and %d, got %d", models.VelocityMin, models.VelocityMax, v)
		}
		note.Velocity = v
	}
	return note
}

func checkMusic(music *models.MusicComposition, rules Rules, errs *ValidationErrors) {
	if music.TimeSignature.Numerator != models.TimeSignatureNumerator ||
		music.TimeSignature.Denominator != models.TimeSignatureDenominator {
		errs.Addf("timeSignature", "must be %d/%d, got %d/%d",
			models.TimeSignatureNumerator, models.TimeSignatureDenominator,
			music.TimeSignature.Numerator, music.TimeSignature.Denominator)
	}

	if rules.ExpectedDurationSec > 0 && math.Abs(music.TotalDurationSec-rules.ExpectedDurationSec) > rules.epsilon() {
		errs.Addf("totalDurationSec", "must be %.3fs, got %.3fs", rules.ExpectedDurationSec, music.TotalDurationSec)
	}

	if len(music.Tracks) != len(models.CanonicalTracks) {
		errs.Addf("tracks", "must contain exactly %d tracks, got %d", len(models.CanonicalTracks), len(music.Tracks))
	}
	for i, track := range music.Tracks {
		path := index("tracks", i)
		if i < len(models.CanonicalTracks) {
			slot := models.CanonicalTracks[i]
			if track.Name != slot.Name {
				errs.Addf(join(path, "name"), "must be %q at this position, got %q", slot.Name, track.Name)
			}
			if track.Channel != slot.Channel {
				errs.Addf(join(path, "channel"), "must be %d for %s, got %d", slot.Channel, slot.Name, track.Channel)
			}
			if track.Program != slot.Program {
				errs.Addf(join(path, "program"), "must be %d for %s, got %d", slot.Program, slot.Name, track.Program)
			}
		}
		checkNotes(track.Notes, join(path, "notes"), music.TotalDurationSec, rules.epsilon(), errs)
	}
}

func checkNotes(notes []models.Note, path string, totalSec, eps float64, errs *ValidationErrors) {
	prevStart := math.Inf(-1)
	for i, note := range notes {
		notePath := index(path, i)
		if end := note.StartSec + note.DurationSec; end > totalSec+eps {
			errs.Addf(notePath, "ends at %.3fs, after total duration %.3fs", end, totalSec)
		}
		if note.StartSec < prevStart {
			errs.Addf(join(notePath, "startSec"), "%.3fs is before the previous note's start %.3fs", note.StartSec, prevStart)
		}
		prevStart = note.StartSec
	}
}
