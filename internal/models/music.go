package models

// Fixed musical frame for every composition
const (
	TimeSignatureNumerator   = 4
	TimeSignatureDenominator = 4

	MinBPM     = 40
	MaxBPM     = 220
	DefaultBPM = 90

	MidiNoteMin  = 0
	MidiNoteMax  = 127
	VelocityMin  = 1
	VelocityMax  = 127
	DrumsChannel = 9
)

// TimeSignature of the composition
type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// MusicComposition is the music producer's output, ready for synthesis
type MusicComposition struct {
	TimeSignature    TimeSignature `json:"timeSignature"`
	BPM              int           `json:"bpm"`
	TotalDurationSec float64       `json:"totalDurationSec"`
	Tracks           []Track       `json:"tracks"`
}

// Track is one instrument part
type Track struct {
	Name    string `json:"name"`
	Channel int    `json:"channel"`
	Program int    `json:"program"`
	Notes   []Note `json:"notes"`
}

// Note is a single MIDI-style note event, timed in seconds
type Note struct {
	Pitch       int     `json:"pitch"`
	StartSec    float64 `json:"startSec"`
	DurationSec float64 `json:"durationSec"`
	Velocity    int     `json:"velocity"`
}

// TrackSlot is the fixed identity of one canonical track
type TrackSlot struct {
	Name    string
	Channel int
	Program int
}

// CanonicalTracks lists the four tracks every composition must carry, in order
var CanonicalTracks = []TrackSlot{
	{Name: "melody", Channel: 0, Program: 0},   // Acoustic Grand Piano
	{Name: "harmony", Channel: 1, Program: 48}, // String Ensemble 1
	{Name: "bass", Channel: 2, Program: 32},    // Acoustic Bass
	{Name: "drums", Channel: DrumsChannel, Program: 0},
}

// NoteCount returns the number of notes across all tracks
func (m MusicComposition) NoteCount() int {
	n := 0
	for _, t := range m.Tracks {
		n += len(t.Notes)
	}
	return n
}
