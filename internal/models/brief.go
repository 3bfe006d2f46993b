package models

// DurationClass is the coarse length a narrative beat asks for
type DurationClass string

const (
	DurationShort  DurationClass = "short"
	DurationMedium DurationClass = "medium"
	DurationLong   DurationClass = "long"
)

// NarrativeBrief is the validated creative intent produced upstream.
// It is read-only for the whole pipeline.
type NarrativeBrief struct {
	Emotion   EmotionalIntent    `json:"emotion"`
	Photos    []PhotoNote        `json:"photos"`
	Structure NarrativeStructure `json:"structure"`
}

// EmotionalIntent captures what the piece should feel like
type EmotionalIntent struct {
	CoreEmotion  string   `json:"coreEmotion"`
	Tone         string   `json:"tone"`
	NarrativeArc string   `json:"narrativeArc"`
	AudienceNote string   `json:"audienceNote,omitempty"`
	Avoid        []string `json:"avoid,omitempty"`     // Phrases that must not appear in subtitles
	UserWords    string   `json:"userWords,omitempty"` // The user's own description, verbatim
}

// PhotoNote is the upstream analysis of one input photo
type PhotoNote struct {
	Ref      string  `json:"ref"`
	Weight   float64 `json:"weight"` // 0-1, how central the photo is to the story
	Role     string  `json:"role"`
	Analysis string  `json:"analysis"`
}

// NarrativeStructure orders the photos into beats
type NarrativeStructure struct {
	Arc   string `json:"arc"`
	Beats []Beat `json:"beats"`
}

// Beat is one step of the narrative structure
type Beat struct {
	PhotoRef    string        `json:"photoRef"`
	Description string        `json:"description"`
	Duration    DurationClass `json:"duration"`
}

// Photo is an input asset as seen by the producers
type Photo struct {
	Ref         string `json:"ref"`
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
}

// PhotoRefs returns the references of the brief's photo notes in order
func (b NarrativeBrief) PhotoRefs() []string {
	refs := make([]string, 0, len(b.Photos))
	for _, p := range b.Photos {
		refs = append(refs, p.Ref)
	}
	return refs
}

// PhotoRefs returns the references of a photo list in order
func PhotoRefs(photos []Photo) []string {
	refs := make([]string, 0, len(photos))
	for _, p := range photos {
		refs = append(refs, p.Ref)
	}
	return refs
}
