package revision

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/pkg/embedded"
)

// Vocabulary lists the words that signal a note is about visuals or music
type Vocabulary struct {
	Visual []string `yaml:"visual"`
	Music  []string `yaml:"music"`
}

// LoadVocabulary parses a YAML vocabulary. Both lists must be non-empty.
func LoadVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	v.Visual = normalizeTerms(v.Visual)
	v.Music = normalizeTerms(v.Music)
	if len(v.Visual) == 0 || len(v.Music) == 0 {
		return nil, fmt.Errorf("vocabulary needs both visual and music terms (got %d visual, %d music)",
			len(v.Visual), len(v.Music))
	}
	return &v, nil
}

// LoadVocabularyFile reads a YAML vocabulary from disk
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}
	return LoadVocabulary(data)
}

// DefaultVocabulary returns the embedded vocabulary
func DefaultVocabulary() *Vocabulary {
	v, err := LoadVocabulary(embedded.VocabularyYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return v
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		n := normalizeText(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// normalizeText lowercases and collapses everything that is not a letter
// or digit into single spaces
func normalizeText(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

func matchesAny(padded string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(padded, " "+t+" ") {
			return true
		}
	}
	return false
}

// NoteRouter retargets reviewer notes whose wording clearly belongs to the
// other producer. The vocabulary can be swapped while the router is in use.
type NoteRouter struct {
	vocab atomic.Pointer[Vocabulary]
}

// NewNoteRouter creates a router; a nil vocabulary selects the embedded default
func NewNoteRouter(v *Vocabulary) *NoteRouter {
	if v == nil {
		v = DefaultVocabulary()
	}
	r := &NoteRouter{}
	r.vocab.Store(v)
	return r
}

// SetVocabulary replaces the vocabulary atomically
func (r *NoteRouter) SetVocabulary(v *Vocabulary) {
	if v != nil {
		r.vocab.Store(v)
	}
}

// Vocabulary returns the vocabulary currently in use
func (r *NoteRouter) Vocabulary() *Vocabulary {
	return r.vocab.Load()
}

// ReloadFile loads path and swaps it in. On error the current vocabulary stays.
func (r *NoteRouter) ReloadFile(path string) error {
	v, err := LoadVocabularyFile(path)
	if err != nil {
		return err
	}
	r.SetVocabulary(v)
	log.Printf("📖 Note vocabulary reloaded from %s (%d visual, %d music terms)", path, len(v.Visual), len(v.Music))
	return nil
}

// Classify returns change with its target corrected. A visual note that
// only uses music words moves to music and vice versa. Notes matching
// both vocabularies or neither keep their target.
func (r *NoteRouter) Classify(change models.TargetedChange) models.TargetedChange {
	v := r.vocab.Load()
	padded := " " + normalizeText(change.Instruction) + " "
	visual := matchesAny(padded, v.Visual)
	music := matchesAny(padded, v.Music)

	switch {
	case change.Target == models.TargetVisual && music && !visual:
		change.Target = models.TargetMusic
	case change.Target == models.TargetMusic && visual && !music:
		change.Target = models.TargetVisual
	}
	return change
}

// Reclassify applies Classify to every change and returns a new slice
func (r *NoteRouter) Reclassify(changes []models.TargetedChange) []models.TargetedChange {
	out := make([]models.TargetedChange, len(changes))
	for i, c := range changes {
		out[i] = r.Classify(c)
	}
	return out
}

