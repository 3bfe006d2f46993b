package prompt

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/reel-director/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetPlannerPrompt loads the creative planner prompt
func (l *Loader) GetPlannerPrompt() (string, error) {
	return load("planner", embedded.PlannerPromptTxt)
}

// GetVisualPrompt loads the visual editor prompt
func (l *Loader) GetVisualPrompt() (string, error) {
	return load("visual", embedded.VisualPromptTxt)
}

// GetComposerPrompt loads the composer prompt
func (l *Loader) GetComposerPrompt() (string, error) {
	return load("composer", embedded.ComposerPromptTxt)
}

// GetScriptwriterPrompt loads the render-plan scriptwriter prompt
func (l *Loader) GetScriptwriterPrompt() (string, error) {
	return load("scriptwriter", embedded.ScriptwriterPromptTxt)
}

// GetDirectorPrompt loads the creative director prompt
func (l *Loader) GetDirectorPrompt() (string, error) {
	return load("director", embedded.DirectorPromptTxt)
}

// GetNarrativePrompt loads the narrative reviewer prompt
func (l *Loader) GetNarrativePrompt() (string, error) {
	return load("narrative", embedded.NarrativePromptTxt)
}

// GetOutputFormatInstructions loads output format instructions
func (l *Loader) GetOutputFormatInstructions() (string, error) {
	return load("output format", embedded.OutputFormatInstructionsTxt)
}

func load(name string, data []byte) (string, error) {
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("%s prompt is empty", name)
	}
	return content, nil
}
