package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role selects which agent a system prompt is built for
type Role string

const (
	RolePlanner      Role = "planner"
	RoleVisual       Role = "visual"
	RoleComposer     Role = "composer"
	RoleScriptwriter Role = "scriptwriter"
	RoleDirector     Role = "director"
	RoleNarrative    Role = "narrative"
)

// Builder builds system prompts and input messages for the agents
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// BuildPrompt builds the complete system prompt for a role:
// the role instructions followed by the shared output format instructions
func (b *Builder) BuildPrompt(role Role) (string, error) {
	var get func() (string, error)
	switch role {
	case RolePlanner:
		get = b.loader.GetPlannerPrompt
	case RoleVisual:
		get = b.loader.GetVisualPrompt
	case RoleComposer:
		get = b.loader.GetComposerPrompt
	case RoleScriptwriter:
		get = b.loader.GetScriptwriterPrompt
	case RoleDirector:
		get = b.loader.GetDirectorPrompt
	case RoleNarrative:
		get = b.loader.GetNarrativePrompt
	default:
		return "", fmt.Errorf("unknown prompt role: %s", role)
	}

	instructions, err := get()
	if err != nil {
		return "", err
	}
	format, err := b.loader.GetOutputFormatInstructions()
	if err != nil {
		return "", err
	}

	return instructions + "\n\n" + format, nil
}

// BuildInput renders the request payload as a JSON user message.
// Revision notes, when present, follow as a numbered list in a second message.
func (b *Builder) BuildInput(payload any, notes []string) ([]map[string]any, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	input := []map[string]any{
		{
			"role":    "user",
			"content": "REQUEST:\n" + string(body),
		},
	}
	if section := NotesSection(notes); section != "" {
		input = append(input, map[string]any{
			"role":    "user",
			"content": section,
		})
	}
	return input, nil
}

// NotesSection formats revision notes as a numbered list, or "" when there are none
func NotesSection(notes []string) string {
	if len(notes) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("REVISION NOTES (address every item):")
	for i, note := range notes {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, note)
	}
	return sb.String()
}
