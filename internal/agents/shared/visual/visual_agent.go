package visual

import (
	"context"
	"log"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/agents/core/structured"
	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/prompt"
)

// VisualAgent writes the visual script: scenes, transitions, effects and subtitles
type VisualAgent struct {
	caller *structured.Caller
}

// NewVisualAgent creates a new visual agent
func NewVisualAgent(cfg *config.Config) (*VisualAgent, error) {
	return NewVisualAgentWithProvider(cfg, nil)
}

// NewVisualAgentWithProvider creates a visual agent with a specific LLM provider
func NewVisualAgentWithProvider(cfg *config.Config, provider llm.Provider) (*VisualAgent, error) {
	caller, err := structured.NewCaller(cfg, provider, "visual", prompt.RoleVisual, cfg.Model, &llm.OutputSchema{
		Name:        "visual_script",
		Description: "Ordered scenes covering every photo, with transitions, effects and subtitles",
		Schema:      llm.GetScenePlanSchema(),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎞️  VISUAL AGENT INITIALIZED:")
	log.Printf("   Provider: %s", caller.ProviderName())

	return &VisualAgent{caller: caller}, nil
}

func (a *VisualAgent) GenerateVisualScript(ctx context.Context, req models.VisualRequest) (any, error) {
	notes := req.Notes
	req.Notes = nil
	return a.caller.Call(ctx, "generate", req, notes)
}
