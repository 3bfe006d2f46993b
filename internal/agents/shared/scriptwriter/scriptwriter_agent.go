package scriptwriter

import (
	"context"
	"log"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/agents/core/structured"
	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/prompt"
)

// ScriptwriterAgent writes the render plan the video renderer consumes
type ScriptwriterAgent struct {
	caller *structured.Caller
}

// NewScriptwriterAgent creates a new scriptwriter agent
func NewScriptwriterAgent(cfg *config.Config) (*ScriptwriterAgent, error) {
	return NewScriptwriterAgentWithProvider(cfg, nil)
}

// NewScriptwriterAgentWithProvider creates a scriptwriter agent with a specific LLM provider
func NewScriptwriterAgentWithProvider(cfg *config.Config, provider llm.Provider) (*ScriptwriterAgent, error) {
	caller, err := structured.NewCaller(cfg, provider, "scriptwriter", prompt.RoleScriptwriter, cfg.Model, &llm.OutputSchema{
		Name:        "render_plan",
		Description: "Scenes in playback order for the renderer",
		Schema:      llm.GetScenePlanSchema(),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📝 SCRIPTWRITER AGENT INITIALIZED:")
	log.Printf("   Provider: %s", caller.ProviderName())

	return &ScriptwriterAgent{caller: caller}, nil
}

// GenerateRenderPlan writes the render plan. When the request carries an
// approved visual script it is sent along as the reference to follow.
func (a *ScriptwriterAgent) GenerateRenderPlan(ctx context.Context, req models.RenderPlanRequest) (any, error) {
	notes := req.Notes
	req.Notes = nil
	return a.caller.Call(ctx, "generate", req, notes)
}
