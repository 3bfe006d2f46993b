package director

import (
	"context"
	"log"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/agents/core/structured"
	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/prompt"
)

// DirectorAgent is the creative director. It judges the visual script and
// the music together against the plan and targets each change at one of them.
type DirectorAgent struct {
	caller *structured.Caller
}

// NewDirectorAgent creates a new director agent
func NewDirectorAgent(cfg *config.Config) (*DirectorAgent, error) {
	return NewDirectorAgentWithProvider(cfg, nil)
}

// NewDirectorAgentWithProvider creates a director agent with a specific LLM provider
func NewDirectorAgentWithProvider(cfg *config.Config, provider llm.Provider) (*DirectorAgent, error) {
	caller, err := structured.NewCaller(cfg, provider, "director", prompt.RoleDirector, cfg.ReviewerModel(), &llm.OutputSchema{
		Name:        "director_verdict",
		Description: "Pass or fail with targeted issues and required changes",
		Schema:      llm.GetDirectorVerdictSchema(),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎬 DIRECTOR AGENT INITIALIZED:")
	log.Printf("   Provider: %s", caller.ProviderName())
	log.Printf("   Model: %s", caller.Model())

	return &DirectorAgent{caller: caller}, nil
}

func (a *DirectorAgent) ReviewCreativeAssets(ctx context.Context, req models.CreativeReviewRequest) (any, error) {
	notes := req.Notes
	req.Notes = nil
	return a.caller.Call(ctx, "review", req, notes)
}
