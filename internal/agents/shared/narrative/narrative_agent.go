package narrative

import (
	"context"
	"log"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/agents/core/structured"
	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/prompt"
)

// NarrativeAgent checks a render plan for fidelity to the brief
type NarrativeAgent struct {
	caller *structured.Caller
}

func NewNarrativeAgent(cfg *config.Config) (*NarrativeAgent, error) {
	return NewNarrativeAgentWithProvider(cfg, nil)
}

func NewNarrativeAgentWithProvider(cfg *config.Config, provider llm.Provider) (*NarrativeAgent, error) {
	caller, err := structured.NewCaller(cfg, provider, "narrative", prompt.RoleNarrative, cfg.ReviewerModel(), &llm.OutputSchema{
		Name:        "review_verdict",
		Description: "Pass or fail with issues and required changes",
		Schema:      llm.GetReviewVerdictSchema(),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📖 NARRATIVE AGENT INITIALIZED:")
	log.Printf("   Provider: %s", caller.ProviderName())

	return &NarrativeAgent{caller: caller}, nil
}

func (a *NarrativeAgent) ReviewRenderPlan(ctx context.Context, req models.ScriptReviewRequest) (any, error) {
	notes := req.Notes
	req.Notes = nil
	return a.caller.Call(ctx, "review", req, notes)
}
