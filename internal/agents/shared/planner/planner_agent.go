package planner

import (
	"context"
	"log"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/agents/core/structured"
	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/prompt"
)

// PlannerAgent turns a narrative brief into the creative plan both
// producers work from
type PlannerAgent struct {
	caller *structured.Caller
}

// NewPlannerAgent creates a new planner agent
func NewPlannerAgent(cfg *config.Config) (*PlannerAgent, error) {
	return NewPlannerAgentWithProvider(cfg, nil)
}

// NewPlannerAgentWithProvider creates a planner agent with a specific LLM provider
func NewPlannerAgentWithProvider(cfg *config.Config, provider llm.Provider) (*PlannerAgent, error) {
	caller, err := structured.NewCaller(cfg, provider, "planner", prompt.RolePlanner, cfg.Model, &llm.OutputSchema{
		Name:        "creative_plan",
		Description: "Narrative arc, visual direction, music intent and alignment points for one short video",
		Schema:      llm.GetCreativePlanSchema(),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🗺️  PLANNER AGENT INITIALIZED:")
	log.Printf("   Provider: %s", caller.ProviderName())
	log.Printf("   Model: %s", caller.Model())

	return &PlannerAgent{caller: caller}, nil
}

// GenerateCreativePlan asks the model for a creative plan. The output is
// returned undecoded into models; the caller validates it.
func (a *PlannerAgent) GenerateCreativePlan(ctx context.Context, req models.PlanRequest) (any, error) {
	notes := req.Notes
	req.Notes = nil
	return a.caller.Call(ctx, "generate", req, notes)
}
