package coordination

import (
	"fmt"
	"time"

	agentconfig "github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/agents/shared/composer"
	"github.com/Conceptual-Machines/reel-director/internal/agents/shared/director"
	"github.com/Conceptual-Machines/reel-director/internal/agents/shared/narrative"
	"github.com/Conceptual-Machines/reel-director/internal/agents/shared/planner"
	"github.com/Conceptual-Machines/reel-director/internal/agents/shared/scriptwriter"
	"github.com/Conceptual-Machines/reel-director/internal/agents/shared/visual"
	"github.com/Conceptual-Machines/reel-director/internal/config"
	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

// Settings are the loop budgets and output format of a run
type Settings struct {
	DirectorMaxRounds   int
	ScriptMaxRounds     int
	GenerationAttempts  int
	RenderExtraAttempts int
	ReviewAttempts      int
	HeartbeatInterval   time.Duration
	DurationEpsilon     float64
	VideoSpec           models.VideoSpec
}

// SettingsFromConfig reads the run settings from the service configuration
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		DirectorMaxRounds:   cfg.DirectorMaxRounds,
		ScriptMaxRounds:     cfg.ScriptMaxRounds,
		GenerationAttempts:  cfg.GenerationAttempts,
		RenderExtraAttempts: cfg.RenderExtraAttempts,
		ReviewAttempts:      cfg.ReviewAttempts,
		HeartbeatInterval:   cfg.HeartbeatInterval,
		DurationEpsilon:     cfg.DurationEpsilon,
		VideoSpec: models.VideoSpec{
			Width:  cfg.VideoWidth,
			Height: cfg.VideoHeight,
			FPS:    cfg.VideoFPS,
		},
	}
}

// AgentConfig narrows the service configuration to what the agents need
func AgentConfig(cfg *config.Config) *agentconfig.Config {
	return &agentconfig.Config{
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		Provider:      cfg.LLMProvider,
		Model:         cfg.LLMModel,
		ReviewModel:   cfg.ReviewModel,
		ReasoningMode: cfg.ReasoningMode,
		MCPServerURL:  cfg.MCPServerURL,
	}
}

// NewAgents builds the six LLM-backed agents. A nil provider resolves one
// per agent from cfg.
func NewAgents(cfg *agentconfig.Config, provider llm.Provider) (Agents, error) {
	var (
		agents Agents
		err    error
	)
	if agents.Planner, err = planner.NewPlannerAgentWithProvider(cfg, provider); err != nil {
		return Agents{}, fmt.Errorf("planner agent: %w", err)
	}
	if agents.Visual, err = visual.NewVisualAgentWithProvider(cfg, provider); err != nil {
		return Agents{}, fmt.Errorf("visual agent: %w", err)
	}
	if agents.Music, err = composer.NewComposerAgentWithProvider(cfg, provider); err != nil {
		return Agents{}, fmt.Errorf("composer agent: %w", err)
	}
	if agents.Render, err = scriptwriter.NewScriptwriterAgentWithProvider(cfg, provider); err != nil {
		return Agents{}, fmt.Errorf("scriptwriter agent: %w", err)
	}
	if agents.Director, err = director.NewDirectorAgentWithProvider(cfg, provider); err != nil {
		return Agents{}, fmt.Errorf("director agent: %w", err)
	}
	if agents.Narrative, err = narrative.NewNarrativeAgentWithProvider(cfg, provider); err != nil {
		return Agents{}, fmt.Errorf("narrative agent: %w", err)
	}
	return agents, nil
}
