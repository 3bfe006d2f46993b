package composer

import (
	"context"
	"log"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/agents/core/structured"
	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/prompt"
)

// ComposerAgent writes the four-track soundtrack for a creative plan
type ComposerAgent struct {
	caller *structured.Caller
}

// NewComposerAgent creates a new composer agent
func NewComposerAgent(cfg *config.Config) (*ComposerAgent, error) {
	return NewComposerAgentWithProvider(cfg, nil)
}

// NewComposerAgentWithProvider creates a composer agent with a specific LLM provider
func NewComposerAgentWithProvider(cfg *config.Config, provider llm.Provider) (*ComposerAgent, error) {
	caller, err := structured.NewCaller(cfg, provider, "composer", prompt.RoleComposer, cfg.Model, &llm.OutputSchema{
		Name:        "music_composition",
		Description: "Tempo, key and the melody, chords, bass and drums tracks as note events",
		Schema:      llm.GetMusicCompositionSchema(),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎼 COMPOSER AGENT INITIALIZED:")
	log.Printf("   Provider: %s", caller.ProviderName())

	return &ComposerAgent{caller: caller}, nil
}

// GenerateMusic composes the soundtrack. Revision notes are sent as their
// own message rather than inside the request payload.
func (a *ComposerAgent) GenerateMusic(ctx context.Context, req models.MusicRequest) (any, error) {
	notes := req.Notes
	req.Notes = nil
	return a.caller.Call(ctx, "generate", req, notes)
}
