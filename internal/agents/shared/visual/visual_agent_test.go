package visual

import (
	"context"
	"testing"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/llm/llmtest"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/Conceptual-Machines/reel-director/internal/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ revision.VisualProducer = (*VisualAgent)(nil)

func TestVisualAgent_SendsNotesSeparately(t *testing.T) {
	provider := &llmtest.Provider{Responses: []string{`{"scenes": []}`}}
	agent, err := NewVisualAgentWithProvider(&config.Config{Model: "gpt-5.1"}, provider)
	require.NoError(t, err)

	req := models.VisualRequest{
		Photos: []models.Photo{{Ref: "p1"}},
		Notes:  []string{"hold the climax longer"},
	}
	out, err := agent.GenerateVisualScript(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"scenes": []any{}}, out)

	sent := provider.LastRequest()
	require.Len(t, sent.InputArray, 2)
	assert.NotContains(t, sent.InputArray[0]["content"], "hold the climax longer")
	assert.Contains(t, sent.InputArray[1]["content"], "1. hold the climax longer")
	assert.Equal(t, "visual_script", sent.OutputSchema.Name)

	// the caller's request is left alone
	assert.Equal(t, []string{"hold the climax longer"}, req.Notes)
}
