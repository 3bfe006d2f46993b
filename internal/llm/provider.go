package llm

import (
	"context"

	"github.com/openai/openai-go/responses"
	"google.golang.org/genai"
)

// Provider defines the interface for LLM providers
// All providers MUST support structured output (JSON Schema) for reliable response parsing
type Provider interface {
	// Generate produces one artifact using the LLM with structured output
	// The provider MUST enforce the OutputSchema to ensure valid JSON responses
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// GenerateStream produces one artifact with streaming updates and structured output
	GenerateStream(ctx context.Context, request *GenerationRequest, callback StreamCallback) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model         string
	InputArray    []map[string]any
	ReasoningMode string
	SystemPrompt  string
	MCPConfig     *MCPConfig
	// Structured output schema - REQUIRED for reliable JSON parsing
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// MCPConfig contains MCP server configuration
type MCPConfig struct {
	URL   string
	Label string
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	RawOutput string   `json:"-"` // Raw JSON text output, decoded by the caller
	Usage     any      `json:"usage"`
	MCPUsed   bool     `json:"mcpUsed,omitempty"`
	MCPCalls  int      `json:"mcpCalls,omitempty"`
	MCPTools  []string `json:"mcpTools,omitempty"`
}

// StreamCallback is called for each streaming event
type StreamCallback func(event StreamEvent) error

// StreamEvent represents a server-sent event during streaming
type StreamEvent struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// TokenUsage is the provider-neutral token count of one call
type TokenUsage struct {
	Input     int
	Output    int
	Total     int
	Reasoning int
}

// Map returns the usage in the shape the logger and Langfuse expect
func (u TokenUsage) Map() map[string]any {
	return map[string]any{
		"input_tokens":     u.Input,
		"output_tokens":    u.Output,
		"total_tokens":     u.Total,
		"reasoning_tokens": u.Reasoning,
	}
}

// ExtractTokenUsage reads token counts from whatever a provider put in
// GenerationResponse.Usage. Unknown shapes yield a zero usage.
func ExtractTokenUsage(usage any) TokenUsage {
	switch u := usage.(type) {
	case responses.ResponseUsage:
		return TokenUsage{
			Input:     int(u.InputTokens),
			Output:    int(u.OutputTokens),
			Total:     int(u.TotalTokens),
			Reasoning: int(u.OutputTokensDetails.ReasoningTokens),
		}
	case *responses.ResponseUsage:
		if u == nil {
			return TokenUsage{}
		}
		return ExtractTokenUsage(*u)
	case *genai.GenerateContentResponseUsageMetadata:
		if u == nil {
			return TokenUsage{}
		}
		return TokenUsage{
			Input:     int(u.PromptTokenCount),
			Output:    int(u.CandidatesTokenCount),
			Total:     int(u.TotalTokenCount),
			Reasoning: int(u.ThoughtsTokenCount),
		}
	case TokenUsage:
		return u
	case map[string]any:
		return TokenUsage{
			Input:     intField(u, "input_tokens"),
			Output:    intField(u, "output_tokens"),
			Total:     intField(u, "total_tokens"),
			Reasoning: intField(u, "reasoning_tokens"),
		}
	default:
		return TokenUsage{}
	}
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
