package config

// Config contains configuration for the creative agents
type Config struct {
	OpenAIAPIKey  string // OpenAI API key for LLM provider
	GeminiAPIKey  string // Gemini API key (optional)
	Provider      string // "openai" or "gemini"; empty infers from the model
	Model         string // Model used by the producers
	ReviewModel   string // Model used by the reviewers; falls back to Model
	ReasoningMode string
	MCPServerURL  string // MCP server URL (optional)
}

// ReviewerModel returns the model the reviewers run on
func (c *Config) ReviewerModel() string {
	if c.ReviewModel != "" {
		return c.ReviewModel
	}
	return c.Model
}
